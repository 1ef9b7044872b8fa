package server

import (
	"context"
	"sort"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
	"github.com/warriorguo/reteflow/store"
	"github.com/warriorguo/reteflow/types"
	"github.com/warriorguo/reteflow/utils"
)

const (
	RunRecordPath = "/runs/"
)

/**
 * runArchive keeps one RunRecord per processed workflow in the store,
 * keyed by run id. Records outlive the engines that produced them, so
 * run history and the results routes keep working across restarts when
 * the store is durable.
 */
type runArchive struct {
	store store.Store
}

func newRunArchive(s store.Store) *runArchive {
	return &runArchive{store: s}
}

func (a *runArchive) save(ctx context.Context, record *types.RunRecord) error {
	b, err := utils.Serialize(record)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(a.store.Set(ctx, RunRecordPath, record.ID, b))
}

func (a *runArchive) load(ctx context.Context, id string) (*types.RunRecord, error) {
	b, err := a.store.Get(ctx, RunRecordPath, id)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if b == nil {
		return nil, errors.NotFoundf("run record id: %s", id)
	}

	record := &types.RunRecord{}
	if err := utils.Unserialize(b, record); err != nil {
		return nil, errors.Trace(err)
	}
	return record, nil
}

// list returns every archived record, newest first. A record that
// refuses to load is logged and skipped, never fails the listing.
func (a *runArchive) list(ctx context.Context) ([]*types.RunRecord, error) {
	records := make([]*types.RunRecord, 0)
	err := a.store.List(ctx, RunRecordPath, func(id string) bool {
		record, err := a.load(ctx, id)
		if err != nil {
			log.Errorf("load run record %s from store failed: %v", id, err)
			return true
		}
		records = append(records, record)
		return true
	})
	if err != nil {
		return nil, errors.Trace(err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// findByOutputFile resolves the record that produced the named output
// file, backing the results route.
func (a *runArchive) findByOutputFile(ctx context.Context, name string) (*types.RunRecord, error) {
	records, err := a.list(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for _, record := range records {
		if record.OutputFile == name {
			return record, nil
		}
	}
	return nil, errors.NotFoundf("run record for output file: %s", name)
}
