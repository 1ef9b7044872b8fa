package reteflow

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/warriorguo/reteflow/engine"
	"github.com/warriorguo/reteflow/types"
	"github.com/warriorguo/reteflow/utils"
)

// New creates a workflow engine for wf with the given options
func New(wf *types.Workflow, opts ...types.EngineOption) (types.WorkflowEngine, error) {
	options := types.NewEngineOptions()
	for _, opt := range opts {
		opt(options)
	}

	eng, err := engine.New(wf, options)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return eng, nil
}

// Parse decodes a workflow document from its JSON form
func Parse(data []byte) (*types.Workflow, error) {
	wf := &types.Workflow{}
	if err := utils.Unserialize(data, wf); err != nil {
		return nil, types.NewLoadError(errors.Annotatef(err, "parse workflow json"))
	}
	return wf, nil
}

// ParseYAML decodes a workflow document from its YAML form
func ParseYAML(data []byte) (*types.Workflow, error) {
	wf := &types.Workflow{}
	if err := utils.UnserializeYAML(data, wf); err != nil {
		return nil, types.NewLoadError(errors.Annotatef(err, "parse workflow yaml"))
	}
	return wf, nil
}

/**
 * ParseFile loads a workflow document from disk, picking the decoder
 * by file extension. Anything that is not .yaml or .yml is read as
 * JSON.
 */
func ParseFile(path string) (*types.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Trace(err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	}
	return Parse(data)
}

/**
 * ProcessDataset runs every row of source through eng and, when sink
 * is given, writes the augmented rows out. The output keeps the input
 * column order with the decision column moved to the end.
 */
func ProcessDataset(eng types.WorkflowEngine, source types.RowSource, sink types.RowSink) (*types.RunResult, error) {
	rows, err := source.Rows()
	if err != nil {
		return nil, errors.Trace(err)
	}

	result := eng.ProcessRows(rows)
	if sink == nil {
		return result, nil
	}

	input := source.Columns()
	columns := make([]string, 0, len(input)+1)
	for _, name := range input {
		if name != eng.DecisionColumn() {
			columns = append(columns, name)
		}
	}
	columns = utils.UniqueSlice(append(columns, eng.DecisionColumn()))

	if err := sink.Write(columns, result.Rows); err != nil {
		return result, errors.Trace(err)
	}
	return result, nil
}
