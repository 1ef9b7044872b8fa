package engine

import (
	"strings"
	"time"

	"github.com/warriorguo/reteflow/types"
	"github.com/warriorguo/reteflow/utils"
	log "github.com/sirupsen/logrus"
)

/**
 * ProcessRow runs the graph once against row and returns the decision.
 * A row never aborts the run: a panic inside a node evaluation is
 * recovered here and tagged on the row's decision instead.
 */
func (e *workflowEngine) ProcessRow(row types.Row) (decision string) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("node evaluation panic: %v", r)
			decision = decisionNodePanic
		}
	}()
	return e.processOnce(row)
}

// ProcessRows runs every row through the graph and tallies decisions.
func (e *workflowEngine) ProcessRows(rows []types.Row) *types.RunResult {
	start := time.Now()
	result := &types.RunResult{
		Rows:  make([]types.Row, 0, len(rows)),
		Stats: types.RunStats{Decisions: make(map[string]int)},
	}

	for _, row := range rows {
		decision := e.ProcessRow(row)

		out := types.Row(utils.CloneMap(row))
		out.Set(e.opts.DecisionColumn, decision)
		result.Rows = append(result.Rows, out)

		result.Stats.TotalProcessed++
		result.Stats.Decisions[decision]++
		switch {
		case strings.HasPrefix(decision, types.DecisionErrorPrefix):
			result.Stats.Errors++
		case decision == types.DecisionDiscard:
			result.Stats.Discarded++
		default:
			result.Stats.Accepted++
		}
	}

	result.Stats.TimeTaken = time.Since(start).Seconds()
	return result
}
