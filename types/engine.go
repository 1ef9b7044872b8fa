package types

type WorkflowEngine interface {
	/**
	 * ProcessRow runs the graph once against row and returns the decision.
	 * Row processing is fail-soft: an unevaluable row comes back with an
	 * ERROR_ prefixed decision instead of an error.
	 */
	ProcessRow(row Row) string

	/**
	 * ProcessRows runs every row through the graph in one pass and
	 * returns the augmented rows together with the run statistics.
	 * Input rows are never mutated.
	 */
	ProcessRows(rows []Row) *RunResult

	/**
	 * Render will return the DOT string generated from the loaded graph.
	 * If error is not nil, then it indicates error happened.
	 */
	Render() (string, error)

	// Order returns node ids in the evaluation order fixed at load time.
	Order() []string

	// DecisionColumn returns the column decisions are written to.
	DecisionColumn() string
}

// RunResult is the outcome of one dataset pass.
type RunResult struct {
	// Rows are copies of the input rows with the decision column added.
	Rows []Row `json:"rows,omitempty"`

	Stats RunStats `json:"stats"`
}

type RunStats struct {
	TotalProcessed int `json:"total_processed"`
	Accepted       int `json:"accepted"`
	Discarded      int `json:"discarded"`
	Errors         int `json:"errors"`

	// Decisions counts every decision value, error tags included.
	Decisions map[string]int `json:"decisions"`

	// TimeTaken is the wall clock duration of the pass in seconds.
	TimeTaken float64 `json:"time_taken"`
}

/**
 * RowSource and RowSink are the narrow adapter surfaces the engine
 * facade consumes and feeds. The dataset package provides the CSV
 * implementations.
 */
type RowSource interface {
	// Columns returns the header names in input order.
	Columns() []string
	Rows() ([]Row, error)
}

type RowSink interface {
	Write(columns []string, rows []Row) error
}
