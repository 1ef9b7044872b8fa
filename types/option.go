package types

import (
	"github.com/mcuadros/go-defaults"
)

func NewEngineOptions() *EngineOptions {
	opts := &EngineOptions{}
	defaults.SetDefaults(opts)
	return opts
}

type EngineOptions struct {
	/**
	 * default: ACCEPT
	 * decision assigned to a row that no action claimed. A workflow
	 * carrying its own defaultDecision overrides this at load.
	 */
	DefaultDecision string `default:"ACCEPT"`
	/**
	 * default: workflow_decision
	 * column the decision is written to on augmented rows.
	 */
	DecisionColumn string `default:"workflow_decision"`
	/**
	 * default: empty, which matches every Source node.
	 * Source nodes naming a different dataset are skipped for the whole
	 * run, their downstream subgraph with them.
	 */
	Dataset string
	/**
	 * default: false, a rule referencing a column the row does not have
	 * simply evaluates to false. When true such a row fails immediately
	 * with an ERROR_MISSING_COLUMN decision instead.
	 */
	StrictColumns bool `default:"false"`
}

type EngineOption func(*EngineOptions)

func WithDefaultDecision(decision string) EngineOption {
	return func(opts *EngineOptions) {
		opts.DefaultDecision = decision
	}
}

func WithDecisionColumn(column string) EngineOption {
	return func(opts *EngineOptions) {
		opts.DecisionColumn = column
	}
}

func WithDataset(name string) EngineOption {
	return func(opts *EngineOptions) {
		opts.Dataset = name
	}
}

func EnableStrictColumns() EngineOption {
	return func(opts *EngineOptions) {
		opts.StrictColumns = true
	}
}
