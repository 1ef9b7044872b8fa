package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngineOptionDefaults(t *testing.T) {
	opts := NewEngineOptions()

	assert.Equal(t, "ACCEPT", opts.DefaultDecision)
	assert.Equal(t, "workflow_decision", opts.DecisionColumn)
	assert.Equal(t, "", opts.Dataset)
	assert.False(t, opts.StrictColumns)
}

func TestMultipleOptions(t *testing.T) {
	opts := NewEngineOptions()

	// Apply multiple options
	WithDefaultDecision("KEEP")(opts)
	WithDecisionColumn("verdict")(opts)
	WithDataset("pill_data")(opts)
	EnableStrictColumns()(opts)

	assert.Equal(t, "KEEP", opts.DefaultDecision)
	assert.Equal(t, "verdict", opts.DecisionColumn)
	assert.Equal(t, "pill_data", opts.Dataset)
	assert.True(t, opts.StrictColumns)
}
