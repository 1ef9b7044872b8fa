package types

// Node type names as the graph builder emits them.
const (
	NodeSource = "Source"
	NodeRule   = "Rule"
	NodeAnd    = "AND"
	NodeOr     = "OR"
	NodeAction = "Action"
)

// Decisions assigned to a processed row.
const (
	DecisionAccept  = "ACCEPT"
	DecisionDiscard = "DISCARD"
	/**
	 * DecisionErrorPrefix tags rows the graph could not evaluate,
	 * e.g. ERROR_MISSING_COLUMN. Tagged rows count as errors in the
	 * run stats, never as accepted or discarded.
	 */
	DecisionErrorPrefix = "ERROR_"
)

/**
 * NodeSpec is one node of the builder graph. Only id and type are
 * mandatory; the other fields depend on the node type. Rule nodes carry
 * CodeLine and VariableType, Source nodes may carry a dataset name.
 */
type NodeSpec struct {
	ID    string `json:"id" yaml:"id"`
	Type  string `json:"type" yaml:"type"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	NumInputs  int `json:"numInputs,omitempty" yaml:"numInputs,omitempty"`
	NumOutputs int `json:"numOutputs,omitempty" yaml:"numOutputs,omitempty"`

	CodeLine     string `json:"codeLine,omitempty" yaml:"codeLine,omitempty"`
	VariableType string `json:"variableType,omitempty" yaml:"variableType,omitempty"`

	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// DisplayLabel falls back to the node type when the builder left the
// label empty.
func (n *NodeSpec) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.Type
}

/**
 * ConnectionSpec wires one output slot of a node to one input slot of
 * another. Slot keys are the builder's free-form names: output0...,
 * output, outputTrue/outputFrue on the source side and input0...,
 * input on the target side.
 */
type ConnectionSpec struct {
	ID              string `json:"id,omitempty" yaml:"id,omitempty"`
	SourceNodeID    string `json:"sourceNodeId" yaml:"sourceNodeId"`
	SourceOutputKey string `json:"sourceOutputKey" yaml:"sourceOutputKey"`
	TargetNodeID    string `json:"targetNodeId" yaml:"targetNodeId"`
	TargetInputKey  string `json:"targetInputKey" yaml:"targetInputKey"`
}

// Workflow is the wire format the builder exports.
type Workflow struct {
	Nodes       []NodeSpec       `json:"nodes" yaml:"nodes"`
	Connections []ConnectionSpec `json:"connections" yaml:"connections"`
	/**
	 * DefaultDecision overrides the decision for rows no action claimed.
	 * Empty means ACCEPT.
	 */
	DefaultDecision string `json:"defaultDecision,omitempty" yaml:"defaultDecision,omitempty"`
}
