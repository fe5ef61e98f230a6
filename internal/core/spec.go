// Package core holds the specification model: the typed, self-consistent
// description of a dataset (spec §3) plus the preflight validator that
// rejects any specification whose successful generation cannot be
// guaranteed (spec §2 component 2, §7).
package core

import "time"

// Frequency is the symbolic sampling granularity for a Timeframe.
type Frequency string

const (
	FrequencyHour  Frequency = "hour"
	FrequencyDay   Frequency = "day"
	FrequencyMonth Frequency = "month"
)

// Duration returns the nominal step size for the frequency, used as the
// period step of the executor's state-transition simulation.
func (f Frequency) Duration() time.Duration {
	switch f {
	case FrequencyHour:
		return time.Hour
	case FrequencyMonth:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Timeframe is the closed-open interval of timestamps spec §3.1 describes:
// inclusive Start, exclusive End, with a default sampling Frequency.
type Timeframe struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Frequency Frequency `json:"frequency"`
}

// NodeKind identifies one of the three table archetypes (spec §3.1 table).
type NodeKind string

const (
	NodeEntity NodeKind = "entity"
	NodeFact   NodeKind = "fact"
	NodeVocab  NodeKind = "vocab"
)

// LogicalType is a column's declared logical type, independent of how a
// sink ultimately encodes it.
type LogicalType string

const (
	TypeInteger  LogicalType = "integer"
	TypeFloating LogicalType = "floating"
	TypeString   LogicalType = "string"
	TypeBoolean  LogicalType = "boolean"
	TypeDatetime LogicalType = "datetime"
	TypeDate     LogicalType = "date"
)

// DefaultEntityRows is the row count used when an entity node declares no
// explicit Rows (spec §3.1 table, "Explicit rows or default (1000)").
const DefaultEntityRows = 1000

// Metadata carries the dataset-level descriptive fields of a Specification.
type Metadata struct {
	DatasetName string `json:"dataset_name"`
}

// Specification is the top-level, typed description of a dataset (spec §3.1).
// It is parsed once, preflighted once, then consumed read-only by the
// planner and executor (spec §3.3 Lifecycle).
type Specification struct {
	Version     string            `json:"version"`
	Metadata    Metadata          `json:"metadata"`
	Timeframe   Timeframe         `json:"timeframe"`
	Nodes       []*NodeDescriptor `json:"nodes"`
	Constraints Constraints       `json:"constraints"`
	Targets     *Targets          `json:"targets,omitempty"`

	// masterSeed is not part of the JSON document (spec §6.1 — the spec
	// describes the dataset, not the run); it is supplied by the caller
	// alongside the Specification when generation starts.
}

// NodeDescriptor describes one table (spec §3.1 "Node descriptor").
type NodeDescriptor struct {
	Name    string   `json:"name"`
	Kind    NodeKind `json:"kind"`
	PK      string   `json:"pk"`
	Parents []string `json:"parents,omitempty"`
	Rows    *int     `json:"rows,omitempty"`
	Fanout  *Fanout  `json:"fanout,omitempty"`
	Values  []string `json:"values,omitempty"` // vocab nodes only (enum_list length)

	Columns []*ColumnDescriptor `json:"columns"`

	SegmentBehavior      *SegmentBehavior      `json:"segment_behavior,omitempty"`
	VintageBehavior      *VintageBehavior      `json:"vintage_behavior,omitempty"`
	StageConfig          *StageConfig          `json:"stage_config,omitempty"`
	StateTransitionModel *StateTransitionModel `json:"state_transition_model,omitempty"`
}

// ColumnDescriptor describes one column of a node (spec §3.1 "Column descriptor").
type ColumnDescriptor struct {
	Name       string          `json:"name"`
	Type       LogicalType     `json:"type"`
	Nullable   bool            `json:"nullable,omitempty"`
	Generator  GeneratorSpec   `json:"generator"`
	Modifiers  []ModifierSpec  `json:"modifiers,omitempty"`
}

// FanoutDistribution names the fanout sampling distribution (spec §3.1).
type FanoutDistribution string

const (
	FanoutPoisson FanoutDistribution = "poisson"
	FanoutUniform FanoutDistribution = "uniform"
)

// Fanout is the per-parent child row count descriptor for fact nodes.
type Fanout struct {
	Distribution FanoutDistribution `json:"distribution"`
	Lambda       float64            `json:"lambda,omitempty"`
	Min          float64            `json:"min,omitempty"`
	Max          float64            `json:"max,omitempty"`
	ClampMin     int                `json:"clamp_min"`
	ClampMax     int                `json:"clamp_max"`
}

// NodeByName returns the node descriptor with the given name, or nil.
func (s *Specification) NodeByName(name string) *NodeDescriptor {
	for _, n := range s.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// ColumnByName returns the column descriptor with the given name, or nil.
func (n *NodeDescriptor) ColumnByName(name string) *ColumnDescriptor {
	for _, c := range n.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}
