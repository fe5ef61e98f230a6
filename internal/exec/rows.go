package exec

import (
	"math"
	"math/rand"
	"time"

	"synthgen/internal/core"
	"synthgen/internal/seed"
	"synthgen/internal/table"
)

// rowPlan is the result of deciding a node's row count and, for fact nodes,
// how each output row maps back to its parent and (for stage/state-driven
// facts) which synthetic label/timestamp it carries.
type rowPlan struct {
	Rows        int
	ParentIndex []int
	Labels      []string    // stage/state name per row, nil unless stage/state-driven
	Times       []time.Time // stage/state occurrence timestamp per row, nil unless stage/state-driven

	// LabelColumn/TimeColumn name the columns Labels/Times overwrite after
	// normal generation, by convention: "stage_name"/"stage_at" for
	// stage_config, "state"/"period_at" for state_transition_model (see
	// DESIGN.md).
	LabelColumn string
	TimeColumn  string
}

// resolveRowPlan decides how many rows node will have and, for fact nodes,
// which parent row each output row belongs to (spec §3.1 table, §4.5).
func (e *Executor) resolveRowPlan(node *core.NodeDescriptor) (*rowPlan, error) {
	switch node.Kind {
	case core.NodeVocab:
		return &rowPlan{Rows: len(node.Values)}, nil
	case core.NodeEntity:
		return &rowPlan{Rows: e.rowsFor(node)}, nil
	case core.NodeFact:
		if node.StageConfig != nil {
			return e.resolveStageRows(node)
		}
		if node.StateTransitionModel != nil {
			return e.resolveStateRows(node)
		}
		rows, parentIndex, err := e.resolveFanoutRows(node)
		if err != nil {
			return nil, err
		}
		return &rowPlan{Rows: rows, ParentIndex: parentIndex}, nil
	default:
		return nil, core.Errorf(core.KindGenerationFailure, "node", node.Name, "kind", "unknown node kind %q", node.Kind)
	}
}

func (e *Executor) rowsFor(node *core.NodeDescriptor) int {
	if node.Rows != nil {
		return *node.Rows
	}
	return core.DefaultEntityRows
}

// resolveFanoutRows implements the standard fact-node row law: for each row
// of the single driving parent, sample a fanout count from node.Fanout
// (clamped), optionally scaled by SegmentBehavior.FanoutMultiplier and
// VintageBehavior.ActivityDecay, and emit that many child rows.
//
// Multi-parent Cartesian fanout (spec §4.5 "each Cartesian combination of
// parents") is out of scope: every worked example in the specification
// drives fanout from exactly one parent, and a general N-way cross product
// would require per-parent lookup plumbing the generator registry does not
// carry today (see DESIGN.md).
func (e *Executor) resolveFanoutRows(node *core.NodeDescriptor) (int, []int, error) {
	if len(node.Parents) != 1 {
		return 0, nil, core.Errorf(core.KindGenerationFailure, "node", node.Name, "parents", "multi-parent Cartesian fanout is not supported; declare exactly one parent")
	}
	parentName := node.Parents[0]
	parent, ok := e.tables[parentName]
	if !ok {
		return 0, nil, core.Errorf(core.KindGenerationFailure, "node", node.Name, "parents", "parent %q not yet materialized", parentName)
	}

	segMult := segmentMultipliers(parent, node.SegmentBehavior)
	vintageMult := e.vintageActivityMultipliers(parent, node.VintageBehavior)

	var parentIndex []int
	for p := 0; p < parent.Rows; p++ {
		r := rand.New(rand.NewSource(int64(seed.Row(e.MasterSeed, node.Name, "__fanout", p))))
		n := sampleFanout(node.Fanout, r)
		if segMult != nil {
			n = clampFanout(node.Fanout, int(math.Round(float64(n)*segMult(p))))
		}
		if vintageMult != nil {
			n = clampFanout(node.Fanout, int(math.Round(float64(n)*vintageMult(p))))
		}
		for i := 0; i < n; i++ {
			parentIndex = append(parentIndex, p)
		}
	}
	return len(parentIndex), parentIndex, nil
}

func sampleFanout(f *core.Fanout, r *rand.Rand) int {
	var n int
	switch f.Distribution {
	case core.FanoutUniform:
		n = int(math.Round(f.Min + r.Float64()*(f.Max-f.Min)))
	default: // poisson
		n = samplePoissonCount(r, f.Lambda)
	}
	return clampFanout(f, n)
}

func clampFanout(f *core.Fanout, n int) int {
	if n < f.ClampMin {
		return f.ClampMin
	}
	if n > f.ClampMax {
		return f.ClampMax
	}
	return n
}

// samplePoissonCount draws from Poisson(lambda) via Knuth's algorithm,
// mirroring internal/generate/distribution.go's sampler.
func samplePoissonCount(r *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		k++
		p *= r.Float64()
		if p <= l {
			return k - 1
		}
	}
}

// segmentMultipliers returns a per-parent-row fanout multiplier closure, or
// nil if no segment behavior applies. The segment value is read from
// SegmentColumn on the parent table itself.
func segmentMultipliers(parent *table.Table, seg *core.SegmentBehavior) func(parentRow int) float64 {
	if seg == nil || len(seg.FanoutMultiplier) == 0 {
		return nil
	}
	segCol := parent.Column(seg.SegmentColumn)
	if segCol == nil || segCol.Kind != table.KindString {
		return nil
	}
	return func(parentRow int) float64 {
		if segCol.Null[parentRow] {
			return 1
		}
		if m, ok := seg.FanoutMultiplier[segCol.Strings[parentRow]]; ok {
			return m
		}
		return 1
	}
}

func (e *Executor) vintageActivityMultipliers(parent *table.Table, v *core.VintageBehavior) func(parentRow int) float64 {
	if v == nil || len(v.ActivityDecay) == 0 {
		return nil
	}
	createdAt := parent.Column(v.CreatedAtColumn)
	if createdAt == nil {
		return nil
	}
	return func(parentRow int) float64 {
		if createdAt.Null[parentRow] {
			return 1
		}
		age := e.ageInUnit(createdAt.Times[parentRow], v.Unit)
		return core.Interpolate(v.ActivityDecay, age)
	}
}

// ageInUnit returns the elapsed time between t and the timeframe's end (the
// dataset's "as-of" instant) expressed in unit ("day"|"week"|"month"|"year",
// default "month").
func (e *Executor) ageInUnit(t time.Time, unit string) float64 {
	days := e.Spec.Timeframe.End.Sub(t).Hours() / 24
	switch unit {
	case "day":
		return days
	case "week":
		return days / 7
	case "year":
		return days / 365
	default: // month
		return days / 30
	}
}
