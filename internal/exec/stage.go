package exec

import (
	"math"
	"math/rand"
	"time"

	"synthgen/internal/core"
	"synthgen/internal/seed"
	"synthgen/internal/table"
)

// resolveStageRows simulates a funnel/lifecycle progression (spec §4.5
// "Stage progression"): every parent reaches stage 0, then advances stage
// by stage at TransitionRate[i] (optionally scaled by SegmentVariation for
// the parent's segment), emitting one row per (parent, stage-reached) pair
// with a strictly increasing timestamp.
//
// By convention (see DESIGN.md) the node names its label column
// "stage_name" and its timestamp column "stage_at"; other declared columns
// (lookups, fakers, ...) still run through the normal per-row pipeline.
func (e *Executor) resolveStageRows(node *core.NodeDescriptor) (*rowPlan, error) {
	if len(node.Parents) != 1 {
		return nil, core.Errorf(core.KindGenerationFailure, "node", node.Name, "parents", "stage_config requires exactly one parent")
	}
	parent, ok := e.tables[node.Parents[0]]
	if !ok {
		return nil, core.Errorf(core.KindGenerationFailure, "node", node.Name, "parents", "parent %q not yet materialized", node.Parents[0])
	}
	cfg := node.StageConfig
	segmentOf := segmentLookup(parent, node.SegmentBehavior)
	refTime := referenceTimeColumn(parent)

	var parentIndex []int
	var labels []string
	var times []time.Time

	for p := 0; p < parent.Rows; p++ {
		r := rand.New(rand.NewSource(int64(seed.Row(e.MasterSeed, node.Name, "__stage", p))))
		rates := cfg.TransitionRate
		if seg := segmentOf(p); seg != "" {
			if mult, ok := cfg.SegmentVariation[seg]; ok {
				rates = scaleRates(cfg.TransitionRate, mult)
			}
		}

		t := refTime(p)
		stagesReached := 1
		for i := 0; i < len(rates); i++ {
			if r.Float64() >= rates[i] {
				break
			}
			stagesReached++
		}

		meanGapHours := (cfg.TimeBetweenStagesHours[0] + cfg.TimeBetweenStagesHours[1]) / 2
		if meanGapHours <= 0 {
			meanGapHours = 24
		}
		for s := 0; s < stagesReached && s < len(cfg.Stages); s++ {
			if s > 0 {
				gapHours := -meanGapHours * logUniform(r)
				t = t.Add(time.Duration(gapHours * float64(time.Hour)))
			}
			parentIndex = append(parentIndex, p)
			labels = append(labels, cfg.Stages[s])
			times = append(times, t)
		}
	}

	return &rowPlan{
		Rows:        len(parentIndex),
		ParentIndex: parentIndex,
		Labels:      labels,
		Times:       times,
		LabelColumn: "stage_name",
		TimeColumn:  "stage_at",
	}, nil
}

// resolveStateRows simulates a per-parent Markov chain (spec §4.5 "State
// transitions"): one row per state occupation, stopping once a terminal
// state is reached or the timeframe is exhausted.
func (e *Executor) resolveStateRows(node *core.NodeDescriptor) (*rowPlan, error) {
	if len(node.Parents) != 1 {
		return nil, core.Errorf(core.KindGenerationFailure, "node", node.Name, "parents", "state_transition_model requires exactly one parent")
	}
	parent, ok := e.tables[node.Parents[0]]
	if !ok {
		return nil, core.Errorf(core.KindGenerationFailure, "node", node.Name, "parents", "parent %q not yet materialized", node.Parents[0])
	}
	model := node.StateTransitionModel
	segmentOf := segmentLookup(parent, node.SegmentBehavior)
	refTime := referenceTimeColumn(parent)
	periodStep := e.Spec.Timeframe.Frequency.Duration()
	if periodStep <= 0 {
		periodStep = 24 * time.Hour
	}

	var parentIndex []int
	var labels []string
	var times []time.Time

	for p := 0; p < parent.Rows; p++ {
		r := rand.New(rand.NewSource(int64(seed.Row(e.MasterSeed, node.Name, "__state", p))))
		seg := segmentOf(p)
		state := model.InitialState
		t := refTime(p)
		age := e.ageInUnit(t, "month")

		for t.Before(e.Spec.Timeframe.End) {
			parentIndex = append(parentIndex, p)
			labels = append(labels, state)
			times = append(times, t)

			if model.IsTerminal(state) {
				break
			}
			next := drawNextState(r, model, state, seg, age)
			state = next
			t = t.Add(periodStep)
			age = e.ageInUnit(t, "month")
		}
	}

	return &rowPlan{
		Rows:        len(parentIndex),
		ParentIndex: parentIndex,
		Labels:      labels,
		Times:       times,
		LabelColumn: "state",
		TimeColumn:  "period_at",
	}, nil
}

func drawNextState(r *rand.Rand, model *core.StateTransitionModel, state, segment string, age float64) string {
	probs := model.TransitionProbPerPeriod[state]
	draw := r.Float64()
	churn := model.ChurnMultiplierFor(segment)
	var cumulative float64
	for next, p := range probs {
		if churn > 0 && containsState(model.TerminalStates, next) {
			p *= churn
		}
		if len(model.VintageCurve) > 0 && containsState(model.TerminalStates, next) {
			p *= core.Interpolate(model.VintageCurve, age)
		}
		cumulative += p
		if draw < cumulative {
			return next
		}
	}
	return state
}

func containsState(states []string, s string) bool {
	for _, v := range states {
		if v == s {
			return true
		}
	}
	return false
}

// logUniform returns ln(u) for a uniform draw u, so that
// -mean*logUniform(r) is an Exp(1/mean) variate (inverse-CDF method).
func logUniform(r *rand.Rand) float64 {
	u := r.Float64()
	if u <= 0 {
		u = 1e-9
	}
	return math.Log(u)
}

func scaleRates(base, mult []float64) []float64 {
	out := make([]float64, len(base))
	for i, v := range base {
		if i < len(mult) {
			out[i] = clamp01(v * mult[i])
		} else {
			out[i] = v
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func segmentLookup(parent *table.Table, seg *core.SegmentBehavior) func(row int) string {
	if seg == nil {
		return func(int) string { return "" }
	}
	col := parent.Column(seg.SegmentColumn)
	if col == nil || col.Kind != table.KindString {
		return func(int) string { return "" }
	}
	return func(row int) string {
		if col.Null[row] {
			return ""
		}
		return col.Strings[row]
	}
}

// referenceTimeColumn picks the anchor for stage/state simulation: the
// parent table's first datetime column in column order
// (VintageBehavior.CreatedAtColumn is not consulted). A parent with no
// datetime column, or a null cell, yields the zero time.
func referenceTimeColumn(parent *table.Table) func(row int) time.Time {
	var col *table.Column
	for _, c := range parent.Columns() {
		if c.Kind == table.KindTime {
			col = c
			break
		}
	}
	if col == nil {
		return func(int) time.Time { return time.Time{} }
	}
	return func(row int) time.Time {
		if col.Null[row] {
			return time.Time{}
		}
		return col.Times[row]
	}
}

func applyOverride(col *table.Column, labels []string) {
	if col == nil || col.Kind != table.KindString {
		return
	}
	for i, v := range labels {
		col.SetString(i, v)
	}
}

func applyTimeOverrideColumn(col *table.Column, times []time.Time) {
	if col == nil || col.Kind != table.KindTime {
		return
	}
	for i, v := range times {
		col.SetTime(i, v)
	}
}
