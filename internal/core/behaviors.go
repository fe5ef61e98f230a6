package core

// SegmentBehavior scales fanout and numeric column values by the owning
// parent row's segment, read from SegmentColumn on the parent node (spec
// §3.1 "Behavioral extensions", supplementing spec.md's entity/fact model
// with per-segment heterogeneity).
type SegmentBehavior struct {
	SegmentColumn    string                         `json:"segment_column"` // column on the parent node
	FanoutMultiplier map[string]float64             `json:"fanout_multiplier,omitempty"`
	ValueMultiplier  map[string]ValueMultiplierRule `json:"value_multiplier,omitempty"`
}

// ValueMultiplierRule scales one column by a per-segment factor.
type ValueMultiplierRule struct {
	Column     string             `json:"column"`
	Multiplier map[string]float64 `json:"multiplier"`
}

// CurvePoint is one (t, factor) sample of a piecewise-linear curve used by
// vintage behaviors; t is measured in the unit the owning curve declares.
type CurvePoint struct {
	T      float64 `json:"t"`
	Factor float64 `json:"factor"`
}

// VintageBehavior ages a parent row's activity and value by the time
// elapsed since CreatedAtColumn, interpolating along two piecewise-linear
// curves.
type VintageBehavior struct {
	CreatedAtColumn string       `json:"created_at_column"`
	ActivityDecay   []CurvePoint `json:"activity_decay,omitempty"`
	ValueGrowth     []CurvePoint `json:"value_growth,omitempty"`
	Unit            string       `json:"unit,omitempty"` // "day"|"week"|"month"|"year", default "month"
}

// Interpolate returns the piecewise-linear value of curve at t, clamping to
// the first/last sample outside the declared domain.
func Interpolate(curve []CurvePoint, t float64) float64 {
	if len(curve) == 0 {
		return 1.0
	}
	if t <= curve[0].T {
		return curve[0].Factor
	}
	last := curve[len(curve)-1]
	if t >= last.T {
		return last.Factor
	}
	for i := 1; i < len(curve); i++ {
		if t <= curve[i].T {
			prev := curve[i-1]
			span := curve[i].T - prev.T
			if span <= 0 {
				return curve[i].Factor
			}
			frac := (t - prev.T) / span
			return prev.Factor + frac*(curve[i].Factor-prev.Factor)
		}
	}
	return last.Factor
}

// StageConfig drives a funnel/lifecycle progression across an ordered list
// of named stages, one row per (parent, stage-reached) pair.
type StageConfig struct {
	Stages                 []string             `json:"stages"`
	TransitionRate         []float64            `json:"transition_rate"`             // len(Stages)-1, P(advance | at stage i)
	SegmentVariation       map[string][]float64 `json:"segment_variation,omitempty"` // segment -> per-stage multiplier on TransitionRate
	TimeBetweenStagesHours [2]float64           `json:"time_between_stages_hours"`   // midpoint of the pair is the mean of an exponential gap (24h if <= 0)
}

// StateTransitionModel drives a Markov-chain-style progression across an
// unordered set of named states, re-evaluated once per Specification.Timeframe
// period.
type StateTransitionModel struct {
	States                   []string                      `json:"states"`
	InitialState             string                        `json:"initial_state"`
	TransitionProbPerPeriod  map[string]map[string]float64 `json:"transition_prob_per_period"` // state -> nextState -> p
	TerminalStates           []string                      `json:"terminal_states,omitempty"`
	ChurnMultiplier          float64                       `json:"churn_multiplier,omitempty"`            // applied to terminal-state transition probs
	ChurnMultiplierBySegment map[string]float64            `json:"churn_multiplier_by_segment,omitempty"` // segment -> override of ChurnMultiplier
	VintageCurve             []CurvePoint                  `json:"vintage_curve,omitempty"`               // scales churn probability by age
}

// ChurnMultiplierFor returns the churn multiplier to apply for a row whose
// parent falls in segment seg: the segment-specific override if one is
// declared, else the model-wide ChurnMultiplier.
func (m *StateTransitionModel) ChurnMultiplierFor(seg string) float64 {
	if seg != "" {
		if v, ok := m.ChurnMultiplierBySegment[seg]; ok {
			return v
		}
	}
	return m.ChurnMultiplier
}

// IsTerminal reports whether state is one of the model's terminal states.
func (m *StateTransitionModel) IsTerminal(state string) bool {
	for _, s := range m.TerminalStates {
		if s == state {
			return true
		}
	}
	return false
}
