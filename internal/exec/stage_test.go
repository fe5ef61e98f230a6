package exec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synthgen/internal/core"
)

// stateChurnSpec builds the spec.md "S6" scenario: a user population split
// into "baseline" and "vip" segments (via a user_id-keyed parity so the
// split is stable under the sequence generator), and a subscription node
// whose state_transition_model churns "vip" rows at vipMultiplier times the
// baseline rate.
func stateChurnSpec(vipMultiplier float64) *core.Specification {
	return &core.Specification{
		Version:  "1",
		Metadata: core.Metadata{DatasetName: "s6"},
		Timeframe: core.Timeframe{
			Start:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			End:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Frequency: core.FrequencyMonth,
		},
		Nodes: []*core.NodeDescriptor{
			{
				Name: "user", Kind: core.NodeEntity, PK: "user_id", Rows: intPtr(300),
				Columns: []*core.ColumnDescriptor{
					{Name: "user_id", Type: core.TypeInteger, Generator: core.GeneratorSpec{
						Kind: core.GenSequence, Sequence: &core.SequenceParams{Start: 1, Step: 1},
					}},
					{Name: "segment", Type: core.TypeString, Generator: core.GeneratorSpec{
						Kind: core.GenEnumList, EnumList: &core.EnumListParams{Values: []string{"baseline", "vip"}},
					}},
					{Name: "created_at", Type: core.TypeDatetime, Generator: core.GeneratorSpec{
						Kind: core.GenDatetimeSeries, DatetimeSeries: &core.DatetimeSeriesParams{Within: "timeframe"},
					}},
				},
			},
			{
				Name: "subscription", Kind: core.NodeFact, PK: "subscription_event_id",
				Parents:         []string{"user"},
				SegmentBehavior: &core.SegmentBehavior{SegmentColumn: "segment"},
				StateTransitionModel: &core.StateTransitionModel{
					States:       []string{"active", "churned"},
					InitialState: "active",
					TransitionProbPerPeriod: map[string]map[string]float64{
						"active": {"churned": 0.5},
					},
					TerminalStates:           []string{"churned"},
					ChurnMultiplier:          1.0,
					ChurnMultiplierBySegment: map[string]float64{"vip": vipMultiplier},
				},
				Columns: []*core.ColumnDescriptor{
					{Name: "subscription_event_id", Type: core.TypeInteger, Generator: core.GeneratorSpec{
						Kind: core.GenSequence, Sequence: &core.SequenceParams{Start: 1, Step: 1},
					}},
					{Name: "user_id", Type: core.TypeInteger, Generator: core.GeneratorSpec{
						Kind: core.GenLookup, Lookup: &core.LookupParams{From: "user.user_id"},
					}},
					{Name: "state", Type: core.TypeString, Generator: core.GeneratorSpec{
						Kind: core.GenEnumList, EnumList: &core.EnumListParams{Values: []string{"active"}},
					}},
					{Name: "period_at", Type: core.TypeDatetime, Generator: core.GeneratorSpec{
						Kind: core.GenDatetimeSeries, DatetimeSeries: &core.DatetimeSeriesParams{Within: "timeframe"},
					}},
				},
			},
		},
	}
}

func TestStateTransitionModelScalesChurnPerSegment(t *testing.T) {
	ex := &Executor{Spec: stateChurnSpec(0.2), MasterSeed: 99}
	tables, err := ex.Run()
	require.NoError(t, err)

	users := tables["user"]
	subs := tables["subscription"]
	require.NotNil(t, users)
	require.NotNil(t, subs)

	segCol := users.Column("segment")
	userIDCol := users.Column("user_id")
	require.NotNil(t, segCol)
	require.NotNil(t, userIDCol)

	segmentByUser := make(map[int64]string, users.Rows)
	for i := 0; i < users.Rows; i++ {
		segmentByUser[userIDCol.Ints[i]] = segCol.Strings[i]
	}

	stateCol := subs.Column("state")
	subUserIDCol := subs.Column("user_id")
	require.NotNil(t, stateCol)
	require.NotNil(t, subUserIDCol)

	var baselineChurned, baselineTotal, vipChurned, vipTotal int
	seenUser := make(map[int64]bool)
	for i := 0; i < subs.Rows; i++ {
		uid := subUserIDCol.Ints[i]
		seg := segmentByUser[uid]
		if !seenUser[uid] {
			seenUser[uid] = true
			if seg == "baseline" {
				baselineTotal++
			} else {
				vipTotal++
			}
		}
		if stateCol.Strings[i] == "churned" {
			if seg == "baseline" {
				baselineChurned++
			} else {
				vipChurned++
			}
		}
	}

	require.Greater(t, baselineTotal, 0)
	require.Greater(t, vipTotal, 0)
	baselineRate := float64(baselineChurned) / float64(baselineTotal)
	vipRate := float64(vipChurned) / float64(vipTotal)

	assert.Greater(t, baselineRate, vipRate, "vip's 0.2x churn multiplier must produce a materially lower churn rate than baseline")
}
