package exec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func intPtr(v int) *int { return &v }

// s1Spec builds the spec.md "S1 — Users and events" scenario: 50 users,
// fact events with poisson(8) fanout referencing the user's primary key.
func s1Spec() *core.Specification {
	return &core.Specification{
		Version:  "1",
		Metadata: core.Metadata{DatasetName: "s1"},
		Timeframe: core.Timeframe{
			Start:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			End:       time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			Frequency: core.FrequencyDay,
		},
		Nodes: []*core.NodeDescriptor{
			{
				Name: "user", Kind: core.NodeEntity, PK: "user_id", Rows: intPtr(50),
				Columns: []*core.ColumnDescriptor{
					{Name: "user_id", Type: core.TypeInteger, Generator: core.GeneratorSpec{
						Kind: core.GenSequence, Sequence: &core.SequenceParams{Start: 1, Step: 1},
					}},
					{Name: "age", Type: core.TypeInteger, Generator: core.GeneratorSpec{
						Kind: core.GenDistribution, Distribution: &core.DistributionParams{
							Name: core.DistNormal, Mean: 35, Std: 12, Clamp: [2]float64{18, 80},
						},
					}},
				},
			},
			{
				Name: "event", Kind: core.NodeFact, PK: "event_id", Parents: []string{"user"},
				Fanout: &core.Fanout{Distribution: core.FanoutPoisson, Lambda: 8, ClampMin: 0, ClampMax: 50},
				Columns: []*core.ColumnDescriptor{
					{Name: "event_id", Type: core.TypeInteger, Generator: core.GeneratorSpec{
						Kind: core.GenSequence, Sequence: &core.SequenceParams{Start: 1, Step: 1},
					}},
					{Name: "user_id", Type: core.TypeInteger, Generator: core.GeneratorSpec{
						Kind: core.GenLookup, Lookup: &core.LookupParams{From: "user.user_id"},
					}},
					{Name: "amount", Type: core.TypeFloating, Generator: core.GeneratorSpec{
						Kind: core.GenDistribution, Distribution: &core.DistributionParams{
							Name: core.DistLognormal, Mean: 3, Sigma: 0.5, Clamp: [2]float64{5, 1000},
						},
					}},
				},
			},
		},
	}
}

func TestExecutorRunProducesUserAndEventTables(t *testing.T) {
	ex := &Executor{Spec: s1Spec(), MasterSeed: 42}
	tables, err := ex.Run()
	require.NoError(t, err)

	users := tables["user"]
	require.NotNil(t, users)
	assert.Equal(t, 50, users.Rows)
	ageCol := users.Column("age")
	require.Equal(t, table.KindInt, ageCol.Kind, "age is declared integer and must be cast from the distribution generator's float output")
	for i := 0; i < ageCol.Len(); i++ {
		assert.GreaterOrEqual(t, ageCol.Ints[i], int64(18))
		assert.LessOrEqual(t, ageCol.Ints[i], int64(80))
	}

	events := tables["event"]
	require.NotNil(t, events)
	assert.Greater(t, events.Rows, 0)

	userIDs := make(map[int64]bool)
	idCol := users.Column("user_id")
	for i := 0; i < idCol.Len(); i++ {
		userIDs[idCol.Ints[i]] = true
	}
	fkCol := events.Column("user_id")
	for i := 0; i < fkCol.Len(); i++ {
		assert.True(t, userIDs[fkCol.Ints[i]], "event.user_id must reference an existing user")
	}

	amountCol := events.Column("amount")
	for i := 0; i < amountCol.Len(); i++ {
		assert.GreaterOrEqual(t, amountCol.Floats[i], 5.0)
		assert.LessOrEqual(t, amountCol.Floats[i], 1000.0)
	}
}

func TestExecutorRunIsDeterministic(t *testing.T) {
	ex1 := &Executor{Spec: s1Spec(), MasterSeed: 7}
	ex2 := &Executor{Spec: s1Spec(), MasterSeed: 7}

	t1, err := ex1.Run()
	require.NoError(t, err)
	t2, err := ex2.Run()
	require.NoError(t, err)

	e1, e2 := t1["event"], t2["event"]
	require.Equal(t, e1.Rows, e2.Rows)
	amount1, amount2 := e1.Column("amount"), e2.Column("amount")
	assert.Equal(t, amount1.Floats, amount2.Floats)
}

func TestExecutorRejectsCyclicPlan(t *testing.T) {
	spec := &core.Specification{
		Nodes: []*core.NodeDescriptor{
			{Name: "a", Kind: core.NodeFact, PK: "id", Parents: []string{"b"}, Fanout: &core.Fanout{Distribution: core.FanoutUniform, Min: 1, Max: 1, ClampMin: 1, ClampMax: 1}},
			{Name: "b", Kind: core.NodeFact, PK: "id", Parents: []string{"a"}, Fanout: &core.Fanout{Distribution: core.FanoutUniform, Min: 1, Max: 1, ClampMin: 1, ClampMax: 1}},
		},
	}
	ex := &Executor{Spec: spec, MasterSeed: 1}
	_, err := ex.Run()
	require.Error(t, err)
	var specErr *core.SpecError
	require.ErrorAs(t, err, &specErr)
	assert.Equal(t, core.KindCyclicPlan, specErr.Kind)
}
