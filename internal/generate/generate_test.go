package generate

import (
	"math/rand"
	"testing"
	"time"

	"synthgen/internal/core"
	"synthgen/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCtx(rows int, col *core.ColumnDescriptor) *Context {
	return &Context{
		Spec: &core.Specification{
			Timeframe: core.Timeframe{
				Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		Node:   &core.NodeDescriptor{Name: "n"},
		Column: col,
		Rows:   rows,
		Rand:   rand.New(rand.NewSource(1)),
		Tables: map[string]*table.Table{},
	}
}

func TestSequenceGenerator(t *testing.T) {
	fn, err := Get(core.GenSequence)
	require.NoError(t, err)

	col := &core.ColumnDescriptor{Name: "id", Generator: core.GeneratorSpec{Kind: core.GenSequence, Sequence: &core.SequenceParams{Start: 10, Step: 5}}}
	out, err := fn(newCtx(3, col))
	require.NoError(t, err)
	assert.Equal(t, int64(10), out.At(0))
	assert.Equal(t, int64(15), out.At(1))
	assert.Equal(t, int64(20), out.At(2))
}

func TestEnumListGeneratorCycles(t *testing.T) {
	fn, err := Get(core.GenEnumList)
	require.NoError(t, err)

	col := &core.ColumnDescriptor{Name: "status", Generator: core.GeneratorSpec{Kind: core.GenEnumList, EnumList: &core.EnumListParams{Values: []string{"a", "b"}}}}
	out, err := fn(newCtx(5, col))
	require.NoError(t, err)
	assert.Equal(t, "a", out.At(0))
	assert.Equal(t, "b", out.At(1))
	assert.Equal(t, "a", out.At(2))
}

func TestChoiceGeneratorDrawsFromInlineValues(t *testing.T) {
	fn, err := Get(core.GenChoice)
	require.NoError(t, err)

	col := &core.ColumnDescriptor{Name: "tier", Generator: core.GeneratorSpec{Kind: core.GenChoice, Choice: &core.ChoiceParams{
		Values: []string{"free", "pro", "enterprise"},
	}}}
	out, err := fn(newCtx(50, col))
	require.NoError(t, err)
	for i := 0; i < out.Len(); i++ {
		v := out.At(i)
		assert.Contains(t, []string{"free", "pro", "enterprise"}, v)
	}
}

func TestDistributionGeneratorRespectsClamp(t *testing.T) {
	fn, err := Get(core.GenDistribution)
	require.NoError(t, err)

	col := &core.ColumnDescriptor{Name: "amount", Generator: core.GeneratorSpec{Kind: core.GenDistribution, Distribution: &core.DistributionParams{
		Name: core.DistNormal, Mean: 0, Std: 1000, Clamp: [2]float64{-1, 1},
	}}}
	out, err := fn(newCtx(100, col))
	require.NoError(t, err)
	for i := 0; i < out.Len(); i++ {
		v := out.At(i).(float64)
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestDatetimeSeriesGeneratorWithinTimeframe(t *testing.T) {
	fn, err := Get(core.GenDatetimeSeries)
	require.NoError(t, err)

	col := &core.ColumnDescriptor{Name: "created_at", Generator: core.GeneratorSpec{Kind: core.GenDatetimeSeries, DatetimeSeries: &core.DatetimeSeriesParams{Within: "timeframe"}}}
	ctx := newCtx(20, col)
	out, err := fn(ctx)
	require.NoError(t, err)
	for i := 0; i < out.Len(); i++ {
		v := out.At(i).(time.Time)
		assert.False(t, v.Before(ctx.Spec.Timeframe.Start))
		assert.True(t, v.Before(ctx.Spec.Timeframe.End))
	}
}

func TestLookupGeneratorCopiesPositionally(t *testing.T) {
	fn, err := Get(core.GenLookup)
	require.NoError(t, err)

	src := table.NewTable("users", "id", 3)
	idCol := src.AddColumn("id", table.KindInt)
	idCol.SetInt(0, 1)
	idCol.SetInt(1, 2)
	idCol.SetInt(2, 3)

	col := &core.ColumnDescriptor{Name: "user_ref", Generator: core.GeneratorSpec{Kind: core.GenLookup, Lookup: &core.LookupParams{From: "users.id"}}}
	ctx := newCtx(3, col)
	ctx.Tables["users"] = src

	out, err := fn(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.At(0))
	assert.Equal(t, int64(3), out.At(2))
}

func TestLookupGeneratorResolvesSelfReference(t *testing.T) {
	fn, err := Get(core.GenLookup)
	require.NoError(t, err)

	// The "employee" table under construction: employee_id is already
	// populated (declared before manager_id), manager_id is what this call
	// materializes (spec's S2 self-reference scenario).
	self := table.NewTable("employee", "employee_id", 100)
	idCol := self.AddColumn("employee_id", table.KindInt)
	for i := 0; i < 100; i++ {
		idCol.SetInt(i, int64(i+1))
	}

	col := &core.ColumnDescriptor{
		Name: "manager_id", Type: core.TypeInteger, Nullable: true,
		Generator: core.GeneratorSpec{Kind: core.GenLookup, Lookup: &core.LookupParams{From: "employee.employee_id"}},
	}
	ctx := newCtx(100, col)
	ctx.Node = &core.NodeDescriptor{Name: "employee"}
	ctx.Tables["employee"] = self

	out, err := fn(ctx)
	require.NoError(t, err)

	seen := make(map[int64]bool)
	identityCount := 0
	for i := 0; i < out.Len(); i++ {
		if out.Null[i] {
			continue
		}
		v := out.Ints[i]
		assert.True(t, v >= 1 && v <= 100, "manager_id must be a subset of employee_id")
		if v == idCol.Ints[i] {
			identityCount++
		}
		seen[v] = true
	}
	assert.Zero(t, identityCount, "a self-referencing lookup must never copy a row's own key")
	assert.Greater(t, len(seen), 1, "self-lookup should draw from more than one distinct key across 100 rows")
}

func TestExpressionGeneratorReferencesSiblingColumns(t *testing.T) {
	fn, err := Get(core.GenExpression)
	require.NoError(t, err)

	col := &core.ColumnDescriptor{Name: "total", Type: core.TypeFloating, Generator: core.GeneratorSpec{Kind: core.GenExpression, Expression: &core.ExpressionParams{Expr: "price * quantity"}}}
	ctx := newCtx(2, col)
	self := table.NewTable("n", "", 2)
	price := self.AddColumn("price", table.KindFloat)
	price.SetFloat(0, 2.5)
	price.SetFloat(1, 3.0)
	qty := self.AddColumn("quantity", table.KindInt)
	qty.SetInt(0, 4)
	qty.SetInt(1, 2)
	ctx.Tables["n"] = self

	out, err := fn(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, out.At(0), 1e-9)
	assert.InDelta(t, 6.0, out.At(1), 1e-9)
}
