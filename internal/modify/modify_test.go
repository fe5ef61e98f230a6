package modify

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func floatColumn(values ...float64) *table.Column {
	c := table.NewColumn("x", table.KindFloat, len(values))
	for i, v := range values {
		c.SetFloat(i, v)
	}
	return c
}

func intColumn(values ...int64) *table.Column {
	c := table.NewColumn("x", table.KindInt, len(values))
	for i, v := range values {
		c.SetInt(i, v)
	}
	return c
}

func newRand() *rand.Rand { return rand.New(rand.NewSource(1)) }

func TestModifyMultiply(t *testing.T) {
	c := floatColumn(2, 4, 6)
	ctx := &Context{
		Target:   c,
		Modifier: &core.ModifierSpec{Multiply: &core.MultiplyParams{Factor: 2}},
		Rand:     newRand(),
	}
	fn, err := Get(core.ModMultiply)
	require.NoError(t, err)
	require.NoError(t, fn(ctx))
	assert.Equal(t, []float64{4, 8, 12}, c.Floats)
}

func TestModifyAdd(t *testing.T) {
	c := intColumn(1, 2, 3)
	ctx := &Context{
		Target:   c,
		Modifier: &core.ModifierSpec{Add: &core.AddParams{Offset: 10}},
		Rand:     newRand(),
	}
	fn, err := Get(core.ModAdd)
	require.NoError(t, err)
	require.NoError(t, fn(ctx))
	assert.Equal(t, []int64{11, 12, 13}, c.Ints)
}

func TestModifyClamp(t *testing.T) {
	c := floatColumn(-5, 0, 100)
	ctx := &Context{
		Target:   c,
		Modifier: &core.ModifierSpec{Clamp: &core.ClampParams{Min: 0, Max: 10}},
		Rand:     newRand(),
	}
	fn, err := Get(core.ModClamp)
	require.NoError(t, err)
	require.NoError(t, fn(ctx))
	assert.Equal(t, []float64{0, 0, 10}, c.Floats)
}

func TestModifyClampRejectsNonNumeric(t *testing.T) {
	c := table.NewColumn("x", table.KindString, 1)
	c.SetString(0, "a")
	ctx := &Context{
		Target:   c,
		Modifier: &core.ModifierSpec{Clamp: &core.ClampParams{Min: 0, Max: 1}},
		Rand:     newRand(),
	}
	fn, err := Get(core.ModClamp)
	require.NoError(t, err)
	assert.Error(t, fn(ctx))
}

func TestModifyJitterMultiplyStaysCloseForZeroStd(t *testing.T) {
	c := floatColumn(10, 10, 10)
	ctx := &Context{
		Target: c,
		Modifier: &core.ModifierSpec{Jitter: &core.JitterParams{
			Mode:         "multiply",
			Distribution: core.DistNormal,
			Mean:         1,
			Std:          0,
		}},
		Rand: newRand(),
	}
	fn, err := Get(core.ModJitter)
	require.NoError(t, err)
	require.NoError(t, fn(ctx))
	for _, v := range c.Floats {
		assert.InDelta(t, 10, v, 1e-9)
	}
}

func TestModifyTimeJitterShiftsTimestamps(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := table.NewColumn("ts", table.KindTime, 3)
	for i := 0; i < 3; i++ {
		c.SetTime(i, base)
	}
	ctx := &Context{
		Target:   c,
		Modifier: &core.ModifierSpec{TimeJitter: &core.TimeJitterParams{StdSeconds: 60}},
		Rand:     newRand(),
	}
	fn, err := Get(core.ModTimeJitter)
	require.NoError(t, err)
	require.NoError(t, fn(ctx))
	for _, v := range c.Times {
		assert.NotEqual(t, base, v)
	}
}

func TestModifyMapValues(t *testing.T) {
	c := table.NewColumn("status", table.KindString, 2)
	c.SetString(0, "y")
	c.SetString(1, "n")
	ctx := &Context{
		Target: c,
		Modifier: &core.ModifierSpec{MapValues: &core.MapValuesParams{
			Mapping: map[string]string{"y": "yes", "n": "no"},
		}},
		Rand: newRand(),
	}
	fn, err := Get(core.ModMapValues)
	require.NoError(t, err)
	require.NoError(t, fn(ctx))
	assert.Equal(t, []string{"yes", "no"}, c.Strings)
}

func TestModifySeasonalityScalesByHourBucket(t *testing.T) {
	selfTable := table.NewTable("orders", "id", 2)
	ts := selfTable.AddColumn("created_at", table.KindTime)
	ts.SetTime(0, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))  // hour 0
	ts.SetTime(1, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)) // hour 12

	c := floatColumn(10, 10)
	weights := make([]float64, 24)
	for i := range weights {
		weights[i] = 1
	}
	weights[0] = 0.5
	weights[12] = 2

	ctx := &Context{
		Target: c,
		Self:   selfTable,
		Modifier: &core.ModifierSpec{Seasonality: &core.SeasonalityParams{
			TimestampColumn: "created_at",
			Dimension:       core.PatternHour,
			Weights:         weights,
		}},
		Rand: newRand(),
	}
	fn, err := Get(core.ModSeasonality)
	require.NoError(t, err)
	require.NoError(t, fn(ctx))
	assert.Less(t, c.Floats[0], 10.0)
	assert.Greater(t, c.Floats[1], 10.0)
}

func TestModifyOutliersRespectsRateZero(t *testing.T) {
	c := floatColumn(1, 2, 3, 4, 5)
	ctx := &Context{
		Target: c,
		Modifier: &core.ModifierSpec{Outliers: &core.OutliersParams{
			Rate:          0,
			MagnitudeDist: core.DistNormal,
			MagnitudeMean: 10,
			MagnitudeStd:  1,
		}},
		Rand: newRand(),
	}
	fn, err := Get(core.ModOutliers)
	require.NoError(t, err)
	require.NoError(t, fn(ctx))
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, c.Floats)
}

func TestModifyEffectAppliesMultiplierWithinWindow(t *testing.T) {
	selfTable := table.NewTable("orders", "id", 2)
	custKey := selfTable.AddColumn("customer_id", table.KindInt)
	custKey.SetInt(0, 1)
	custKey.SetInt(1, 1)
	orderTime := selfTable.AddColumn("ordered_at", table.KindTime)
	orderTime.SetTime(0, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))  // inside promo window
	orderTime.SetTime(1, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))   // outside

	promo := table.NewTable("promotions", "id", 1)
	promoKey := promo.AddColumn("customer_id", table.KindInt)
	promoKey.SetInt(0, 1)
	promoStart := promo.AddColumn("ordered_at", table.KindTime)
	promoStart.SetTime(0, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	promoWindow := promo.AddColumn("window_days", table.KindFloat)
	promoWindow.SetFloat(0, 30)
	promoMult := promo.AddColumn("multiplier", table.KindFloat)
	promoMult.SetFloat(0, 2)

	c := floatColumn(100, 100)
	ctx := &Context{
		Target: c,
		Self:   selfTable,
		Tables: map[string]*table.Table{"promotions": promo},
		Modifier: &core.ModifierSpec{Effect: &core.EffectParams{
			Table:           "promotions",
			KeyColumns:      []string{"customer_id"},
			TimeColumn:      "ordered_at",
			EffectWindowCol: "window_days",
			MultiplierCol:   "multiplier",
			Op:              core.EffectMul,
			Scope:           core.EffectScopeColumn,
		}},
		Rand: newRand(),
	}

	fn, err := Get(core.ModEffect)
	require.NoError(t, err)
	require.NoError(t, fn(ctx))
	assert.Equal(t, 200.0, c.Floats[0])
	assert.Equal(t, 100.0, c.Floats[1])
}

func TestModifyTrendExponentialGrowsOverTime(t *testing.T) {
	selfTable := table.NewTable("accounts", "id", 2)
	ref := selfTable.AddColumn("created_at", table.KindTime)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ref.SetTime(0, start)
	ref.SetTime(1, start.AddDate(1, 0, 0))

	c := floatColumn(100, 100)
	ctx := &Context{
		Target: c,
		Self:   selfTable,
		Spec:   &core.Specification{Timeframe: core.Timeframe{Start: start}},
		Modifier: &core.ModifierSpec{Trend: &core.TrendParams{
			Shape:           core.TrendExponential,
			GrowthRate:      0.1,
			ReferenceColumn: "created_at",
			Unit:            "year",
		}},
		Rand: newRand(),
	}
	fn, err := Get(core.ModTrend)
	require.NoError(t, err)
	require.NoError(t, fn(ctx))
	assert.Equal(t, 100.0, c.Floats[0])
	assert.Greater(t, c.Floats[1], 100.0)
}
