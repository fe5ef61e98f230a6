package modify

import (
	"fmt"
	"math"
	"time"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func init() {
	Register(core.ModTrend, modifyTrend)
}

// unitSeconds maps a TrendParams.Unit to its length in seconds for
// converting an elapsed duration into t.
var unitSeconds = map[string]float64{
	"hour":  3600,
	"day":   86400,
	"month": 86400 * 30,
	"year":  86400 * 365,
}

// modifyTrend multiplies the target column by a growth factor computed from
// the elapsed time between ReferenceColumn and Specification.Timeframe.Start,
// in the units given by Unit (default "year") (spec §4.4).
func modifyTrend(ctx *Context) error {
	p := ctx.Modifier.Trend
	c := ctx.Target
	if c.Kind != table.KindInt && c.Kind != table.KindFloat {
		return fmt.Errorf("modify: trend on non-numeric column %q", c.Name)
	}
	if ctx.Self == nil {
		return fmt.Errorf("modify: trend: node table not materialized")
	}
	refCol := ctx.Self.Column(p.ReferenceColumn)
	if refCol == nil || refCol.Kind != table.KindTime {
		return fmt.Errorf("modify: trend: reference_column %q is not a datetime column", p.ReferenceColumn)
	}

	unit := p.Unit
	if unit == "" {
		unit = "year"
	}
	secondsPerUnit, ok := unitSeconds[unit]
	if !ok {
		return fmt.Errorf("modify: trend: unknown unit %q", unit)
	}

	baseline := ctx.Spec.Timeframe.Start

	for i := 0; i < c.Len(); i++ {
		if c.Null[i] || refCol.Null[i] {
			continue
		}
		t := elapsedUnits(baseline, refCol.Times[i], secondsPerUnit)
		factor := trendFactor(p, t)
		if c.Kind == table.KindInt {
			c.Ints[i] = int64(float64(c.Ints[i]) * factor)
		} else {
			c.Floats[i] *= factor
		}
	}
	return nil
}

func elapsedUnits(baseline, t time.Time, secondsPerUnit float64) float64 {
	return t.Sub(baseline).Seconds() / secondsPerUnit
}

func trendFactor(p *core.TrendParams, t float64) float64 {
	switch p.Shape {
	case core.TrendLinear:
		return 1 + p.GrowthRate*t
	case core.TrendLogarithmic:
		return p.A + p.B*math.Log(t+1)
	default: // exponential
		return math.Exp(p.GrowthRate * t)
	}
}
