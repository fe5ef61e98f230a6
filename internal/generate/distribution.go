package generate

import (
	"fmt"
	"math"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func init() {
	Register(core.GenDistribution, generateDistribution)
}

// generateDistribution draws from one of the four supported numeric
// distributions and clamps every draw to the declared bounds (spec §4.3:
// clamp is mandatory, out-of-range draws are truncated, never discarded).
//
// No distribution-sampling library appears anywhere in the example corpus
// (only montanaflynn/stats, which computes statistics over existing data,
// not draws); these samplers are implemented directly on math/rand.
func generateDistribution(ctx *Context) (*table.Column, error) {
	p := ctx.Column.Generator.Distribution
	col := table.NewColumn(ctx.Column.Name, table.KindFloat, ctx.Rows)

	var draw func() float64
	switch p.Name {
	case core.DistNormal:
		draw = func() float64 { return ctx.Rand.NormFloat64()*p.Std + p.Mean }
	case core.DistLognormal:
		draw = func() float64 { return math.Exp(ctx.Rand.NormFloat64()*p.Sigma + p.Mean) }
	case core.DistUniform:
		span := p.High - p.Low
		draw = func() float64 { return p.Low + ctx.Rand.Float64()*span }
	case core.DistPoisson:
		draw = func() float64 { return float64(samplePoisson(ctx.Rand.Float64, p.Lambda)) }
	default:
		return nil, fmt.Errorf("distribution: unknown distribution %q", p.Name)
	}

	lo, hi := p.Clamp[0], p.Clamp[1]
	for i := 0; i < ctx.Rows; i++ {
		col.SetFloat(i, clamp(draw(), lo, hi))
	}
	return col, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// samplePoisson implements Knuth's algorithm: O(lambda) per draw, adequate
// for the lambdas this engine's fanout and count columns realistically use.
func samplePoisson(uniform func() float64, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		k++
		p *= uniform()
		if p <= l {
			return k - 1
		}
	}
}
