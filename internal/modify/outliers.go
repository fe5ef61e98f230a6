package modify

import (
	"fmt"
	"math"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func init() {
	Register(core.ModOutliers, modifyOutliers)
}

// modifyOutliers replaces a Rate fraction of rows with a spike or drop
// drawn from MagnitudeDist, applied multiplicatively to the existing value
// (spec §4.4).
func modifyOutliers(ctx *Context) error {
	p := ctx.Modifier.Outliers
	c := ctx.Target
	if c.Kind != table.KindInt && c.Kind != table.KindFloat {
		return fmt.Errorf("modify: outliers on non-numeric column %q", c.Name)
	}

	magnitude := func() float64 {
		switch p.MagnitudeDist {
		case core.DistLognormal:
			return math.Exp(ctx.Rand.NormFloat64()*p.MagnitudeStd + p.MagnitudeMean)
		default:
			return ctx.Rand.NormFloat64()*p.MagnitudeStd + p.MagnitudeMean
		}
	}

	for i := 0; i < c.Len(); i++ {
		if c.Null[i] {
			continue
		}
		if ctx.Rand.Float64() >= p.Rate {
			continue
		}
		m := magnitude()
		if c.Kind == table.KindInt {
			c.Ints[i] = int64(float64(c.Ints[i]) * m)
		} else {
			c.Floats[i] *= m
		}
	}
	return nil
}
