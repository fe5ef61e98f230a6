package modify

import (
	"fmt"
	"math"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func init() {
	Register(core.ModJitter, modifyJitter)
	Register(core.ModTimeJitter, modifyTimeJitter)
}

func modifyJitter(ctx *Context) error {
	p := ctx.Modifier.Jitter
	c := ctx.Target

	noise := func() float64 {
		switch p.Distribution {
		case core.DistLognormal:
			return math.Exp(ctx.Rand.NormFloat64()*p.Std + p.Mean)
		case core.DistUniform:
			return p.Mean + (ctx.Rand.Float64()*2-1)*p.Std
		default: // normal
			return ctx.Rand.NormFloat64()*p.Std + p.Mean
		}
	}

	switch c.Kind {
	case table.KindInt:
		for i := 0; i < c.Len(); i++ {
			if c.Null[i] {
				continue
			}
			n := noise()
			if p.Mode == "multiply" {
				c.Ints[i] = int64(float64(c.Ints[i]) * n)
			} else {
				c.Ints[i] += int64(n)
			}
		}
	case table.KindFloat:
		for i := 0; i < c.Len(); i++ {
			if c.Null[i] {
				continue
			}
			n := noise()
			if p.Mode == "multiply" {
				c.Floats[i] *= n
			} else {
				c.Floats[i] += n
			}
		}
	default:
		return fmt.Errorf("modify: jitter on non-numeric column %q", c.Name)
	}
	return nil
}

func modifyTimeJitter(ctx *Context) error {
	p := ctx.Modifier.TimeJitter
	c := ctx.Target
	if c.Kind != table.KindTime {
		return fmt.Errorf("modify: time_jitter on non-datetime column %q", c.Name)
	}
	for i := 0; i < c.Len(); i++ {
		if c.Null[i] {
			continue
		}
		deltaSeconds := ctx.Rand.NormFloat64() * p.StdSeconds
		c.Times[i] = c.Times[i].Add(secondsToDuration(deltaSeconds))
	}
	return nil
}
