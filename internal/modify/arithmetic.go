package modify

import (
	"fmt"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func init() {
	Register(core.ModMultiply, modifyMultiply)
	Register(core.ModAdd, modifyAdd)
	Register(core.ModClamp, modifyClamp)
}

func modifyMultiply(ctx *Context) error {
	p := ctx.Modifier.Multiply
	return mapNumeric(ctx, func(v float64) float64 { return v * p.Factor })
}

func modifyAdd(ctx *Context) error {
	p := ctx.Modifier.Add
	return mapNumeric(ctx, func(v float64) float64 { return v + p.Offset })
}

func modifyClamp(ctx *Context) error {
	p := ctx.Modifier.Clamp
	return mapNumeric(ctx, func(v float64) float64 {
		if v < p.Min {
			return p.Min
		}
		if v > p.Max {
			return p.Max
		}
		return v
	})
}

// mapNumeric applies fn to every non-null value of ctx.Target, which must
// be an integer or floating column.
func mapNumeric(ctx *Context, fn func(float64) float64) error {
	c := ctx.Target
	switch c.Kind {
	case table.KindInt:
		for i := 0; i < c.Len(); i++ {
			if c.Null[i] {
				continue
			}
			c.Ints[i] = int64(fn(float64(c.Ints[i])))
		}
	case table.KindFloat:
		for i := 0; i < c.Len(); i++ {
			if c.Null[i] {
				continue
			}
			c.Floats[i] = fn(c.Floats[i])
		}
	default:
		return fmt.Errorf("modify: column %q is not numeric", c.Name)
	}
	return nil
}
