package modify

import (
	"fmt"
	"time"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func init() {
	Register(core.ModSeasonality, modifySeasonality)
}

// modifySeasonality multiplies the target column by a per-row weight
// looked up from a sibling timestamp column's hour/day-of-week/month,
// normalized to mean 1 across the declared weights so the column's overall
// scale is preserved (spec §4.4).
func modifySeasonality(ctx *Context) error {
	p := ctx.Modifier.Seasonality
	c := ctx.Target
	if c.Kind != table.KindInt && c.Kind != table.KindFloat {
		return fmt.Errorf("modify: seasonality on non-numeric column %q", c.Name)
	}
	if ctx.Self == nil {
		return fmt.Errorf("modify: seasonality: node table not materialized")
	}
	tsCol := ctx.Self.Column(p.TimestampColumn)
	if tsCol == nil {
		return fmt.Errorf("modify: seasonality: timestamp column %q not found", p.TimestampColumn)
	}
	if len(p.Weights) == 0 {
		return fmt.Errorf("modify: seasonality: no weights declared")
	}

	mean := meanOf(p.Weights)
	if mean <= 0 {
		mean = 1
	}

	for i := 0; i < c.Len(); i++ {
		if c.Null[i] || tsCol.Null[i] {
			continue
		}
		idx := bucketIndex(p.Dimension, tsCol.Times[i])
		if idx < 0 || idx >= len(p.Weights) {
			continue
		}
		factor := p.Weights[idx] / mean
		if c.Kind == table.KindInt {
			c.Ints[i] = int64(float64(c.Ints[i]) * factor)
		} else {
			c.Floats[i] *= factor
		}
	}
	return nil
}

func bucketIndex(dim core.PatternDimension, t time.Time) int {
	switch dim {
	case core.PatternHour:
		return t.Hour()
	case core.PatternDOW:
		return int(t.Weekday())
	case core.PatternMonth:
		return int(t.Month()) - 1
	default:
		return -1
	}
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
