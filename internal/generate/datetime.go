package generate

import (
	"fmt"
	"time"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func init() {
	Register(core.GenDatetimeSeries, generateDatetimeSeries)
}

const maxPatternRejections = 64

func generateDatetimeSeries(ctx *Context) (*table.Column, error) {
	p := ctx.Column.Generator.DatetimeSeries

	start := ctx.Spec.Timeframe.Start
	end := ctx.Spec.Timeframe.End
	if p.Start != nil {
		start = p.Start.Time
	}
	if p.End != nil {
		end = p.End.Time
	}
	span := end.Sub(start)
	if span <= 0 {
		return nil, fmt.Errorf("datetime_series: column %q has a non-positive span", ctx.Column.Name)
	}

	col := table.NewColumn(ctx.Column.Name, table.KindTime, ctx.Rows)
	for i := 0; i < ctx.Rows; i++ {
		col.SetTime(i, sampleBiasedTime(ctx, start, span, p.Pattern))
	}
	return col, nil
}

// sampleBiasedTime draws uniformly within [start, start+span), then, if a
// bias pattern is declared, rejection-samples against the pattern's
// normalized weight for the draw's hour/day-of-week/month before accepting
// it, retrying up to maxPatternRejections times before giving up and
// keeping the last draw.
func sampleBiasedTime(ctx *Context, start time.Time, span time.Duration, pattern *core.DatetimePattern) time.Time {
	draw := func() time.Time {
		offset := time.Duration(ctx.Rand.Int63n(int64(span)))
		return start.Add(offset)
	}

	if pattern == nil || len(pattern.Weights) == 0 {
		return draw()
	}

	maxWeight := 0.0
	for _, w := range pattern.Weights {
		if w > maxWeight {
			maxWeight = w
		}
	}
	if maxWeight <= 0 {
		return draw()
	}

	t := draw()
	for attempt := 0; attempt < maxPatternRejections; attempt++ {
		idx := bucketIndex(pattern.Dimension, t)
		if idx < 0 || idx >= len(pattern.Weights) {
			return t
		}
		if ctx.Rand.Float64() <= pattern.Weights[idx]/maxWeight {
			return t
		}
		t = draw()
	}
	return t
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
