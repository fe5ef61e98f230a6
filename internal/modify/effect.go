package modify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func init() {
	Register(core.ModEffect, modifyEffect)
}

// modifyEffect joins each row of the owning table against an effect table
// on a set of key columns and a time window, then applies the matching
// effect row's multiplier or delta (spec §4.4). A table-scoped effect
// returns here without changing the column, and the executor does not apply
// it to fanout counts either; only Scope == column alters data.
func modifyEffect(ctx *Context) error {
	p := ctx.Modifier.Effect
	if p.Scope == core.EffectScopeTable {
		return nil
	}
	c := ctx.Target
	if c.Kind != table.KindInt && c.Kind != table.KindFloat {
		return fmt.Errorf("modify: effect on non-numeric column %q", c.Name)
	}

	effectTable, ok := ctx.Tables[p.Table]
	if !ok {
		return fmt.Errorf("modify: effect table %q not yet materialized", p.Table)
	}
	if ctx.Self == nil {
		return fmt.Errorf("modify: effect: node table not materialized")
	}
	selfTime := ctx.Self.Column(p.TimeColumn)
	if selfTime == nil || selfTime.Kind != table.KindTime {
		return fmt.Errorf("modify: effect: time_column %q is not a datetime column", p.TimeColumn)
	}

	effectKeyCols := make([]*table.Column, len(p.KeyColumns))
	selfKeyCols := make([]*table.Column, len(p.KeyColumns))
	for i, k := range p.KeyColumns {
		effectKeyCols[i] = effectTable.Column(k)
		selfKeyCols[i] = ctx.Self.Column(k)
		if effectKeyCols[i] == nil || selfKeyCols[i] == nil {
			return fmt.Errorf("modify: effect: key column %q missing on table or effect table", k)
		}
	}
	effectTime := effectTable.Column(p.TimeColumn)
	effectWindow := effectTable.Column(p.EffectWindowCol)
	if effectTime == nil || effectWindow == nil {
		return fmt.Errorf("modify: effect: effect table missing time_column or effect_window_col")
	}
	var magnitudeCol *table.Column
	switch p.Op {
	case core.EffectMul:
		magnitudeCol = effectTable.Column(p.MultiplierCol)
	case core.EffectAdd:
		magnitudeCol = effectTable.Column(p.DeltaCol)
	default:
		return fmt.Errorf("modify: effect: unknown op %q", p.Op)
	}
	if magnitudeCol == nil {
		return fmt.Errorf("modify: effect: magnitude column not found for op %q", p.Op)
	}

	for row := 0; row < c.Len(); row++ {
		if c.Null[row] || selfTime.Null[row] {
			continue
		}
		key := rowKey(selfKeyCols, row)
		t := selfTime.Times[row]

		for erow := 0; erow < effectTime.Len(); erow++ {
			if effectTime.Null[erow] || rowKey(effectKeyCols, erow) != key {
				continue
			}
			start := effectTime.Times[erow]
			windowDays := effectWindow.Floats[erow]
			end := start.Add(time.Duration(windowDays * 24 * float64(time.Hour)))
			if t.Before(start) || !t.Before(end) {
				continue
			}
			applyMagnitude(c, row, p.Op, magnitudeCol, erow)
		}
	}
	return nil
}

func applyMagnitude(c *table.Column, row int, op core.EffectOp, magnitudeCol *table.Column, erow int) {
	m := magnitudeCol.Floats[erow]
	switch c.Kind {
	case table.KindInt:
		if op == core.EffectMul {
			c.Ints[row] = int64(float64(c.Ints[row]) * m)
		} else {
			c.Ints[row] += int64(m)
		}
	case table.KindFloat:
		if op == core.EffectMul {
			c.Floats[row] *= m
		} else {
			c.Floats[row] += m
		}
	}
}

func rowKey(cols []*table.Column, row int) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		if c.Null[row] {
			parts[i] = ""
			continue
		}
		switch c.Kind {
		case table.KindInt:
			parts[i] = strconv.FormatInt(c.Ints[row], 10)
		case table.KindString:
			parts[i] = c.Strings[row]
		case table.KindFloat:
			parts[i] = strconv.FormatFloat(c.Floats[row], 'g', -1, 64)
		}
	}
	return strings.Join(parts, "\x1f")
}
