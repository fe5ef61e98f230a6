package exec

import (
	"math/rand"
	"strings"
	"time"

	"synthgen/internal/core"
	"synthgen/internal/seed"
	"synthgen/internal/table"
)

// applyValueMultipliers scales declared columns by the owning parent row's
// segment, per SegmentBehavior.ValueMultiplier (spec §3.1 behavioral
// extensions).
func (e *Executor) applyValueMultipliers(node *core.NodeDescriptor, t *table.Table, parentIndex []int) error {
	seg := node.SegmentBehavior
	if seg == nil || len(seg.ValueMultiplier) == 0 || len(node.Parents) == 0 {
		return nil
	}
	parent, ok := e.tables[node.Parents[0]]
	if !ok {
		return nil
	}
	segOf := segmentLookup(parent, seg)

	for _, rule := range seg.ValueMultiplier {
		col := t.Column(rule.Column)
		if col == nil {
			continue
		}
		for i := 0; i < col.Len(); i++ {
			if col.Null[i] {
				continue
			}
			parentRow := i
			if parentIndex != nil {
				parentRow = parentIndex[i]
			}
			factor, ok := rule.Multiplier[segOf(parentRow)]
			if !ok {
				continue
			}
			scaleCell(col, i, factor)
		}
	}
	return nil
}

// applyValueGrowth scales every non-key numeric column of node's own table
// by VintageBehavior.ValueGrowth, evaluated at each row's own age (spec
// §4.5 "Vintage behavior").
func (e *Executor) applyValueGrowth(node *core.NodeDescriptor, t *table.Table) error {
	v := node.VintageBehavior
	if v == nil || len(v.ValueGrowth) == 0 {
		return nil
	}
	createdAt := t.Column(v.CreatedAtColumn)
	if createdAt == nil || createdAt.Kind != table.KindTime {
		return nil
	}
	for _, col := range t.Columns() {
		if col.Name == node.PK || col.Name == v.CreatedAtColumn {
			continue
		}
		if col.Kind != table.KindInt && col.Kind != table.KindFloat {
			continue
		}
		for i := 0; i < col.Len(); i++ {
			if col.Null[i] || createdAt.Null[i] {
				continue
			}
			age := e.ageInUnit(createdAt.Times[i], v.Unit)
			factor := core.Interpolate(v.ValueGrowth, age)
			scaleCell(col, i, factor)
		}
	}
	return nil
}

func scaleCell(col *table.Column, i int, factor float64) {
	switch col.Kind {
	case table.KindInt:
		col.Ints[i] = int64(float64(col.Ints[i]) * factor)
	case table.KindFloat:
		col.Floats[i] *= factor
	}
}

// enforceTemporalIntegrity resamples any datetime/date column whose fact
// row falls outside [parent creation, timeframe.end] (spec §4.5 "Temporal
// integrity"). Only applies to single-parent fact nodes whose parent
// declares VintageBehavior.CreatedAtColumn.
func (e *Executor) enforceTemporalIntegrity(node *core.NodeDescriptor, t *table.Table, parentIndex []int) error {
	if node.Kind != core.NodeFact || len(node.Parents) != 1 || parentIndex == nil {
		return nil
	}
	parent, ok := e.tables[node.Parents[0]]
	if !ok || parent.PK == "" {
		return nil
	}
	var createdAt *table.Column
	if len(node.Parents) == 1 {
		if pn := e.Spec.NodeByName(node.Parents[0]); pn != nil && pn.VintageBehavior != nil {
			createdAt = parent.Column(pn.VintageBehavior.CreatedAtColumn)
		}
	}
	if createdAt == nil {
		return nil
	}

	for _, col := range t.Columns() {
		if col.Kind != table.KindTime {
			continue
		}
		for i := 0; i < col.Len(); i++ {
			if col.Null[i] {
				continue
			}
			parentRow := parentIndex[i]
			if createdAt.Null[parentRow] {
				continue
			}
			lower := createdAt.Times[parentRow]
			upper := e.Spec.Timeframe.End
			if col.Times[i].Before(lower) || col.Times[i].After(upper) {
				col.Times[i] = resampleWithin(e.MasterSeed, node.Name, col.Name, i, lower, upper)
			}
		}
	}
	return nil
}

func resampleWithin(masterSeed uint64, node, column string, row int, lower, upper time.Time) time.Time {
	r := rand.New(rand.NewSource(int64(seed.Row(masterSeed, node, column+"__resample", row))))
	span := upper.Sub(lower)
	if span <= 0 {
		return lower
	}
	return lower.Add(time.Duration(r.Float64() * float64(span)))
}

// enforceUniqueness checks every Constraints.Unique entry that names a
// column on this node, returning a UniquenessViolated error on the first
// duplicate found (spec §7).
func (e *Executor) enforceUniqueness(node *core.NodeDescriptor, t *table.Table) error {
	for _, ref := range e.Spec.Constraints.Unique {
		tableName, columnName, ok := splitTableColumn(ref)
		if !ok || tableName != node.Name {
			continue
		}
		col := t.Column(columnName)
		if col == nil {
			continue
		}
		seen := make(map[any]bool, col.Len())
		for i := 0; i < col.Len(); i++ {
			if col.Null[i] {
				continue
			}
			v := col.At(i)
			if seen[v] {
				return core.Errorf(core.KindUniquenessViolated, "column", ref, "unique", "duplicate value %v at row %d", v, i)
			}
			seen[v] = true
		}
	}
	return nil
}

func splitTableColumn(ref string) (tableName, columnName string, ok bool) {
	i := strings.LastIndex(ref, ".")
	if i < 0 {
		return "", "", false
	}
	return ref[:i], ref[i+1:], true
}
