package core

import "regexp"

func (s *Specification) validateConstraints() error {
	for _, ref := range s.Constraints.Unique {
		if err := s.mustResolveColumn("constraints.unique", ref); err != nil {
			return err
		}
	}
	for _, fk := range s.Constraints.ForeignKeys {
		if err := s.mustResolveColumn("constraints.foreign_keys.child", fk.Child); err != nil {
			return err
		}
		if err := s.mustResolveColumn("constraints.foreign_keys.parent", fk.Parent); err != nil {
			return err
		}
	}
	for _, r := range s.Constraints.Ranges {
		if err := s.mustResolveColumn("constraints.ranges", r.Column); err != nil {
			return err
		}
		if r.Max < r.Min {
			return invalidf("constraint", r.Column, "ranges", "max (%v) must be >= min (%v)", r.Max, r.Min)
		}
	}
	for _, ineq := range s.Constraints.Inequalities {
		if err := s.mustResolveSameNodeColumns("constraints.inequalities", ineq.Left, ineq.Right); err != nil {
			return err
		}
		switch ineq.Op {
		case OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpEqual:
		default:
			return invalidf("constraint", ineq.Left, "inequalities.op", "unknown operator %q", ineq.Op)
		}
	}
	for _, e := range s.Constraints.Enum {
		if err := s.mustResolveColumn("constraints.enum", e.Column); err != nil {
			return err
		}
		if len(e.Values) == 0 {
			return invalidf("constraint", e.Column, "enum.values", "enum constraint needs at least one value")
		}
	}
	for _, p := range s.Constraints.Pattern {
		if err := s.mustResolveColumn("constraints.pattern", p.Column); err != nil {
			return err
		}
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return invalidf("constraint", p.Column, "pattern.pattern", "invalid regular expression %q: %v", p.Pattern, err)
		}
	}
	return nil
}

func (s *Specification) validateTargets() error {
	if s.Targets == nil {
		return nil
	}
	if w := s.Targets.WeekendShare; w != nil {
		if err := s.mustResolveColumn("targets.weekend_share", w.Column); err != nil {
			return err
		}
		if w.Share < 0 || w.Share > 1 {
			return invalidf("target", w.Column, "weekend_share.share", "share must be in [0,1], got %v", w.Share)
		}
	}
	for _, m := range s.Targets.MeanInRange {
		if err := s.mustResolveColumn("targets.mean_in_range", m.Column); err != nil {
			return err
		}
		if m.Max < m.Min {
			return invalidf("target", m.Column, "mean_in_range", "max (%v) must be >= min (%v)", m.Max, m.Min)
		}
	}
	for _, ce := range s.Targets.CompositeEffect {
		if err := s.mustResolveColumn("targets.composite_effect", ce.Column); err != nil {
			return err
		}
		if s.NodeByName(ce.EffectTable) == nil {
			return inconsistentf("target", ce.Column, "composite_effect.effect_table", "table %q does not exist", ce.EffectTable)
		}
	}
	return nil
}

// mustResolveColumn checks that ref ("table.column") names an existing
// node and column.
func (s *Specification) mustResolveColumn(field, ref string) error {
	table, col, ok := splitRef(ref)
	if !ok {
		return invalidf("constraint", ref, field, "expected \"table.column\", got %q", ref)
	}
	n := s.NodeByName(table)
	if n == nil {
		return inconsistentf("constraint", ref, field, "table %q does not exist", table)
	}
	if n.ColumnByName(col) == nil && col != n.PK {
		return inconsistentf("constraint", ref, field, "column %q does not exist on table %q", col, table)
	}
	return nil
}

// mustResolveSameNodeColumns checks that left and right both resolve and
// share the same owning node, as an inequality constraint requires.
func (s *Specification) mustResolveSameNodeColumns(field, left, right string) error {
	if err := s.mustResolveColumn(field, left); err != nil {
		return err
	}
	if err := s.mustResolveColumn(field, right); err != nil {
		return err
	}
	lt, _, _ := splitRef(left)
	rt, _, _ := splitRef(right)
	if lt != rt {
		return inconsistentf("constraint", left, field, "inequality compares columns from different tables (%q vs %q)", lt, rt)
	}
	return nil
}
