package validate

import (
	"fmt"
	"regexp"
	"time"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func (r *Report) runValue(spec *core.Specification, tables map[string]*table.Table) {
	for _, rc := range spec.Constraints.Ranges {
		r.checkRange(rc, tables)
	}
	for _, ineq := range spec.Constraints.Inequalities {
		r.checkInequality(ineq, tables)
	}
	for _, enum := range spec.Constraints.Enum {
		r.checkEnum(enum, tables)
	}
	for _, pat := range spec.Constraints.Pattern {
		r.checkPattern(pat, tables)
	}
}

func resolveColumn(ref string, tables map[string]*table.Table) (*table.Column, bool) {
	tableName, columnName, ok := splitRef(ref)
	if !ok {
		return nil, false
	}
	t, ok := tables[tableName]
	if !ok {
		return nil, false
	}
	c := t.Column(columnName)
	if c == nil {
		return nil, false
	}
	return c, true
}

func numericAt(c *table.Column, i int) (float64, bool) {
	switch c.Kind {
	case table.KindInt:
		return float64(c.Ints[i]), true
	case table.KindFloat:
		return c.Floats[i], true
	default:
		return 0, false
	}
}

func (r *Report) checkRange(rc core.RangeConstraint, tables map[string]*table.Table) {
	name := fmt.Sprintf("range:%s", rc.Column)
	col, ok := resolveColumn(rc.Column, tables)
	if !ok {
		r.add(CheckResult{Name: name, Family: FamilyValue, Status: StatusFail, Message: "column not found"})
		return
	}
	var offenders int
	for i := 0; i < col.Len(); i++ {
		if col.Null[i] {
			continue
		}
		v, ok := numericAt(col, i)
		if !ok || v < rc.Min || v > rc.Max {
			offenders++
		}
	}
	if offenders > 0 {
		r.add(CheckResult{Name: name, Family: FamilyValue, Status: StatusFail, Message: fmt.Sprintf("%d values outside [%g,%g]", offenders, rc.Min, rc.Max)})
		return
	}
	r.add(CheckResult{Name: name, Family: FamilyValue, Status: StatusPass})
}

func (r *Report) checkInequality(ineq core.Inequality, tables map[string]*table.Table) {
	name := fmt.Sprintf("inequality:%s %s %s", ineq.Left, ineq.Op, ineq.Right)
	left, ok1 := resolveColumn(ineq.Left, tables)
	right, ok2 := resolveColumn(ineq.Right, tables)
	if !ok1 || !ok2 {
		r.add(CheckResult{Name: name, Family: FamilyValue, Status: StatusFail, Message: "referenced column not found"})
		return
	}
	n := left.Len()
	if right.Len() < n {
		n = right.Len()
	}
	var offenders int
	for i := 0; i < n; i++ {
		if left.Null[i] || right.Null[i] {
			continue
		}
		var ok bool
		switch left.Kind {
		case table.KindTime:
			ok = compareTime(left.Times[i], ineq.Op, right.Times[i])
		default:
			lv, lok := numericAt(left, i)
			rv, rok := numericAt(right, i)
			if !lok || !rok {
				continue
			}
			ok = compareFloat(lv, ineq.Op, rv)
		}
		if !ok {
			offenders++
		}
	}
	if offenders > 0 {
		r.add(CheckResult{Name: name, Family: FamilyValue, Status: StatusFail, Message: fmt.Sprintf("%d rows violate inequality", offenders)})
		return
	}
	r.add(CheckResult{Name: name, Family: FamilyValue, Status: StatusPass})
}

func compareFloat(a float64, op core.InequalityOp, b float64) bool {
	switch op {
	case core.OpLess:
		return a < b
	case core.OpLessEqual:
		return a <= b
	case core.OpGreater:
		return a > b
	case core.OpGreaterEqual:
		return a >= b
	case core.OpEqual:
		return a == b
	default:
		return false
	}
}

func compareTime(a time.Time, op core.InequalityOp, b time.Time) bool {
	switch op {
	case core.OpLess:
		return a.Before(b)
	case core.OpLessEqual:
		return a.Before(b) || a.Equal(b)
	case core.OpGreater:
		return a.After(b)
	case core.OpGreaterEqual:
		return a.After(b) || a.Equal(b)
	case core.OpEqual:
		return a.Equal(b)
	default:
		return false
	}
}

func (r *Report) checkEnum(enum core.EnumConstraint, tables map[string]*table.Table) {
	name := fmt.Sprintf("enum:%s", enum.Column)
	col, ok := resolveColumn(enum.Column, tables)
	if !ok {
		r.add(CheckResult{Name: name, Family: FamilyValue, Status: StatusFail, Message: "column not found"})
		return
	}
	allowed := make(map[string]bool, len(enum.Values))
	for _, v := range enum.Values {
		allowed[v] = true
	}
	var offenders int
	for i := 0; i < col.Len(); i++ {
		if col.Null[i] || col.Kind != table.KindString {
			continue
		}
		if !allowed[col.Strings[i]] {
			offenders++
		}
	}
	if offenders > 0 {
		r.add(CheckResult{Name: name, Family: FamilyValue, Status: StatusFail, Message: fmt.Sprintf("%d values outside the declared enum", offenders)})
		return
	}
	r.add(CheckResult{Name: name, Family: FamilyValue, Status: StatusPass})
}

func (r *Report) checkPattern(pc core.PatternConstraint, tables map[string]*table.Table) {
	name := fmt.Sprintf("pattern:%s", pc.Column)
	col, ok := resolveColumn(pc.Column, tables)
	if !ok {
		r.add(CheckResult{Name: name, Family: FamilyValue, Status: StatusFail, Message: "column not found"})
		return
	}
	re, err := regexp.Compile(pc.Pattern)
	if err != nil {
		r.add(CheckResult{Name: name, Family: FamilyValue, Status: StatusFail, Message: fmt.Sprintf("invalid pattern: %v", err)})
		return
	}
	var offenders int
	for i := 0; i < col.Len(); i++ {
		if col.Null[i] || col.Kind != table.KindString {
			continue
		}
		if !re.MatchString(col.Strings[i]) {
			offenders++
		}
	}
	if offenders > 0 {
		r.add(CheckResult{Name: name, Family: FamilyValue, Status: StatusFail, Message: fmt.Sprintf("%d values do not match pattern", offenders)})
		return
	}
	r.add(CheckResult{Name: name, Family: FamilyValue, Status: StatusPass})
}
