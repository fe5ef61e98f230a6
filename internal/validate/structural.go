package validate

import (
	"fmt"
	"strings"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func splitRef(ref string) (tableName, columnName string, ok bool) {
	i := strings.LastIndex(ref, ".")
	if i < 0 {
		return "", "", false
	}
	return ref[:i], ref[i+1:], true
}

func (r *Report) runStructural(spec *core.Specification, tables map[string]*table.Table) {
	for _, node := range spec.Nodes {
		t, ok := tables[node.Name]
		if !ok {
			r.add(CheckResult{Name: "table_exists:" + node.Name, Family: FamilyStructural, Status: StatusFail, Message: "declared node has no materialized table"})
			continue
		}
		r.checkPKUniqueness(node, t)
		r.checkColumnExistence(node, t)
		r.checkNullability(node, t)
	}
	r.checkForeignKeys(spec, tables)
}

func (r *Report) checkPKUniqueness(node *core.NodeDescriptor, t *table.Table) {
	name := fmt.Sprintf("pk_unique:%s", node.Name)
	if node.PK == "" {
		return
	}
	col := t.Column(node.PK)
	if col == nil {
		r.add(CheckResult{Name: name, Family: FamilyStructural, Status: StatusFail, Message: fmt.Sprintf("primary key column %q missing", node.PK)})
		return
	}
	seen := make(map[any]bool, col.Len())
	var dupes []string
	for i := 0; i < col.Len(); i++ {
		if col.Null[i] {
			continue
		}
		v := col.At(i)
		if seen[v] {
			dupes = append(dupes, fmt.Sprintf("%v", v))
		}
		seen[v] = true
	}
	if len(dupes) > 0 {
		r.add(CheckResult{Name: name, Family: FamilyStructural, Status: StatusFail, Message: "duplicate primary key values", Samples: capSamples(dupes)})
		return
	}
	r.add(CheckResult{Name: name, Family: FamilyStructural, Status: StatusPass})
}

func (r *Report) checkColumnExistence(node *core.NodeDescriptor, t *table.Table) {
	name := fmt.Sprintf("columns_exist:%s", node.Name)
	var missing []string
	for _, c := range node.Columns {
		if t.Column(c.Name) == nil {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		r.add(CheckResult{Name: name, Family: FamilyStructural, Status: StatusFail, Message: "declared columns missing from table", Samples: missing})
		return
	}
	r.add(CheckResult{Name: name, Family: FamilyStructural, Status: StatusPass})
}

func (r *Report) checkNullability(node *core.NodeDescriptor, t *table.Table) {
	for _, c := range node.Columns {
		if c.Nullable {
			continue
		}
		col := t.Column(c.Name)
		if col == nil {
			continue
		}
		name := fmt.Sprintf("not_null:%s.%s", node.Name, c.Name)
		var violations int
		for i := 0; i < col.Len(); i++ {
			if col.Null[i] {
				violations++
			}
		}
		if violations > 0 {
			r.add(CheckResult{Name: name, Family: FamilyStructural, Status: StatusFail, Message: fmt.Sprintf("%d null values in non-nullable column", violations)})
			continue
		}
		r.add(CheckResult{Name: name, Family: FamilyStructural, Status: StatusPass})
	}
}

func (r *Report) checkForeignKeys(spec *core.Specification, tables map[string]*table.Table) {
	for _, fk := range spec.Constraints.ForeignKeys {
		name := fmt.Sprintf("foreign_key:%s->%s", fk.Child, fk.Parent)
		childTable, childCol, ok1 := splitRef(fk.Child)
		parentTable, parentCol, ok2 := splitRef(fk.Parent)
		if !ok1 || !ok2 {
			r.add(CheckResult{Name: name, Family: FamilyStructural, Status: StatusFail, Message: "malformed foreign_keys reference"})
			continue
		}
		child := tables[childTable]
		parent := tables[parentTable]
		if child == nil || parent == nil {
			r.add(CheckResult{Name: name, Family: FamilyStructural, Status: StatusFail, Message: "referenced table not materialized"})
			continue
		}
		cc := child.Column(childCol)
		pc := parent.Column(parentCol)
		if cc == nil || pc == nil {
			r.add(CheckResult{Name: name, Family: FamilyStructural, Status: StatusFail, Message: "referenced column not found"})
			continue
		}
		valid := make(map[any]bool, pc.Len())
		for i := 0; i < pc.Len(); i++ {
			if !pc.Null[i] {
				valid[pc.At(i)] = true
			}
		}
		var offenders []string
		for i := 0; i < cc.Len(); i++ {
			if cc.Null[i] {
				continue
			}
			if !valid[cc.At(i)] {
				offenders = append(offenders, fmt.Sprintf("%v", cc.At(i)))
			}
		}
		if len(offenders) > 0 {
			r.add(CheckResult{Name: name, Family: FamilyStructural, Status: StatusFail, Message: "child values with no matching parent row", Samples: capSamples(offenders)})
			continue
		}
		r.add(CheckResult{Name: name, Family: FamilyStructural, Status: StatusPass})
	}
}

func capSamples(values []string) []string {
	const max = 10
	if len(values) <= max {
		return values
	}
	return values[:max]
}
