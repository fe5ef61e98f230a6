package generate

import (
	"fmt"

	"github.com/expr-lang/expr"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func init() {
	Register(core.GenExpression, generateExpression)
}

// generateExpression evaluates a compiled, sandboxed expr-lang program once
// per row against the already-computed columns of the current row (spec
// §4.3, §9 "Safe expressions"). Only sibling columns declared earlier in
// the node are visible, matching the declaration-order materialization the
// executor performs.
func generateExpression(ctx *Context) (*table.Column, error) {
	p := ctx.Column.Generator.Expression

	program, err := expr.Compile(p.Expr, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("expression: column %q: %w", ctx.Column.Name, err)
	}

	self := ctx.SelfTable()
	if self == nil {
		return nil, fmt.Errorf("expression: column %q: node table not yet materialized", ctx.Column.Name)
	}

	logical := ctx.Column.Type
	kind, err := tableKindFor(logical)
	if err != nil {
		return nil, err
	}
	col := table.NewColumn(ctx.Column.Name, kind, ctx.Rows)

	for i := 0; i < ctx.Rows; i++ {
		out, err := expr.Run(program, rowEnv(self, i))
		if err != nil {
			return nil, fmt.Errorf("expression: column %q row %d: %w", ctx.Column.Name, i, err)
		}
		if err := setCell(col, i, logical, out); err != nil {
			return nil, fmt.Errorf("expression: column %q row %d: %w", ctx.Column.Name, i, err)
		}
	}
	return col, nil
}

// rowEnv exposes every already-materialized column of self at row i as a
// name -> value map, the expr-lang evaluation environment for that row.
func rowEnv(self *table.Table, row int) map[string]any {
	env := make(map[string]any, len(self.Columns()))
	for _, c := range self.Columns() {
		env[c.Name] = c.At(row)
	}
	return env
}

func tableKindFor(t core.LogicalType) (table.ValueKind, error) {
	switch t {
	case core.TypeInteger:
		return table.KindInt, nil
	case core.TypeFloating:
		return table.KindFloat, nil
	case core.TypeString:
		return table.KindString, nil
	case core.TypeBoolean:
		return table.KindBool, nil
	case core.TypeDatetime, core.TypeDate:
		return table.KindTime, nil
	default:
		return 0, fmt.Errorf("unsupported logical type %q for expression result", t)
	}
}

func setCell(col *table.Column, row int, t core.LogicalType, v any) error {
	if v == nil {
		return nil
	}
	switch t {
	case core.TypeInteger:
		i, ok := toInt64(v)
		if !ok {
			return fmt.Errorf("expected integer result, got %T", v)
		}
		col.SetInt(row, i)
	case core.TypeFloating:
		f, ok := toFloat64(v)
		if !ok {
			return fmt.Errorf("expected numeric result, got %T", v)
		}
		col.SetFloat(row, f)
	case core.TypeString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string result, got %T", v)
		}
		col.SetString(row, s)
	case core.TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected boolean result, got %T", v)
		}
		col.SetBool(row, b)
	}
	return nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
