package generate

import (
	"fmt"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func init() {
	Register(core.GenEnumList, generateEnumList)
}

// generateEnumList emits the declared values in order, cycling if there are
// fewer values than rows (used by vocab nodes, where len(values) == rows by
// construction, and by any column wanting a fixed round-robin sequence).
func generateEnumList(ctx *Context) (*table.Column, error) {
	p := ctx.Column.Generator.EnumList
	if len(p.Values) == 0 {
		return nil, fmt.Errorf("enum_list: column %q declares no values", ctx.Column.Name)
	}
	col := table.NewColumn(ctx.Column.Name, table.KindString, ctx.Rows)
	for i := 0; i < ctx.Rows; i++ {
		col.SetString(i, p.Values[i%len(p.Values)])
	}
	return col, nil
}
