package generate

import (
	"synthgen/internal/core"
	"synthgen/internal/table"
)

func init() {
	Register(core.GenSequence, generateSequence)
}

func generateSequence(ctx *Context) (*table.Column, error) {
	p := ctx.Column.Generator.Sequence
	col := table.NewColumn(ctx.Column.Name, table.KindInt, ctx.Rows)
	v := p.Start
	for i := 0; i < ctx.Rows; i++ {
		col.SetInt(i, v)
		v += p.Step
	}
	return col, nil
}
