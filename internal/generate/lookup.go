package generate

import (
	"fmt"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

func init() {
	Register(core.GenLookup, generateLookup)
}

// selfLookupNullShare is the fraction of rows a self-referencing lookup
// leaves unresolved (nullable), representing the top of a hierarchy (e.g.
// the employee with no manager) that a uniform "pick any other row" draw
// could never otherwise produce.
const selfLookupNullShare = 0.05

// generateLookup copies values from an already-materialized table.column.
// When the source is the node's own parent table, each output row pulls
// the value belonging to its parent via ctx.ParentIndex (e.g. a fact row's
// foreign key copying the parent's primary key). When the source is the
// node's own table (self-reference, spec §4.5, §8.2, S2), the referenced
// column is already fully populated by the time a later-declared column is
// generated (columns run in declaration order against a live snapshot of
// their own table), so this is the second of the two materialization
// passes: each row samples a key from among the OTHER already-generated
// rows, rather than copying its own row's value. Otherwise the source must
// have exactly ctx.Rows rows and is copied positionally.
func generateLookup(ctx *Context) (*table.Column, error) {
	p := ctx.Column.Generator.Lookup
	srcTableName, srcColName, ok := splitRef(p.From)
	if !ok {
		return nil, fmt.Errorf("lookup: invalid from %q", p.From)
	}
	src, ok := ctx.Tables[srcTableName]
	if !ok {
		return nil, fmt.Errorf("lookup: table %q is not yet materialized", srcTableName)
	}
	srcCol := src.Column(srcColName)
	if srcCol == nil {
		return nil, fmt.Errorf("lookup: column %q not found on table %q", srcColName, srcTableName)
	}

	col := table.NewColumn(ctx.Column.Name, srcCol.Kind, ctx.Rows)

	if srcTableName == ctx.Node.Name {
		resolveSelfLookup(ctx, col, srcCol)
		return col, nil
	}

	if ctx.ParentIndex != nil && len(ctx.Node.Parents) == 1 && srcTableName == ctx.Node.Parents[0] {
		for i := 0; i < ctx.Rows; i++ {
			copyCell(col, srcCol, i, ctx.ParentIndex[i])
		}
		return col, nil
	}

	if srcCol.Len() != ctx.Rows {
		return nil, fmt.Errorf("lookup: source column %q has %d rows, want %d", p.From, srcCol.Len(), ctx.Rows)
	}
	for i := 0; i < ctx.Rows; i++ {
		copyCell(col, srcCol, i, i)
	}
	return col, nil
}

// resolveSelfLookup fills col[i] by sampling a row j != i from srcCol,
// which shares col's row count since both belong to the node currently
// under construction. Rows are left NULL when there is no other row to
// reference, or (when the column is nullable) at selfLookupNullShare to
// seed the roots of a self-referencing hierarchy.
func resolveSelfLookup(ctx *Context, col, srcCol *table.Column) {
	if ctx.Rows <= 1 {
		return
	}
	for i := 0; i < ctx.Rows; i++ {
		if ctx.Column.Nullable && ctx.Rand.Float64() < selfLookupNullShare {
			continue
		}
		j := ctx.Rand.Intn(ctx.Rows - 1)
		if j >= i {
			j++
		}
		copyCell(col, srcCol, i, j)
	}
}

func copyCell(dst, src *table.Column, dstRow, srcRow int) {
	if src.Null[srcRow] {
		return
	}
	switch src.Kind {
	case table.KindInt:
		dst.SetInt(dstRow, src.Ints[srcRow])
	case table.KindFloat:
		dst.SetFloat(dstRow, src.Floats[srcRow])
	case table.KindString:
		dst.SetString(dstRow, src.Strings[srcRow])
	case table.KindBool:
		dst.SetBool(dstRow, src.Bools[srcRow])
	case table.KindTime:
		dst.SetTime(dstRow, src.Times[srcRow])
	}
}
