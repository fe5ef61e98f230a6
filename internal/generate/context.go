package generate

import (
	"math/rand"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

// Context carries everything one generator invocation needs to materialize
// a column for every row of one node.
type Context struct {
	Spec   *core.Specification
	Node   *core.NodeDescriptor
	Column *core.ColumnDescriptor
	Rows   int
	Rand   *rand.Rand

	// Tables holds every already-materialized table (topologically earlier
	// generations, plus siblings of Column within Node materialized
	// earlier in declaration order), keyed by node name.
	Tables map[string]*table.Table

	// ParentIndex[i] is the row index into the single parent table that
	// output row i belongs to, for fact nodes with exactly one parent
	// driving fanout. Nil for entity/vocab nodes.
	ParentIndex []int
}

// SelfTable returns the table currently being built for ctx.Node, or nil if
// it hasn't been registered yet.
func (c *Context) SelfTable() *table.Table {
	return c.Tables[c.Node.Name]
}
