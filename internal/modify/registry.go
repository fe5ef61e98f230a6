// Package modify implements the modifier library (spec §4.4): one function
// per ModifierKind, each mutating an already-generated Column in place.
// Modifiers run in declaration order after the column's generator and
// before the executor casts integer-typed columns. The set of kinds is closed.
package modify

import (
	"fmt"
	"math/rand"
	"sync"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

// Context carries everything one modifier invocation needs.
type Context struct {
	Spec     *core.Specification
	Node     *core.NodeDescriptor
	Column   *core.ColumnDescriptor
	Modifier *core.ModifierSpec
	Target   *table.Column // the column being modified, mutated in place
	Self     *table.Table  // the node's own table, for sibling-column lookups
	Tables   map[string]*table.Table
	Rand     *rand.Rand
}

// Func mutates ctx.Target in place.
type Func func(ctx *Context) error

var (
	registryMu sync.RWMutex
	registry   = map[core.ModifierKind]Func{}
)

// Register adds kind to the registry. Called only from this package's own
// init functions.
func Register(kind core.ModifierKind, fn Func) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[kind]; exists {
		panic(fmt.Sprintf("modify: kind %q already registered", kind))
	}
	registry[kind] = fn
}

// Get returns the registered Func for kind.
func Get(kind core.ModifierKind) (Func, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("modify: no modifier registered for kind %q", kind)
	}
	return fn, nil
}
