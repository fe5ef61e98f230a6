// Package generate implements the primitive generator library (spec §4.3):
// one function per GeneratorKind, each producing a whole Column in a single
// call from a column-scoped RNG (spec §9 "Vectorized generation"). The set
// of kinds is closed — registration happens once, from this package's own
// init functions, never from caller code.
package generate

import (
	"fmt"
	"sync"

	"synthgen/internal/core"
	"synthgen/internal/table"
)

// Func materializes one column's values for every row of ctx.Node.
type Func func(ctx *Context) (*table.Column, error)

var (
	registryMu sync.RWMutex
	registry   = map[core.GeneratorKind]Func{}
)

// Register adds kind to the registry. Called only from this package's own
// init functions; panics on duplicate registration, which can only happen
// from a programming error in this package.
func Register(kind core.GeneratorKind, fn Func) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[kind]; exists {
		panic(fmt.Sprintf("generate: kind %q already registered", kind))
	}
	registry[kind] = fn
}

// Get returns the registered Func for kind.
func Get(kind core.GeneratorKind) (Func, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("generate: no generator registered for kind %q", kind)
	}
	return fn, nil
}
