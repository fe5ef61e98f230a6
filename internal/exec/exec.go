// Package exec walks the dependency plan and materializes every node's
// table: resolving row counts (including fanout and behavioral overrides),
// running the generate/modify registries column by column in declaration
// order, and enforcing the cross-node invariants (temporal integrity,
// monotone stages, terminal states) that only the executor can see once
// parent tables exist (spec §4.5).
package exec

import (
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"synthgen/internal/core"
	"synthgen/internal/generate"
	"synthgen/internal/modify"
	"synthgen/internal/plan"
	"synthgen/internal/seed"
	"synthgen/internal/table"
	"synthgen/internal/telemetry"
)

// Executor materializes a Specification's full set of tables against a
// fixed master seed. One Executor is used for exactly one run. Logger is
// nil-safe: a nil value is treated as telemetry.Nop().
type Executor struct {
	Spec       *core.Specification
	MasterSeed uint64
	Logger     *zap.Logger

	tables map[string]*table.Table
}

// Run produces every node's table, in topological order, one generation at
// a time. Nodes within a generation are materialized concurrently since
// every RNG is derived from (node, column, row) and never shared (spec §9
// "Ordering and concurrency"). Returns the full set of tables keyed by node
// name, or the first GenerationFailure/UniquenessViolated error encountered;
// on error no partial result is returned.
func (e *Executor) Run() (map[string]*table.Table, error) {
	log := telemetry.Or(e.Logger)
	p, err := plan.Build(e.Spec)
	if err != nil {
		return nil, err
	}
	e.tables = make(map[string]*table.Table, len(e.Spec.Nodes))

	for wave, generation := range p.Generations {
		log.Info("materializing generation", zap.Int("wave", wave), zap.Strings("nodes", generation))
		var g errgroup.Group
		var mu sync.Mutex
		results := make(map[string]*table.Table, len(generation))

		for _, name := range generation {
			name := name
			node := e.Spec.NodeByName(name)
			if node == nil {
				return nil, core.Errorf(core.KindGenerationFailure, "specification", name, "nodes", "planned node not found in specification")
			}
			g.Go(func() error {
				t, err := e.materializeNode(node)
				if err != nil {
					return err
				}
				mu.Lock()
				results[name] = t
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for name, t := range results {
			e.tables[name] = t
		}
	}
	log.Info("run complete", zap.Int("tables", len(e.tables)))
	return e.tables, nil
}

func (e *Executor) materializeNode(node *core.NodeDescriptor) (*table.Table, error) {
	rp, err := e.resolveRowPlan(node)
	if err != nil {
		return nil, err
	}

	t := table.NewTable(node.Name, node.PK, rp.Rows)

	for _, col := range node.Columns {
		if err := e.materializeColumn(t, node, col, rp.Rows, rp.ParentIndex); err != nil {
			return nil, core.Errorf(core.KindGenerationFailure, "column", node.Name+"."+col.Name, "generator", "%v", err)
		}
	}

	if rp.Labels != nil {
		applyOverride(t.Column(rp.LabelColumn), rp.Labels)
	}
	if rp.Times != nil {
		applyTimeOverrideColumn(t.Column(rp.TimeColumn), rp.Times)
	}

	if err := e.applyValueMultipliers(node, t, rp.ParentIndex); err != nil {
		return nil, err
	}
	if err := e.applyValueGrowth(node, t); err != nil {
		return nil, err
	}

	if err := e.enforceTemporalIntegrity(node, t, rp.ParentIndex); err != nil {
		return nil, err
	}
	if err := e.enforceUniqueness(node, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (e *Executor) materializeColumn(t *table.Table, node *core.NodeDescriptor, col *core.ColumnDescriptor, rows int, parentIndex []int) error {
	fn, err := generate.Get(col.Generator.Kind)
	if err != nil {
		return err
	}

	batchSeed := seed.Column(e.MasterSeed, node.Name, col.Name, 0)
	ctx := &generate.Context{
		Spec:        e.Spec,
		Node:        node,
		Column:      col,
		Rows:        rows,
		Rand:        rand.New(rand.NewSource(int64(batchSeed))),
		Tables:      e.snapshotTables(t, node.Name),
		ParentIndex: parentIndex,
	}
	out, err := fn(ctx)
	if err != nil {
		return err
	}
	out.Name = col.Name
	t.Adopt(out)

	for i := range col.Modifiers {
		m := col.Modifiers[i]
		mfn, err := modify.Get(m.Kind)
		if err != nil {
			return err
		}
		mseed := seed.Derive(batchSeed, "modifier", fmt.Sprintf("%d", i))
		mctx := &modify.Context{
			Spec:     e.Spec,
			Node:     node,
			Column:   col,
			Modifier: &m,
			Target:   out,
			Self:     t,
			Tables:   e.snapshotTables(t, node.Name),
			Rand:     rand.New(rand.NewSource(int64(mseed))),
		}
		if err := mfn(mctx); err != nil {
			return err
		}
	}

	if col.Type == core.TypeInteger && out.Kind == table.KindFloat {
		out.CastToInt()
	}
	return nil
}

// snapshotTables returns every already-materialized table plus the node's
// own table under construction, so generators/modifiers can reference
// sibling columns (declaration order) or other tables (lookup/effect).
func (e *Executor) snapshotTables(self *table.Table, nodeName string) map[string]*table.Table {
	out := make(map[string]*table.Table, len(e.tables)+1)
	for k, v := range e.tables {
		out[k] = v
	}
	out[nodeName] = self
	return out
}
