// Package plan builds the dependency DAG of a specification's nodes and
// orders it into parallel-safe generations (spec §4.2). It is consulted by
// internal/exec, which walks the plan one generation at a time.
package plan

import (
	"sort"
	"strings"

	"synthgen/internal/core"
)

// Plan is the ordered execution structure for a Specification: Generations
// groups node names that have no dependency on one another and so may be
// materialized concurrently; every node in Generations[i] depends only on
// nodes in Generations[0..i-1].
type Plan struct {
	Generations [][]string
}

// Build constructs a Plan from spec's node dependency edges. Besides the
// declared NodeDescriptor.Parents, edges are also inferred from every
// column's lookup.from, choice.choices_ref, and table-scope effect
// modifiers (spec §4.2), since those reference another node's materialized
// column without necessarily listing it as a parent. A reference to the
// node's own table (self-lookup) never introduces an edge; it is resolved
// intra-node instead. Build returns a CyclicPlan SpecError if the resulting
// graph is not acyclic (spec §3.2, §7).
//
// Build assumes spec has already passed Specification.Validate(); it does
// not re-check that every parent name resolves.
func Build(spec *core.Specification) (*Plan, error) {
	inDegree := make(map[string]int, len(spec.Nodes))
	children := make(map[string][]string, len(spec.Nodes))

	for _, n := range spec.Nodes {
		inDegree[n.Name] = 0
	}
	for _, n := range spec.Nodes {
		seen := make(map[string]bool, len(n.Parents))
		addEdge := func(from string) {
			if from == "" || from == n.Name || seen[from] {
				return
			}
			seen[from] = true
			children[from] = append(children[from], n.Name)
			inDegree[n.Name]++
		}
		for _, p := range n.Parents {
			addEdge(p)
		}
		for _, c := range n.Columns {
			if c.Generator.Lookup != nil {
				if tbl, _, ok := splitRef(c.Generator.Lookup.From); ok {
					addEdge(tbl)
				}
			}
			if c.Generator.Choice != nil && c.Generator.Choice.ChoicesRef != "" {
				if tbl, _, ok := splitRef(c.Generator.Choice.ChoicesRef); ok {
					addEdge(tbl)
				}
			}
			for _, m := range c.Modifiers {
				if m.Kind == core.ModEffect && m.Effect != nil && m.Effect.Scope == core.EffectScopeTable {
					addEdge(m.Effect.Table)
				}
			}
		}
	}

	remaining := make(map[string]int, len(inDegree))
	for k, v := range inDegree {
		remaining[k] = v
	}

	var generations [][]string
	processed := 0
	for processed < len(spec.Nodes) {
		var wave []string
		for name, degree := range remaining {
			if degree == 0 {
				wave = append(wave, name)
			}
		}
		if len(wave) == 0 {
			return nil, core.Errorf(core.KindCyclicPlan, "specification", "", "nodes", "dependency graph has a cycle among: %v", remainingNames(remaining))
		}
		sort.Strings(wave)

		for _, name := range wave {
			delete(remaining, name)
			processed++
			for _, child := range children[name] {
				remaining[child]--
			}
		}
		generations = append(generations, wave)
	}

	return &Plan{Generations: generations}, nil
}

// splitRef splits a "table.column" reference into its table and column
// parts. It returns ok=false if ref has no ".".
func splitRef(ref string) (tableName, columnName string, ok bool) {
	i := strings.LastIndex(ref, ".")
	if i < 0 {
		return "", "", false
	}
	return ref[:i], ref[i+1:], true
}

func remainingNames(remaining map[string]int) []string {
	names := make([]string, 0, len(remaining))
	for name := range remaining {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
