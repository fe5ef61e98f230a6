package core

import "strings"

// Validate runs the semantic preflight pass (spec §3.2, §7 SpecInvalid /
// SpecInconsistent): every reference a Specification makes to another part
// of itself must resolve, and every declared behavior must be applicable to
// the node/column it decorates. Acyclicity of the parent/child graph is
// checked separately by internal/plan, once a Specification has already
// passed this pass.
//
// Validate returns the first problem found, mirroring the fail-fast style
// of the rest of this package.
func (s *Specification) Validate() error {
	if strings.TrimSpace(s.Metadata.DatasetName) == "" {
		return invalidf("specification", "", "metadata.dataset_name", "dataset name is empty")
	}
	if !s.Timeframe.End.After(s.Timeframe.Start) {
		return invalidf("specification", "", "timeframe", "end (%s) must be after start (%s)", s.Timeframe.End, s.Timeframe.Start)
	}
	if len(s.Nodes) == 0 {
		return invalidf("specification", "", "nodes", "specification declares no nodes")
	}

	seen := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if n == nil {
			return invalidf("specification", "", "nodes", "a node entry is nil")
		}
		if strings.TrimSpace(n.Name) == "" {
			return invalidf("node", "", "name", "node name is empty")
		}
		if seen[n.Name] {
			return inconsistentf("node", n.Name, "name", "duplicate node name")
		}
		seen[n.Name] = true
	}

	for _, n := range s.Nodes {
		if err := s.validateNode(n); err != nil {
			return err
		}
	}
	if err := s.validateConstraints(); err != nil {
		return err
	}
	if err := s.validateTargets(); err != nil {
		return err
	}
	return nil
}

func (s *Specification) validateNode(n *NodeDescriptor) error {
	switch n.Kind {
	case NodeEntity, NodeFact, NodeVocab:
	default:
		return invalidf("node", n.Name, "kind", "unknown node kind %q", n.Kind)
	}

	if n.Kind == NodeVocab {
		if len(n.Values) == 0 {
			return invalidf("node", n.Name, "values", "vocab node must declare values")
		}
	} else if len(n.Values) != 0 {
		return invalidf("node", n.Name, "values", "values is only valid on vocab nodes")
	}

	if n.Kind == NodeFact {
		if len(n.Parents) == 0 {
			return inconsistentf("node", n.Name, "parents", "fact node must declare at least one parent")
		}
		if n.Fanout == nil {
			return inconsistentf("node", n.Name, "fanout", "fact node must declare a fanout distribution")
		}
	} else if n.Fanout != nil {
		return invalidf("node", n.Name, "fanout", "fanout is only valid on fact nodes")
	}

	for _, p := range n.Parents {
		parent := s.NodeByName(p)
		if parent == nil {
			return inconsistentf("node", n.Name, "parents", "parent %q does not exist", p)
		}
		if parent.Name == n.Name {
			return inconsistentf("node", n.Name, "parents", "node cannot be its own parent")
		}
	}

	if n.Fanout != nil {
		if err := n.Fanout.validate(n.Name); err != nil {
			return err
		}
	}

	if len(n.Columns) == 0 {
		return invalidf("node", n.Name, "columns", "node declares no columns")
	}
	colSeen := make(map[string]bool, len(n.Columns))
	hasPK := n.PK == ""
	for _, c := range n.Columns {
		if c == nil {
			return invalidf("node", n.Name, "columns", "a column entry is nil")
		}
		if colSeen[c.Name] {
			return inconsistentf("column", c.Name, "name", "duplicate column name in node %q", n.Name)
		}
		colSeen[c.Name] = true
		if c.Name == n.PK {
			hasPK = true
		}
		if err := s.validateColumn(n, c); err != nil {
			return err
		}
	}
	if !hasPK {
		return inconsistentf("node", n.Name, "pk", "declared primary key %q has no matching column", n.PK)
	}

	if n.SegmentBehavior != nil {
		if err := s.validateSegmentBehavior(n); err != nil {
			return err
		}
	}
	if n.VintageBehavior != nil {
		if n.ColumnByName(n.VintageBehavior.CreatedAtColumn) == nil {
			return inconsistentf("node", n.Name, "vintage_behavior.created_at_column", "column %q does not exist", n.VintageBehavior.CreatedAtColumn)
		}
	}
	if n.StageConfig != nil {
		if err := n.StageConfig.validate(n.Name); err != nil {
			return err
		}
	}
	if n.StateTransitionModel != nil {
		if err := n.StateTransitionModel.validate(n.Name); err != nil {
			return err
		}
	}

	return nil
}

func (f *Fanout) validate(nodeName string) error {
	switch f.Distribution {
	case FanoutPoisson, FanoutUniform:
	default:
		return invalidf("node", nodeName, "fanout.distribution", "unknown fanout distribution %q", f.Distribution)
	}
	if f.ClampMax < f.ClampMin {
		return invalidf("node", nodeName, "fanout", "clamp_max (%d) must be >= clamp_min (%d)", f.ClampMax, f.ClampMin)
	}
	return nil
}

func (s *Specification) validateColumn(n *NodeDescriptor, c *ColumnDescriptor) error {
	switch c.Type {
	case TypeInteger, TypeFloating, TypeString, TypeBoolean, TypeDatetime, TypeDate:
	default:
		return invalidf("column", c.Name, "type", "unknown logical type %q", c.Type)
	}

	if err := s.validateGenerator(n, c); err != nil {
		return err
	}
	for _, m := range c.Modifiers {
		if !m.Kind.AppliesToType(c.Type) {
			return inconsistentf("column", c.Name, "modifiers", "modifier %q is not applicable to type %q", m.Kind, c.Type)
		}
		if m.Kind == ModEffect && m.Effect != nil {
			if s.NodeByName(m.Effect.Table) == nil {
				return inconsistentf("column", c.Name, "modifiers.effect.table", "effect table %q does not exist", m.Effect.Table)
			}
		}
		if m.Kind == ModSeasonality && m.Seasonality != nil {
			if n.ColumnByName(m.Seasonality.TimestampColumn) == nil {
				return inconsistentf("column", c.Name, "modifiers.seasonality.timestamp_column", "column %q does not exist", m.Seasonality.TimestampColumn)
			}
		}
	}
	return nil
}

func (s *Specification) validateGenerator(n *NodeDescriptor, c *ColumnDescriptor) error {
	g := c.Generator
	switch g.Kind {
	case GenLookup:
		table, col, ok := splitRef(g.Lookup.From)
		if !ok {
			return invalidf("column", c.Name, "generator.from", "expected \"table.column\", got %q", g.Lookup.From)
		}
		target := s.NodeByName(table)
		if target == nil {
			return inconsistentf("column", c.Name, "generator.from", "table %q does not exist", table)
		}
		if target.ColumnByName(col) == nil && col != target.PK {
			return inconsistentf("column", c.Name, "generator.from", "column %q does not exist on table %q", col, table)
		}
	case GenChoice:
		if g.Choice.ChoicesRef != "" {
			table, col, ok := splitRef(g.Choice.ChoicesRef)
			if !ok {
				return invalidf("column", c.Name, "generator.choices_ref", "expected \"table.column\", got %q", g.Choice.ChoicesRef)
			}
			target := s.NodeByName(table)
			if target == nil || target.ColumnByName(col) == nil {
				return inconsistentf("column", c.Name, "generator.choices_ref", "%q does not resolve", g.Choice.ChoicesRef)
			}
		} else if len(g.Choice.Values) == 0 {
			return invalidf("column", c.Name, "generator", "choice generator needs either values or choices_ref")
		}
		if err := validateWeightsKind(g.Choice); err != nil {
			return inconsistentf("column", c.Name, "generator.weights_kind", "%v", err)
		}
	case GenDistribution:
		if g.Distribution.Clamp[1] < g.Distribution.Clamp[0] {
			return invalidf("column", c.Name, "generator.clamp", "clamp upper bound must be >= lower bound")
		}
	}
	return nil
}

func (s *Specification) validateSegmentBehavior(n *NodeDescriptor) error {
	sb := n.SegmentBehavior
	parentSegCol := false
	for _, p := range n.Parents {
		parent := s.NodeByName(p)
		if parent != nil && parent.ColumnByName(sb.SegmentColumn) != nil {
			parentSegCol = true
		}
	}
	if n.ColumnByName(sb.SegmentColumn) != nil {
		parentSegCol = true
	}
	if !parentSegCol {
		return inconsistentf("node", n.Name, "segment_behavior.segment_column", "column %q does not exist on node or its parents", sb.SegmentColumn)
	}
	return nil
}

func (sc *StageConfig) validate(nodeName string) error {
	if len(sc.Stages) < 2 {
		return invalidf("node", nodeName, "stage_config.stages", "need at least two stages")
	}
	if len(sc.TransitionRate) != len(sc.Stages)-1 {
		return invalidf("node", nodeName, "stage_config.transition_rate", "need exactly %d rates for %d stages", len(sc.Stages)-1, len(sc.Stages))
	}
	for _, r := range sc.TransitionRate {
		if r < 0 || r > 1 {
			return invalidf("node", nodeName, "stage_config.transition_rate", "rate %v is not a probability", r)
		}
	}
	return nil
}

func (m *StateTransitionModel) validate(nodeName string) error {
	if len(m.States) == 0 {
		return invalidf("node", nodeName, "state_transition_model.states", "need at least one state")
	}
	known := make(map[string]bool, len(m.States))
	for _, st := range m.States {
		known[st] = true
	}
	if !known[m.InitialState] {
		return inconsistentf("node", nodeName, "state_transition_model.initial_state", "state %q not declared", m.InitialState)
	}
	for from, row := range m.TransitionProbPerPeriod {
		if !known[from] {
			return inconsistentf("node", nodeName, "state_transition_model.transition_prob_per_period", "state %q not declared", from)
		}
		var total float64
		for to, p := range row {
			if !known[to] {
				return inconsistentf("node", nodeName, "state_transition_model.transition_prob_per_period", "state %q not declared", to)
			}
			total += p
		}
		if total > 1.0001 {
			return inconsistentf("node", nodeName, "state_transition_model.transition_prob_per_period", "outgoing probabilities from %q sum to %v > 1", from, total)
		}
	}
	return nil
}

// splitRef splits a "table.column" reference. Mirrors the teacher's
// ParseReferences helper for the same "table.column" shorthand shape.
func splitRef(ref string) (table, column string, ok bool) {
	dot := strings.LastIndex(ref, ".")
	if dot <= 0 || dot >= len(ref)-1 {
		return "", "", false
	}
	return ref[:dot], ref[dot+1:], true
}
