package metadata

// Edge is one parent→child foreign-key reference.
type Edge struct {
	Child       string
	ChildField  string
	Parent      string
	ParentField string
}

// RelationshipGraph is a derived index over the registered tables' reference
// fields. The store rebuilds it whenever the registry changes; it holds no
// state of its own and can never drift from the tables.
type RelationshipGraph struct {
	order    []string
	outgoing map[string][]Edge // parent -> edges to children
	incoming map[string][]Edge // child -> edges to parents
}

// buildGraph derives the graph from the registry. Tables are walked in
// registration order so every query result is deterministic.
func buildGraph(order []string, tables map[string]*TableSchema) *RelationshipGraph {
	g := &RelationshipGraph{
		order:    append([]string(nil), order...),
		outgoing: make(map[string][]Edge),
		incoming: make(map[string][]Edge),
	}
	for _, name := range order {
		for _, e := range tables[name].references() {
			g.outgoing[e.Parent] = append(g.outgoing[e.Parent], e)
			g.incoming[e.Child] = append(g.incoming[e.Child], e)
		}
	}
	return g
}

// Tables returns all node names in registration order.
func (g *RelationshipGraph) Tables() []string {
	return append([]string(nil), g.order...)
}

// Edges returns every foreign-key edge, children in registration order.
func (g *RelationshipGraph) Edges() []Edge {
	var out []Edge
	for _, name := range g.order {
		out = append(out, g.incoming[name]...)
	}
	return out
}

// ChildrenOf returns the distinct tables referencing the given table,
// in registration order.
func (g *RelationshipGraph) ChildrenOf(table string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range g.outgoing[table] {
		if !seen[e.Child] {
			seen[e.Child] = true
			out = append(out, e.Child)
		}
	}
	return out
}

// ParentsOf returns the distinct tables the given table references.
func (g *RelationshipGraph) ParentsOf(table string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range g.incoming[table] {
		if !seen[e.Parent] {
			seen[e.Parent] = true
			out = append(out, e.Parent)
		}
	}
	return out
}

// ParentOf resolves the edge declared on a (child, field) pair.
func (g *RelationshipGraph) ParentOf(child, field string) (Edge, bool) {
	for _, e := range g.incoming[child] {
		if e.ChildField == field {
			return e, true
		}
	}
	return Edge{}, false
}

// AncestorsOf returns every table reachable by following parent edges from
// the given table, breadth-first, excluding the table itself.
func (g *RelationshipGraph) AncestorsOf(table string) []string {
	seen := map[string]bool{table: true}
	var out []string
	queue := []string{table}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, e := range g.incoming[current] {
			if !seen[e.Parent] {
				seen[e.Parent] = true
				out = append(out, e.Parent)
				queue = append(queue, e.Parent)
			}
		}
	}
	return out
}

// TopoOrder returns the tables parents-first, so generation consumers can
// process a parent before any table referencing it. Edges are declared
// strictly after their parent exists, which makes the graph acyclic by
// construction; the sort therefore always terminates.
func (g *RelationshipGraph) TopoOrder() []string {
	done := make(map[string]bool)
	out := make([]string, 0, len(g.order))

	for len(out) < len(g.order) {
		progressed := false
		for _, name := range g.order {
			if done[name] {
				continue
			}
			ready := true
			for _, e := range g.incoming[name] {
				if !done[e.Parent] {
					ready = false
					break
				}
			}
			if ready {
				out = append(out, name)
				done[name] = true
				progressed = true
			}
		}
		if !progressed {
			// Unreachable for graphs built by the store; guard against
			// an infinite loop anyway.
			for _, name := range g.order {
				if !done[name] {
					out = append(out, name)
					done[name] = true
				}
			}
		}
	}
	return out
}
