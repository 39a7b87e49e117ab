package decision

// EvaluationOrder produces a total order over all nodes such that every
// node appears after each of its dependencies. Ties among ready nodes are
// broken by declaration order, so the result is deterministic for a given
// case. Returns a CycleError naming the cycle if no valid order exists.
//
// The case must have been validated first.
func (c *Case) EvaluationOrder() ([]string, error) {
	indegree := make(map[string]int, len(c.Nodes))
	dependents := make(map[string][]string, len(c.Nodes))
	for _, n := range c.Nodes {
		indegree[n.Name] = len(n.Dependencies())
		for _, dep := range n.Dependencies() {
			dependents[dep] = append(dependents[dep], n.Name)
		}
	}

	// Kahn's algorithm. Instead of a queue we rescan the declaration
	// order each round, which keeps the tie-break trivially stable.
	order := make([]string, 0, len(c.Nodes))
	placed := make(map[string]bool, len(c.Nodes))
	for len(order) < len(c.Nodes) {
		progressed := false
		for _, n := range c.Nodes {
			if placed[n.Name] || indegree[n.Name] > 0 {
				continue
			}
			placed[n.Name] = true
			order = append(order, n.Name)
			for _, dep := range dependents[n.Name] {
				indegree[dep]--
			}
			progressed = true
		}
		if !progressed {
			return nil, &CycleError{Nodes: c.findCycle(placed)}
		}
	}
	return order, nil
}

// findCycle walks the unplaced remainder of the graph to name one concrete
// cycle for the error message.
func (c *Case) findCycle(placed map[string]bool) []string {
	// Any unplaced node sits on or upstream of a cycle; follow unplaced
	// dependencies until a node repeats.
	var start string
	for _, n := range c.Nodes {
		if !placed[n.Name] {
			start = n.Name
			break
		}
	}

	visitedAt := map[string]int{}
	var path []string
	curr := start
	for {
		if at, seen := visitedAt[curr]; seen {
			return path[at:]
		}
		visitedAt[curr] = len(path)
		path = append(path, curr)

		next := ""
		for _, dep := range c.byName[curr].Dependencies() {
			if !placed[dep] {
				next = dep
				break
			}
		}
		if next == "" {
			// Should not happen: an unplaced node always has an
			// unplaced dependency.
			return path
		}
		curr = next
	}
}
