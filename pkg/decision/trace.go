package decision

// TraceResult holds the structural neighborhood of a node: the nodes and
// edges reachable in one direction of the causal graph. Consumed by the
// CLI explain command and the API trace endpoint.
type TraceResult struct {
	Root  string   `json:"root"`
	Nodes []*Node  `json:"nodes"` // declaration order
	Edges []Edge   `json:"edges"`
	Names []string `json:"names"`
}

// Upstream collects the transitive dependencies of a node: every input,
// external, and derived node whose value feeds into it. The root itself is
// included. Returns nil if the node does not exist.
func (c *Case) Upstream(name string) *TraceResult {
	if c.byName[name] == nil {
		return nil
	}
	visited := map[string]bool{name: true}
	queue := []string{name}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, dep := range c.byName[curr].Dependencies() {
			if !visited[dep] {
				visited[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	return c.traceFrom(name, visited)
}

// Downstream collects every node whose value is affected by the named
// node, the root included. Returns nil if the node does not exist.
func (c *Case) Downstream(name string) *TraceResult {
	if c.byName[name] == nil {
		return nil
	}
	dependents := make(map[string][]string, len(c.Nodes))
	for _, n := range c.Nodes {
		for _, dep := range n.Dependencies() {
			dependents[dep] = append(dependents[dep], n.Name)
		}
	}

	visited := map[string]bool{name: true}
	queue := []string{name}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, next := range dependents[curr] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return c.traceFrom(name, visited)
}

func (c *Case) traceFrom(root string, visited map[string]bool) *TraceResult {
	result := &TraceResult{Root: root}
	for _, n := range c.Nodes {
		if !visited[n.Name] {
			continue
		}
		result.Nodes = append(result.Nodes, n)
		result.Names = append(result.Names, n.Name)
		for _, dep := range n.Dependencies() {
			if visited[dep] {
				result.Edges = append(result.Edges, Edge{From: dep, To: n.Name})
			}
		}
	}
	return result
}
