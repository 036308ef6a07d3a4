package graph

// DetectCycles walks the whole stored graph and returns every cycle reachable
// through a back edge, each as the sequence of tasks along the loop.
//
// Vertices are every endpoint of every stored edge, whatever its type, but
// only scheduling edges are followed, so tasks joined purely by informational
// edges are visited and never report a cycle. A BlockedBy edge is followed
// from its blocker to the blocked task, the same as the matching Blocks edge. Traversal starts from vertices
// in sorted order and restarts from every unvisited one, so disjoint cycles
// are all found.
func (s *Store) DetectCycles() [][]string {
	visited := make(map[string]bool)
	onPath := make(map[string]int) // task -> index in path
	var path []string
	var cycles [][]string

	var dfs func(node string)
	dfs = func(node string) {
		visited[node] = true
		onPath[node] = len(path)
		path = append(path, node)

		for _, next := range s.successors(node) {
			if i, ok := onPath[next]; ok {
				cycle := make([]string, len(path)-i)
				copy(cycle, path[i:])
				cycles = append(cycles, cycle)
				continue
			}
			if !visited[next] {
				dfs(next)
			}
		}

		path = path[:len(path)-1]
		delete(onPath, node)
	}

	for _, id := range s.Tasks() {
		if !visited[id] {
			dfs(id)
		}
	}
	return cycles
}
