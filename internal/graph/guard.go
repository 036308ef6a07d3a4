package graph

// checkCycle rejects a scheduling edge whose successor can already reach its
// predecessor. For Blocks(from, to) that means to reaches from; for
// BlockedBy(from, to), the implied to->from edge closes a loop when from
// reaches to.
//
// Reachability follows BlockedBy edges too, mirrored into their Blocks
// direction, so a loop spelled with both kinds is still caught.
func (s *Store) checkCycle(from, to string, typ DependencyType) error {
	pred, succ := from, to
	if typ == BlockedBy {
		pred, succ = to, from
	}
	if path := s.pathBetween(succ, pred); path != nil {
		return &CycleError{From: from, To: to, Type: typ, Path: path}
	}
	return nil
}

// pathBetween runs a breadth-first search over scheduling edges and returns
// the shortest chain of tasks from start to target, or nil if target is
// unreachable. A task always reaches itself.
func (s *Store) pathBetween(start, target string) []string {
	if start == target {
		return []string{start}
	}

	parent := map[string]string{start: ""}
	queue := []string{start}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		for _, next := range s.successors(node) {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = node
			if next == target {
				var path []string
				for cur := target; cur != start; cur = parent[cur] {
					path = append(path, cur)
				}
				path = append(path, start)
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
			queue = append(queue, next)
		}
	}
	return nil
}

// CanReach reports whether a chain of scheduling edges leads from one task to
// another.
func (s *Store) CanReach(from, to string) bool {
	return s.pathBetween(from, to) != nil
}
