package scoped

// Dependencies returns the providers p's factory read through its Ref during
// its latest build attempt, in first-read order. A failed build keeps what it
// read before failing; invalidation clears the list.
func (s *Scope) Dependencies(p AnyProvider) []AnyProvider {
	owner := s.Owner(p)
	if owner == nil {
		return nil
	}

	sl, _ := owner.store.lookup(p)
	if len(sl.deps) == 0 {
		return nil
	}

	// Return a copy to prevent external modification
	result := make([]AnyProvider, len(sl.deps))
	copy(result, sl.deps)
	return result
}

// ExportDependencyGraph maps every provider that was read while building
// another provider to the providers that read it. Slots of s and all of its
// ancestors are included.
func (s *Scope) ExportDependencyGraph() map[AnyProvider][]AnyProvider {
	graph := make(map[AnyProvider][]AnyProvider)

	for cur := s; cur != nil; cur = cur.parent {
		cur.store.Range(func(sl *slot) bool {
			for _, dep := range sl.deps {
				graph[dep] = appendUnique(graph[dep], sl.provider)
			}
			return true
		})
	}

	return graph
}

// Dependents walks the exported graph from p and returns every provider that
// transitively read it, nearest first.
func (s *Scope) Dependents(p AnyProvider) []AnyProvider {
	graph := s.ExportDependencyGraph()

	// Breadth-first with an explicit queue; no recursion for deep graphs
	queue := []AnyProvider{p}
	visited := map[AnyProvider]bool{p: true}
	var dependents []AnyProvider

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dep := range graph[current] {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			dependents = append(dependents, dep)
			queue = append(queue, dep)
		}
	}

	return dependents
}

func appendUnique[T comparable](slice []T, item T) []T {
	for _, existing := range slice {
		if existing == item {
			return slice
		}
	}
	return append(slice, item)
}
