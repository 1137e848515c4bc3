package graph

import (
	"iter"
	"slices"
)

// Paths lazily enumerates every node sequence leading from -> to.
//
// A path is abandoned once its length exceeds 3 x the node count, so graphs
// with cycles still produce a finite enumeration that visits each loop a
// bounded number of times. Paths returns a NodeMissingError when either
// endpoint is absent.
func (g *Graph[N, C]) Paths(from, to string) (iter.Seq[[]string], error) {
	if !g.HasNode(from) {
		return nil, &NodeMissingError{ID: from}
	}
	if !g.HasNode(to) {
		return nil, &NodeMissingError{ID: to}
	}

	limit := 3 * len(g.nodes)

	return func(yield func([]string) bool) {
		var walk func(path []string) bool
		walk = func(path []string) bool {
			cur := path[len(path)-1]
			if cur == to {
				return yield(slices.Clone(path))
			}
			if len(path) > limit {
				return true
			}
			for _, e := range g.Outgoing(cur) {
				if !walk(append(path, e.To)) {
					return false
				}
			}
			return true
		}
		walk([]string{from})
	}, nil
}
