package contour

import "github.com/chazu/sketchsolid/pkg/sketch"

// minCycle is the fewest curves a cycle-search loop may contain.
const minCycle = 3

// adjacency builds the directed end-to-start graph: curve i has an edge to
// curve j (i != j) when the end of i meets the start of j. Neighbours are
// listed in ascending index order.
func (d *Detector) adjacency(curves []sketch.Curve) [][]int {
	adj := make([][]int, len(curves))
	for i, from := range curves {
		end := from.EndPoint()
		for j, to := range curves {
			if i == j {
				continue
			}
			if d.near(end, to.StartPoint()) {
				adj[i] = append(adj[i], j)
			}
		}
	}
	return adj
}

// findCycle searches for a directed cycle of at least minCycle nodes that
// returns to its start, trying start nodes in ascending order. It returns the
// node order of the first cycle found, or nil.
//
// Each start attempt uses its own visited set, and the path is copied on
// success, so nothing is shared between attempts or calls.
func findCycle(adj [][]int) []int {
	for start := range adj {
		visited := make([]bool, len(adj))
		visited[start] = true
		path := []int{start}

		var walk func(current int) bool
		walk = func(current int) bool {
			for _, next := range adj[current] {
				if next == start && len(path) >= minCycle {
					return true
				}
				if visited[next] {
					continue
				}
				visited[next] = true
				path = append(path, next)
				if walk(next) {
					return true
				}
				path = path[:len(path)-1]
				visited[next] = false
			}
			return false
		}

		if walk(start) {
			return append([]int(nil), path...)
		}
	}
	return nil
}
