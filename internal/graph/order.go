package graph

import "container/heap"

// detectCycle runs a depth-first search with white/gray/black marking over
// task indexes in ascending ID order. An edge into a gray (in-progress) node
// closes a cycle; the returned path is rotated to start at the smallest ID on
// the cycle and repeats it at the end. Returns nil for a DAG.
func (g *Graph) detectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make([]int, len(g.ids))
	parent := make([]int, len(g.ids))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, ei := range g.out[u] {
			v := g.edges[ei].To
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// Back edge u -> v: walk parents from u up to v.
				for cur := u; cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := range g.ids {
		if color[i] == white && dfs(i) {
			break
		}
	}
	if cycle == nil {
		return nil
	}

	// cycle is [u ... v] walking backwards; reverse to forward order.
	for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
		cycle[i], cycle[j] = cycle[j], cycle[i]
	}

	// Rotate so the smallest index (smallest ID) leads.
	minAt := 0
	for i, v := range cycle {
		if v < cycle[minAt] {
			minAt = i
		}
	}
	path := make([]string, 0, len(cycle)+1)
	for i := range cycle {
		path = append(path, g.ids[cycle[(minAt+i)%len(cycle)]])
	}
	return append(path, path[0])
}

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topoOrder is Kahn's algorithm with a min-heap ready queue, so ties are
// broken by ascending task ID. Must only be called on an acyclic graph.
func (g *Graph) topoOrder() []int {
	indeg := make([]int, len(g.ids))
	for _, e := range g.edges {
		indeg[e.To]++
	}

	ready := &intMinHeap{}
	for i, d := range indeg {
		if d == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]int, 0, len(g.ids))
	for ready.Len() > 0 {
		u := heap.Pop(ready).(int)
		out = append(out, u)
		for _, ei := range g.out[u] {
			v := g.edges[ei].To
			indeg[v]--
			if indeg[v] == 0 {
				heap.Push(ready, v)
			}
		}
	}
	return out
}
