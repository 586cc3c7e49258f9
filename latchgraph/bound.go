package latchgraph

import "math"

// DFS colors.
const (
	white = iota
	gray
	black
)

// frame is one explicit-stack DFS entry: vertex and position in its Out list.
type frame struct {
	v    VertexID
	next int
}

// boundWalker holds the state of one LowerBound run.
type boundWalker struct {
	g     *Graph
	color []int
	delay []float64 // cumulative max delay along the DFS tree
	k     []int     // cumulative cycle crossings along the DFS tree
	cycle float64
	path  float64
}

// LowerBound returns a safe under-estimate of the minimum clock period.
//
// One depth-first search from Host (then from every unvisited latch) keeps
// cumulative delay and crossing counts along the tree. Every back edge u->w
// closes a cycle with ratio (delay[u]+dmax-delay[w]) / (k[u]+K-k[w]) when the
// denominator is positive; every Host-rooted vertex gives delay/(k+1).
// The result is the maximum of both, or 0 for a graph with neither.
//
// The stack is explicit, so depth is bounded by memory, not by goroutine stack.
// Complexity: O(V + E).
func LowerBound(g *Graph) float64 {
	w := &boundWalker{
		g:     g,
		color: make([]int, len(g.Vertices)),
		delay: make([]float64, len(g.Vertices)),
		k:     make([]int, len(g.Vertices)),
	}
	w.walk(Host, true)
	for i := range g.Vertices {
		if w.color[i] == white {
			w.walk(VertexID(i), false)
		}
	}

	return math.Max(w.cycle, w.path)
}

func (w *boundWalker) walk(root VertexID, hostRooted bool) {
	w.color[root] = gray
	w.delay[root], w.k[root] = 0, 0
	stack := []frame{{v: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		u := top.v
		if top.next == len(w.g.Vertices[u].Out) {
			w.color[u] = black
			stack = stack[:len(stack)-1]
			continue
		}
		e := &w.g.Edges[w.g.Vertices[u].Out[top.next]]
		top.next++

		switch w.color[e.To] {
		case white:
			w.color[e.To] = gray
			w.delay[e.To] = w.delay[u] + e.DelayMax
			w.k[e.To] = w.k[u] + e.K
			if hostRooted {
				w.path = math.Max(w.path, w.delay[e.To]/float64(w.k[e.To]+1))
			}
			stack = append(stack, frame{v: e.To})
		case gray:
			if den := w.k[u] + e.K - w.k[e.To]; den > 0 {
				w.cycle = math.Max(w.cycle, (w.delay[u]+e.DelayMax-w.delay[e.To])/float64(den))
			}
		}
	}
}
