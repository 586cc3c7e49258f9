// SPDX-License-Identifier: MIT

package latchgraph

import (
	"container/heap"

	"github.com/katalvlaran/clocksched/netlist"
)

// seed returns a lower bound on the latest departure of v at period c:
// the open event at its earliest position plus the late skew of that event.
func seed(v *Vertex, c float64) float64 {
	if v.IsHost() {
		return 0
	}
	switch v.Kind {
	case netlist.RisingEdgeFF, netlist.LevelSensitiveHigh:
		return v.Skew.RiseMax
	case netlist.FallingEdgeFF:
		return v.Skew.FallMax
	}

	return -c + v.Skew.FallMax
}

// setupLimit is the latest arrival v can accept when its close event sits at c.
func setupLimit(v *Vertex, c float64) float64 {
	lo, _ := v.SkewOf(v.Close())
	return c + lo - v.Setup
}

// TestPeriod reports whether period c passes the negative-cycle test.
//
// Edge weights are DelayMax - K*c. Longest departures are relaxed from Host
// and from every latch seed. Arrivals flow through flip-flops too: a
// flip-flop never departs before its own latest arrival. The test fails as
// soon as an arrival exceeds its latch's setup limit at c, or when |V|+1
// rounds do not converge (a positive cycle).
//
// Complexity: O(V * E).
func TestPeriod(g *Graph, c, eps float64) bool {
	n := len(g.Vertices)
	dist := make([]float64, n)
	for i := range g.Vertices {
		dist[i] = seed(&g.Vertices[i], c)
	}

	var (
		round   int
		changed bool
		cand    float64
	)
	for round = 0; round <= n; round++ {
		changed = false
		for i := range g.Edges {
			e := &g.Edges[i]
			cand = dist[e.From] + e.DelayMax - float64(e.K)*c
			if cand > setupLimit(&g.Vertices[e.To], c)+eps {
				return false
			}
			if cand > dist[e.To]+eps {
				dist[e.To] = cand
				changed = true
			}
		}
		if !changed {
			return true
		}
	}

	return false
}

// dirtyItem is a queued vertex keyed by its departure at push time.
type dirtyItem struct {
	v   VertexID
	key float64
}

// dirtyQueue is a max-heap with lazy invalidation of stale keys.
type dirtyQueue []dirtyItem

func (q dirtyQueue) Len() int            { return len(q) }
func (q dirtyQueue) Less(i, j int) bool  { return q[i].key > q[j].key }
func (q dirtyQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *dirtyQueue) Push(x interface{}) { *q = append(*q, x.(dirtyItem)) }
func (q *dirtyQueue) Pop() interface{} {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]

	return it
}

// TestPeriodQueued answers the same question as TestPeriod, relaxing only
// vertices whose departure changed. A vertex whose update is derived from a
// parent chain passing through itself closes a positive cycle. Relaxations
// are capped at |V|*(|E|+1).
func TestPeriodQueued(g *Graph, c, eps float64) bool {
	n := len(g.Vertices)
	dist := make([]float64, n)
	parent := make([]VertexID, n)
	q := make(dirtyQueue, 0, n)
	for i := range g.Vertices {
		dist[i] = seed(&g.Vertices[i], c)
		parent[i] = -1
		q = append(q, dirtyItem{v: VertexID(i), key: dist[i]})
	}
	heap.Init(&q)

	limit := n * (len(g.Edges) + 1)
	for relax := 0; q.Len() > 0; {
		it := heap.Pop(&q).(dirtyItem)
		if it.key < dist[it.v] {
			continue // stale
		}
		for _, ei := range g.Vertices[it.v].Out {
			e := &g.Edges[ei]
			cand := dist[e.From] + e.DelayMax - float64(e.K)*c
			if cand > setupLimit(&g.Vertices[e.To], c)+eps {
				return false
			}
			if cand <= dist[e.To]+eps {
				continue
			}
			if relax++; relax > limit || onChain(parent, e.From, e.To, n) {
				return false
			}
			dist[e.To] = cand
			parent[e.To] = e.From
			heap.Push(&q, dirtyItem{v: e.To, key: cand})
		}
	}

	return true
}

// onChain reports whether target is an ancestor of (or equal to) from in the parent forest.
func onChain(parent []VertexID, from, target VertexID, limit int) bool {
	for steps, cur := 0, from; cur >= 0 && steps <= limit; steps++ {
		if cur == target {
			return true
		}
		cur = parent[cur]
	}

	return false
}
