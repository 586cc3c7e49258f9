// SPDX-License-Identifier: MIT

package clockgraph

import "math"

// Weighted is one edge reduced at a trial period.
type Weighted struct {
	From, To NodeID
	Weight   float64
	Coef     float64 // coefficient of c in the active piece
	Inert    bool
}

// Evaluate reduces every edge at period c, in creation order.
func (g *Graph) Evaluate(c float64) []Weighted {
	out := make([]Weighted, len(g.edges))
	for i, e := range g.edges {
		w, coef, ok := e.Eval(c)
		out[i] = Weighted{From: e.From, To: e.To, Weight: w, Coef: coef, Inert: !ok}
	}

	return out
}

// Feasible runs Bellman-Ford from Zero over the edges evaluated at c.
// On convergence it returns the shortest-path potentials shifted so that
// Zero sits at 0; index with RiseNode/FallNode. Relaxations smaller than eps
// are ignored. A round limit of |V| rounds reports a negative cycle.
//
// Complexity: O(V * E).
func (g *Graph) Feasible(c, eps float64) ([]float64, bool) {
	n := g.NumNodes()
	ws := g.Evaluate(c)
	d := make([]float64, n)
	for i := range d {
		d[i] = math.Inf(1)
	}
	d[Zero] = 0

	for round := 0; round <= n; round++ {
		changed := false
		for _, w := range ws {
			if w.Inert || math.IsInf(d[w.From], 1) {
				continue
			}
			if cand := d[w.From] + w.Weight; cand < d[w.To]-eps {
				d[w.To] = cand
				changed = true
			}
		}
		if !changed {
			base := d[Zero]
			for i := range d {
				d[i] -= base
			}
			return d, true
		}
	}

	return nil, false
}

// Unbounded reports whether large enough periods are feasible: with every
// edge reduced to its Asymptote, no cycle has a negative coefficient sum, or
// a zero coefficient sum and a negative constant sum. Bellman-Ford runs over
// (coefficient, constant) pairs compared lexicographically with slack eps.
// A false result means every period above some bound is infeasible; with no
// cycle of negative coefficient that bound is +Inf and no period is feasible.
//
// Complexity: O(V * E).
func (g *Graph) Unbounded(eps float64) bool {
	type lex struct{ coef, w float64 }
	less := func(a, b lex) bool {
		if a.coef < b.coef-eps {
			return true
		}
		return a.coef <= b.coef+eps && a.w < b.w-eps
	}

	type arc struct {
		from, to NodeID
		lex
	}
	arcs := make([]arc, 0, len(g.edges))
	for _, e := range g.edges {
		if w0, coef, ok := e.Asymptote(); ok {
			arcs = append(arcs, arc{from: e.From, to: e.To, lex: lex{coef: coef, w: w0}})
		}
	}

	// Every node starts at (0, 0), as if joined to a virtual source.
	n := g.NumNodes()
	d := make([]lex, n)
	for round := 0; round <= n; round++ {
		changed := false
		for _, a := range arcs {
			cand := lex{coef: d[a.from].coef + a.coef, w: d[a.from].w + a.w}
			if less(cand, d[a.to]) {
				d[a.to] = cand
				changed = true
			}
		}
		if !changed {
			return true
		}
	}

	return false
}
