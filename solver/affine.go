// SPDX-License-Identifier: MIT

package solver

import (
	"fmt"
	"math"

	"github.com/katalvlaran/clocksched/clockgraph"
)

// affine is a dense n*n matrix whose cells are path weights w + coef*(c - at),
// stored as the weight at the current trial period and the coefficient of c.
type affine struct {
	n    int
	w    []float64 // row-major weights; +Inf means no path
	coef []float64
}

// better reports whether (w1, c1) improves on (w2, c2): a strictly smaller
// weight, or an equal weight that grows more slowly with c.
func better(w1, c1, w2, c2 float64) bool {
	return w1 < w2 || (w1 == w2 && c1 < c2)
}

// newAffine loads evaluated edges. The diagonal starts at (0, 0) and takes
// self-loops when they improve on it.
func newAffine(n int, ws []clockgraph.Weighted) *affine {
	m := &affine{n: n, w: make([]float64, n*n), coef: make([]float64, n*n)}
	for i := range m.w {
		m.w[i] = math.Inf(1)
	}
	for i := 0; i < n; i++ {
		m.w[i*n+i] = 0
	}
	for _, e := range ws {
		if e.Inert {
			continue
		}
		idx := int(e.From)*n + int(e.To)
		if better(e.Weight, e.Coef, m.w[idx], m.coef[idx]) {
			m.w[idx], m.coef[idx] = e.Weight, e.Coef
		}
	}

	return m
}

// negativeDiagonal returns the first diagonal index with weight below -eps.
func (m *affine) negativeDiagonal(eps float64) (int, bool) {
	for i := 0; i < m.n; i++ {
		if m.w[i*m.n+i] < -eps {
			return i, true
		}
	}

	return -1, false
}

// closure runs Floyd-Warshall in place with fixed k -> i -> j order and
// stops at the first diagonal cell that turns negative below -eps.
// It panics when a finite cell carries a non-finite coefficient.
func (m *affine) closure(eps float64) (int, bool) {
	if i, neg := m.negativeDiagonal(eps); neg {
		return i, true
	}

	n := m.n
	var (
		k, i, j         int
		baseK, baseI    int
		ik, cand, cCand float64
	)
	for k = 0; k < n; k++ {
		baseK = k * n
		for i = 0; i < n; i++ {
			baseI = i * n
			ik = m.w[baseI+k]
			if math.IsInf(ik, 1) {
				continue
			}
			for j = 0; j < n; j++ {
				if math.IsInf(m.w[baseK+j], 1) {
					continue
				}
				cand = ik + m.w[baseK+j]
				cCand = m.coef[baseI+k] + m.coef[baseK+j]
				if math.IsInf(cCand, 0) || math.IsNaN(cCand) {
					panic(fmt.Sprintf("solver: finite path %d->%d with coefficient %g", i, j, cCand))
				}
				if better(cand, cCand, m.w[baseI+j], m.coef[baseI+j]) {
					m.w[baseI+j], m.coef[baseI+j] = cand, cCand
					if i == j && cand < -eps {
						return i, true
					}
				}
			}
		}
	}

	return -1, false
}

func (m *affine) diag(i int) (float64, float64) {
	return m.w[i*m.n+i], m.coef[i*m.n+i]
}
