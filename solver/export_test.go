package solver

import "github.com/katalvlaran/clocksched/clockgraph"

// Closure runs the affine Floyd-Warshall on raw evaluated edges.
func Closure(n int, ws []clockgraph.Weighted, eps float64) (int, bool) {
	return newAffine(n, ws).closure(eps)
}
