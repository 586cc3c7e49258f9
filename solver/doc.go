// Package solver finds the minimum clock period of a clock constraint graph.
//
// What:
//
//   - Bisect: doubling then halving search over a monotone feasibility Oracle. It seeds
//     the clock graph from the negative-cycle test and backs the Bisection strategy.
//   - Bisection: Bisect with clockgraph.Graph.Feasible as the oracle.
//   - Exterior: parametric Floyd-Warshall over cells affine in the period, with restarts.
//     This is the default strategy.
//   - CrossCheck: runs both and panics when they disagree.
//
// Both strategies return the period and the Bellman-Ford potentials read at that
// period, from which the phase positions follow.
//
// Complexity:
//
//   - Bisection: O(log((hi-lo)/Width) * V * E).
//   - Exterior:  O(R * V^3) for R restarts (R <= MaxRestarts).
//
// Errors:
//
//   - latchgraph.ErrInfeasible when no period satisfies the graph.
//   - ErrUnknownStrategy from New.
package solver
