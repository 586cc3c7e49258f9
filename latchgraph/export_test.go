package latchgraph

// CycleCrossing exposes the K rule to latchgraph_test.
var CycleCrossing = cycleCrossing
