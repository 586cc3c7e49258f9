package latchgraph

import (
	"log/slog"
	"sort"

	"github.com/katalvlaran/clocksched/netlist"
)

// OrderPhases returns clocks in canonical phase order: ascending nominal fall,
// then ascending rise. If any clock has an unset fall position the declaration
// order is kept and a warning is logged. Clocks sharing both positions keep
// declaration order and are reported as unordered. The input slice is not
// modified.
func OrderPhases(clocks []netlist.Clock, logger *slog.Logger) []netlist.Clock {
	out := make([]netlist.Clock, len(clocks))
	copy(out, clocks)
	if logger == nil {
		logger = DefaultOptions().Logger
	}
	log := logger.With("component", "phase")

	for _, c := range out {
		if c.Params.Fall == netlist.Unset {
			log.Warn("clock position unset, using declaration order", "clock", c.Name)
			return out
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Params, out[j].Params
		if a.Fall != b.Fall {
			return a.Fall < b.Fall
		}
		return a.Rise < b.Rise
	})
	for i := 1; i < len(out); i++ {
		if a, b := out[i-1].Params, out[i].Params; a.Fall == b.Fall && a.Rise == b.Rise {
			log.Warn("clocks unordered", "first", out[i-1].Name, "second", out[i].Name, "fall", out[i].Params.Fall)
		}
	}
	for i, c := range out {
		log.Debug("phase", "index", i+1, "clock", c.Name)
	}

	return out
}
