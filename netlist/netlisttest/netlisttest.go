// Package netlisttest provides reference circuits for tests across the module.
package netlisttest

import "github.com/katalvlaran/clocksched/netlist"

func unset() netlist.ClockParams {
	return netlist.ClockParams{Rise: netlist.Unset, Fall: netlist.Unset}
}

func must(nl *netlist.Netlist, err error) *netlist.Netlist {
	if err != nil {
		panic(err)
	}

	return nl
}

// Ring is two rising-edge flip-flops in a loop on one clock:
// l1 -(max 5, min 3)-> l2 -(max 4, min 2)-> l1. Its minimum period is 5.
func Ring() *netlist.Netlist {
	return must(netlist.NewBuilder().
		Named("ring").
		Input("clk").
		Gate("g1", netlist.NonInverting, []string{"l1"}, netlist.Uniform(5, 3)).
		Gate("g2", netlist.NonInverting, []string{"l2"}, netlist.Uniform(4, 2)).
		Latch("l1", netlist.RisingEdgeFF, "g2", "clk").
		Latch("l2", netlist.RisingEdgeFF, "g1", "clk").
		Clock("clk", unset(), netlist.Skew{}).
		Build())
}

// TwoPhase is a loop of two high-transparent latches on two clocks:
// l1 (phi1) -(3)-> l2 (phi2) -(4)-> l1. Its minimum period is 7.
func TwoPhase() *netlist.Netlist {
	return must(netlist.NewBuilder().
		Named("two-phase").
		Input("phi1").Input("phi2").
		Gate("g1", netlist.NonInverting, []string{"l1"}, netlist.Uniform(3, 3)).
		Gate("g2", netlist.NonInverting, []string{"l2"}, netlist.Uniform(4, 4)).
		Latch("l1", netlist.LevelSensitiveHigh, "g2", "phi1").
		Latch("l2", netlist.LevelSensitiveHigh, "g1", "phi2").
		Clock("phi1", netlist.ClockParams{Rise: 0, Fall: 2}, netlist.Skew{}).
		Clock("phi2", netlist.ClockParams{Rise: 3, Fall: 7}, netlist.Skew{}).
		Build())
}

// Pipeline feeds a primary input through two rising-edge stages to an output:
// in -(2)-> l1 -(6, min 1)-> l2 -(1)-> out. Its minimum period is 6.
func Pipeline() *netlist.Netlist {
	return must(netlist.NewBuilder().
		Named("pipeline").
		Input("clk").Input("in").
		Gate("g0", netlist.NonInverting, []string{"in"}, netlist.Uniform(2, 2)).
		Latch("l1", netlist.RisingEdgeFF, "g0", "clk").
		Gate("g1", netlist.Inverting, []string{"l1"}, netlist.Uniform(6, 1)).
		Latch("l2", netlist.RisingEdgeFF, "g1", "clk").
		Gate("g2", netlist.NonInverting, []string{"l2"}, netlist.Uniform(1, 1)).
		Output("out", "g2").
		Clock("clk", unset(), netlist.Skew{}).
		Build())
}

// GatedClock drives a latch control through AND(clk, en).
func GatedClock() *netlist.Netlist {
	return must(netlist.NewBuilder().
		Input("clk").Input("en").Input("d").
		Gate("and", netlist.NonInverting, []string{"clk", "en"}, netlist.Uniform(1, 1), netlist.Uniform(1, 1)).
		Latch("l", netlist.RisingEdgeFF, "d", "and").
		Clock("clk", unset(), netlist.Skew{}).
		Build())
}

// ClockToOutput lets the clock fan out to a primary output.
func ClockToOutput() *netlist.Netlist {
	return must(netlist.NewBuilder().
		Input("clk").Input("d").
		Gate("buf", netlist.NonInverting, []string{"clk"}, netlist.Uniform(1, 1)).
		Latch("l", netlist.RisingEdgeFF, "d", "clk").
		Output("o", "buf").
		Clock("clk", unset(), netlist.Skew{}).
		Build())
}

// Combinational has no memory elements.
func Combinational() *netlist.Netlist {
	return must(netlist.NewBuilder().
		Input("a").
		Gate("n", netlist.Inverting, []string{"a"}, netlist.Uniform(1, 1)).
		Output("o", "n").
		Build())
}

// LowLoop closes a loop from a high-transparent latch on phi1 through a
// low-transparent latch on phi2: l0 -(1)-> l1 -(1)-> l0. The low latch opens
// in the cycle before its phase, so l1 -> l0 crosses into the next cycle.
// Its minimum period is 2.
func LowLoop() *netlist.Netlist {
	return must(netlist.NewBuilder().
		Named("low-loop").
		Input("phi1").Input("phi2").
		Gate("g0", netlist.NonInverting, []string{"l0"}, netlist.Uniform(1, 1)).
		Gate("g1", netlist.NonInverting, []string{"l1"}, netlist.Uniform(1, 1)).
		Latch("l0", netlist.LevelSensitiveHigh, "g1", "phi1").
		Latch("l1", netlist.LevelSensitiveLow, "g0", "phi2").
		Clock("phi1", unset(), netlist.Skew{}).
		Clock("phi2", unset(), netlist.Skew{}).
		Build())
}

// Swapped declares clock b (fall 10) before clock a (fall 5) and loops two
// rising-edge flip-flops across them: la (a) -(3)-> lb (b) -(3)-> la.
// Its minimum period is 6.
func Swapped() *netlist.Netlist {
	return must(netlist.NewBuilder().
		Named("swapped").
		Input("b").Input("a").
		Gate("ga", netlist.NonInverting, []string{"la"}, netlist.Uniform(3, 3)).
		Gate("gb", netlist.NonInverting, []string{"lb"}, netlist.Uniform(3, 3)).
		Latch("la", netlist.RisingEdgeFF, "gb", "a").
		Latch("lb", netlist.RisingEdgeFF, "ga", "b").
		Clock("b", netlist.ClockParams{Rise: netlist.Unset, Fall: 10}, netlist.Skew{}).
		Clock("a", netlist.ClockParams{Rise: netlist.Unset, Fall: 5}, netlist.Skew{}).
		Build())
}

// HoldBound chains two rising-edge flip-flops through a wire with no minimum
// delay into a latch that needs 0.5 of hold: no period satisfies it.
func HoldBound() *netlist.Netlist {
	return must(netlist.NewBuilder().
		Named("hold-bound").
		Input("clk").Input("d").
		Latch("l1", netlist.RisingEdgeFF, "d", "clk").
		Gate("w", netlist.NonInverting, []string{"l1"}, netlist.Uniform(1, 0)).
		Latch("l2", netlist.RisingEdgeFF, "w", "clk", netlist.WithLatchHold(0.5)).
		Clock("clk", unset(), netlist.Skew{}).
		Build())
}
