package netlist_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/clocksched/netlist"
)

func unsetParams() netlist.ClockParams {
	return netlist.ClockParams{Rise: netlist.Unset, Fall: netlist.Unset}
}

func buildRing(t *testing.T) *netlist.Netlist {
	t.Helper()
	nl, err := netlist.NewBuilder().
		Named("ring").
		Input("clk").
		Gate("g1", netlist.NonInverting, []string{"l1"}, netlist.Uniform(5, 3)).
		Gate("g2", netlist.NonInverting, []string{"l2"}, netlist.Uniform(4, 2)).
		Latch("l1", netlist.RisingEdgeFF, "g2", "clk").
		Latch("l2", netlist.RisingEdgeFF, "g1", "clk").
		Clock("clk", unsetParams(), netlist.Skew{}).
		Build()
	require.NoError(t, err)

	return nl
}

func id(t *testing.T, nl *netlist.Netlist, name string) netlist.NodeID {
	t.Helper()
	v, ok := nl.Lookup(name)
	require.True(t, ok, "missing %s", name)

	return v
}

func TestBuilder_ForwardReferences(t *testing.T) {
	nl := buildRing(t)
	require.Equal(t, 5, nl.Len())
	assert.Equal(t, "ring", nl.Name())

	l1 := nl.Node(id(t, nl, "l1"))
	assert.Equal(t, netlist.Latch, l1.Kind)
	assert.Equal(t, []netlist.NodeID{id(t, nl, "g2")}, l1.Fanin)
	assert.Equal(t, id(t, nl, "clk"), l1.Control)

	assert.Equal(t, []netlist.NodeID{id(t, nl, "g1")}, nl.Fanout(id(t, nl, "l1")))
	assert.Len(t, nl.ControlFanout(id(t, nl, "clk")), 2)
	assert.Empty(t, nl.Fanout(id(t, nl, "clk")))
	assert.Len(t, nl.Latches(), 2)
	assert.Len(t, nl.Inputs(), 1)
	assert.Empty(t, nl.Outputs())
}

func TestBuilder_Errors(t *testing.T) {
	cases := []struct {
		name string
		b    *netlist.Builder
		want error
	}{
		{"duplicate", netlist.NewBuilder().Input("a").Input("a"), netlist.ErrDuplicateName},
		{"unknown driver", netlist.NewBuilder().Output("o", "nope"), netlist.ErrUnknownName},
		{"bad delay", netlist.NewBuilder().Input("a").Gate("g", netlist.Inverting, []string{"a"}, netlist.Uniform(1, 2)), netlist.ErrBadDelay},
		{"pin count", netlist.NewBuilder().Input("a").Gate("g", netlist.Inverting, []string{"a", "a"}, netlist.Uniform(1, 1)), netlist.ErrBadNode},
		{"clock not input", netlist.NewBuilder().Input("a").Gate("g", netlist.Inverting, []string{"a"}).Clock("g", unsetParams(), netlist.Skew{}), netlist.ErrBadNode},
		{"unknown clock", netlist.NewBuilder().Input("a").Clock("clk", unsetParams(), netlist.Skew{}), netlist.ErrUnknownName},
		{"reads output", netlist.NewBuilder().Input("a").Output("o", "a").Gate("g", netlist.NonInverting, []string{"o"}), netlist.ErrBadNode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			nl, err := tc.b.Build()
			assert.Nil(t, nl)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestPinDelay_Models(t *testing.T) {
	nl, err := netlist.NewBuilder().
		Input("a").Input("b").Input("c").Input("d").
		Gate("wide", netlist.NonInverting, []string{"a", "b", "c", "d"}).
		Gate("n1", netlist.Inverting, []string{"wide"}, netlist.PinDelay{MaxRise: 2, MaxFall: 3, MinRise: 1, MinFall: 1}).
		Output("o", "wide").
		Build()
	require.NoError(t, err)

	wide := id(t, nl, "wide")
	d, err := nl.PinDelay(netlist.DelayUnitFanout, wide, 3)
	require.NoError(t, err)
	// two 2-input levels plus two fanouts
	assert.InDelta(t, 2.4, d.MaxRise, 1e-12)
	assert.InDelta(t, 2.4, d.MinFall, 1e-12)

	_, err = nl.PinDelay(netlist.DelayLibrary, wide, 0)
	assert.ErrorIs(t, err, netlist.ErrNoLibraryDelay)

	d, err = nl.PinDelay(netlist.DelayLibrary, id(t, nl, "n1"), 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, d.MaxFall)

	_, err = nl.PinDelay(netlist.DelayLibrary, id(t, nl, "n1"), 1)
	assert.ErrorIs(t, err, netlist.ErrBadNode)
}

func TestTransitiveFanout_StopsAtLatches(t *testing.T) {
	nl := buildRing(t)
	got := nl.TransitiveFanout(id(t, nl, "l1"))
	assert.Equal(t, []netlist.NodeID{id(t, nl, "g1"), id(t, nl, "l2")}, got)
}

func TestSetClockParams(t *testing.T) {
	nl := buildRing(t)
	require.NoError(t, nl.SetClockParams("clk", netlist.ClockParams{CycleTime: 5, Rise: 0, Fall: 5}))
	assert.Equal(t, 5.0, nl.Clocks()[0].Params.CycleTime)
	assert.True(t, nl.Clocks()[0].Params.IsSet())

	err := nl.SetClockParams("phi9", netlist.ClockParams{})
	assert.ErrorIs(t, err, netlist.ErrUnknownClock)
}

func TestLatchKind_Invert(t *testing.T) {
	for _, k := range []netlist.LatchKind{netlist.FallingEdgeFF, netlist.RisingEdgeFF, netlist.LevelSensitiveHigh, netlist.LevelSensitiveLow} {
		assert.Equal(t, k, k.Invert().Invert())
		assert.Equal(t, k.IsLevelSensitive(), k.Invert().IsLevelSensitive())
		assert.NotEqual(t, k, k.Invert())
	}
}

func TestLoad_Ring(t *testing.T) {
	nl, err := netlist.Load("testdata/ring.yaml")
	require.NoError(t, err)
	require.Len(t, nl.Clocks(), 1)

	clk := nl.Clocks()[0]
	assert.Equal(t, netlist.Unset, clk.Params.Rise)
	assert.Equal(t, 5.0, clk.Params.Fall)
	assert.False(t, clk.Params.IsSet())

	d, err := nl.PinDelay(netlist.DelayLibrary, id(t, nl, "g1"), 0)
	require.NoError(t, err)
	assert.Equal(t, netlist.Uniform(5, 3), d)
}

func TestParse_Errors(t *testing.T) {
	_, err := netlist.Parse([]byte("latches: [{name: l, kind: JK, data: a, control: b}]"))
	assert.ErrorIs(t, err, netlist.ErrBadFile)

	_, err = netlist.Parse([]byte("gates: [{name: g, polarity: sideways, fanin: [a]}]"))
	assert.ErrorIs(t, err, netlist.ErrBadFile)

	_, err = netlist.Parse([]byte("inputs: [a"))
	assert.ErrorIs(t, err, netlist.ErrBadFile)

	_, err = netlist.Load("testdata/missing.yaml")
	assert.Error(t, err)
}
