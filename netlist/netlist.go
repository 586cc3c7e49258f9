package netlist

import (
	"math"

	"github.com/pkg/errors"
)

// Sentinel errors.
var (
	ErrDuplicateName  = errors.New("netlist: duplicate node name")
	ErrUnknownName    = errors.New("netlist: unknown node name")
	ErrBadDelay       = errors.New("netlist: pin delay min exceeds max or is negative")
	ErrBadNode        = errors.New("netlist: malformed node")
	ErrNoLibraryDelay = errors.New("netlist: no library delay for pin")
	ErrUnknownClock   = errors.New("netlist: unknown clock")
)

// Delay model constants of DelayUnitFanout.
const (
	UnitDelay   = 1.0
	FanoutDelay = 0.2
)

// Netlist is an immutable circuit topology with a mutable clock-parameter store.
type Netlist struct {
	name    string
	nodes   []Node
	byName  map[string]NodeID
	fanout  [][]NodeID
	control [][]NodeID
	inputs  []NodeID
	outputs []NodeID
	latches []NodeID
	clocks  []Clock
}

// Name returns the circuit name (may be empty).
func (n *Netlist) Name() string { return n.name }

// Len returns the number of nodes.
func (n *Netlist) Len() int { return len(n.nodes) }

// Node returns the node with the given id. It panics on an out-of-range id.
func (n *Netlist) Node(id NodeID) Node { return n.nodes[id] }

// Lookup returns the id of the named node.
func (n *Netlist) Lookup(name string) (NodeID, bool) {
	id, ok := n.byName[name]

	return id, ok
}

// Fanout returns the nodes that read id on a data pin (gate inputs,
// latch data pins, primary outputs). The slice must not be modified.
func (n *Netlist) Fanout(id NodeID) []NodeID { return n.fanout[id] }

// ControlFanout returns the latches whose control pin is driven by id.
func (n *Netlist) ControlFanout(id NodeID) []NodeID { return n.control[id] }

// TransitiveFanout returns every node reachable from id through data pins,
// expanding gates only. Latches and primary outputs are reported but not crossed.
// The start node is not included. Order is breadth-first and deterministic.
func (n *Netlist) TransitiveFanout(id NodeID) []NodeID {
	seen := make([]bool, len(n.nodes))
	seen[id] = true
	queue := []NodeID{id}
	var out []NodeID
	var cur, nx NodeID
	for len(queue) > 0 {
		cur, queue = queue[0], queue[1:]
		for _, nx = range n.fanout[cur] {
			if seen[nx] {
				continue
			}
			seen[nx] = true
			out = append(out, nx)
			if n.nodes[nx].Kind == Gate {
				queue = append(queue, nx)
			}
		}
	}

	return out
}

// Inputs returns all primary inputs, clocks included, in declaration order.
func (n *Netlist) Inputs() []NodeID { return n.inputs }

// Outputs returns all primary outputs in declaration order.
func (n *Netlist) Outputs() []NodeID { return n.outputs }

// Latches returns all latches in declaration order.
func (n *Netlist) Latches() []NodeID { return n.latches }

// Clocks returns a copy of the clocks in declaration order.
func (n *Netlist) Clocks() []Clock {
	out := make([]Clock, len(n.clocks))
	copy(out, n.clocks)

	return out
}

// SetClockParams writes cycle time and edge positions back into the named clock.
func (n *Netlist) SetClockParams(name string, p ClockParams) error {
	for i := range n.clocks {
		if n.clocks[i].Name == name {
			n.clocks[i].Params = p
			return nil
		}
	}

	return errors.Wrapf(ErrUnknownClock, "set params of %q", name)
}

// PinDelay returns the delay bounds of input pin `pin` of gate id under model.
//
// DelayUnitFanout decomposes a k-input gate into a tree of 2-input gates,
// giving ceil(log2 k) levels (at least one), and adds FanoutDelay per fanout.
// Rise and fall as well as min and max coincide under this model.
func (n *Netlist) PinDelay(model DelayModel, id NodeID, pin int) (PinDelay, error) {
	nd := n.nodes[id]
	if nd.Kind != Gate || pin < 0 || pin >= len(nd.Fanin) {
		return PinDelay{}, errors.Wrapf(ErrBadNode, "pin %d of %q", pin, nd.Name)
	}
	switch model {
	case DelayUnitFanout:
		levels := 1.0
		if k := len(nd.Fanin); k > 2 {
			levels = math.Ceil(math.Log2(float64(k)))
		}
		d := levels*UnitDelay + FanoutDelay*float64(len(n.fanout[id]))
		return Uniform(d, d), nil
	case DelayLibrary:
		if pin >= len(nd.Pins) {
			return PinDelay{}, errors.Wrapf(ErrNoLibraryDelay, "pin %d of gate %q", pin, nd.Name)
		}
		return nd.Pins[pin], nil
	}

	return PinDelay{}, errors.Errorf("netlist: unknown delay model %d", model)
}
