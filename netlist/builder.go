package netlist

import "github.com/pkg/errors"

// LatchOption customizes a latch declared through Builder.Latch.
type LatchOption func(*Node)

// WithLatchSetup sets the latch-specific setup time.
func WithLatchSetup(t float64) LatchOption { return func(n *Node) { n.Setup = t } }

// WithLatchHold sets the latch-specific hold time.
func WithLatchHold(t float64) LatchOption { return func(n *Node) { n.Hold = t } }

type pending struct {
	node    Node
	fanin   []string
	control string
}

type pendingClock struct {
	name   string
	params ClockParams
	skew   Skew
}

// Builder assembles a Netlist. Names are resolved in Build, so nodes may
// reference drivers declared later. The first error is kept and returned by Build.
//
//	nl, err := netlist.NewBuilder().
//		Input("clk").
//		Gate("g", netlist.NonInverting, []string{"l"}, netlist.Uniform(5, 3)).
//		Latch("l", netlist.RisingEdgeFF, "g", "clk").
//		Clock("clk", netlist.ClockParams{Rise: netlist.Unset, Fall: netlist.Unset}, netlist.Skew{}).
//		Build()
type Builder struct {
	name   string
	nodes  []pending
	clocks []pendingClock
	err    error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder { return &Builder{} }

// Named sets the circuit name.
func (b *Builder) Named(name string) *Builder {
	b.name = name
	return b
}

// Input declares a primary input.
func (b *Builder) Input(name string) *Builder {
	return b.add(pending{node: Node{Name: name, Kind: PrimaryInput, Control: NoNode}})
}

// Output declares a primary output driven by driver.
func (b *Builder) Output(name, driver string) *Builder {
	return b.add(pending{node: Node{Name: name, Kind: PrimaryOutput, Control: NoNode}, fanin: []string{driver}})
}

// Gate declares a combinational gate. pins, when given, must match fanin in length.
func (b *Builder) Gate(name string, pol Polarity, fanin []string, pins ...PinDelay) *Builder {
	if len(fanin) == 0 {
		b.fail(errors.Wrapf(ErrBadNode, "gate %q has no inputs", name))
		return b
	}
	if len(pins) != 0 && len(pins) != len(fanin) {
		b.fail(errors.Wrapf(ErrBadNode, "gate %q: %d pin delays for %d inputs", name, len(pins), len(fanin)))
		return b
	}
	for i, p := range pins {
		if !p.valid() {
			b.fail(errors.Wrapf(ErrBadDelay, "gate %q pin %d", name, i))
			return b
		}
	}
	nd := Node{Name: name, Kind: Gate, Polarity: pol, Pins: append([]PinDelay(nil), pins...), Control: NoNode}

	return b.add(pending{node: nd, fanin: append([]string(nil), fanin...)})
}

// Latch declares a memory element with a data driver and a control driver.
func (b *Builder) Latch(name string, kind LatchKind, data, control string, opts ...LatchOption) *Builder {
	nd := Node{Name: name, Kind: Latch, LatchKind: kind}
	for _, opt := range opts {
		opt(&nd)
	}
	if nd.Setup < 0 || nd.Hold < 0 {
		b.fail(errors.Wrapf(ErrBadNode, "latch %q: negative setup or hold", name))
		return b
	}

	return b.add(pending{node: nd, fanin: []string{data}, control: control})
}

// Clock registers an already declared primary input as a named clock.
func (b *Builder) Clock(name string, params ClockParams, skew Skew) *Builder {
	b.clocks = append(b.clocks, pendingClock{name: name, params: params, skew: skew})
	return b
}

func (b *Builder) add(p pending) *Builder {
	if p.node.Name == "" {
		b.fail(errors.Wrap(ErrBadNode, "empty node name"))
		return b
	}
	b.nodes = append(b.nodes, p)

	return b
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build resolves names and returns the netlist.
func (b *Builder) Build() (*Netlist, error) {
	if b.err != nil {
		return nil, b.err
	}

	// 1. Assign ids in declaration order.
	n := &Netlist{
		name:    b.name,
		nodes:   make([]Node, len(b.nodes)),
		byName:  make(map[string]NodeID, len(b.nodes)),
		fanout:  make([][]NodeID, len(b.nodes)),
		control: make([][]NodeID, len(b.nodes)),
	}
	for i, p := range b.nodes {
		if _, dup := n.byName[p.node.Name]; dup {
			return nil, errors.Wrapf(ErrDuplicateName, "%q", p.node.Name)
		}
		n.byName[p.node.Name] = NodeID(i)
	}

	resolve := func(owner, name string) (NodeID, error) {
		id, ok := n.byName[name]
		if !ok {
			return NoNode, errors.Wrapf(ErrUnknownName, "%q referenced by %q", name, owner)
		}
		if k := b.nodes[id].node.Kind; k == PrimaryOutput {
			return NoNode, errors.Wrapf(ErrBadNode, "%q reads primary output %q", owner, name)
		}
		return id, nil
	}

	// 2. Resolve fanin and control pins, filling the fanout tables.
	for i, p := range b.nodes {
		nd := p.node
		nd.ID = NodeID(i)
		nd.Fanin = make([]NodeID, len(p.fanin))
		for j, name := range p.fanin {
			id, err := resolve(nd.Name, name)
			if err != nil {
				return nil, err
			}
			nd.Fanin[j] = id
			n.fanout[id] = append(n.fanout[id], nd.ID)
		}
		if nd.Kind == Latch {
			id, err := resolve(nd.Name, p.control)
			if err != nil {
				return nil, err
			}
			nd.Control = id
			n.control[id] = append(n.control[id], nd.ID)
		}
		n.nodes[i] = nd
		switch nd.Kind {
		case PrimaryInput:
			n.inputs = append(n.inputs, nd.ID)
		case PrimaryOutput:
			n.outputs = append(n.outputs, nd.ID)
		case Latch:
			n.latches = append(n.latches, nd.ID)
		}
	}

	// 3. Register clocks on primary inputs.
	seen := make(map[string]bool, len(b.clocks))
	for _, c := range b.clocks {
		id, ok := n.byName[c.name]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownName, "clock %q", c.name)
		}
		if n.nodes[id].Kind != PrimaryInput {
			return nil, errors.Wrapf(ErrBadNode, "clock %q is not a primary input", c.name)
		}
		if seen[c.name] {
			return nil, errors.Wrapf(ErrDuplicateName, "clock %q", c.name)
		}
		seen[c.name] = true
		n.clocks = append(n.clocks, Clock{Name: c.name, Node: id, Params: c.params, Skew: c.skew})
	}

	return n, nil
}
