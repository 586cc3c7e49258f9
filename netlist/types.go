package netlist

import "fmt"

// NodeID addresses a node inside one Netlist. IDs are dense and start at 0.
type NodeID int

// NoNode marks an absent reference (e.g. the control pin of a gate).
const NoNode NodeID = -1

// Unset marks a clock position that has not been assigned yet.
const Unset = -1.0

// NodeKind classifies netlist nodes.
type NodeKind uint8

const (
	// PrimaryInput is a circuit input. Clocks are primary inputs registered with Builder.Clock.
	PrimaryInput NodeKind = iota
	// PrimaryOutput is a circuit output with exactly one driver.
	PrimaryOutput
	// Gate is a combinational node.
	Gate
	// Latch is a memory element with one data pin and one control pin.
	Latch
)

func (k NodeKind) String() string {
	switch k {
	case PrimaryInput:
		return "input"
	case PrimaryOutput:
		return "output"
	case Gate:
		return "gate"
	case Latch:
		return "latch"
	}

	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// Polarity describes how a gate maps input transitions to output transitions.
type Polarity uint8

const (
	// NonInverting gates: a rising input produces a rising output.
	NonInverting Polarity = iota
	// Inverting gates: a rising input produces a falling output.
	Inverting
	// Binate gates: either input transition may produce either output transition.
	Binate
)

func (p Polarity) String() string {
	switch p {
	case NonInverting:
		return "noninverting"
	case Inverting:
		return "inverting"
	case Binate:
		return "binate"
	}

	return fmt.Sprintf("Polarity(%d)", uint8(p))
}

// LatchKind is the triggering discipline of a memory element.
type LatchKind uint8

const (
	FallingEdgeFF LatchKind = iota
	RisingEdgeFF
	LevelSensitiveHigh
	LevelSensitiveLow
)

// IsLevelSensitive reports whether the latch is transparent while its phase is active.
func (k LatchKind) IsLevelSensitive() bool {
	return k == LevelSensitiveHigh || k == LevelSensitiveLow
}

// Invert returns the kind seen through an inverting control path.
func (k LatchKind) Invert() LatchKind {
	switch k {
	case FallingEdgeFF:
		return RisingEdgeFF
	case RisingEdgeFF:
		return FallingEdgeFF
	case LevelSensitiveHigh:
		return LevelSensitiveLow
	default:
		return LevelSensitiveHigh
	}
}

func (k LatchKind) String() string {
	switch k {
	case FallingEdgeFF:
		return "FFF"
	case RisingEdgeFF:
		return "FFR"
	case LevelSensitiveHigh:
		return "LSH"
	case LevelSensitiveLow:
		return "LSL"
	}

	return fmt.Sprintf("LatchKind(%d)", uint8(k))
}

// PinDelay holds the rise/fall delay bounds of one gate input pin.
type PinDelay struct {
	MaxRise float64 `yaml:"max_rise"`
	MaxFall float64 `yaml:"max_fall"`
	MinRise float64 `yaml:"min_rise"`
	MinFall float64 `yaml:"min_fall"`
}

// Uniform returns a PinDelay whose rise and fall bounds are equal.
func Uniform(max, min float64) PinDelay {
	return PinDelay{MaxRise: max, MaxFall: max, MinRise: min, MinFall: min}
}

func (d PinDelay) valid() bool {
	return d.MinRise <= d.MaxRise && d.MinFall <= d.MaxFall && d.MinRise >= 0 && d.MinFall >= 0
}

// Node is one element of the netlist.
//
// For gates Fanin lists the input drivers in pin order and Pins the library
// delay of each pin (may be empty when only the unit model is used).
// For latches Fanin holds the single data driver and Control the control driver.
// For primary outputs Fanin holds the single driver.
type Node struct {
	ID        NodeID
	Name      string
	Kind      NodeKind
	Fanin     []NodeID
	Polarity  Polarity
	Pins      []PinDelay
	LatchKind LatchKind
	Control   NodeID
	Setup     float64
	Hold      float64
}

// Skew bounds the deviation of each clock edge from its nominal position.
// Min values are usually negative (early), max values positive (late).
type Skew struct {
	RiseMin float64 `yaml:"rise_min"`
	RiseMax float64 `yaml:"rise_max"`
	FallMin float64 `yaml:"fall_min"`
	FallMax float64 `yaml:"fall_max"`
}

// ClockParams is the clock-parameter store of one clock.
// Positions equal to Unset have not been assigned.
type ClockParams struct {
	CycleTime float64
	Rise      float64
	Fall      float64
}

// IsSet reports whether both edge positions are assigned.
func (p ClockParams) IsSet() bool {
	return p.Rise != Unset && p.Fall != Unset
}

// Clock is a named clock signal driven by a primary input.
type Clock struct {
	Name   string
	Node   NodeID
	Params ClockParams
	Skew   Skew
}

// DelayModel selects how gate delays are computed.
type DelayModel uint8

const (
	// DelayLibrary uses the per-pin delays stored on each gate.
	DelayLibrary DelayModel = iota
	// DelayUnitFanout charges one unit per 2-input level plus a fanout load term.
	DelayUnitFanout
)

func (m DelayModel) String() string {
	switch m {
	case DelayLibrary:
		return "library"
	case DelayUnitFanout:
		return "unit"
	}

	return fmt.Sprintf("DelayModel(%d)", uint8(m))
}
