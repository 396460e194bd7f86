package circuit

import (
	"fmt"
	"strings"

	"github.com/fyerfyer/backcone/pkg/utils"
)

// Direction tells whether a pin receives or drives a net.
type Direction int

const (
	Input Direction = iota
	Output
)

// String returns the oracle's representation of the direction.
func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// ParseDirection converts an oracle direction string.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "input":
		return Input, nil
	case "output":
		return Output, nil
	default:
		return Input, fmt.Errorf("unknown pin direction %q", s)
	}
}

// PinKind distinguishes the pin variants. Primary inputs have statically
// empty fanin and primary outputs statically empty fanout; gate pins
// resolve both lazily through the oracle.
type PinKind int

const (
	GatePin PinKind = iota
	PrimaryInput
	PrimaryOutput
)

// String returns a readable kind name.
func (k PinKind) String() string {
	switch k {
	case GatePin:
		return "gate pin"
	case PrimaryInput:
		return "primary input"
	case PrimaryOutput:
		return "primary output"
	default:
		return "unknown"
	}
}

// Pin is a named terminal on a gate or on the circuit boundary. Pins are
// canonical within a Registry: two resolutions of the same name yield the
// same object, so fanin/fanout sets can be compared by identity.
type Pin struct {
	Name      string
	Kind      PinKind
	Direction Direction

	reg  *Registry
	gate *Gate // nil for primary pins

	fanin      []*Pin
	fanout     []*Pin
	faninDone  bool
	fanoutDone bool
}

// String returns the variant and name, e.g. "GatePin(core/u1/a)".
func (p *Pin) String() string {
	switch p.Kind {
	case PrimaryInput:
		return fmt.Sprintf("PrimaryInput(%s)", p.Name)
	case PrimaryOutput:
		return fmt.Sprintf("PrimaryOutput(%s)", p.Name)
	default:
		return fmt.Sprintf("GatePin(%s)", p.Name)
	}
}

// Leaf returns the pin's name within its gate ("z" for "u1/z"). For a
// boundary pin the full name is the leaf.
func (p *Pin) Leaf() string {
	if i := strings.LastIndex(p.Name, "/"); i >= 0 {
		return p.Name[i+1:]
	}
	return p.Name
}

// VerilogName returns the pin name mangled into a verilog identifier.
func (p *Pin) VerilogName() string {
	return utils.VerilogName(p.Name)
}

// Gate returns the gate the pin belongs to, or nil for boundary pins.
func (p *Pin) Gate() *Gate {
	return p.gate
}

// Fanin returns the pins driving this pin, resolving them through the
// oracle on first use. A gate input pin is driven by exactly one net;
// more than one fanin pin is a fatal data-integrity error.
func (p *Pin) Fanin() ([]*Pin, error) {
	if p.Kind == PrimaryInput {
		return nil, nil
	}
	if p.faninDone {
		return p.fanin, nil
	}

	names, err := p.reg.session.Fanin(p.Name)
	if err != nil {
		return nil, fmt.Errorf("fanin of %s: %w", p.Name, err)
	}
	pins := make([]*Pin, 0, len(names))
	seen := make(map[*Pin]bool, len(names))
	for _, n := range names {
		fp, err := p.reg.Pin(n)
		if err != nil {
			return nil, fmt.Errorf("fanin of %s: %w", p.Name, err)
		}
		if !seen[fp] {
			seen[fp] = true
			pins = append(pins, fp)
		}
	}
	if p.Direction == Input && len(pins) > 1 {
		return nil, fmt.Errorf("%w: %s has %d", ErrMultipleFanin, p.Name, len(pins))
	}
	p.fanin = pins
	p.faninDone = true
	return p.fanin, nil
}

// Fanout returns the pins driven by this pin, resolving them through the
// oracle on first use. Net objects in the oracle's fanout listing are
// skipped; only pins are kept.
func (p *Pin) Fanout() ([]*Pin, error) {
	if p.Kind == PrimaryOutput {
		return nil, nil
	}
	if p.fanoutDone {
		return p.fanout, nil
	}

	names, err := p.reg.session.Fanout(p.Name)
	if err != nil {
		return nil, fmt.Errorf("fanout of %s: %w", p.Name, err)
	}
	pins := make([]*Pin, 0, len(names))
	seen := make(map[*Pin]bool, len(names))
	for _, n := range names {
		typ, err := p.reg.session.ObjectType(n)
		if err != nil {
			return nil, fmt.Errorf("fanout of %s: %w", p.Name, err)
		}
		if typ == "net" {
			continue
		}
		fp, err := p.reg.Pin(n)
		if err != nil {
			return nil, fmt.Errorf("fanout of %s: %w", p.Name, err)
		}
		if !seen[fp] {
			seen[fp] = true
			pins = append(pins, fp)
		}
	}
	p.fanout = pins
	p.fanoutDone = true
	return p.fanout, nil
}
