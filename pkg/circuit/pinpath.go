package circuit

import (
	"fmt"
	"strings"
)

// PinPath is one simple path from a declared input to a declared output
// in the pin-level graph. Index is the path's stable position in its
// circuit's enumerated path list.
type PinPath struct {
	Pins  []*Pin
	Index int
}

// String joins the pin names, e.g. "a->u1/a->u1/z".
func (pp *PinPath) String() string {
	names := make([]string, len(pp.Pins))
	for i, p := range pp.Pins {
		names[i] = p.Name
	}
	return strings.Join(names, "->")
}

// First returns the path's starting pin.
func (pp *PinPath) First() *Pin {
	return pp.Pins[0]
}

// Last returns the path's ending pin.
func (pp *PinPath) Last() *Pin {
	return pp.Pins[len(pp.Pins)-1]
}

// Contains reports whether the path visits p.
func (pp *PinPath) Contains(p *Pin) bool {
	for _, q := range pp.Pins {
		if q == p {
			return true
		}
	}
	return false
}

// ContainsAll reports whether the path visits every pin in the set, in
// any order.
func (pp *PinPath) ContainsAll(pins []*Pin) bool {
	for _, p := range pins {
		if !pp.Contains(p) {
			return false
		}
	}
	return true
}

// IsActivated reports whether an X injection sensitized this path: every
// pin on the path must be in the set of pins that went unknown. An X
// that merely reached the endpoint by some other route does not count.
func (pp *PinPath) IsActivated(xPins map[*Pin]bool) bool {
	for _, p := range pp.Pins {
		if !xPins[p] {
			return false
		}
	}
	return true
}

// PDFString renders the path as a path-delay fault definition stanza.
func (pp *PinPath) PDFString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PATH \"path_%d\" = \n", pp.Index)
	for _, p := range pp.Pins {
		fmt.Fprintf(&b, "  PIN %s ;\n", p.Name)
	}
	b.WriteString("END ;")
	return b.String()
}
