package circuit

import (
	"fmt"

	"github.com/google/uuid"
)

// Pattern is one failing test vector, identified by its index in the
// pattern set. It accumulates the value tuple captured on every circuit
// pin and the paths found to be activated under this pattern.
type Pattern struct {
	Index     int
	PinValues map[*Pin][]Value

	simContext string
	activated  []*PinPath
}

// NewPattern creates an empty pattern. The simulation context name gets a
// unique suffix so re-analysis of the same pattern in one session never
// collides with an earlier context.
func NewPattern(index int) *Pattern {
	return &Pattern{
		Index:      index,
		PinValues:  make(map[*Pin][]Value),
		simContext: fmt.Sprintf("pattern_%d_%s", index, uuid.NewString()[:8]),
	}
}

// String returns "Pattern(index)".
func (pat *Pattern) String() string {
	return fmt.Sprintf("Pattern(%d)", pat.Index)
}

// SimContext returns the pattern's simulation context name.
func (pat *Pattern) SimContext() string {
	return pat.simContext
}

// ActivatedPinPaths returns the paths marked activated so far.
func (pat *Pattern) ActivatedPinPaths() []*PinPath {
	return pat.activated
}

// AddActivatedPinPath appends a path to the activated list.
func (pat *Pattern) AddActivatedPinPath(pp *PinPath) {
	pat.activated = append(pat.activated, pp)
}

// HasTransition reports whether a pin switched between the pattern's
// first and last captured values. Static pins cannot have caused a
// dynamic failure and are skipped as injection candidates.
func (pat *Pattern) HasTransition(p *Pin) bool {
	vals, ok := pat.PinValues[p]
	if !ok || len(vals) < 2 {
		return false
	}
	return vals[0] != vals[len(vals)-1]
}

// LastValue returns the pin's final captured value for this pattern.
func (pat *Pattern) LastValue(p *Pin) (Value, bool) {
	vals, ok := pat.PinValues[p]
	if !ok || len(vals) == 0 {
		return X, false
	}
	return vals[len(vals)-1], true
}

// CaptureValues queries the oracle's gate-level report for this pattern
// and stores the value tuple of every circuit pin. A pin missing from
// the report means the circuit and pattern set do not correlate, which
// is fatal.
func (pat *Pattern) CaptureValues(c *Circuit) error {
	ses := c.Registry().Session()
	if err := ses.SetGateReportPattern(pat.Index); err != nil {
		return fmt.Errorf("pattern %d: %w", pat.Index, err)
	}
	for _, p := range c.Pins() {
		if _, ok := pat.PinValues[p]; ok {
			continue
		}
		token, err := ses.GateReportValue(p.Name, p.Leaf())
		if err != nil {
			return fmt.Errorf("pattern %d: capture %s: %w", pat.Index, p.Name, err)
		}
		vals, err := ParseValueTuple(token)
		if err != nil {
			return fmt.Errorf("pattern %d: capture %s: %w", pat.Index, p.Name, err)
		}
		pat.PinValues[p] = vals
	}
	return nil
}

// CreateSimContext captures the pattern's values, then establishes an
// independent simulation context seeded from the stable capture context
// with every declared input forced to its last captured value and
// propagated. X injections are compared against this baseline.
func (pat *Pattern) CreateSimContext(c *Circuit) error {
	if err := pat.CaptureValues(c); err != nil {
		return err
	}

	ses := c.Registry().Session()
	if err := ses.AddSimulationContext(pat.simContext, "stable_capture"); err != nil {
		return fmt.Errorf("pattern %d: %w", pat.Index, err)
	}
	if err := ses.SetSimulationContext(pat.simContext); err != nil {
		return fmt.Errorf("pattern %d: %w", pat.Index, err)
	}

	for _, in := range c.Inputs() {
		v, ok := pat.LastValue(in)
		if !ok {
			return fmt.Errorf("pattern %d: no captured value for input %s", pat.Index, in.Name)
		}
		if err := ses.AddSimulationForce(in.Name, v.String()); err != nil {
			return fmt.Errorf("pattern %d: force %s: %w", pat.Index, in.Name, err)
		}
	}
	if err := ses.SimulateForces(); err != nil {
		return fmt.Errorf("pattern %d: %w", pat.Index, err)
	}
	return nil
}

// SimulateXAtPin forces an unknown value onto one pin in the pattern's
// simulation context, propagates it, and reports which circuit pins went
// unknown and which declared outputs are among them. The pin is restored
// to its captured value before returning, so the next injection starts
// from a clean baseline.
func (pat *Pattern) SimulateXAtPin(c *Circuit, pin *Pin) (xPins map[*Pin]bool, xOutputs []*Pin, err error) {
	ses := c.Registry().Session()
	if err := ses.AddSimulationForce(pin.Name, X.String()); err != nil {
		return nil, nil, fmt.Errorf("pattern %d: inject X at %s: %w", pat.Index, pin.Name, err)
	}
	if err := ses.SimulateForces(); err != nil {
		return nil, nil, fmt.Errorf("pattern %d: inject X at %s: %w", pat.Index, pin.Name, err)
	}

	xPins = make(map[*Pin]bool)
	for _, p := range c.Pins() {
		v, err := ses.SimulationValue(p.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("pattern %d: simulation value of %s: %w", pat.Index, p.Name, err)
		}
		if v == "X" {
			xPins[p] = true
		}
	}
	for _, o := range c.Outputs() {
		if xPins[o] {
			xOutputs = append(xOutputs, o)
		}
	}

	// Restore the candidate so injections stay mutually exclusive.
	v, ok := pat.LastValue(pin)
	if !ok {
		return nil, nil, fmt.Errorf("pattern %d: no captured value to restore on %s", pat.Index, pin.Name)
	}
	if err := ses.AddSimulationForce(pin.Name, v.String()); err != nil {
		return nil, nil, fmt.Errorf("pattern %d: restore %s: %w", pat.Index, pin.Name, err)
	}
	return xPins, xOutputs, nil
}
