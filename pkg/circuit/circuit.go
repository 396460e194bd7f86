package circuit

import (
	"fmt"
)

// Circuit is a named collection of logically related pins, gates and cell
// types carved out of the full design, typically one backward cone. Three
// role subsets mark the cone boundary: inputs (flop boundary pins),
// outputs (failing observation points) and defect sites. Roles require
// prior membership.
type Circuit struct {
	Name string

	reg       *Registry
	pins      map[string]*Pin
	gates     map[string]*Gate
	celltypes map[string]*CellType

	inputs      map[*Pin]bool
	outputs     map[*Pin]bool
	defectsites map[*Pin]bool

	graph     *pinGraph
	pinpaths  []*PinPath
	pathsDone bool
}

// New creates an empty circuit bound to a registry.
func New(name string, reg *Registry) *Circuit {
	return &Circuit{
		Name:        name,
		reg:         reg,
		pins:        make(map[string]*Pin),
		gates:       make(map[string]*Gate),
		celltypes:   make(map[string]*CellType),
		inputs:      make(map[*Pin]bool),
		outputs:     make(map[*Pin]bool),
		defectsites: make(map[*Pin]bool),
	}
}

// String returns "Circuit(name)".
func (c *Circuit) String() string {
	return fmt.Sprintf("Circuit(%s)", c.Name)
}

// Registry returns the registry the circuit resolves through.
func (c *Circuit) Registry() *Registry {
	return c.reg
}

// AddPin inserts a pre-resolved pin into the circuit and registers its
// owning gate and that gate's cell type.
func (c *Circuit) AddPin(p *Pin) error {
	if _, ok := c.pins[p.Name]; ok {
		return nil
	}
	c.pins[p.Name] = p
	if g := p.Gate(); g != nil {
		c.gates[g.Name] = g
		ct, err := g.CellType()
		if err != nil {
			return fmt.Errorf("add pin %s: %w", p.Name, err)
		}
		c.celltypes[ct.Name] = ct
	}
	return nil
}

// Pin resolves a pin by name through the registry and adds it to the
// circuit.
func (c *Circuit) Pin(name string) (*Pin, error) {
	if p, ok := c.pins[name]; ok {
		return p, nil
	}
	p, err := c.reg.Pin(name)
	if err != nil {
		return nil, err
	}
	if err := c.AddPin(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Contains reports circuit membership of a pin.
func (c *Circuit) Contains(p *Pin) bool {
	return c.pins[p.Name] == p
}

// Pins returns the circuit's pins in unspecified order.
func (c *Circuit) Pins() []*Pin {
	out := make([]*Pin, 0, len(c.pins))
	for _, p := range c.pins {
		out = append(out, p)
	}
	return out
}

// Gates returns the circuit's gates in unspecified order.
func (c *Circuit) Gates() []*Gate {
	out := make([]*Gate, 0, len(c.gates))
	for _, g := range c.gates {
		out = append(out, g)
	}
	return out
}

// CellTypes returns the cell types used by the circuit's gates.
func (c *Circuit) CellTypes() []*CellType {
	out := make([]*CellType, 0, len(c.celltypes))
	for _, ct := range c.celltypes {
		out = append(out, ct)
	}
	return out
}

// DefineInput declares a member pin as a circuit input. Declaring the
// same pin twice is a no-op.
func (c *Circuit) DefineInput(p *Pin) error {
	if !c.Contains(p) {
		return fmt.Errorf("define input %s: %w", p.Name, ErrNotMember)
	}
	c.inputs[p] = true
	return nil
}

// DefineOutput declares a member pin as a circuit output.
func (c *Circuit) DefineOutput(p *Pin) error {
	if !c.Contains(p) {
		return fmt.Errorf("define output %s: %w", p.Name, ErrNotMember)
	}
	c.outputs[p] = true
	return nil
}

// DefineDefectSite declares a member pin as a hypothesized defect site.
func (c *Circuit) DefineDefectSite(p *Pin) error {
	if !c.Contains(p) {
		return fmt.Errorf("define defect site %s: %w", p.Name, ErrNotMember)
	}
	c.defectsites[p] = true
	return nil
}

// Inputs returns the declared input pins in unspecified order.
func (c *Circuit) Inputs() []*Pin {
	return setToSlice(c.inputs)
}

// Outputs returns the declared output pins in unspecified order.
func (c *Circuit) Outputs() []*Pin {
	return setToSlice(c.outputs)
}

// DefectSites returns the declared defect sites in unspecified order.
func (c *Circuit) DefectSites() []*Pin {
	return setToSlice(c.defectsites)
}

// IsInput reports whether p is a declared input.
func (c *Circuit) IsInput(p *Pin) bool { return c.inputs[p] }

// IsOutput reports whether p is a declared output.
func (c *Circuit) IsOutput(p *Pin) bool { return c.outputs[p] }

// IsDefectSite reports whether p is a declared defect site.
func (c *Circuit) IsDefectSite(p *Pin) bool { return c.defectsites[p] }

func setToSlice(set map[*Pin]bool) []*Pin {
	out := make([]*Pin, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}
