package circuit

import (
	"fmt"
	"strings"
)

// Gate is a named instance of a cell type. Its pin lists grow
// incrementally as pins referencing the gate are discovered; order is
// discovery order.
type Gate struct {
	Name    string
	Inputs  []*Pin
	Outputs []*Pin

	reg      *Registry
	celltype *CellType
}

// String returns "Gate(name)".
func (g *Gate) String() string {
	return fmt.Sprintf("Gate(%s)", g.Name)
}

// VerilogName returns the gate name mangled into a verilog identifier.
func (g *Gate) VerilogName() string {
	return strings.ReplaceAll(g.Name, "/", "__")
}

// CellType returns the gate's cell type, looked up through the oracle on
// first use.
func (g *Gate) CellType() (*CellType, error) {
	if g.celltype != nil {
		return g.celltype, nil
	}
	name, err := g.reg.session.ModuleName(g.Name)
	if err != nil {
		return nil, fmt.Errorf("cell type of gate %s: %w", g.Name, err)
	}
	g.celltype = g.reg.CellType(name)
	return g.celltype, nil
}

// attach records a pin on the gate's input or output list.
func (g *Gate) attach(p *Pin) {
	if p.Direction == Input {
		for _, q := range g.Inputs {
			if q == p {
				return
			}
		}
		g.Inputs = append(g.Inputs, p)
		return
	}
	for _, q := range g.Outputs {
		if q == p {
			return
		}
	}
	g.Outputs = append(g.Outputs, p)
}

// gateName strips the leaf segment off a pin name: "core/u1/z" -> "core/u1".
func gateName(pinName string) string {
	if i := strings.LastIndex(pinName, "/"); i >= 0 {
		return pinName[:i]
	}
	return pinName
}
