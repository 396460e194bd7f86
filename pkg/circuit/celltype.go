package circuit

import "fmt"

// CellType is a named logic primitive shared across all gate instances of
// that type. Port name lists are looked up from the oracle on first use.
type CellType struct {
	Name string

	reg     *Registry
	inputs  []string
	outputs []string
}

// String returns "CellType(name)".
func (ct *CellType) String() string {
	return fmt.Sprintf("CellType(%s)", ct.Name)
}

// InputPorts returns the cell type's input port names.
func (ct *CellType) InputPorts() ([]string, error) {
	if ct.inputs == nil {
		ports, err := ct.reg.session.ModulePorts(ct.Name, "input")
		if err != nil {
			return nil, fmt.Errorf("input ports of %s: %w", ct.Name, err)
		}
		ct.inputs = ports
	}
	return ct.inputs, nil
}

// OutputPorts returns the cell type's output port names.
func (ct *CellType) OutputPorts() ([]string, error) {
	if ct.outputs == nil {
		ports, err := ct.reg.session.ModulePorts(ct.Name, "output")
		if err != nil {
			return nil, fmt.Errorf("output ports of %s: %w", ct.Name, err)
		}
		ct.outputs = ports
	}
	return ct.outputs, nil
}
