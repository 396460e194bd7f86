package analyze

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fyerfyer/backcone/pkg/circuit"
)

// WriteVerilog emits the subcircuit as a verilog netlist: a module over
// the declared inputs and outputs, one wire per net, assigns tying the
// boundary pins to their nets, and one instance line per interior gate.
// Net names come from the oracle's stop-on-net fanin/fanout queries.
func WriteVerilog(w io.Writer, c *circuit.Circuit) error {
	ses := c.Registry().Session()
	inputs := c.Inputs()
	outputs := c.Outputs()

	ports := make([]string, 0, len(inputs)+len(outputs))
	for _, p := range inputs {
		ports = append(ports, p.VerilogName())
	}
	for _, p := range outputs {
		ports = append(ports, p.VerilogName())
	}
	sort.Strings(ports)
	fmt.Fprintf(w, "module %s(%s);\n", c.Name, strings.Join(ports, ", "))

	for _, p := range outputs {
		fmt.Fprintf(w, "  output %s;\n", p.VerilogName())
	}
	for _, p := range inputs {
		fmt.Fprintf(w, "  input %s;\n", p.VerilogName())
	}
	fmt.Fprintln(w)

	// Map every circuit pin to the net it touches.
	pinNet := make(map[*circuit.Pin]string, len(c.Pins()))
	for _, p := range c.Pins() {
		var net string
		var err error
		if p.Direction == circuit.Output {
			net, err = ses.FanoutNet(p.Name)
		} else {
			net, err = ses.FaninNet(p.Name)
		}
		if err != nil {
			return fmt.Errorf("netlist: net of %s: %w", p.Name, err)
		}
		pinNet[p] = net
	}

	nets := make(map[string]bool, len(pinNet))
	for _, n := range pinNet {
		nets[n] = true
	}
	netNames := make([]string, 0, len(nets))
	for n := range nets {
		netNames = append(netNames, n)
	}
	sort.Strings(netNames)
	for _, n := range netNames {
		fmt.Fprintf(w, "  wire %s;\n", n)
	}
	fmt.Fprintln(w)

	for _, p := range outputs {
		fmt.Fprintf(w, "  assign %s = %s;\n", p.VerilogName(), pinNet[p])
	}
	for _, p := range inputs {
		fmt.Fprintf(w, "  assign %s = %s;\n", pinNet[p], p.VerilogName())
	}
	fmt.Fprintln(w)

	for _, g := range c.Gates() {
		if touchesBoundary(c, g) {
			continue
		}
		ct, err := g.CellType()
		if err != nil {
			return fmt.Errorf("netlist: %w", err)
		}
		var conns []string
		for _, p := range append(append([]*circuit.Pin{}, g.Inputs...), g.Outputs...) {
			// The registry may know gate pins outside the cone; those
			// carry no net and stay unconnected.
			if !c.Contains(p) {
				continue
			}
			conns = append(conns, fmt.Sprintf(".%s (%s)", p.Leaf(), pinNet[p]))
		}
		fmt.Fprintf(w, "  %s %s (%s);\n", ct.Name, g.VerilogName(), strings.Join(conns, ", "))
	}

	fmt.Fprintln(w)
	_, err := fmt.Fprintln(w, "endmodule")
	return err
}

// touchesBoundary reports whether a gate sits on the subcircuit boundary:
// one of its outputs is a declared input, or one of its inputs a declared
// output. Boundary gates are represented by the assigns, not instanced.
func touchesBoundary(c *circuit.Circuit, g *circuit.Gate) bool {
	for _, p := range g.Outputs {
		if c.IsInput(p) {
			return true
		}
	}
	for _, p := range g.Inputs {
		if c.IsOutput(p) {
			return true
		}
	}
	return false
}
