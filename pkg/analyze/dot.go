package analyze

import (
	"fmt"
	"io"
	"sort"

	"github.com/fyerfyer/backcone/pkg/circuit"
)

// WriteDOT emits the gate-level view of the subcircuit as graphviz DOT
// text: interior gates collapse to one node each, boundary pins stay as
// their own nodes, inputs and outputs are ranked in their own rows, and
// every node is labeled with its cell type.
func WriteDOT(w io.Writer, c *circuit.Circuit) error {
	labels := make(map[string]string)
	var inputNodes, outputNodes, gateNodes []string
	seen := make(map[string]bool)

	nodeFor := func(p *circuit.Pin) (string, error) {
		label := "-"
		if g := p.Gate(); g != nil {
			ct, err := g.CellType()
			if err != nil {
				return "", err
			}
			label = ct.Name
		}
		var name string
		switch {
		case c.IsInput(p):
			name = p.Name
			if !seen[name] {
				inputNodes = append(inputNodes, name)
			}
		case c.IsOutput(p):
			name = p.Name
			if !seen[name] {
				outputNodes = append(outputNodes, name)
			}
		default:
			g := p.Gate()
			if g == nil {
				name = p.Name
			} else {
				name = g.Name
			}
			if !seen[name] {
				gateNodes = append(gateNodes, name)
			}
		}
		seen[name] = true
		labels[name] = label
		return name, nil
	}

	edges := make(map[string]bool)
	for _, p := range c.Pins() {
		if c.IsInput(p) || p.Direction != circuit.Input {
			continue
		}
		sink, err := nodeFor(p)
		if err != nil {
			return fmt.Errorf("dot export: %w", err)
		}
		fanin, err := p.Fanin()
		if err != nil {
			return fmt.Errorf("dot export: %w", err)
		}
		for _, fp := range fanin {
			if !c.Contains(fp) {
				continue
			}
			source, err := nodeFor(fp)
			if err != nil {
				return fmt.Errorf("dot export: %w", err)
			}
			edges[fmt.Sprintf("  %q -> %q;", source, sink)] = true
		}
	}
	// Boundary pins with no interior edges still deserve nodes.
	for _, p := range c.Pins() {
		if c.IsInput(p) || c.IsOutput(p) {
			if _, err := nodeFor(p); err != nil {
				return fmt.Errorf("dot export: %w", err)
			}
		}
	}

	fmt.Fprintf(w, "digraph %q {\n", c.Name)
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [style=filled, shape=box];")

	writeRank := func(nodes []string, color string) {
		sort.Strings(nodes)
		if color != "gray" {
			fmt.Fprintln(w, "  { rank=same;")
		}
		for _, n := range nodes {
			fmt.Fprintf(w, "    %q [label=%q, fillcolor=%s];\n", n, labels[n], color)
		}
		if color != "gray" {
			fmt.Fprintln(w, "  }")
		}
	}
	writeRank(inputNodes, "blue")
	writeRank(outputNodes, "red")
	writeRank(gateNodes, "gray")

	edgeList := make([]string, 0, len(edges))
	for e := range edges {
		edgeList = append(edgeList, e)
	}
	sort.Strings(edgeList)
	for _, e := range edgeList {
		fmt.Fprintln(w, e)
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}
