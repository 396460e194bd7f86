package circuit

import (
	"fmt"
	"strings"
)

// Backcone computes the backward logic cone of start: every pin reachable
// by repeatedly following fanin edges, stopping expansion at (but still
// including) any endpoint pin. Termination relies on the fanin relation
// being acyclic up to the endpoint flop boundaries, which the calling
// workflow guarantees by construction.
func Backcone(start *Pin, endpoints []*Pin) ([]*Pin, error) {
	stop := make(map[*Pin]bool, len(endpoints))
	for _, p := range endpoints {
		stop[p] = true
	}

	queue := map[*Pin]bool{start: true}
	visited := make(map[*Pin]bool)
	var cone []*Pin

	for len(queue) > 0 {
		var cur *Pin
		for p := range queue {
			cur = p
			break
		}
		delete(queue, cur)

		if visited[cur] {
			continue
		}
		visited[cur] = true
		cone = append(cone, cur)

		// Endpoints are included but never expanded.
		if stop[cur] {
			continue
		}

		fanin, err := cur.Fanin()
		if err != nil {
			return nil, fmt.Errorf("backcone of %s: %w", start.Name, err)
		}
		for _, fp := range fanin {
			if !visited[fp] {
				queue[fp] = true
			}
		}
	}
	return cone, nil
}

// ScanCellPin resolves the internal bit pin of one scan cell, adding it
// to the circuit. The oracle's scan cell report names the owning gate
// instance and its internal primitive; an empty primitive means the
// instance's "d" pin, otherwise the primitive is rewritten into a pin
// name ("bit" becomes "d", a trailing "_inst" is dropped).
func (c *Circuit) ScanCellPin(chain string, cell int) (*Pin, error) {
	inst, prim, err := c.reg.Session().ReportScanCell(chain, cell)
	if err != nil {
		return nil, fmt.Errorf("scan cell %s[%d]: %w", chain, cell, err)
	}

	var name string
	if prim == `""` {
		name = inst + "/d"
	} else {
		pin := strings.ReplaceAll(prim, "bit", "d")
		pin = strings.TrimSuffix(pin, "_inst")
		name = inst + "/" + pin
	}
	name = strings.TrimPrefix(name, "/")

	p, err := c.Pin(name)
	if err != nil {
		return nil, fmt.Errorf("scan cell %s[%d]: %w", chain, cell, err)
	}
	return p, nil
}

// BackconeFlopPins traces backward from a pin to the flop boundaries of
// the design hierarchy, resolving and adding each boundary pin to the
// circuit. These are the cone's input pins.
func (c *Circuit) BackconeFlopPins(from *Pin) ([]*Pin, error) {
	names, err := c.reg.Session().TraceFlopBoundary(from.Name)
	if err != nil {
		return nil, fmt.Errorf("flop trace from %s: %w", from.Name, err)
	}
	pins := make([]*Pin, 0, len(names))
	for _, n := range names {
		p, err := c.Pin(n)
		if err != nil {
			return nil, fmt.Errorf("flop trace from %s: %w", from.Name, err)
		}
		pins = append(pins, p)
	}
	return pins, nil
}
