package circuit

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
)

// pinGraph is the pin-level directed dependency graph of a circuit:
// one node per member pin, one edge from a driving pin to each member pin
// whose fanin includes it. Declared inputs get no incoming edges; they
// are cone boundaries.
type pinGraph struct {
	g    *simple.DirectedGraph
	ids  map[*Pin]int64
	pins map[int64]*Pin
}

// buildPinGraph derives the pin graph from resolved fanin relations.
func (c *Circuit) buildPinGraph() (*pinGraph, error) {
	pg := &pinGraph{
		g:    simple.NewDirectedGraph(),
		ids:  make(map[*Pin]int64, len(c.pins)),
		pins: make(map[int64]*Pin, len(c.pins)),
	}

	var next int64
	for _, p := range c.pins {
		id := next
		next++
		pg.ids[p] = id
		pg.pins[id] = p
		pg.g.AddNode(simple.Node(id))
	}

	for _, p := range c.pins {
		if c.inputs[p] {
			continue
		}
		fanin, err := p.Fanin()
		if err != nil {
			return nil, fmt.Errorf("pin graph of %s: %w", c.Name, err)
		}
		for _, fp := range fanin {
			if fp == p || !c.Contains(fp) {
				continue
			}
			pg.g.SetEdge(simple.Edge{F: simple.Node(pg.ids[fp]), T: simple.Node(pg.ids[p])})
		}
	}
	return pg, nil
}

// simplePaths enumerates every simple directed path from one pin to
// another by depth-first search with a visited-on-current-path set.
// Worst case exponential; bounded in practice by the cone's fan degree.
func (pg *pinGraph) simplePaths(from, to *Pin) [][]*Pin {
	fromID, okFrom := pg.ids[from]
	toID, okTo := pg.ids[to]
	if !okFrom || !okTo {
		return nil
	}

	var found [][]*Pin
	onPath := make(map[int64]bool)
	var stack []*Pin

	var walk func(id int64)
	walk = func(id int64) {
		onPath[id] = true
		stack = append(stack, pg.pins[id])

		if id == toID {
			path := make([]*Pin, len(stack))
			copy(path, stack)
			found = append(found, path)
		} else {
			it := pg.g.From(id)
			for it.Next() {
				next := it.Node().ID()
				if !onPath[next] {
					walk(next)
				}
			}
		}

		stack = stack[:len(stack)-1]
		onPath[id] = false
	}
	walk(fromID)
	return found
}

// PinPaths enumerates all simple paths from declared inputs to declared
// outputs and freezes the result. Indices are 0-based discovery order;
// only their round-trip stability within one session is promised, not the
// order itself.
func (c *Circuit) PinPaths() ([]*PinPath, error) {
	if c.pathsDone {
		return c.pinpaths, nil
	}

	pg, err := c.buildPinGraph()
	if err != nil {
		return nil, err
	}
	c.graph = pg

	var paths []*PinPath
	for input := range c.inputs {
		for output := range c.outputs {
			for _, pins := range pg.simplePaths(input, output) {
				paths = append(paths, &PinPath{Pins: pins, Index: len(paths)})
			}
		}
	}
	c.pinpaths = paths
	c.pathsDone = true
	return c.pinpaths, nil
}

// FindPinPaths returns the enumerated paths whose first pin is from (if
// non-nil), whose last pin is to (if non-nil), and which contain every
// pin of through. Containment is unordered; through imposes no ordering
// constraint.
func (c *Circuit) FindPinPaths(from, to *Pin, through ...*Pin) ([]*PinPath, error) {
	all, err := c.PinPaths()
	if err != nil {
		return nil, err
	}
	var out []*PinPath
	for _, pp := range all {
		if from != nil && pp.First() != from {
			continue
		}
		if to != nil && pp.Last() != to {
			continue
		}
		if !pp.ContainsAll(through) {
			continue
		}
		out = append(out, pp)
	}
	return out, nil
}

// installPinPaths replaces the enumerated path list, used when restoring
// a circuit from a persisted record.
func (c *Circuit) installPinPaths(paths []*PinPath) {
	c.pinpaths = paths
	c.pathsDone = true
}
