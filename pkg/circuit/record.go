package circuit

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// RecordPin is one entry of a record's ordered pin list. Fanin and
// fanout hold indices into that same list; edges crossing the circuit
// boundary are not recorded.
type RecordPin struct {
	Name       string `json:"name"`
	Direction  string `json:"direction"`
	Input      bool   `json:"input"`
	Output     bool   `json:"output"`
	DefectSite bool   `json:"defectsite"`
	Fanin      []int  `json:"fanin"`
	Fanout     []int  `json:"fanout"`
}

// RecordPattern holds one pattern's per-pin value strings (ordered to
// match the record's pin list) and the indices of its activated paths.
type RecordPattern struct {
	Pins              []string `json:"pins"`
	ActivatedPinPaths []int    `json:"activatedpinpaths"`
}

// Record is the self-contained persisted form of a circuit plus optional
// analysis results. The pin list ordering is fixed at encode time and is
// the index space for every other reference.
type Record struct {
	Name     string                `json:"name"`
	Pins     []RecordPin           `json:"pins"`
	PinPaths [][]int               `json:"pinpaths"`
	Patterns map[int]RecordPattern `json:"patterns,omitempty"`
}

// Encode serializes a circuit and optional patterns into a record.
func Encode(c *Circuit, patterns []*Pattern) (*Record, error) {
	pinList := c.Pins()
	index := make(map[*Pin]int, len(pinList))
	for i, p := range pinList {
		index[p] = i
	}

	rec := &Record{Name: c.Name}

	for _, p := range pinList {
		rp := RecordPin{
			Name:       p.Name,
			Direction:  p.Direction.String(),
			Input:      c.IsInput(p),
			Output:     c.IsOutput(p),
			DefectSite: c.IsDefectSite(p),
		}
		fanin, err := p.Fanin()
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", c.Name, err)
		}
		for _, fp := range fanin {
			if i, ok := index[fp]; ok {
				rp.Fanin = append(rp.Fanin, i)
			}
		}
		fanout, err := p.Fanout()
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", c.Name, err)
		}
		for _, fp := range fanout {
			if i, ok := index[fp]; ok {
				rp.Fanout = append(rp.Fanout, i)
			}
		}
		rec.Pins = append(rec.Pins, rp)
	}

	paths, err := c.PinPaths()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.Name, err)
	}
	for _, pp := range paths {
		indices := make([]int, len(pp.Pins))
		for i, p := range pp.Pins {
			j, ok := index[p]
			if !ok {
				return nil, fmt.Errorf("encode %s: path %d visits non-member pin %s", c.Name, pp.Index, p.Name)
			}
			indices[i] = j
		}
		rec.PinPaths = append(rec.PinPaths, indices)
	}

	if len(patterns) > 0 {
		rec.Patterns = make(map[int]RecordPattern, len(patterns))
		for _, pat := range patterns {
			rp := RecordPattern{Pins: make([]string, len(pinList))}
			for i, p := range pinList {
				rp.Pins[i] = ValuesString(pat.PinValues[p])
			}
			for _, pp := range pat.ActivatedPinPaths() {
				rp.ActivatedPinPaths = append(rp.ActivatedPinPaths, pp.Index)
			}
			rec.Patterns[pat.Index] = rp
		}
	}
	return rec, nil
}

// Decode reconstructs a circuit and its patterns from a record. Pins are
// re-resolved by name through the live oracle-backed registry, so the
// topology is fresh while the recorded roles, paths and activations are
// replayed. name overrides the record's own name; having neither is a
// configuration error.
func Decode(rec *Record, reg *Registry, name string) (*Circuit, []*Pattern, error) {
	if name == "" {
		name = rec.Name
	}
	if name == "" {
		return nil, nil, fmt.Errorf("%w: no usable circuit name", ErrBadRecord)
	}

	c := New(name, reg)
	pinList := make([]*Pin, len(rec.Pins))
	for i, rp := range rec.Pins {
		p, err := c.Pin(rp.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("decode %s: %w", name, err)
		}
		pinList[i] = p
	}
	for i, rp := range rec.Pins {
		if rp.Input {
			if err := c.DefineInput(pinList[i]); err != nil {
				return nil, nil, err
			}
		}
		if rp.Output {
			if err := c.DefineOutput(pinList[i]); err != nil {
				return nil, nil, err
			}
		}
		if rp.DefectSite {
			if err := c.DefineDefectSite(pinList[i]); err != nil {
				return nil, nil, err
			}
		}
	}

	paths := make([]*PinPath, len(rec.PinPaths))
	for i, indices := range rec.PinPaths {
		pins := make([]*Pin, len(indices))
		for j, idx := range indices {
			if idx < 0 || idx >= len(pinList) {
				return nil, nil, fmt.Errorf("%w: path %d references pin index %d of %d", ErrBadRecord, i, idx, len(pinList))
			}
			pins[j] = pinList[idx]
		}
		paths[i] = &PinPath{Pins: pins, Index: i}
	}
	c.installPinPaths(paths)

	var patterns []*Pattern
	for patIdx, rp := range rec.Patterns {
		pat := NewPattern(patIdx)
		if len(rp.Pins) != len(pinList) {
			return nil, nil, fmt.Errorf("%w: pattern %d has %d value entries for %d pins", ErrBadRecord, patIdx, len(rp.Pins), len(pinList))
		}
		for i, s := range rp.Pins {
			if s == "" {
				continue
			}
			vals, err := ParseValuesString(s)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: pattern %d pin %s: %v", ErrBadRecord, patIdx, pinList[i].Name, err)
			}
			pat.PinValues[pinList[i]] = vals
		}
		for _, idx := range rp.ActivatedPinPaths {
			if idx < 0 || idx >= len(paths) {
				return nil, nil, fmt.Errorf("%w: pattern %d references path index %d of %d", ErrBadRecord, patIdx, idx, len(paths))
			}
			pat.AddActivatedPinPath(paths[idx])
		}
		patterns = append(patterns, pat)
	}
	sort.Slice(patterns, func(i, j int) bool { return patterns[i].Index < patterns[j].Index })

	return c, patterns, nil
}

// WriteFile writes the record as JSON.
func (rec *Record) WriteFile(path string) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("write record %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write record %s: %w", path, err)
	}
	return nil
}

// ReadRecordFile reads a JSON record written by WriteFile.
func ReadRecordFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record %s: %w", path, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadRecord, path, err)
	}
	return &rec, nil
}
