package circuit

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	fx := newFixture(t).diamond()
	c := fx.diamondCircuit()
	require.NoError(t, c.DefineDefectSite(fx.pin("g1/z")))

	paths, err := c.PinPaths()
	require.NoError(t, err)
	require.Len(t, paths, 2)

	pat := NewPattern(2)
	pat.PinValues[fx.pin("ff_a/q")] = []Value{Zero, One}
	pat.PinValues[fx.pin("ff_z/d")] = []Value{One, One}
	pat.AddActivatedPinPath(paths[0])

	rec, err := Encode(c, []*Pattern{pat})
	require.NoError(t, err)

	// Restore on a fresh session so the decoded circuit re-resolves
	// everything independently.
	fx2 := newFixture(t).diamond()
	c2, patterns, err := Decode(rec, fx2.reg, "")
	require.NoError(t, err)

	assert.Equal(t, "diamond", c2.Name)
	assert.ElementsMatch(t, pinNames(c.Pins()), pinNames(c2.Pins()))
	assert.Equal(t, []string{"ff_a/q"}, pinNames(c2.Inputs()))
	assert.Equal(t, []string{"ff_z/d"}, pinNames(c2.Outputs()))
	assert.Equal(t, []string{"g1/z"}, pinNames(c2.DefectSites()))

	paths2, err := c2.PinPaths()
	require.NoError(t, err)
	assert.Equal(t, pathStrings(paths), pathStrings(paths2))

	require.Len(t, patterns, 1)
	pat2 := patterns[0]
	assert.Equal(t, 2, pat2.Index)
	a2, err := c2.Pin("ff_a/q")
	require.NoError(t, err)
	assert.Equal(t, []Value{Zero, One}, pat2.PinValues[a2])
	require.Len(t, pat2.ActivatedPinPaths(), 1)
	assert.Equal(t, paths[0].String(), pat2.ActivatedPinPaths()[0].String())
}

func TestRecordDecodeRestoredPathsNeedNoEnumeration(t *testing.T) {
	fx := newFixture(t).diamond()
	c := fx.diamondCircuit()
	_, err := c.PinPaths()
	require.NoError(t, err)

	rec, err := Encode(c, nil)
	require.NoError(t, err)

	fx2 := newFixture(t).diamond()
	c2, _, err := Decode(rec, fx2.reg, "")
	require.NoError(t, err)

	calls := len(fx2.fake.Calls)
	_, err = c2.PinPaths()
	require.NoError(t, err)
	assert.Equal(t, calls, len(fx2.fake.Calls),
		"restored paths must be reused, not re-derived")
	assert.False(t, fx2.fake.Sent("get_name_list [get_fanin ff_z/d]"))
}

func TestRecordDecodeNameOverride(t *testing.T) {
	fx := newFixture(t).diamond()
	c := fx.diamondCircuit()
	rec, err := Encode(c, nil)
	require.NoError(t, err)

	fx2 := newFixture(t).diamond()
	c2, _, err := Decode(rec, fx2.reg, "renamed")
	require.NoError(t, err)
	assert.Equal(t, "renamed", c2.Name)
}

func TestRecordDecodeNeedsName(t *testing.T) {
	fx := newFixture(t)
	_, _, err := Decode(&Record{}, fx.reg, "")
	assert.ErrorIs(t, err, ErrBadRecord)
}

func TestRecordDecodeRejectsBadPathIndex(t *testing.T) {
	fx := newFixture(t)
	fx.gatePin("u1/z", "output").cell("u1", "AND2")

	rec := &Record{
		Name:     "bad",
		Pins:     []RecordPin{{Name: "u1/z", Direction: "output"}},
		PinPaths: [][]int{{0, 5}},
	}
	_, _, err := Decode(rec, fx.reg, "")
	assert.ErrorIs(t, err, ErrBadRecord)
}

func TestRecordDecodeRejectsMismatchedPatternValues(t *testing.T) {
	fx := newFixture(t)
	fx.gatePin("u1/z", "output").cell("u1", "AND2")

	rec := &Record{
		Name: "bad",
		Pins: []RecordPin{{Name: "u1/z", Direction: "output"}},
		Patterns: map[int]RecordPattern{
			0: {Pins: []string{"01", "10"}},
		},
	}
	_, _, err := Decode(rec, fx.reg, "")
	assert.ErrorIs(t, err, ErrBadRecord)
}

func TestRecordDecodeRejectsBadActivationIndex(t *testing.T) {
	fx := newFixture(t)
	fx.gatePin("u1/z", "output").cell("u1", "AND2")

	rec := &Record{
		Name: "bad",
		Pins: []RecordPin{{Name: "u1/z", Direction: "output"}},
		Patterns: map[int]RecordPattern{
			0: {Pins: []string{"01"}, ActivatedPinPaths: []int{3}},
		},
	}
	_, _, err := Decode(rec, fx.reg, "")
	assert.ErrorIs(t, err, ErrBadRecord)
}

func TestRecordFileRoundTrip(t *testing.T) {
	fx := newFixture(t).diamond()
	c := fx.diamondCircuit()
	rec, err := Encode(c, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "rec.json")
	require.NoError(t, rec.WriteFile(path))

	back, err := ReadRecordFile(path)
	require.NoError(t, err)
	assert.Equal(t, rec.Name, back.Name)
	assert.Equal(t, rec.PinPaths, back.PinPaths)

	names := func(pins []RecordPin) []string {
		out := make([]string, len(pins))
		for i, rp := range pins {
			out[i] = rp.Name
		}
		sort.Strings(out)
		return out
	}
	assert.Equal(t, names(rec.Pins), names(back.Pins))
}

func TestRecordReadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.json")
	require.NoError(t, writeTestFile(path, "{not json"))

	_, err := ReadRecordFile(path)
	assert.ErrorIs(t, err, ErrBadRecord)
}
