package circuit

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackconeClosesOverFanin(t *testing.T) {
	fx := newFixture(t).diamond()

	start := fx.pin("ff_z/d")
	cone, err := Backcone(start, []*Pin{fx.pin("ff_a/q")})
	require.NoError(t, err)

	names := pinNames(cone)
	sort.Strings(names)
	assert.Equal(t, []string{
		"ff_a/q", "ff_z/d", "g1/a", "g1/z", "g2/a", "g2/z", "g3/a", "g3/b", "g3/z",
	}, names)
}

func TestBackconeIncludesButDoesNotExpandEndpoints(t *testing.T) {
	fx := newFixture(t).diamond()

	cone, err := Backcone(fx.pin("ff_z/d"), []*Pin{fx.pin("ff_a/q")})
	require.NoError(t, err)

	assert.Contains(t, pinNames(cone), "ff_a/q")
	assert.False(t, fx.fake.Sent("get_name_list [get_fanin ff_a/q]"),
		"endpoint fanin must not be queried")
}

func TestBackconeOfEndpointIsItself(t *testing.T) {
	fx := newFixture(t).diamond()

	p := fx.pin("ff_a/q")
	cone, err := Backcone(p, []*Pin{p})
	require.NoError(t, err)
	assert.Equal(t, []*Pin{p}, cone)
}

func TestScanCellPinWithPrimitive(t *testing.T) {
	fx := newFixture(t)
	fx.fake.On("report_scan_cell chain1 -range 5 5",
		"chain  group  cell  ...\n"+
			"------------------------------\n"+
			"chain1 grp1 5 0 0 0 MASTER FFFF 0 core/ff_q bit_inst")
	fx.gatePin("core/ff_q/d", "input").cell("core/ff_q", "SDFF")

	c := New("c", fx.reg)
	p, err := c.ScanCellPin("chain1", 5)
	require.NoError(t, err)
	assert.Equal(t, "core/ff_q/d", p.Name)
	assert.True(t, c.Contains(p))
}

func TestScanCellPinEmptyPrimitive(t *testing.T) {
	fx := newFixture(t)
	fx.fake.On("report_scan_cell chain1 -range 0 0",
		`chain1 grp1 0 0 0 0 MASTER FFFF 0 core/ff_q ""`)
	fx.gatePin("core/ff_q/d", "input").cell("core/ff_q", "SDFF")

	c := New("c", fx.reg)
	p, err := c.ScanCellPin("chain1", 0)
	require.NoError(t, err)
	assert.Equal(t, "core/ff_q/d", p.Name)
}

func TestScanCellPinMalformedReport(t *testing.T) {
	fx := newFixture(t)
	fx.fake.On("report_scan_cell chain1 -range 2 2", "too few fields")

	c := New("c", fx.reg)
	_, err := c.ScanCellPin("chain1", 2)
	assert.Error(t, err)
}

func TestBackconeFlopPins(t *testing.T) {
	fx := newFixture(t)
	fx.gatePin("ff_z/d", "input").cell("ff_z", "SDFF")
	fx.gatePin("ff_a/q", "output").cell("ff_a", "SDFF")
	fx.gatePin("ff_b/q", "output").cell("ff_b", "SDFF")
	fx.fake.On("get_attribute_value_list [trace_flat_model -from ff_z/d -direction backward -map_tag_to_design_module_boundary on] -name name",
		"ff_a/q ff_b/q")

	c := New("c", fx.reg)
	from, err := c.Pin("ff_z/d")
	require.NoError(t, err)

	pins, err := c.BackconeFlopPins(from)
	require.NoError(t, err)
	assert.Equal(t, []string{"ff_a/q", "ff_b/q"}, pinNames(pins))
	for _, p := range pins {
		assert.True(t, c.Contains(p))
	}
}
