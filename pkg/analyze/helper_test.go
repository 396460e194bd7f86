package analyze

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/backcone/pkg/circuit"
	"github.com/fyerfyer/backcone/pkg/oracle"
)

// fixture scripts a synthetic design on a fake oracle and builds circuits
// over it through the public circuit API.
type fixture struct {
	t    *testing.T
	fake *oracle.Fake
	reg  *circuit.Registry
}

func newFixture(t *testing.T) *fixture {
	fake := oracle.NewFake()
	return &fixture{
		t:    t,
		fake: fake,
		reg:  circuit.NewRegistry(oracle.NewSession(fake)),
	}
}

func (fx *fixture) gatePin(name, dir string) *fixture {
	fx.fake.On("get_pin "+name, name)
	fx.fake.On("get_single_attribute_value "+name+" -name direction", dir)
	return fx
}

func (fx *fixture) fanin(name string, fanin ...string) *fixture {
	fx.fake.On("get_name_list [get_fanin "+name+"]", strings.Join(fanin, " "))
	return fx
}

func (fx *fixture) cell(gate, cellName string) *fixture {
	fx.fake.On("get_single_attribute_value "+gate+" -name module_name", cellName)
	return fx
}

// andDesign scripts two flop outputs feeding an AND gate that drives one
// flop input:
//
//	ff_a/q -> g1/a \
//	                g1/z -> ff_z/d
//	ff_b/q -> g1/b /
func (fx *fixture) andDesign() *fixture {
	fx.gatePin("ff_a/q", "output")
	fx.gatePin("ff_b/q", "output")
	fx.gatePin("g1/a", "input").fanin("g1/a", "ff_a/q")
	fx.gatePin("g1/b", "input").fanin("g1/b", "ff_b/q")
	fx.gatePin("g1/z", "output").fanin("g1/z", "g1/a", "g1/b")
	fx.gatePin("ff_z/d", "input").fanin("ff_z/d", "g1/z")
	fx.cell("ff_a", "SDFF").cell("ff_b", "SDFF").cell("ff_z", "SDFF")
	fx.cell("g1", "AND2")
	return fx
}

// andCircuit builds a circuit over the AND design with ff_a/q and ff_b/q
// declared inputs and ff_z/d the declared output.
func (fx *fixture) andCircuit() *circuit.Circuit {
	c := circuit.New("andcone", fx.reg)
	for _, n := range []string{"ff_a/q", "ff_b/q", "g1/a", "g1/b", "g1/z", "ff_z/d"} {
		_, err := c.Pin(n)
		require.NoError(fx.t, err)
	}
	require.NoError(fx.t, c.DefineInput(fx.pin(c, "ff_a/q")))
	require.NoError(fx.t, c.DefineInput(fx.pin(c, "ff_b/q")))
	require.NoError(fx.t, c.DefineOutput(fx.pin(c, "ff_z/d")))
	return c
}

func (fx *fixture) pin(c *circuit.Circuit, name string) *circuit.Pin {
	p, err := c.Pin(name)
	require.NoError(fx.t, err)
	return p
}

func pinNames(pins []*circuit.Pin) []string {
	names := make([]string, len(pins))
	for i, p := range pins {
		names[i] = p.Name
	}
	return names
}
