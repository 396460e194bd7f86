package circuit

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/backcone/pkg/oracle"
)

// fixture scripts a synthetic design on a fake oracle and resolves pins
// through a real registry.
type fixture struct {
	t    *testing.T
	fake *oracle.Fake
	reg  *Registry
}

func newFixture(t *testing.T) *fixture {
	fake := oracle.NewFake()
	return &fixture{
		t:    t,
		fake: fake,
		reg:  NewRegistry(oracle.NewSession(fake)),
	}
}

// gatePin scripts existence and direction for a gate pin.
func (fx *fixture) gatePin(name, dir string) *fixture {
	fx.fake.On("get_pin "+name, name)
	fx.fake.On("get_single_attribute_value "+name+" -name direction", dir)
	return fx
}

// port scripts a circuit boundary port.
func (fx *fixture) port(name, dir string) *fixture {
	fx.fake.On("get_port "+name, name)
	fx.fake.On("get_single_attribute_value "+name+" -name direction", dir)
	return fx
}

// fanin scripts the fanin name list of a pin.
func (fx *fixture) fanin(name string, fanin ...string) *fixture {
	fx.fake.On("get_name_list [get_fanin "+name+"]", strings.Join(fanin, " "))
	return fx
}

// fanout scripts the fanout name list of a pin; every listed name also
// gets a pin object type unless scripted otherwise.
func (fx *fixture) fanout(name string, fanout ...string) *fixture {
	fx.fake.On("get_name_list [get_fanout "+name+"]", strings.Join(fanout, " "))
	for _, n := range fanout {
		cmd := "get_attribute_value_list " + n + " -name object_type"
		if _, ok := fx.fake.Script[cmd]; !ok {
			fx.fake.On(cmd, "pin")
		}
	}
	return fx
}

// cell scripts a gate's cell type name.
func (fx *fixture) cell(gate, cellName string) *fixture {
	fx.fake.On("get_single_attribute_value "+gate+" -name module_name", cellName)
	return fx
}

// pin resolves a pin through the registry, failing the test on error.
func (fx *fixture) pin(name string) *Pin {
	p, err := fx.reg.Pin(name)
	require.NoError(fx.t, err)
	return p
}

// diamond scripts the reference design used across tests: one input
// ff_a/q reaching output ff_z/d over two disjoint branches (g1, g2)
// reconverging at g3.
//
//	ff_a/q -> g1/a -> g1/z -> g3/a \
//	                                g3/z -> ff_z/d
//	ff_a/q -> g2/a -> g2/z -> g3/b /
func (fx *fixture) diamond() *fixture {
	fx.gatePin("ff_a/q", "output").fanin("ff_a/q").fanout("ff_a/q", "g1/a", "g2/a")
	fx.gatePin("g1/a", "input").fanin("g1/a", "ff_a/q").fanout("g1/a", "g1/z")
	fx.gatePin("g1/z", "output").fanin("g1/z", "g1/a").fanout("g1/z", "g3/a")
	fx.gatePin("g2/a", "input").fanin("g2/a", "ff_a/q").fanout("g2/a", "g2/z")
	fx.gatePin("g2/z", "output").fanin("g2/z", "g2/a").fanout("g2/z", "g3/b")
	fx.gatePin("g3/a", "input").fanin("g3/a", "g1/z").fanout("g3/a", "g3/z")
	fx.gatePin("g3/b", "input").fanin("g3/b", "g2/z").fanout("g3/b", "g3/z")
	fx.gatePin("g3/z", "output").fanin("g3/z", "g3/a", "g3/b").fanout("g3/z", "ff_z/d")
	fx.gatePin("ff_z/d", "input").fanin("ff_z/d", "g3/z").fanout("ff_z/d")
	fx.cell("ff_a", "SDFF").cell("ff_z", "SDFF")
	fx.cell("g1", "BUF").cell("g2", "BUF").cell("g3", "AND2")
	return fx
}

// diamondCircuit builds a circuit over the diamond design with roles
// declared.
func (fx *fixture) diamondCircuit() *Circuit {
	c := New("diamond", fx.reg)
	for _, n := range []string{"ff_a/q", "g1/a", "g1/z", "g2/a", "g2/z", "g3/a", "g3/b", "g3/z", "ff_z/d"} {
		_, err := c.Pin(n)
		require.NoError(fx.t, err)
	}
	require.NoError(fx.t, c.DefineInput(fx.pin("ff_a/q")))
	require.NoError(fx.t, c.DefineOutput(fx.pin("ff_z/d")))
	return c
}

// writeTestFile writes literal file content for read-path tests.
func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

// pinNames extracts names from a pin list.
func pinNames(pins []*Pin) []string {
	names := make([]string, len(pins))
	for i, p := range pins {
		names[i] = p.Name
	}
	return names
}
