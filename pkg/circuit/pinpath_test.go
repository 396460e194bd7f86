package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPinPathActivationNeedsEveryPin(t *testing.T) {
	fx := newFixture(t).diamond()
	c := fx.diamondCircuit()

	paths, err := c.FindPinPaths(nil, nil, fx.pin("g1/z"))
	require.NoError(t, err)
	require.Len(t, paths, 1)
	pp := paths[0]

	xPins := make(map[*Pin]bool)
	for _, p := range pp.Pins {
		xPins[p] = true
	}
	assert.True(t, pp.IsActivated(xPins))

	delete(xPins, fx.pin("g3/a"))
	assert.False(t, pp.IsActivated(xPins),
		"an X missing anywhere on the path breaks activation")

	// Extra unknown pins off the path do not matter.
	xPins[fx.pin("g3/a")] = true
	xPins[fx.pin("g2/z")] = true
	assert.True(t, pp.IsActivated(xPins))
}

func TestPinPathContains(t *testing.T) {
	fx := newFixture(t).diamond()
	c := fx.diamondCircuit()

	paths, err := c.FindPinPaths(nil, nil, fx.pin("g2/z"))
	require.NoError(t, err)
	require.Len(t, paths, 1)
	pp := paths[0]

	assert.True(t, pp.Contains(fx.pin("g2/a")))
	assert.False(t, pp.Contains(fx.pin("g1/a")))
	assert.True(t, pp.ContainsAll([]*Pin{fx.pin("ff_a/q"), fx.pin("g3/z")}))
	assert.False(t, pp.ContainsAll([]*Pin{fx.pin("ff_a/q"), fx.pin("g1/z")}))
	assert.True(t, pp.ContainsAll(nil))
}

func TestPinPathPDFString(t *testing.T) {
	fx := newFixture(t).diamond()
	pp := &PinPath{
		Index: 7,
		Pins:  []*Pin{fx.pin("ff_a/q"), fx.pin("g1/a"), fx.pin("g1/z")},
	}

	want := "PATH \"path_7\" = \n" +
		"  PIN ff_a/q ;\n" +
		"  PIN g1/a ;\n" +
		"  PIN g1/z ;\n" +
		"END ;"
	assert.Equal(t, want, pp.PDFString())
}
