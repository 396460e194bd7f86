package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseName(t *testing.T) {
	assert.Equal(t, "core/u1/a", ParseName("{core/u1/a}"))
	assert.Equal(t, "core/u1/a", ParseName(`\core/u1/a `))
	assert.Equal(t, "u1/a", ParseName("u1/a"))
	assert.Equal(t, "", ParseName("  "))
}

func TestParseNameList(t *testing.T) {
	names := ParseNameList("u1/a {core/u2/b} u3/c")
	assert.Equal(t, []string{"u1/a", "core/u2/b", "u3/c"}, names)

	names = ParseNameList("  u1/a\n\tu2/b ")
	assert.Equal(t, []string{"u1/a", "u2/b"}, names)

	assert.Empty(t, ParseNameList(""))
	assert.Empty(t, ParseNameList("   "))
}

func TestVerilogName(t *testing.T) {
	assert.Equal(t, "core__u1__z", VerilogName("core/u1/z"))
	assert.Equal(t, "top_in", VerilogName("top_in"))
	assert.Equal(t, `\core__reg[3]`, VerilogName("core/reg[3]"))
}
