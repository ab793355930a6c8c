package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streamcalc/internal/ir"
)

func TestParse_RendersCanonically(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2+3*4", "2+3*4"},
		{"2 + 3 * 4", "2+3*4"},
		{"(x+1)(x+2)", "(x+1)(x+2)"},
		{"2x+3=7", "2x+3=7"},
		{"x^2-5x+6=0", "x^2-5x+6=0"},
		{"d/dx(3x^2)", "d/dx(3x^2)"},
		{"diff(x^3, x)", "d/dx(x^3)"},
		{"derivative(x^2y,y)", "d/dy(x^2y)"},
		{"∫x^2 dx", "∫x^2 dx"},
		{"∫x^2dx", "∫x^2 dx"},
		{"integrate(2x, x)", "∫2x dx"},
		{"∫[0,2] x^2 dx", "∫[0,2] x^2 dx"},
		{"int([0,1],x^3,x)", "∫[0,1] x^3 dx"},
		{"maximize(-x^2+4x)", "maximize(-x^2+4x,x)"},
		{"critical(t^2, t)", "critical(t^2,t)"},
		{"factor(x^2+5x+6)", "factor(x^2+5x+6)"},
		{"5!", "5!"},
		{"√9", "√9"},
		{"3√27", "3√27"},
		{"⌊3.7⌋", "⌊3.7⌋"},
		{"⌈3.2⌉+1", "⌈3.2⌉+1"},
		{"|-5|", "|-5|"},
		{"-(2+3)", "-(2+3)"},
		{"2×3÷4", "2*3/4"},
		{"2(x+3)", "2(x+3)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, node.String())
		})
	}
}

func TestParse_Shapes(t *testing.T) {
	node, err := Parse("2+3*4")
	require.NoError(t, err)
	c, ok := node.(ir.Chain)
	require.True(t, ok)
	assert.Equal(t, []ir.Op{ir.OpAdd, ir.OpMul}, c.Ops)

	node, err = Parse("(x+1)(x+2)")
	require.NoError(t, err)
	b, ok := node.(ir.Binary)
	require.True(t, ok)
	assert.True(t, b.Implicit)
	assert.IsType(t, ir.Group{}, b.Left)
	assert.IsType(t, ir.Group{}, b.Right)

	node, err = Parse("-3")
	require.NoError(t, err)
	assert.Equal(t, ir.Num{Value: -3}, node)

	node, err = Parse("∫[0,2] x^2 dx")
	require.NoError(t, err)
	in, ok := node.(ir.Integral)
	require.True(t, ok)
	assert.True(t, in.Definite())
	assert.Equal(t, "x", in.Var)
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{"", "2++3", "(2+3", "2+", "diff(x^2)", "∫x^2", "3 $ 4", "d/dx 3x", "int([0,1] x, x)"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)
			var se *SyntaxError
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestParseOrRaw_FallsBackToRaw(t *testing.T) {
	node, err := ParseOrRaw("  2++3 ")

	require.Error(t, err)
	assert.Equal(t, ir.Raw{Text: "2++3"}, node)
}

func TestNormalize_ComposesUnicode(t *testing.T) {
	// "e" followed by a combining acute accent composes to a single rune.
	assert.Equal(t, "é", Normalize(" é "))
}
