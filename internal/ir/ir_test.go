package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streamcalc/internal/algebra"
)

func num(v float64) Node { return Num{Value: v} }

func mono(t *testing.T, s string) Node {
	t.Helper()
	term, err := algebra.ParseTerm(s)
	require.NoError(t, err)
	return Mono{Term: term}
}

func chain(operands []Node, ops ...Op) Chain {
	return Chain{Operands: operands, Ops: ops}
}

func TestChainBracket_HigherPrecedenceFirst(t *testing.T) {
	ops := []Op{OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow}
	for _, a := range ops {
		for _, b := range ops {
			if a.Precedence() == b.Precedence() {
				continue
			}
			c := chain([]Node{num(1), num(2), num(3)}, a, b)
			got := c.Bracket()

			want := 0
			if b.Precedence() > a.Precedence() {
				want = 1
			}
			require.Len(t, got.Operands, 2, "%s %s", a, b)
			g, ok := got.Operands[want].(Group)
			require.True(t, ok, "%s %s: operand %d should be grouped in %s", a, b, want, got)
			assert.Equal(t, []Op{[]Op{a, b}[1-want]}, got.Ops)
			assert.Equal(t, []Op{a, b}[want], g.Inner.(Binary).Op)
		}
	}
}

func TestChainBracket_PowerGroupsRightmostFirst(t *testing.T) {
	c := chain([]Node{num(2), num(2), num(3)}, OpPow, OpPow)

	assert.Equal(t, "2^(2^3)", Normalize(c, 10).String())
}

func TestChainBracket_SamePrecedenceGroupsLeftmostFirst(t *testing.T) {
	c := chain([]Node{num(8), num(4), num(2)}, OpSub, OpSub)

	assert.Equal(t, "(8-4)-2", Normalize(c, 10).String())
}

func TestNormalize_Pemdas(t *testing.T) {
	c := chain([]Node{num(2), num(3), num(4)}, OpAdd, OpMul)

	got := Normalize(c, 10)

	assert.Equal(t, "2+(3*4)", got.String())
	_, isBinary := got.(Binary)
	assert.True(t, isBinary)
}

func TestNormalize_RespectsLimit(t *testing.T) {
	c := chain([]Node{num(1), num(2), num(3), num(4)}, OpAdd, OpAdd, OpAdd)

	got := Normalize(c, 1)

	_, isChain := got.(Chain)
	assert.True(t, isChain)
	assert.Equal(t, "(1+2)+3+4", got.String())
}

func TestIsNormalForm(t *testing.T) {
	x, err := algebra.ParseExpression("x^2+3x+2")
	require.NoError(t, err)
	like, err := algebra.ParseExpression("x+x")
	require.NoError(t, err)
	boundX := Bindings(func(name string) bool { return name == "x" })

	assert.True(t, IsNormalForm(num(14), nil))
	assert.True(t, IsNormalForm(Poly{Expr: x}, nil))
	assert.False(t, IsNormalForm(Poly{Expr: like}, nil))
	assert.False(t, IsNormalForm(Poly{Expr: x}, boundX))
	assert.True(t, IsNormalForm(Poly{Expr: x}, Bindings(func(string) bool { return false })))
	assert.True(t, IsNormalForm(Solution{Var: "x", Values: []float64{2}}, nil))
	assert.True(t, IsNormalForm(NoSolution{}, nil))
	assert.True(t, IsNormalForm(Antiderivative{Expr: x}, nil))
	assert.True(t, IsNormalForm(ErrorValue{Message: "Error: x"}, nil))
	assert.False(t, IsNormalForm(chain([]Node{num(1), num(2)}, OpAdd), nil))
	assert.False(t, IsNormalForm(mono(t, "2x"), nil))
}

func TestPolynomial(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"product of groups",
			Binary{Op: OpMul, Implicit: true,
				Left:  Group{Inner: chain([]Node{mono(t, "x"), num(1)}, OpAdd)},
				Right: Group{Inner: chain([]Node{mono(t, "x"), num(2)}, OpAdd)}},
			"x^2+3x+2"},
		{"chain with precedence", chain([]Node{mono(t, "2x"), num(3), num(1)}, OpMul, OpAdd), "6x+1"},
		{"division by constant", Binary{Op: OpDiv, Left: mono(t, "x^3"), Right: num(3)}, "0.3333333333x^3"},
		{"square", Binary{Op: OpPow, Left: Group{Inner: chain([]Node{mono(t, "x"), num(1)}, OpAdd)}, Right: num(2)}, "x^2+2x+1"},
		{"negation", Neg{Inner: Group{Inner: chain([]Node{mono(t, "x"), num(1)}, OpSub)}}, "-x+1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Polynomial(tt.node)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestPolynomial_Rejects(t *testing.T) {
	rejects := []Node{
		Binary{Op: OpDiv, Left: num(1), Right: mono(t, "x")},
		Binary{Op: OpDiv, Left: mono(t, "x"), Right: num(0)},
		Binary{Op: OpPow, Left: mono(t, "x"), Right: num(0.5)},
		Binary{Op: OpMod, Left: mono(t, "x"), Right: num(2)},
		Factorial{Inner: num(3)},
		Equation{Left: mono(t, "x"), Right: num(1)},
	}
	for _, n := range rejects {
		_, ok := Polynomial(n)
		assert.False(t, ok, "%s", n)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{Solution{Var: "x", Values: []float64{2, 3}}, "x=2,3"},
		{NoSolution{}, "no real solutions"},
		{Factored{Var: "x", P: 2, Q: -3}, "(x+2)(x-3)"},
		{Factored{Var: "x", P: 0, Q: 5}, "(x)(x+5)"},
		{Antiderivative{}, "C"},
		{CriticalPoints{Var: "x", Points: []CriticalPoint{{At: 2, Value: -1}}}, "x=2, value=-1"},
		{Root{Radicand: num(9)}, "√9"},
		{Root{Index: num(3), Radicand: num(27)}, "3√27"},
		{Bracket{Kind: Floor, Inner: num(3.7)}, "⌊3.7⌋"},
		{Bracket{Kind: Abs, Inner: num(-5)}, "|-5|"},
		{Factorial{Inner: num(5)}, "5!"},
		{Binary{Op: OpMul, Left: num(2), Right: num(-3)}, "2*(-3)"},
		{Binary{Op: OpPow, Left: num(-8), Right: num(0.5)}, "(-8)^0.5"},
		{Binary{Op: OpMul, Implicit: true, Left: mono(t, "-2x"), Right: Group{Inner: num(1)}}, "(-2x)(1)"},
		{Derivative{Var: "x", Body: mono(t, "3x^2")}, "d/dx(3x^2)"},
		{Integral{Var: "x", Body: mono(t, "x^2"), Lower: num(0), Upper: num(2)}, "∫[0,2] x^2 dx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.node.String())
	}
}
