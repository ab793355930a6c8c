package ir

import (
	"github.com/roach88/streamcalc/internal/algebra"
)

// MaxExpandPower bounds the integer exponent Polynomial will expand.
const MaxExpandPower = 10

// Polynomial converts n into an algebraic value when n is built only from
// numbers, term literals, algebraic values, groups, negation and the
// operators + - * plus division by a non-zero constant and small
// non-negative integer powers. Chains are normalized first.
//
// The returned expression is combined.
func Polynomial(n Node) (algebra.Expression, bool) {
	switch v := n.(type) {
	case Num:
		return algebra.NewExpression(algebra.Constant(v.Value)), true
	case Mono:
		return algebra.NewExpression(v.Term), true
	case Poly:
		return v.Expr.Combine(), true
	case Group:
		return Polynomial(v.Inner)
	case Neg:
		e, ok := Polynomial(v.Inner)
		if !ok {
			return algebra.Expression{}, false
		}
		return e.Negate(), true
	case Chain:
		collapsed := Normalize(v, len(v.Ops))
		if _, still := collapsed.(Chain); still {
			return algebra.Expression{}, false
		}
		return Polynomial(collapsed)
	case Binary:
		return binaryPolynomial(v)
	}
	return algebra.Expression{}, false
}

func binaryPolynomial(b Binary) (algebra.Expression, bool) {
	left, ok := Polynomial(b.Left)
	if !ok {
		return algebra.Expression{}, false
	}
	right, ok := Polynomial(b.Right)
	if !ok {
		return algebra.Expression{}, false
	}

	switch b.Op {
	case OpAdd:
		return left.Add(right), true
	case OpSub:
		return left.Sub(right), true
	case OpMul:
		return left.Multiply(right), true
	case OpDiv:
		c, ok := right.Constant()
		if !ok || c == 0 {
			return algebra.Expression{}, false
		}
		return left.Scale(1 / c), true
	case OpPow:
		c, ok := right.Constant()
		if !ok || !algebra.IsInteger(c) || c < 0 || c > MaxExpandPower {
			return algebra.Expression{}, false
		}
		return left.Pow(int(c)), true
	}
	return algebra.Expression{}, false
}

// HasVariable reports whether any term literal or algebraic value inside n
// carries a variable.
func HasVariable(n Node) bool {
	switch v := n.(type) {
	case Mono:
		return !v.Term.IsConstant()
	case Poly:
		return len(v.Expr.Variables()) > 0
	case Group:
		return HasVariable(v.Inner)
	case Neg:
		return HasVariable(v.Inner)
	case Chain:
		for _, o := range v.Operands {
			if HasVariable(o) {
				return true
			}
		}
	case Binary:
		return HasVariable(v.Left) || HasVariable(v.Right)
	case Equation:
		return HasVariable(v.Left) || HasVariable(v.Right)
	}
	return false
}
