package ir

import (
	"strings"

	"github.com/roach88/streamcalc/internal/algebra"
)

// Node is a sealed interface for expression tree nodes.
type Node interface {
	String() string
	irNode() // Sealed
}

// Op is a binary operator.
type Op string

const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
	OpMod Op = "%"
	OpPow Op = "^"
)

// Precedence returns 3 for "^", 2 for "*", "/", "%" and 1 for "+", "-".
func (o Op) Precedence() int {
	switch o {
	case OpPow:
		return 3
	case OpMul, OpDiv, OpMod:
		return 2
	case OpAdd, OpSub:
		return 1
	}
	return 0
}

// RightAssociative reports whether chained uses of o group from the right.
func (o Op) RightAssociative() bool {
	return o == OpPow
}

// Num is a plain number.
type Num struct {
	Value float64
}

func (Num) irNode() {}

func (n Num) String() string { return algebra.FormatNumber(n.Value) }

// Mono is a term literal as written in the input ("2x^2y"), not yet
// lifted into an algebraic value.
type Mono struct {
	Term algebra.Term
}

func (Mono) irNode() {}

func (m Mono) String() string { return m.Term.String() }

// Poly is an algebraic value.
type Poly struct {
	Expr algebra.Expression
}

func (Poly) irNode() {}

func (p Poly) String() string { return p.Expr.String() }

// Chain is a flat operator sequence whose precedence is not resolved.
// len(Ops) == len(Operands)-1.
type Chain struct {
	Operands []Node
	Ops      []Op
}

func (Chain) irNode() {}

func (c Chain) String() string {
	var b strings.Builder
	for i, operand := range c.Operands {
		if i == 0 {
			b.WriteString(leadingString(operand))
			continue
		}
		b.WriteString(string(c.Ops[i-1]))
		b.WriteString(operandString(operand))
	}
	return b.String()
}

// Binary is a single operator application. Implicit marks juxtaposed
// multiplication such as "2(x+3)" or "(x+1)(x+2)".
type Binary struct {
	Op       Op
	Left     Node
	Right    Node
	Implicit bool
}

func (Binary) irNode() {}

func (b Binary) String() string {
	if b.Implicit {
		return leadingString(b.Left) + operandString(b.Right)
	}
	return leadingString(b.Left) + string(b.Op) + operandString(b.Right)
}

// Group is an explicit parenthesized sub-expression.
type Group struct {
	Inner Node
}

func (Group) irNode() {}

func (g Group) String() string { return "(" + g.Inner.String() + ")" }

// Neg is a unary minus applied to a non-literal operand.
type Neg struct {
	Inner Node
}

func (Neg) irNode() {}

func (n Neg) String() string { return "-" + operandString(n.Inner) }

// Factorial is the postfix "!" operator.
type Factorial struct {
	Inner Node
}

func (Factorial) irNode() {}

func (f Factorial) String() string { return operandString(f.Inner) + "!" }

// Root is "√x" (Index nil) or "n√x".
type Root struct {
	Index    Node
	Radicand Node
}

func (Root) irNode() {}

func (r Root) String() string {
	if r.Index == nil {
		return "√" + operandString(r.Radicand)
	}
	return operandString(r.Index) + "√" + operandString(r.Radicand)
}

// BracketKind selects the rounding bracket.
type BracketKind int

const (
	Floor BracketKind = iota + 1
	Ceil
	Abs
)

// Bracket is "⌊x⌋", "⌈x⌉" or "|x|".
type Bracket struct {
	Kind  BracketKind
	Inner Node
}

func (Bracket) irNode() {}

func (b Bracket) String() string {
	switch b.Kind {
	case Floor:
		return "⌊" + b.Inner.String() + "⌋"
	case Ceil:
		return "⌈" + b.Inner.String() + "⌉"
	default:
		return "|" + b.Inner.String() + "|"
	}
}

// Equation is "left=right".
type Equation struct {
	Left  Node
	Right Node
}

func (Equation) irNode() {}

func (e Equation) String() string { return e.Left.String() + "=" + e.Right.String() }

// leadingString renders the first operand of an operator sequence. Literals
// stay bare unless signed: "-8^0.5" would read as a negated power.
func leadingString(n Node) string {
	switch n.(type) {
	case Num, Mono:
		if s := n.String(); !strings.HasPrefix(s, "-") {
			return s
		}
	}
	return operandString(n)
}

// operandString parenthesizes compound nodes so rendering stays unambiguous.
func operandString(n Node) string {
	switch n.(type) {
	case Binary, Chain, Equation, Neg:
		return "(" + n.String() + ")"
	case Mono:
		if strings.HasPrefix(n.String(), "-") {
			return "(" + n.String() + ")"
		}
	case Num, Poly:
		s := n.String()
		if strings.HasPrefix(s, "-") {
			return "(" + s + ")"
		}
		if p, ok := n.(Poly); ok && p.Expr.Len() > 1 {
			return "(" + s + ")"
		}
	}
	return n.String()
}
