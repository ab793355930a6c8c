package ir

import (
	"strings"

	"github.com/roach88/streamcalc/internal/algebra"
)

// Solution is a solved equation: "x=2" or "x=2,3" (roots ascending).
type Solution struct {
	Var    string
	Values []float64
}

func (Solution) irNode() {}

func (s Solution) String() string {
	vals := make([]string, len(s.Values))
	for i, v := range s.Values {
		vals[i] = algebra.FormatNumber(v)
	}
	return s.Var + "=" + strings.Join(vals, ",")
}

// NoSolution is the sentinel for a quadratic with negative discriminant.
type NoSolution struct{}

func (NoSolution) irNode() {}

func (NoSolution) String() string { return "no real solutions" }

// Factored is the monic factorization (Var+P)(Var+Q).
type Factored struct {
	Var string
	P   float64
	Q   float64
}

func (Factored) irNode() {}

func (f Factored) String() string {
	return "(" + factorString(f.Var, f.P) + ")(" + factorString(f.Var, f.Q) + ")"
}

func factorString(v string, p float64) string {
	switch {
	case p == 0:
		return v
	case p > 0:
		return v + "+" + algebra.FormatNumber(p)
	default:
		return v + "-" + algebra.FormatNumber(-p)
	}
}

// Antiderivative is an indefinite integral tagged with its integration
// constant marker.
type Antiderivative struct {
	Expr algebra.Expression
}

func (Antiderivative) irNode() {}

func (a Antiderivative) String() string {
	if a.Expr.IsZero() {
		return "C"
	}
	return a.Expr.String() + " + C"
}

// CriticalPoint is a point where the derivative vanishes and the function
// value there.
type CriticalPoint struct {
	At    float64
	Value float64
}

// CriticalPoints lists critical points in ascending order of At.
type CriticalPoints struct {
	Var    string
	Points []CriticalPoint
}

func (CriticalPoints) irNode() {}

func (c CriticalPoints) String() string {
	parts := make([]string, len(c.Points))
	for i, p := range c.Points {
		parts[i] = c.Var + "=" + algebra.FormatNumber(p.At) + ", value=" + algebra.FormatNumber(p.Value)
	}
	return strings.Join(parts, "; ")
}

// NoCritical is the sentinel for a derivative without real zeros.
type NoCritical struct{}

func (NoCritical) irNode() {}

func (NoCritical) String() string { return "no critical points" }

// ErrorValue is the user-visible terminal error text ("Error: ...").
type ErrorValue struct {
	Message string
}

func (ErrorValue) irNode() {}

func (e ErrorValue) String() string { return e.Message }

// Raw is input text the parser could not turn into a tree.
type Raw struct {
	Text string
}

func (Raw) irNode() {}

func (r Raw) String() string { return r.Text }
