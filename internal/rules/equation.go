package rules

import (
	"context"
	"math"
	"sort"

	"github.com/roach88/streamcalc/internal/algebra"
	"github.com/roach88/streamcalc/internal/engine"
	"github.com/roach88/streamcalc/internal/ir"
)

// quadratic holds ax^2+bx+c in a single variable.
type quadratic struct {
	name    string
	a, b, c float64
}

// asQuadratic extracts the coefficients of expr when it is a polynomial of
// degree exactly two in a single variable.
func asQuadratic(expr algebra.Expression) (quadratic, bool) {
	vars := expr.Variables()
	if len(vars) != 1 {
		return quadratic{}, false
	}
	name := vars[0]
	if expr.Degree(name) != 2 {
		return quadratic{}, false
	}
	for _, t := range expr.Terms() {
		if len(t.Variables()) > 1 {
			return quadratic{}, false
		}
	}
	return quadratic{
		name: name,
		a:    expr.Coefficient(name, 2),
		b:    expr.Coefficient(name, 1),
		c:    expr.Coefficient(name, 0),
	}, true
}

// equationSides converts both sides of an equation and moves everything to
// the left: left - right = 0.
func equationSides(n ir.Node) (algebra.Expression, bool) {
	eq, ok := n.(ir.Equation)
	if !ok {
		return algebra.Expression{}, false
	}
	left, ok := ir.Polynomial(eq.Left)
	if !ok {
		return algebra.Expression{}, false
	}
	right, ok := ir.Polynomial(eq.Right)
	if !ok {
		return algebra.Expression{}, false
	}
	return left.Sub(right).Combine(), true
}

// quadraticRule solves ax^2+bx+c=0.
type quadraticRule struct{}

func (quadraticRule) ID() string { return IDQuadratic }

func (quadraticRule) Matches(item *engine.Item) bool {
	expr, ok := equationSides(item.Node)
	if !ok {
		return false
	}
	_, ok = asQuadratic(expr)
	return ok
}

func (quadraticRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	expr, _ := equationSides(item.Node)
	q, _ := asQuadratic(expr)
	e.Emit(solveQuadratic(q))
	return engine.Consumed, nil
}

// solveQuadratic returns the ascending real roots, the no-solution sentinel
// for a negative discriminant, or the linear solution when a is zero.
func solveQuadratic(q quadratic) ir.Node {
	if q.a == 0 {
		if q.b == 0 {
			return ir.NoSolution{}
		}
		return ir.Solution{Var: q.name, Values: []float64{-q.c / q.b}}
	}
	disc := q.b*q.b - 4*q.a*q.c
	switch {
	case disc < 0:
		return ir.NoSolution{}
	case disc == 0:
		return ir.Solution{Var: q.name, Values: []float64{-q.b / (2 * q.a)}}
	}
	sq := math.Sqrt(disc)
	roots := []float64{(-q.b - sq) / (2 * q.a), (-q.b + sq) / (2 * q.a)}
	sort.Float64s(roots)
	return ir.Solution{Var: q.name, Values: roots}
}

// linearRule solves an equation with exactly one variable term of degree one:
// x = -constant/coefficient.
type linearRule struct{}

func (linearRule) ID() string { return IDLinear }

func (linearRule) Matches(item *engine.Item) bool {
	expr, ok := equationSides(item.Node)
	return ok && len(expr.Variables()) > 0
}

func (linearRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	expr, _ := equationSides(item.Node)
	var (
		term  algebra.Term
		found int
		sum   float64
	)
	for _, t := range expr.Terms() {
		if t.IsConstant() {
			sum += t.Coefficient
			continue
		}
		term = t
		found++
	}
	if found != 1 {
		return engine.Rejected, nil
	}
	vars := term.Variables()
	if len(vars) != 1 || vars[0].Exponent != 1 || term.Coefficient == 0 {
		return engine.Rejected, nil
	}
	x := -sum / term.Coefficient
	if x == 0 {
		x = 0 // drop the sign of -0
	}
	e.Emit(ir.Solution{Var: vars[0].Name, Values: []float64{x}})
	return engine.Consumed, nil
}

// factorRule factors monic quadratics x^2+bx+c into (x+p)(x+q).
//
// The explicit form factor(...) passes an unfactorable body on as its
// combined algebraic value. The bare form (factoring profile) only takes
// sums and declines whatever it cannot factor.
type factorRule struct {
	bare bool
}

func (r factorRule) ID() string {
	if r.bare {
		return IDFactorForm
	}
	return IDFactor
}

func (r factorRule) Matches(item *engine.Item) bool {
	if !r.bare {
		f, ok := item.Node.(ir.Factor)
		if !ok {
			return false
		}
		_, ok = ir.Polynomial(f.Body)
		return ok
	}
	b, ok := item.Node.(ir.Binary)
	if !ok || (b.Op != ir.OpAdd && b.Op != ir.OpSub) {
		return false
	}
	expr, ok := ir.Polynomial(b)
	if !ok {
		return false
	}
	_, ok = asQuadratic(expr)
	return ok
}

func (r factorRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	body := item.Node
	if f, ok := body.(ir.Factor); ok {
		body = f.Body
	}
	expr, _ := ir.Polynomial(body)
	if q, ok := asQuadratic(expr); ok && q.a == 1 {
		if p, qq, found := findFactorPair(q.c, q.b); found {
			e.Emit(ir.Factored{Var: q.name, P: p, Q: qq})
			return engine.Consumed, nil
		}
	}
	if r.bare {
		return engine.Rejected, nil
	}
	e.Emit(value(expr))
	return engine.Consumed, nil
}

// findFactorPair searches integers p, q with p*q = product and p+q = sum.
// Candidates come from divisors i of |product| up to ceil(sqrt|product|)+1:
// (i, j) and (-i, -j) for a positive product, (i, -j) and (-i, j) for a
// negative one. A zero product gives (0, sum) with 0 first; any other pair
// is returned in ascending order.
func findFactorPair(product, sum float64) (float64, float64, bool) {
	const eps = 1e-4
	if math.Abs(product) < eps {
		return 0, sum, true
	}
	abs := math.Abs(product)
	if math.Abs(abs-math.Round(abs)) >= eps {
		return 0, 0, false
	}
	n := int64(math.Round(abs))
	limit := int64(math.Ceil(math.Sqrt(abs))) + 1
	for i := int64(1); i <= limit; i++ {
		if n%i != 0 {
			continue
		}
		fi, fj := float64(i), float64(n/i)
		candidates := [][2]float64{{fi, -fj}, {-fi, fj}}
		if product > 0 {
			candidates = [][2]float64{{fi, fj}, {-fi, -fj}}
		}
		for _, c := range candidates {
			if math.Abs(c[0]+c[1]-sum) < eps {
				return ordered(c[0], c[1])
			}
		}
	}
	return 0, 0, false
}

func ordered(p, q float64) (float64, float64, bool) {
	if p > q {
		p, q = q, p
	}
	return p, q, true
}
