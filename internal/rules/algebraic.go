package rules

import (
	"context"

	"github.com/roach88/streamcalc/internal/engine"
	"github.com/roach88/streamcalc/internal/ir"
)

// termParseRule lifts a term literal ("3x^2") into an algebraic value.
type termParseRule struct{}

func (termParseRule) ID() string { return IDTermParse }

func (termParseRule) Matches(item *engine.Item) bool {
	_, ok := item.Node.(ir.Mono)
	return ok
}

func (termParseRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	expr, _ := ir.Polynomial(item.Node)
	e.Emit(value(expr))
	return engine.Consumed, nil
}

// substitutionRule replaces variables that have a binding in the engine's
// environment.
type substitutionRule struct{}

func (substitutionRule) ID() string { return IDSubstitution }

// Matches only looks at the payload; bindings are checked in Apply because
// Matches has no engine access.
func (substitutionRule) Matches(item *engine.Item) bool {
	_, ok := item.Node.(ir.Poly)
	return ok
}

func (substitutionRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	p := item.Node.(ir.Poly)
	bound := make(map[string]float64)
	for _, name := range p.Expr.Variables() {
		if v, ok := e.Variable(name); ok {
			bound[name] = v
		}
	}
	if len(bound) == 0 {
		return engine.Rejected, nil
	}
	e.Emit(value(p.Expr.Substitute(bound)))
	return engine.Consumed, nil
}

// algebraicAddRule combines like terms: a sum or difference over algebraic
// operands, or an algebraic value that still has like terms.
type algebraicAddRule struct{}

func (algebraicAddRule) ID() string { return IDAlgebraicAdd }

func (algebraicAddRule) Matches(item *engine.Item) bool {
	switch v := item.Node.(type) {
	case ir.Poly:
		return v.Expr.HasLikeTerms()
	case ir.Binary:
		if v.Op != ir.OpAdd && v.Op != ir.OpSub {
			return false
		}
		return algebraic(v)
	}
	return false
}

func (algebraicAddRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	expr, ok := ir.Polynomial(item.Node)
	if !ok {
		return engine.Rejected, nil
	}
	e.Emit(value(expr))
	return engine.Consumed, nil
}

// distributionRule multiplies a single term into a sum, a(b+c), or divides a
// sum by a constant, (b+c)/a.
type distributionRule struct{}

func (distributionRule) ID() string { return IDDistribution }

func (distributionRule) Matches(item *engine.Item) bool {
	b, ok := item.Node.(ir.Binary)
	if !ok || !algebraic(b) {
		return false
	}
	switch b.Op {
	case ir.OpMul:
		left, _ := ir.Polynomial(b.Left)
		right, _ := ir.Polynomial(b.Right)
		return left.Len() <= 1 || right.Len() <= 1
	case ir.OpDiv:
		return true
	}
	return false
}

func (distributionRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	expr, _ := ir.Polynomial(item.Node)
	e.Emit(value(expr))
	return engine.Consumed, nil
}

// foilRule expands a product of two sums, (a+b)(c+d), and small non-negative
// integer powers of algebraic values, (x+1)^2.
type foilRule struct{}

func (foilRule) ID() string { return IDFOIL }

func (foilRule) Matches(item *engine.Item) bool {
	b, ok := item.Node.(ir.Binary)
	if !ok || !algebraic(b) {
		return false
	}
	switch b.Op {
	case ir.OpMul:
		left, _ := ir.Polynomial(b.Left)
		right, _ := ir.Polynomial(b.Right)
		return left.Len() > 1 && right.Len() > 1
	case ir.OpPow:
		return true
	}
	return false
}

func (foilRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	expr, _ := ir.Polynomial(item.Node)
	e.Emit(value(expr))
	return engine.Consumed, nil
}

// algebraic reports whether b carries a variable and converts to an
// algebraic value as a whole.
func algebraic(b ir.Binary) bool {
	if !ir.HasVariable(b) {
		return false
	}
	_, ok := ir.Polynomial(b)
	return ok
}
