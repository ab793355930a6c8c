package rules

import (
	"context"

	"github.com/roach88/streamcalc/internal/engine"
	"github.com/roach88/streamcalc/internal/ir"
)

// derivativeRule differentiates an algebraic body term-wise with the power
// rule. Terms without the variable vanish; other variables are left alone.
type derivativeRule struct{}

func (derivativeRule) ID() string { return IDDerivative }

func (derivativeRule) Matches(item *engine.Item) bool {
	d, ok := item.Node.(ir.Derivative)
	if !ok {
		return false
	}
	_, ok = ir.Polynomial(d.Body)
	return ok
}

func (derivativeRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	d := item.Node.(ir.Derivative)
	expr, _ := ir.Polynomial(d.Body)
	e.Emit(value(expr.Derivative(d.Var)))
	return engine.Consumed, nil
}

// productRule differentiates (f)(g) as f'g + fg'. Each derivative and each
// product runs in its own helper engine.
type productRule struct {
	catalog *Catalog
}

func (productRule) ID() string { return IDProductRule }

func (productRule) Matches(item *engine.Item) bool {
	d, ok := item.Node.(ir.Derivative)
	if !ok {
		return false
	}
	b, ok := d.Body.(ir.Binary)
	if !ok || b.Op != ir.OpMul {
		return false
	}
	_, l := b.Left.(ir.Group)
	_, r := b.Right.(ir.Group)
	return l && r
}

func (r productRule) Apply(ctx context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	d := item.Node.(ir.Derivative)
	b := d.Body.(ir.Binary)
	f, g := b.Left.(ir.Group), b.Right.(ir.Group)

	df, err := r.catalog.evaluate(ctx, e, ProfileCalculus, ir.Derivative{Var: d.Var, Body: f.Inner})
	if err != nil {
		return engine.Rejected, err
	}
	dg, err := r.catalog.evaluate(ctx, e, ProfileCalculus, ir.Derivative{Var: d.Var, Body: g.Inner})
	if err != nil {
		return engine.Rejected, err
	}
	for _, n := range []ir.Node{df, dg} {
		if ir.IsError(n) {
			e.Emit(n)
			return engine.Consumed, nil
		}
	}

	left, err := r.catalog.evaluate(ctx, e, ProfileAlgebra, ir.Binary{Op: ir.OpMul, Left: ir.Group{Inner: df}, Right: g})
	if err != nil {
		return engine.Rejected, err
	}
	right, err := r.catalog.evaluate(ctx, e, ProfileAlgebra, ir.Binary{Op: ir.OpMul, Left: f, Right: ir.Group{Inner: dg}})
	if err != nil {
		return engine.Rejected, err
	}
	for _, n := range []ir.Node{left, right} {
		if ir.IsError(n) {
			e.Emit(n)
			return engine.Consumed, nil
		}
	}
	e.Emit(ir.Binary{Op: ir.OpAdd, Left: left, Right: right})
	return engine.Consumed, nil
}

// integralRule integrates an algebraic body term-wise with the power rule.
type integralRule struct{}

func (integralRule) ID() string { return IDIntegral }

func (integralRule) Matches(item *engine.Item) bool {
	in, ok := item.Node.(ir.Integral)
	if !ok || in.Definite() {
		return false
	}
	_, ok = ir.Polynomial(in.Body)
	return ok
}

func (integralRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	in := item.Node.(ir.Integral)
	expr, _ := ir.Polynomial(in.Body)
	e.Emit(ir.Antiderivative{Expr: expr.Antiderivative(in.Var)})
	return engine.Consumed, nil
}

// definiteIntegralRule computes F(upper) - F(lower). F comes from an
// integral helper engine, each bound is evaluated by a substitution helper
// engine bound to that value, and the difference by a third helper.
type definiteIntegralRule struct {
	catalog *Catalog
}

func (definiteIntegralRule) ID() string { return IDDefiniteIntegral }

func (definiteIntegralRule) Matches(item *engine.Item) bool {
	in, ok := item.Node.(ir.Integral)
	if !ok || !in.Definite() {
		return false
	}
	_, ok = ir.Polynomial(in.Body)
	return ok
}

func (r definiteIntegralRule) Apply(ctx context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	in := item.Node.(ir.Integral)

	anti, err := r.catalog.evaluate(ctx, e, ProfileCalculus, ir.Integral{Var: in.Var, Body: in.Body})
	if err != nil {
		return engine.Rejected, err
	}
	f, ok := anti.(ir.Antiderivative)
	if !ok {
		e.Emit(errorOr(anti, item.Node))
		return engine.Consumed, nil
	}

	var at [2]ir.Node
	for i, bound := range []ir.Node{in.Lower, in.Upper} {
		b, err := r.bound(ctx, e, bound)
		if err != nil {
			return engine.Rejected, err
		}
		if _, ok := b.(ir.Num); !ok {
			e.Emit(errorOr(b, item.Node))
			return engine.Consumed, nil
		}
		v, err := r.catalog.evaluate(ctx, e, ProfileAlgebra, value(f.Expr),
			engine.WithVariables(map[string]float64{in.Var: b.(ir.Num).Value}))
		if err != nil {
			return engine.Rejected, err
		}
		if ir.IsError(v) {
			e.Emit(v)
			return engine.Consumed, nil
		}
		at[i] = v
	}

	diff, err := r.catalog.evaluate(ctx, e, ProfileAlgebra, ir.Binary{Op: ir.OpSub, Left: at[1], Right: at[0]})
	if err != nil {
		return engine.Rejected, err
	}
	e.Emit(diff)
	return engine.Consumed, nil
}

// bound evaluates an integration bound to a number.
func (r definiteIntegralRule) bound(ctx context.Context, e *engine.Engine, n ir.Node) (ir.Node, error) {
	if _, ok := n.(ir.Num); ok {
		return n, nil
	}
	return r.catalog.evaluate(ctx, e, ProfileAlgebra, n)
}

// errorOr passes an error value through and reports anything else as an
// unrecognized form of original.
func errorOr(n, original ir.Node) ir.Node {
	if ir.IsError(n) {
		return n
	}
	return unrecognized(original)
}

// criticalPointsRule finds the points where f' vanishes: a derivative helper
// engine, an equation helper engine for f'=0, then one substitution helper
// engine per root to evaluate f there.
type criticalPointsRule struct {
	catalog *Catalog
}

func (criticalPointsRule) ID() string { return IDCriticalPoints }

func (criticalPointsRule) Matches(item *engine.Item) bool {
	o, ok := item.Node.(ir.Optimize)
	if !ok {
		return false
	}
	_, ok = ir.Polynomial(o.Body)
	return ok
}

func (r criticalPointsRule) Apply(ctx context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	o := item.Node.(ir.Optimize)
	body, _ := ir.Polynomial(o.Body)

	deriv, err := r.catalog.evaluate(ctx, e, ProfileCalculus, ir.Derivative{Var: o.Var, Body: o.Body})
	if err != nil {
		return engine.Rejected, err
	}
	switch deriv.(type) {
	case ir.ErrorValue:
		e.Emit(deriv)
		return engine.Consumed, nil
	case ir.Num:
		e.Emit(ir.NoCritical{})
		return engine.Consumed, nil
	}

	solved, err := r.catalog.evaluate(ctx, e, ProfileEquation, ir.Equation{Left: deriv, Right: ir.Num{Value: 0}})
	if err != nil {
		return engine.Rejected, err
	}
	sol, ok := solved.(ir.Solution)
	if !ok || sol.Var != o.Var {
		e.Emit(ir.NoCritical{})
		return engine.Consumed, nil
	}

	points := make([]ir.CriticalPoint, 0, len(sol.Values))
	for _, at := range sol.Values {
		v, err := r.catalog.evaluate(ctx, e, ProfileAlgebra, value(body),
			engine.WithVariables(map[string]float64{o.Var: at}))
		if err != nil {
			return engine.Rejected, err
		}
		n, ok := v.(ir.Num)
		if !ok {
			e.Emit(errorOr(v, item.Node))
			return engine.Consumed, nil
		}
		points = append(points, ir.CriticalPoint{At: at, Value: n.Value})
	}
	e.Emit(ir.CriticalPoints{Var: o.Var, Points: points})
	return engine.Consumed, nil
}
