package rules

import (
	"context"
	"fmt"

	"github.com/roach88/streamcalc/internal/algebra"
	"github.com/roach88/streamcalc/internal/engine"
	"github.com/roach88/streamcalc/internal/ir"
)

// value turns an algebraic result into a Num when it has no variables and a
// Poly otherwise.
func value(expr algebra.Expression) ir.Node {
	expr = expr.Combine()
	if c, ok := expr.Constant(); ok {
		return ir.Num{Value: c}
	}
	return ir.Poly{Expr: expr}
}

// unrecognized is the catch-all error text for n.
func unrecognized(n ir.Node) ir.ErrorValue {
	return ir.ErrorValue{Message: "Error: Unrecognized expression '" + n.String() + "'"}
}

// evaluate runs n through a synchronous helper engine built from profile p.
// The helper inherits e's caps and tracing; bindings travel only through
// opts.
func (c *Catalog) evaluate(ctx context.Context, e *engine.Engine, p Profile, n ir.Node, opts ...engine.Option) (ir.Node, error) {
	rules, err := c.Build(p)
	if err != nil {
		return nil, err
	}
	helper, err := e.Spawn(rules, opts...)
	if err != nil {
		return nil, err
	}
	out, err := helper.Evaluate(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("helper engine for %s: %w", n.String(), err)
	}
	return out, nil
}

// resolveInChild seeds a child engine linked to (e, ruleID) with sub and runs
// it to completion. The child's result rule resumes ruleID on e.
func (c *Catalog) resolveInChild(ctx context.Context, e *engine.Engine, ruleID string, p Profile, sub ir.Node) error {
	rules, err := c.Build(p)
	if err != nil {
		return err
	}
	child, err := e.SpawnChild(ruleID, rules)
	if err != nil {
		return err
	}
	child.Emit(sub)
	return child.Run(ctx)
}

// isScalar reports whether n is a value an arithmetic or algebraic rule can
// take as an operand.
func isScalar(n ir.Node) bool {
	return ir.IsResolved(n)
}
