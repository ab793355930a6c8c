package rules

import (
	"context"
	"math"

	"github.com/roach88/streamcalc/internal/engine"
	"github.com/roach88/streamcalc/internal/ir"
)

// partialRule resolves one composite operand of a binary operation (or the
// operand of a factorial) in a child engine, then rebuilds the operation
// around the child's result.
//
// The left operand is resolved first. While the child runs, the operator,
// the other operand and the pending side are held in the rule's continuation.
type partialRule struct {
	catalog *Catalog
	profile Profile
	cont    engine.Continuation[partialState]
}

type partialState struct {
	original  ir.Node
	op        ir.Op
	implicit  bool
	other     ir.Node
	left      bool
	factorial bool
}

func (s partialState) rebuild(resolved ir.Node) ir.Node {
	if s.factorial {
		return ir.Factorial{Inner: resolved}
	}
	if s.left {
		return ir.Binary{Op: s.op, Left: resolved, Right: s.other, Implicit: s.implicit}
	}
	return ir.Binary{Op: s.op, Left: s.other, Right: resolved, Implicit: s.implicit}
}

func (*partialRule) ID() string { return IDPartial }

func (*partialRule) Matches(item *engine.Item) bool {
	switch v := item.Node.(type) {
	case ir.Binary:
		return !isScalar(v.Left) || !isScalar(v.Right)
	case ir.Factorial:
		return !isScalar(v.Inner)
	}
	return false
}

func (r *partialRule) Apply(ctx context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	var (
		st  partialState
		sub ir.Node
	)
	switch v := item.Node.(type) {
	case ir.Binary:
		st = partialState{original: v, op: v.Op, implicit: v.Implicit}
		if !isScalar(v.Left) {
			st.left, st.other, sub = true, v.Right, v.Left
		} else {
			st.other, sub = v.Left, v.Right
		}
	case ir.Factorial:
		st = partialState{original: v, factorial: true}
		sub = v.Inner
	}
	if ir.IsError(sub) {
		e.Emit(sub)
		return engine.Consumed, nil
	}

	if err := r.cont.Suspend(r.ID(), st); err != nil {
		return engine.Rejected, err
	}
	if err := r.catalog.resolveInChild(ctx, e, r.ID(), r.profile, sub); err != nil {
		r.cont.Clear()
		return engine.Rejected, err
	}
	if r.cont.Pending() {
		r.cont.Clear()
		e.Emit(unrecognized(st.original))
	}
	return engine.Consumed, nil
}

func (r *partialRule) Resume(_ context.Context, e *engine.Engine, result *engine.Item) error {
	st, err := r.cont.Take(r.ID())
	if err != nil {
		return err
	}
	switch {
	case ir.IsError(result.Node):
		e.Emit(result.Node)
	case isScalar(result.Node):
		e.Emit(st.rebuild(result.Node))
	default:
		e.Emit(unrecognized(st.rebuild(result.Node)))
	}
	return nil
}

// bracketRule applies floor, ceiling or absolute value. A number inside is
// reduced directly; anything else is resolved in a child engine first.
type bracketRule struct {
	id      string
	kind    ir.BracketKind
	fn      func(float64) float64
	catalog *Catalog
	profile Profile
	cont    engine.Continuation[ir.BracketKind]
}

func newBracketRule(c *Catalog, p Profile, id string) *bracketRule {
	r := &bracketRule{id: id, catalog: c, profile: p}
	switch id {
	case IDFloor:
		r.kind, r.fn = ir.Floor, math.Floor
	case IDCeil:
		r.kind, r.fn = ir.Ceil, math.Ceil
	default:
		r.kind, r.fn = ir.Abs, math.Abs
	}
	return r
}

func (r *bracketRule) ID() string { return r.id }

func (r *bracketRule) Matches(item *engine.Item) bool {
	b, ok := item.Node.(ir.Bracket)
	if !ok || b.Kind != r.kind {
		return false
	}
	switch b.Inner.(type) {
	case ir.Mono, ir.Poly:
		return false
	}
	return true
}

func (r *bracketRule) Apply(ctx context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	b := item.Node.(ir.Bracket)
	if n, ok := b.Inner.(ir.Num); ok {
		e.Emit(ir.Num{Value: r.fn(n.Value)})
		return engine.Consumed, nil
	}

	if err := r.cont.Suspend(r.id, r.kind); err != nil {
		return engine.Rejected, err
	}
	if err := r.catalog.resolveInChild(ctx, e, r.id, r.profile, b.Inner); err != nil {
		r.cont.Clear()
		return engine.Rejected, err
	}
	if r.cont.Pending() {
		r.cont.Clear()
		e.Emit(unrecognized(b))
	}
	return engine.Consumed, nil
}

func (r *bracketRule) Resume(_ context.Context, e *engine.Engine, result *engine.Item) error {
	kind, err := r.cont.Take(r.id)
	if err != nil {
		return err
	}
	switch v := result.Node.(type) {
	case ir.ErrorValue:
		e.Emit(v)
	case ir.Num:
		e.Emit(ir.Num{Value: r.fn(v.Value)})
	default:
		e.Emit(unrecognized(ir.Bracket{Kind: kind, Inner: v}))
	}
	return nil
}
