package rules

import (
	"context"

	"github.com/roach88/streamcalc/internal/engine"
	"github.com/roach88/streamcalc/internal/ir"
)

// precedenceRule brackets operator chains until a single top-level operator
// remains: highest precedence first, leftmost for left-associative operators
// and rightmost for "^". One application makes at most limit passes; a
// longer chain is emitted partly bracketed and picked up again on the next
// iteration.
type precedenceRule struct {
	limit int
}

func (precedenceRule) ID() string { return IDPrecedence }

func (precedenceRule) Matches(item *engine.Item) bool {
	_, ok := item.Node.(ir.Chain)
	return ok
}

func (r precedenceRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	e.Emit(ir.Normalize(item.Node.(ir.Chain), r.limit))
	return engine.Consumed, nil
}

// parenRule unwraps an item that is a parenthesized group as a whole.
type parenRule struct{}

func (parenRule) ID() string { return IDParen }

func (parenRule) Matches(item *engine.Item) bool {
	_, ok := item.Node.(ir.Group)
	return ok
}

func (parenRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	e.Emit(item.Node.(ir.Group).Inner)
	return engine.Consumed, nil
}

// negationRule applies a unary minus: directly to numbers and algebraic
// values, as a multiplication by -1 otherwise.
type negationRule struct{}

func (negationRule) ID() string { return IDNegation }

func (negationRule) Matches(item *engine.Item) bool {
	_, ok := item.Node.(ir.Neg)
	return ok
}

func (negationRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	inner := item.Node.(ir.Neg).Inner
	switch v := inner.(type) {
	case ir.Num:
		e.Emit(ir.Num{Value: -v.Value})
	case ir.Mono:
		e.Emit(ir.Mono{Term: v.Term.Scale(-1)})
	case ir.Poly:
		e.Emit(ir.Poly{Expr: v.Expr.Negate()})
	default:
		e.Emit(ir.Binary{Op: ir.OpMul, Left: ir.Num{Value: -1}, Right: inner})
	}
	return engine.Consumed, nil
}
