package rules

import (
	"context"
	"fmt"

	"github.com/roach88/streamcalc/internal/engine"
	"github.com/roach88/streamcalc/internal/ir"
)

// resultRule handles finished values. In a child engine it returns the value
// to the suspended parent rule; at the top level it re-emits the value so it
// stays as the final result.
type resultRule struct{}

func (resultRule) ID() string { return IDResult }

func (resultRule) Matches(item *engine.Item) bool {
	return ir.IsTerminal(item.Node)
}

func (resultRule) Apply(ctx context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	if e.HasParent() {
		if err := e.ReturnToParent(ctx, item); err != nil {
			return engine.Rejected, err
		}
		return engine.Consumed, nil
	}
	e.Emit(item.Node)
	return engine.Consumed, nil
}

// unrecognizedRule is the catch-all: an item every other rule rejected
// becomes an error value. Error values are never wrapped again.
type unrecognizedRule struct{}

func (unrecognizedRule) ID() string { return IDUnrecognized }

func (unrecognizedRule) CatchAll() bool { return true }

func (unrecognizedRule) Matches(item *engine.Item) bool {
	return item.IsRejectedByAll() && !ir.IsError(item.Node)
}

func (unrecognizedRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	errValue := unrecognized(item.Node)
	if e.TraceLevel() >= engine.TraceDebug {
		errValue.Message += fmt.Sprintf(" (Rejected by %d rules)", item.RejectionCount())
	}
	e.Emit(errValue)
	return engine.Consumed, nil
}
