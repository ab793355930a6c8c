package engine

import (
	"context"
)

// Outcome is the result of offering an item to a rule.
type Outcome int

const (
	// Rejected means the rule declined; the item is marked rejected by it.
	Rejected Outcome = iota
	// Consumed means the rule took the item and pushed zero or more new items.
	Consumed
)

// String returns "consumed" or "rejected".
func (o Outcome) String() string {
	if o == Consumed {
		return "consumed"
	}
	return "rejected"
}

// Rule is a named match+transform unit, the engine's only extension point.
//
// Apply is called only when Matches returned true. A rule may still decline
// from Apply by returning Rejected. A non-nil error is a fatal abort.
//
// Rules communicate only through the items they emit; a rule never inspects
// another rule.
type Rule interface {
	ID() string
	Matches(item *Item) bool
	Apply(ctx context.Context, item *Item, e *Engine) (Outcome, error)
}

// Resumer is a rule that suspends on a child engine and continues when the
// child returns its result through Engine.ReturnToParent.
type Resumer interface {
	Rule
	Resume(ctx context.Context, e *Engine, result *Item) error
}

// CatchAll marks the rule the engine invokes explicitly for a non-terminal
// item that every rule rejected.
type CatchAll interface {
	Rule
	CatchAll() bool
}
