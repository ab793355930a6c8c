package engine

// Continuation holds the single pending resumption of a suspending rule.
//
// INVARIANT: at most one continuation is outstanding per rule instance.
// Suspend fails while one is pending and Take fails when none is, so a
// protocol error surfaces as a fatal RuntimeError instead of silently
// overwriting suspended state.
type Continuation[T any] struct {
	state *T
}

// Suspend stores state. ruleID is reported in the error.
func (c *Continuation[T]) Suspend(ruleID string, state T) error {
	if c.state != nil {
		return NewContinuationPendingError(ruleID)
	}
	c.state = &state
	return nil
}

// Take returns and clears the pending state.
func (c *Continuation[T]) Take(ruleID string) (T, error) {
	if c.state == nil {
		var zero T
		return zero, NewNoContinuationError(ruleID)
	}
	s := *c.state
	c.state = nil
	return s, nil
}

// Pending reports whether a continuation is outstanding.
func (c *Continuation[T]) Pending() bool {
	return c.state != nil
}

// Clear drops any pending state.
func (c *Continuation[T]) Clear() {
	c.state = nil
}
