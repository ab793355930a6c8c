package engine

import "fmt"

// IterationBudget counts rewrite-loop iterations for one Run and enforces
// the MaxIterations cap.
//
// CRITICAL DISTINCTION from the StallDetector:
//   - IterationBudget: catches rewrites that keep changing the queue forever
//   - StallDetector: catches a queue that stopped changing
//
// Together they guarantee termination.
type IterationBudget struct {
	maxIterations int // Maximum allowed iterations
	current       int // Iterations so far
}

// NewIterationBudget creates a budget with the given limit.
//
// Typical default: 1000 (configurable via engine.WithMaxIterations())
func NewIterationBudget(maxIterations int) *IterationBudget {
	return &IterationBudget{maxIterations: maxIterations}
}

// Check increments the iteration counter and validates against the limit.
//
// Returns IterationsExceededError once the count passes the limit.
func (b *IterationBudget) Check(engineID string) error {
	b.current++
	if b.current > b.maxIterations {
		return &IterationsExceededError{
			EngineID:   engineID,
			Iterations: b.current,
			Limit:      b.maxIterations,
		}
	}
	return nil
}

// Current returns the current iteration count.
func (b *IterationBudget) Current() int {
	return b.current
}

// IterationsExceededError is returned when an engine exceeds MaxIterations.
//
// This is a fatal abort (NON_CONVERGENT): the whole evaluation stops.
type IterationsExceededError struct {
	EngineID   string // The engine that exceeded the budget
	Iterations int    // Iterations attempted
	Limit      int    // Maximum allowed iterations
}

// Error implements the error interface.
func (e *IterationsExceededError) Error() string {
	return fmt.Sprintf("%s: engine %s exceeded max iterations: %d iterations > %d limit",
		ErrCodeNonConvergent, e.EngineID, e.Iterations, e.Limit)
}
