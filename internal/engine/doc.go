// Package engine implements the rewrite engine: an ordered rule list, a FIFO
// item queue, a variable-binding environment, and the loop that applies
// rules until a single normal-form item remains.
//
// ARCHITECTURE:
//
// Rewrite Loop:
// Each iteration dequeues one item and offers it to every rule in declared
// order. The first rule that matches and consumes it wins; rules that decline
// are recorded in the item's rejection set. An item rejected by every rule is
// pushed back if it is terminal, and otherwise handed to the catch-all rule.
//
// Termination:
// Termination is not structural. Two safety valves bound every run:
//   - IterationBudget: at most MaxIterations iterations (NON_CONVERGENT)
//   - StallDetector: at most MaxStall consecutive iterations in which the
//     queue contents did not change (STALLED)
//
// Both are fatal and abort the whole evaluation.
//
// Composition:
// Rules compose engines instead of recursing natively:
//   - Spawn builds an independent helper engine that a rule drives in-line
//     and reads back (synchronous helper evaluation)
//   - SpawnChild builds a child linked to (this engine, rule id); when the
//     child converges its terminal rule calls ReturnToParent, which routes
//     the result to the suspended rule's Resume (asynchronous decomposition)
//
// CRITICAL PATTERNS:
//
// First Declared, First Matched:
// Rule order is a correctness input. Required orderings are declared as
// OrderConstraint data and checked when an engine is built.
//
// Single Outstanding Continuation:
// A suspending rule holds at most one pending resumption, guarded by
// Continuation. Suspending twice or resuming with nothing pending is fatal.
//
// Isolation:
// Every engine gets fresh rule instances and its own queue. Variable bindings
// are never inherited; the call site passes them with WithVariables.
package engine
