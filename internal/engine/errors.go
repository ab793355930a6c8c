package engine

import (
	"errors"
	"fmt"
)

// RuntimeError is a fatal abort detected during evaluation.
//
// Runtime errors include:
//   - Non-convergence: the iteration or stall cap was exceeded
//   - Undefined arithmetic: division/modulo by zero, 0^negative, NaN or
//     infinite results, factorial outside 0..20
//   - Protocol violations: a second suspension on the same rule, a resume
//     with nothing pending, or a resume addressed to an unknown rule
//   - Registration errors: duplicate rule ids or a violated rule ordering
//
// A fatal abort discards all in-flight state; callers see no partial result.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// EngineID identifies the engine that failed.
	EngineID string

	// RuleID identifies the rule involved, if any.
	RuleID string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeNonConvergent indicates the iteration cap was exceeded.
	ErrCodeNonConvergent RuntimeErrorCode = "NON_CONVERGENT"

	// ErrCodeStalled indicates the queue stopped changing for too long.
	ErrCodeStalled RuntimeErrorCode = "STALLED"

	// ErrCodeDivisionByZero indicates x/0.
	ErrCodeDivisionByZero RuntimeErrorCode = "DIVISION_BY_ZERO"

	// ErrCodeModuloByZero indicates x%0.
	ErrCodeModuloByZero RuntimeErrorCode = "MODULO_BY_ZERO"

	// ErrCodeFactorialDomain indicates a factorial of a negative, fractional
	// or too large operand.
	ErrCodeFactorialDomain RuntimeErrorCode = "FACTORIAL_DOMAIN"

	// ErrCodeZeroNegativePower indicates 0 raised to a negative power.
	ErrCodeZeroNegativePower RuntimeErrorCode = "ZERO_NEGATIVE_POWER"

	// ErrCodeNonFinite indicates a NaN or infinite result.
	ErrCodeNonFinite RuntimeErrorCode = "NON_FINITE"

	// ErrCodeContinuationPending indicates a rule tried to suspend while a
	// previous suspension was still pending.
	ErrCodeContinuationPending RuntimeErrorCode = "CONTINUATION_PENDING"

	// ErrCodeNoContinuation indicates a resume with nothing pending.
	ErrCodeNoContinuation RuntimeErrorCode = "NO_CONTINUATION"

	// ErrCodeUnknownRule indicates a resume addressed to a rule id that is
	// not registered or cannot resume.
	ErrCodeUnknownRule RuntimeErrorCode = "UNKNOWN_RULE"

	// ErrCodeDuplicateRule indicates two rules share an id.
	ErrCodeDuplicateRule RuntimeErrorCode = "DUPLICATE_RULE"

	// ErrCodeOrderViolation indicates the rule list breaks a declared
	// ordering constraint, or the constraints contradict each other.
	ErrCodeOrderViolation RuntimeErrorCode = "ORDER_VIOLATION"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.EngineID != "" && e.RuleID != "" {
		return fmt.Sprintf("%s: %s (engine=%s, rule=%s)", e.Code, e.Message, e.EngineID, e.RuleID)
	}
	if e.EngineID != "" {
		return fmt.Sprintf("%s: %s (engine=%s)", e.Code, e.Message, e.EngineID)
	}
	if e.RuleID != "" {
		return fmt.Sprintf("%s: %s (rule=%s)", e.Code, e.Message, e.RuleID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsFatal returns true if err is an engine abort of any kind.
// Uses errors.As to handle wrapped errors.
func IsFatal(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return true
	}
	var ie *IterationsExceededError
	return errors.As(err, &ie)
}

// IsNonConvergent returns true if err reports an exceeded iteration or
// stall cap. Matches both RuntimeError codes and IterationsExceededError.
func IsNonConvergent(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeNonConvergent || re.Code == ErrCodeStalled
	}
	var ie *IterationsExceededError
	return errors.As(err, &ie)
}

// IsMathError returns true if err reports an undefined arithmetic operation.
func IsMathError(err error) bool {
	var re *RuntimeError
	if !errors.As(err, &re) {
		return false
	}
	switch re.Code {
	case ErrCodeDivisionByZero, ErrCodeModuloByZero, ErrCodeFactorialDomain,
		ErrCodeZeroNegativePower, ErrCodeNonFinite:
		return true
	}
	return false
}

// ErrorCode returns the RuntimeErrorCode carried by err, or "" if none.
func ErrorCode(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	var ie *IterationsExceededError
	if errors.As(err, &ie) {
		return ErrCodeNonConvergent
	}
	return ""
}

// NewMathError creates a RuntimeError for an undefined arithmetic operation.
func NewMathError(code RuntimeErrorCode, ruleID, message string) *RuntimeError {
	return &RuntimeError{
		Code:    code,
		Message: message,
		RuleID:  ruleID,
	}
}

// NewStallError creates a RuntimeError for a stalled queue.
func NewStallError(engineID string, stalls, maxStall int) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeStalled,
		Message:  fmt.Sprintf("queue unchanged for %d iterations (max %d)", stalls, maxStall),
		EngineID: engineID,
		Details: map[string]string{
			"stalls":    fmt.Sprintf("%d", stalls),
			"max_stall": fmt.Sprintf("%d", maxStall),
		},
	}
}

// NewContinuationPendingError creates a RuntimeError for a second suspension.
func NewContinuationPendingError(ruleID string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeContinuationPending,
		Message: "rule already has a pending continuation",
		RuleID:  ruleID,
	}
}

// NewNoContinuationError creates a RuntimeError for a resume with nothing pending.
func NewNoContinuationError(ruleID string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeNoContinuation,
		Message: "resume without a pending continuation",
		RuleID:  ruleID,
	}
}

// NewUnknownRuleError creates a RuntimeError for a resume to a missing rule.
func NewUnknownRuleError(engineID, ruleID, reason string) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeUnknownRule,
		Message:  reason,
		EngineID: engineID,
		RuleID:   ruleID,
	}
}
