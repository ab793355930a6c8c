package ir

// Bindings reports whether a variable has a value in the substitution
// environment. A nil Bindings means no environment.
type Bindings func(name string) bool

// IsNormalForm reports whether n needs no further rewriting.
//
// Normal forms:
//   - a plain number
//   - an algebraic value with no like terms and, when bound is non-nil, no
//     variable that bound reports as substitutable
//   - a solved equation, the no-real-solutions sentinel, an antiderivative,
//     a factored form, critical points or the no-critical-points sentinel
//   - an error value
func IsNormalForm(n Node, bound Bindings) bool {
	switch v := n.(type) {
	case Poly:
		if v.Expr.HasLikeTerms() {
			return false
		}
		if bound == nil {
			return true
		}
		for _, name := range v.Expr.Variables() {
			if bound(name) {
				return false
			}
		}
		return true
	case Num, Solution, NoSolution, Antiderivative, Factored, CriticalPoints, NoCritical, ErrorValue:
		return true
	}
	return false
}

// IsTerminal reports whether n is a finished value: a number, an algebraic
// value, a result value or an error. Terminal items that every rule rejected
// stay in the queue instead of going to the catch-all rule.
func IsTerminal(n Node) bool {
	switch n.(type) {
	case Num, Poly, Solution, NoSolution, Antiderivative, Factored, CriticalPoints, NoCritical, ErrorValue:
		return true
	}
	return false
}

// IsError reports whether n is an error value.
func IsError(n Node) bool {
	_, ok := n.(ErrorValue)
	return ok
}

// IsResolved reports whether n is a leaf value that arithmetic or algebraic
// rules can consume directly.
func IsResolved(n Node) bool {
	switch n.(type) {
	case Num, Mono, Poly:
		return true
	}
	return false
}
