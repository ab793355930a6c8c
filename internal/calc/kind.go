package calc

import "github.com/roach88/streamcalc/internal/ir"

// Kind classifies a result value.
type Kind string

const (
	KindNumber         Kind = "number"
	KindExpression     Kind = "expression"
	KindSolution       Kind = "solution"
	KindNoSolution     Kind = "no-solution"
	KindFactored       Kind = "factored"
	KindAntiderivative Kind = "antiderivative"
	KindCritical       Kind = "critical-points"
	KindNoCritical     Kind = "no-critical-points"
	KindError          Kind = "error"
	KindUnresolved     Kind = "unresolved"
)

// KindOf returns the kind of n. Anything that is not a finished value is
// KindUnresolved.
func KindOf(n ir.Node) Kind {
	switch n.(type) {
	case ir.Num:
		return KindNumber
	case ir.Mono, ir.Poly:
		return KindExpression
	case ir.Solution:
		return KindSolution
	case ir.NoSolution:
		return KindNoSolution
	case ir.Factored:
		return KindFactored
	case ir.Antiderivative:
		return KindAntiderivative
	case ir.CriticalPoints:
		return KindCritical
	case ir.NoCritical:
		return KindNoCritical
	case ir.ErrorValue:
		return KindError
	}
	return KindUnresolved
}
