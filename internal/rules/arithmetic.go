package rules

import (
	"context"
	"fmt"
	"math"

	"github.com/roach88/streamcalc/internal/algebra"
	"github.com/roach88/streamcalc/internal/engine"
	"github.com/roach88/streamcalc/internal/ir"
)

// MaxFactorial is the largest operand the factorial rule accepts.
const MaxFactorial = 20

// arithmeticRule folds Binary(op, Num, Num) into a Num.
type arithmeticRule struct {
	id string
	op ir.Op
	fn func(id string, a, b float64) (float64, error)
}

func newArithmeticRule(id string) arithmeticRule {
	switch id {
	case IDAdd:
		return arithmeticRule{id: id, op: ir.OpAdd, fn: func(_ string, a, b float64) (float64, error) { return a + b, nil }}
	case IDSubtract:
		return arithmeticRule{id: id, op: ir.OpSub, fn: func(_ string, a, b float64) (float64, error) { return a - b, nil }}
	case IDMultiply:
		return arithmeticRule{id: id, op: ir.OpMul, fn: func(_ string, a, b float64) (float64, error) { return a * b, nil }}
	case IDDivide:
		return arithmeticRule{id: id, op: ir.OpDiv, fn: divide}
	case IDModulo:
		return arithmeticRule{id: id, op: ir.OpMod, fn: modulo}
	case IDExponent:
		return arithmeticRule{id: id, op: ir.OpPow, fn: exponent}
	}
	panic(fmt.Sprintf("rules: no arithmetic rule %q", id))
}

func divide(id string, a, b float64) (float64, error) {
	if b == 0 {
		return 0, engine.NewMathError(engine.ErrCodeDivisionByZero, id,
			fmt.Sprintf("division by zero: %s/0", algebra.FormatNumber(a)))
	}
	return a / b, nil
}

func modulo(id string, a, b float64) (float64, error) {
	if b == 0 {
		return 0, engine.NewMathError(engine.ErrCodeModuloByZero, id,
			fmt.Sprintf("modulo by zero: %s%%0", algebra.FormatNumber(a)))
	}
	return math.Mod(a, b), nil
}

func exponent(id string, a, b float64) (float64, error) {
	if a == 0 && b < 0 {
		return 0, engine.NewMathError(engine.ErrCodeZeroNegativePower, id,
			fmt.Sprintf("zero raised to a negative power: 0^%s", algebra.FormatNumber(b)))
	}
	return math.Pow(a, b), nil
}

func (r arithmeticRule) ID() string { return r.id }

func (r arithmeticRule) Matches(item *engine.Item) bool {
	b, ok := item.Node.(ir.Binary)
	if !ok || b.Op != r.op {
		return false
	}
	_, l := b.Left.(ir.Num)
	_, rr := b.Right.(ir.Num)
	return l && rr
}

func (r arithmeticRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	b := item.Node.(ir.Binary)
	v, err := r.fn(r.id, b.Left.(ir.Num).Value, b.Right.(ir.Num).Value)
	if err != nil {
		return engine.Rejected, err
	}
	if err := finite(r.id, item.Node, v); err != nil {
		return engine.Rejected, err
	}
	e.Emit(ir.Num{Value: v})
	return engine.Consumed, nil
}

// finite rejects NaN and infinite results as fatal.
func finite(id string, n ir.Node, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return engine.NewMathError(engine.ErrCodeNonFinite, id,
			fmt.Sprintf("%s is not a finite number", n.String()))
	}
	return nil
}

// factorialRule computes n! for a non-negative integer n <= MaxFactorial.
type factorialRule struct{}

func (factorialRule) ID() string { return IDFactorial }

func (factorialRule) Matches(item *engine.Item) bool {
	f, ok := item.Node.(ir.Factorial)
	if !ok {
		return false
	}
	_, ok = f.Inner.(ir.Num)
	return ok
}

func (factorialRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	n := item.Node.(ir.Factorial).Inner.(ir.Num).Value
	if n < 0 || !algebra.IsInteger(n) || n > MaxFactorial {
		return engine.Rejected, engine.NewMathError(engine.ErrCodeFactorialDomain, IDFactorial,
			fmt.Sprintf("factorial needs an integer in [0, %d], got %s", MaxFactorial, algebra.FormatNumber(n)))
	}
	result := 1.0
	for i := 2; i <= int(n); i++ {
		result *= float64(i)
	}
	e.Emit(ir.Num{Value: result})
	return engine.Consumed, nil
}

// sqrtRule rewrites √x as x^0.5.
type sqrtRule struct{}

func (sqrtRule) ID() string { return IDSqrt }

func (sqrtRule) Matches(item *engine.Item) bool {
	r, ok := item.Node.(ir.Root)
	return ok && r.Index == nil
}

func (sqrtRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	r := item.Node.(ir.Root)
	e.Emit(ir.Binary{Op: ir.OpPow, Left: r.Radicand, Right: ir.Num{Value: 0.5}})
	return engine.Consumed, nil
}

// nthRootRule rewrites n√x as x^(1/n).
type nthRootRule struct{}

func (nthRootRule) ID() string { return IDNthRoot }

func (nthRootRule) Matches(item *engine.Item) bool {
	r, ok := item.Node.(ir.Root)
	return ok && r.Index != nil
}

func (nthRootRule) Apply(_ context.Context, item *engine.Item, e *engine.Engine) (engine.Outcome, error) {
	r := item.Node.(ir.Root)
	e.Emit(ir.Binary{
		Op:    ir.OpPow,
		Left:  r.Radicand,
		Right: ir.Group{Inner: ir.Binary{Op: ir.OpDiv, Left: ir.Num{Value: 1}, Right: r.Index}},
	})
	return engine.Consumed, nil
}
