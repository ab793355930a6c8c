package algebra

import (
	"fmt"
	"sort"
	"strings"
)

// Variable is a named unknown raised to a positive integer exponent.
//
// Two variables are equal iff name and exponent match.
type Variable struct {
	Name     string
	Exponent int
}

// Var returns the variable name raised to the first power.
func Var(name string) Variable {
	return Variable{Name: name, Exponent: 1}
}

// String renders "x" or "x^2".
func (v Variable) String() string {
	if v.Exponent == 1 {
		return v.Name
	}
	return fmt.Sprintf("%s^%d", v.Name, v.Exponent)
}

// Term is a coefficient multiplied by a product of variables.
//
// The zero value is the constant 0. Construct terms with NewTerm or Constant
// so the variable list is canonical.
type Term struct {
	Coefficient float64
	variables   []Variable
}

// NewTerm builds a term in canonical form.
//
// Variables are sorted by name. A name given more than once is merged by
// summing exponents, and variables whose exponent ends up <= 0 are dropped.
// The input slice is not retained.
func NewTerm(coefficient float64, vars ...Variable) Term {
	return Term{Coefficient: coefficient, variables: canonicalVariables(vars)}
}

// Constant returns a term with no variables.
func Constant(c float64) Term {
	return Term{Coefficient: c}
}

func canonicalVariables(vars []Variable) []Variable {
	if len(vars) == 0 {
		return nil
	}
	exps := make(map[string]int, len(vars))
	names := make([]string, 0, len(vars))
	for _, v := range vars {
		if _, seen := exps[v.Name]; !seen {
			names = append(names, v.Name)
		}
		exps[v.Name] += v.Exponent
	}
	sort.Strings(names)

	out := make([]Variable, 0, len(names))
	for _, name := range names {
		if exps[name] > 0 {
			out = append(out, Variable{Name: name, Exponent: exps[name]})
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Variables returns a copy of the term's sorted variable list.
func (t Term) Variables() []Variable {
	if len(t.variables) == 0 {
		return nil
	}
	out := make([]Variable, len(t.variables))
	copy(out, t.variables)
	return out
}

// IsConstant reports whether the term has no variables.
func (t Term) IsConstant() bool {
	return len(t.variables) == 0
}

// Exponent returns the exponent of name in the term, or 0 if absent.
func (t Term) Exponent(name string) int {
	for _, v := range t.variables {
		if v.Name == name {
			return v.Exponent
		}
	}
	return 0
}

// IsLike reports whether t and o have pairwise equal variable lists (same
// names, same exponents, same count). Coefficients are ignored.
func (t Term) IsLike(o Term) bool {
	if len(t.variables) != len(o.variables) {
		return false
	}
	for i := range t.variables {
		if t.variables[i] != o.variables[i] {
			return false
		}
	}
	return true
}

// Multiply multiplies coefficients and sums exponents of matching variables.
func (t Term) Multiply(o Term) Term {
	vars := make([]Variable, 0, len(t.variables)+len(o.variables))
	vars = append(vars, t.variables...)
	vars = append(vars, o.variables...)
	return NewTerm(t.Coefficient*o.Coefficient, vars...)
}

// Scale returns the term with its coefficient multiplied by f.
func (t Term) Scale(f float64) Term {
	return Term{Coefficient: t.Coefficient * f, variables: t.variables}
}

// Derivative differentiates the term with respect to name using the power
// rule. A term without name vanishes (constant rule); other variables are
// left untouched.
func (t Term) Derivative(name string) Term {
	n := t.Exponent(name)
	if n == 0 {
		return Constant(0)
	}
	vars := t.Variables()
	for i := range vars {
		if vars[i].Name == name {
			vars[i].Exponent--
		}
	}
	return NewTerm(t.Coefficient*float64(n), vars...)
}

// Antiderivative integrates the term with respect to name using the power
// rule: a*x^n becomes a/(n+1)*x^(n+1). A term without name is multiplied by
// name^1.
func (t Term) Antiderivative(name string) Term {
	n := t.Exponent(name)
	vars := append(t.Variables(), Var(name))
	return NewTerm(t.Coefficient/float64(n+1), vars...)
}

// Substitute replaces every bound variable by its value, folding the value
// into the coefficient.
func (t Term) Substitute(bindings map[string]float64) Term {
	coef := t.Coefficient
	var rest []Variable
	for _, v := range t.variables {
		val, ok := bindings[v.Name]
		if !ok {
			rest = append(rest, v)
			continue
		}
		coef *= intPow(val, v.Exponent)
	}
	return NewTerm(coef, rest...)
}

func intPow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

// key returns the canonical variable signature used to group like terms.
func (t Term) key() string {
	if len(t.variables) == 0 {
		return ""
	}
	var b strings.Builder
	for _, v := range t.variables {
		b.WriteString(v.String())
		b.WriteByte(';')
	}
	return b.String()
}

// String renders the term: constants print their number; a coefficient of 1
// is implicit and -1 prints as a bare minus sign ("x^2y", "-x", "3x").
func (t Term) String() string {
	if t.IsConstant() {
		return FormatNumber(t.Coefficient)
	}
	var b strings.Builder
	switch t.Coefficient {
	case 1:
	case -1:
		b.WriteByte('-')
	default:
		b.WriteString(FormatNumber(t.Coefficient))
	}
	for _, v := range t.variables {
		b.WriteString(v.String())
	}
	return b.String()
}
