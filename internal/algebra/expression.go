package algebra

import (
	"sort"
	"strings"
)

// Expression is an ordered sum of terms.
//
// Zero-coefficient terms are filtered at construction, so an Expression
// never carries them. The empty Expression is the polynomial 0.
type Expression struct {
	terms []Term
}

// NewExpression builds an Expression from terms, dropping zero coefficients
// and preserving input order. Like terms are NOT combined; use Combine.
func NewExpression(terms ...Term) Expression {
	out := make([]Term, 0, len(terms))
	for _, t := range terms {
		if t.Coefficient != 0 {
			out = append(out, t)
		}
	}
	return Expression{terms: out}
}

// Terms returns a copy of the term list.
func (e Expression) Terms() []Term {
	out := make([]Term, len(e.terms))
	copy(out, e.terms)
	return out
}

// Len returns the number of terms.
func (e Expression) Len() int {
	return len(e.terms)
}

// IsZero reports whether the expression has no terms.
func (e Expression) IsZero() bool {
	return len(e.terms) == 0
}

// CombineTerms partitions terms into like-term classes (first-seen
// representative order), sums each class, and drops classes summing to zero.
//
// The result is stable and idempotent: CombineTerms(CombineTerms(ts)) equals
// CombineTerms(ts).
func CombineTerms(terms []Term) []Term {
	index := make(map[string]int, len(terms))
	combined := make([]Term, 0, len(terms))
	for _, t := range terms {
		k := t.key()
		if i, ok := index[k]; ok {
			combined[i].Coefficient += t.Coefficient
			continue
		}
		index[k] = len(combined)
		combined = append(combined, Term{Coefficient: t.Coefficient, variables: t.variables})
	}

	out := combined[:0]
	for _, t := range combined {
		if t.Coefficient != 0 {
			out = append(out, t)
		}
	}
	return out
}

// Combine returns the expression with like terms merged.
func (e Expression) Combine() Expression {
	return Expression{terms: CombineTerms(e.terms)}
}

// HasLikeTerms reports whether any two terms are like terms.
func (e Expression) HasLikeTerms() bool {
	seen := make(map[string]struct{}, len(e.terms))
	for _, t := range e.terms {
		k := t.key()
		if _, ok := seen[k]; ok {
			return true
		}
		seen[k] = struct{}{}
	}
	return false
}

// Add returns the combined sum e+o.
func (e Expression) Add(o Expression) Expression {
	terms := make([]Term, 0, len(e.terms)+len(o.terms))
	terms = append(terms, e.terms...)
	terms = append(terms, o.terms...)
	return Expression{terms: CombineTerms(terms)}
}

// Sub returns the combined difference e-o.
func (e Expression) Sub(o Expression) Expression {
	return e.Add(o.Negate())
}

// Negate flips the sign of every term.
func (e Expression) Negate() Expression {
	return e.Scale(-1)
}

// Scale multiplies every coefficient by f.
func (e Expression) Scale(f float64) Expression {
	terms := make([]Term, len(e.terms))
	for i, t := range e.terms {
		terms[i] = t.Scale(f)
	}
	return NewExpression(terms...)
}

// Multiply multiplies every pair of terms and combines the products. This is
// distribution when one side has a single term and FOIL when both have two.
func (e Expression) Multiply(o Expression) Expression {
	terms := make([]Term, 0, len(e.terms)*len(o.terms))
	for _, a := range e.terms {
		for _, b := range o.terms {
			terms = append(terms, a.Multiply(b))
		}
	}
	return Expression{terms: CombineTerms(terms)}
}

// Pow raises the expression to a non-negative integer power by repeated
// multiplication. Pow(0) is the constant 1.
func (e Expression) Pow(n int) Expression {
	result := NewExpression(Constant(1))
	for i := 0; i < n; i++ {
		result = result.Multiply(e)
	}
	return result
}

// Constant returns the value of an expression that has no variables.
func (e Expression) Constant() (float64, bool) {
	sum := 0.0
	for _, t := range e.terms {
		if !t.IsConstant() {
			return 0, false
		}
		sum += t.Coefficient
	}
	return sum, true
}

// Variables returns the sorted distinct variable names used by the expression.
func (e Expression) Variables() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, t := range e.terms {
		for _, v := range t.variables {
			if _, ok := seen[v.Name]; !ok {
				seen[v.Name] = struct{}{}
				names = append(names, v.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// HasVariable reports whether name occurs in any term.
func (e Expression) HasVariable(name string) bool {
	for _, t := range e.terms {
		if t.Exponent(name) > 0 {
			return true
		}
	}
	return false
}

// Degree returns the highest exponent of name across all terms.
func (e Expression) Degree(name string) int {
	d := 0
	for _, t := range e.terms {
		d = max(d, t.Exponent(name))
	}
	return d
}

// Coefficient sums the coefficients of terms that are exactly name^exp with
// no other variables. Coefficient(name, 0) sums the constant terms.
func (e Expression) Coefficient(name string, exp int) float64 {
	sum := 0.0
	for _, t := range e.terms {
		if exp == 0 {
			if t.IsConstant() {
				sum += t.Coefficient
			}
			continue
		}
		if len(t.variables) == 1 && t.variables[0] == (Variable{Name: name, Exponent: exp}) {
			sum += t.Coefficient
		}
	}
	return sum
}

// Derivative differentiates term-wise with respect to name.
func (e Expression) Derivative(name string) Expression {
	terms := make([]Term, len(e.terms))
	for i, t := range e.terms {
		terms[i] = t.Derivative(name)
	}
	return Expression{terms: CombineTerms(NewExpression(terms...).terms)}
}

// Antiderivative integrates term-wise with respect to name. The integration
// constant is not part of the result.
func (e Expression) Antiderivative(name string) Expression {
	terms := make([]Term, len(e.terms))
	for i, t := range e.terms {
		terms[i] = t.Antiderivative(name)
	}
	return Expression{terms: CombineTerms(NewExpression(terms...).terms)}
}

// Substitute folds bound variable values into coefficients and combines.
func (e Expression) Substitute(bindings map[string]float64) Expression {
	terms := make([]Term, len(e.terms))
	for i, t := range e.terms {
		terms[i] = t.Substitute(bindings)
	}
	return Expression{terms: CombineTerms(NewExpression(terms...).terms)}
}

// Equal reports whether both expressions have the same terms in the same order.
func (e Expression) Equal(o Expression) bool {
	if len(e.terms) != len(o.terms) {
		return false
	}
	for i := range e.terms {
		if e.terms[i].Coefficient != o.terms[i].Coefficient || !e.terms[i].IsLike(o.terms[i]) {
			return false
		}
	}
	return true
}

// String renders terms joined by "+" or "-" with the first sign elided.
// The empty expression renders as "0".
func (e Expression) String() string {
	if len(e.terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, t := range e.terms {
		if i > 0 && t.Coefficient >= 0 {
			b.WriteByte('+')
		}
		b.WriteString(t.String())
	}
	return b.String()
}
