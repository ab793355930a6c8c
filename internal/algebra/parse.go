package algebra

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidTerm is returned when text is not a single algebraic term.
var ErrInvalidTerm = errors.New("invalid term")

// ParseTerm parses a single term literal such as "3", "-2.5x", "x^2y" or "-x".
//
// Grammar: [sign] [number] { letter [ "^" digits ] }. At least a number or a
// variable must be present. Whitespace is not allowed.
func ParseTerm(s string) (Term, error) {
	if s == "" {
		return Term{}, fmt.Errorf("%w: empty", ErrInvalidTerm)
	}
	rs := []rune(s)
	i := 0
	sign := 1.0
	if rs[i] == '+' || rs[i] == '-' {
		if rs[i] == '-' {
			sign = -1
		}
		i++
	}

	start := i
	for i < len(rs) && (unicode.IsDigit(rs[i]) || rs[i] == '.') {
		i++
	}
	coef := 1.0
	hasNumber := i > start
	if hasNumber {
		v, err := strconv.ParseFloat(string(rs[start:i]), 64)
		if err != nil {
			return Term{}, fmt.Errorf("%w: %q: %v", ErrInvalidTerm, s, err)
		}
		coef = v
	}

	var vars []Variable
	for i < len(rs) {
		if !isVariableRune(rs[i]) {
			return Term{}, fmt.Errorf("%w: %q: unexpected %q", ErrInvalidTerm, s, rs[i])
		}
		name := string(rs[i])
		i++
		exp := 1
		if i < len(rs) && rs[i] == '^' {
			i++
			expStart := i
			for i < len(rs) && unicode.IsDigit(rs[i]) {
				i++
			}
			if i == expStart {
				return Term{}, fmt.Errorf("%w: %q: missing exponent", ErrInvalidTerm, s)
			}
			n, err := strconv.Atoi(string(rs[expStart:i]))
			if err != nil {
				return Term{}, fmt.Errorf("%w: %q: %v", ErrInvalidTerm, s, err)
			}
			exp = n
		}
		vars = append(vars, Variable{Name: name, Exponent: exp})
	}

	if !hasNumber && len(vars) == 0 {
		return Term{}, fmt.Errorf("%w: %q", ErrInvalidTerm, s)
	}
	return NewTerm(sign*coef, vars...), nil
}

// ParseExpression parses a sum of term literals such as "x^2+3x-2".
// Spaces are ignored. Like terms are kept as written.
func ParseExpression(s string) (Expression, error) {
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return Expression{}, fmt.Errorf("%w: empty", ErrInvalidTerm)
	}

	var terms []Term
	start := 0
	for i := 1; i <= len(s); i++ {
		if i < len(s) && s[i] != '+' && s[i] != '-' {
			continue
		}
		// A sign directly after '^' belongs to the exponent and is rejected by ParseTerm.
		if i < len(s) && s[i-1] == '^' {
			continue
		}
		t, err := ParseTerm(strings.TrimPrefix(s[start:i], "+"))
		if err != nil {
			return Expression{}, err
		}
		terms = append(terms, t)
		start = i
	}
	return NewExpression(terms...), nil
}

// isVariableRune reports whether r can name a variable.
func isVariableRune(r rune) bool {
	return r >= 'a' && r <= 'z'
}

// IsVariableName reports whether s is a valid single-letter variable name.
func IsVariableName(s string) bool {
	rs := []rune(s)
	return len(rs) == 1 && isVariableRune(rs[0])
}
