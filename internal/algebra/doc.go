// Package algebra implements the canonical polynomial value that the rewrite
// rules operate on.
//
// The model has three layers:
//   - Variable: a name raised to a positive integer exponent
//   - Term: a float coefficient times a product of variables
//   - Expression: an ordered sum of terms
//
// CRITICAL: All values are immutable. Every operation returns a new value and
// never mutates its receiver or its arguments. Rules share Expressions freely
// between items and helper engines, so in-place mutation would corrupt other
// in-flight computations.
//
// Canonical form:
//   - Term variables are sorted by name; repeated names are merged by summing
//     exponents and exponent 0 is dropped
//   - Expressions never contain zero-coefficient terms (filtered at construction)
//   - Like terms share the same (name, exponent) sequence; CombineTerms merges
//     them in first-seen order
package algebra
