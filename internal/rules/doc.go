// Package rules holds every rule family run by the engine and the catalog
// that assembles them into profiles.
//
// A profile is a named set of rule ids. Catalog.Build returns fresh rule
// instances for a profile sorted by priority, so two engines never share a
// rule (and therefore never share a pending continuation).
//
// Families:
//   - normalize: precedence bracketing, parentheses, unary minus
//   - arithmetic: + - * / % ^ on numbers, factorial, roots, floor/ceil/abs,
//     and partial evaluation of composite operands through child engines
//   - algebra: term literals, like-term combination, distribution, FOIL,
//     substitution of bound variables
//   - equation: quadratic and linear solving, explicit factor(...)
//   - factoring: factoring of bare monic quadratics
//   - calculus: power-rule derivative and integral, product rule, definite
//     integrals and critical points through helper engines
//   - terminal: result hand-off and the unrecognized catch-all
//
// Rule order is data: Order returns the partial order every profile must
// respect and the engine checks it at construction.
package rules
