// Package ir provides the expression tree that rewrite rules match on.
//
// This package contains the tagged-union node types, their canonical text
// rendering, and the normal-form predicates the engine consults. It imports
// only internal/algebra; every other internal package imports ir.
//
// Key design constraints:
//   - Node is a sealed interface; only the types in this package implement it
//   - Nodes are immutable values; rules build new nodes instead of editing
//   - Text is produced only by String(), at the external boundary and in traces
//   - Chain holds an operator sequence whose precedence has not been resolved
//     yet; Binary is a single resolved operator application
package ir
