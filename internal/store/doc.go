// Package store provides the SQLite evaluation journal.
//
// The journal is append-only:
//   - evaluations: one row per evaluated expression (input, output or fatal
//     error, profile, bindings, iteration count)
//   - trace_steps: the engine trace of an evaluation, one row per step
//
// # Ordering
//
// Evaluations are ordered by their insertion seq and steps by the engine's
// logical clock seq, NEVER by timestamps. Every query that returns more than
// one row carries an explicit ORDER BY.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: steps reference their evaluation
package store
