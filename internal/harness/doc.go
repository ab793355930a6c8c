// Package harness runs conformance scenarios against the evaluator.
//
// A scenario is a YAML file listing inputs and the value each must reduce
// to, plus assertions over the recorded rule trace and the evaluation
// journal.
//
// # Scenario Format
//
//	name: arithmetic_basics
//	description: "Operator precedence and bracket rules"
//	profile: arithmetic        # optional, default full
//	trace: minimal             # optional, default minimal
//	variables: { x: 3 }        # optional, top-level bindings
//	cases:
//	  - name: precedence
//	    input: "2+3*4"
//	    expect: "14"
//	    kind: number           # optional
//	  - name: area
//	    input: "∫[0,2] x^2 dx"
//	    within: { value: 2.667, delta: 0.001 }
//	  - name: divide by zero
//	    input: "1/0"
//	    error: DIVISION_BY_ZERO
//	assertions:
//	  - type: trace_order
//	    case: precedence
//	    rules: [precedence, multiply, add]
//	  - type: final_state
//	    table: evaluations
//	    where: { input: "2+3*4" }
//	    expect: { output: "14", status: ok }
//
// # Assertion Types
//
//   - trace_contains: a rule consumed at least one item in the case
//   - trace_order: rules first appear in the listed order
//   - trace_count: a rule consumed exactly N items
//   - final_state: queries a journal table and checks expected columns
//
// # Deterministic Testing
//
// Every case runs with a fresh testutil.DeterministicClock, engine ids from
// one testutil.SequenceGenerator per scenario and an in-memory SQLite
// journal, so the same scenario always produces the same trace and
// golden snapshot.
package harness
