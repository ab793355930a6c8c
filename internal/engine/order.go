package engine

import (
	"fmt"
	"sort"
	"strings"
)

// OrderConstraint states that rule Before must be declared ahead of rule
// After whenever both are registered in the same engine.
//
// Rule order is a correctness input: the engine has no conflict resolution
// beyond first declared, first matched. Constraints make the required partial
// order explicit data that is checked at construction instead of a
// registration-order convention.
type OrderConstraint struct {
	Before string `json:"before" yaml:"before"`
	After  string `json:"after" yaml:"after"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// String renders "before < after".
func (c OrderConstraint) String() string {
	return c.Before + " < " + c.After
}

// CheckOrder verifies that ids (in declaration order) satisfy every
// constraint whose two rules are both present.
func CheckOrder(ids []string, constraints []OrderConstraint) error {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	for _, c := range constraints {
		b, okB := pos[c.Before]
		a, okA := pos[c.After]
		if !okB || !okA {
			continue
		}
		if b > a {
			msg := fmt.Sprintf("rule %q must be declared before %q", c.Before, c.After)
			if c.Reason != "" {
				msg += ": " + c.Reason
			}
			return &RuntimeError{
				Code:    ErrCodeOrderViolation,
				Message: msg,
				RuleID:  c.Before,
			}
		}
	}
	return nil
}

// ValidateOrder rejects a contradictory constraint set, i.e. one whose
// before->after graph has a cycle.
//
// The algorithm:
//  1. Build the before -> after graph
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report the first SCC with size > 1, or a self-loop, as a violation
func ValidateOrder(constraints []OrderConstraint) error {
	graph := make(orderGraph)
	for _, c := range constraints {
		graph[c.Before] = append(graph[c.Before], c.After)
		if _, ok := graph[c.After]; !ok {
			graph[c.After] = nil
		}
	}

	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || graph.hasSelfLoop(scc[0]) {
			sort.Strings(scc)
			return &RuntimeError{
				Code:    ErrCodeOrderViolation,
				Message: "contradictory ordering constraints among " + strings.Join(scc, ", "),
			}
		}
	}
	return nil
}

// orderGraph maps rule id -> rule ids that must come after it.
type orderGraph map[string][]string

func (g orderGraph) hasSelfLoop(node string) bool {
	for _, n := range g[node] {
		if n == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so results are deterministic.
func tarjanSCC(graph orderGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is the root of an SCC: pop it off the stack
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	for _, n := range nodes {
		if _, visited := indices[n]; !visited {
			strongConnect(n)
		}
	}
	return sccs
}
