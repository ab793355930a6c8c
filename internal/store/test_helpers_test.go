package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/streamcalc/internal/engine"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEvaluation creates a successful evaluation with two steps.
func createTestEvaluation(id, input, output string) Evaluation {
	return Evaluation{
		ID:         id,
		Input:      input,
		Output:     output,
		Kind:       "number",
		Profile:    "full",
		Status:     StatusOK,
		Iterations: 3,
		Steps: []engine.Step{
			{Seq: 1, Engine: "engine-1", Rule: "precedence", Before: input, After: output},
			{Seq: 2, Engine: "engine-1", Rule: "add"},
		},
	}
}
