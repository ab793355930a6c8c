package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the golden form of a scenario run: the outcome of every case
// without engine ids or trace steps.
type Snapshot struct {
	ScenarioName string         `json:"scenario_name"`
	Cases        []SnapshotCase `json:"cases"`
}

// SnapshotCase is one case outcome in a Snapshot.
type SnapshotCase struct {
	Name      string `json:"name"`
	Input     string `json:"input"`
	Output    string `json:"output,omitempty"`
	Kind      string `json:"kind,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// NewSnapshot builds the snapshot of result.
func NewSnapshot(name string, result *Result) Snapshot {
	s := Snapshot{ScenarioName: name, Cases: make([]SnapshotCase, len(result.Cases))}
	for i, c := range result.Cases {
		s.Cases[i] = SnapshotCase{
			Name:      c.Name,
			Input:     c.Input,
			Output:    c.Output,
			Kind:      c.Kind,
			ErrorCode: c.ErrorCode,
		}
	}
	return s
}

// Marshal renders the snapshot as indented JSON with a trailing newline.
// HTML escaping is off so operators appear as written.
func (s Snapshot) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenarioName, result).Marshal()
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
