package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Valid(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/full.yaml")
	require.NoError(t, err)

	assert.Equal(t, "full", scenario.Name)
	assert.Empty(t, scenario.Profile)
	require.Len(t, scenario.Cases, 12)
	assert.Equal(t, "2+3*4", scenario.Cases[0].Input)

	area := scenario.Cases[7]
	require.NotNil(t, area.Within)
	assert.InDelta(t, 2.667, area.Within.Value, 1e-9)
	assert.InDelta(t, 0.001, area.Within.Delta, 1e-9)

	assert.Equal(t, "DIVISION_BY_ZERO", scenario.Cases[11].Error)
	require.Len(t, scenario.Assertions, 5)
	assert.Equal(t, AssertTraceOrder, scenario.Assertions[0].Type)
}

func TestLoadScenario_CaseVariables(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/substitution.yaml")
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"x": 3}, scenario.Variables)
	assert.Equal(t, map[string]float64{"x": 10}, scenario.Cases[3].Variables)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestLoadScenario_PathInError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: broken\n"), 0o644))

	_, err := LoadScenario(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: s\ncase:\n  - name: a\n    input: \"1\"\n    expect: \"1\"\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			yaml: "cases:\n  - name: a\n    input: \"1\"\n    expect: \"1\"\n",
			want: "name is required",
		},
		{
			name: "no cases",
			yaml: "name: s\n",
			want: "cases list is required",
		},
		{
			name: "unknown profile",
			yaml: "name: s\nprofile: geometry\ncases:\n  - name: a\n    input: \"1\"\n    expect: \"1\"\n",
			want: "unknown profile",
		},
		{
			name: "bad trace level",
			yaml: "name: s\ntrace: loud\ncases:\n  - name: a\n    input: \"1\"\n    expect: \"1\"\n",
			want: "invalid trace level",
		},
		{
			name: "case without name",
			yaml: "name: s\ncases:\n  - input: \"1\"\n    expect: \"1\"\n",
			want: "cases[0]: name is required",
		},
		{
			name: "duplicate case",
			yaml: "name: s\ncases:\n  - name: a\n    input: \"1\"\n    expect: \"1\"\n  - name: a\n    input: \"2\"\n    expect: \"2\"\n",
			want: "duplicate case name",
		},
		{
			name: "case without input",
			yaml: "name: s\ncases:\n  - name: a\n    expect: \"1\"\n",
			want: "input is required",
		},
		{
			name: "no expectation",
			yaml: "name: s\ncases:\n  - name: a\n    input: \"1\"\n",
			want: "exactly one of expect, within or error",
		},
		{
			name: "two expectations",
			yaml: "name: s\ncases:\n  - name: a\n    input: \"1/0\"\n    expect: \"1\"\n    error: DIVISION_BY_ZERO\n",
			want: "exactly one of expect, within or error",
		},
		{
			name: "assertion without type",
			yaml: "name: s\ncases:\n  - name: a\n    input: \"1\"\n    expect: \"1\"\nassertions:\n  - case: a\n",
			want: "type is required",
		},
		{
			name: "unknown assertion type",
			yaml: "name: s\ncases:\n  - name: a\n    input: \"1\"\n    expect: \"1\"\nassertions:\n  - type: trace_magic\n",
			want: "unknown assertion type",
		},
		{
			name: "trace assertion on undefined case",
			yaml: "name: s\ncases:\n  - name: a\n    input: \"1\"\n    expect: \"1\"\nassertions:\n  - type: trace_contains\n    case: b\n    rule: add\n",
			want: `case "b" is not defined`,
		},
		{
			name: "trace_contains without rule",
			yaml: "name: s\ncases:\n  - name: a\n    input: \"1\"\n    expect: \"1\"\nassertions:\n  - type: trace_contains\n    case: a\n",
			want: "rule is required",
		},
		{
			name: "trace_order without rules",
			yaml: "name: s\ncases:\n  - name: a\n    input: \"1\"\n    expect: \"1\"\nassertions:\n  - type: trace_order\n    case: a\n",
			want: "rules list is required",
		},
		{
			name: "final_state without table",
			yaml: "name: s\ncases:\n  - name: a\n    input: \"1\"\n    expect: \"1\"\nassertions:\n  - type: final_state\n    expect: {status: ok}\n",
			want: "table is required",
		},
		{
			name: "final_state without expect",
			yaml: "name: s\ncases:\n  - name: a\n    input: \"1\"\n    expect: \"1\"\nassertions:\n  - type: final_state\n    table: evaluations\n",
			want: "expect is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseScenario_FinalStateNeedsNoCase(t *testing.T) {
	data := []byte(`
name: journal
cases:
  - name: a
    input: "1+1"
    expect: "2"
assertions:
  - type: final_state
    table: evaluations
    where: { input: "1+1" }
    expect: { output: "2" }
`)

	scenario, err := ParseScenario(data)

	require.NoError(t, err)
	assert.Equal(t, "1+1", scenario.Assertions[0].Where["input"])
}
