package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios runs every scenario under testdata/scenarios against its
// golden snapshot. Regenerate with:
//
//	go test ./internal/harness -run TestScenarios -update
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.Equal(t, name, scenario.Name, "scenario name must match its file name")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_OmitsTraceAndIDs(t *testing.T) {
	result := NewResult()
	result.Cases = append(result.Cases,
		CaseResult{Name: "sum", Input: "1<2", ID: "eval-1", Output: "3", Kind: "number", Pass: true},
		CaseResult{Name: "zero", Input: "1/0", ID: "eval-2", ErrorCode: "DIVISION_BY_ZERO", Error: "boom"},
	)

	data, err := NewSnapshot("demo", result).Marshal()
	require.NoError(t, err)

	want := `{
  "scenario_name": "demo",
  "cases": [
    {
      "name": "sum",
      "input": "1<2",
      "output": "3",
      "kind": "number"
    },
    {
      "name": "zero",
      "input": "1/0",
      "error_code": "DIVISION_BY_ZERO"
    }
  ]
}
`
	assert.Equal(t, want, string(data))
}
