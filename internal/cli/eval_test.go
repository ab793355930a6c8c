package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval_Text(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"eval", "2+3*4"}, "14\n"},
		{[]string{"eval", "2x+3=7"}, "x=2\n"},
		{[]string{"eval", "--profile", "algebra", "--var", "x=3", "x+1"}, "4\n"},
		{[]string{"eval", "--var", "x=3", "--var", "y=2", "x+y"}, "5\n"},
		{[]string{"eval", "-p", "factoring", "x^2+5x+6"}, "(x+2)(x+3)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.args[len(tt.args)-1], func(t *testing.T) {
			out, _, err := execute(t, tt.args...)

			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestEval_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "eval", "d/dx(3x^2)")
	require.NoError(t, err)

	resp := decode(t, out)
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "6x", data["output"])
	assert.Equal(t, "expression", data["kind"])
	assert.Equal(t, "full", data["profile"])
	assert.NotEmpty(t, data["id"])
}

func TestEval_Trace(t *testing.T) {
	out, _, err := execute(t, "eval", "--trace", "minimal", "2+3*4")
	require.NoError(t, err)

	assert.Contains(t, out, "14\n\nTrace:\n")
	assert.Contains(t, out, "] ")
	assert.Contains(t, out, " precedence\n")
	assert.Contains(t, out, " partial-operation\n")
}

func TestEval_TraceDetailedShowsRewrites(t *testing.T) {
	out, _, err := execute(t, "eval", "--trace", "detailed", "2+3")
	require.NoError(t, err)

	assert.Contains(t, out, "-> 5")
}

func TestEval_FatalError(t *testing.T) {
	out, _, err := execute(t, "eval", "1/0")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "evaluation aborted: undefined arithmetic")
	assert.Contains(t, err.Error(), "DIVISION_BY_ZERO")
	assert.Empty(t, out)
}

func TestEval_FatalErrorJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "eval", "5%0")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	resp := decode(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MODULO_BY_ZERO", resp.Error.Code)
}

func TestEval_ErrorValueExitsWithFailure(t *testing.T) {
	out, _, err := execute(t, "eval", "3 $ 4")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Error: Unrecognized expression '3 $ 4'\n", out)
}

func TestEval_IterationCap(t *testing.T) {
	_, _, err := execute(t, "eval", "--max-iterations", "1", "2+3*4")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "evaluation aborted: no convergence")
	assert.Contains(t, err.Error(), "NON_CONVERGENT")
}

func TestEval_CommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown profile", []string{"eval", "--profile", "geometry", "1"}, "invalid --profile"},
		{"bad trace", []string{"eval", "--trace", "loud", "1"}, "invalid --trace"},
		{"bad variable value", []string{"eval", "--var", "x=abc", "x"}, "value is not a number"},
		{"bad variable name", []string{"eval", "--var", "xy=1", "1"}, "invalid configuration"},
		{"non-positive cap", []string{"eval", "--max-iterations", "0", "1"}, "invalid configuration"},
		{"missing config", []string{"eval", "--config", "/nonexistent/calc.yaml", "1"}, "failed to load config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)

			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEval_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "calc.yaml", "profile: arithmetic\nvariables:\n  x: 2\n")

	out, _, err := execute(t, "eval", "--config", path, "x+1")
	require.Error(t, err, "variables are not arithmetic")
	assert.Equal(t, "Error: Unrecognized expression 'x+1'\n", out)

	out, _, err = execute(t, "eval", "--config", path, "--profile", "algebra", "x+1")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	out, _, err = execute(t, "eval", "--config", path, "--profile", "algebra", "--var", "x=5", "x+1")
	require.NoError(t, err)
	assert.Equal(t, "6\n", out)
}

func TestEval_CUEConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "calc.cue", "profile: \"algebra\"\nvariables: x: 3\n")

	out, _, err := execute(t, "eval", "--config", path, "x^2")

	require.NoError(t, err)
	assert.Equal(t, "9\n", out)
}

func TestParseVars(t *testing.T) {
	vars, err := parseVars(map[string]string{"x": "3", "y": "-0.5"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"x": 3, "y": -0.5}, vars)

	_, err = parseVars(map[string]string{"x": "three"})
	assert.ErrorContains(t, err, "x=three")
}
