package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_Text(t *testing.T) {
	out, _, err := execute(t, "rules", "--profile", "arithmetic")
	require.NoError(t, err)

	assert.Contains(t, out, "Profile: arithmetic")
	assert.Contains(t, out, "PRIORITY")
	assert.Contains(t, out, "precedence")
	assert.Contains(t, out, "partial-operation")
	assert.NotContains(t, out, "quadratic")
	assert.Contains(t, out, "ordering constraints satisfied")
}

func TestRules_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "rules")
	require.NoError(t, err)

	resp := decode(t, out)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "full", data["profile"])
	assert.Equal(t, true, data["valid"])

	list, ok := data["rules"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, list)
	first := list[0].(map[string]any)
	assert.Equal(t, "precedence", first["id"])
}

func TestRules_ViolatedConfigOrder(t *testing.T) {
	path := writeFile(t, t.TempDir(), "order.yaml", `order:
  - before: linear
    after: quadratic
    reason: backwards
`)

	out, _, err := execute(t, "rules", "--config", path)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗")
}

func TestRules_UnknownProfile(t *testing.T) {
	_, _, err := execute(t, "rules", "--profile", "geometry")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
