package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()

	assert.Equal(t, "saiokit", root.Name)
	assert.NotNil(t, root.Subcommands)
	assert.NotNil(t, root.Flags)

	expectedCommands := []string{
		"validate",
		"features",
		"auth",
		"plan",
		"mock",
	}
	for _, name := range expectedCommands {
		cmd, ok := root.Subcommands[name]
		require.True(t, ok, "missing subcommand %s", name)
		assert.NotEmpty(t, cmd.Description)
		assert.NotNil(t, cmd.Run)
		assert.NotNil(t, cmd.Flags)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "saio.config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunValidate(t *testing.T) {
	path := writeConfig(t, `[user_auth_config]
endpoint=http://127.0.0.1:8080/
strategy=saio_tempauth

[user]
username=test:tester
password=testing

[objectstorage_api]
enabled_features=__ALL__
`)

	require.NoError(t, runValidate([]string{"--config", path}))
}

func TestRunValidateRejectsBrokenConfig(t *testing.T) {
	path := writeConfig(t, `[objectstorage_api]
enabled_features=__SOMETIMES__
`)

	require.Error(t, runValidate([]string{"--config", path}))
}

func TestRunValidateMissingFile(t *testing.T) {
	require.Error(t, runValidate([]string{"--config", "/does/not/exist"}))
}

func TestRunPlanWritesFile(t *testing.T) {
	path := writeConfig(t, `[user]
username=test:tester
password=sekrit
`)
	out := filepath.Join(t.TempDir(), "plan.yaml")

	require.NoError(t, runPlan([]string{"--config", path, "--out", out}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "username: test:tester")
	assert.NotContains(t, string(data), "sekrit")
}
