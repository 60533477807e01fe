package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "rado", cmd.Use)
	assert.Contains(t, cmd.Long, "deterministic")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"check", "reach", "explain", "runs", "replay"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)

	levelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, levelFlag)
	assert.Equal(t, "info", levelFlag.DefValue)
}

func TestEnvironmentDefaults(t *testing.T) {
	t.Setenv("RADO_FORMAT", "json")
	t.Setenv("RADO_DB", "/tmp/journal.db")
	t.Setenv("RADO_LOG_LEVEL", "debug")

	cmd := NewRootCommand()

	assert.Equal(t, "json", cmd.PersistentFlags().Lookup("format").DefValue)
	assert.Equal(t, "/tmp/journal.db", cmd.PersistentFlags().Lookup("db").DefValue)
	assert.Equal(t, "debug", cmd.PersistentFlags().Lookup("log-level").DefValue)
}

func TestInvalidFormatRejected(t *testing.T) {
	dir := sampleWorld(t)

	cmd := NewRootCommand()
	_, err := execute(t, cmd, "check", dir, "--format", "yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInvalidLogLevelRejected(t *testing.T) {
	dir := sampleWorld(t)

	cmd := NewRootCommand()
	_, err := execute(t, cmd, "check", dir, "--log-level", "chatty")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("RADO_FORMAT", "json")
	dir := sampleWorld(t)

	cmd := NewRootCommand()
	out, err := execute(t, cmd, "check", dir, "--format", "text")

	require.NoError(t, err)
	assert.Contains(t, out, "✓ Logic valid")
}

func TestCheckCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	checkCmd, _, err := cmd.Find([]string{"check"})
	require.NoError(t, err)

	allErrorsFlag := checkCmd.Flags().Lookup("all-errors")
	require.NotNil(t, allErrorsFlag)
	assert.Equal(t, "false", allErrorsFlag.DefValue)
}

func TestReachCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	reachCmd, _, err := cmd.Find([]string{"reach"})
	require.NoError(t, err)

	for _, name := range []string{"configset", "item", "placement", "max-steps", "journal"} {
		assert.NotNil(t, reachCmd.Flags().Lookup(name), "reach should have --%s", name)
	}
}
