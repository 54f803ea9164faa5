package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadsafety/schools-cli/internal/config"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"import", "export", "serve", "migrate", "bbox"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "schools-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestImportCommand_Flags(t *testing.T) {
	for _, name := range []string{"start-date", "end-date", "distance", "batch-size", "preset", "school-id", "dry-run"} {
		require.NotNil(t, importCmd.Flags().Lookup(name), "import should have --%s", name)
	}
	assert.Equal(t, "false", importCmd.Flags().Lookup("dry-run").DefValue)
}

func TestExportCommand_Flags(t *testing.T) {
	for _, name := range []string{"format", "dir", "encoding", "start-date"} {
		require.NotNil(t, exportCmd.Flags().Lookup(name), "export should have --%s", name)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestRootCommand_LogFlags(t *testing.T) {
	for _, name := range []string{"log-level", "log-format"} {
		require.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "root should have --%s", name)
	}
}

func TestApplyLogFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "")
	cmd.Flags().StringVar(&logFormat, "log-format", "", "")

	lc := config.LogConfig{Level: "info", Format: "json"}
	applyLogFlags(cmd, &lc)
	assert.Equal(t, config.LogConfig{Level: "info", Format: "json"}, lc)

	require.NoError(t, cmd.Flags().Set("log-level", "debug"))
	applyLogFlags(cmd, &lc)
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "json", lc.Format)
}
