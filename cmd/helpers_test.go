package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/iksnae/lawchat/internal"
)

var lawchatEnvVars = []string{
	"LAWCHAT_CONFIG",
	"LAWCHAT_API_URL",
	"LAWCHAT_API_TOKEN",
	"LAWCHAT_API_TIMEOUT",
	"LAWCHAT_BACKEND",
	"LAWCHAT_DATA_DIR",
	"LAWCHAT_LOG_LEVEL",
	"LAWCHAT_USER",
	"LAWCHAT_ROLE",
}

// isolateEnv keeps the host's config, .env values and data dir out of the test
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, name := range lawchatEnvVars {
		t.Setenv(name, "")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
}

// resetFlags restores every flag of c and its subcommands to its default.
// Flag variables are package state and survive between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes the root command with args and returns what it wrote to stdout
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = internal.DefaultConfig()

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), err
}

// sqliteArgs returns the flags that point a command at a fresh sqlite data dir
func sqliteArgs(t *testing.T) []string {
	t.Helper()
	return []string{"--storage", t.TempDir(), "--backend", "sqlite"}
}

func withArgs(base []string, args ...string) []string {
	out := make([]string, 0, len(base)+len(args))
	out = append(out, args...)
	return append(out, base...)
}

// lastField returns the last whitespace separated field of the first line containing marker
func lastField(output, marker string) string {
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, marker) {
			fields := strings.Fields(line)
			return fields[len(fields)-1]
		}
	}
	return ""
}
