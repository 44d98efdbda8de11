package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/lawchat/internal"
	"github.com/spf13/cobra"
)

const healthcheckProbeKey = "healthcheck@probe"

var (
	healthcheckDetails bool
	healthcheckAPI     bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that lawchat can store conversations and reach the API",
	Long: `Check the health of lawchat by verifying:
  • Configuration and identity
  • Storage path detection
  • Storage write, read and delete
  • Conversations stored for the current identity
  • API reachability (with --api)

This command is useful for debugging storage and connectivity issues.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, sectionStyle.Render("🔍 lawchat Health Check"))
		_, _ = fmt.Fprintln(out)

		// Step 1: Configuration
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		identity := cfg.BoundIdentity()
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if healthcheckDetails {
			_, _ = fmt.Fprintf(out, "   Backend: %s\n", cfg.Storage.Backend)
			_, _ = fmt.Fprintf(out, "   API: %s\n", cfg.API.BaseURL)
			_, _ = fmt.Fprintf(out, "   Identity: %s\n", identity)
		}
		_, _ = fmt.Fprintln(out)

		// Step 2: Storage paths
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 2: Detecting storage paths..."))
		paths, err := internal.GetStoragePaths(cfg.Storage.Path)
		if err != nil {
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Failed to detect storage paths:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Storage paths detected"))
		if healthcheckDetails {
			_, _ = fmt.Fprintf(out, "   Data dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "   Database: %s\n", paths.DatabasePath)
			_, _ = fmt.Fprintf(out, "   Files: %s\n", paths.FilesDir)
		}
		_, _ = fmt.Fprintln(out)

		// Step 3: Storage access
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 3: Testing storage access..."))
		medium, closeMedium, err := openMedium()
		if err != nil {
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Failed to open storage:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		defer closeMedium()

		if err := probeMedium(medium); err != nil {
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Storage probe failed:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Storage is writable"))
		if healthcheckDetails {
			_, _ = fmt.Fprintf(out, "   Type: %T\n", medium)
		}
		_, _ = fmt.Fprintln(out)

		// Step 4: Conversations for the bound identity
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 4: Loading conversations..."))
		store := internal.NewSessionStore(internal.NewKVPersistence(medium), identity, cfg.StoreOptions())
		if count := store.Len(); count > 0 {
			_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Found %d conversation(s) for %s", count, identity)))
		} else {
			_, _ = fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("⚠️  No conversations yet for %s", identity)))
		}
		_, _ = fmt.Fprintln(out)

		// Step 5: API
		if healthcheckAPI {
			_, _ = fmt.Fprintln(out, infoStyle.Render("Step 5: Contacting the API..."))
			client := newAPIClient()
			docs, err := client.ListDocuments(cmd.Context())
			if err != nil {
				_, _ = fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("❌ %s is not reachable:", client.BaseURL())), err)
				return fmt.Errorf("health check failed: %w", err)
			}
			_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ API reachable (%d document(s))", len(docs))))
			_, _ = fmt.Fprintln(out)
		}

		_, _ = fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		return nil
	},
}

// probeMedium writes, reads back and deletes a probe key
func probeMedium(medium internal.Medium) error {
	want := time.Now().UTC().Format(time.RFC3339Nano)
	if err := medium.Set(healthcheckProbeKey, want); err != nil {
		return err
	}

	got, ok, err := medium.Get(healthcheckProbeKey)
	if err != nil {
		return err
	}
	if !ok || got != want {
		return errors.New("probe value did not round-trip")
	}

	return medium.Delete(healthcheckProbeKey)
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckDetails, "details", "d", false, "Show detailed diagnostic information")
	healthcheckCmd.Flags().BoolVar(&healthcheckAPI, "api", false, "Also check that the API is reachable")
}
