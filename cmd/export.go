package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/lawchat/internal"
	"github.com/iksnae/lawchat/internal/export"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [session-id]",
	Short: "Export conversations to files",
	Long: `Export conversations to various formats (jsonl, md, yaml, json).

Without a session ID every conversation of the current identity is exported,
one file per conversation. Use 'lawchat list' to see available session IDs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		sessions := store.Sessions()
		if len(args) == 1 {
			session, err := store.Session(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s (use 'lawchat list' to see your conversations)", err, args[0])
			}
			sessions = []internal.ChatSession{session}
		}
		if len(sessions) == 0 {
			internal.PrintInfo("Nothing to export")
			return nil
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		var failed int
		var firstErr error
		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Exporting %d conversation(s) to %s", len(sessions), outputDir), func() error {
			for i := range sessions {
				path := filepath.Join(outputDir, fmt.Sprintf("session_%s.%s", sessions[i].ID, exporter.Extension()))
				if err := exportSession(exporter, &sessions[i], path); err != nil {
					internal.LogError("%v", err)
					failed++
					if firstErr == nil {
						firstErr = err
					}
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d conversation(s) failed to export: %w", failed, len(sessions), firstErr)
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Exported %d conversation(s) to %s", len(sessions), outputDir)))
		return nil
	},
}

func exportSession(exporter export.Exporter, session *internal.ChatSession, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}

	if err := exporter.Export(session, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}

	if err := file.Close(); err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "output", "o", "./exports", "Output directory")
}
