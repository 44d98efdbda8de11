package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/iksnae/lawchat/internal"
	"github.com/spf13/cobra"
)

var (
	backupDir    string
	restoreMerge bool
)

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the conversations of every identity",
	Long: `Write a snapshot of every identity's conversations to a directory: an index.yaml
plus one JSON file per identity. Restore it with 'lawchat restore'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveBackupDir()
		if err != nil {
			return err
		}

		medium, closeMedium, err := openMedium()
		if err != nil {
			return err
		}
		defer closeMedium()

		bm := internal.NewBackupManager(dir)
		var index *internal.BackupIndex
		err = internal.ShowProgressWithSteps(cmd.Context(), []internal.ProgressStep{
			{
				Message: fmt.Sprintf("Backing up to %s", dir),
				Fn: func() error {
					var backupErr error
					index, backupErr = bm.Backup(medium, cfg.Storage.Backend)
					return backupErr
				},
			},
			{
				Message: "Verifying backup index",
				Fn: func() error {
					written, loadErr := bm.LoadIndex()
					if loadErr != nil {
						return loadErr
					}
					if len(written.Identities) != len(index.Identities) {
						return fmt.Errorf("index lists %d identities, expected %d", len(written.Identities), len(index.Identities))
					}
					return nil
				},
			},
		})
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(
			fmt.Sprintf("✅ Backed up %d identities to %s", len(index.Identities), dir)))
		return nil
	},
}

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore conversations from a backup",
	Long: `Restore every identity found in a backup directory written by 'lawchat backup'.
Stored conversations of the same identities are replaced, or with --merge combined
with the restored ones.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveBackupDir()
		if err != nil {
			return err
		}

		medium, closeMedium, err := openMedium()
		if err != nil {
			return err
		}
		defer closeMedium()

		var restored int
		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Restoring from %s", dir), func() error {
			bm := internal.NewBackupManager(dir)
			persistence := internal.NewKVPersistence(medium)
			var restoreErr error
			if restoreMerge {
				restored, restoreErr = bm.RestoreMerged(persistence)
			} else {
				restored, restoreErr = bm.Restore(persistence)
			}
			return restoreErr
		})
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(
			fmt.Sprintf("✅ Restored %d identities from %s", restored, dir)))
		return nil
	},
}

// resolveBackupDir returns --dir, or the backups directory under the data dir
func resolveBackupDir() (string, error) {
	if backupDir != "" {
		return filepath.Abs(backupDir)
	}
	paths, err := internal.GetStoragePaths(cfg.Storage.Path)
	if err != nil {
		return "", fmt.Errorf("failed to get storage paths: %w", err)
	}
	return paths.BackupDir, nil
}

func init() {
	rootCmd.AddCommand(backupCmd, restoreCmd)
	backupCmd.Flags().StringVar(&backupDir, "dir", "", "Backup directory (default: <data dir>/backups)")
	restoreCmd.Flags().StringVar(&backupDir, "dir", "", "Backup directory (default: <data dir>/backups)")
	restoreCmd.Flags().BoolVar(&restoreMerge, "merge", false, "Merge with stored conversations instead of replacing them")
}
