/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/substantialcattle5/mde/internal/erase"
	"github.com/substantialcattle5/mde/internal/progress"
	"github.com/substantialcattle5/mde/internal/report"
	"github.com/substantialcattle5/mde/internal/ui"
)

// eraseCmd represents the erase command
var eraseCmd = &cobra.Command{
	Use:   "erase [path]",
	Short: "Delete the duplicate files listed in duplicates.json",
	Long: `Delete the duplicate files recorded by a previous 'mde scan'.

The deletion is all-or-nothing: every planned file is first staged out of
place with an atomic rename, and the staged copies are only removed for good
once the whole batch has been staged successfully. A failure or interrupt
mid-staging restores every file to its original path.

One original per duplicate group is always kept. Files that vanished or
changed since the scan are skipped, never deleted.

Examples:
  mde erase              # erase duplicates recorded for the current directory
  mde erase ~/Pictures   # erase duplicates recorded for a specific directory
  mde erase --force .    # skip the confirmation prompt`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("resolve path: %v", err)
		}

		verbose, quiet := outputOptions(cmd)

		store := report.NewFileStore()
		sidecar := report.SidecarPath(absRoot)

		rpt, err := store.Load(sidecar)
		if err != nil {
			if errors.Is(err, report.ErrNotFound) {
				if !quiet {
					ui.Info("No %s found in %s", report.Filename, ui.Path(absRoot))
					ui.Info("Run 'mde scan' first to detect duplicates")
				}
				return nil
			}
			// Malformed or version-mismatched sidecars are fatal; no
			// destructive action is taken.
			return err
		}

		dupeCount := rpt.DuplicateCount()
		if dupeCount == 0 {
			if !quiet {
				ui.Info("No duplicates to erase")
			}
			return nil
		}

		if !quiet {
			ui.Info("Found %d duplicate files to erase from %d groups", dupeCount, len(rpt.Groups))
		}

		force, _ := cmd.Flags().GetBool("force")
		if !force {
			if err := ui.ConfirmErase(dupeCount, len(rpt.Groups)); err != nil {
				if errors.Is(err, ui.ErrAborted) {
					ui.Info("Erase cancelled, no files were deleted")
					return nil
				}
				return err
			}
		}

		progressMgr := progress.NewManager(progress.Options{Quiet: quiet, Verbose: verbose})
		ctx := progressMgr.SetupCancellation(context.Background())
		defer progressMgr.Cleanup()

		eraser := erase.New(absRoot)
		progressMgr.InitFileBar(dupeCount, "Staging files")
		eraser.OnStage = func(string) { progressMgr.Advance() }

		result, err := eraser.Erase(ctx, rpt)
		if err != nil {
			// The error states whether the rollback restored everything
			// or left staged copies behind for manual recovery.
			ui.Error("Erase failed: %v", err)
			return err
		}
		progressMgr.Finish()

		for _, path := range result.Skipped {
			ui.Warning("Skipped (no longer exists): %s", ui.Path(path))
		}
		for _, path := range result.Changed {
			ui.Warning("Skipped (changed since scan): %s", ui.Path(path))
		}

		// The sidecar is deleted only after the commit completed, success
		// or explicitly reported partial failure. A crash before this
		// point leaves it in place for a re-run.
		if err := store.Delete(sidecar); err != nil {
			return err
		}

		if result.PartialFailure() {
			for _, failed := range result.Failed {
				ui.Error("Failed to erase %s: %v", ui.Path(failed.Path), failed.Err)
			}
			ui.Warning("Erased %d of %d staged files", len(result.Deleted), len(result.Deleted)+len(result.Failed))
			return fmt.Errorf("erase completed with %d failures", len(result.Failed))
		}

		if !quiet {
			ui.Success("Successfully erased %d duplicate files", len(result.Deleted))
			ui.Success("Removed: %s", ui.Path(sidecar))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eraseCmd)

	eraseCmd.Flags().BoolP("force", "f", false, "Delete without confirmation")
}
