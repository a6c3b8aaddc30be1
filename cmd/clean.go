/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/substantialcattle5/mde/internal/report"
	"github.com/substantialcattle5/mde/internal/ui"
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove the duplicates.json sidecar from a directory",
	Long: `Remove the duplicates.json sidecar written by a previous scan without
deleting any media files.

Example:
  mde clean ~/Pictures`,
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

		_, quiet := outputOptions(cmd)

		store := report.NewFileStore()
		sidecar := report.SidecarPath(absRoot)

		if !store.Exists(sidecar) {
			if !quiet {
				ui.Info("No %s found in %s", report.Filename, ui.Path(absRoot))
			}
			return nil
		}

		if err := store.Delete(sidecar); err != nil {
			return err
		}
		if !quiet {
			ui.Success("Removed: %s", ui.Path(sidecar))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
