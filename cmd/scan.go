/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/substantialcattle5/mde/internal/config"
	"github.com/substantialcattle5/mde/internal/dupes"
	"github.com/substantialcattle5/mde/internal/hasher"
	"github.com/substantialcattle5/mde/internal/progress"
	"github.com/substantialcattle5/mde/internal/report"
	"github.com/substantialcattle5/mde/internal/scan"
	"github.com/substantialcattle5/mde/internal/ui"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a directory for duplicate media files",
	Long: `Scan a directory tree for duplicate media files.

Every file is digested with SHA-256 to find byte-exact copies; recognized
raster images additionally get a perceptual fingerprint so re-encodes and
resizes of the same picture are caught too. The result is written to a
duplicates.json sidecar in the scanned directory for a later 'mde erase'.

Examples:
  mde scan                         # scan the current directory
  mde scan ~/Pictures              # scan a specific directory
  mde scan --media images ~/inbox  # only consider images
  mde scan --include-hidden .      # include dotfiles`,
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

		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		opts, workers, err := scanOptions(cmd, cfg)
		if err != nil {
			return err
		}

		verbose, quiet := outputOptions(cmd)
		progressMgr := progress.NewManager(progress.Options{Quiet: quiet, Verbose: verbose})
		ctx := progressMgr.SetupCancellation(context.Background())
		defer progressMgr.Cleanup()

		files, err := scan.ListFiles([]string{absRoot}, opts)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			ui.Info("No media files found in %s", ui.Path(absRoot))
			return nil
		}
		progressMgr.PrintInfo("Found %d media files\n", len(files))

		progressMgr.InitFileBar(len(files), "Hashing files")
		records, err := hasher.HashAll(ctx, files, workers, func(rec hasher.FileRecord) {
			progressMgr.Advance()
			if rec.Err != nil {
				progressMgr.PrintVerbose("could not read %s: %v", rec.Path, rec.Err)
			}
		})
		if err != nil {
			return fmt.Errorf("scan interrupted: %v", err)
		}
		progressMgr.Finish()

		rpt := dupes.Group(records, []string{absRoot})

		sidecar, _ := cmd.Flags().GetString("output")
		if sidecar == "" {
			sidecar = report.SidecarPath(absRoot)
		}
		if err := report.NewFileStore().Save(sidecar, rpt); err != nil {
			return err
		}

		if !quiet {
			ui.PrintScanSummary(rpt, verbose)
			fmt.Println()
			ui.Success("Report written to %s", ui.Path(sidecar))
			if rpt.DuplicateCount() > 0 {
				ui.Info("Run 'mde erase %s' to remove the duplicates", root)
			}
		}
		return nil
	},
}

// scanOptions merges config-file defaults with command-line flags; flags win
// when set explicitly.
func scanOptions(cmd *cobra.Command, cfg *config.Config) (scan.Options, int, error) {
	opts := scan.Options{
		Recursive:     *cfg.Recursive,
		IncludeHidden: cfg.IncludeHidden,
	}
	if cmd.Flags().Changed("recursive") {
		opts.Recursive, _ = cmd.Flags().GetBool("recursive")
	}
	if cmd.Flags().Changed("include-hidden") {
		opts.IncludeHidden, _ = cmd.Flags().GetBool("include-hidden")
	}

	mediaFlag := cfg.Media
	if cmd.Flags().Changed("media") {
		mediaFlag, _ = cmd.Flags().GetString("media")
	}
	media, err := scan.ParseMediaFilter(mediaFlag)
	if err != nil {
		return opts, 0, err
	}
	opts.Media = media

	workers := cfg.Workers
	if cmd.Flags().Changed("workers") {
		workers, _ = cmd.Flags().GetInt("workers")
	}
	return opts, workers, nil
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolP("recursive", "r", true, "Scan subdirectories recursively")
	scanCmd.Flags().Bool("include-hidden", false, "Include hidden files (starting with '.')")
	scanCmd.Flags().StringP("media", "m", "all", "Media filter: all, images or videos")
	scanCmd.Flags().StringP("output", "o", "", "Sidecar output path (default duplicates.json in the scanned directory)")
	scanCmd.Flags().IntP("workers", "w", 0, "Number of hashing workers (default: CPU count)")
}
