/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mde",
	Short: "mde - find and remove duplicate media files",
	Long: `mde scans directory trees for duplicate media files, both byte-exact
copies and visually similar re-encodes of the same picture, and removes the
redundant copies under an all-or-nothing guarantee.

A scan writes its findings to a duplicates.json sidecar in the scanned
directory; a later erase deletes the redundant copies it lists, or none at
all if anything goes wrong mid-operation.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Disable progress bars and reduce output")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default is $HOME/.mde.yaml)")
}

// outputOptions reads the persistent verbosity flags.
func outputOptions(cmd *cobra.Command) (verbose, quiet bool) {
	verbose, _ = cmd.Flags().GetBool("verbose")
	quiet, _ = cmd.Flags().GetBool("quiet")
	return verbose, quiet
}
