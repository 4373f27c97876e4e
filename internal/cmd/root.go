package cmd

import (
	"github.com/spf13/cobra"
)

// Command groups shown in help output.
const (
	groupCore  = "core"
	groupSetup = "setup"
)

var rootCmd = &cobra.Command{
	Use:   "methodmap",
	Short: "map the experimental methods used in a research area",
	Long: `methodmap - map the experimental methods used in a research area
  - search a research goal → table of methods, tools, datasets, metrics, domains
  - pdf a paper → the same table for one document
  - save, list and export runs as CSV`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupCore, Title: "Extraction Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "color output: auto, always, or never")

	rootCmd.AddCommand(versionCmd)
}
