package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchLimit int
	searchOut   outputFlags
)

var searchCmd = &cobra.Command{
	Use:     "search <goal...>",
	Short:   "Extract methods from abstracts matching a research goal",
	GroupID: groupCore,
	Long: `Search the paper index for abstracts matching a research goal, ask the
language model to pull out methods, tools, datasets, metrics and domains,
and print them as a table.

Examples:
  methodmap search Alzheimer's detection using MRI
  methodmap search --limit 10 "graph neural networks for drug discovery"
  methodmap search --save mri --csv mri.csv "MRI segmentation"
  methodmap search --json --summary "speech emotion recognition"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "number of abstracts to fetch (default from config)")
	addOutputFlags(searchCmd, &searchOut)

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	applyColorMode()

	goal := strings.TrimSpace(strings.Join(args, " "))
	if goal == "" {
		return errors.New("research goal must not be empty")
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if searchLimit > 0 {
		a.extractor.Limit = searchLimit
	}

	res := a.extractor.FromGoal(ctx, goal)
	return emitResult(ctx, a, res, searchOut)
}
