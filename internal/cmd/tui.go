package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/runger/methodmap/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:     "tui",
	Short:   "Start an interactive extraction session",
	GroupID: groupCore,
	Long: `Start a full-screen session: type a research goal, press enter to extract,
ctrl+s to save the table as a run, tab for value counts and up/down to recall
earlier goals from this session.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	_, err = tui.Run(ctx, a.extractor, a.extractor.History, nil, os.Stdout)
	return err
}
