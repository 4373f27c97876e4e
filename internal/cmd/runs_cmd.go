package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/runger/methodmap/internal/runs"
)

var runsShowJSON bool

var runsCmd = &cobra.Command{
	Use:     "runs",
	Short:   "List, show and delete saved runs",
	GroupID: groupCore,
	Long: `Manage runs saved with --save or ctrl+s in the interactive session.

Examples:
  methodmap runs list
  methodmap runs show mri
  methodmap runs show --json mri
  methodmap runs rm mri`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print the rows of a saved run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsRmCmd = &cobra.Command{
	Use:     "rm <name>",
	Aliases: []string{"delete"},
	Short:   "Delete a saved run",
	Args:    cobra.ExactArgs(1),
	RunE:    runRunsRm,
}

func init() {
	runsShowCmd.Flags().BoolVar(&runsShowJSON, "json", false, "output rows as JSON")

	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsRmCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	applyColorMode()

	ctx, stop := commandContext(cmd)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	names, err := a.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(names) == 0 {
		fmt.Println("No saved runs.")
		return nil
	}

	fmt.Printf("%s%d saved run%s%s\n", colorBold, len(names), plural(len(names)), colorReset)
	fmt.Print(joinNames(names))
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	applyColorMode()

	ctx, stop := commandContext(cmd)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	name := args[0]
	rows, err := a.extractor.Load(ctx, name)
	if errors.Is(err, runs.ErrNotFound) {
		fmt.Printf("run not found: %s\n", name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	if runsShowJSON {
		return writeJSON(os.Stdout, rows)
	}
	printRows(os.Stdout, rows)
	return nil
}

func runRunsRm(cmd *cobra.Command, args []string) error {
	applyColorMode()

	ctx, stop := commandContext(cmd)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	name := args[0]
	err = a.store.Delete(ctx, name)
	if errors.Is(err, runs.ErrNotFound) {
		fmt.Printf("run not found: %s\n", name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	a.logger.Info("run deleted", "name", name)
	fmt.Printf("Deleted run %q\n", name)
	return nil
}
