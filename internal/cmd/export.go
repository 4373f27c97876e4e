package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runger/methodmap/internal/runs"
	"github.com/runger/methodmap/internal/table"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:     "export <run>",
	Short:   "Export a saved run as CSV",
	GroupID: groupCore,
	Long: `Write the rows of a saved run as CSV. The header holds the Method, Tools,
Dataset, Metrics and Domain columns followed by any extra columns.

Examples:
  methodmap export mri                       # CSV to stdout
  methodmap export mri -o methods_table.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "output `file` (- for stdout, e.g. "+table.DefaultCSVName+")")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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

	return writeCSVFile(exportOutput, rows)
}
