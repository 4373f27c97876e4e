package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var pdfOut outputFlags

var pdfCmd = &cobra.Command{
	Use:     "pdf <file.pdf>",
	Short:   "Extract methods from a PDF document",
	GroupID: groupCore,
	Long: `Read the text of a PDF, ask the language model to pull out methods, tools,
datasets, metrics and domains, and print them as a table.

Only the first pdf.max_chars characters are sent to the model. Scanned
documents without a text layer produce no rows.

Examples:
  methodmap pdf paper.pdf
  methodmap pdf --save paper --summary paper.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runPDF,
}

func init() {
	addOutputFlags(pdfCmd, &pdfOut)

	rootCmd.AddCommand(pdfCmd)
}

func runPDF(cmd *cobra.Command, args []string) error {
	applyColorMode()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.extractor.FromPDF(ctx, data)
	return emitResult(ctx, a, res, pdfOut)
}
