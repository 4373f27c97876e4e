package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/runger/methodmap/internal/pipeline"
	"github.com/runger/methodmap/internal/table"
	"github.com/runger/methodmap/internal/termtext"
	"github.com/runger/methodmap/internal/tui"
)

// emptyMessage is printed when an extraction or a run has no rows.
const emptyMessage = tui.EmptyMessage

const (
	minCellWidth = 6
	summaryLimit = 5
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// outputFlags are shared by the commands that run an extraction.
type outputFlags struct {
	save    string
	csvPath string
	json    bool
	summary bool
}

func addOutputFlags(c *cobra.Command, o *outputFlags) {
	c.Flags().StringVar(&o.save, "save", "", "save the result as a named run")
	c.Flags().StringVar(&o.csvPath, "csv", "", "write the result as CSV to `file`")
	c.Flags().BoolVar(&o.json, "json", false, "output the result as JSON")
	c.Flags().BoolVar(&o.summary, "summary", false, "show value counts for methods, tools and domains")
}

// resultOutput is the JSON shape of an extraction result.
type resultOutput struct {
	ID        string      `json:"id"`
	Source    string      `json:"source"`
	Goal      string      `json:"goal,omitempty"`
	Inputs    int         `json:"inputs"`
	Provider  string      `json:"provider,omitempty"`
	Strategy  string      `json:"strategy"`
	LatencyMS int64       `json:"latency_ms"`
	Rows      []table.Row `json:"rows"`
	Error     string      `json:"error,omitempty"`
}

// emitResult prints res according to o, then writes the CSV file and saves
// the run when asked to.
func emitResult(ctx context.Context, a *app, res *pipeline.Result, o outputFlags) error {
	if o.json {
		if err := writeResultJSON(os.Stdout, res); err != nil {
			return err
		}
	} else {
		printResult(os.Stdout, res, o.summary)
	}

	if o.csvPath != "" {
		if err := writeCSVFile(o.csvPath, res.Rows); err != nil {
			return err
		}
		if !o.json {
			fmt.Printf("%sWrote %d rows to %s%s\n", colorDim, len(res.Rows), o.csvPath, colorReset)
		}
	}

	if o.save != "" {
		if err := a.extractor.Save(ctx, o.save, res); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		if !o.json {
			fmt.Printf("%sSaved run %q%s\n", colorGreen, o.save, colorReset)
		}
	}
	return nil
}

// printResult renders res as a table with a one-line footer.
func printResult(w io.Writer, res *pipeline.Result, summary bool) {
	if res.Empty() {
		fmt.Fprintln(w, emptyMessage)
		if res != nil && res.Err != nil {
			fmt.Fprintf(w, "%s%v%s\n", colorDim, res.Err, colorReset)
		}
		return
	}

	fmt.Fprintln(w, renderRows(res.Rows, terminalWidth()))

	footer := fmt.Sprintf("%d rows", len(res.Rows))
	if res.Source.Inputs > 0 && res.Source.Kind == pipeline.SourceGoal {
		footer += fmt.Sprintf(" from %d abstracts", res.Source.Inputs)
	}
	if res.Provider != "" {
		footer += " via " + res.Provider
	}
	fmt.Fprintf(w, "%s%s%s\n", colorDim, footer, colorReset)

	if summary {
		printSummary(w, res.Rows)
	}
}

// printRows renders saved rows, or the empty message.
func printRows(w io.Writer, rows []table.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, emptyMessage)
		return
	}
	fmt.Fprintln(w, renderRows(rows, terminalWidth()))
}

// renderRows draws rows as a bordered table no wider than width. Columns
// share the width evenly and cells are truncated to fit.
func renderRows(rows []table.Row, width int) string {
	cols := table.Columns(rows)
	cw := cellWidth(len(cols), width)

	data := make([][]string, len(rows))
	for i, r := range rows {
		cells := make([]string, len(cols))
		for j, c := range cols {
			v, _ := r.Get(c)
			cells[j] = runewidth.Truncate(termtext.Clean(v), cw, "…")
		}
		data[i] = cells
	}

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = runewidth.Truncate(c, cw, "…")
	}

	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

// cellWidth returns the content width per column: the terminal width minus
// one border per column plus one, and two cells of padding per column.
func cellWidth(n, width int) int {
	if n == 0 {
		return width
	}
	w := (width - (n + 1) - 2*n) / n
	if w < minCellWidth {
		return minCellWidth
	}
	return w
}

// printSummary prints the most frequent methods, tools and domains.
func printSummary(w io.Writer, rows []table.Row) {
	fmt.Fprintln(w)
	for _, s := range []struct{ title, column string }{
		{"Top Methods", table.ColumnMethod},
		{"Tool Distribution", table.ColumnTools},
		{"Domain Breakdown", table.ColumnDomain},
	} {
		fmt.Fprintf(w, "%s%s%s\n", colorBold, s.title, colorReset)
		counts := table.Counts(rows, s.column)
		if len(counts) == 0 {
			fmt.Fprintf(w, "  %s(none)%s\n", colorDim, colorReset)
			continue
		}
		if len(counts) > summaryLimit {
			counts = counts[:summaryLimit]
		}
		width := 0
		for _, c := range counts {
			width = max(width, runewidth.StringWidth(c.Value))
		}
		width = min(width, 40)
		for _, c := range counts {
			v := runewidth.FillRight(runewidth.Truncate(c.Value, width, "…"), width)
			fmt.Fprintf(w, "  %s%s%s  %d\n", colorCyan, v, colorReset, c.N)
		}
	}
}

func writeResultJSON(w io.Writer, res *pipeline.Result) error {
	out := resultOutput{Rows: []table.Row{}, Strategy: "none"}
	if res != nil {
		out = resultOutput{
			ID:        res.ID,
			Source:    string(res.Source.Kind),
			Goal:      res.Source.Goal,
			Inputs:    res.Source.Inputs,
			Provider:  res.Provider,
			Strategy:  string(res.Strategy),
			LatencyMS: res.Latency.Milliseconds(),
			Rows:      res.Rows,
		}
		if out.Rows == nil {
			out.Rows = []table.Row{}
		}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
	}
	return writeJSON(w, out)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeCSVFile writes rows to path, or to stdout when path is "-".
func writeCSVFile(path string, rows []table.Row) error {
	if path == "-" {
		return table.WriteCSV(os.Stdout, rows)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := table.WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// plural returns "s" unless n is 1.
func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// joinNames lists names one per line with an indent.
func joinNames(names []string) string {
	var b strings.Builder
	for _, n := range names {
		b.WriteString("  ")
		b.WriteString(n)
		b.WriteByte('\n')
	}
	return b.String()
}
