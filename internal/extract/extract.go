// Package extract recovers extraction rows from raw language-model output.
//
// Model output is not guaranteed to be well-formed, so parsing is best-effort:
// candidates are tried in priority order and the first one that is a valid
// JSON array wins. When nothing parses the result is an empty row set, never
// an error.
package extract

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/runger/methodmap/internal/table"
)

// Strategy names the candidate that produced a parse.
type Strategy string

// Strategies, in the order they are attempted.
const (
	StrategyStrict    Strategy = "strict"    // whole output is a JSON array
	StrategyFenced    Strategy = "fenced"    // array inside a ```json fence
	StrategyBracketed Strategy = "bracketed" // first [ {...} ] substring
	StrategyNone      Strategy = "none"      // nothing usable
)

// Pattern is one candidate-selection step.
type Pattern struct {
	Name Strategy
	// Candidate returns the text to parse, or "" when the step does not apply.
	Candidate func(string) string
}

var (
	fenceRE   = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")
	bracketRE = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)
)

// Patterns contains all candidate steps in priority order.
var Patterns = []Pattern{
	{
		Name:      StrategyStrict,
		Candidate: func(s string) string { return s },
	},
	{
		Name: StrategyFenced,
		Candidate: func(s string) string {
			m := fenceRE.FindStringSubmatch(s)
			if len(m) < 2 {
				return ""
			}
			return strings.TrimSpace(m[1])
		},
	},
	{
		// Non-greedy, dot matches newline; only the first match is tried.
		Name:      StrategyBracketed,
		Candidate: func(s string) string { return bracketRE.FindString(s) },
	},
}

// Rows parses raw model output into rows. It never fails: unusable output
// yields an empty, non-nil slice.
func Rows(raw string) []table.Row {
	rows, _ := RowsWithStrategy(raw)
	return rows
}

// RowsWithStrategy is Rows that also reports which step succeeded.
func RowsWithStrategy(raw string) ([]table.Row, Strategy) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return []table.Row{}, StrategyNone
	}
	for _, p := range Patterns {
		candidate := p.Candidate(text)
		if candidate == "" {
			continue
		}
		if rows, ok := parseArray(candidate); ok {
			return rows, p.Name
		}
	}
	return []table.Row{}, StrategyNone
}

// parseArray strictly parses s as a JSON array of objects. Elements that are
// not objects are skipped.
func parseArray(s string) ([]table.Row, bool) {
	if !gjson.Valid(s) {
		return nil, false
	}
	arr := gjson.Parse(s)
	if !arr.IsArray() {
		return nil, false
	}
	rows := []table.Row{}
	arr.ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			rows = append(rows, table.FromJSON(item))
		}
		return true
	})
	return rows, true
}
