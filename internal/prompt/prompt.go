// Package prompt renders the instruction sent to the model for extraction.
package prompt

import (
	"fmt"
	"strings"

	"github.com/runger/methodmap/internal/table"
)

// Kind identifies what the source text is.
type Kind int

const (
	KindAbstracts Kind = iota // abstracts returned by paper search
	KindDocument              // text extracted from a PDF
)

// Source is the text the model extracts from.
type Source struct {
	Kind Kind
	Text string
}

// Abstracts builds a source from search abstracts, joined by a blank line.
func Abstracts(abstracts []string) Source {
	return Source{Kind: KindAbstracts, Text: strings.Join(abstracts, "\n\n")}
}

// Document builds a source from extracted document text.
func Document(text string) Source {
	return Source{Kind: KindDocument, Text: text}
}

// fieldHints describes each output field for the model.
var fieldHints = map[string]string{
	table.ColumnMethod:  "the experimental method or model used",
	table.ColumnTools:   "tools, libraries or software",
	table.ColumnDataset: "dataset(s) the experiment ran on",
	table.ColumnMetrics: "evaluation metrics reported",
	table.ColumnDomain:  "subfield or research domain",
}

// FieldList is the literal field list embedded in every prompt.
func FieldList() string {
	return strings.Join(table.Fields, ", ")
}

// Build renders the extraction instruction for src. It is deterministic: the
// same source always yields the same prompt text.
func Build(src Source) string {
	var sb strings.Builder

	subject, heading := "research abstracts", "Abstracts"
	if src.Kind == KindDocument {
		subject, heading = "research paper excerpt", "Paper excerpt"
	}

	fmt.Fprintf(&sb, "You are an expert scientific assistant. Given the following %s, extract a structured table with the following fields: %s\n", subject, FieldList())
	for _, f := range table.Fields {
		fmt.Fprintf(&sb, "- %s: %s\n", f, fieldHints[f])
	}

	sb.WriteString("\nRespond in valid JSON list format like:\n")
	sb.WriteString(exampleShape())
	sb.WriteString("\nUse a JSON string for every value and null when a field is not mentioned.\n")
	sb.WriteString("Only output the JSON list. Do not add any explanation before or after it.\n")

	fmt.Fprintf(&sb, "\n%s:\n%s\n", heading, strings.TrimSpace(src.Text))

	return sb.String()
}

// exampleShape renders the expected array shape using the canonical fields.
func exampleShape() string {
	parts := make([]string, len(table.Fields))
	for i, f := range table.Fields {
		parts[i] = fmt.Sprintf("%q: \"...\"", f)
	}
	return "[\n  {" + strings.Join(parts, ", ") + "},\n  ...\n]\n"
}
