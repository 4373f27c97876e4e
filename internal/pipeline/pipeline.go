// Package pipeline runs one extraction end to end: gather source text, build
// the prompt, call the model and parse its answer into table rows.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/runger/methodmap/internal/extract"
	"github.com/runger/methodmap/internal/pdftext"
	"github.com/runger/methodmap/internal/prompt"
	"github.com/runger/methodmap/internal/provider"
	"github.com/runger/methodmap/internal/runs"
	"github.com/runger/methodmap/internal/sanitize"
	"github.com/runger/methodmap/internal/scholar"
	"github.com/runger/methodmap/internal/table"
)

var (
	// ErrNoAbstracts means the search returned nothing to prompt with.
	ErrNoAbstracts = errors.New("no abstracts found")
	// ErrNoProvider means no model backend is configured.
	ErrNoProvider = errors.New("no model provider configured")
	// ErrUnparseable means the model answered but no rows could be parsed.
	ErrUnparseable = errors.New("model output contained no parseable rows")
)

// Fetcher returns abstracts for a research goal. It never fails; an empty
// slice means nothing usable was found.
type Fetcher interface {
	FetchAbstracts(ctx context.Context, q scholar.SearchQuery) []string
}

// SourceKind says where a result's input text came from.
type SourceKind string

// Source kinds.
const (
	SourceGoal SourceKind = "goal"
	SourcePDF  SourceKind = "pdf"
)

// Source describes the input of an extraction.
type Source struct {
	Kind   SourceKind
	Goal   string // research goal, for SourceGoal
	Inputs int    // abstracts used, or 1 for a document
	Chars  int    // characters of source text sent to the model
}

// Result is the outcome of one extraction. Failures never surface as errors
// from the pipeline; they leave Rows empty and set Err.
type Result struct {
	ID       string
	Source   Source
	Rows     []table.Row
	Raw      string
	Provider string
	Strategy extract.Strategy
	Err      error
	Latency  time.Duration
}

// Empty reports whether the extraction produced no rows.
func (r *Result) Empty() bool {
	return r == nil || len(r.Rows) == 0
}

// Extractor holds the collaborators for an extraction run.
type Extractor struct {
	Fetcher   Fetcher
	Provider  provider.Provider
	Store     runs.Store
	History   *History
	Sanitizer *sanitize.Sanitizer // nil disables redaction
	Logger    *slog.Logger
	PDF       pdftext.Options
	Limit     int // abstracts per goal; <= 0 uses the search default
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func newResult(src Source) *Result {
	return &Result{
		ID:       uuid.New().String(),
		Source:   src,
		Rows:     []table.Row{},
		Strategy: extract.StrategyNone,
	}
}

// FromGoal searches for abstracts matching goal and extracts rows from them.
// The model is not called when the search yields no abstracts.
func (e *Extractor) FromGoal(ctx context.Context, goal string) *Result {
	goal = strings.TrimSpace(goal)
	q := scholar.SearchQuery{Goal: goal, Limit: e.Limit}
	res := newResult(Source{Kind: SourceGoal, Goal: goal})
	log := e.logger().With("id", res.ID)
	log.Info("extraction started", "source", SourceGoal, "goal", goal)

	defer func() {
		e.History.Add(Entry{Query: q, At: time.Now(), Rows: len(res.Rows), ResultID: res.ID})
	}()

	var abstracts []string
	if e.Fetcher != nil {
		abstracts = e.Fetcher.FetchAbstracts(ctx, q)
	}
	if len(abstracts) == 0 {
		res.Err = ErrNoAbstracts
		log.Warn("extraction skipped", "reason", res.Err)
		return res
	}

	abstracts = e.Sanitizer.SanitizeAll(abstracts)
	res.Source.Inputs = len(abstracts)
	src := prompt.Abstracts(abstracts)
	res.Source.Chars = len(src.Text)

	e.generate(ctx, log, res, prompt.Build(src))
	return res
}

// FromPDF extracts rows from the text of a PDF document.
func (e *Extractor) FromPDF(ctx context.Context, data []byte) *Result {
	res := newResult(Source{Kind: SourcePDF})
	log := e.logger().With("id", res.ID)
	log.Info("extraction started", "source", SourcePDF, "bytes", len(data))

	text, err := pdftext.Extract(data, e.PDF)
	if err != nil {
		res.Err = fmt.Errorf("pdf text extraction failed: %w", err)
		log.Warn("extraction skipped", "error", res.Err)
		return res
	}

	text = e.Sanitizer.Sanitize(text)
	res.Source.Inputs = 1
	res.Source.Chars = len(text)

	e.generate(ctx, log, res, prompt.Build(prompt.Document(text)))
	return res
}

// generate calls the model with p and fills res with the parsed rows.
func (e *Extractor) generate(ctx context.Context, log *slog.Logger, res *Result, p string) {
	if e.Provider == nil {
		res.Err = ErrNoProvider
		log.Error("model call skipped", "error", res.Err)
		return
	}
	res.Provider = e.Provider.Name()

	start := time.Now()
	raw, err := e.Provider.Generate(ctx, p)
	res.Latency = time.Since(start)
	if err != nil {
		res.Err = err
		log.Error("model call failed", "provider", res.Provider, "latency_ms", res.Latency.Milliseconds(), "error", err)
		return
	}
	res.Raw = raw
	log.Info("model call finished", "provider", res.Provider, "latency_ms", res.Latency.Milliseconds(), "output_chars", len(raw))

	res.Rows, res.Strategy = extract.RowsWithStrategy(raw)
	if res.Strategy == extract.StrategyNone {
		res.Err = ErrUnparseable
		log.Warn("model output not parseable", "raw_prefix", prefix(raw, 200))
		return
	}
	log.Info("extraction finished", "rows", len(res.Rows), "strategy", res.Strategy)
}

// Save persists the result's rows under name.
func (e *Extractor) Save(ctx context.Context, name string, res *Result) error {
	if e.Store == nil {
		return errors.New("no run store configured")
	}
	rows := []table.Row{}
	if res != nil {
		rows = res.Rows
	}
	if err := e.Store.Save(ctx, name, rows); err != nil {
		return err
	}
	e.logger().Info("run saved", "name", name, "rows", len(rows))
	return nil
}

// Load returns the rows saved under name. A missing run yields an error
// matching runs.ErrNotFound.
func (e *Extractor) Load(ctx context.Context, name string) ([]table.Row, error) {
	if e.Store == nil {
		return nil, errors.New("no run store configured")
	}
	return e.Store.Load(ctx, name)
}

// prefix returns at most the first n bytes of s, backing off to a rune
// boundary.
func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
