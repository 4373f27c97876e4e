// Package pdftext pulls plain text out of an uploaded PDF for prompting.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Defaults for Options.
const (
	DefaultMinChars = 100
	DefaultMaxChars = 3500
)

// ErrNoText means the document has too little readable text (for example a
// scanned image without an OCR layer).
var ErrNoText = errors.New("pdf has too little readable text")

// Options bounds the extracted text.
type Options struct {
	MinChars int // below this the document counts as unreadable
	MaxChars int // text is truncated to this many characters
}

// DefaultOptions returns the default bounds.
func DefaultOptions() Options {
	return Options{MinChars: DefaultMinChars, MaxChars: DefaultMaxChars}
}

// pageSource yields page text in document order; pages are 1-based.
type pageSource interface {
	NumPage() int
	PageText(i int) (string, error)
}

type pdfPages struct {
	r *pdf.Reader
}

func (p pdfPages) NumPage() int { return p.r.NumPage() }

func (p pdfPages) PageText(i int) (string, error) {
	page := p.r.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// Extract opens data as a PDF, concatenates the text of every page with
// newline separators and truncates it to opts.MaxChars. It returns ErrNoText
// when the concatenated text is shorter than opts.MinChars.
func Extract(data []byte, opts Options) (text string, err error) {
	if opts.MinChars <= 0 {
		opts.MinChars = DefaultMinChars
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}

	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	full, err := collect(pdfPages{r: r})
	if err != nil {
		return "", err
	}
	return bound(full, opts)
}

// collect joins per-page text in document order. Unreadable pages are
// skipped rather than failing the whole document.
func collect(src pageSource) (string, error) {
	n := src.NumPage()
	if n == 0 {
		return "", ErrNoText
	}
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		t, err := src.PageText(i)
		if err != nil {
			continue
		}
		pages = append(pages, t)
	}
	return strings.Join(pages, "\n"), nil
}

// bound applies the minimum-length check and the character budget.
func bound(text string, opts Options) (string, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < opts.MinChars {
		return "", ErrNoText
	}
	return truncateRunes(text, opts.MaxChars), nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
