package tui

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/runger/methodmap/internal/pipeline"
)

// Run starts the interactive session on the terminal and blocks until the
// user quits or ctx is cancelled. It returns the last extraction result.
func Run(ctx context.Context, backend Backend, history *pipeline.History, in io.Reader, out *os.File) (*pipeline.Result, error) {
	if out == nil {
		out = os.Stdout
	}
	// Apply the output's color profile to the default renderer so the
	// package-level styles pick it up.
	lipgloss.SetColorProfile(termenv.NewOutput(out).ColorProfile())

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(out),
	}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}

	p := tea.NewProgram(New(backend, history), opts...)
	final, err := p.Run()

	var res *pipeline.Result
	if m, ok := final.(Model); ok {
		m.cancelInflight()
		res = m.Result()
	}
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return res, nil
	}
	return res, err
}
