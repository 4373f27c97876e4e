// Package tui implements the interactive methodmap session: a goal prompt, a
// results table, in-memory search history recall and saving runs by name.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	btable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/runger/methodmap/internal/pipeline"
	"github.com/runger/methodmap/internal/table"
	"github.com/runger/methodmap/internal/termtext"
)

// EmptyMessage is shown when an extraction yields no rows.
const EmptyMessage = "No methods found or extraction failed."

const (
	recallLimit   = 50
	summaryTop    = 3
	minColWidth   = 8
	defaultHeight = 10
)

// Backend runs extractions and persists their results.
// *pipeline.Extractor satisfies it.
type Backend interface {
	FromGoal(ctx context.Context, goal string) *pipeline.Result
	Save(ctx context.Context, name string, res *pipeline.Result) error
}

type uiState int

const (
	stateIdle    uiState = iota // waiting for a goal
	stateLoading                // extraction in progress
	stateLoaded                 // rows on screen
	stateEmpty                  // extraction finished without rows
	stateNaming                 // typing a run name to save under
)

// extractDoneMsg is sent when an async extraction completes.
type extractDoneMsg struct {
	requestID uint64
	result    *pipeline.Result
}

// saveDoneMsg is sent when a save completes.
type saveDoneMsg struct {
	name string
	err  error
}

// Model is the Bubble Tea model for the interactive session.
type Model struct {
	state   uiState
	goal    textinput.Model
	name    textinput.Model
	spinner spinner.Model
	table   btable.Model

	backend Backend
	history *pipeline.History
	result  *pipeline.Result

	status      string
	statusErr   bool
	showSummary bool

	// recall walks history goals matching recallPrefix; recallIdx is -1
	// while the user is editing freely.
	recall       []string
	recallIdx    int
	recallPrefix string

	requestID     uint64 // monotonic counter for stale detection
	cancelExtract context.CancelFunc

	width  int
	height int
}

// New creates a session model.
func New(backend Backend, history *pipeline.History) Model {
	goal := textinput.New()
	goal.Placeholder = "Research goal, e.g. Alzheimer's detection using MRI"
	goal.Prompt = "goal> "
	goal.CharLimit = 500
	goal.Focus()

	name := textinput.New()
	name.Placeholder = "run name"
	name.Prompt = "save as> "
	name.CharLimit = 128

	return Model{
		state:     stateIdle,
		goal:      goal,
		name:      name,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		table:     btable.New(),
		backend:   backend,
		history:   history,
		recallIdx: -1,
	}
}

// Result returns the last extraction result, or nil.
func (m Model) Result() *pipeline.Result {
	return m.result
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.goal.Width = max(msg.Width-len(m.goal.Prompt)-1, 10)
		m.rebuildTable()
		return m, nil

	case extractDoneMsg:
		return m.handleExtractDone(msg)

	case saveDoneMsg:
		return m.handleSaveDone(msg)

	case spinner.TickMsg:
		if m.state != stateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateInputs(msg)
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state == stateNaming {
		return m.handleNamingKey(msg)
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		m.cancelInflight()
		return m, tea.Quit

	case tea.KeyEsc:
		if m.state == stateLoading {
			m.cancelInflight()
			m.requestID++ // drop the pending result
			m.state = stateIdle
			m.setStatus("Cancelled", false)
			return m, nil
		}
		m.cancelInflight()
		return m, tea.Quit

	case tea.KeyEnter:
		if m.state == stateLoading {
			return m, nil
		}
		goal := strings.TrimSpace(m.goal.Value())
		if goal == "" {
			return m, nil
		}
		m.resetRecall()
		return m, m.startExtract(goal)

	case tea.KeyUp:
		m.recallOlder()
		return m, nil

	case tea.KeyDown:
		m.recallNewer()
		return m, nil

	case tea.KeyCtrlS:
		if m.state != stateLoaded {
			return m, nil
		}
		m.state = stateNaming
		m.goal.Blur()
		m.name.Reset()
		return m, m.name.Focus()

	case tea.KeyTab:
		if m.state == stateLoaded {
			m.showSummary = !m.showSummary
		}
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyHome, tea.KeyEnd:
		var cmd tea.Cmd
		m.table.Focus()
		m.table, cmd = m.table.Update(msg)
		m.table.Blur()
		return m, cmd
	}

	m.resetRecall()
	return m.updateInputs(msg)
}

// handleNamingKey processes input while a run name is being typed.
func (m Model) handleNamingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.cancelInflight()
		return m, tea.Quit

	case tea.KeyEsc:
		m.leaveNaming()
		return m, m.goal.Focus()

	case tea.KeyEnter:
		name := strings.TrimSpace(m.name.Value())
		if name == "" {
			return m, nil
		}
		m.leaveNaming()
		return m, tea.Batch(m.goal.Focus(), m.saveCmd(name))
	}

	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

func (m *Model) leaveNaming() {
	m.name.Blur()
	m.state = stateLoaded
}

// updateInputs forwards a message to the focused text input.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.state == stateNaming {
		m.name, cmd = m.name.Update(msg)
	} else {
		m.goal, cmd = m.goal.Update(msg)
	}
	return m, cmd
}

// handleExtractDone processes the result of an async extraction.
func (m Model) handleExtractDone(msg extractDoneMsg) (tea.Model, tea.Cmd) {
	// Discard stale responses.
	if msg.requestID != m.requestID {
		return m, nil
	}
	m.cancelInflight()
	m.result = msg.result
	m.showSummary = false

	if msg.result.Empty() {
		m.state = stateEmpty
		m.setStatus(EmptyMessage, true)
		m.rebuildTable()
		return m, nil
	}

	m.state = stateLoaded
	m.setStatus(describe(msg.result), false)
	m.rebuildTable()
	return m, nil
}

// handleSaveDone reports the outcome of a save.
func (m Model) handleSaveDone(msg saveDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setStatus(fmt.Sprintf("Save failed: %v", msg.err), true)
		return m, nil
	}
	m.setStatus(fmt.Sprintf("Saved run %q", msg.name), false)
	return m, nil
}

// startExtract cancels any in-flight extraction, increments requestID, and
// returns a command that runs the backend.
func (m *Model) startExtract(goal string) tea.Cmd {
	m.cancelInflight()
	m.requestID++
	m.state = stateLoading
	m.setStatus("Extracting methods for "+goal, false)

	reqID := m.requestID
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelExtract = cancel

	b := m.backend
	run := func() tea.Msg {
		return extractDoneMsg{requestID: reqID, result: b.FromGoal(ctx, goal)}
	}
	return tea.Batch(m.spinner.Tick, run)
}

// saveCmd persists the current result under name.
func (m Model) saveCmd(name string) tea.Cmd {
	b := m.backend
	res := m.result
	return func() tea.Msg {
		return saveDoneMsg{name: name, err: b.Save(context.Background(), name, res)}
	}
}

// cancelInflight cancels any in-progress extraction context.
func (m *Model) cancelInflight() {
	if m.cancelExtract != nil {
		m.cancelExtract()
		m.cancelExtract = nil
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// recallOlder replaces the goal with the next older history entry that
// starts with what was typed before recall began.
func (m *Model) recallOlder() {
	if m.recallIdx < 0 {
		m.recallPrefix = m.goal.Value()
		m.recall = m.history.Goals(m.recallPrefix, recallLimit)
	}
	if m.recallIdx+1 >= len(m.recall) {
		return
	}
	m.recallIdx++
	m.goal.SetValue(m.recall[m.recallIdx])
	m.goal.CursorEnd()
}

// recallNewer walks back toward the text typed before recall began.
func (m *Model) recallNewer() {
	if m.recallIdx < 0 {
		return
	}
	m.recallIdx--
	if m.recallIdx < 0 {
		m.goal.SetValue(m.recallPrefix)
	} else {
		m.goal.SetValue(m.recall[m.recallIdx])
	}
	m.goal.CursorEnd()
}

func (m *Model) resetRecall() {
	m.recall = nil
	m.recallIdx = -1
	m.recallPrefix = ""
}

// rebuildTable renders the current rows into a fresh table sized for the
// terminal. Column widths share the available width evenly.
func (m *Model) rebuildTable() {
	if m.result.Empty() {
		m.table = btable.New()
		return
	}
	rows := m.result.Rows
	names := table.Columns(rows)

	avail := m.width - 2*len(names)
	if m.width <= 0 {
		avail = 100
	}
	w := max(avail/len(names), minColWidth)

	cols := make([]btable.Column, len(names))
	for i, n := range names {
		cols[i] = btable.Column{Title: n, Width: w}
	}
	cells := make([]btable.Row, len(rows))
	for i, r := range rows {
		cell := make(btable.Row, len(names))
		for j, n := range names {
			v, _ := r.Get(n)
			cell[j] = termtext.Clean(v)
		}
		cells[i] = cell
	}

	m.table = btable.New(
		btable.WithColumns(cols),
		btable.WithRows(cells),
		btable.WithHeight(m.tableHeight()),
		btable.WithStyles(tableStyles()),
	)
}

// tableHeight returns the number of visible table rows (terminal height
// minus title, input, status and help lines).
func (m Model) tableHeight() int {
	const chrome = 8
	h := m.height - chrome
	if m.showSummary {
		h -= summaryTop + 1
	}
	if h < 3 {
		h = defaultHeight
	}
	return h
}

// describe summarizes a successful result on one line.
func describe(r *pipeline.Result) string {
	s := fmt.Sprintf("%d rows", len(r.Rows))
	if r.Source.Inputs > 0 {
		s += fmt.Sprintf(" from %d abstracts", r.Source.Inputs)
	}
	if r.Provider != "" {
		s += " via " + r.Provider
	}
	if r.Latency > 0 {
		s += fmt.Sprintf(" in %.1fs", r.Latency.Seconds())
	}
	return s
}

// --- View rendering ---

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
)

func tableStyles() btable.Styles {
	s := btable.DefaultStyles()
	s.Header = s.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("240"))
	s.Selected = lipgloss.NewStyle()
	return s
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("methodmap"))
	b.WriteString("\n\n")
	b.WriteString(m.goal.View())
	b.WriteRune('\n')
	if m.state == stateNaming {
		b.WriteString(m.name.View())
		b.WriteRune('\n')
	}
	b.WriteString(m.viewStatus())
	b.WriteString("\n\n")

	if content := m.viewContent(); content != "" {
		b.WriteString(content)
		b.WriteRune('\n')
	}

	b.WriteString(dimStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) viewStatus() string {
	switch {
	case m.state == stateLoading:
		return m.spinner.View() + " " + statusStyle.Render(m.truncate(m.status, 2))
	case m.status == "":
		return ""
	case m.statusErr:
		return errorStyle.Render(m.truncate(m.status, 0))
	default:
		return statusStyle.Render(m.truncate(m.status, 0))
	}
}

// viewContent renders the results table and optional summary.
func (m Model) viewContent() string {
	if m.state == stateIdle || m.state == stateLoading || m.state == stateEmpty {
		return ""
	}
	if m.result.Empty() {
		return ""
	}
	out := m.table.View()
	if m.showSummary {
		out += "\n\n" + m.viewSummary()
	}
	return out
}

// viewSummary renders the most frequent values of the main columns.
func (m Model) viewSummary() string {
	lines := make([]string, 0, 3)
	for _, col := range []struct{ label, column string }{
		{"Top methods", table.ColumnMethod},
		{"Tools", table.ColumnTools},
		{"Domains", table.ColumnDomain},
	} {
		counts := table.Counts(m.result.Rows, col.column)
		if len(counts) > summaryTop {
			counts = counts[:summaryTop]
		}
		parts := make([]string, len(counts))
		for i, c := range counts {
			parts[i] = fmt.Sprintf("%s (%d)", c.Value, c.N)
		}
		if len(parts) == 0 {
			parts = []string{"-"}
		}
		lines = append(lines, labelStyle.Render(col.label+":")+" "+m.truncate(strings.Join(parts, ", "), len(col.label)+2))
	}
	return strings.Join(lines, "\n")
}

func (m Model) helpLine() string {
	switch m.state {
	case stateNaming:
		return "enter save • esc back"
	case stateLoading:
		return "esc cancel • ctrl+c quit"
	case stateLoaded:
		return "enter search • ↑/↓ history • pgup/pgdn scroll • tab summary • ctrl+s save • esc quit"
	default:
		return "enter search • ↑/↓ history • esc quit"
	}
}

// truncate shortens s to the terminal width minus reserved cells.
func (m Model) truncate(s string, reserved int) string {
	if m.width <= reserved+1 {
		return s
	}
	return termtext.Truncate(s, m.width-reserved)
}
