// Package ui draws the interactive progress view of `ably check` on a
// directory.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"ably/internal/engine"
)

// stageInfo is how far into a pass a stage is, and how the row names it.
type stageInfo struct {
	label    string
	fraction float64
}

var stages = map[engine.Stage]stageInfo{
	engine.StageLoad:     {"loading", 0.05},
	engine.StageScan:     {"scanning", 0.2},
	engine.StageValidate: {"validating", 0.5},
	engine.StageContrast: {"validating", 0.5},
	engine.StageEmit:     {"merging", 0.9},
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	cleanStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	findingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	queuedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const statusWidth = 12

type fileRow struct {
	path     string
	status   string
	fraction float64
	final    bool
	failed   bool
	problems int
}

func (r fileRow) style() lipgloss.Style {
	switch {
	case r.failed:
		return errorStyle
	case r.final && r.problems > 0:
		return findingStyle
	case r.final:
		return cleanStyle
	case r.fraction > 0:
		return activeStyle
	}
	return queuedStyle
}

type progressModel struct {
	title    string
	events   <-chan engine.Event
	spinner  spinner.Model
	bar      progress.Model
	rows     []fileRow
	byPath   map[string]int
	finished int
	problems int
	width    int
	done     bool
}

type eventMsg engine.Event

type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model with one row per file. It quits
// once events is closed.
func NewProgressModel(title string, files []string, events <-chan engine.Event) tea.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(activeStyle))
	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(76)),
		rows:    make([]fileRow, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, f := range files {
		m.rows[i] = fileRow{path: f, status: string(engine.StatusQueued)}
		m.byPath[f] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return closedMsg{}
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(engine.Event(msg)), m.next())
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// applyEvent updates the row of ev.File and returns the bar animation.
func (m *progressModel) applyEvent(ev engine.Event) tea.Cmd {
	i, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[i]
	if row.final {
		return nil
	}
	info := stages[ev.Stage]
	switch {
	case ev.Status == engine.StatusError:
		row.status, row.failed = "error", true
	case ev.Status == engine.StatusDone:
		row.problems = ev.Problems
		row.status = fmt.Sprintf("%d found", ev.Problems)
		if ev.Problems == 0 {
			row.status = "clean"
		}
	case ev.Status == engine.StatusWorking && info.label != "":
		row.status, row.fraction = info.label, info.fraction
	default:
		return nil
	}
	if ev.Final() {
		row.final, row.fraction = true, 1
		m.finished++
		m.problems += ev.Problems
	}

	total := 0.0
	for _, r := range m.rows {
		total += r.fraction
	}
	return m.bar.SetPercent(total / float64(len(m.rows)))
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder
	header := fmt.Sprintf("%s %s %d/%d", m.spinner.View(), m.title, m.finished, len(m.rows))
	if m.done {
		header = fmt.Sprintf("done: %s, %d problems", m.title, m.problems)
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusWidth-4, 20)
	for _, r := range m.rows {
		status := r.style().Render(fmt.Sprintf("%*s", statusWidth, r.status))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(r.path, nameWidth))
	}
	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	tail := "..."
	if width <= len(tail) {
		tail = ""
	}
	return runewidth.Truncate(value, width, tail)
}
