package tui

import (
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"clearurls/internal/config"
	"clearurls/internal/metrics"
	"clearurls/internal/state"
	"clearurls/pkg/cleaner"
)

type Theme struct {
	border      lipgloss.Style
	title       lipgloss.Style
	label       lipgloss.Style
	head        lipgloss.Style
	row         lipgloss.Style
	rowSelected lipgloss.Style
	removed     lipgloss.Style
	kept        lipgloss.Style
	bad         lipgloss.Style
	footer      lipgloss.Style
}

func defaultTheme() Theme {
	b := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	return Theme{
		border:      b.BorderForeground(lipgloss.Color("63")),
		title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
		label:       lipgloss.NewStyle().Faint(true),
		head:        lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true),
		row:         lipgloss.NewStyle(),
		rowSelected: lipgloss.NewStyle().Bold(true),
		removed:     lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("203")),
		kept:        lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		bad:         lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		footer:      lipgloss.NewStyle().Faint(true),
	}
}

type focusArea int

const (
	focusInput focusArea = iota
	focusList
)

// entry is one URL cleaned during this session.
type entry struct {
	in      string
	out     string
	changed bool
	err     error
	at      time.Time
}

type historyMsg struct {
	rows []state.HistoryRow
	err  error
}

type copiedMsg struct{ err error }

// Model is an interactive cleaner: paste a URL, see what was stripped, copy the result.
type Model struct {
	c        *cleaner.Cleaner
	cfg      *config.Config
	st       *state.DB
	mx       *metrics.Manager
	th       Theme
	w, h     int
	input    textinput.Model
	focus    focusArea
	results  []entry
	selected int
	history  []state.HistoryRow
	showHelp bool
	status   string
	err      error
}

// New builds the model. st and mx may be nil.
func New(c *cleaner.Cleaner, cfg *config.Config, st *state.DB, mx *metrics.Manager) *Model {
	ti := textinput.New()
	ti.Prompt = "URL> "
	ti.Placeholder = "paste a link and press enter"
	ti.CharLimit = 8192
	ti.Focus()
	if cfg == nil {
		cfg = config.Default()
	}
	return &Model{c: c, cfg: cfg, st: st, mx: mx, th: defaultTheme(), input: ti}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadHistory())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height
		m.input.Width = msg.Width - 12
		return m, nil
	case historyMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.history = msg.rows
		return m, nil
	case copiedMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
		} else {
			m.status = "copied to clipboard"
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+r":
			m.toggleReferral()
			return m, nil
		}
		if m.focus == focusInput {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		raw := strings.TrimSpace(m.input.Value())
		if raw == "" {
			return m, nil
		}
		m.input.Reset()
		return m, m.clean(raw)
	case "esc", "tab":
		m.focus = focusList
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "i", "/":
		m.focus = focusInput
		return m, m.input.Focus()
	case "j", "down":
		if m.selected < len(m.results)-1 {
			m.selected++
		}
	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
	case "c", "y":
		if e, ok := m.current(); ok && e.err == nil {
			return m, copyCmd(e.out)
		}
	case "e":
		// edit the selected input again
		if e, ok := m.current(); ok {
			m.input.SetValue(e.in)
			m.focus = focusInput
			return m, m.input.Focus()
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// clean runs the cleaner and records the outcome. Cleaning is quick and
// pure so it happens inline; persisting goes through a command.
func (m *Model) clean(raw string) tea.Cmd {
	res, err := m.c.CleanURL(raw)
	e := entry{in: raw, out: res.URL, changed: res.Changed, err: err, at: time.Now()}
	m.results = append([]entry{e}, m.results...)
	m.selected = 0
	m.mx.Observe(res.Changed, err)
	switch {
	case err != nil:
		m.status = "failed"
	case res.Changed:
		m.status = "cleaned"
	default:
		m.status = "already clean"
	}
	return m.record(e)
}

func (m *Model) toggleReferral() {
	m.c = m.c.StripReferralMarketing(!m.c.StripsReferralMarketing())
	if m.c.StripsReferralMarketing() {
		m.status = "referral marketing: strip"
	} else {
		m.status = "referral marketing: keep"
	}
}

func (m *Model) current() (entry, bool) {
	if m.selected < 0 || m.selected >= len(m.results) {
		return entry{}, false
	}
	return m.results[m.selected], true
}

func (m *Model) record(e entry) tea.Cmd {
	if m.st == nil || !m.cfg.History.Enabled {
		return nil
	}
	st := m.st
	limit := m.cfg.History.Limit
	return func() tea.Msg {
		row := state.HistoryRow{Original: e.in, Cleaned: e.out, Changed: e.changed, Source: "tui"}
		if e.err != nil {
			row.LastError = e.err.Error()
		}
		if err := st.RecordClean(row); err != nil {
			return historyMsg{err: err}
		}
		rows, err := st.ListHistory(state.HistoryFilter{Limit: limit})
		return historyMsg{rows: rows, err: err}
	}
}

func (m *Model) loadHistory() tea.Cmd {
	if m.st == nil || !m.cfg.History.Enabled {
		return nil
	}
	st := m.st
	limit := m.cfg.History.Limit
	return func() tea.Msg {
		rows, err := st.ListHistory(state.HistoryFilter{Limit: limit})
		return historyMsg{rows: rows, err: err}
	}
}

func copyCmd(s string) tea.Cmd {
	return func() tea.Msg { return copiedMsg{err: clipboard.WriteAll(s)} }
}
