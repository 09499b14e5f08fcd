package configwizard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"clearurls/internal/config"
)

// field is one editable setting: how to show it, and how to write it back.
type field struct {
	label string
	hint  string
	get   func(*config.Config) string
	set   func(*config.Config, string)
}

var fields = []field{
	{
		label: "general.data_root",
		get:   func(c *config.Config) string { return c.General.DataRoot },
		set:   func(c *config.Config, v string) { c.General.DataRoot = v },
	},
	{
		label: "rules.path",
		hint:  "empty for bundled rules",
		get:   func(c *config.Config) string { return c.Rules.Path },
		set:   func(c *config.Config, v string) { c.Rules.Path = v },
	},
	{
		label: "rules.strip_referral_marketing",
		hint:  "true|false",
		get:   func(c *config.Config) string { return strconv.FormatBool(c.Rules.StripReferralMarketing) },
		set:   func(c *config.Config, v string) { c.Rules.StripReferralMarketing = parseBool(v) },
	},
	{
		label: "batch.parallel",
		get:   func(c *config.Config) string { return strconv.Itoa(c.Batch.Parallel) },
		set: func(c *config.Config, v string) {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.Batch.Parallel = n
			}
		},
	},
	{
		label: "history.enabled",
		hint:  "true|false",
		get:   func(c *config.Config) string { return strconv.FormatBool(c.History.Enabled) },
		set:   func(c *config.Config, v string) { c.History.Enabled = parseBool(v) },
	},
	{
		label: "logging.level",
		hint:  "debug|info|warn|error",
		get:   func(c *config.Config) string { return c.Logging.Level },
		set: func(c *config.Config, v string) {
			switch v = strings.ToLower(v); v {
			case "debug", "info", "warn", "error":
				c.Logging.Level = v
			}
		},
	},
}

type Wizard struct {
	inputs []textinput.Model
	focus  int
	done   bool
	base   *config.Config
	out    *config.Config
}

// New starts a wizard prefilled from defaults, or from config.Default when nil.
func New(defaults *config.Config) *Wizard {
	if defaults == nil {
		defaults = config.Default()
	}
	w := &Wizard{base: defaults}
	for _, f := range fields {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = f.hint
		ti.SetValue(f.get(defaults))
		ti.CharLimit = 256
		w.inputs = append(w.inputs, ti)
	}
	w.inputs[0].Focus()
	return w
}

func (w *Wizard) Init() tea.Cmd { return textinput.Blink }

func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "ctrl+c", "esc":
			w.done = true
			return w, tea.Quit
		case "enter":
			if w.focus == len(w.inputs)-1 {
				w.done = true
				w.out = w.buildConfig()
				return w, tea.Quit
			}
			w.move(1)
			return w, nil
		case "tab", "down":
			w.move(1)
			return w, nil
		case "shift+tab", "up":
			w.move(-1)
			return w, nil
		}
	}
	var cmd tea.Cmd
	w.inputs[w.focus], cmd = w.inputs[w.focus].Update(msg)
	return w, cmd
}

func (w *Wizard) move(delta int) {
	w.focus += delta
	if w.focus < 0 {
		w.focus = 0
	}
	if w.focus >= len(w.inputs) {
		w.focus = len(w.inputs) - 1
	}
	for j := range w.inputs {
		if j == w.focus {
			w.inputs[j].Focus()
		} else {
			w.inputs[j].Blur()
		}
	}
}

func (w *Wizard) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("clearurls config wizard") + "\n")
	b.WriteString("Tab/Shift-Tab to navigate, Enter on the last field to save, Esc to abort.\n\n")
	for i, input := range w.inputs {
		marker := " "
		if i == w.focus {
			marker = ">"
		}
		b.WriteString(fmt.Sprintf("%s %-32s %s\n", marker, fields[i].label+":", input.View()))
	}
	if w.done && w.out != nil {
		b.WriteString("\nDone. Saving...\n")
	}
	return b.String()
}

func (w *Wizard) buildConfig() *config.Config {
	o := *w.base
	for i, f := range fields {
		f.set(&o, strings.TrimSpace(w.inputs[i].Value()))
	}
	return &o
}

// Config is the edited configuration, or nil if the wizard was aborted.
func (w *Wizard) Config() *config.Config { return w.out }

func parseBool(s string) bool {
	return strings.EqualFold(s, "true") || s == "1" || strings.EqualFold(s, "y") || strings.EqualFold(s, "yes")
}
