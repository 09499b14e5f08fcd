package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"clearurls/internal/config"
	"clearurls/internal/state"
	"clearurls/pkg/cleaner"
	"clearurls/pkg/rules"
)

func testModel(t *testing.T) *Model {
	t.Helper()
	store, err := rules.LoadEmbedded()
	if err != nil {
		t.Fatal(err)
	}
	return New(cleaner.New(store), nil, nil, nil)
}

func submit(m *Model, raw string) tea.Cmd {
	m.input.SetValue(raw)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestEnterCleansInput(t *testing.T) {
	m := testModel(t)
	submit(m, "  https://deezer.com/track/891177062?utm_source=deezer ")
	if len(m.results) != 1 {
		t.Fatalf("expected one result, got %d", len(m.results))
	}
	e := m.results[0]
	if e.out != "https://deezer.com/track/891177062" || !e.changed || e.err != nil {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if m.input.Value() != "" {
		t.Fatalf("input not reset: %q", m.input.Value())
	}
	if !strings.Contains(m.View(), "https://deezer.com/track/891177062") {
		t.Fatalf("view lacks cleaned url")
	}
}

func TestEnterOnEmptyInputIsNoop(t *testing.T) {
	m := testModel(t)
	submit(m, "   ")
	if len(m.results) != 0 {
		t.Fatal("blank input must not be cleaned")
	}
}

func TestFailureIsShown(t *testing.T) {
	m := testModel(t)
	submit(m, "//example.com")
	if m.results[0].err == nil || m.status != "failed" {
		t.Fatalf("expected failure, got %+v status=%q", m.results[0], m.status)
	}
	if !strings.Contains(m.View(), "relative URL without a base") {
		t.Fatal("error not rendered")
	}
}

func TestToggleReferral(t *testing.T) {
	m := testModel(t)
	submit(m, "https://www.amazon.com/dp/B0?tag=abc-20")
	if got := m.results[0].out; !strings.Contains(got, "tag=abc-20") {
		t.Fatalf("referral kept by default: %q", got)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	submit(m, "https://www.amazon.com/dp/B0?tag=abc-20")
	if got := m.results[0].out; got != "https://www.amazon.com/dp/B0" {
		t.Fatalf("referral not stripped: %q", got)
	}
}

func TestFocusAndNavigation(t *testing.T) {
	m := testModel(t)
	submit(m, "https://a.test/?utm_source=1")
	submit(m, "https://b.test/?fbclid=1")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusList {
		t.Fatal("tab should move focus to the list")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if m.selected != 1 {
		t.Fatalf("selected=%d", m.selected)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if m.selected != 1 {
		t.Fatal("selection ran past the end")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	if m.focus != focusInput || m.input.Value() != "https://a.test/?utm_source=1" {
		t.Fatalf("edit did not load the entry: %q", m.input.Value())
	}
}

func TestUpdateNormalQuestion(t *testing.T) {
	m := testModel(t)
	m.focus = focusList
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if !m.showHelp {
		t.Fatalf("showHelp should be true after '?' key")
	}
}

func TestHistoryRecording(t *testing.T) {
	cfg := config.Default()
	cfg.General.DataRoot = t.TempDir()
	cfg.History.Enabled = true
	st, err := state.Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	store, _ := rules.LoadEmbedded()
	m := New(cleaner.New(store), cfg, st, nil)

	cmd := submit(m, "https://a.test/?gclid=1")
	if cmd == nil {
		t.Fatal("expected a record command")
	}
	msg := cmd()
	m.Update(msg)
	if len(m.history) != 1 || m.history[0].Source != "tui" || m.history[0].Cleaned != "https://a.test/" {
		t.Fatalf("history: %+v", m.history)
	}
}

func TestDiffSegments(t *testing.T) {
	segs := diffSegments("https://deezer.com/track/1?utm_source=x&keep=1", "https://deezer.com/track/1?keep=1")
	var removed []string
	for _, s := range segs {
		if s.removed {
			removed = append(removed, s.text)
		}
	}
	if len(removed) != 1 || removed[0] != "?utm_source=x" {
		t.Fatalf("removed=%q", removed)
	}
	var all strings.Builder
	for _, s := range segs {
		all.WriteString(s.text)
	}
	if all.String() != "https://deezer.com/track/1?utm_source=x&keep=1" {
		t.Fatalf("segments do not reassemble the input: %q", all.String())
	}
}
