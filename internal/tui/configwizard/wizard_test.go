package configwizard

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"clearurls/internal/config"
)

func TestWizard_SubmitEditsConfig(t *testing.T) {
	w := New(nil)
	// rules.strip_referral_marketing
	w.move(2)
	w.inputs[w.focus].SetValue("yes")
	w.move(1)
	w.inputs[w.focus].SetValue("8")
	for w.focus < len(w.inputs)-1 {
		w.Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	w.inputs[w.focus].SetValue("DEBUG")
	_, cmd := w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	c := w.Config()
	if c == nil {
		t.Fatal("no config produced")
	}
	if !c.Rules.StripReferralMarketing || c.Batch.Parallel != 8 || c.Logging.Level != "debug" {
		t.Fatalf("edits not applied: %+v", c)
	}
	if c.Version != 1 || c.Logging.Format != "human" {
		t.Fatalf("untouched defaults lost: %+v", c)
	}
}

func TestWizard_EscAborts(t *testing.T) {
	w := New(config.Default())
	w.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !w.done || w.Config() != nil {
		t.Fatalf("esc should abort without a config")
	}
}

func TestWizard_BadNumberKeepsDefault(t *testing.T) {
	w := New(nil)
	w.inputs[3].SetValue("lots")
	if got := w.buildConfig().Batch.Parallel; got != 4 {
		t.Fatalf("got %d", got)
	}
}
