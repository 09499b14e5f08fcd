package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"clearurls/internal/logging"
)

func (m *Model) View() string {
	if m.w == 0 {
		m.w = 100
	}
	if m.h == 0 {
		m.h = 30
	}
	title := m.th.title.Render("clearurls")
	header := m.th.border.Width(m.w - 2).Render(lipgloss.JoinHorizontal(lipgloss.Top, title+"  ", m.th.label.Render(m.renderStats())))

	body := []string{header, m.th.border.Width(m.w - 2).Render(m.input.View())}
	body = append(body, m.th.border.Width(m.w-2).Render(m.renderResult()))
	body = append(body, m.th.border.Width(m.w-2).Render(m.renderList()))
	if len(m.history) > 0 {
		body = append(body, m.th.border.Width(m.w-2).Render(m.renderHistory()))
	}
	if m.showHelp {
		body = append(body, m.th.border.Width(m.w-2).Render(helpText))
	}
	footer := "enter clean • tab switch focus • j/k nav • c copy • e edit • ctrl+r referral • ? help • q quit"
	if m.status != "" {
		footer = m.status + " • " + footer
	}
	if m.err != nil {
		footer = m.th.bad.Render("error: "+m.err.Error()) + " • " + footer
	}
	body = append(body, m.th.footer.Render(footer))
	return lipgloss.JoinVertical(lipgloss.Left, body...)
}

const helpText = `Paste a URL and press enter. Tracking parameters are removed and
redirect links are replaced by their destination.

ctrl+r toggles stripping of referral-marketing parameters such as
affiliate tags. The setting applies to URLs cleaned afterwards.`

func (m *Model) renderStats() string {
	var changed, failed int
	for _, e := range m.results {
		switch {
		case e.err != nil:
			failed++
		case e.changed:
			changed++
		}
	}
	ref := "keep"
	if m.c.StripsReferralMarketing() {
		ref = "strip"
	}
	return fmt.Sprintf("Providers:%d Cleaned:%d Changed:%d Failed:%d • referral:%s",
		m.c.Store().Len(), len(m.results), changed, failed, ref)
}

func (m *Model) renderResult() string {
	e, ok := m.current()
	if !ok {
		return m.th.label.Render("No URL cleaned yet")
	}
	var sb strings.Builder
	sb.WriteString(m.th.label.Render("Input:"))
	sb.WriteString("\n")
	if m.cfg.UI.ShowDiff && e.err == nil && e.changed {
		sb.WriteString(m.renderDiff(e.in, e.out))
	} else {
		sb.WriteString(e.in)
	}
	sb.WriteString("\n\n")
	if e.err != nil {
		sb.WriteString(m.th.bad.Render("Error: " + e.err.Error()))
		return sb.String()
	}
	sb.WriteString(m.th.label.Render("Clean:"))
	sb.WriteString("\n")
	sb.WriteString(m.th.kept.Render(e.out))
	if !e.changed {
		sb.WriteString(m.th.label.Render("  (unchanged)"))
	}
	return sb.String()
}

// renderDiff shows in with the segments missing from out struck through.
func (m *Model) renderDiff(in, out string) string {
	var sb strings.Builder
	for _, seg := range diffSegments(in, out) {
		if seg.removed {
			sb.WriteString(m.th.removed.Render(seg.text))
		} else {
			sb.WriteString(seg.text)
		}
	}
	return sb.String()
}

func (m *Model) renderList() string {
	var sb strings.Builder
	sb.WriteString(m.th.head.Render(fmt.Sprintf("%-8s  %-10s  %s", "RESULT", "WHEN", "URL")))
	sb.WriteString("\n")
	maxRows := m.h - 20
	if maxRows < 3 {
		maxRows = 3
	}
	for i, e := range m.results {
		if i >= maxRows {
			break
		}
		res := "same"
		switch {
		case e.err != nil:
			res = "error"
		case e.changed:
			res = "cleaned"
		}
		line := fmt.Sprintf("%-8s  %-10s  %s", res, humanize.RelTime(e.at, time.Now(), "ago", "from now"), logging.SanitizeURL(e.in))
		if i == m.selected && m.focus == focusList {
			line = m.th.rowSelected.Render("> " + line)
		} else {
			line = m.th.row.Render("  " + line)
		}
		sb.WriteString(line + "\n")
	}
	if len(m.results) == 0 {
		sb.WriteString(m.th.label.Render("(no items)"))
	}
	return sb.String()
}

func (m *Model) renderHistory() string {
	var sb strings.Builder
	sb.WriteString(m.th.head.Render("History"))
	sb.WriteString("\n")
	for i, r := range m.history {
		if i >= 5 {
			sb.WriteString(m.th.label.Render(fmt.Sprintf("... %d more", len(m.history)-i)))
			break
		}
		when := humanize.Time(time.Unix(r.UpdatedAt, 0))
		sb.WriteString(fmt.Sprintf("%-14s x%-3d %s\n", when, r.Seen, logging.SanitizeURL(r.Original)))
	}
	return sb.String()
}
