package main

import (
	"context"
	"flag"

	tea "github.com/charmbracelet/bubbletea"

	"clearurls/internal/tui"
)

func handleTUI(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	o := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	// Log lines on stderr would tear the alternate screen; keep only errors.
	if o.logLevel == "" {
		o.logLevel = "error"
	}
	a, err := o.open()
	if err != nil {
		return err
	}
	defer a.close()

	p := tea.NewProgram(tui.New(a.cleaner, a.cfg, a.st, a.mx), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
