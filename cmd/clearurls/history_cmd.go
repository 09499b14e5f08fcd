package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"clearurls/internal/config"
	friendly "clearurls/internal/errors"
	"clearurls/internal/logging"
	"clearurls/internal/state"
)

func handleHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	limit := fs.Int("limit", 0, "Rows to show (default: history.limit from config)")
	host := fs.String("host", "", "Only URLs on this host")
	changed := fs.Bool("changed", false, "Only URLs that were rewritten")
	failed := fs.Bool("failed", false, "Only URLs that could not be cleaned")
	summary := fs.Bool("summary", false, "Print totals and the most cleaned hosts")
	clearRows := fs.Bool("clear", false, "Delete recorded history")
	olderThan := fs.Duration("older-than", 0, "With --clear, only delete rows not seen for this long (e.g. 720h)")
	full := fs.Bool("full", false, "Show URLs unredacted")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := config.LoadOrDefault(resolveConfigPath(*cfgPath))
	if err != nil {
		return err
	}
	if !c.History.Enabled {
		return friendly.ConfigError("history.enabled", "history is disabled; set it to true to record cleaned URLs")
	}
	st, err := state.Open(c)
	if err != nil {
		return friendly.DatabaseError(err)
	}
	defer st.Close()

	if *clearRows {
		var before time.Time
		if *olderThan > 0 {
			before = time.Now().Add(-*olderThan)
		}
		n, err := st.ClearHistory(before)
		if err != nil {
			return friendly.DatabaseError(err)
		}
		fmt.Fprintf(stdout, "deleted %s rows\n", humanize.Comma(n))
		return nil
	}

	if *summary {
		s, err := st.HistoryStats()
		if err != nil {
			return friendly.DatabaseError(err)
		}
		fmt.Fprintf(stdout, "Distinct URLs: %s\n", humanize.Comma(s.Distinct))
		fmt.Fprintf(stdout, "Times seen:    %s\n", humanize.Comma(s.Seen))
		fmt.Fprintf(stdout, "Changed:       %s\n", humanize.Comma(s.Changed))
		fmt.Fprintf(stdout, "Failed:        %s\n", humanize.Comma(s.Failed))
		if s.Oldest > 0 {
			fmt.Fprintf(stdout, "Since:         %s\n", humanize.Time(time.Unix(s.Oldest, 0)))
		}
		top, err := st.TopHosts(5)
		if err != nil {
			return friendly.DatabaseError(err)
		}
		if len(top) > 0 {
			fmt.Fprintln(stdout, "Top hosts:")
			for _, h := range top {
				fmt.Fprintf(stdout, "  %-32s %s\n", h.Host, humanize.Comma(h.Count))
			}
		}
		return nil
	}

	n := *limit
	if n <= 0 {
		n = c.History.Limit
	}
	rows, err := st.ListHistory(state.HistoryFilter{Host: *host, ChangedOnly: *changed, FailedOnly: *failed, Limit: n})
	if err != nil {
		return friendly.DatabaseError(err)
	}
	show := logging.SanitizeURL
	if *full {
		show = func(s string) string { return s }
	}
	fmt.Fprintf(stdout, "%-14s  %-7s  %4s  %s\n", "WHEN", "RESULT", "SEEN", "URL")
	for _, r := range rows {
		res := "same"
		switch {
		case r.LastError != "":
			res = "error"
		case r.Changed:
			res = "cleaned"
		}
		fmt.Fprintf(stdout, "%-14s  %-7s  %4d  %s\n", humanize.Time(time.Unix(r.UpdatedAt, 0)), res, r.Seen, show(r.Original))
		if *full && r.Changed {
			fmt.Fprintf(stdout, "%-14s  %-7s  %4s  -> %s\n", "", "", "", r.Cleaned)
		}
	}
	return nil
}
