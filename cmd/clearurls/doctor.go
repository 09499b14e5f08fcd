package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"clearurls/internal/config"
	"clearurls/internal/state"
	"clearurls/internal/system"
	"clearurls/pkg/cleaner"
	"clearurls/pkg/rules"
)

// Check represents a single diagnostic check
type Check struct {
	Name     string
	Run      func(ctx context.Context) CheckResult
	Critical bool // If true, failure means cleaning will not work
}

// CheckResult represents the result of a diagnostic check
type CheckResult struct {
	Passed     bool
	Warning    bool // Passed but with warnings
	Message    string
	Suggestion string
}

func handleDoctor(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	verbose := fs.Bool("verbose", false, "Show timing for each check")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path := resolveConfigPath(*cfgPath)
	cfg, cfgErr := config.LoadOrDefault(path)

	var store *rules.Store
	fmt.Fprintln(stdout, "Running clearurls diagnostics...")
	fmt.Fprintln(stdout)

	checks := []Check{
		{
			Name: "Config file",
			Run: func(ctx context.Context) CheckResult {
				if path == "" {
					return CheckResult{Passed: true, Warning: true, Message: "No config path; using defaults",
						Suggestion: "Set CLEARURLS_CONFIG or run 'clearurls config wizard --out ~/.config/clearurls/config.yml'"}
				}
				if _, err := os.Stat(path); err != nil {
					return CheckResult{Passed: true, Warning: true, Message: fmt.Sprintf("Not found: %s; using defaults", path),
						Suggestion: fmt.Sprintf("Create one: clearurls config wizard --out %s", path)}
				}
				return CheckResult{Passed: true, Message: fmt.Sprintf("Found: %s", path)}
			},
		},
		{
			Name:     "Config is valid",
			Critical: true,
			Run: func(ctx context.Context) CheckResult {
				if cfgErr != nil {
					return CheckResult{Message: "Config parsing failed",
						Suggestion: fmt.Sprintf("Fix config errors:\n%v\n\nRun 'clearurls config validate' for details", cfgErr)}
				}
				if err := cfg.ValidateWithFriendlyErrors(); err != nil {
					return CheckResult{Message: "Config has problems", Suggestion: err.Error()}
				}
				return CheckResult{Passed: true, Message: "Valid"}
			},
		},
		{
			Name:     "Rules load",
			Critical: true,
			Run: func(ctx context.Context) CheckResult {
				if cfg == nil {
					return CheckResult{Message: "Config not loaded"}
				}
				s, err := loadStore(cfg.Rules.Path)
				if err != nil {
					return CheckResult{Message: "Rules failed to load", Suggestion: err.Error()}
				}
				store = s
				return CheckResult{Passed: true, Message: fmt.Sprintf("%d providers from %s", s.Len(), rulesSource(cfg.Rules.Path))}
			},
		},
		{
			Name: "Redirection capture groups",
			Run: func(ctx context.Context) CheckResult {
				if store == nil {
					return CheckResult{Message: "Rules not loaded"}
				}
				var bad []string
				for _, p := range store.Providers() {
					for _, re := range p.Redirections() {
						if re.NumSubexp() == 0 {
							bad = append(bad, p.Name())
							break
						}
					}
				}
				if len(bad) > 0 {
					return CheckResult{Passed: true, Warning: true,
						Message:    fmt.Sprintf("%d provider(s) have redirections without a capture group: %v", len(bad), bad),
						Suggestion: "URLs matching those redirections fail to clean; run 'clearurls rules validate'"}
				}
				return CheckResult{Passed: true, Message: "All redirections capture a target"}
			},
		},
		{
			Name: "Sample URL cleans",
			Run: func(ctx context.Context) CheckResult {
				if store == nil {
					return CheckResult{Message: "Rules not loaded"}
				}
				const sample = "https://example.com/page?utm_source=doctor&id=1"
				out, err := cleaner.New(store).Clean(sample)
				if err != nil {
					return CheckResult{Message: fmt.Sprintf("Clean failed: %v", err)}
				}
				if out == sample {
					return CheckResult{Passed: true, Warning: true, Message: "utm_source was not removed",
						Suggestion: "The active rule set has no global utm_* rule"}
				}
				return CheckResult{Passed: true, Message: out}
			},
		},
		{
			Name: "Data directory is writable",
			Run: func(ctx context.Context) CheckResult {
				if cfg == nil {
					return CheckResult{Message: "Config not loaded"}
				}
				if !cfg.History.Enabled && !cfg.Logging.File.Enabled {
					return CheckResult{Passed: true, Message: "Not used (history and log file disabled)"}
				}
				dir := cfg.General.DataRoot
				if err := config.EnsureDir(dir, 0o755); err != nil {
					return CheckResult{Message: fmt.Sprintf("Cannot create %s: %v", dir, err),
						Suggestion: fmt.Sprintf("Create manually: mkdir -p %s", dir)}
				}
				probe := filepath.Join(dir, ".clearurls_write_test")
				if err := os.WriteFile(probe, []byte("test"), 0o644); err != nil {
					return CheckResult{Message: "Directory is not writable",
						Suggestion: fmt.Sprintf("Fix permissions: chmod u+w %s", dir)}
				}
				_ = os.Remove(probe)
				return CheckResult{Passed: true, Message: fmt.Sprintf("Writable: %s", dir)}
			},
		},
		{
			Name: "Disk space",
			Run: func(ctx context.Context) CheckResult {
				if cfg == nil {
					return CheckResult{Message: "Config not loaded"}
				}
				if !cfg.History.Enabled && !cfg.Logging.File.Enabled {
					return CheckResult{Passed: true, Message: "Not used"}
				}
				free, err := system.FreeSpace(cfg.General.DataRoot)
				if err != nil {
					return CheckResult{Passed: true, Warning: true, Message: fmt.Sprintf("Could not check disk space: %v", err)}
				}
				var need uint64 = 16 << 20
				if cfg.Logging.File.Enabled {
					need += system.LogBudget(cfg.Logging.File.MaxMegabytes, cfg.Logging.File.MaxBackups)
				}
				if free < need {
					return CheckResult{Passed: true, Warning: true,
						Message:    fmt.Sprintf("Low disk space: %s free, logs and history may need %s", humanize.Bytes(free), humanize.Bytes(need)),
						Suggestion: "Lower logging.file.max_backups or run 'clearurls history --clear --older-than 720h'"}
				}
				return CheckResult{Passed: true, Message: fmt.Sprintf("%s available", humanize.Bytes(free))}
			},
		},
		{
			Name: "History database",
			Run: func(ctx context.Context) CheckResult {
				if cfg == nil {
					return CheckResult{Message: "Config not loaded"}
				}
				if !cfg.History.Enabled {
					return CheckResult{Passed: true, Message: "Disabled"}
				}
				db, err := state.Open(cfg)
				if err != nil {
					return CheckResult{Message: fmt.Sprintf("Cannot open database: %v", err),
						Suggestion: "Check that data_root is writable and the database is not corrupted"}
				}
				defer db.Close()
				hs, err := db.HistoryStats()
				if err != nil {
					return CheckResult{Message: fmt.Sprintf("Query failed: %v", err)}
				}
				size := "empty"
				if fi, err := os.Stat(db.Path); err == nil {
					size = humanize.Bytes(uint64(fi.Size()))
				}
				return CheckResult{Passed: true, Message: fmt.Sprintf("%s (%s, %s URLs)", db.Path, size, humanize.Comma(hs.Distinct))}
			},
		},
		{
			Name: "Metrics textfile",
			Run: func(ctx context.Context) CheckResult {
				if cfg == nil {
					return CheckResult{Message: "Config not loaded"}
				}
				mt := cfg.Metrics.PrometheusTextfile
				if !mt.Enabled {
					return CheckResult{Passed: true, Message: "Disabled"}
				}
				if fi, err := os.Stat(filepath.Dir(mt.Path)); err != nil || !fi.IsDir() {
					return CheckResult{Message: fmt.Sprintf("Directory missing for %s", mt.Path),
						Suggestion: fmt.Sprintf("mkdir -p %s", filepath.Dir(mt.Path))}
				}
				return CheckResult{Passed: true, Message: mt.Path}
			},
		},
	}

	var passed, failed, warnings, criticalFailed int
	for _, check := range checks {
		start := time.Now()
		result := check.Run(ctx)
		duration := time.Since(start)

		symbol := "✓"
		switch {
		case !result.Passed:
			symbol = "✗"
			failed++
			if check.Critical {
				criticalFailed++
			}
		case result.Warning:
			symbol = "⚠"
			warnings++
			passed++
		default:
			passed++
		}
		fmt.Fprintf(stdout, "%s %s", symbol, check.Name)
		if *verbose {
			fmt.Fprintf(stdout, " (%s)", duration.Round(time.Microsecond))
		}
		fmt.Fprintln(stdout)
		if result.Message != "" {
			fmt.Fprintf(stdout, "  %s\n", result.Message)
		}
		if result.Suggestion != "" && (!result.Passed || result.Warning) {
			fmt.Fprintf(stdout, "  → %s\n", result.Suggestion)
		}
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Summary: %d passed, %d warnings, %d failed\n", passed, warnings, failed)
	if criticalFailed > 0 {
		return fmt.Errorf("%d critical check(s) failed", criticalFailed)
	}
	return nil
}
