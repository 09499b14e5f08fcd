package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"clearurls/internal/config"
	friendly "clearurls/internal/errors"
	"clearurls/internal/logging"
	"clearurls/internal/metrics"
	"clearurls/internal/state"
	"clearurls/pkg/cleaner"
	"clearurls/pkg/rules"
)

var version = "dev"

// Replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage()
		return errors.New("no command provided")
	}

	cmd := args[0]
	switch cmd {
	case "clean":
		return handleClean(ctx, args[1:])
	case "text":
		return handleText(ctx, args[1:])
	case "html":
		return handleHTML(ctx, args[1:])
	case "batch":
		return handleBatch(ctx, args[1:])
	case "rules":
		return handleRules(ctx, args[1:])
	case "history":
		return handleHistory(ctx, args[1:])
	case "config":
		return handleConfig(ctx, args[1:])
	case "doctor":
		return handleDoctor(ctx, args[1:])
	case "tui":
		return handleTUI(ctx, args[1:])
	case "version":
		fmt.Fprintln(stdout, version)
		return nil
	case "completion":
		return handleCompletion(ctx, args[1:])
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func usage() {
	fmt.Fprintln(stdout, strings.TrimSpace(`clearurls - remove tracking parameters from URLs

Usage:
  clearurls <command> [flags]

Commands:
  clean [URL...]    Clean URLs given as arguments, or one per line on stdin
  text [FILE]       Clean every URL inside free text (stdin when FILE is omitted)
  html [FILE]       Clean link and image targets in an HTML document
  batch             Clean a list of URLs in parallel and write a YAML report
  rules validate    Load a rule document and report problems
  rules list        List providers in application order
  rules find Q      Fuzzy-search provider names
  rules stats       Summarize the loaded rule set
  history           Show or clear recorded cleanings
  config validate   Validate a YAML config file
  config print      Print the effective config as YAML
  config wizard     Interactive TUI to generate a YAML config
  doctor            Check config, rules and data directories
  tui               Open the interactive cleaner
  version           Print version
  help              Show this help
  completion        Generate shell completion scripts (bash|zsh|fish)

Flags:
  --config PATH     Path to YAML config file (or CLEARURLS_CONFIG env var; default: ~/.config/clearurls/config.yml)
  --rules PATH      Rule document to use instead of rules.path / the bundled rules
  --strip-referral  Also remove referral-marketing parameters
  --log-level L     Log level: debug|info|warn|error (per command)
  --json            JSON log output (per command)
`))
}

// commonOpts are the flags every cleaning command accepts.
type commonOpts struct {
	cfgPath  string
	logLevel string
	jsonLogs bool
	rules    string
	strip    bool
}

func addCommonFlags(fs *flag.FlagSet) *commonOpts {
	o := &commonOpts{}
	fs.StringVar(&o.cfgPath, "config", "", "Path to YAML config file")
	fs.StringVar(&o.logLevel, "log-level", "", "log level (default: logging.level from config)")
	fs.BoolVar(&o.jsonLogs, "json", false, "json logs")
	fs.StringVar(&o.rules, "rules", "", "Rule document (JSON or YAML)")
	fs.BoolVar(&o.strip, "strip-referral", false, "Also remove referral-marketing parameters")
	return o
}

func resolveConfigPath(p string) string {
	if p != "" {
		return p
	}
	if env := os.Getenv(config.EnvVar); env != "" {
		return env
	}
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return filepath.Join(h, ".config", "clearurls", "config.yml")
	}
	return ""
}

// app is the wired runtime shared by the cleaning commands.
type app struct {
	cfg     *config.Config
	log     *logging.Logger
	store   *rules.Store
	cleaner *cleaner.Cleaner
	mx      *metrics.Manager
	st      *state.DB
	started time.Time
}

func (o *commonOpts) open() (*app, error) {
	c, err := config.LoadOrDefault(resolveConfigPath(o.cfgPath))
	if err != nil {
		return nil, err
	}
	level := o.logLevel
	if level == "" {
		level = c.Logging.Level
	}
	jsonLogs := o.jsonLogs || strings.EqualFold(c.Logging.Format, "json")
	log := logging.NewWithWriter(level, jsonLogs, os.Stderr).WithFile(logging.FileOptions{
		Path:         c.LogFilePath(),
		MaxMegabytes: c.Logging.File.MaxMegabytes,
		MaxBackups:   c.Logging.File.MaxBackups,
		MaxAgeDays:   c.Logging.File.MaxAgeDays,
	})

	rulesPath := o.rules
	if rulesPath == "" {
		rulesPath = c.Rules.Path
	}
	store, err := loadStore(rulesPath)
	if err != nil {
		_ = log.Close()
		return nil, err
	}
	log.Debugf("loaded %d providers from %s", store.Len(), rulesSource(rulesPath))

	a := &app{
		cfg:     c,
		log:     log,
		store:   store,
		cleaner: cleaner.New(store, cleaner.WithStripReferralMarketing(o.strip || c.Rules.StripReferralMarketing)),
		mx:      metrics.New(c),
		started: time.Now(),
	}
	a.mx.SetProviders(store.Len())
	if c.History.Enabled {
		st, err := state.Open(c)
		if err != nil {
			_ = log.Close()
			return nil, friendly.DatabaseError(err)
		}
		a.st = st
	}
	return a, nil
}

func loadStore(path string) (*rules.Store, error) {
	var (
		s   *rules.Store
		err error
	)
	if path == "" {
		s, err = rules.LoadEmbedded()
	} else {
		s, err = rules.LoadFile(path)
	}
	if err != nil {
		return nil, friendly.RulesError(path, err)
	}
	return s, nil
}

func rulesSource(path string) string {
	if path == "" {
		return "bundled rules"
	}
	return path
}

// observe feeds one outcome to metrics and, when enabled, history.
func (a *app) observe(source, in string, res cleaner.Result, err error) {
	a.mx.Observe(res.Changed, err)
	if err != nil {
		a.log.WithField("url", logging.SanitizeURL(in)).Warnf("clean failed: %v", err)
	} else if res.Changed {
		a.log.Debugf("cleaned %s", logging.SanitizeURL(in))
	}
	if a.st == nil {
		return
	}
	row := state.HistoryRow{Original: in, Cleaned: res.URL, Changed: res.Changed, Source: source}
	if err != nil {
		row.LastError = err.Error()
	}
	if rerr := a.st.RecordClean(row); rerr != nil {
		a.log.Warnf("history: %v", rerr)
	}
}

func (a *app) close() {
	a.mx.ObserveRunSeconds(time.Since(a.started).Seconds())
	if err := a.mx.Write(); err != nil {
		a.log.Warnf("metrics: %v", err)
	}
	if a.st != nil {
		_ = a.st.Close()
	}
	_ = a.log.Close()
}

// inputFrom opens the named file, or stdin for "" and "-".
func inputFrom(name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, friendly.PathError(name, err)
	}
	return f, nil
}
