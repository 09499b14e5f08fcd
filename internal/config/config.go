package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted when no --config flag is given.
const EnvVar = "CLEARURLS_CONFIG"

// Config mirrors the YAML schema. Fields left out of the file keep the values
// from Default. Minimal validation occurs in Validate().
type Config struct {
	Version int       `yaml:"version"`
	General General   `yaml:"general"`
	Rules   Rules     `yaml:"rules"`
	Batch   Batch     `yaml:"batch"`
	History History   `yaml:"history"`
	Logging Logging   `yaml:"logging"`
	Metrics Metrics   `yaml:"metrics"`
	UI      UIOptions `yaml:"ui"`
}

type General struct {
	DataRoot string `yaml:"data_root"`
}

type Rules struct {
	// Path to a rule document (JSON or YAML). Empty selects the bundled rules.
	Path                   string `yaml:"path"`
	StripReferralMarketing bool   `yaml:"strip_referral_marketing"`
}

type Batch struct {
	Parallel int `yaml:"parallel"`
}

type History struct {
	Enabled bool `yaml:"enabled"`
	// Limit is the default number of rows 'clearurls history' prints.
	Limit int `yaml:"limit"`
}

type Logging struct {
	Level  string  `yaml:"level"`  // debug|info|warn|error
	Format string  `yaml:"format"` // human|json
	File   LogFile `yaml:"file"`
}

type LogFile struct {
	Enabled      bool   `yaml:"enabled"`
	Path         string `yaml:"path"`
	MaxMegabytes int    `yaml:"max_megabytes"`
	MaxBackups   int    `yaml:"max_backups"`
	MaxAgeDays   int    `yaml:"max_age_days"`
}

type Metrics struct {
	PrometheusTextfile PromTextfile `yaml:"prometheus_textfile"`
}

type PromTextfile struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type UIOptions struct {
	// ShowDiff highlights the removed parts of a URL in the TUI.
	ShowDiff bool `yaml:"show_diff"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		Version: 1,
		General: General{DataRoot: "~/.local/share/clearurls"},
		Batch:   Batch{Parallel: 4},
		History: History{Limit: 20},
		Logging: Logging{
			Level:  "info",
			Format: "human",
			File:   LogFile{MaxMegabytes: 10, MaxBackups: 3, MaxAgeDays: 28},
		},
		UI: UIOptions{ShowDiff: true},
	}
}

// Load reads, parses, expands, and validates a YAML config file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	expanded, err := expandTilde(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(expanded)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// LoadOrDefault is Load, except that an empty path or a missing file yields
// the expanded defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		c, err := Load(path)
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			return c, err
		}
	}
	c := Default()
	if err := c.expandPaths(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes a YAML document over the defaults.
func Parse(b []byte) (*Config, error) {
	// Expand ${ENV} placeholders before unmarshalling
	b = []byte(os.ExpandEnv(string(b)))
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	if err := c.expandPaths(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// HistoryPath is the sqlite file recording cleaned URLs.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.General.DataRoot, "history.db")
}

// LogFilePath resolves the log file location, defaulting under data_root.
func (c *Config) LogFilePath() string {
	if !c.Logging.File.Enabled {
		return ""
	}
	if c.Logging.File.Path != "" {
		return c.Logging.File.Path
	}
	return filepath.Join(c.General.DataRoot, "logs", "clearurls.log")
}

func (c *Config) expandPaths() error {
	var err error
	if c.General.DataRoot, err = expandTilde(c.General.DataRoot); err != nil {
		return err
	}
	if c.Rules.Path, err = expandTilde(c.Rules.Path); err != nil {
		return err
	}
	if c.Logging.File.Path, err = expandTilde(c.Logging.File.Path); err != nil {
		return err
	}
	if c.Metrics.PrometheusTextfile.Path, err = expandTilde(c.Metrics.PrometheusTextfile.Path); err != nil {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version: %d", c.Version)
	}
	if c.General.DataRoot == "" {
		return errors.New("general.data_root is required")
	}
	if c.Batch.Parallel < 1 {
		return fmt.Errorf("batch.parallel must be >= 1")
	}
	if c.History.Limit < 0 {
		return fmt.Errorf("history.limit must be >= 0")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
		// ok
	default:
		return fmt.Errorf("logging.level invalid: %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "human", "json":
		// ok
	default:
		return fmt.Errorf("logging.format invalid: %s", c.Logging.Format)
	}
	if c.Metrics.PrometheusTextfile.Enabled && c.Metrics.PrometheusTextfile.Path == "" {
		return errors.New("metrics.prometheus_textfile.path is required when enabled")
	}
	return nil
}

func expandTilde(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if p[0] != '~' {
		return p, nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if p == "~" {
		return h, nil
	}
	return filepath.Join(h, p[2:]), nil
}

// EnsureDir creates path and its parents. Empty path is a no-op.
func EnsureDir(path string, perm fs.FileMode) error {
	if path == "" {
		return nil
	}
	return os.MkdirAll(path, perm)
}
