package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	friendlyerrors "clearurls/internal/errors"
	"clearurls/pkg/rules"
)

// ValidationError represents a detailed config validation error
type ValidationError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Config validation error in '%s': %s", e.Field, e.Message)
}

// ValidateDetailed performs comprehensive validation with friendly error messages.
// Unlike Validate it also checks the filesystem and loads the configured rules.
func (c *Config) ValidateDetailed() []ValidationError {
	var errs []ValidationError

	if c.Version != 1 {
		errs = append(errs, ValidationError{
			Field:      "version",
			Value:      c.Version,
			Message:    fmt.Sprintf("Unsupported version: %d", c.Version),
			Suggestion: "Use version: 1",
		})
	}

	if c.General.DataRoot == "" {
		errs = append(errs, ValidationError{
			Field:      "general.data_root",
			Message:    "Required field missing",
			Suggestion: "Set to a directory for clearurls data:\n  data_root: ~/.local/share/clearurls",
		})
	}

	if c.Rules.Path != "" {
		if _, err := rules.LoadFile(c.Rules.Path); err != nil {
			errs = append(errs, ValidationError{
				Field:      "rules.path",
				Value:      c.Rules.Path,
				Message:    err.Error(),
				Suggestion: "Point rules.path at a ClearURLs rule document, or remove it to use the bundled rules",
			})
		}
	}

	if c.Batch.Parallel < 1 {
		errs = append(errs, ValidationError{
			Field:      "batch.parallel",
			Value:      c.Batch.Parallel,
			Message:    "Must be at least 1",
			Suggestion: "Recommended: the number of CPU cores",
		})
	}

	if c.Batch.Parallel > 256 {
		errs = append(errs, ValidationError{
			Field:      "batch.parallel",
			Value:      c.Batch.Parallel,
			Message:    "Unusually high (>256 workers)",
			Suggestion: "Cleaning is CPU bound; more workers than cores does not help",
		})
	}

	lvl := strings.ToLower(c.Logging.Level)
	switch lvl {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:      "logging.level",
			Value:      c.Logging.Level,
			Message:    "Invalid log level",
			Suggestion: "Use one of: debug, info, warn, error",
		})
	}

	if c.Logging.File.Enabled && c.Logging.File.MaxMegabytes < 0 {
		errs = append(errs, ValidationError{
			Field:      "logging.file.max_megabytes",
			Value:      c.Logging.File.MaxMegabytes,
			Message:    "Must be >= 0",
			Suggestion: "0 selects the rotation default of 100 MB",
		})
	}

	if mt := c.Metrics.PrometheusTextfile; mt.Enabled {
		if mt.Path == "" {
			errs = append(errs, ValidationError{
				Field:      "metrics.prometheus_textfile.path",
				Message:    "Required when the textfile exporter is enabled",
				Suggestion: "For node_exporter:\n  path: /var/lib/node_exporter/textfile_collector/clearurls.prom",
			})
		} else if fi, err := os.Stat(filepath.Dir(mt.Path)); err != nil || !fi.IsDir() {
			errs = append(errs, ValidationError{
				Field:      "metrics.prometheus_textfile.path",
				Value:      mt.Path,
				Message:    "Parent directory does not exist",
				Suggestion: fmt.Sprintf("Create it:\n  mkdir -p %s", filepath.Dir(mt.Path)),
			})
		}
	}

	return errs
}

// ValidateWithFriendlyErrors returns a user-friendly validation error
func (c *Config) ValidateWithFriendlyErrors() error {
	if err := c.Validate(); err != nil {
		return err
	}

	errs := c.ValidateDetailed()
	if len(errs) == 0 {
		return nil
	}

	var msg strings.Builder
	msg.WriteString("Configuration validation failed:\n\n")

	for i, err := range errs {
		msg.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
		if err.Value != nil {
			msg.WriteString(fmt.Sprintf("   Current value: %v\n", err.Value))
		}
		if err.Suggestion != "" {
			for _, line := range strings.Split(err.Suggestion, "\n") {
				msg.WriteString(fmt.Sprintf("   → %s\n", line))
			}
		}
		msg.WriteString("\n")
	}

	return friendlyerrors.NewFriendlyError(
		"Config validation failed",
		msg.String(),
	)
}
