package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"clearurls/internal/logging"
	"clearurls/pkg/cleaner"
	"clearurls/pkg/rules"
)

const docsRules = "https://docs.clearurls.xyz/latest/specs/rules/"

// UserFriendlyError provides actionable error messages for end users
type UserFriendlyError struct {
	Message    string // User-facing message explaining what went wrong
	Suggestion string // Actionable steps to fix the issue
	DocsLink   string // Optional link to documentation
	Details    error  // Original error for debugging/logs
}

func (e *UserFriendlyError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Details != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Details.Error())
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString("How to fix:\n")
		sb.WriteString(e.Suggestion)
	}

	if e.DocsLink != "" {
		sb.WriteString("\n\n")
		sb.WriteString("Documentation: ")
		sb.WriteString(e.DocsLink)
	}

	return sb.String()
}

func (e *UserFriendlyError) Unwrap() error {
	return e.Details
}

// NewFriendlyError creates a user-friendly error
func NewFriendlyError(message, suggestion string) *UserFriendlyError {
	return &UserFriendlyError{
		Message:    message,
		Suggestion: suggestion,
	}
}

// WithDetails adds the underlying error details
func (e *UserFriendlyError) WithDetails(err error) *UserFriendlyError {
	e.Details = err
	return e
}

// WithDocs adds a documentation link
func (e *UserFriendlyError) WithDocs(link string) *UserFriendlyError {
	e.DocsLink = link
	return e
}

// RulesError explains a rule document that could not be loaded.
func RulesError(path string, err error) *UserFriendlyError {
	src := path
	if src == "" {
		src = "bundled rules"
	}
	e := &UserFriendlyError{
		Message:    fmt.Sprintf("Cannot load rules from %s", src),
		Suggestion: "Check the rules.path setting or the --rules flag",
		Details:    err,
	}
	switch {
	case stderrors.Is(err, rules.ErrConfigRead):
		e.Suggestion = fmt.Sprintf("Make sure the file exists and is readable:\n  ls -l %s", path)
	case stderrors.Is(err, rules.ErrConfigSyntax):
		e.Suggestion = "The document must be {\"providers\": {<name>: {\"urlPattern\": ...}}} and every pattern must be a valid regular expression.\n" +
			"Run 'clearurls rules validate --rules " + path + "' for details"
		e.DocsLink = docsRules
	}
	return e
}

// URLError explains why a single URL could not be cleaned.
func URLError(raw string, err error) *UserFriendlyError {
	e := &UserFriendlyError{
		Message: fmt.Sprintf("Cannot clean %s", logging.SanitizeURL(raw)),
		Details: err,
	}
	switch {
	case stderrors.Is(err, cleaner.ErrURLSyntax):
		e.Suggestion = "Pass an absolute URL including its scheme, e.g. https://example.com/page"
	case stderrors.Is(err, cleaner.ErrRedirectionMissingCapture):
		e.Suggestion = "A redirection rule in the rule set has no capture group around the target. Fix the rule or report it upstream"
		e.DocsLink = docsRules
	case stderrors.Is(err, cleaner.ErrInvalidPercentEncoding):
		e.Suggestion = "The embedded redirect target decodes to invalid text; the link is probably truncated"
	}
	return e
}

// ConfigError returns configuration-related errors
func ConfigError(field, issue string) *UserFriendlyError {
	return &UserFriendlyError{
		Message:    fmt.Sprintf("Configuration error in field '%s': %s", field, issue),
		Suggestion: "Run 'clearurls config validate' to check your configuration\nOr run 'clearurls config print' to see the effective settings",
	}
}

// DatabaseError returns database-related errors with recovery suggestions
func DatabaseError(err error) *UserFriendlyError {
	msg := "History database error"
	suggestion := "Disable history (history.enabled: false) or check general.data_root"

	if err != nil {
		errStr := err.Error()

		if strings.Contains(errStr, "locked") {
			msg = "History database is locked by another process"
			suggestion = "Wait for the other clearurls process to finish and try again"
		}

		if strings.Contains(errStr, "corrupt") || strings.Contains(errStr, "malformed") {
			msg = "History database is corrupted"
			suggestion = "Move the database aside; a new one is created on the next run:\n" +
				"  mv <data_root>/history.db <data_root>/history.db.bak"
		}
	}

	return &UserFriendlyError{
		Message:    msg,
		Suggestion: suggestion,
		Details:    err,
	}
}

// PathError returns file/directory path related errors
func PathError(path string, err error) *UserFriendlyError {
	msg := fmt.Sprintf("Path error: %s", path)
	suggestion := "Check that the path exists and you have permission to access it"

	if err != nil {
		errStr := err.Error()

		if strings.Contains(errStr, "permission denied") {
			msg = fmt.Sprintf("Permission denied: %s", path)
			suggestion = fmt.Sprintf("Ensure you have access:\n  ls -l %s", path)
		}

		if strings.Contains(errStr, "no such file or directory") {
			msg = fmt.Sprintf("File does not exist: %s", path)
			suggestion = "Check the spelling of the path"
		}
	}

	return &UserFriendlyError{
		Message:    msg,
		Suggestion: suggestion,
		Details:    err,
	}
}
