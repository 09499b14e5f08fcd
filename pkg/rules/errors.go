package rules

import "errors"

var (
	// ErrConfigRead matches any *ConfigReadError via errors.Is.
	ErrConfigRead = errors.New("rules: read failed")
	// ErrConfigSyntax matches any *ConfigSyntaxError via errors.Is.
	ErrConfigSyntax = errors.New("rules: invalid document")
)

// ConfigReadError is an I/O failure while obtaining a rule document.
type ConfigReadError struct {
	Path string
	Err  error
}

func (e *ConfigReadError) Error() string { return "error reading rules: " + e.Err.Error() }

func (e *ConfigReadError) Unwrap() error { return e.Err }

func (e *ConfigReadError) Is(target error) bool { return target == ErrConfigRead }

// ConfigSyntaxError means the document is not valid or not shaped like a rule corpus,
// or one of its patterns does not compile.
type ConfigSyntaxError struct {
	Err error
}

func (e *ConfigSyntaxError) Error() string { return "error parsing rules: " + e.Err.Error() }

func (e *ConfigSyntaxError) Unwrap() error { return e.Err }

func (e *ConfigSyntaxError) Is(target error) bool { return target == ErrConfigSyntax }
