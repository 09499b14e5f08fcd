package cleaner

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrURLSyntax matches any *URLSyntaxError via errors.Is.
	ErrURLSyntax = errors.New("cleaner: url syntax")
	// ErrRedirectionMissingCapture matches any *RedirectionMissingCaptureError.
	ErrRedirectionMissingCapture = errors.New("cleaner: redirection without capture")
	// ErrInvalidPercentEncoding matches any *InvalidPercentEncodingError.
	ErrInvalidPercentEncoding = errors.New("cleaner: invalid percent encoding")

	errRelativeURL = errors.New("relative URL without a base")
)

// URLSyntaxError reports a string that could not be parsed as an absolute URL,
// either the caller's input or text produced by a raw rule.
type URLSyntaxError struct {
	URL string
	Err error
}

func (e *URLSyntaxError) Error() string { return "error parsing url: " + e.Err.Error() }

func (e *URLSyntaxError) Unwrap() error { return e.Err }

func (e *URLSyntaxError) Is(target error) bool { return target == ErrURLSyntax }

// RedirectionMissingCaptureError means a redirection pattern matched but capture
// group 1 was absent or empty.
type RedirectionMissingCaptureError struct {
	Pattern *regexp.Regexp
}

func (e *RedirectionMissingCaptureError) Error() string {
	return fmt.Sprintf("redirection regex %s has no capture group", displayPattern(e.Pattern))
}

func (e *RedirectionMissingCaptureError) Is(target error) bool {
	return target == ErrRedirectionMissingCapture
}

// InvalidPercentEncodingError means percent-decoding a redirect target produced
// bytes that are not valid UTF-8. Index is the byte offset of the first bad
// sequence in the decoded text.
type InvalidPercentEncodingError struct {
	Index      int
	Incomplete bool
}

func (e *InvalidPercentEncodingError) Error() string {
	if e.Incomplete {
		return fmt.Sprintf("percent decoding resulted in non-UTF-8 bytes: incomplete utf-8 byte sequence from index %d", e.Index)
	}
	return fmt.Sprintf("percent decoding resulted in non-UTF-8 bytes: invalid utf-8 sequence from index %d", e.Index)
}

func (e *InvalidPercentEncodingError) Is(target error) bool {
	return target == ErrInvalidPercentEncoding
}

// displayPattern strips the case-insensitivity prefix added at compile time so
// messages show the pattern as written in the rule document.
func displayPattern(re *regexp.Regexp) string {
	if re == nil {
		return "<nil>"
	}
	s := re.String()
	if len(s) >= 4 && s[:4] == "(?i)" {
		return s[4:]
	}
	return s
}
