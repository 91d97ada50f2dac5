package noise

import "strings"

// Pattern lists for transient backend-connectivity noise. Matching is
// substring-based and case-sensitive; a message matching any entry in the
// set for its level is dropped before it reaches the sink. Substantive
// failures (auth, permission, not-found) are deliberately absent so they
// always pass through.
var (
	errorPatterns = []string{
		"transport errored",
		"connection reset by peer",
		"broken pipe",
		"connection refused",
		"stream terminated by RST_STREAM",
		"http2: client connection lost",
		"use of closed network connection",
		"i/o timeout",
		"EOF",
	}

	warnPatterns = []string{
		"reconnecting to backend",
		"connection is closing",
		"retry backoff",
		"temporary failure in name resolution",
	}

	logPatterns = []string{
		"heartbeat missed",
		"keepalive ping failed",
		"subscriber channel full",
	}
)

// Classifier decides whether a diagnostic message is non-actionable
// connectivity noise.
type Classifier struct {
	errors   []string
	warnings []string
	logs     []string
}

func NewClassifier() *Classifier {
	return &Classifier{
		errors:   errorPatterns,
		warnings: warnPatterns,
		logs:     logPatterns,
	}
}

// Filtered reports whether message matches any known noise pattern at any
// level. An empty message is never filtered.
func (c *Classifier) Filtered(message string) bool {
	if message == "" {
		return false
	}
	return matchAny(message, c.errors) ||
		matchAny(message, c.warnings) ||
		matchAny(message, c.logs)
}

// FilteredError reports whether message matches an error-level noise pattern.
func (c *Classifier) FilteredError(message string) bool {
	return message != "" && matchAny(message, c.errors)
}

// FilteredWarning reports whether message matches a warning-level noise pattern.
func (c *Classifier) FilteredWarning(message string) bool {
	return message != "" && matchAny(message, c.warnings)
}

// FilteredLog reports whether message matches a log-level noise pattern.
func (c *Classifier) FilteredLog(message string) bool {
	return message != "" && matchAny(message, c.logs)
}

// Normalize reduces a message to its matched pattern so occurrences of the
// same fault count against one throttle key. Unmatched messages normalize
// to themselves.
func (c *Classifier) Normalize(message string) string {
	for _, set := range [][]string{c.errors, c.warnings, c.logs} {
		for _, p := range set {
			if strings.Contains(message, p) {
				return p
			}
		}
	}
	return message
}

func matchAny(message string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(message, p) {
			return true
		}
	}
	return false
}
