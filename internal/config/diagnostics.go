package config

import "strings"

// Severity classifies a diagnostic.
type Severity string

const (
	// SeverityWarn marks issues that degraded the load without discarding
	// configuration, e.g. an unreachable remote store.
	SeverityWarn Severity = "warn"

	// SeverityError marks issues that discarded configuration, e.g. a
	// section omitted after a failed type coercion.
	SeverityError Severity = "error"
)

// Diagnostic describes one non-fatal issue encountered while resolving the
// configuration. Section is empty for source-level issues (remote layer),
// Key is empty when the issue is not attributable to a single field.
type Diagnostic struct {
	Section  string   `json:"section,omitempty"`
	Key      string   `json:"key,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// String renders the diagnostic as "section.key: message", dropping the
// parts that are unset.
func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Section != "" {
		b.WriteString(d.Section)
		if d.Key != "" {
			b.WriteString(".")
			b.WriteString(d.Key)
		}
		b.WriteString(": ")
	}
	b.WriteString(d.Message)

	return b.String()
}
