// Package diagnostic carries linter findings and re-projects them from
// synthetic script coordinates back onto the original HAML document.
package diagnostic

import (
	"encoding/json"

	"github.com/walteh/hamlint/pkg/sourcemap"
	"gitlab.com/tozd/go/errors"
)

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity string

const (
	Error   DiagnosticSeverity = "error"
	Warning DiagnosticSeverity = "warning"
	Info    DiagnosticSeverity = "info"
)

// Diagnostic is a single finding from the Ruby analyzer. Line is 1-based
// and refers to the synthetic script until Remap rewrites it.
type Diagnostic struct {
	Message  string             `json:"message"`
	Line     int                `json:"line"`
	Rule     string             `json:"rule,omitempty"`
	Severity DiagnosticSeverity `json:"severity"`
}

// Remap re-keys each diagnostic's line through the source map, returning
// diagnostics positioned on the original document. A diagnostic on a line
// the map does not cover means the analyzer and the extraction disagree
// about the script, which is a hard error.
func Remap(diags []Diagnostic, m *sourcemap.Map) ([]Diagnostic, error) {
	if m == nil {
		return nil, errors.New("source map is nil")
	}

	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		original, ok := m.Lookup(d.Line)
		if !ok {
			return nil, errors.Errorf("diagnostic on unmapped line %d: %s", d.Line, d.Message)
		}
		d.Line = original
		out = append(out, d)
	}
	return out, nil
}

// Formatter formats diagnostics into an output format.
type Formatter interface {
	Format(diags []Diagnostic) ([]byte, error)
}

// JSONFormatter renders diagnostics as a JSON array.
type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format implements Formatter.
func (f *JSONFormatter) Format(diags []Diagnostic) ([]byte, error) {
	if diags == nil {
		diags = []Diagnostic{}
	}
	return json.Marshal(diags)
}
