// Package diag defines the diagnostic model shared by every pipeline stage.
// Stages report problems by appending structured diagnostics to a Sink
// rather than returning errors, so a single run surfaces every problem in
// the module set at once.
package diag

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// Severity classifies a diagnostic.
type Severity int

const (
	// Warning marks a model that is suspicious but still consistent. An
	// AppSpec is produced even when warnings are present.
	Warning Severity = iota
	// Error marks a problem that prevents an AppSpec from being produced.
	Error
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// MarshalJSON encodes the severity as its string name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Span is a half-open source location attached to a diagnostic. Module is
// the qualified module path the location belongs to; Filename is the file
// the module was loaded from, when known.
type Span struct {
	Module    string `json:"module_path"`
	Filename  string `json:"filename,omitempty"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"end_line"`
	EndColumn int    `json:"end_column"`
}

// SpanFromRange converts an hcl.Range produced by the frontend into a Span.
func SpanFromRange(module string, r hcl.Range) Span {
	return Span{
		Module:    module,
		Filename:  r.Filename,
		Line:      r.Start.Line,
		Column:    r.Start.Column,
		EndLine:   r.End.Line,
		EndColumn: r.End.Column,
	}
}

// String renders the span in file:line:col form for log and CLI output.
func (s Span) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.Module, s.Line, s.Column)
}

// Diagnostic is one structured error or warning. Code is a stable
// machine-readable string so tooling can filter or suppress without parsing
// the message text.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
	Span     Span     `json:"span"`
}

// String renders the diagnostic in the canonical single-line form.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: [%s] %s (%s)", d.Severity, d.Code, d.Message, d.Span)
}
