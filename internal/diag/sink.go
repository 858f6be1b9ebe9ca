package diag

import (
	"fmt"
	"sort"
)

// List is an ordered collection of diagnostics.
type List []Diagnostic

// HasErrors reports whether the list contains at least one error-severity
// diagnostic.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity diagnostics.
func (l List) Errors() List {
	var out List
	for _, d := range l {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns only the warning-severity diagnostics.
func (l List) Warnings() List {
	var out List
	for _, d := range l {
		if d.Severity == Warning {
			out = append(out, d)
		}
	}
	return out
}

// Sort orders the list by module path, then source position, then code.
// Every pipeline run sorts before returning so repeated runs over the same
// input produce identical diagnostic order.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i], l[j]
		if a.Span.Module != b.Span.Module {
			return a.Span.Module < b.Span.Module
		}
		if a.Span.Filename != b.Span.Filename {
			return a.Span.Filename < b.Span.Filename
		}
		if a.Span.Line != b.Span.Line {
			return a.Span.Line < b.Span.Line
		}
		if a.Span.Column != b.Span.Column {
			return a.Span.Column < b.Span.Column
		}
		return a.Code < b.Code
	})
}

// Sink accumulates diagnostics from one pipeline stage or checker. The
// zero value is ready to use.
type Sink struct {
	diags List
}

// Append adds one fully formed diagnostic.
func (s *Sink) Append(d Diagnostic) {
	s.diags = append(s.diags, d)
}

// Errorf records an error-severity diagnostic at span.
func (s *Sink) Errorf(code Code, span Span, format string, args ...any) {
	s.Append(Diagnostic{Severity: Error, Code: code, Message: fmt.Sprintf(format, args...), Span: span})
}

// Warnf records a warning-severity diagnostic at span.
func (s *Sink) Warnf(code Code, span Span, format string, args ...any) {
	s.Append(Diagnostic{Severity: Warning, Code: code, Message: fmt.Sprintf(format, args...), Span: span})
}

// Extend appends every diagnostic from another list.
func (s *Sink) Extend(l List) {
	s.diags = append(s.diags, l...)
}

// HasErrors reports whether any collected diagnostic is an error.
func (s *Sink) HasErrors() bool {
	return s.diags.HasErrors()
}

// List returns the collected diagnostics in insertion order.
func (s *Sink) List() List {
	return s.diags
}
