// Package hcl is the concrete frontend: it parses .dzl files and
// translates them into the format-agnostic AST the pipeline consumes. The
// pipeline itself never imports this package; anything able to produce
// ast.Module values can feed it.
package hcl

import (
	"context"
	"fmt"
	"sort"

	"github.com/dazzle-lang/dazzle/internal/ast"
	"github.com/dazzle-lang/dazzle/internal/ctxlog"
	"github.com/dazzle-lang/dazzle/internal/diag"
	"github.com/dazzle-lang/dazzle/internal/fsutil"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Loader parses DAZZLE source files into AST modules.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader returns a ready Loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load discovers every .dzl file under the given roots and parses all of
// them. Files sharing a module path merge into one module. Parse and
// decode problems come back as diagnostics; the returned error is
// reserved for I/O failures.
func (l *Loader) Load(ctx context.Context, roots ...string) ([]*ast.Module, diag.List, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, root := range roots {
		found, err := fsutil.FindFilesByExtension(root, ".dzl")
		if err != nil {
			return nil, nil, fmt.Errorf("discovering source files in %s: %w", root, err)
		}
		files = append(files, found...)
	}
	sort.Strings(files)
	logger.Debug("source files discovered", "roots", roots, "count", len(files))

	sink := &diag.Sink{}
	var modules []*ast.Module
	byPath := map[string]*ast.Module{}

	for _, file := range files {
		hclFile, hclDiags := l.parser.ParseHCLFile(file)
		if reportHCLDiags(sink, hclDiags) {
			continue
		}
		m := decodeFile(hclFile.Body, sink)
		if m == nil {
			continue
		}
		if existing, ok := byPath[m.Path]; ok {
			mergeModule(existing, m)
			continue
		}
		byPath[m.Path] = m
		modules = append(modules, m)
	}

	diags := sink.List()
	diags.Sort()
	return modules, diags, nil
}

// LoadSources parses in-memory sources keyed by a synthetic filename. It
// exists for tests and embedding callers.
func (l *Loader) LoadSources(ctx context.Context, sources map[string]string) ([]*ast.Module, diag.List) {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	sink := &diag.Sink{}
	var modules []*ast.Module
	byPath := map[string]*ast.Module{}

	for _, name := range names {
		hclFile, hclDiags := l.parser.ParseHCL([]byte(sources[name]), name)
		if reportHCLDiags(sink, hclDiags) {
			continue
		}
		m := decodeFile(hclFile.Body, sink)
		if m == nil {
			continue
		}
		if existing, ok := byPath[m.Path]; ok {
			mergeModule(existing, m)
			continue
		}
		byPath[m.Path] = m
		modules = append(modules, m)
	}

	diags := sink.List()
	diags.Sort()
	return modules, diags
}

// mergeModule folds a second file of the same module into the first.
// Requires and roles are unioned; duplicate declarations across files are
// caught later by the symbol table, not here.
func mergeModule(dst, src *ast.Module) {
	dst.Requires = union(dst.Requires, src.Requires)
	dst.Roles = union(dst.Roles, src.Roles)
	dst.Declarations = append(dst.Declarations, src.Declarations...)
}

func union(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range append(a, b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// reportHCLDiags converts parser diagnostics into E_PARSE entries and
// reports whether any of them is an error.
func reportHCLDiags(sink *diag.Sink, hclDiags hcl.Diagnostics) bool {
	for _, d := range hclDiags {
		span := diag.Span{}
		if d.Subject != nil {
			span = diag.SpanFromRange("", *d.Subject)
		}
		msg := d.Summary
		if d.Detail != "" {
			msg += ": " + d.Detail
		}
		if d.Severity == hcl.DiagError {
			sink.Errorf(diag.EParse, span, "%s", msg)
		} else {
			sink.Warnf(diag.EParse, span, "%s", msg)
		}
	}
	return hclDiags.HasErrors()
}
