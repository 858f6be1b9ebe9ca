// Package pipeline wires the five model-building stages: module graph,
// symbol table, reference resolution, semantic validation, and assembly.
// Data flows strictly forward; every stage produces a new artifact from
// the previous one. The pipeline is a batch transform: one call, one
// complete result, no shared state between runs.
package pipeline

import (
	"context"
	"sort"

	"github.com/dazzle-lang/dazzle/internal/appspec"
	"github.com/dazzle-lang/dazzle/internal/assemble"
	"github.com/dazzle-lang/dazzle/internal/ast"
	"github.com/dazzle-lang/dazzle/internal/ctxlog"
	"github.com/dazzle-lang/dazzle/internal/diag"
	"github.com/dazzle-lang/dazzle/internal/modgraph"
	"github.com/dazzle-lang/dazzle/internal/resolver"
	"github.com/dazzle-lang/dazzle/internal/semantics"
	"github.com/dazzle-lang/dazzle/internal/symtab"
)

// Run executes the full pipeline over the given parsed modules. It returns
// the AppSpec together with every collected diagnostic; the AppSpec is nil
// whenever any diagnostic has error severity. A non-nil error reports an
// internal failure (such as marshaling during hashing), never a model
// problem.
//
// Two failures abort mid-pipeline because no deterministic order exists to
// continue past them: a module dependency cycle and an archetype
// inheritance cycle. Everything else accumulates.
func Run(ctx context.Context, modules []*ast.Module) (*appspec.AppSpec, diag.List, error) {
	logger := ctxlog.FromContext(ctx)
	sink := &diag.Sink{}

	// A stable input order makes symbol IDs, and with them every later
	// artifact, reproducible regardless of how the caller collected the
	// modules.
	sorted := append([]*ast.Module(nil), modules...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	graph := modgraph.Build(ctx, sorted, sink)
	if graph == nil {
		return nil, finish(sink), nil
	}
	logger.Debug("stage complete", "stage", "modgraph")

	builder := symtab.NewBuilder()
	for _, m := range graph.Order() {
		builder.AddModule(ctx, m, sink)
	}
	table := builder.Freeze()
	logger.Debug("stage complete", "stage", "symtab", "symbols", table.Len())

	res := resolver.Resolve(ctx, graph, table, sink)
	if res == nil {
		return nil, finish(sink), nil
	}
	logger.Debug("stage complete", "stage", "resolver")

	semantics.Check(ctx, res, sink)
	logger.Debug("stage complete", "stage", "semantics")

	diags := finish(sink)
	spec, err := assemble.Build(ctx, res, diags)
	if err != nil {
		return nil, diags, err
	}
	logger.Debug("stage complete", "stage", "assemble", "produced", spec != nil)

	return spec, diags, nil
}

// finish sorts the collected diagnostics into their canonical order.
func finish(sink *diag.Sink) diag.List {
	diags := sink.List()
	diags.Sort()
	return diags
}
