// Package modgraph builds the dependency graph over source modules and
// produces the deterministic build order the rest of the pipeline assumes.
package modgraph

import (
	"context"
	"sort"
	"strings"

	"github.com/dazzle-lang/dazzle/internal/ast"
	"github.com/dazzle-lang/dazzle/internal/ctxlog"
	"github.com/dazzle-lang/dazzle/internal/diag"
)

// Graph is the directed dependency graph over modules. An edge A -> B
// means A requires B resolved first.
type Graph struct {
	modules map[string]*ast.Module
	// requires maps a module path to its declared dependencies, sorted so
	// traversal order is stable across runs.
	requires map[string][]string
	order    []*ast.Module
}

// Order returns the modules in topological order, dependencies first.
func (g *Graph) Order() []*ast.Module {
	return g.order
}

// Module returns the module with the given path, or nil.
func (g *Graph) Module(path string) *ast.Module {
	return g.modules[path]
}

// Closure returns the transitive dependency closure of the given module,
// including the module itself. Symbol visibility during resolution is
// scoped to this set.
func (g *Graph) Closure(path string) map[string]bool {
	seen := map[string]bool{}
	var walk func(p string)
	walk = func(p string) {
		if seen[p] {
			return
		}
		seen[p] = true
		for _, dep := range g.requires[p] {
			walk(dep)
		}
	}
	walk(path)
	return seen
}

// colorMark is the three-color DFS state of one module.
type colorMark int

const (
	unvisited colorMark = iota
	inProgress
	done
)

// Build constructs the graph and its topological order. A dependency cycle
// is fatal: no ordering exists, so Build reports E_CYCLIC_MODULE_DEP naming
// every module on the cycle in encounter order and returns a nil graph. A
// module requiring itself is a one-module cycle, not a no-op. A dependency
// on an unknown module path is also fatal since symbol visibility cannot
// be established without it.
func Build(ctx context.Context, modules []*ast.Module, sink *diag.Sink) *Graph {
	logger := ctxlog.FromContext(ctx)

	g := &Graph{
		modules:  make(map[string]*ast.Module, len(modules)),
		requires: make(map[string][]string, len(modules)),
	}
	for _, m := range modules {
		g.modules[m.Path] = m
	}

	missing := false
	for _, m := range modules {
		deps := append([]string(nil), m.Requires...)
		sort.Strings(deps)
		g.requires[m.Path] = deps
		for _, dep := range deps {
			if _, ok := g.modules[dep]; !ok {
				sink.Errorf(diag.EUnresolvedReference, m.Span,
					"module %q requires unknown module %q", m.Path, dep)
				missing = true
			}
		}
	}
	if missing {
		return nil
	}

	// Stable root order keeps both the topological order and any cycle
	// report deterministic.
	paths := make([]string, 0, len(g.modules))
	for p := range g.modules {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	marks := make(map[string]colorMark, len(paths))
	var stack []string

	var visit func(path string) []string
	visit = func(path string) []string {
		switch marks[path] {
		case done:
			return nil
		case inProgress:
			// Back-edge: the cycle is the stack suffix beginning at path.
			for i, p := range stack {
				if p == path {
					return append(append([]string(nil), stack[i:]...), path)
				}
			}
			return []string{path, path}
		}
		marks[path] = inProgress
		stack = append(stack, path)
		for _, dep := range g.requires[path] {
			if cycle := visit(dep); cycle != nil {
				return cycle
			}
		}
		stack = stack[:len(stack)-1]
		marks[path] = done
		g.order = append(g.order, g.modules[path])
		return nil
	}

	for _, p := range paths {
		if cycle := visit(p); cycle != nil {
			span := g.modules[cycle[0]].Span
			sink.Errorf(diag.ECyclicModuleDep, span,
				"module dependency cycle: %s", formatCycle(cycle))
			logger.Debug("module graph build aborted on cycle", "cycle", cycle)
			return nil
		}
	}

	logger.Debug("module graph built", "modules", len(g.order))
	return g
}

// formatCycle renders a cycle path as "a -> b -> a". A self-dependency
// renders as "a -> a".
func formatCycle(cycle []string) string {
	return strings.Join(cycle, " -> ")
}
