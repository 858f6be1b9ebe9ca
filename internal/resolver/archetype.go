package resolver

import (
	"context"
	"sort"
	"strings"

	"github.com/dazzle-lang/dazzle/internal/ast"
	"github.com/dazzle-lang/dazzle/internal/ctxlog"
	"github.com/dazzle-lang/dazzle/internal/diag"
	"github.com/dazzle-lang/dazzle/internal/symtab"
)

// archetypeColor is the three-color DFS state used for the inheritance
// cycle check, scoped to the archetype subgraph only.
type archetypeColor int

const (
	archUnvisited archetypeColor = iota
	archInProgress
	archDone
)

// flattenArchetypes resolves every archetype's extends chain and caches the
// flattened field list, base fields first. It returns false on an
// inheritance cycle, which is fatal to the resolution stage: no flattening
// order exists past it.
func (r *resolver) flattenArchetypes(ctx context.Context) bool {
	logger := ctxlog.FromContext(ctx)
	r.flattened = map[symtab.ID][]*Field{}

	var ids []symtab.ID
	for _, sym := range r.table.All() {
		if sym.Kind == ast.KindArchetype {
			ids = append(ids, sym.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	colors := make(map[symtab.ID]archetypeColor, len(ids))
	var stack []*symtab.Symbol

	var visit func(sym *symtab.Symbol) bool
	visit = func(sym *symtab.Symbol) bool {
		switch colors[sym.ID] {
		case archDone:
			return true
		case archInProgress:
			r.sink.Errorf(diag.ECyclicArchetype, sym.Span,
				"archetype inheritance cycle: %s", formatArchetypeCycle(stack, sym))
			return false
		}
		colors[sym.ID] = archInProgress
		stack = append(stack, sym)
		defer func() { stack = stack[:len(stack)-1] }()

		var fields []*Field
		arch := sym.Decl.Archetype
		if !arch.Extends.IsZero() {
			if base, ok := r.lookup(sym.Module, arch.Extends, ast.KindArchetype); ok {
				if !visit(base) {
					return false
				}
				fields = append(fields, r.flattened[base.ID]...)
			}
		}
		for _, f := range arch.Fields {
			if rf, ok := r.resolveField(sym.Module, f); ok {
				fields = append(fields, rf)
			}
		}

		colors[sym.ID] = archDone
		r.flattened[sym.ID] = fields
		return true
	}

	for _, id := range ids {
		if !visit(r.table.ByID(id)) {
			return false
		}
	}

	logger.Debug("archetypes flattened", "count", len(ids))
	return true
}

// formatArchetypeCycle renders the inheritance cycle in encounter order,
// starting from the repeated archetype.
func formatArchetypeCycle(stack []*symtab.Symbol, repeat *symtab.Symbol) string {
	var names []string
	start := 0
	for i, sym := range stack {
		if sym.ID == repeat.ID {
			start = i
			break
		}
	}
	for _, sym := range stack[start:] {
		names = append(names, sym.Qualified)
	}
	names = append(names, repeat.Qualified)
	return strings.Join(names, " -> ")
}
