package semantics

import (
	"sort"
	"strings"

	"github.com/dazzle-lang/dazzle/internal/ast"
	"github.com/dazzle-lang/dazzle/internal/diag"
	"github.com/dazzle-lang/dazzle/internal/resolver"
	"github.com/dazzle-lang/dazzle/internal/symtab"
)

// checkRelationships verifies that cascade-delete edges do not form a
// cycle. Deleting any record on such a cycle would cascade back into
// itself, so the cycle is an error. The check uses the same three-color
// walk as the module graph, applied to a graph built from cascade
// relationship edges only. Every distinct cycle is reported once, at the
// entity where the walk closed it.
func checkRelationships(res *resolver.Resolution, sink *diag.Sink) {
	// cascade maps entity symbol ID to the targets it cascade-deletes.
	cascade := map[symtab.ID][]symtab.ID{}
	var ids []symtab.ID
	for id, e := range res.Entities {
		ids = append(ids, id)
		for _, rel := range e.Relationships {
			if rel.OnDelete == ast.DeleteCascade {
				cascade[id] = append(cascade[id], rel.Target)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, targets := range cascade {
		sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	}

	const (
		unvisited = iota
		inProgress
		done
	)
	colors := map[symtab.ID]int{}
	var stack []symtab.ID

	var visit func(id symtab.ID)
	visit = func(id symtab.ID) {
		switch colors[id] {
		case done:
			return
		case inProgress:
			sink.Errorf(diag.ECascadeCycle, res.Table.ByID(id).Span,
				"cascade delete cycle: %s", formatCascadeCycle(res, stack, id))
			return
		}
		colors[id] = inProgress
		stack = append(stack, id)
		for _, target := range cascade[id] {
			// Targets excluded from the resolution (earlier errors) still
			// appear as IDs; they have no outgoing edges here.
			visit(target)
		}
		stack = stack[:len(stack)-1]
		colors[id] = done
	}

	for _, id := range ids {
		visit(id)
	}
}

func formatCascadeCycle(res *resolver.Resolution, stack []symtab.ID, repeat symtab.ID) string {
	start := 0
	for i, id := range stack {
		if id == repeat {
			start = i
			break
		}
	}
	var names []string
	for _, id := range stack[start:] {
		names = append(names, res.Table.ByID(id).Qualified)
	}
	names = append(names, res.Table.ByID(repeat).Qualified)
	return strings.Join(names, " -> ")
}
