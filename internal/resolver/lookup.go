package resolver

import (
	"fmt"

	"github.com/agext/levenshtein"
	"github.com/dazzle-lang/dazzle/internal/ast"
	"github.com/dazzle-lang/dazzle/internal/diag"
	"github.com/dazzle-lang/dazzle/internal/symtab"
)

// maxSuggestDistance bounds how far a misspelling may be from a real name
// before suggesting it would be noise.
const maxSuggestDistance = 3

// lookup resolves one textual reference from the given module, expecting a
// symbol of the given kind. Local scope wins over qualified scope. A
// symbol outside the module's transitive dependency closure is reported as
// not visible rather than unresolved, since the fix differs: declare the
// dependency versus fix the name.
func (r *resolver) lookup(fromModule string, ref ast.Ref, want ast.DeclKind) (*symtab.Symbol, bool) {
	sym, ok := r.table.Lookup(fromModule + "." + ref.Name)
	if !ok {
		sym, ok = r.table.Lookup(ref.Name)
	}
	if !ok {
		msg := fmt.Sprintf("unresolved %s reference %q", want, ref.Name)
		if suggestion := r.suggest(fromModule, ref.Name, want); suggestion != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
		}
		r.sink.Errorf(diag.EUnresolvedReference, ref.Span, "%s", msg)
		return nil, false
	}

	if !r.graph.Closure(fromModule)[sym.Module] {
		r.sink.Errorf(diag.ESymbolNotVisible, ref.Span,
			"%s %q is declared in module %q, which module %q does not require",
			sym.Kind, sym.Qualified, sym.Module, fromModule)
		return nil, false
	}

	if sym.Kind != want {
		r.sink.Errorf(diag.EUnresolvedReference, ref.Span,
			"expected %s, but %q is a %s", want, sym.Qualified, sym.Kind)
		return nil, false
	}

	return sym, true
}

// suggest returns the nearest visible symbol name of the wanted kind
// within the edit-distance bound, or the empty string. A suggestion is
// never the input itself: when the miss matches a symbol's bare name
// exactly, the qualified name is the usable spelling.
func (r *resolver) suggest(fromModule, name string, want ast.DeclKind) string {
	closure := r.graph.Closure(fromModule)

	best := ""
	bestDist := maxSuggestDistance + 1
	for _, sym := range r.table.All() {
		if sym.Kind != want || !closure[sym.Module] {
			continue
		}
		for _, candidate := range []string{sym.Name, sym.Qualified} {
			d := levenshtein.Distance(name, candidate, nil)
			if d < bestDist {
				bestDist = d
				best = candidate
				if candidate == name {
					best = sym.Qualified
				}
			}
		}
	}
	return best
}
