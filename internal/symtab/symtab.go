// Package symtab catalogs every named declaration in the module set. The
// Builder owns all mutation; Freeze returns the immutable Table that the
// resolver and later stages read. Symbols are addressed by integer ID so
// resolved references stay serializable and carry no pointer back into the
// table.
package symtab

import (
	"context"
	"fmt"

	"github.com/dazzle-lang/dazzle/internal/ast"
	"github.com/dazzle-lang/dazzle/internal/ctxlog"
	"github.com/dazzle-lang/dazzle/internal/diag"
)

// ID is a stable handle for one symbol within a single pipeline run.
type ID int

// None marks the absence of a symbol.
const None ID = -1

// Symbol is one named declaration together with where it was declared.
// The Decl body stays raw (unresolved) at this stage.
type Symbol struct {
	ID        ID
	Name      string // local name
	Qualified string // module path + "." + local name
	Module    string
	Kind      ast.DeclKind
	Decl      *ast.Decl
	Span      diag.Span
}

// Table is the frozen global symbol table.
type Table struct {
	symbols  []*Symbol
	byQName  map[string]ID
	byModule map[string][]ID
}

// Builder accumulates symbols module by module in topological order.
type Builder struct {
	table *Table
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{table: &Table{
		byQName:  make(map[string]ID),
		byModule: make(map[string][]ID),
	}}
}

// AddModule walks one module's declarations and registers each. Local
// collisions and qualified-name collisions are both E_DUPLICATE_SYMBOL.
// Reference fields are not touched here; the builder only catalogs what
// exists.
func (b *Builder) AddModule(ctx context.Context, m *ast.Module, sink *diag.Sink) {
	logger := ctxlog.FromContext(ctx)

	local := make(map[string]*ast.Decl, len(m.Declarations))
	for _, d := range m.Declarations {
		if prev, ok := local[d.Name]; ok {
			sink.Errorf(diag.EDuplicateSymbol, d.Span,
				"%s %q already declared in module %q at %s",
				d.Kind, d.Name, m.Path, prev.Span)
			continue
		}
		local[d.Name] = d

		qualified := m.Path + "." + d.Name
		if prevID, ok := b.table.byQName[qualified]; ok {
			prev := b.table.symbols[prevID]
			sink.Errorf(diag.EDuplicateSymbol, d.Span,
				"qualified name %q already declared by module %q at %s",
				qualified, prev.Module, prev.Span)
			continue
		}

		id := ID(len(b.table.symbols))
		sym := &Symbol{
			ID:        id,
			Name:      d.Name,
			Qualified: qualified,
			Module:    m.Path,
			Kind:      d.Kind,
			Decl:      d,
			Span:      d.Span,
		}
		b.table.symbols = append(b.table.symbols, sym)
		b.table.byQName[qualified] = id
		b.table.byModule[m.Path] = append(b.table.byModule[m.Path], id)
	}

	logger.Debug("module cataloged", "module", m.Path, "symbols", len(local))
}

// Freeze returns the immutable table. The builder must not be used after.
func (b *Builder) Freeze() *Table {
	t := b.table
	b.table = nil
	return t
}

// Lookup returns the symbol with the given qualified name.
func (t *Table) Lookup(qualified string) (*Symbol, bool) {
	id, ok := t.byQName[qualified]
	if !ok {
		return nil, false
	}
	return t.symbols[id], true
}

// ByID returns the symbol with the given ID; it panics on an ID that this
// table never issued, which indicates a defect in the caller.
func (t *Table) ByID(id ID) *Symbol {
	if id < 0 || int(id) >= len(t.symbols) {
		panic(fmt.Sprintf("symtab: invalid symbol id %d", id))
	}
	return t.symbols[id]
}

// ModuleSymbols returns the IDs of every symbol declared by the module, in
// declaration order.
func (t *Table) ModuleSymbols(module string) []ID {
	return t.byModule[module]
}

// Len returns the number of symbols in the table.
func (t *Table) Len() int {
	return len(t.symbols)
}

// All returns every symbol in insertion (declaration) order. The slice is
// shared; callers must not mutate it.
func (t *Table) All() []*Symbol {
	return t.symbols
}
