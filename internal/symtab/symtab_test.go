package symtab

import (
	"context"
	"testing"

	"github.com/dazzle-lang/dazzle/internal/ast"
	"github.com/dazzle-lang/dazzle/internal/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entityDecl(name string) *ast.Decl {
	return &ast.Decl{Kind: ast.KindEntity, Name: name, Entity: &ast.Entity{}}
}

func TestAddModuleCatalogsSymbols(t *testing.T) {
	b := NewBuilder()
	sink := &diag.Sink{}
	b.AddModule(context.Background(), &ast.Module{
		Path: "shop.core",
		Declarations: []*ast.Decl{
			entityDecl("User"),
			{Kind: ast.KindEnum, Name: "status", Enum: &ast.Enum{Values: []string{"on", "off"}}},
		},
	}, sink)

	table := b.Freeze()
	require.False(t, sink.HasErrors())
	assert.Equal(t, 2, table.Len())

	sym, ok := table.Lookup("shop.core.User")
	require.True(t, ok)
	assert.Equal(t, "User", sym.Name)
	assert.Equal(t, "shop.core", sym.Module)
	assert.Equal(t, ast.KindEntity, sym.Kind)
	assert.Same(t, sym, table.ByID(sym.ID))

	ids := table.ModuleSymbols("shop.core")
	assert.Len(t, ids, 2)
}

func TestAddModuleFlagsLocalDuplicate(t *testing.T) {
	b := NewBuilder()
	sink := &diag.Sink{}
	b.AddModule(context.Background(), &ast.Module{
		Path:         "shop.core",
		Declarations: []*ast.Decl{entityDecl("User"), entityDecl("User")},
	}, sink)

	table := b.Freeze()
	diags := sink.List()
	require.Len(t, diags, 1)
	assert.Equal(t, diag.EDuplicateSymbol, diags[0].Code)
	assert.Equal(t, diag.Error, diags[0].Severity)
	// The first declaration wins; the duplicate is not registered.
	assert.Equal(t, 1, table.Len())
}

func TestLookupUnknown(t *testing.T) {
	b := NewBuilder()
	table := b.Freeze()
	_, ok := table.Lookup("nope.Thing")
	assert.False(t, ok)
}

func TestByIDPanicsOnForeignID(t *testing.T) {
	b := NewBuilder()
	table := b.Freeze()
	assert.Panics(t, func() { table.ByID(ID(7)) })
}
