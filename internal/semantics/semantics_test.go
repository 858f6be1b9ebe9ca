package semantics

import (
	"context"
	"testing"

	"github.com/dazzle-lang/dazzle/internal/ast"
	"github.com/dazzle-lang/dazzle/internal/diag"
	"github.com/dazzle-lang/dazzle/internal/modgraph"
	"github.com/dazzle-lang/dazzle/internal/resolver"
	"github.com/dazzle-lang/dazzle/internal/symtab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// check resolves the modules and runs every semantic checker, returning
// only the diagnostics the checkers produced.
func check(t *testing.T, modules ...*ast.Module) diag.List {
	t.Helper()
	ctx := context.Background()
	sink := &diag.Sink{}

	g := modgraph.Build(ctx, modules, sink)
	require.NotNil(t, g)
	b := symtab.NewBuilder()
	for _, m := range g.Order() {
		b.AddModule(ctx, m, sink)
	}
	res := resolver.Resolve(ctx, g, b.Freeze(), sink)
	require.NotNil(t, res)
	require.Empty(t, sink.List(), "fixture must resolve cleanly")

	Check(ctx, res, sink)
	list := sink.List()
	list.Sort()
	return list
}

func entityDecl(name string, e *ast.Entity) *ast.Decl {
	return &ast.Decl{Kind: ast.KindEntity, Name: name, Entity: e}
}

func codes(list diag.List) []diag.Code {
	out := make([]diag.Code, 0, len(list))
	for _, d := range list {
		out = append(out, d.Code)
	}
	return out
}

func TestCascadeDeleteCycle(t *testing.T) {
	m := &ast.Module{
		Path: "app",
		Declarations: []*ast.Decl{
			entityDecl("Order", &ast.Entity{
				Relationships: []*ast.Relationship{
					{Name: "invoice", OnDelete: ast.DeleteCascade, Target: ast.Ref{Name: "Invoice"}},
				},
			}),
			entityDecl("Invoice", &ast.Entity{
				Relationships: []*ast.Relationship{
					{Name: "order", OnDelete: ast.DeleteCascade, Target: ast.Ref{Name: "Order"}},
				},
			}),
		},
	}

	diags := check(t, m)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.ECascadeCycle, diags[0].Code)
	assert.Contains(t, diags[0].Message, "app.Invoice")
	assert.Contains(t, diags[0].Message, "app.Order")
}

func TestRestrictEdgesDoNotCycle(t *testing.T) {
	m := &ast.Module{
		Path: "app",
		Declarations: []*ast.Decl{
			entityDecl("Order", &ast.Entity{
				Relationships: []*ast.Relationship{
					{Name: "invoice", OnDelete: ast.DeleteRestrict, Target: ast.Ref{Name: "Invoice"}},
				},
			}),
			entityDecl("Invoice", &ast.Entity{
				Relationships: []*ast.Relationship{
					{Name: "order", OnDelete: ast.DeleteRestrict, Target: ast.Ref{Name: "Order"}},
				},
			}),
		},
	}
	assert.Empty(t, check(t, m))
}

// ticketMachine is a three-state lifecycle used by the reachability tests.
func ticketMachine(withEntry bool) *ast.StateMachine {
	sm := &ast.StateMachine{
		Field:   "status",
		Initial: "open",
		States: []*ast.State{
			{Name: "open", Span: diag.Span{Line: 2}},
			{Name: "in_progress", Span: diag.Span{Line: 3}},
			{Name: "resolved", Terminal: true, Span: diag.Span{Line: 4}},
		},
		Transitions: []*ast.Transition{
			{From: "in_progress", To: "resolved", Trigger: "resolve"},
		},
	}
	if withEntry {
		sm.Transitions = append(sm.Transitions,
			&ast.Transition{From: "open", To: "in_progress", Trigger: "start"})
	}
	return sm
}

func TestStateMachineFullyReachable(t *testing.T) {
	m := &ast.Module{
		Path: "app",
		Declarations: []*ast.Decl{
			entityDecl("Ticket", &ast.Entity{StateMachine: ticketMachine(true)}),
		},
	}
	assert.Empty(t, check(t, m))
}

func TestRemovingEntryTransitionOrphansDownstreamStates(t *testing.T) {
	m := &ast.Module{
		Path: "app",
		Declarations: []*ast.Decl{
			entityDecl("Ticket", &ast.Entity{StateMachine: ticketMachine(false)}),
		},
	}

	diags := check(t, m)
	require.Len(t, diags, 3)

	// "open" keeps no outgoing transition and is not terminal, so it is a
	// dead end on top of the two orphaned states.
	assert.Equal(t, diag.WDeadEndState, diags[0].Code)
	assert.Contains(t, diags[0].Message, `"open"`)
	assert.Equal(t, diag.WUnreachableState, diags[1].Code)
	assert.Contains(t, diags[1].Message, `"in_progress"`)
	assert.Equal(t, diag.WUnreachableState, diags[2].Code)
	assert.Contains(t, diags[2].Message, `"resolved"`)
}

func TestUnknownTransitionEndpoint(t *testing.T) {
	sm := &ast.StateMachine{
		Field:   "status",
		Initial: "open",
		States:  []*ast.State{{Name: "open"}},
		Transitions: []*ast.Transition{
			{From: "open", To: "closed", Trigger: "close"},
		},
	}
	m := &ast.Module{
		Path:         "app",
		Declarations: []*ast.Decl{entityDecl("Ticket", &ast.Entity{StateMachine: sm})},
	}

	diags := check(t, m)
	// The broken transition is dropped, so "open" also has no outgoing edge.
	require.Len(t, diags, 2)
	assert.Equal(t, diag.EUnknownState, diags[0].Code)
	assert.Contains(t, diags[0].Message, `undeclared state "closed"`)
	assert.Equal(t, diag.WDeadEndState, diags[1].Code)
}

func TestUndeclaredInitialState(t *testing.T) {
	sm := &ast.StateMachine{
		Field:   "status",
		Initial: "draft",
		States:  []*ast.State{{Name: "open", Terminal: true}},
	}
	m := &ast.Module{
		Path:         "app",
		Declarations: []*ast.Decl{entityDecl("Ticket", &ast.Entity{StateMachine: sm})},
	}

	diags := check(t, m)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.EUnknownState, diags[0].Code)
	assert.Contains(t, diags[0].Message, `initial state "draft"`)
}

func TestDuplicateStateName(t *testing.T) {
	sm := &ast.StateMachine{
		Field:   "status",
		Initial: "open",
		States: []*ast.State{
			{Name: "open", Terminal: true, Span: diag.Span{Line: 2}},
			{Name: "open", Span: diag.Span{Line: 3}},
		},
	}
	m := &ast.Module{
		Path:         "app",
		Declarations: []*ast.Decl{entityDecl("Ticket", &ast.Entity{StateMachine: sm})},
	}

	diags := check(t, m)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.EDuplicateSymbol, diags[0].Code)
}

func TestTransitionRoleGuardAgainstVocabulary(t *testing.T) {
	sm := &ast.StateMachine{
		Field:   "status",
		Initial: "open",
		States: []*ast.State{
			{Name: "open"},
			{Name: "closed", Terminal: true},
		},
		Transitions: []*ast.Transition{
			{From: "open", To: "closed", Trigger: "close", Roles: []string{"superadmin"}},
		},
	}
	m := &ast.Module{
		Path:         "app",
		Roles:        []string{"admin", "member"},
		Declarations: []*ast.Decl{entityDecl("Ticket", &ast.Entity{StateMachine: sm})},
	}

	diags := check(t, m)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.WUnknownRole, diags[0].Code)
	assert.Contains(t, diags[0].Message, `"superadmin"`)
}

func TestRolesUncheckedWithoutVocabulary(t *testing.T) {
	m := &ast.Module{
		Path: "app",
		Declarations: []*ast.Decl{
			entityDecl("Doc", &ast.Entity{
				AccessRules: []*ast.AccessRule{
					{Operation: ast.OpRead, Roles: []string{"anything"}},
				},
			}),
		},
	}
	assert.Empty(t, check(t, m))
}

func TestRedundantAndContradictoryAccessRules(t *testing.T) {
	m := &ast.Module{
		Path:  "app",
		Roles: []string{"member"},
		Declarations: []*ast.Decl{
			entityDecl("Doc", &ast.Entity{
				AccessRules: []*ast.AccessRule{
					{Operation: ast.OpRead, Roles: []string{"member"}, Ownership: ast.OwnOwner, Span: diag.Span{Line: 2}},
					{Operation: ast.OpRead, Roles: []string{"member"}, Ownership: ast.OwnOwner, Span: diag.Span{Line: 3}},
					{Operation: ast.OpUpdate, Roles: []string{"member"}, Ownership: ast.OwnOwner, Span: diag.Span{Line: 4}},
					{Operation: ast.OpUpdate, Roles: []string{"member"}, Ownership: ast.OwnNotOwner, Span: diag.Span{Line: 5}},
				},
			}),
		},
	}

	diags := check(t, m)
	require.Len(t, diags, 2)
	assert.Equal(t,
		[]diag.Code{diag.WRedundantAccessRule, diag.WContradictoryAccessRule},
		codes(diags))
}

func TestOverlappingGrantsAreIndependent(t *testing.T) {
	m := &ast.Module{
		Path:  "app",
		Roles: []string{"admin", "member"},
		Declarations: []*ast.Decl{
			entityDecl("Doc", &ast.Entity{
				AccessRules: []*ast.AccessRule{
					{Operation: ast.OpRead, Roles: []string{"admin"}},
					{Operation: ast.OpRead, Roles: []string{"member"}, Ownership: ast.OwnOwner},
				},
			}),
		},
	}
	assert.Empty(t, check(t, m))
}

func TestUniqueFieldMustBeRequired(t *testing.T) {
	m := &ast.Module{
		Path: "app",
		Declarations: []*ast.Decl{
			entityDecl("User", &ast.Entity{
				Fields: []*ast.Field{
					{Name: "email", Type: ast.TypeString, Unique: true},
				},
			}),
		},
	}

	diags := check(t, m)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.EUniqueNullable, diags[0].Code)
	assert.Contains(t, diags[0].Message, `"email"`)
}

func TestDefaultOnRequiredFieldWarns(t *testing.T) {
	m := &ast.Module{
		Path: "app",
		Declarations: []*ast.Decl{
			entityDecl("User", &ast.Entity{
				Fields: []*ast.Field{
					{Name: "name", Type: ast.TypeString, Required: true, Default: "anon", HasDefault: true},
				},
			}),
		},
	}

	diags := check(t, m)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.WRequiredDefault, diags[0].Code)
}

func TestDefaultAssignability(t *testing.T) {
	cases := []struct {
		name    string
		field   *ast.Field
		wantErr bool
	}{
		{"number ok", &ast.Field{Name: "n", Type: ast.TypeNumber, Default: "42", HasDefault: true}, false},
		{"number bad", &ast.Field{Name: "n", Type: ast.TypeNumber, Default: "forty-two", HasDefault: true}, true},
		{"decimal ok", &ast.Field{Name: "d", Type: ast.TypeDecimal, Default: "19.99", HasDefault: true}, false},
		{"bool ok", &ast.Field{Name: "b", Type: ast.TypeBool, Default: "true", HasDefault: true}, false},
		{"bool bad", &ast.Field{Name: "b", Type: ast.TypeBool, Default: "yes", HasDefault: true}, true},
		{"datetime ok", &ast.Field{Name: "t", Type: ast.TypeDateTime, Default: "2024-01-02T15:04:05Z", HasDefault: true}, false},
		{"datetime bad", &ast.Field{Name: "t", Type: ast.TypeDateTime, Default: "tomorrow", HasDefault: true}, true},
		{"uuid ok", &ast.Field{Name: "u", Type: ast.TypeUUID, Default: "6ba7b810-9dad-11d1-80b4-00c04fd430c8", HasDefault: true}, false},
		{"uuid bad", &ast.Field{Name: "u", Type: ast.TypeUUID, Default: "not-a-uuid", HasDefault: true}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := &ast.Module{
				Path: "app",
				Declarations: []*ast.Decl{
					entityDecl("Rec", &ast.Entity{Fields: []*ast.Field{tc.field}}),
				},
			}
			diags := check(t, m)
			if tc.wantErr {
				require.Len(t, diags, 1)
				assert.Equal(t, diag.EInvalidDefault, diags[0].Code)
			} else {
				assert.Empty(t, diags)
			}
		})
	}
}

func TestEnumDefaultMembership(t *testing.T) {
	decls := func(def string) []*ast.Decl {
		return []*ast.Decl{
			{Kind: ast.KindEnum, Name: "Status", Enum: &ast.Enum{Values: []string{"active", "archived"}}},
			entityDecl("Doc", &ast.Entity{
				Fields: []*ast.Field{
					{Name: "status", Type: ast.TypeEnum, EnumRef: ast.Ref{Name: "Status"}, Default: def, HasDefault: true},
				},
			}),
		}
	}

	assert.Empty(t, check(t, &ast.Module{Path: "app", Declarations: decls("active")}))

	diags := check(t, &ast.Module{Path: "app", Declarations: decls("deleted")})
	require.Len(t, diags, 1)
	assert.Equal(t, diag.EInvalidDefault, diags[0].Code)
	assert.Contains(t, diags[0].Message, `enum "app.Status"`)
}
