// Package resolver turns the textual cross-references of cataloged
// declarations into symbol IDs against the frozen table. It produces a new
// Resolution artifact; the table and the input AST are never mutated. A
// declaration whose required reference does not resolve is excluded from
// the Resolution, so nothing downstream ever sees a dangling handle.
package resolver

import (
	"context"

	"github.com/dazzle-lang/dazzle/internal/ast"
	"github.com/dazzle-lang/dazzle/internal/ctxlog"
	"github.com/dazzle-lang/dazzle/internal/diag"
	"github.com/dazzle-lang/dazzle/internal/modgraph"
	"github.com/dazzle-lang/dazzle/internal/symtab"
)

// Resolution is the fully cross-referenced view of the module set.
type Resolution struct {
	Table *symtab.Table
	Graph *modgraph.Graph

	Entities  map[symtab.ID]*Entity
	Surfaces  map[symtab.ID]*Surface
	Services  map[symtab.ID]*Service
	Workflows map[symtab.ID]*Workflow
	Enums     map[symtab.ID]*Enum

	// Roles is the merged role vocabulary across all modules.
	Roles map[string]bool
}

// Entity is an entity with archetype fields flattened in and every
// reference resolved.
type Entity struct {
	Sym           *symtab.Symbol
	Fields        []*Field
	Relationships []*Relationship
	Invariants    []*ast.Invariant
	AccessRules   []*ast.AccessRule
	StateMachine  *ast.StateMachine
}

// Field is a field with its enum reference (when any) resolved.
type Field struct {
	*ast.Field
	Enum symtab.ID // symtab.None unless Type is TypeEnum
}

// Relationship is a relationship with its target resolved.
type Relationship struct {
	*ast.Relationship
	Target symtab.ID
}

// Surface is a surface with its entity binding resolved.
type Surface struct {
	Sym    *symtab.Symbol
	Entity symtab.ID
	Mode   string
	Fields []string
}

// Service carries its operations with entity references resolved.
type Service struct {
	Sym *symtab.Symbol
	Ops []*ServiceOp
}

// ServiceOp resolves the optional input/output entity references of one
// operation; absent references stay symtab.None.
type ServiceOp struct {
	Name   string
	Input  symtab.ID
	Output symtab.ID
	Span   diag.Span
}

// Workflow carries its steps with service bindings resolved.
type Workflow struct {
	Sym   *symtab.Symbol
	Steps []*WorkflowStep
}

// WorkflowStep binds one step to its resolved service.
type WorkflowStep struct {
	Name    string
	Service symtab.ID
	Span    diag.Span
}

// Enum needs no resolution; it is carried so later stages work from one
// artifact.
type Enum struct {
	Sym    *symtab.Symbol
	Values []string
}

// Resolve resolves every reference in every declaration. It returns nil
// only when an archetype inheritance cycle is found, which is fatal to the
// stage because flattening order is undefined past it. All other failures
// accumulate as diagnostics.
func Resolve(ctx context.Context, g *modgraph.Graph, table *symtab.Table, sink *diag.Sink) *Resolution {
	logger := ctxlog.FromContext(ctx)

	r := &resolver{
		res: &Resolution{
			Table:     table,
			Graph:     g,
			Entities:  map[symtab.ID]*Entity{},
			Surfaces:  map[symtab.ID]*Surface{},
			Services:  map[symtab.ID]*Service{},
			Workflows: map[symtab.ID]*Workflow{},
			Enums:     map[symtab.ID]*Enum{},
			Roles:     map[string]bool{},
		},
		table: table,
		graph: g,
		sink:  sink,
	}

	for _, m := range g.Order() {
		for _, role := range m.Roles {
			r.res.Roles[role] = true
		}
	}

	if !r.flattenArchetypes(ctx) {
		logger.Debug("resolution aborted on archetype cycle")
		return nil
	}

	for _, m := range g.Order() {
		for _, id := range table.ModuleSymbols(m.Path) {
			r.resolveSymbol(table.ByID(id))
		}
	}

	logger.Debug("resolution complete",
		"entities", len(r.res.Entities),
		"surfaces", len(r.res.Surfaces),
		"services", len(r.res.Services),
		"workflows", len(r.res.Workflows),
		"enums", len(r.res.Enums))
	return r.res
}

type resolver struct {
	res   *Resolution
	table *symtab.Table
	graph *modgraph.Graph
	sink  *diag.Sink

	// flattened caches the field list of each archetype after its extends
	// chain has been folded in.
	flattened map[symtab.ID][]*Field
}

// resolveSymbol dispatches on the declaration kind. The switch is
// exhaustive over ast.DeclKind.
func (r *resolver) resolveSymbol(sym *symtab.Symbol) {
	switch sym.Kind {
	case ast.KindEntity:
		r.resolveEntity(sym)
	case ast.KindSurface:
		r.resolveSurface(sym)
	case ast.KindService:
		r.resolveService(sym)
	case ast.KindWorkflow:
		r.resolveWorkflow(sym)
	case ast.KindEnum:
		r.res.Enums[sym.ID] = &Enum{Sym: sym, Values: sym.Decl.Enum.Values}
	case ast.KindArchetype:
		// Archetypes were flattened up front and do not appear in the
		// Resolution on their own.
	}
}

func (r *resolver) resolveEntity(sym *symtab.Symbol) {
	e := sym.Decl.Entity
	out := &Entity{
		Sym:          sym,
		Invariants:   e.Invariants,
		AccessRules:  e.AccessRules,
		StateMachine: e.StateMachine,
	}
	ok := true

	seen := map[string]diag.Span{}
	addField := func(f *Field) {
		if prev, dup := seen[f.Name]; dup {
			r.sink.Errorf(diag.EDuplicateField, f.Span,
				"field %q already declared on entity %q at %s", f.Name, sym.Qualified, prev)
			return
		}
		seen[f.Name] = f.Span
		out.Fields = append(out.Fields, f)
	}

	if !e.Extends.IsZero() {
		base, found := r.lookup(sym.Module, e.Extends, ast.KindArchetype)
		if !found {
			ok = false
		} else {
			for _, f := range r.flattened[base.ID] {
				addField(f)
			}
		}
	}
	for _, f := range e.Fields {
		rf, fok := r.resolveField(sym.Module, f)
		if !fok {
			ok = false
			continue
		}
		addField(rf)
	}

	for _, rel := range e.Relationships {
		// A zero target means the frontend already reported the attribute.
		if rel.Target.IsZero() {
			ok = false
			continue
		}
		target, found := r.lookup(sym.Module, rel.Target, ast.KindEntity)
		if !found {
			ok = false
			continue
		}
		out.Relationships = append(out.Relationships, &Relationship{
			Relationship: rel,
			Target:       target.ID,
		})
	}

	if ok {
		r.res.Entities[sym.ID] = out
	}
}

// resolveField resolves the enum reference of enum-typed fields.
func (r *resolver) resolveField(module string, f *ast.Field) (*Field, bool) {
	out := &Field{Field: f, Enum: symtab.None}
	if f.Type == ast.TypeEnum {
		target, found := r.lookup(module, f.EnumRef, ast.KindEnum)
		if !found {
			return nil, false
		}
		out.Enum = target.ID
	}
	return out, true
}

func (r *resolver) resolveSurface(sym *symtab.Symbol) {
	s := sym.Decl.Surface
	if s.Entity.IsZero() {
		return
	}
	target, found := r.lookup(sym.Module, s.Entity, ast.KindEntity)
	if !found {
		return
	}
	r.res.Surfaces[sym.ID] = &Surface{
		Sym:    sym,
		Entity: target.ID,
		Mode:   s.Mode,
		Fields: s.Fields,
	}
}

func (r *resolver) resolveService(sym *symtab.Symbol) {
	s := sym.Decl.Service
	out := &Service{Sym: sym}
	ok := true
	for _, op := range s.Operations {
		rop := &ServiceOp{Name: op.Name, Input: symtab.None, Output: symtab.None, Span: op.Span}
		if !op.Input.IsZero() {
			target, found := r.lookup(sym.Module, op.Input, ast.KindEntity)
			if !found {
				ok = false
				continue
			}
			rop.Input = target.ID
		}
		if !op.Output.IsZero() {
			target, found := r.lookup(sym.Module, op.Output, ast.KindEntity)
			if !found {
				ok = false
				continue
			}
			rop.Output = target.ID
		}
		out.Ops = append(out.Ops, rop)
	}
	if ok {
		r.res.Services[sym.ID] = out
	}
}

func (r *resolver) resolveWorkflow(sym *symtab.Symbol) {
	w := sym.Decl.Workflow
	out := &Workflow{Sym: sym}
	ok := true
	for _, step := range w.Steps {
		if step.Service.IsZero() {
			ok = false
			continue
		}
		target, found := r.lookup(sym.Module, step.Service, ast.KindService)
		if !found {
			ok = false
			continue
		}
		out.Steps = append(out.Steps, &WorkflowStep{
			Name:    step.Name,
			Service: target.ID,
			Span:    step.Span,
		})
	}
	if ok {
		r.res.Workflows[sym.ID] = out
	}
}
