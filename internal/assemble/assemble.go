// Package assemble merges the resolved, validated declarations into one
// immutable AppSpec. Assembly refuses to run past error diagnostics: the
// caller either gets a complete model or no model.
package assemble

import (
	"context"
	"fmt"
	"sort"

	"github.com/dazzle-lang/dazzle/internal/appspec"
	"github.com/dazzle-lang/dazzle/internal/ctxlog"
	"github.com/dazzle-lang/dazzle/internal/diag"
	"github.com/dazzle-lang/dazzle/internal/resolver"
	"github.com/dazzle-lang/dazzle/internal/symtab"
	"github.com/google/uuid"
)

// Build assembles the AppSpec. When diags contains any error it returns
// (nil, nil): diagnostics are the outcome, not a Go error. A non-nil error
// means an environment or marshaling failure, not a model problem.
func Build(ctx context.Context, res *resolver.Resolution, diags diag.List) (*appspec.AppSpec, error) {
	logger := ctxlog.FromContext(ctx)

	if diags.HasErrors() {
		logger.Debug("assembly halted", "errors", len(diags.Errors()))
		return nil, nil
	}

	spec := &appspec.AppSpec{
		BuildID:  uuid.NewString(),
		Warnings: diags.Warnings(),
	}

	for _, m := range res.Graph.Order() {
		spec.Modules = append(spec.Modules, appspec.ModuleSpec{
			Path:     m.Path,
			Requires: sortedCopy(m.Requires),
			Roles:    sortedCopy(m.Roles),
		})
	}
	sort.Slice(spec.Modules, func(i, j int) bool {
		return spec.Modules[i].Path < spec.Modules[j].Path
	})

	for _, id := range sortedIDs(res.Entities) {
		spec.Entities = append(spec.Entities, buildEntity(res, res.Entities[id]))
	}
	for _, id := range sortedIDs(res.Surfaces) {
		s := res.Surfaces[id]
		spec.Surfaces = append(spec.Surfaces, appspec.SurfaceSpec{
			Symbol: int(s.Sym.ID),
			Name:   s.Sym.Name,
			Module: s.Sym.Module,
			Entity: ref(res.Table, s.Entity),
			Mode:   s.Mode,
			Fields: s.Fields,
		})
	}
	for _, id := range sortedIDs(res.Services) {
		s := res.Services[id]
		out := appspec.ServiceSpec{
			Symbol: int(s.Sym.ID),
			Name:   s.Sym.Name,
			Module: s.Sym.Module,
		}
		for _, op := range s.Ops {
			out.Operations = append(out.Operations, appspec.ServiceOpSpec{
				Name:   op.Name,
				Input:  refPtr(res.Table, op.Input),
				Output: refPtr(res.Table, op.Output),
			})
		}
		spec.Services = append(spec.Services, out)
	}
	for _, id := range sortedIDs(res.Workflows) {
		w := res.Workflows[id]
		out := appspec.WorkflowSpec{
			Symbol: int(w.Sym.ID),
			Name:   w.Sym.Name,
			Module: w.Sym.Module,
		}
		for _, step := range w.Steps {
			out.Steps = append(out.Steps, appspec.WorkflowStepSpec{
				Name:    step.Name,
				Service: ref(res.Table, step.Service),
			})
		}
		spec.Workflows = append(spec.Workflows, out)
	}
	for _, id := range sortedIDs(res.Enums) {
		e := res.Enums[id]
		spec.Enums = append(spec.Enums, appspec.EnumSpec{
			Symbol: int(e.Sym.ID),
			Name:   e.Sym.Name,
			Module: e.Sym.Module,
			Values: e.Values,
		})
	}

	hash, err := spec.ContentHash()
	if err != nil {
		return nil, fmt.Errorf("computing content hash: %w", err)
	}
	spec.Hash = hash

	logger.Debug("assembly complete", "hash", spec.Hash, "entities", len(spec.Entities))
	return spec, nil
}

func buildEntity(res *resolver.Resolution, e *resolver.Entity) appspec.EntitySpec {
	out := appspec.EntitySpec{
		Symbol: int(e.Sym.ID),
		Name:   e.Sym.Name,
		Module: e.Sym.Module,
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, appspec.FieldSpec{
			Name:       f.Name,
			Type:       f.Type.String(),
			Enum:       refPtr(res.Table, f.Enum),
			Required:   f.Required,
			Unique:     f.Unique,
			Default:    f.Default,
			HasDefault: f.HasDefault,
		})
	}
	for _, rel := range e.Relationships {
		out.Relationships = append(out.Relationships, appspec.RelationshipSpec{
			Name:     rel.Name,
			Kind:     rel.Kind.String(),
			OnDelete: rel.OnDelete.String(),
			Target:   ref(res.Table, rel.Target),
		})
	}
	for _, inv := range e.Invariants {
		out.Invariants = append(out.Invariants, appspec.InvariantSpec{
			Name: inv.Name,
			Rule: inv.Rule,
		})
	}
	for _, rule := range e.AccessRules {
		out.AccessRules = append(out.AccessRules, appspec.AccessRuleSpec{
			Operation:    rule.Operation.String(),
			Roles:        sortedCopy(rule.Roles),
			Ownership:    rule.Ownership.String(),
			TenantScoped: rule.TenantScoped,
		})
	}
	if sm := e.StateMachine; sm != nil {
		spec := &appspec.StateMachineSpec{Field: sm.Field, Initial: sm.Initial}
		for _, s := range sm.States {
			spec.States = append(spec.States, appspec.StateSpec{Name: s.Name, Terminal: s.Terminal})
		}
		for _, t := range sm.Transitions {
			spec.Transitions = append(spec.Transitions, appspec.TransitionSpec{
				From:    t.From,
				To:      t.To,
				Trigger: t.Trigger,
				Roles:   sortedCopy(t.Roles),
				After:   t.After,
			})
		}
		out.StateMachine = spec
	}
	return out
}

// sortedIDs returns the map keys in ID order. IDs are issued in build
// order, which is itself deterministic, so every AppSpec slice comes out
// identical across runs over the same input.
func sortedIDs[V any](m map[symtab.ID]V) []symtab.ID {
	ids := make([]symtab.ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// sortedCopy returns a sorted copy, leaving the input alone.
func sortedCopy(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func ref(t *symtab.Table, id symtab.ID) appspec.Ref {
	sym := t.ByID(id)
	return appspec.Ref{Symbol: int(id), Name: sym.Qualified}
}

func refPtr(t *symtab.Table, id symtab.ID) *appspec.Ref {
	if id == symtab.None {
		return nil
	}
	r := ref(t, id)
	return &r
}
