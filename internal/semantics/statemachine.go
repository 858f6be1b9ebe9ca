package semantics

import (
	"sort"

	"github.com/dazzle-lang/dazzle/internal/ast"
	"github.com/dazzle-lang/dazzle/internal/diag"
	"github.com/dazzle-lang/dazzle/internal/resolver"
	"github.com/dazzle-lang/dazzle/internal/symtab"
)

// checkStateMachines validates each entity's state machine: transition
// endpoints must be declared states (error), every state must be reachable
// from the entry state (warning), and every non-terminal state needs at
// least one outgoing transition (warning). Role guards are cross-checked
// against the declared role vocabulary when one exists.
func checkStateMachines(res *resolver.Resolution, sink *diag.Sink) {
	var ids []symtab.ID
	for id, e := range res.Entities {
		if e.StateMachine != nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		checkStateMachine(res, res.Entities[id], sink)
	}
}

func checkStateMachine(res *resolver.Resolution, e *resolver.Entity, sink *diag.Sink) {
	sm := e.StateMachine
	entity := e.Sym.Qualified

	states := map[string]*ast.State{}
	for _, s := range sm.States {
		if prev, ok := states[s.Name]; ok {
			sink.Errorf(diag.EDuplicateSymbol, s.Span,
				"state %q already declared at %s", s.Name, prev.Span)
			continue
		}
		states[s.Name] = s
	}

	if sm.Initial != "" {
		if _, ok := states[sm.Initial]; !ok {
			sink.Errorf(diag.EUnknownState, sm.Span,
				"initial state %q is not declared on state machine for %s.%s",
				sm.Initial, entity, sm.Field)
		}
	}

	// outgoing and incoming are built only from transitions whose
	// endpoints both exist; a transition into an undeclared state must not
	// make anything look reachable.
	outgoing := map[string][]string{}
	incoming := map[string][]string{}
	for _, t := range sm.Transitions {
		ok := true
		if _, declared := states[t.From]; !declared {
			sink.Errorf(diag.EUnknownState, t.Span,
				"transition from undeclared state %q on %s.%s", t.From, entity, sm.Field)
			ok = false
		}
		if _, declared := states[t.To]; !declared {
			sink.Errorf(diag.EUnknownState, t.Span,
				"transition to undeclared state %q on %s.%s", t.To, entity, sm.Field)
			ok = false
		}
		if ok {
			outgoing[t.From] = append(outgoing[t.From], t.To)
			incoming[t.To] = append(incoming[t.To], t.From)
		}

		checkRoles(res, t.Roles, t.Span, sink)
	}

	// Reachability from the entry state by breadth-first walk. With no
	// usable entry state there is nothing to walk from, and warning on
	// every state would only bury the real error.
	reached := map[string]bool{}
	_, entryOK := states[sm.Initial]
	if entryOK {
		queue := []string{sm.Initial}
		reached[sm.Initial] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range outgoing[cur] {
				if !reached[next] {
					reached[next] = true
					queue = append(queue, next)
				}
			}
		}
	}

	for _, s := range sm.States {
		if states[s.Name] != s {
			continue // duplicate, reported above
		}
		if entryOK && !reached[s.Name] {
			sink.Warnf(diag.WUnreachableState, s.Span,
				"state %q is unreachable from entry state %q on %s.%s",
				s.Name, sm.Initial, entity, sm.Field)
		}
		if !s.Terminal && len(outgoing[s.Name]) == 0 {
			sink.Warnf(diag.WDeadEndState, s.Span,
				"state %q has no outgoing transition and is not marked terminal on %s.%s",
				s.Name, entity, sm.Field)
		}
	}
}

// checkRoles warns on role names missing from the merged vocabulary. With
// no vocabulary declared anywhere, every role name is accepted.
func checkRoles(res *resolver.Resolution, roles []string, span diag.Span, sink *diag.Sink) {
	if len(res.Roles) == 0 {
		return
	}
	for _, role := range roles {
		if !res.Roles[role] {
			sink.Warnf(diag.WUnknownRole, span,
				"role %q is not in the declared role vocabulary", role)
		}
	}
}
