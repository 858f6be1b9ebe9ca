package semantics

import (
	"sort"
	"strings"

	"github.com/dazzle-lang/dazzle/internal/ast"
	"github.com/dazzle-lang/dazzle/internal/diag"
	"github.com/dazzle-lang/dazzle/internal/resolver"
	"github.com/dazzle-lang/dazzle/internal/symtab"
)

// checkAccessRules inspects each entity's rule set per operation. The
// access model is additive: any matching rule grants, so overlapping rules
// are legal. Two patterns are flagged because they almost always indicate
// author error rather than intent: structurally identical duplicates, and
// pairs identical except for a negated ownership term. Overlaps beyond
// those two patterns are treated as independent OR'd grants and left
// alone.
func checkAccessRules(res *resolver.Resolution, sink *diag.Sink) {
	var ids []symtab.ID
	for id := range res.Entities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		e := res.Entities[id]
		byOp := map[ast.Operation][]*ast.AccessRule{}
		for _, rule := range e.AccessRules {
			byOp[rule.Operation] = append(byOp[rule.Operation], rule)
			checkRoles(res, rule.Roles, rule.Span, sink)
		}
		for op := ast.OpRead; op <= ast.OpDelete; op++ {
			checkRuleSet(e.Sym.Qualified, op, byOp[op], sink)
		}
	}
}

func checkRuleSet(entity string, op ast.Operation, rules []*ast.AccessRule, sink *diag.Sink) {
	for i := 0; i < len(rules); i++ {
		for j := i + 1; j < len(rules); j++ {
			a, b := rules[i], rules[j]
			if !sameTerms(a, b) {
				continue
			}
			switch {
			case a.Ownership == b.Ownership:
				sink.Warnf(diag.WRedundantAccessRule, b.Span,
					"%s rule for %s duplicates the rule at %s", op, entity, a.Span)
			case contradicts(a.Ownership, b.Ownership):
				sink.Warnf(diag.WContradictoryAccessRule, b.Span,
					"%s rules for %s at %s and %s differ only by a negated ownership term",
					op, entity, a.Span, b.Span)
			}
		}
	}
}

// sameTerms reports whether two rules share every term except possibly
// ownership.
func sameTerms(a, b *ast.AccessRule) bool {
	return a.TenantScoped == b.TenantScoped && roleKey(a.Roles) == roleKey(b.Roles)
}

// contradicts reports whether the two ownership terms exclude each other.
// A rule open to anyone cannot contradict an owner-scoped one.
func contradicts(a, b ast.Ownership) bool {
	return (a == ast.OwnOwner && b == ast.OwnNotOwner) ||
		(a == ast.OwnNotOwner && b == ast.OwnOwner)
}

func roleKey(roles []string) string {
	sorted := append([]string(nil), roles...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
