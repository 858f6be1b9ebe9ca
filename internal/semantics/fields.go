package semantics

import (
	"slices"
	"sort"
	"time"

	"github.com/dazzle-lang/dazzle/internal/ast"
	"github.com/dazzle-lang/dazzle/internal/diag"
	"github.com/dazzle-lang/dazzle/internal/resolver"
	"github.com/dazzle-lang/dazzle/internal/symtab"
	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// checkFields validates field modifiers and default-value assignability.
// Defaults are written as string literals in the source; assignability to
// number and bool types is decided by cty conversion, which is the same
// machinery the frontend's expression language uses.
func checkFields(res *resolver.Resolution, sink *diag.Sink) {
	var ids []symtab.ID
	for id := range res.Entities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		e := res.Entities[id]
		for _, f := range e.Fields {
			checkField(res, e.Sym.Qualified, f, sink)
		}
	}
}

func checkField(res *resolver.Resolution, entity string, f *resolver.Field, sink *diag.Sink) {
	if f.Unique && !f.Required {
		sink.Errorf(diag.EUniqueNullable, f.Span,
			"unique field %q on %s must also be required", f.Name, entity)
	}
	if !f.HasDefault {
		return
	}
	if f.Required {
		sink.Warnf(diag.WRequiredDefault, f.Span,
			"required field %q on %s declares a default, which will never apply to an explicit value", f.Name, entity)
	}

	switch f.Type {
	case ast.TypeString, ast.TypeText:
		// Any literal is a valid string.
	case ast.TypeNumber, ast.TypeDecimal:
		if _, err := convert.Convert(cty.StringVal(f.Default), cty.Number); err != nil {
			sink.Errorf(diag.EInvalidDefault, f.Span,
				"default %q is not a valid %s for field %q on %s", f.Default, f.Type, f.Name, entity)
		}
	case ast.TypeBool:
		if _, err := convert.Convert(cty.StringVal(f.Default), cty.Bool); err != nil {
			sink.Errorf(diag.EInvalidDefault, f.Span,
				"default %q is not a valid bool for field %q on %s", f.Default, f.Name, entity)
		}
	case ast.TypeDateTime:
		if _, err := time.Parse(time.RFC3339, f.Default); err != nil {
			sink.Errorf(diag.EInvalidDefault, f.Span,
				"default %q is not an RFC 3339 datetime for field %q on %s", f.Default, f.Name, entity)
		}
	case ast.TypeUUID:
		if _, err := uuid.Parse(f.Default); err != nil {
			sink.Errorf(diag.EInvalidDefault, f.Span,
				"default %q is not a valid uuid for field %q on %s", f.Default, f.Name, entity)
		}
	case ast.TypeEnum:
		if f.Enum == symtab.None {
			return
		}
		enum := res.Enums[f.Enum]
		if enum == nil {
			return
		}
		if !slices.Contains(enum.Values, f.Default) {
			sink.Errorf(diag.EInvalidDefault, f.Span,
				"default %q is not a member of enum %q for field %q on %s",
				f.Default, enum.Sym.Qualified, f.Name, entity)
		}
	}
}
