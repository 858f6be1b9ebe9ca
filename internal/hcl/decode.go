package hcl

import (
	"time"

	"github.com/dazzle-lang/dazzle/internal/ast"
	"github.com/dazzle-lang/dazzle/internal/diag"
	"github.com/dazzle-lang/dazzle/internal/schema"
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// decodeFile translates one parsed file into an AST module. It returns nil
// when the file has no usable module block; declaration-level problems
// accumulate but do not discard the module.
func decodeFile(body hcl.Body, sink *diag.Sink) *ast.Module {
	content, hclDiags := body.Content(schema.File)
	reportHCLDiags(sink, hclDiags)

	var moduleBlock *hcl.Block
	var declBlocks []*hcl.Block
	for _, block := range content.Blocks {
		if block.Type == "module" {
			if moduleBlock != nil {
				sink.Errorf(diag.EParse, diag.SpanFromRange("", block.DefRange),
					"duplicate module block; a file declares exactly one module")
				continue
			}
			moduleBlock = block
			continue
		}
		declBlocks = append(declBlocks, block)
	}
	if moduleBlock == nil {
		sink.Errorf(diag.EParse, diag.SpanFromRange("", body.MissingItemRange()),
			"file declares no module block")
		return nil
	}

	d := &decoder{module: moduleBlock.Labels[0], sink: sink}
	m := &ast.Module{
		Path: d.module,
		Span: d.span(moduleBlock.DefRange),
	}

	modContent, hclDiags := moduleBlock.Body.Content(schema.Module)
	reportHCLDiags(sink, hclDiags)
	m.Requires = d.strList(modContent.Attributes["requires"])
	m.Roles = d.strList(modContent.Attributes["roles"])

	for _, block := range declBlocks {
		if decl := d.decodeDecl(block); decl != nil {
			m.Declarations = append(m.Declarations, decl)
		}
	}
	return m
}

// decoder carries the module path so every span is attributed correctly.
type decoder struct {
	module string
	sink   *diag.Sink
}

func (d *decoder) span(r hcl.Range) diag.Span {
	return diag.SpanFromRange(d.module, r)
}

func (d *decoder) decodeDecl(block *hcl.Block) *ast.Decl {
	decl := &ast.Decl{Name: block.Labels[0], Span: d.span(block.DefRange)}
	switch block.Type {
	case "entity":
		decl.Kind = ast.KindEntity
		decl.Entity = d.decodeEntity(block.Body)
	case "surface":
		decl.Kind = ast.KindSurface
		decl.Surface = d.decodeSurface(block.Body)
	case "service":
		decl.Kind = ast.KindService
		decl.Service = d.decodeService(block.Body)
	case "workflow":
		decl.Kind = ast.KindWorkflow
		decl.Workflow = d.decodeWorkflow(block.Body)
	case "enum":
		decl.Kind = ast.KindEnum
		decl.Enum = d.decodeEnum(block.Body)
	case "archetype":
		decl.Kind = ast.KindArchetype
		decl.Archetype = d.decodeArchetype(block.Body)
	}
	return decl
}

func (d *decoder) decodeEntity(body hcl.Body) *ast.Entity {
	content, hclDiags := body.Content(schema.Entity)
	reportHCLDiags(d.sink, hclDiags)

	e := &ast.Entity{Extends: d.ref(content.Attributes["extends"])}
	for _, block := range content.Blocks {
		switch block.Type {
		case "field":
			if f := d.decodeField(block); f != nil {
				e.Fields = append(e.Fields, f)
			}
		case "relationship":
			if rel := d.decodeRelationship(block); rel != nil {
				e.Relationships = append(e.Relationships, rel)
			}
		case "invariant":
			inv := d.decodeInvariant(block)
			e.Invariants = append(e.Invariants, inv)
		case "access":
			if rule := d.decodeAccess(block); rule != nil {
				e.AccessRules = append(e.AccessRules, rule)
			}
		case "state_machine":
			if e.StateMachine != nil {
				d.sink.Errorf(diag.EParse, d.span(block.DefRange),
					"entity declares more than one state_machine block")
				continue
			}
			e.StateMachine = d.decodeStateMachine(block)
		}
	}
	return e
}

func (d *decoder) decodeField(block *hcl.Block) *ast.Field {
	content, hclDiags := block.Body.Content(schema.Field)
	reportHCLDiags(d.sink, hclDiags)

	typeAttr := content.Attributes["type"]
	if typeAttr == nil {
		return nil
	}
	typeName, ok := d.str(typeAttr)
	if !ok {
		return nil
	}

	f := &ast.Field{
		Name:     block.Labels[0],
		Required: d.boolAttr(content.Attributes["required"]),
		Unique:   d.boolAttr(content.Attributes["unique"]),
		Span:     d.span(block.DefRange),
	}
	if attr := content.Attributes["default"]; attr != nil {
		f.Default, _ = d.str(attr)
		f.HasDefault = true
	}

	// Any type name outside the scalar vocabulary is an enum reference.
	ft, scalar := scalarTypes[typeName]
	if scalar {
		f.Type = ft
	} else {
		f.Type = ast.TypeEnum
		f.EnumRef = ast.Ref{Name: typeName, Span: d.span(typeAttr.Expr.Range())}
	}
	return f
}

var scalarTypes = map[string]ast.FieldType{
	"string":   ast.TypeString,
	"text":     ast.TypeText,
	"number":   ast.TypeNumber,
	"bool":     ast.TypeBool,
	"datetime": ast.TypeDateTime,
	"uuid":     ast.TypeUUID,
	"decimal":  ast.TypeDecimal,
}

var relKinds = map[string]ast.RelKind{
	"reference":  ast.RelReference,
	"owned_many": ast.RelOwnedMany,
	"owned_one":  ast.RelOwnedOne,
	"embedded":   ast.RelEmbedded,
}

var deleteBehaviors = map[string]ast.DeleteBehavior{
	"restrict": ast.DeleteRestrict,
	"cascade":  ast.DeleteCascade,
	"nullify":  ast.DeleteNullify,
	"readonly": ast.DeleteReadonly,
}

var operations = map[string]ast.Operation{
	"read":   ast.OpRead,
	"create": ast.OpCreate,
	"update": ast.OpUpdate,
	"delete": ast.OpDelete,
}

var ownerships = map[string]ast.Ownership{
	"any":       ast.OwnAny,
	"owner":     ast.OwnOwner,
	"not_owner": ast.OwnNotOwner,
}

func (d *decoder) decodeRelationship(block *hcl.Block) *ast.Relationship {
	content, hclDiags := block.Body.Content(schema.Relationship)
	reportHCLDiags(d.sink, hclDiags)

	targetAttr := content.Attributes["target"]
	if targetAttr == nil {
		return nil
	}

	rel := &ast.Relationship{
		Name:   block.Labels[0],
		Target: d.ref(targetAttr),
		Span:   d.span(block.DefRange),
	}
	if attr := content.Attributes["kind"]; attr != nil {
		rel.Kind = keyword(d, attr, relKinds, "relationship kind")
	}
	if attr := content.Attributes["on_delete"]; attr != nil {
		rel.OnDelete = keyword(d, attr, deleteBehaviors, "delete behavior")
	}
	return rel
}

func (d *decoder) decodeInvariant(block *hcl.Block) *ast.Invariant {
	content, hclDiags := block.Body.Content(schema.Invariant)
	reportHCLDiags(d.sink, hclDiags)

	inv := &ast.Invariant{Name: block.Labels[0], Span: d.span(block.DefRange)}
	if attr := content.Attributes["rule"]; attr != nil {
		inv.Rule, _ = d.str(attr)
	}
	return inv
}

func (d *decoder) decodeAccess(block *hcl.Block) *ast.AccessRule {
	content, hclDiags := block.Body.Content(schema.Access)
	reportHCLDiags(d.sink, hclDiags)

	op, ok := operations[block.Labels[0]]
	if !ok {
		d.sink.Errorf(diag.EParse, d.span(block.DefRange),
			"unknown access operation %q; expected read, create, update or delete", block.Labels[0])
		return nil
	}

	rule := &ast.AccessRule{
		Operation:    op,
		Roles:        d.strList(content.Attributes["roles"]),
		TenantScoped: d.boolAttr(content.Attributes["tenant_scoped"]),
		Span:         d.span(block.DefRange),
	}
	if attr := content.Attributes["ownership"]; attr != nil {
		rule.Ownership = keyword(d, attr, ownerships, "ownership")
	}
	return rule
}

func (d *decoder) decodeStateMachine(block *hcl.Block) *ast.StateMachine {
	content, hclDiags := block.Body.Content(schema.StateMachine)
	reportHCLDiags(d.sink, hclDiags)

	sm := &ast.StateMachine{
		Field: block.Labels[0],
		Span:  d.span(block.DefRange),
	}
	if attr := content.Attributes["initial"]; attr != nil {
		sm.Initial, _ = d.str(attr)
	}
	for _, inner := range content.Blocks {
		switch inner.Type {
		case "state":
			stateContent, stateDiags := inner.Body.Content(schema.State)
			reportHCLDiags(d.sink, stateDiags)
			sm.States = append(sm.States, &ast.State{
				Name:     inner.Labels[0],
				Terminal: d.boolAttr(stateContent.Attributes["terminal"]),
				Span:     d.span(inner.DefRange),
			})
		case "transition":
			if t := d.decodeTransition(inner); t != nil {
				sm.Transitions = append(sm.Transitions, t)
			}
		}
	}
	return sm
}

func (d *decoder) decodeTransition(block *hcl.Block) *ast.Transition {
	content, hclDiags := block.Body.Content(schema.Transition)
	reportHCLDiags(d.sink, hclDiags)

	from := content.Attributes["from"]
	to := content.Attributes["to"]
	if from == nil || to == nil {
		return nil
	}

	t := &ast.Transition{Span: d.span(block.DefRange)}
	t.From, _ = d.str(from)
	t.To, _ = d.str(to)
	if attr := content.Attributes["trigger"]; attr != nil {
		t.Trigger, _ = d.str(attr)
	}
	t.Roles = d.strList(content.Attributes["roles"])
	if attr := content.Attributes["after"]; attr != nil {
		raw, ok := d.str(attr)
		if ok {
			dur, err := time.ParseDuration(raw)
			if err != nil {
				d.sink.Errorf(diag.EInvalidDuration, d.span(attr.Expr.Range()),
					"invalid transition delay %q", raw)
			} else {
				t.After = dur
			}
		}
	}
	return t
}

func (d *decoder) decodeSurface(body hcl.Body) *ast.Surface {
	content, hclDiags := body.Content(schema.Surface)
	reportHCLDiags(d.sink, hclDiags)

	s := &ast.Surface{
		Entity: d.ref(content.Attributes["entity"]),
		Mode:   "list",
		Fields: d.strList(content.Attributes["fields"]),
	}
	if attr := content.Attributes["mode"]; attr != nil {
		s.Mode, _ = d.str(attr)
	}
	return s
}

func (d *decoder) decodeService(body hcl.Body) *ast.Service {
	content, hclDiags := body.Content(schema.Service)
	reportHCLDiags(d.sink, hclDiags)

	s := &ast.Service{}
	if attr := content.Attributes["description"]; attr != nil {
		s.Description, _ = d.str(attr)
	}
	for _, block := range content.Blocks {
		opContent, opDiags := block.Body.Content(schema.ServiceOp)
		reportHCLDiags(d.sink, opDiags)
		s.Operations = append(s.Operations, &ast.ServiceOp{
			Name:   block.Labels[0],
			Input:  d.ref(opContent.Attributes["input"]),
			Output: d.ref(opContent.Attributes["output"]),
			Span:   d.span(block.DefRange),
		})
	}
	return s
}

func (d *decoder) decodeWorkflow(body hcl.Body) *ast.Workflow {
	content, hclDiags := body.Content(schema.Workflow)
	reportHCLDiags(d.sink, hclDiags)

	w := &ast.Workflow{}
	for _, block := range content.Blocks {
		stepContent, stepDiags := block.Body.Content(schema.WorkflowStep)
		reportHCLDiags(d.sink, stepDiags)
		w.Steps = append(w.Steps, &ast.WorkflowStep{
			Name:    block.Labels[0],
			Service: d.ref(stepContent.Attributes["service"]),
			Span:    d.span(block.DefRange),
		})
	}
	return w
}

func (d *decoder) decodeEnum(body hcl.Body) *ast.Enum {
	content, hclDiags := body.Content(schema.Enum)
	reportHCLDiags(d.sink, hclDiags)
	return &ast.Enum{Values: d.strList(content.Attributes["values"])}
}

func (d *decoder) decodeArchetype(body hcl.Body) *ast.Archetype {
	content, hclDiags := body.Content(schema.Archetype)
	reportHCLDiags(d.sink, hclDiags)

	a := &ast.Archetype{Extends: d.ref(content.Attributes["extends"])}
	for _, block := range content.Blocks {
		if f := d.decodeField(block); f != nil {
			a.Fields = append(a.Fields, f)
		}
	}
	return a
}

// str statically evaluates an attribute and converts it to a string.
func (d *decoder) str(attr *hcl.Attribute) (string, bool) {
	val, hclDiags := attr.Expr.Value(nil)
	if reportHCLDiags(d.sink, hclDiags) {
		return "", false
	}
	converted, err := convert.Convert(val, cty.String)
	if err != nil || converted.IsNull() {
		d.sink.Errorf(diag.EParse, d.span(attr.Expr.Range()),
			"attribute %q must be a string", attr.Name)
		return "", false
	}
	return converted.AsString(), true
}

// strList statically evaluates an attribute as a list of strings. A nil
// attribute yields nil.
func (d *decoder) strList(attr *hcl.Attribute) []string {
	if attr == nil {
		return nil
	}
	val, hclDiags := attr.Expr.Value(nil)
	if reportHCLDiags(d.sink, hclDiags) {
		return nil
	}
	if val.IsNull() || !val.CanIterateElements() {
		d.sink.Errorf(diag.EParse, d.span(attr.Expr.Range()),
			"attribute %q must be a list of strings", attr.Name)
		return nil
	}
	var out []string
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		converted, err := convert.Convert(elem, cty.String)
		if err != nil || converted.IsNull() {
			d.sink.Errorf(diag.EParse, d.span(attr.Expr.Range()),
				"attribute %q must contain only strings", attr.Name)
			return nil
		}
		out = append(out, converted.AsString())
	}
	return out
}

// boolAttr statically evaluates an optional boolean attribute; absence
// means false.
func (d *decoder) boolAttr(attr *hcl.Attribute) bool {
	if attr == nil {
		return false
	}
	val, hclDiags := attr.Expr.Value(nil)
	if reportHCLDiags(d.sink, hclDiags) {
		return false
	}
	converted, err := convert.Convert(val, cty.Bool)
	if err != nil || converted.IsNull() {
		d.sink.Errorf(diag.EParse, d.span(attr.Expr.Range()),
			"attribute %q must be a bool", attr.Name)
		return false
	}
	return converted.True()
}

// ref reads an attribute as a textual reference. A nil attribute yields
// the zero Ref, which callers treat as absent.
func (d *decoder) ref(attr *hcl.Attribute) ast.Ref {
	if attr == nil {
		return ast.Ref{}
	}
	name, ok := d.str(attr)
	if !ok {
		return ast.Ref{}
	}
	return ast.Ref{Name: name, Span: d.span(attr.Expr.Range())}
}

// keyword maps an attribute's string value through a closed vocabulary,
// reporting unknown values at the attribute's range.
func keyword[T any](d *decoder, attr *hcl.Attribute, vocab map[string]T, what string) T {
	var zero T
	raw, ok := d.str(attr)
	if !ok {
		return zero
	}
	v, ok := vocab[raw]
	if !ok {
		d.sink.Errorf(diag.EParse, d.span(attr.Expr.Range()),
			"unknown %s %q", what, raw)
		return zero
	}
	return v
}
