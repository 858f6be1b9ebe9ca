// Package appspec defines the final application model: the immutable,
// serializable aggregate the pipeline hands to code generators and the
// runtime. References are symbol handles plus qualified names, never Go
// pointers, so a marshaled AppSpec round-trips without losing identity.
package appspec

import (
	"time"

	"github.com/dazzle-lang/dazzle/internal/diag"
)

// Ref is a resolved reference to another declaration in the same AppSpec.
type Ref struct {
	Symbol int    `json:"symbol"`
	Name   string `json:"name"`
}

// AppSpec is the fully resolved application model. It is either fully
// built or not produced at all; it never carries error diagnostics.
type AppSpec struct {
	// Hash is derived from the sorted qualified names and resolved bodies,
	// so two runs over unchanged sources produce the same hash.
	Hash string `json:"hash"`
	// BuildID identifies this assembly and is excluded from the hash.
	BuildID string `json:"build_id"`

	Modules   []ModuleSpec   `json:"modules"`
	Entities  []EntitySpec   `json:"entities"`
	Surfaces  []SurfaceSpec  `json:"surfaces"`
	Services  []ServiceSpec  `json:"services"`
	Workflows []WorkflowSpec `json:"workflows"`
	Enums     []EnumSpec     `json:"enums"`

	Warnings diag.List `json:"warnings,omitempty"`
}

// ModuleSpec records one source module and its dependencies.
type ModuleSpec struct {
	Path     string   `json:"path"`
	Requires []string `json:"requires,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// EntitySpec is one resolved entity with archetype fields flattened in.
type EntitySpec struct {
	Symbol        int                `json:"symbol"`
	Name          string             `json:"name"`
	Module        string             `json:"module"`
	Fields        []FieldSpec        `json:"fields"`
	Relationships []RelationshipSpec `json:"relationships,omitempty"`
	Invariants    []InvariantSpec    `json:"invariants,omitempty"`
	AccessRules   []AccessRuleSpec   `json:"access_rules,omitempty"`
	StateMachine  *StateMachineSpec  `json:"state_machine,omitempty"`
}

// FieldSpec is one scalar or enum-typed field.
type FieldSpec struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Enum       *Ref   `json:"enum,omitempty"`
	Required   bool   `json:"required,omitempty"`
	Unique     bool   `json:"unique,omitempty"`
	Default    string `json:"default,omitempty"`
	HasDefault bool   `json:"has_default,omitempty"`
}

// RelationshipSpec links the entity to a resolved target entity.
type RelationshipSpec struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	OnDelete string `json:"on_delete"`
	Target   Ref    `json:"target"`
}

// InvariantSpec carries a named rule expression, unevaluated.
type InvariantSpec struct {
	Name string `json:"name"`
	Rule string `json:"rule"`
}

// AccessRuleSpec is one additive grant for one operation.
type AccessRuleSpec struct {
	Operation    string   `json:"operation"`
	Roles        []string `json:"roles,omitempty"`
	Ownership    string   `json:"ownership"`
	TenantScoped bool     `json:"tenant_scoped,omitempty"`
}

// StateMachineSpec governs one entity field's lifecycle.
type StateMachineSpec struct {
	Field       string           `json:"field"`
	Initial     string           `json:"initial"`
	States      []StateSpec      `json:"states"`
	Transitions []TransitionSpec `json:"transitions"`
}

// StateSpec is one declared state.
type StateSpec struct {
	Name     string `json:"name"`
	Terminal bool   `json:"terminal,omitempty"`
}

// TransitionSpec is one declared transition, with an optional role guard
// and time delay.
type TransitionSpec struct {
	From    string        `json:"from"`
	To      string        `json:"to"`
	Trigger string        `json:"trigger,omitempty"`
	Roles   []string      `json:"roles,omitempty"`
	After   time.Duration `json:"after,omitempty"`
}

// SurfaceSpec binds one UI surface to its entity.
type SurfaceSpec struct {
	Symbol int      `json:"symbol"`
	Name   string   `json:"name"`
	Module string   `json:"module"`
	Entity Ref      `json:"entity"`
	Mode   string   `json:"mode"`
	Fields []string `json:"fields,omitempty"`
}

// ServiceSpec is one resolved service.
type ServiceSpec struct {
	Symbol     int             `json:"symbol"`
	Name       string          `json:"name"`
	Module     string          `json:"module"`
	Operations []ServiceOpSpec `json:"operations,omitempty"`
}

// ServiceOpSpec is one callable operation with optional entity bindings.
type ServiceOpSpec struct {
	Name   string `json:"name"`
	Input  *Ref   `json:"input,omitempty"`
	Output *Ref   `json:"output,omitempty"`
}

// WorkflowSpec is one resolved workflow.
type WorkflowSpec struct {
	Symbol int                `json:"symbol"`
	Name   string             `json:"name"`
	Module string             `json:"module"`
	Steps  []WorkflowStepSpec `json:"steps"`
}

// WorkflowStepSpec binds one step to its resolved service.
type WorkflowStepSpec struct {
	Name    string `json:"name"`
	Service Ref    `json:"service"`
}

// EnumSpec is one closed value vocabulary.
type EnumSpec struct {
	Symbol int      `json:"symbol"`
	Name   string   `json:"name"`
	Module string   `json:"module"`
	Values []string `json:"values"`
}
