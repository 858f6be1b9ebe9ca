// Package ast is the input contract of the model pipeline: the
// format-agnostic representation of parsed DAZZLE modules. The frontend
// (internal/hcl) produces these values; the pipeline consumes them and
// never re-parses text. Modules are immutable once handed to the pipeline.
package ast

import (
	"time"

	"github.com/dazzle-lang/dazzle/internal/diag"
)

// Module is one named unit of declarations. Identity is the qualified
// module path (dot-separated, e.g. "shop.orders").
type Module struct {
	Path         string
	Requires     []string
	Roles        []string
	Declarations []*Decl
	Span         diag.Span
}

// DeclKind enumerates the closed set of declaration kinds. Every pass over
// declarations switches over this set exhaustively; adding a kind must be
// reflected in symtab, resolver, semantics and assemble.
type DeclKind int

const (
	KindEntity DeclKind = iota
	KindSurface
	KindService
	KindWorkflow
	KindEnum
	KindArchetype
)

// String returns the lowercase kind name used in diagnostics.
func (k DeclKind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindSurface:
		return "surface"
	case KindService:
		return "service"
	case KindWorkflow:
		return "workflow"
	case KindEnum:
		return "enum"
	case KindArchetype:
		return "archetype"
	}
	return "unknown"
}

// Decl is one named declaration. Exactly one of the body fields matching
// Kind is non-nil.
type Decl struct {
	Kind DeclKind
	Name string
	Span diag.Span

	Entity    *Entity
	Surface   *Surface
	Service   *Service
	Workflow  *Workflow
	Enum      *Enum
	Archetype *Archetype
}

// Ref is an unresolved textual reference to another declaration. Name may
// be a local name or a fully qualified one.
type Ref struct {
	Name string
	Span diag.Span
}

// IsZero reports whether the reference was absent from the source.
func (r Ref) IsZero() bool { return r.Name == "" }

// Entity declares a persistent record type.
type Entity struct {
	Extends       Ref // optional archetype
	Fields        []*Field
	Relationships []*Relationship
	Invariants    []*Invariant
	AccessRules   []*AccessRule
	StateMachine  *StateMachine // optional
}

// Field is one scalar or enum-typed attribute of an entity or archetype.
type Field struct {
	Name       string
	Type       FieldType
	EnumRef    Ref // set when Type is TypeEnum
	Required   bool
	Unique     bool
	Default    string // raw literal, meaningful only when HasDefault
	HasDefault bool
	Span       diag.Span
}

// FieldType enumerates the scalar type vocabulary of the DSL.
type FieldType int

const (
	TypeString FieldType = iota
	TypeText
	TypeNumber
	TypeBool
	TypeDateTime
	TypeUUID
	TypeDecimal
	TypeEnum
)

// String returns the source-level spelling of the type.
func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeText:
		return "text"
	case TypeNumber:
		return "number"
	case TypeBool:
		return "bool"
	case TypeDateTime:
		return "datetime"
	case TypeUUID:
		return "uuid"
	case TypeDecimal:
		return "decimal"
	case TypeEnum:
		return "enum"
	}
	return "unknown"
}

// RelKind enumerates relationship shapes.
type RelKind int

const (
	RelReference RelKind = iota
	RelOwnedMany
	RelOwnedOne
	RelEmbedded
)

// String returns the source-level spelling of the relationship kind.
func (k RelKind) String() string {
	switch k {
	case RelReference:
		return "reference"
	case RelOwnedMany:
		return "owned_many"
	case RelOwnedOne:
		return "owned_one"
	case RelEmbedded:
		return "embedded"
	}
	return "unknown"
}

// DeleteBehavior enumerates what happens to the relationship target when
// the owning record is deleted.
type DeleteBehavior int

const (
	DeleteRestrict DeleteBehavior = iota
	DeleteCascade
	DeleteNullify
	DeleteReadonly
)

// String returns the source-level spelling of the delete behavior.
func (b DeleteBehavior) String() string {
	switch b {
	case DeleteRestrict:
		return "restrict"
	case DeleteCascade:
		return "cascade"
	case DeleteNullify:
		return "nullify"
	case DeleteReadonly:
		return "readonly"
	}
	return "unknown"
}

// Relationship links the declaring entity to a target entity.
type Relationship struct {
	Name     string
	Kind     RelKind
	OnDelete DeleteBehavior
	Target   Ref
	Span     diag.Span
}

// Invariant is a named boolean expression over entity fields, carried
// through to the AppSpec without evaluation.
type Invariant struct {
	Name string
	Rule string
	Span diag.Span
}

// Operation enumerates the access-controlled operations.
type Operation int

const (
	OpRead Operation = iota
	OpCreate
	OpUpdate
	OpDelete
)

// String returns the source-level spelling of the operation.
func (o Operation) String() string {
	switch o {
	case OpRead:
		return "read"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// Ownership constrains an access rule to the record owner, to everyone but
// the owner, or to anyone.
type Ownership int

const (
	OwnAny Ownership = iota
	OwnOwner
	OwnNotOwner
)

// String returns the source-level spelling of the ownership term.
func (o Ownership) String() string {
	switch o {
	case OwnOwner:
		return "owner"
	case OwnNotOwner:
		return "not_owner"
	}
	return "any"
}

// AccessRule is one additive grant: a request matching any rule for the
// operation is allowed.
type AccessRule struct {
	Operation    Operation
	Roles        []string
	Ownership    Ownership
	TenantScoped bool
	Span         diag.Span
}

// StateMachine governs the lifecycle of one entity field.
type StateMachine struct {
	Field       string
	Initial     string
	States      []*State
	Transitions []*Transition
	Span        diag.Span
}

// State is one declared state. Terminal states are allowed to have no
// outgoing transitions.
type State struct {
	Name     string
	Terminal bool
	Span     diag.Span
}

// Transition moves the machine between two declared states.
type Transition struct {
	From    string
	To      string
	Trigger string
	Roles   []string      // optional role guard
	After   time.Duration // optional time delay, zero means none
	Span    diag.Span
}

// Surface declares a UI surface bound to an entity.
type Surface struct {
	Entity Ref
	Mode   string // list, detail, form
	Fields []string
}

// Service declares a named unit of callable business logic.
type Service struct {
	Description string
	Operations  []*ServiceOp
}

// ServiceOp is one callable operation on a service. Input and Output
// optionally reference entities.
type ServiceOp struct {
	Name   string
	Input  Ref
	Output Ref
	Span   diag.Span
}

// Workflow declares an ordered sequence of steps, each bound to a service.
type Workflow struct {
	Steps []*WorkflowStep
}

// WorkflowStep binds one step to the service that executes it.
type WorkflowStep struct {
	Name    string
	Service Ref
	Span    diag.Span
}

// Enum declares a closed value vocabulary.
type Enum struct {
	Values []string
}

// Archetype is a reusable field template entities can extend. Archetypes
// may themselves extend another archetype.
type Archetype struct {
	Extends Ref
	Fields  []*Field
}
