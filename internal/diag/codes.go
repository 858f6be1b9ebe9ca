package diag

// Code identifies one class of diagnostic. Codes are part of the public
// contract with CLI and editor tooling and must never be renamed.
type Code string

const (
	// ECyclicModuleDep reports a cycle in the module dependency graph. The
	// message names every module on the cycle in encounter order.
	ECyclicModuleDep Code = "E_CYCLIC_MODULE_DEP"
	// EDuplicateSymbol reports two declarations sharing a name, either
	// within one module or across the merged qualified-name table.
	EDuplicateSymbol Code = "E_DUPLICATE_SYMBOL"
	// EUnresolvedReference reports a textual reference that names no known
	// symbol of the expected kind.
	EUnresolvedReference Code = "E_UNRESOLVED_REFERENCE"
	// ESymbolNotVisible reports a reference to a symbol that exists but is
	// outside the referencing module's transitive dependency closure.
	ESymbolNotVisible Code = "E_SYMBOL_NOT_VISIBLE"
	// ECyclicArchetype reports a cycle in an archetype extends chain.
	ECyclicArchetype Code = "E_CYCLIC_ARCHETYPE"
	// ECascadeCycle reports a cycle of cascade-delete relationship edges.
	ECascadeCycle Code = "E_CASCADE_CYCLE"
	// EUnknownState reports a transition endpoint that is not a declared
	// state of its state machine.
	EUnknownState Code = "E_UNKNOWN_STATE"
	// EInvalidDefault reports a field default that is not assignable to
	// the declared field type.
	EInvalidDefault Code = "E_INVALID_DEFAULT"
	// EUniqueNullable reports a unique field that is not also required.
	EUniqueNullable Code = "E_UNIQUE_NULLABLE"
	// EDuplicateField reports two fields with the same name on one entity,
	// including collisions introduced by archetype flattening.
	EDuplicateField Code = "E_DUPLICATE_FIELD"
	// EParse reports a syntax or decode failure from the frontend.
	EParse Code = "E_PARSE"
	// EInvalidDuration reports a transition delay that does not parse as a
	// duration.
	EInvalidDuration Code = "E_INVALID_DURATION"

	// WUnreachableState reports a state with no path from any entry state.
	WUnreachableState Code = "W_UNREACHABLE_STATE"
	// WDeadEndState reports a non-terminal state with no outgoing
	// transition.
	WDeadEndState Code = "W_DEAD_END_STATE"
	// WContradictoryAccessRule reports two rules for one operation that
	// differ only by a negated ownership term.
	WContradictoryAccessRule Code = "W_CONTRADICTORY_ACCESS_RULE"
	// WRedundantAccessRule reports two structurally identical rules for
	// one operation.
	WRedundantAccessRule Code = "W_REDUNDANT_ACCESS_RULE"
	// WUnknownRole reports a role name absent from the declared role
	// vocabulary.
	WUnknownRole Code = "W_UNKNOWN_ROLE"
	// WRequiredDefault reports a required field that also declares a
	// default, which usually indicates the author meant one or the other.
	WRequiredDefault Code = "W_REQUIRED_DEFAULT"
)
