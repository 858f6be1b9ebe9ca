// Package schema declares the HCL body schemas of the DAZZLE dialect. The
// loader decodes against these with hcl.Body.Content so every block and
// attribute keeps its source range for diagnostics.
package schema

import "github.com/hashicorp/hcl/v2"

// File is the top-level schema of one .dzl file: exactly one module block
// plus any number of declarations.
var File = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "module", LabelNames: []string{"path"}},
		{Type: "entity", LabelNames: []string{"name"}},
		{Type: "surface", LabelNames: []string{"name"}},
		{Type: "service", LabelNames: []string{"name"}},
		{Type: "workflow", LabelNames: []string{"name"}},
		{Type: "enum", LabelNames: []string{"name"}},
		{Type: "archetype", LabelNames: []string{"name"}},
	},
}

// Module is the body of a module block.
var Module = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "requires"},
		{Name: "roles"},
	},
}

// Entity is the body of an entity block.
var Entity = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "extends"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "field", LabelNames: []string{"name"}},
		{Type: "relationship", LabelNames: []string{"name"}},
		{Type: "invariant", LabelNames: []string{"name"}},
		{Type: "access", LabelNames: []string{"operation"}},
		{Type: "state_machine", LabelNames: []string{"field"}},
	},
}

// Field is the body of a field block.
var Field = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "type", Required: true},
		{Name: "required"},
		{Name: "unique"},
		{Name: "default"},
	},
}

// Relationship is the body of a relationship block.
var Relationship = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "kind"},
		{Name: "target", Required: true},
		{Name: "on_delete"},
	},
}

// Invariant is the body of an invariant block.
var Invariant = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "rule", Required: true},
	},
}

// Access is the body of an access block.
var Access = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "roles"},
		{Name: "ownership"},
		{Name: "tenant_scoped"},
	},
}

// StateMachine is the body of a state_machine block.
var StateMachine = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "initial", Required: true},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "state", LabelNames: []string{"name"}},
		{Type: "transition"},
	},
}

// State is the body of a state block.
var State = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "terminal"},
	},
}

// Transition is the body of a transition block.
var Transition = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "from", Required: true},
		{Name: "to", Required: true},
		{Name: "trigger"},
		{Name: "roles"},
		{Name: "after"},
	},
}

// Surface is the body of a surface block.
var Surface = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "entity", Required: true},
		{Name: "mode"},
		{Name: "fields"},
	},
}

// Service is the body of a service block.
var Service = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "description"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "operation", LabelNames: []string{"name"}},
	},
}

// ServiceOp is the body of an operation block.
var ServiceOp = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "input"},
		{Name: "output"},
	},
}

// Workflow is the body of a workflow block.
var Workflow = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "step", LabelNames: []string{"name"}},
	},
}

// WorkflowStep is the body of a step block.
var WorkflowStep = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "service", Required: true},
	},
}

// Enum is the body of an enum block.
var Enum = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "values", Required: true},
	},
}

// Archetype is the body of an archetype block.
var Archetype = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "extends"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "field", LabelNames: []string{"name"}},
	},
}
