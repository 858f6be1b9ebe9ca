package pipeline

import (
	"context"
	"testing"

	"github.com/dazzle-lang/dazzle/internal/appspec"
	"github.com/dazzle-lang/dazzle/internal/ast"
	"github.com/dazzle-lang/dazzle/internal/diag"
	dazzlehcl "github.com/dazzle-lang/dazzle/internal/hcl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coreSource = `
module "shop.core" {
  roles = ["admin", "member"]
}

entity "User" {
  field "email" {
    type     = "string"
    required = true
    unique   = true
  }
}
`

const ordersSource = `
module "shop.orders" {
  requires = ["shop.core"]
}

entity "Order" {
  field "total" {
    type     = "decimal"
    required = true
  }

  relationship "buyer" {
    kind      = "reference"
    target    = "shop.core.User"
    on_delete = "restrict"
  }

  access "read" {
    roles     = ["member"]
    ownership = "owner"
  }

  state_machine "status" {
    initial = "placed"

    state "placed" {}
    state "shipped" {}
    state "delivered" {
      terminal = true
    }

    transition {
      from    = "placed"
      to      = "shipped"
      trigger = "ship"
    }
    transition {
      from    = "shipped"
      to      = "delivered"
      trigger = "deliver"
    }
  }
}

surface "OrderList" {
  entity = "Order"
  mode   = "list"
  fields = ["total"]
}
`

// load parses the sources and runs the full pipeline over them.
func load(t *testing.T, sources map[string]string) (*appspec.AppSpec, diag.List) {
	t.Helper()
	ctx := context.Background()

	modules, parseDiags := dazzlehcl.NewLoader().LoadSources(ctx, sources)
	require.False(t, parseDiags.HasErrors(), "fixture must parse: %v", parseDiags)

	spec, diags, err := Run(ctx, modules)
	require.NoError(t, err)
	return spec, diags
}

func TestValidTwoModuleProject(t *testing.T) {
	spec, diags := load(t, map[string]string{
		"core.dzl":   coreSource,
		"orders.dzl": ordersSource,
	})
	require.Empty(t, diags)
	require.NotNil(t, spec)

	assert.NotEmpty(t, spec.Hash)
	assert.NotEmpty(t, spec.BuildID)
	require.Len(t, spec.Modules, 2)
	assert.Equal(t, "shop.core", spec.Modules[0].Path)
	assert.Equal(t, "shop.orders", spec.Modules[1].Path)

	require.Len(t, spec.Entities, 2)
	user := spec.Entities[0]
	order := spec.Entities[1]
	assert.Equal(t, "User", user.Name)
	assert.Equal(t, "Order", order.Name)

	// The relationship carries both the symbol handle and the qualified
	// name, and the handle is the target entity's own symbol.
	require.Len(t, order.Relationships, 1)
	buyer := order.Relationships[0]
	assert.Equal(t, user.Symbol, buyer.Target.Symbol)
	assert.Equal(t, "shop.core.User", buyer.Target.Name)

	require.Len(t, spec.Surfaces, 1)
	assert.Equal(t, order.Symbol, spec.Surfaces[0].Entity.Symbol)
}

func TestEverySpecRefPointsAtAnAssembledEntity(t *testing.T) {
	spec, diags := load(t, map[string]string{
		"core.dzl":   coreSource,
		"orders.dzl": ordersSource,
	})
	require.Empty(t, diags)
	require.NotNil(t, spec)

	known := map[int]bool{}
	for _, e := range spec.Entities {
		known[e.Symbol] = true
	}
	for _, e := range spec.Entities {
		for _, rel := range e.Relationships {
			assert.True(t, known[rel.Target.Symbol],
				"relationship %s.%s targets unknown symbol %d", e.Name, rel.Name, rel.Target.Symbol)
		}
	}
	for _, s := range spec.Surfaces {
		assert.True(t, known[s.Entity.Symbol])
	}
}

func TestUnresolvedReferenceProducesNoSpec(t *testing.T) {
	spec, diags := load(t, map[string]string{
		"core.dzl": coreSource,
		"orders.dzl": `
module "shop.orders" {
  requires = ["shop.core"]
}

entity "Order" {
  relationship "buyer" {
    target = "shop.core.Usr"
  }
}
`,
	})
	assert.Nil(t, spec)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.EUnresolvedReference, diags[0].Code)
	assert.Contains(t, diags[0].Message, `did you mean "shop.core.User"?`)
	assert.Equal(t, "shop.orders", diags[0].Span.Module)
	assert.Equal(t, "orders.dzl", diags[0].Span.Filename)
}

func TestCyclicModuleRequiresAbortTheRun(t *testing.T) {
	spec, diags := load(t, map[string]string{
		"a.dzl": "module \"a\" {\n  requires = [\"b\"]\n}\n",
		"b.dzl": "module \"b\" {\n  requires = [\"a\"]\n}\n",
	})
	assert.Nil(t, spec)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.ECyclicModuleDep, diags[0].Code)
	assert.Contains(t, diags[0].Message, "a -> b -> a")
}

func TestWarningsStillProduceASpec(t *testing.T) {
	spec, diags := load(t, map[string]string{
		"app.dzl": `
module "app" {}

entity "Ticket" {
  state_machine "status" {
    initial = "open"
    state "open" {}
  }
}
`,
	})
	require.NotNil(t, spec)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.WDeadEndState, diags[0].Code)
	assert.False(t, diags.HasErrors())

	// Accepted warnings travel with the model.
	require.Len(t, spec.Warnings, 1)
	assert.Equal(t, diag.WDeadEndState, spec.Warnings[0].Code)
}

func TestRunIsIdempotent(t *testing.T) {
	sources := map[string]string{
		"core.dzl":   coreSource,
		"orders.dzl": ordersSource,
	}

	first, firstDiags := load(t, sources)
	second, secondDiags := load(t, sources)
	require.NotNil(t, first)
	require.NotNil(t, second)

	assert.Equal(t, firstDiags, secondDiags)
	assert.Equal(t, first.Hash, second.Hash)
	assert.NotEqual(t, first.BuildID, second.BuildID)

	// Everything except the per-run build ID is identical.
	second.BuildID = first.BuildID
	assert.Equal(t, first, second)
}

func TestHashChangesWithTheModel(t *testing.T) {
	base, _ := load(t, map[string]string{"core.dzl": coreSource})
	require.NotNil(t, base)

	changed, _ := load(t, map[string]string{
		"core.dzl": `
module "shop.core" {
  roles = ["admin", "member"]
}

entity "User" {
  field "email" {
    type     = "string"
    required = true
  }
}
`,
	})
	require.NotNil(t, changed)
	assert.NotEqual(t, base.Hash, changed.Hash)
}

func TestInputOrderDoesNotAffectTheResult(t *testing.T) {
	ctx := context.Background()
	modules, parseDiags := dazzlehcl.NewLoader().LoadSources(ctx, map[string]string{
		"core.dzl":   coreSource,
		"orders.dzl": ordersSource,
	})
	require.False(t, parseDiags.HasErrors())
	require.Len(t, modules, 2)

	forward, _, err := Run(ctx, modules)
	require.NoError(t, err)
	reversed, _, err := Run(ctx, []*ast.Module{modules[1], modules[0]})
	require.NoError(t, err)

	require.NotNil(t, forward)
	require.NotNil(t, reversed)
	assert.Equal(t, forward.Hash, reversed.Hash)
	assert.Equal(t, forward.Entities, reversed.Entities)
}
