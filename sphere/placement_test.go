package sphere

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radolang/rado/ast"
	"github.com/radolang/rado/graph"
)

func placementGraph(t *testing.T) *graph.Graph {
	t.Helper()
	return buildGraph(t,
		bind(item("Sword")),
		bind(item("Bomb")),
		bind(region("Field",
			bind(location("Stump", avail("Bomb", 1))),
		)),
		bind(region("Keep",
			requires(ast.Ref("Sword")),
			bind(location("Throne")),
		)),
	)
}

func TestPlacementReplacesAvail(t *testing.T) {
	g := placementGraph(t)

	res := reach(t, g, nil, WithPlacement(map[ast.Path]ast.Path{
		"Field.Stump": "Sword",
	}))

	assert.Equal(t, int64(1), res.Inventory.Count("Sword"))
	assert.Equal(t, int64(0), res.Inventory.Count("Bomb"))
	assert.True(t, res.Accessible("Keep"))
}

func TestValidatePlacementComplete(t *testing.T) {
	g := placementGraph(t)

	report, err := ValidatePlacement(context.Background(), g, map[ast.Path]ast.Path{
		"Field.Stump": "Sword",
		"Keep.Throne": "Bomb",
	}, nil)
	require.NoError(t, err)

	assert.True(t, report.Complete)
	assert.Empty(t, report.Unreachable)
	require.NotNil(t, report.Result)
	assert.True(t, report.Result.Accessible("Keep.Throne"))
}

func TestValidatePlacementIncomplete(t *testing.T) {
	// The sword sits behind the gate it opens.
	g := placementGraph(t)

	report, err := ValidatePlacement(context.Background(), g, map[ast.Path]ast.Path{
		"Field.Stump": "Bomb",
		"Keep.Throne": "Sword",
	}, nil)
	require.NoError(t, err)

	assert.False(t, report.Complete)
	assert.Equal(t, []ast.Path{"Keep.Throne"}, report.Unreachable)
}

func TestValidatePlacementStartingInventoryCounts(t *testing.T) {
	g := placementGraph(t)

	report, err := ValidatePlacement(context.Background(), g, map[ast.Path]ast.Path{
		"Keep.Throne": "Sword",
	}, NewInventory().Add("Sword", 1))
	require.NoError(t, err)
	assert.True(t, report.Complete)
}

func TestPlacementUnknownLocation(t *testing.T) {
	g := placementGraph(t)

	_, err := Reachable(context.Background(), g, nil, WithPlacement(map[ast.Path]ast.Path{
		"Field.Mailbox": "Sword",
	}))
	require.Error(t, err)
	assert.True(t, IsUnknownReference(err))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ast.Path("Field.Mailbox"), e.Path)
}

func TestPlacementTargetNotPlaceable(t *testing.T) {
	g := placementGraph(t)

	_, err := Reachable(context.Background(), g, nil, WithPlacement(map[ast.Path]ast.Path{
		"Field": "Sword",
	}))
	require.Error(t, err)
	assert.True(t, IsSchemaViolation(err))
}

func TestPlacementUnknownItem(t *testing.T) {
	g := placementGraph(t)

	_, err := Reachable(context.Background(), g, nil, WithPlacement(map[ast.Path]ast.Path{
		"Field.Stump": "Sord",
	}))
	require.Error(t, err)
	assert.True(t, IsUnknownReference(err))
}

func TestPlacementPlainGroupRejected(t *testing.T) {
	g := buildGraph(t,
		bind(items("Bottle", bind(item("EmptyBottle")))),
		bind(region("Field",
			bind(location("Stump")),
		)),
	)

	_, err := Reachable(context.Background(), g, nil, WithPlacement(map[ast.Path]ast.Path{
		"Field.Stump": "Bottle",
	}))
	require.Error(t, err)
	assert.True(t, IsSchemaViolation(err))
}

func TestPlacementProgressiveGroupAllowed(t *testing.T) {
	// Placing the group itself hands out the next tier on collection.
	g := buildGraph(t,
		bind(items("Swords",
			prop(ast.ProgressiveProp{}),
			bind(item("WoodSword")),
			bind(item("MasterSword")),
		)),
		bind(region("Field",
			bind(location("Stump")),
			bind(location("Gate", requires(ast.Ref("Swords.WoodSword")))),
		)),
	)

	res := reach(t, g, nil, WithPlacement(map[ast.Path]ast.Path{
		"Field.Stump": "Swords",
	}))
	assert.True(t, res.Accessible("Field.Gate"))
	assert.Equal(t, int64(1), res.Inventory.Count("Swords"))
}
