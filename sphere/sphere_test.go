package sphere

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radolang/rado/ast"
	"github.com/radolang/rado/graph"
	"github.com/radolang/rado/internal/testutil"
	"github.com/radolang/rado/merge"
)

var (
	bind     = testutil.Bind
	prop     = testutil.Prop
	region   = testutil.Region
	location = testutil.Location
	item     = testutil.Item
	items    = testutil.Items
	requires = testutil.Requires
	visible  = testutil.Visible
	count    = testutil.Count
	avail    = testutil.Avail
	availInf = testutil.AvailUnlimited
)

func buildGraph(t *testing.T, stmts ...ast.Stmt) *graph.Graph {
	t.Helper()
	tree, err := merge.Resolve([]ast.Source{{Name: "test", Stmts: stmts}}, nil)
	require.NoError(t, err)
	g, err := graph.Build(tree, nil)
	require.NoError(t, err)
	return g
}

func reach(t *testing.T, g *graph.Graph, inv *Inventory, opts ...Option) *Result {
	t.Helper()
	res, err := Reachable(context.Background(), g, inv, opts...)
	require.NoError(t, err)
	return res
}

func TestReachableSeedsStartRegion(t *testing.T) {
	g := buildGraph(t,
		bind(item("Sword")),
		bind(region("Field")),
		bind(region("Keep", requires(ast.Ref("Sword")))),
	)

	res := reach(t, g, nil)
	assert.True(t, res.Accessible("Field"))
	assert.False(t, res.Accessible("Keep"))
	assert.Equal(t, 0, res.Inventory.Len())
}

func TestReachableCollectsYieldsAcrossSweeps(t *testing.T) {
	g := buildGraph(t,
		bind(item("Sword")),
		bind(region("Field",
			bind(location("Chest", avail("Sword", 1))),
			bind(location("Gate", requires(ast.Ref("Sword")))),
		)),
	)

	res := reach(t, g, nil)
	assert.True(t, res.Accessible("Field.Chest"))
	assert.True(t, res.Accessible("Field.Gate"))
	assert.Equal(t, int64(1), res.Inventory.Count("Sword"))
	assert.GreaterOrEqual(t, res.Sweeps, 2)
}

func TestReachableCallerInventoryUnlocks(t *testing.T) {
	g := buildGraph(t,
		bind(item("Sword")),
		bind(region("Field",
			bind(location("Gate", requires(ast.Ref("Sword")))),
		)),
	)

	res := reach(t, g, NewInventory().Add("Sword", 1))
	assert.True(t, res.Accessible("Field.Gate"))
	assert.Equal(t, int64(1), res.Inventory.Count("Sword"))
}

func TestReachableUnknownInventoryPath(t *testing.T) {
	g := buildGraph(t, bind(region("Field")))

	_, err := Reachable(context.Background(), g, NewInventory().Add("Sord", 1))
	require.Error(t, err)
	assert.True(t, IsUnknownReference(err))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ast.Path("Sord"), e.Path)
}

func TestReachableNegativeInventoryCount(t *testing.T) {
	g := buildGraph(t,
		bind(item("Sword")),
		bind(region("Field")),
	)

	_, err := Reachable(context.Background(), g, NewInventory().Add("Sword", -1))
	require.Error(t, err)
	assert.True(t, IsSchemaViolation(err))
}

func TestReachablePlainGroupInventoryRejected(t *testing.T) {
	g := buildGraph(t,
		bind(items("Bottle", bind(item("EmptyBottle")))),
		bind(region("Field")),
	)

	_, err := Reachable(context.Background(), g, NewInventory().Add("Bottle", 1))
	require.Error(t, err)
	assert.True(t, IsSchemaViolation(err))
}

func TestReachableCountGate(t *testing.T) {
	g := buildGraph(t,
		bind(item("Rupee")),
		bind(region("Town",
			bind(location("StallA", avail("Rupee", 30))),
			bind(location("StallB", avail("Rupee", 20))),
			bind(location("Shop", requires(ast.Bin(ast.OpGe, count(ast.Ref("Rupee")), ast.Int(50))))),
			bind(location("Auction", requires(ast.Bin(ast.OpGe, count(ast.Ref("Rupee")), ast.Int(51))))),
		)),
	)

	res := reach(t, g, nil)
	assert.True(t, res.Accessible("Town.Shop"))
	assert.False(t, res.Accessible("Town.Auction"))
	assert.Equal(t, int64(50), res.Inventory.Count("Rupee"))
}

func TestReachableEdgeEntryMarksAncestors(t *testing.T) {
	g := buildGraph(t,
		bind(item("Key")),
		bind(region("Field",
			bind(&ast.LinkDecl{
				Name:      ast.N("Warp"),
				Dir:       ast.LinkTo,
				Endpoints: ast.NewVec[ast.Path]("Dungeon.Vault"),
			}),
		)),
		bind(region("Dungeon",
			requires(ast.Ref("Key")),
			bind(location("Vault")),
			bind(location("Pit")),
		)),
	)

	res := reach(t, g, nil)

	// The warp lands inside the vault, which puts the seeker inside the
	// dungeon without ever satisfying the dungeon's own gate.
	assert.True(t, res.Accessible("Dungeon.Vault"))
	assert.True(t, res.Accessible("Dungeon"))

	// The pit is only guarded by the inherited gate, and standing in the
	// dungeon does not discharge it.
	assert.False(t, res.Accessible("Dungeon.Pit"))
}

func TestReachableEdgeRequirement(t *testing.T) {
	stmts := []ast.Stmt{
		bind(item("Hookshot")),
		bind(region("EastBank",
			bind(&ast.LinkDecl{
				Name:      ast.N("Rope"),
				Dir:       ast.LinkTo,
				Endpoints: ast.NewVec[ast.Path]("WestBank"),
				Body:      []ast.Stmt{requires(ast.Ref("Hookshot"))},
			}),
		)),
		bind(region("WestBank", requires(ast.False))),
	}

	t.Run("without", func(t *testing.T) {
		res := reach(t, buildGraph(t, stmts...), nil)
		assert.False(t, res.Accessible("WestBank"))
	})

	t.Run("with", func(t *testing.T) {
		res := reach(t, buildGraph(t, stmts...), NewInventory().Add("Hookshot", 1))
		assert.True(t, res.Accessible("WestBank"))
	})
}

func TestReachableNegationOrderDecides(t *testing.T) {
	// The gate binds before the site that yields the bomb, so the first
	// sweep admits it while the state is still bomb-free.
	g := buildGraph(t,
		bind(item("Bomb")),
		bind(region("Field",
			bind(location("QuietPath", requires(ast.Not(ast.Ref("Bomb"))))),
			bind(location("Cache", avail("Bomb", 1))),
		)),
	)

	res := reach(t, g, nil)
	assert.True(t, res.Accessible("Field.QuietPath"))
	assert.True(t, res.Accessible("Field.Cache"))
	assert.Equal(t, int64(1), res.Inventory.Count("Bomb"))
}

func TestReachableNegationOrderBlocks(t *testing.T) {
	// Reversed binding: the bomb is already held when the gate first
	// evaluates, so the gate never opens. One-way negative dependence is
	// not a cycle; the query succeeds and reports the node unreachable.
	g := buildGraph(t,
		bind(item("Bomb")),
		bind(region("Field",
			bind(location("Cache", avail("Bomb", 1))),
			bind(location("QuietPath", requires(ast.Not(ast.Ref("Bomb"))))),
		)),
	)

	res := reach(t, g, nil)
	assert.True(t, res.Accessible("Field.Cache"))
	assert.False(t, res.Accessible("Field.QuietPath"))
}

func TestReachableNegativeCycle(t *testing.T) {
	g := buildGraph(t,
		bind(item("Red")),
		bind(item("Blue")),
		bind(region("Field",
			bind(location("RedShrine",
				requires(ast.Not(ast.Ref("Blue"))),
				avail("Red", 1),
			)),
			bind(location("BlueShrine",
				requires(ast.Not(ast.Ref("Red"))),
				avail("Blue", 1),
			)),
		)),
	)

	_, err := Reachable(context.Background(), g, nil)
	require.Error(t, err)
	assert.True(t, IsNegativeCycle(err))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ast.Path("Field.BlueShrine"), e.Path)
	require.Len(t, e.Cycle, 3)
	assert.Equal(t, e.Cycle[0], e.Cycle[len(e.Cycle)-1])
}

func TestReachableConsumableSharedStock(t *testing.T) {
	// Both chests draw on one shared stock of two keys, so only two
	// acquisitions happen no matter how many sites are visited.
	g := buildGraph(t,
		bind(item("SmallKey", prop(ast.ConsumableProp{}))),
		bind(region("Palace",
			bind(location("ChestA", avail("SmallKey", 2))),
			bind(location("ChestB", avail("SmallKey", 2))),
			bind(location("DoorTwo", requires(ast.Bin(ast.OpGe, count(ast.Ref("SmallKey")), ast.Int(2))))),
			bind(location("DoorThree", requires(ast.Bin(ast.OpGe, count(ast.Ref("SmallKey")), ast.Int(3))))),
		)),
	)

	res := reach(t, g, nil)
	assert.Equal(t, int64(2), res.Inventory.Count("SmallKey"))
	assert.True(t, res.Accessible("Palace.DoorTwo"))
	assert.False(t, res.Accessible("Palace.DoorThree"))
}

func TestReachableMaxCapClips(t *testing.T) {
	g := buildGraph(t,
		bind(item("Heart", prop(ast.MaxProp{Count: ast.Int(3)}))),
		bind(region("Field",
			bind(location("Meadow", avail("Heart", 5))),
			bind(location("Shrine", requires(ast.Bin(ast.OpGe, count(ast.Ref("Heart")), ast.Int(4))))),
		)),
	)

	res := reach(t, g, nil)
	assert.Equal(t, int64(3), res.Inventory.Count("Heart"))
	assert.False(t, res.Accessible("Field.Shrine"))
}

func TestReachableProgressiveTiers(t *testing.T) {
	g := buildGraph(t,
		bind(items("Swords",
			prop(ast.ProgressiveProp{}),
			bind(item("WoodSword")),
			bind(item("MasterSword")),
		)),
		bind(region("Field",
			bind(location("ChestA", avail("Swords.WoodSword", 1))),
			bind(location("ChestB", avail("Swords.MasterSword", 1))),
			bind(location("WoodGate", requires(ast.Ref("Swords.WoodSword")))),
			bind(location("MasterGate", requires(ast.Ref("Swords.MasterSword")))),
		)),
	)

	res := reach(t, g, nil)
	assert.True(t, res.Accessible("Field.WoodGate"))
	assert.True(t, res.Accessible("Field.MasterGate"))
	assert.Equal(t, int64(2), res.Inventory.Count("Swords"))
	assert.Equal(t, int64(0), res.Inventory.Count("Swords.WoodSword"))
}

func TestReachableProgressiveCounterFromInventory(t *testing.T) {
	g := buildGraph(t,
		bind(items("Swords",
			prop(ast.ProgressiveProp{}),
			bind(item("WoodSword")),
			bind(item("MasterSword")),
		)),
		bind(region("Field",
			bind(location("WoodGate", requires(ast.Ref("Swords.WoodSword")))),
			bind(location("MasterGate", requires(ast.Ref("Swords.MasterSword")))),
		)),
	)

	res := reach(t, g, NewInventory().Add("Swords", 1))
	assert.True(t, res.Accessible("Field.WoodGate"))
	assert.False(t, res.Accessible("Field.MasterGate"))
}

func TestReachableProvidesAliasing(t *testing.T) {
	g := buildGraph(t,
		bind(item("Hammer")),
		bind(item("Titan", prop(ast.ProvidesProp{Items: ast.NewVec[ast.Path]("Hammer")}))),
		bind(region("Field",
			bind(location("Chest", avail("Titan", 1))),
			bind(location("Rubble", requires(ast.Ref("Hammer")))),
		)),
	)

	res := reach(t, g, nil)
	assert.True(t, res.Accessible("Field.Rubble"))
	assert.Equal(t, int64(1), res.Inventory.Count("Titan"))
	assert.Equal(t, int64(0), res.Inventory.Count("Hammer"))
}

func TestReachableUnlockFlags(t *testing.T) {
	g := buildGraph(t,
		bind(region("Field",
			bind(location("Lever", prop(ast.UnlockProp{Flags: ast.NewVec[ast.Path]("drained")}))),
			bind(location("LakeBed", requires(ast.Ref("drained")))),
		)),
	)

	res := reach(t, g, nil)
	assert.True(t, res.Accessible("Field.LakeBed"))
	assert.Equal(t, int64(1), res.Inventory.Count("drained"))
}

func TestReachableGrantsClear(t *testing.T) {
	shrine := func() ast.Stmt {
		return bind(location("Shrine", prop(ast.GrantsProp{Entries: ast.NewVec(
			ast.GrantEntry{Negate: true, Target: "cursed"},
		)})))
	}
	gate := func() ast.Stmt {
		return bind(location("CurseGate", requires(ast.Ref("cursed"))))
	}

	t.Run("clear lands first", func(t *testing.T) {
		g := buildGraph(t, bind(region("Field", shrine(), gate())))
		res := reach(t, g, NewInventory().Add("cursed", 1))
		assert.False(t, res.Accessible("Field.CurseGate"))
		assert.Equal(t, int64(0), res.Inventory.Count("cursed"))
	})

	t.Run("gate opens before the clear", func(t *testing.T) {
		g := buildGraph(t, bind(region("Field", gate(), shrine())))
		res := reach(t, g, NewInventory().Add("cursed", 1))
		assert.True(t, res.Accessible("Field.CurseGate"))
		assert.Equal(t, int64(0), res.Inventory.Count("cursed"))
	})
}

func TestReachableVisibilityIndependent(t *testing.T) {
	g := buildGraph(t,
		bind(item("Sword")),
		bind(item("Scope")),
		bind(region("Cliff",
			bind(location("Peak",
				requires(ast.Ref("Sword")),
				visible(ast.Ref("Scope")),
			)),
		)),
	)

	res := reach(t, g, NewInventory().Add("Scope", 1))
	assert.False(t, res.Accessible("Cliff.Peak"))
	assert.True(t, res.Visible("Cliff.Peak"))

	res = reach(t, g, nil)
	assert.False(t, res.Accessible("Cliff.Peak"))
	assert.False(t, res.Visible("Cliff.Peak"))
}

func TestReachableVisibilityDefaultsToRequirement(t *testing.T) {
	g := buildGraph(t,
		bind(item("Sword")),
		bind(region("Field",
			bind(location("Gate", requires(ast.Ref("Sword")))),
		)),
	)

	res := reach(t, g, nil)
	assert.False(t, res.Visible("Field.Gate"))

	res = reach(t, g, NewInventory().Add("Sword", 1))
	assert.True(t, res.Visible("Field.Gate"))
}

func TestReachableStartWith(t *testing.T) {
	g := buildGraph(t,
		bind(item("Sword")),
		prop(ast.StartWithProp{Items: ast.NewVec(
			ast.StartItem{Target: "Sword", Count: ast.Int(2)},
		)}),
		bind(region("Field",
			bind(location("Gate", requires(ast.Bin(ast.OpGe, count(ast.Ref("Sword")), ast.Int(2))))),
		)),
	)

	res := reach(t, g, nil)
	assert.True(t, res.Accessible("Field.Gate"))
	assert.Equal(t, int64(2), res.Inventory.Count("Sword"))
}

func TestReachableStartIn(t *testing.T) {
	g := buildGraph(t,
		bind(item("Sword")),
		prop(ast.StartInProp{Region: "Hidden"}),
		bind(region("Plains", requires(ast.Ref("Sword")))),
		bind(region("Hidden", requires(ast.False))),
	)

	// The seeker starts inside Hidden, so its own gate never applies.
	res := reach(t, g, nil)
	assert.True(t, res.Accessible("Hidden"))
	assert.False(t, res.Accessible("Plains"))
}

func TestReachableRootLocations(t *testing.T) {
	g := buildGraph(t,
		bind(item("Sword")),
		bind(location("Stump", avail("Sword", 1))),
		bind(location("Gate", requires(ast.Ref("Sword")))),
	)

	res := reach(t, g, nil)
	assert.True(t, res.Accessible("Stump"))
	assert.True(t, res.Accessible("Gate"))
}

func TestReachableUnlimitedAvail(t *testing.T) {
	g := buildGraph(t,
		bind(item("Arrow")),
		bind(region("Field",
			bind(location("Fletcher", availInf("Arrow"))),
			bind(location("Range", requires(ast.Ref("Arrow")))),
		)),
	)

	res := reach(t, g, nil)
	assert.True(t, res.Accessible("Field.Range"))
	assert.Equal(t, int64(1), res.Inventory.Count("Arrow"))
}

func TestReachableBudgetExceeded(t *testing.T) {
	g := buildGraph(t,
		bind(item("Sword")),
		bind(region("Field",
			bind(location("GateA", requires(ast.Ref("Sword")))),
			bind(location("GateB", requires(ast.Ref("Sword")))),
		)),
	)

	_, err := Reachable(context.Background(), g, nil, WithMaxSteps(1))
	require.Error(t, err)
	assert.True(t, IsBudgetExceeded(err))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 1, e.Limit)
	assert.Greater(t, e.Steps, e.Limit)
}

func TestReachableCanceled(t *testing.T) {
	g := buildGraph(t, bind(region("Field")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Reachable(ctx, g, nil)
	require.Error(t, err)
	assert.True(t, IsCanceled(err))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestReachableMonotonic(t *testing.T) {
	g := buildGraph(t,
		bind(item("Sword")),
		bind(item("Bomb")),
		bind(region("Field",
			bind(location("Chest", requires(ast.Ref("Sword")), avail("Bomb", 1))),
			bind(location("Wall", requires(ast.Ref("Bomb")))),
		)),
	)

	bare := reach(t, g, nil)
	armed := reach(t, g, NewInventory().Add("Sword", 1))

	for p, a := range bare.Nodes {
		if a.Accessible {
			assert.True(t, armed.Accessible(p), "monotonicity broken at %s", p)
		}
	}
	assert.False(t, bare.Accessible("Field.Wall"))
	assert.True(t, armed.Accessible("Field.Wall"))
}

func TestReachableDeterministic(t *testing.T) {
	g := buildGraph(t,
		bind(item("Sword")),
		bind(item("Bomb")),
		bind(region("Field",
			bind(location("ChestA", avail("Sword", 1))),
			bind(location("ChestB", requires(ast.Ref("Sword")), avail("Bomb", 1))),
			bind(location("Wall", requires(ast.And(ast.Ref("Sword"), ast.Ref("Bomb"))))),
		)),
	)

	first := reach(t, g, nil)
	second := reach(t, g, nil)

	assert.Equal(t, first.Nodes, second.Nodes)
	assert.Equal(t, first.Sweeps, second.Sweeps)
	assert.Equal(t, first.Steps, second.Steps)
	require.Equal(t, first.Inventory.Paths(), second.Inventory.Paths())
	for _, p := range first.Inventory.Paths() {
		assert.Equal(t, first.Inventory.Count(p), second.Inventory.Count(p))
	}
}

func TestReachableDoesNotMutateCallerInventory(t *testing.T) {
	g := buildGraph(t,
		bind(item("Sword")),
		bind(item("Bomb")),
		bind(region("Field",
			bind(location("Chest", avail("Bomb", 1))),
		)),
	)

	inv := NewInventory().Add("Sword", 1)
	res := reach(t, g, inv)

	assert.Equal(t, int64(1), res.Inventory.Count("Bomb"))
	assert.Equal(t, int64(0), inv.Count("Bomb"))
	assert.Equal(t, 1, inv.Len())
}
