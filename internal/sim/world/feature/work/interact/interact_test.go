package interact

import (
	"errors"
	"testing"

	"tilecraft.ai/internal/sim/world/feature/economy/inventory"
	"tilecraft.ai/internal/sim/world/logic/mathx"
	"tilecraft.ai/internal/sim/world/terrain/grid"
)

type recorder struct {
	removed []grid.Entity
	placed  []grid.Entity
}

func (r *recorder) Removed(e grid.Entity) { r.removed = append(r.removed, e) }
func (r *recorder) Placed(e grid.Entity)  { r.placed = append(r.placed, e) }

func (r *recorder) events() int { return len(r.removed) + len(r.placed) }

func newWorld(t *testing.T, w, h int) (*grid.Grid, *inventory.Ledger, *recorder, *Controller) {
	t.Helper()
	g := grid.New(w, h, 32)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.SetTerrain(grid.Tile{X: x, Y: y}, grid.Grass)
		}
	}
	l := inventory.New()
	rec := &recorder{}
	return g, l, rec, New(g, l, DefaultPolicy(), rec)
}

func seed(t *testing.T, g *grid.Grid, tile grid.Tile, k grid.EntityKind) {
	t.Helper()
	if _, err := g.Seed(tile, k); err != nil {
		t.Fatalf("seed %v at %+v: %v", k, tile, err)
	}
}

func click(g *grid.Grid, b Button, t grid.Tile) Pointer {
	return Pointer{Button: b, Point: g.Centre(t).Add(mathx.Vec2{X: 3, Y: -4})}
}

func TestTreeThenWallScenario(t *testing.T) {
	g, l, rec, c := newWorld(t, 6, 6)
	player := g.Centre(grid.Tile{X: 0, Y: 0})
	tree := grid.Tile{X: 3, Y: 3}
	if _, err := g.Seed(tree, grid.Tree); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out := c.Handle(click(g, Primary, tree), player, grid.Wall)
	if !out.Applied || out.Ledger != (inventory.Snapshot{Wood: 1}) {
		t.Fatalf("destroy: applied=%v ledger=%+v err=%v", out.Applied, out.Ledger, out.Err)
	}
	if _, ok := g.OccupantAt(tree); ok {
		t.Fatalf("tree still on grid")
	}

	adjacent := grid.Tile{X: 4, Y: 3}
	out = c.Handle(click(g, Secondary, adjacent), player, grid.Wall)
	if !out.Applied {
		t.Fatalf("build: %v", out.Err)
	}
	if l.Snapshot() != (inventory.Snapshot{}) {
		t.Fatalf("ledger=%+v want empty", l.Snapshot())
	}
	if e, ok := g.EntityAt(adjacent); !ok || e.Kind != grid.Wall {
		t.Fatalf("adjacent occupant=%+v ok=%v want WALL", e, ok)
	}
	if len(rec.removed) != 1 || len(rec.placed) != 1 {
		t.Fatalf("events removed=%d placed=%d", len(rec.removed), len(rec.placed))
	}
	want := []State{StateIdle, StateResolveTarget, StateBuild, StateIdle}
	if len(out.Path) != len(want) {
		t.Fatalf("path=%v want %v", out.Path, want)
	}
	for i := range want {
		if out.Path[i] != want[i] {
			t.Fatalf("path=%v want %v", out.Path, want)
		}
	}
	if c.State() != StateIdle {
		t.Fatalf("controller left in %s", c.State())
	}
}

func TestDestroyYields(t *testing.T) {
	g, l, _, c := newWorld(t, 4, 1)
	seed(t, g, grid.Tile{X: 0, Y: 0}, grid.Tree)
	seed(t, g, grid.Tile{X: 1, Y: 0}, grid.Rock)
	seed(t, g, grid.Tile{X: 2, Y: 0}, grid.Cactus)
	seed(t, g, grid.Tile{X: 3, Y: 0}, grid.Wall)
	player := mathx.Vec2{X: 500, Y: 500}
	for x := 0; x < 4; x++ {
		if out := c.Handle(click(g, Primary, grid.Tile{X: x}), player, grid.Wall); !out.Applied {
			t.Fatalf("destroy x=%d: %v", x, out.Err)
		}
	}
	if l.Snapshot() != (inventory.Snapshot{Wood: 3, Stone: 1}) {
		t.Fatalf("ledger=%+v want wood=3 stone=1", l.Snapshot())
	}
}

func TestDestroyNoOps(t *testing.T) {
	g, l, rec, c := newWorld(t, 3, 3)
	g.SetTerrain(grid.Tile{X: 2, Y: 2}, grid.Water)
	seed(t, g, grid.Tile{X: 2, Y: 2}, grid.WaterBlock)
	player := mathx.Vec2{}

	cases := []struct {
		point mathx.Vec2
		err   error
	}{
		{g.Centre(grid.Tile{X: 1, Y: 1}), grid.ErrEmpty},
		{g.Centre(grid.Tile{X: 2, Y: 2}), grid.ErrNotHarvestable},
		{mathx.Vec2{X: -5, Y: 40}, grid.ErrVoid},
	}
	for _, tc := range cases {
		out := c.Handle(Pointer{Button: Primary, Point: tc.point}, player, grid.Wall)
		if out.Applied || !errors.Is(out.Err, tc.err) {
			t.Fatalf("point %+v: applied=%v err=%v want %v", tc.point, out.Applied, out.Err, tc.err)
		}
	}
	if l.Snapshot() != (inventory.Snapshot{}) || rec.events() != 0 {
		t.Fatalf("no-op destroy changed state: ledger=%+v events=%d", l.Snapshot(), rec.events())
	}
}

func TestBuildWithoutWoodIsNoOp(t *testing.T) {
	g, l, rec, c := newWorld(t, 4, 4)
	target := grid.Tile{X: 3, Y: 3}
	out := c.Handle(click(g, Secondary, target), mathx.Vec2{}, grid.Wall)
	if out.Applied || out.Reason() != grid.ReasonInsufficient {
		t.Fatalf("expected INSUFFICIENT, got applied=%v err=%v", out.Applied, out.Err)
	}
	if _, ok := g.OccupantAt(target); ok {
		t.Fatalf("grid changed")
	}
	if l.Snapshot() != (inventory.Snapshot{}) || rec.events() != 0 {
		t.Fatalf("ledger=%+v events=%d", l.Snapshot(), rec.events())
	}
}

func TestBuildRejectionsKeepWood(t *testing.T) {
	g, l, rec, c := newWorld(t, 5, 5)
	l.Credit(inventory.Wood, 2)
	seed(t, g, grid.Tile{X: 4, Y: 4}, grid.Rock)
	g.SetTerrain(grid.Tile{X: 4, Y: 0}, grid.Water)
	player := g.Centre(grid.Tile{X: 1, Y: 1})

	cases := []struct {
		tile grid.Tile
		kind grid.EntityKind
		err  error
	}{
		{grid.Tile{X: 4, Y: 4}, grid.Wall, grid.ErrOccupied},
		{grid.Tile{X: 4, Y: 0}, grid.Wall, grid.ErrAquatic},
		{grid.Tile{X: 1, Y: 1}, grid.Wall, grid.ErrTooClose},
		{grid.Tile{X: 3, Y: 3}, grid.Creature, grid.ErrUnbuildable},
		{grid.Tile{X: 3, Y: 3}, grid.Tree, grid.ErrUnbuildable},
	}
	for _, tc := range cases {
		out := c.Handle(click(g, Secondary, tc.tile), player, tc.kind)
		if out.Applied || !errors.Is(out.Err, tc.err) {
			t.Fatalf("%+v %s: applied=%v err=%v want %v", tc.tile, tc.kind, out.Applied, out.Err, tc.err)
		}
		if l.Balance(inventory.Wood) != 2 {
			t.Fatalf("%+v: wood=%d want 2", tc.tile, l.Balance(inventory.Wood))
		}
	}
	if rec.events() != 0 {
		t.Fatalf("rejected builds emitted %d events", rec.events())
	}
	if e, _ := g.EntityAt(grid.Tile{X: 4, Y: 4}); e.Kind != grid.Rock {
		t.Fatalf("occupied tile changed to %s", e.Kind)
	}
}

func TestRangeGateRunsBeforeLedger(t *testing.T) {
	g := grid.New(20, 1, 32)
	for x := 0; x < 20; x++ {
		g.SetTerrain(grid.Tile{X: x}, grid.Grass)
	}
	l := inventory.FromSnapshot(inventory.Snapshot{Wood: 1})
	p := DefaultPolicy()
	p.MaxReach = 100
	c := New(g, l, p, nil)
	player := g.Centre(grid.Tile{X: 0})

	seed(t, g, grid.Tile{X: 15}, grid.Tree)
	if out := c.Handle(click(g, Primary, grid.Tile{X: 15}), player, grid.Wall); out.Reason() != grid.ReasonOutOfRange {
		t.Fatalf("far destroy: %v", out.Err)
	}
	if _, ok := g.OccupantAt(grid.Tile{X: 15}); !ok {
		t.Fatalf("far tree removed")
	}
	if out := c.Handle(click(g, Secondary, grid.Tile{X: 10}), player, grid.Wall); out.Reason() != grid.ReasonOutOfRange {
		t.Fatalf("far build: %v", out.Err)
	}
	if l.Balance(inventory.Wood) != 1 {
		t.Fatalf("wood=%d want 1", l.Balance(inventory.Wood))
	}
	if out := c.Handle(click(g, Secondary, grid.Tile{X: 2}), player, grid.Wall); !out.Applied {
		t.Fatalf("near build: %v", out.Err)
	}
}

func TestStoneWallCostsWoodByDefault(t *testing.T) {
	g, l, _, c := newWorld(t, 4, 4)
	l.Credit(inventory.Stone, 3)
	out := c.Handle(click(g, Secondary, grid.Tile{X: 3, Y: 3}), mathx.Vec2{}, grid.Rock)
	if out.Reason() != grid.ReasonInsufficient || l.Balance(inventory.Stone) != 3 {
		t.Fatalf("rock wall with stone only: err=%v stone=%d", out.Err, l.Balance(inventory.Stone))
	}
	l.Credit(inventory.Wood, 1)
	if out := c.Handle(click(g, Secondary, grid.Tile{X: 3, Y: 3}), mathx.Vec2{}, grid.Rock); !out.Applied {
		t.Fatalf("rock wall with wood: %v", out.Err)
	}
	if l.Snapshot() != (inventory.Snapshot{Stone: 3}) {
		t.Fatalf("ledger=%+v", l.Snapshot())
	}
}

func TestWaterInvariantUnderBuildSequence(t *testing.T) {
	g, l, _, c := newWorld(t, 6, 6)
	for x := 0; x < 6; x++ {
		g.SetTerrain(grid.Tile{X: x, Y: 5}, grid.Water)
	}
	l.Credit(inventory.Wood, 100)
	player := mathx.Vec2{X: -200, Y: -200}
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			c.Handle(click(g, Secondary, grid.Tile{X: x, Y: y}), player, grid.Wall)
			c.Handle(click(g, Primary, grid.Tile{X: (x + 2) % 6, Y: y}), player, grid.Wall)
		}
	}
	for x := 0; x < 6; x++ {
		if e, ok := g.EntityAt(grid.Tile{X: x, Y: 5}); ok && e.Kind.Placeable() {
			t.Fatalf("water tile %d holds %s", x, e.Kind)
		}
	}
}

func TestUnknownButtonIsNoOp(t *testing.T) {
	g, _, rec, c := newWorld(t, 2, 2)
	out := c.Handle(Pointer{Button: Button(9), Point: g.Centre(grid.Tile{})}, mathx.Vec2{}, grid.Wall)
	if out.Applied || !errors.Is(out.Err, ErrUnknownButton) || rec.events() != 0 {
		t.Fatalf("unknown button: %+v", out)
	}
}

func TestNextBuildableCycles(t *testing.T) {
	_, _, _, c := newWorld(t, 1, 1)
	if got := c.NextBuildable(grid.Wall); got != grid.Rock {
		t.Fatalf("after WALL got %s", got)
	}
	if got := c.NextBuildable(grid.Rock); got != grid.Wall {
		t.Fatalf("after ROCK got %s", got)
	}
	if got := c.NextBuildable(grid.Tree); got != grid.Wall {
		t.Fatalf("unknown selection should reset to WALL, got %s", got)
	}
}
