package gen

import (
	"errors"
	"testing"

	"tilecraft.ai/internal/sim/world/logic/mathx"
	"tilecraft.ai/internal/sim/world/terrain/grid"
	"tilecraft.ai/internal/sim/world/terrain/noise"
)

// constField returns the same elevation and moisture everywhere.
type constField struct{ elev, moist float64 }

func (c constField) Elevation(x, y int) float64 { return c.elev }
func (c constField) Moisture(x, y int) float64  { return c.moist }

func eachTile(g *grid.Grid, fn func(grid.Tile)) {
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			fn(grid.Tile{X: x, Y: y})
		}
	}
}

func TestWaterNeverHostsPlaceables(t *testing.T) {
	for _, seed := range []int64{1, 7, 42} {
		p := DefaultParams()
		p.Seed, p.PlacementSeed = seed, seed*31
		res := Generate(p, noise.NewSimplex(seed, noise.SimplexParams{}))
		water := 0
		eachTile(res.Grid, func(tile grid.Tile) {
			if res.Grid.TerrainAt(tile) != grid.Water {
				return
			}
			water++
			e, ok := res.Grid.EntityAt(tile)
			if !ok || e.Kind != grid.WaterBlock {
				t.Fatalf("seed %d: water tile %+v holds %+v ok=%v", seed, tile, e, ok)
			}
		})
		if res.Grid.Count(grid.WaterBlock) != water {
			t.Fatalf("seed %d: %d water blocks for %d water tiles", seed, res.Grid.Count(grid.WaterBlock), water)
		}
	}
}

func TestPinnedWaterTileRejectsPlace(t *testing.T) {
	target := noise.Tile{X: 4, Y: 6}
	field := noise.Pinned{Elev: map[noise.Tile]float64{target: -1.0}}
	p := DefaultParams()
	p.Width, p.Height = 10, 10
	res := Generate(p, field)

	tile := grid.Tile{X: target.X, Y: target.Y}
	if got := res.Grid.TerrainAt(tile); got != grid.Water {
		t.Fatalf("terrain=%s want WATER", got)
	}
	far := mathx.Vec2{X: -1000, Y: -1000}
	for _, kind := range []grid.EntityKind{grid.Wall, grid.Rock, grid.Tree, grid.Cactus} {
		_, err := res.Grid.Place(tile, kind, far)
		if !errors.Is(err, grid.ErrAquatic) {
			t.Fatalf("place %s on water: expected ErrAquatic, got %v", kind, err)
		}
	}
}

func TestSameSeedSameTerrain(t *testing.T) {
	p := DefaultParams()
	p.Seed = 99
	p.PlacementSeed = 1
	a := Generate(p, noise.Waves{})
	p.PlacementSeed = 2
	b := Generate(p, noise.Waves{})

	eachTile(a.Grid, func(tile grid.Tile) {
		if a.Grid.TerrainAt(tile) != b.Grid.TerrainAt(tile) {
			t.Fatalf("terrain differs at %+v: %s vs %s", tile, a.Grid.TerrainAt(tile), b.Grid.TerrainAt(tile))
		}
	})

	// Same placement seed too: objects and spawn match as well.
	c := Generate(p, noise.Waves{})
	if c.Spawn != b.Spawn || len(c.Grid.Entities()) != len(b.Grid.Entities()) {
		t.Fatalf("seeded placement not reproducible: spawn %+v vs %+v", c.Spawn, b.Spawn)
	}
	for i, e := range b.Grid.Entities() {
		if c.Grid.Entities()[i] != e {
			t.Fatalf("entity %d differs: %+v vs %+v", i, c.Grid.Entities()[i], e)
		}
	}
}

func TestSpawnIsSafe(t *testing.T) {
	for _, policy := range []SpawnPolicy{SpawnRandom, SpawnFirst} {
		p := DefaultParams()
		p.Spawn = policy
		res := Generate(p, noise.Waves{})
		if res.Fallback || res.Candidates == 0 {
			t.Fatalf("%s: expected candidates on the default map", policy)
		}
		if res.Grid.TerrainAt(res.SpawnTile) == grid.Water {
			t.Fatalf("%s: spawned in water at %+v", policy, res.SpawnTile)
		}
		if _, ok := res.Grid.OccupantAt(res.SpawnTile); ok {
			t.Fatalf("%s: spawned on an occupied tile %+v", policy, res.SpawnTile)
		}
		if res.Spawn != res.Grid.Centre(res.SpawnTile) {
			t.Fatalf("%s: spawn %+v is not the tile centre", policy, res.Spawn)
		}
		for _, c := range res.Creatures.Alive() {
			if res.Grid.TileAt(c.Pos) == res.SpawnTile {
				t.Fatalf("%s: spawned on creature %d", policy, c.ID)
			}
		}
	}
}

func TestDegenerateWorldFallsBackToCentre(t *testing.T) {
	p := DefaultParams()
	p.Width, p.Height = 8, 6
	p.GuaranteeSpawn = false
	res := Generate(p, constField{elev: -1.5})
	if !res.Fallback || res.Candidates != 0 {
		t.Fatalf("expected fallback, got candidates=%d", res.Candidates)
	}
	want := mathx.Vec2{X: 8 * 32 / 2, Y: 6 * 32 / 2}
	if res.Spawn != want {
		t.Fatalf("spawn=%+v want %+v", res.Spawn, want)
	}
}

func TestGuaranteeSpawnClearsCentreTile(t *testing.T) {
	p := DefaultParams()
	p.Width, p.Height = 9, 9
	p.GuaranteeSpawn = true
	res := Generate(p, constField{elev: -1.5})
	centre := grid.Tile{X: 4, Y: 4}
	if res.SpawnTile != centre {
		t.Fatalf("spawn tile=%+v want %+v", res.SpawnTile, centre)
	}
	if res.Grid.TerrainAt(centre) != grid.Grass {
		t.Fatalf("centre terrain=%s want GRASS", res.Grid.TerrainAt(centre))
	}
	if _, ok := res.Grid.OccupantAt(centre); ok {
		t.Fatalf("centre tile still occupied")
	}
	if res.Grid.TerrainAt(grid.Tile{X: 0, Y: 0}) != grid.Water {
		t.Fatalf("only the centre tile should be cleared")
	}
}

func TestBandsAreCumulative(t *testing.T) {
	tbl := DefaultBands().Grass
	cases := map[float64]grid.EntityKind{
		0.0:   grid.Tree,
		0.079: grid.Tree,
		0.08:  grid.Rock,
		0.109: grid.Rock,
		0.11:  grid.Creature,
		0.115: grid.KindNone,
		0.9:   grid.KindNone,
	}
	for draw, want := range cases {
		if got := tbl.Pick(draw); got != want {
			t.Fatalf("draw %.3f: got %s want %s", draw, got, want)
		}
	}
	bad := Bands{Grass: Table{{Kind: grid.Rock, P: 0.2}, {Kind: grid.Tree, P: 0.1}}}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected descending bands to be rejected")
	}
	if err := (Bands{Sand: Table{{Kind: grid.WaterBlock, P: 0.1}}}).Validate(); err == nil {
		t.Fatalf("expected water block band to be rejected")
	}
	if err := DefaultBands().Validate(); err != nil {
		t.Fatalf("default bands: %v", err)
	}
}

func TestClassifyPriority(t *testing.T) {
	th := DefaultThresholds()
	if z := Classify(-0.9, 1.4, th); z != ZoneWater {
		t.Fatalf("low wet tile=%s want water", z)
	}
	if z := Classify(1.3, -1.4, th); z != ZoneMountain {
		t.Fatalf("high dry tile=%s want mountain", z)
	}
	if z := Classify(0, -1, th); z != ZoneSand {
		t.Fatalf("dry tile=%s want sand", z)
	}
	if z := Classify(0, 1, th); z != ZoneForest || z.Terrain() != grid.Grass {
		t.Fatalf("wet tile=%s want forest on grass", z)
	}
	if z := Classify(0, 0, th); z != ZoneGrass {
		t.Fatalf("neutral tile=%s want grass", z)
	}
}
