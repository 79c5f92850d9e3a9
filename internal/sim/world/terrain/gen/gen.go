package gen

import (
	"math/rand"

	"tilecraft.ai/internal/sim/world/feature/entities/creatures"
	"tilecraft.ai/internal/sim/world/logic/mathx"
	"tilecraft.ai/internal/sim/world/terrain/grid"
	"tilecraft.ai/internal/sim/world/terrain/noise"
)

type SpawnPolicy string

const (
	SpawnRandom SpawnPolicy = "random"
	SpawnFirst  SpawnPolicy = "first"
)

type Params struct {
	Width    int
	Height   int
	TileSize int

	// Seed drives terrain jitter; PlacementSeed drives object placement and spawn choice.
	Seed          int64
	PlacementSeed int64

	// Jitter bounds the per-axis perturbation added to elevation and moisture.
	Jitter float64

	Thresholds Thresholds
	Bands      Bands

	GuaranteeSpawn bool
	Spawn          SpawnPolicy
}

func DefaultParams() Params {
	return Params{
		Width:          50,
		Height:         50,
		TileSize:       32,
		Seed:           1,
		PlacementSeed:  1,
		Jitter:         0.1,
		Thresholds:     DefaultThresholds(),
		Bands:          DefaultBands(),
		GuaranteeSpawn: true,
		Spawn:          SpawnRandom,
	}
}

func (p *Params) applyDefaults() {
	d := DefaultParams()
	if p.Width <= 0 {
		p.Width = d.Width
	}
	if p.Height <= 0 {
		p.Height = d.Height
	}
	if p.TileSize <= 0 {
		p.TileSize = d.TileSize
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	if p.Thresholds == (Thresholds{}) {
		p.Thresholds = d.Thresholds
	}
	if p.Bands.empty() {
		p.Bands = d.Bands
	}
	if p.Spawn == "" {
		p.Spawn = d.Spawn
	}
}

type Result struct {
	Grid      *grid.Grid
	Creatures *creatures.Roster

	Spawn     mathx.Vec2
	SpawnTile grid.Tile

	// Candidates is the size of the safe-spawn list before it was discarded.
	Candidates int
	// Fallback is set when no candidate existed and the map centre was used.
	Fallback bool
}

// Generate builds a world in a single row-major pass. It never fails: a map with no
// safe tile spawns the player at the centre.
func Generate(p Params, field noise.Field) Result {
	p.applyDefaults()
	if field == nil {
		field = noise.Waves{}
	}

	g := grid.New(p.Width, p.Height, p.TileSize)
	roster := creatures.NewRoster()
	terrainRNG := rand.New(rand.NewSource(p.Seed))
	placeRNG := rand.New(rand.NewSource(p.PlacementSeed))

	var candidates []grid.Tile
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			t := grid.Tile{X: x, Y: y}
			elev := field.Elevation(x, y) + jitter(terrainRNG, p.Jitter)
			moist := field.Moisture(x, y) + jitter(terrainRNG, p.Jitter)
			zone := Classify(elev, moist, p.Thresholds)
			g.SetTerrain(t, zone.Terrain())

			if zone == ZoneWater {
				_, _ = g.Seed(t, grid.WaterBlock)
				continue
			}
			kind := p.Bands.For(zone).Pick(placeRNG.Float64())
			switch {
			case kind == grid.Creature:
				roster.Spawn(g.Centre(t))
				continue
			case kind != grid.KindNone:
				if _, err := g.Seed(t, kind); err == nil {
					continue
				}
			}
			candidates = append(candidates, t)
		}
	}

	res := Result{Grid: g, Creatures: roster, Candidates: len(candidates)}
	if len(candidates) > 0 {
		pick := candidates[0]
		if p.Spawn == SpawnRandom {
			pick = candidates[placeRNG.Intn(len(candidates))]
		}
		res.SpawnTile = pick
		res.Spawn = g.Centre(pick)
		return res
	}

	res.Fallback = true
	centre := grid.Tile{X: p.Width / 2, Y: p.Height / 2}
	res.SpawnTile = centre
	if p.GuaranteeSpawn {
		g.Reset(centre, grid.Grass)
		for _, c := range roster.Alive() {
			if g.TileAt(c.Pos) == centre {
				roster.Kill(c.ID)
			}
		}
		res.Spawn = g.Centre(centre)
		return res
	}
	res.Spawn = mathx.Vec2{X: float64(p.Width*p.TileSize) / 2, Y: float64(p.Height*p.TileSize) / 2}
	return res
}

func jitter(rng *rand.Rand, amount float64) float64 {
	// Always draw so the terrain stream does not depend on the jitter setting.
	v := rng.Float64()
	if amount == 0 {
		return 0
	}
	return (v*2 - 1) * amount
}
