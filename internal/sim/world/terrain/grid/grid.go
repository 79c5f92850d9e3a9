package grid

import (
	"sort"

	"tilecraft.ai/internal/sim/world/logic/mathx"
)

const DefaultClearance = 25.0

// Grid is the authoritative occupancy model: one terrain kind and at most one
// stationary entity per tile. It is not safe for concurrent use; the world loop owns it.
type Grid struct {
	width, height int
	tileSize      int
	clearance     float64

	terrain  []Terrain
	occupant []EntityID // 0 = empty

	entities map[EntityID]Entity
	nextID   uint64
}

func New(width, height, tileSize int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if tileSize <= 0 {
		tileSize = 32
	}
	return &Grid{
		width:     width,
		height:    height,
		tileSize:  tileSize,
		clearance: DefaultClearance,
		terrain:   make([]Terrain, width*height),
		occupant:  make([]EntityID, width*height),
		entities:  map[EntityID]Entity{},
	}
}

func (g *Grid) Width() int         { return g.width }
func (g *Grid) Height() int        { return g.height }
func (g *Grid) TileSize() int      { return g.tileSize }
func (g *Grid) Clearance() float64 { return g.clearance }

func (g *Grid) SetClearance(r float64) {
	if r < 0 {
		r = 0
	}
	g.clearance = r
}

func (g *Grid) InBounds(t Tile) bool {
	return t.X >= 0 && t.Y >= 0 && t.X < g.width && t.Y < g.height
}

func (g *Grid) index(t Tile) int { return t.X + t.Y*g.width }

// TileAt snaps a world-space point to its enclosing tile.
func (g *Grid) TileAt(p mathx.Vec2) Tile {
	return Tile{X: mathx.FloorDivF(p.X, g.tileSize), Y: mathx.FloorDivF(p.Y, g.tileSize)}
}

func (g *Grid) Centre(t Tile) mathx.Vec2 {
	half := float64(g.tileSize) / 2
	return mathx.Vec2{X: float64(t.X*g.tileSize) + half, Y: float64(t.Y*g.tileSize) + half}
}

// Bounds is the world size in world units.
func (g *Grid) Bounds() mathx.Vec2 {
	return mathx.Vec2{X: float64(g.width * g.tileSize), Y: float64(g.height * g.tileSize)}
}

func (g *Grid) TerrainAt(t Tile) Terrain {
	if !g.InBounds(t) {
		return Void
	}
	return g.terrain[g.index(t)]
}

func (g *Grid) OccupantAt(t Tile) (EntityID, bool) {
	if !g.InBounds(t) {
		return 0, false
	}
	id := g.occupant[g.index(t)]
	return id, id != 0
}

func (g *Grid) EntityAt(t Tile) (Entity, bool) {
	id, ok := g.OccupantAt(t)
	if !ok {
		return Entity{}, false
	}
	return g.Entity(id)
}

func (g *Grid) Entity(id EntityID) (Entity, bool) {
	e, ok := g.entities[id]
	return e, ok
}

// SetTerrain classifies a tile. Generation only; it does not touch the occupant slot.
func (g *Grid) SetTerrain(t Tile, k Terrain) {
	if !g.InBounds(t) {
		return
	}
	g.terrain[g.index(t)] = k
}

// Reset sets a tile's terrain and drops whatever occupies it. Generation only.
func (g *Grid) Reset(t Tile, k Terrain) {
	if !g.InBounds(t) {
		return
	}
	i := g.index(t)
	if id := g.occupant[i]; id != 0 {
		delete(g.entities, id)
		g.occupant[i] = 0
	}
	g.terrain[i] = k
}

// Seed inserts a generated entity. No player exists yet, so clearance is not checked.
func (g *Grid) Seed(t Tile, kind EntityKind) (Entity, error) {
	if err := g.checkInsert(t, kind); err != nil {
		return Entity{}, err
	}
	return g.insert(t, kind), nil
}

// Place inserts a player-built entity. It is rejected on occupied or water tiles and
// within the clearance radius of the player.
func (g *Grid) Place(t Tile, kind EntityKind, player mathx.Vec2) (Entity, error) {
	if !kind.Placeable() {
		return Entity{}, ErrUnbuildable
	}
	if err := g.checkInsert(t, kind); err != nil {
		return Entity{}, err
	}
	if g.TooClose(t, player) {
		return Entity{}, ErrTooClose
	}
	return g.insert(t, kind), nil
}

// TooClose reports whether the tile centre lies inside the player's clearance radius.
func (g *Grid) TooClose(t Tile, player mathx.Vec2) bool {
	return mathx.Distance(player, g.Centre(t)) < g.clearance
}

// Remove clears the occupant slot and hands the entity back for accounting.
// Water is not harvestable and stays in place.
func (g *Grid) Remove(t Tile) (Entity, error) {
	if !g.InBounds(t) {
		return Entity{}, ErrVoid
	}
	i := g.index(t)
	id := g.occupant[i]
	if id == 0 {
		return Entity{}, ErrEmpty
	}
	e := g.entities[id]
	if !e.Removable {
		return Entity{}, ErrNotHarvestable
	}
	g.occupant[i] = 0
	delete(g.entities, id)
	return e, nil
}

func (g *Grid) checkInsert(t Tile, kind EntityKind) error {
	if !kind.Stationary() {
		return ErrUnbuildable
	}
	if !g.InBounds(t) {
		return ErrVoid
	}
	i := g.index(t)
	water := g.terrain[i] == Water
	if kind.Placeable() && water {
		return ErrAquatic
	}
	if kind == WaterBlock && !water {
		return ErrUnbuildable
	}
	if g.occupant[i] != 0 {
		return ErrOccupied
	}
	return nil
}

func (g *Grid) insert(t Tile, kind EntityKind) Entity {
	g.nextID++
	e := Entity{
		ID:        EntityID(g.nextID),
		Kind:      kind,
		Tile:      t,
		Yield:     YieldOf(kind),
		Removable: kind.Harvestable(),
	}
	g.entities[e.ID] = e
	g.occupant[g.index(t)] = e.ID
	return e
}

// Row returns the tile stream for one row, left to right.
func (g *Grid) Row(y int) []TileInfo {
	if y < 0 || y >= g.height {
		return nil
	}
	out := make([]TileInfo, 0, g.width)
	for x := 0; x < g.width; x++ {
		t := Tile{X: x, Y: y}
		info := TileInfo{Tile: t, Terrain: g.terrain[g.index(t)]}
		if e, ok := g.EntityAt(t); ok {
			info.Occupant = e.Kind
			info.EntityID = e.ID
		}
		out = append(out, info)
	}
	return out
}

// Entities returns all stationary entities ordered by id.
func (g *Grid) Entities() []Entity {
	out := make([]Entity, 0, len(g.entities))
	for _, e := range g.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (g *Grid) Count(kind EntityKind) int {
	n := 0
	for _, e := range g.entities {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
