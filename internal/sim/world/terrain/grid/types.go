package grid

import (
	"fmt"
	"strings"
)

type Terrain uint8

const (
	Void Terrain = iota
	Water
	Sand
	Grass
	Mountain
)

var terrainNames = [...]string{
	Void:     "VOID",
	Water:    "WATER",
	Sand:     "SAND",
	Grass:    "GRASS",
	Mountain: "MOUNTAIN",
}

func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return "VOID"
}

func (t Terrain) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

type EntityKind uint8

const (
	KindNone EntityKind = iota
	Tree
	Rock
	Wall
	Cactus
	Creature
	WaterBlock
)

var kindNames = [...]string{
	KindNone:   "NONE",
	Tree:       "TREE",
	Rock:       "ROCK",
	Wall:       "WALL",
	Cactus:     "CACTUS",
	Creature:   "CREATURE",
	WaterBlock: "WATER_BLOCK",
}

func (k EntityKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "NONE"
}

func ParseEntityKind(s string) (EntityKind, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range kindNames {
		if i == int(KindNone) {
			continue
		}
		if name == s {
			return EntityKind(i), true
		}
	}
	return KindNone, false
}

func (k EntityKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *EntityKind) UnmarshalText(b []byte) error {
	v, ok := ParseEntityKind(string(b))
	if !ok {
		return fmt.Errorf("unknown entity kind %q", b)
	}
	*k = v
	return nil
}

// Placeable kinds may occupy a tile and never sit on water.
func (k EntityKind) Placeable() bool {
	switch k {
	case Tree, Rock, Wall, Cactus:
		return true
	}
	return false
}

// Stationary kinds live in a tile's occupant slot.
func (k EntityKind) Stationary() bool {
	return k.Placeable() || k == WaterBlock
}

func (k EntityKind) Harvestable() bool {
	return k.Placeable()
}

// Yield is what destroying an entity is worth.
type Yield struct {
	Wood  uint `json:"wood"`
	Stone uint `json:"stone"`
}

func (y Yield) IsZero() bool { return y.Wood == 0 && y.Stone == 0 }

var yields = map[EntityKind]Yield{
	Tree:   {Wood: 1},
	Cactus: {Wood: 1},
	Wall:   {Wood: 1},
	Rock:   {Stone: 1},
}

func YieldOf(k EntityKind) Yield {
	return yields[k]
}

type EntityID uint64

type Tile struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Entity struct {
	ID        EntityID   `json:"id"`
	Kind      EntityKind `json:"kind"`
	Tile      Tile       `json:"tile"`
	Yield     Yield      `json:"yield"`
	Removable bool       `json:"removable"`
}

// TileInfo is one element of the tile stream handed to the render layer.
type TileInfo struct {
	Tile     Tile
	Terrain  Terrain
	Occupant EntityKind
	EntityID EntityID
}
