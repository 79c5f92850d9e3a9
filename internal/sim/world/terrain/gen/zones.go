package gen

import (
	"fmt"

	"tilecraft.ai/internal/sim/world/terrain/grid"
)

type Zone uint8

const (
	ZoneWater Zone = iota
	ZoneMountain
	ZoneSand
	ZoneForest
	ZoneGrass
)

func (z Zone) String() string {
	switch z {
	case ZoneWater:
		return "water"
	case ZoneMountain:
		return "mountain"
	case ZoneSand:
		return "sand"
	case ZoneForest:
		return "forest"
	default:
		return "grass"
	}
}

// Terrain maps a zone to the terrain stored on the grid. Forest is dense grass.
func (z Zone) Terrain() grid.Terrain {
	switch z {
	case ZoneWater:
		return grid.Water
	case ZoneMountain:
		return grid.Mountain
	case ZoneSand:
		return grid.Sand
	default:
		return grid.Grass
	}
}

// Thresholds split the noise range into zones. Elevation is checked before moisture.
type Thresholds struct {
	Water    float64 `yaml:"water"`
	Mountain float64 `yaml:"mountain"`
	Dry      float64 `yaml:"dry"`
	Wet      float64 `yaml:"wet"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Water: -0.5, Mountain: 1.1, Dry: -0.7, Wet: 0.7}
}

func (t Thresholds) Validate() error {
	if t.Water >= t.Mountain {
		return fmt.Errorf("water threshold %.2f must be below mountain threshold %.2f", t.Water, t.Mountain)
	}
	if t.Dry > t.Wet {
		return fmt.Errorf("dry threshold %.2f must not exceed wet threshold %.2f", t.Dry, t.Wet)
	}
	return nil
}

func Classify(elevation, moisture float64, t Thresholds) Zone {
	switch {
	case elevation < t.Water:
		return ZoneWater
	case elevation > t.Mountain:
		return ZoneMountain
	case moisture < t.Dry:
		return ZoneSand
	case moisture > t.Wet:
		return ZoneForest
	default:
		return ZoneGrass
	}
}

// Band is the upper bound of a cumulative probability band.
type Band struct {
	Kind grid.EntityKind `yaml:"kind"`
	P    float64         `yaml:"p"`
}

// Table holds ascending cumulative bands evaluated against a single draw.
type Table []Band

func (t Table) Pick(draw float64) grid.EntityKind {
	for _, b := range t {
		if draw < b.P {
			return b.Kind
		}
	}
	return grid.KindNone
}

func (t Table) validate(zone string) error {
	prev := 0.0
	for _, b := range t {
		if !b.Kind.Placeable() && b.Kind != grid.Creature {
			return fmt.Errorf("bands.%s: %s cannot be generated", zone, b.Kind)
		}
		if b.P < prev || b.P > 1 {
			return fmt.Errorf("bands.%s: %s bound %.3f out of order", zone, b.Kind, b.P)
		}
		prev = b.P
	}
	return nil
}

type Bands struct {
	Grass    Table `yaml:"grass"`
	Forest   Table `yaml:"forest"`
	Sand     Table `yaml:"sand"`
	Mountain Table `yaml:"mountain"`
}

func DefaultBands() Bands {
	return Bands{
		Grass: Table{
			{Kind: grid.Tree, P: 0.08},
			{Kind: grid.Rock, P: 0.11},
			{Kind: grid.Creature, P: 0.115},
		},
		Forest: Table{
			{Kind: grid.Tree, P: 0.22},
			{Kind: grid.Rock, P: 0.24},
			{Kind: grid.Creature, P: 0.25},
		},
		Sand:     Table{{Kind: grid.Cactus, P: 0.05}},
		Mountain: Table{{Kind: grid.Rock, P: 0.35}},
	}
}

func (b Bands) For(z Zone) Table {
	switch z {
	case ZoneForest:
		return b.Forest
	case ZoneSand:
		return b.Sand
	case ZoneMountain:
		return b.Mountain
	case ZoneGrass:
		return b.Grass
	}
	return nil
}

func (b Bands) empty() bool {
	return len(b.Grass) == 0 && len(b.Forest) == 0 && len(b.Sand) == 0 && len(b.Mountain) == 0
}

func (b Bands) Validate() error {
	for _, z := range []Zone{ZoneGrass, ZoneForest, ZoneSand, ZoneMountain} {
		if err := b.For(z).validate(z.String()); err != nil {
			return err
		}
	}
	return nil
}
