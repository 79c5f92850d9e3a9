package tuning

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"tilecraft.ai/internal/sim/world/feature/economy/inventory"
	"tilecraft.ai/internal/sim/world/feature/entities/creatures"
	"tilecraft.ai/internal/sim/world/feature/work/interact"
	"tilecraft.ai/internal/sim/world/terrain/gen"
	"tilecraft.ai/internal/sim/world/terrain/grid"
	"tilecraft.ai/internal/sim/world/terrain/noise"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`
	TickRateHz      int    `yaml:"tick_rate_hz"`

	Map         Map            `yaml:"map"`
	Noise       Noise          `yaml:"noise"`
	Jitter      float64        `yaml:"jitter"`
	Thresholds  gen.Thresholds `yaml:"thresholds"`
	Bands       gen.Bands      `yaml:"bands"`
	Spawn       Spawn          `yaml:"spawn"`
	Creatures   Creatures      `yaml:"creatures"`
	Interaction Interaction    `yaml:"interaction"`
	RateLimits  RateLimits     `yaml:"rate_limits"`
}

type Map struct {
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	TileSize int `yaml:"tile_size"`
}

type Noise struct {
	Kind    string              `yaml:"kind"`
	Simplex noise.SimplexParams `yaml:"simplex"`
}

type Spawn struct {
	Policy    string `yaml:"policy"`
	Guarantee bool   `yaml:"guarantee"`
}

type Creatures struct {
	IntervalMs int     `yaml:"interval_ms"`
	MaxSpeed   float64 `yaml:"max_speed"`
}

// RateLimits caps per-session requests. Zero disables a limit.
type RateLimits struct {
	SaveWindowTicks uint64 `yaml:"save_window_ticks"`
	SaveMax         int    `yaml:"save_max"`
}

type Interaction struct {
	ClearanceRadius float64                    `yaml:"clearance_radius"`
	MaxReach        float64                    `yaml:"max_reach"`
	Palette         []string                   `yaml:"palette"`
	BuildCosts      map[string]map[string]uint `yaml:"build_costs"`
}

func Defaults() Tuning {
	p := gen.DefaultParams()
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      20,
		Map:             Map{Width: p.Width, Height: p.Height, TileSize: p.TileSize},
		Noise:           Noise{Kind: noise.KindWaves},
		Jitter:          p.Jitter,
		Thresholds:      p.Thresholds,
		Bands:           p.Bands,
		Spawn:           Spawn{Policy: string(p.Spawn), Guarantee: p.GuaranteeSpawn},
		Creatures: Creatures{
			IntervalMs: int(creatures.DefaultInterval / time.Millisecond),
			MaxSpeed:   creatures.DefaultMaxSpeed,
		},
		Interaction: Interaction{
			ClearanceRadius: grid.DefaultClearance,
			Palette:         []string{"WALL", "ROCK"},
		},
		RateLimits: RateLimits{SaveWindowTicks: 20, SaveMax: 2},
	}
}

// ApplyDefaults fills keys that were left empty or set to nonsense values.
func (t *Tuning) ApplyDefaults() {
	d := Defaults()
	if t.ProtocolVersion == "" {
		t.ProtocolVersion = d.ProtocolVersion
	}
	if t.TickRateHz <= 0 {
		t.TickRateHz = d.TickRateHz
	}
	if t.Map.Width <= 0 {
		t.Map.Width = d.Map.Width
	}
	if t.Map.Height <= 0 {
		t.Map.Height = d.Map.Height
	}
	if t.Map.TileSize <= 0 {
		t.Map.TileSize = d.Map.TileSize
	}
	if t.Noise.Kind == "" {
		t.Noise.Kind = d.Noise.Kind
	}
	if t.Jitter < 0 {
		t.Jitter = 0
	}
	if t.Thresholds == (gen.Thresholds{}) {
		t.Thresholds = d.Thresholds
	}
	if t.Spawn.Policy == "" {
		t.Spawn.Policy = d.Spawn.Policy
	}
	if t.Creatures.IntervalMs <= 0 {
		t.Creatures.IntervalMs = d.Creatures.IntervalMs
	}
	if t.Creatures.MaxSpeed <= 0 {
		t.Creatures.MaxSpeed = d.Creatures.MaxSpeed
	}
	if t.Interaction.ClearanceRadius <= 0 {
		t.Interaction.ClearanceRadius = d.Interaction.ClearanceRadius
	}
	if t.Interaction.MaxReach < 0 {
		t.Interaction.MaxReach = 0
	}
	if len(t.Interaction.Palette) == 0 {
		t.Interaction.Palette = d.Interaction.Palette
	}
	if t.RateLimits.SaveMax < 0 {
		t.RateLimits.SaveMax = 0
	}
}

func (t Tuning) Validate() error {
	if err := t.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	if err := t.Bands.Validate(); err != nil {
		return err
	}
	switch gen.SpawnPolicy(t.Spawn.Policy) {
	case gen.SpawnRandom, gen.SpawnFirst:
	default:
		return fmt.Errorf("spawn.policy: unknown policy %q", t.Spawn.Policy)
	}
	if _, err := noise.New(t.Noise.Kind, 0, t.Noise.Simplex); err != nil {
		return fmt.Errorf("noise.kind: %w", err)
	}
	if _, err := t.Policy(); err != nil {
		return err
	}
	return nil
}

func (t Tuning) TickDuration() time.Duration {
	return time.Second / time.Duration(t.TickRateHz)
}

func (t Tuning) CreatureInterval() time.Duration {
	return time.Duration(t.Creatures.IntervalMs) * time.Millisecond
}

// GenParams combines the map tuning with the per-world seeds from process config.
func (t Tuning) GenParams(seed, placementSeed int64) gen.Params {
	return gen.Params{
		Width:          t.Map.Width,
		Height:         t.Map.Height,
		TileSize:       t.Map.TileSize,
		Seed:           seed,
		PlacementSeed:  placementSeed,
		Jitter:         t.Jitter,
		Thresholds:     t.Thresholds,
		Bands:          t.Bands,
		GuaranteeSpawn: t.Spawn.Guarantee,
		Spawn:          gen.SpawnPolicy(t.Spawn.Policy),
	}
}

func (t Tuning) NoiseField(seed int64) (noise.Field, error) {
	return noise.New(t.Noise.Kind, seed, t.Noise.Simplex)
}

func (t Tuning) Policy() (interact.Policy, error) {
	costs, err := inventory.ParseCosts(t.Interaction.BuildCosts)
	if err != nil {
		return interact.Policy{}, err
	}
	palette := make([]grid.EntityKind, 0, len(t.Interaction.Palette))
	for _, name := range t.Interaction.Palette {
		k, ok := grid.ParseEntityKind(name)
		if !ok || !k.Placeable() {
			return interact.Policy{}, fmt.Errorf("interaction.palette: %q is not buildable", name)
		}
		if _, priced := costs.For(k); !priced {
			return interact.Policy{}, fmt.Errorf("interaction.palette: %s has no build cost", k)
		}
		palette = append(palette, k)
	}
	return interact.Policy{MaxReach: t.Interaction.MaxReach, Costs: costs, Palette: palette}, nil
}

// Load reads tuning.yaml over the defaults. Keys missing from the file keep their default.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.ApplyDefaults()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
