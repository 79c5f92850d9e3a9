package noise

import (
	"fmt"
	"math"
	"strings"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Field maps integer tile coordinates to terrain signals.
// Implementations must be cheap and free of side effects.
type Field interface {
	Elevation(x, y int) float64
	Moisture(x, y int) float64
}

const (
	KindWaves   = "waves"
	KindSimplex = "simplex"
)

// Waves is the two-sinusoid field: elevation spans roughly [-1.5, 1.5].
type Waves struct{}

func (Waves) Elevation(x, y int) float64 {
	fx, fy := float64(x), float64(y)
	return math.Sin(fx*0.15+fy*0.25) + math.Sin(fx*0.3+fy*0.1)*0.5
}

func (Waves) Moisture(x, y int) float64 {
	fx, fy := float64(x), float64(y)
	return math.Sin(fx*0.11-fy*0.07+1.3) + math.Sin(fx*0.05+fy*0.21+0.4)*0.5
}

type SimplexParams struct {
	Octaves     int     `yaml:"octaves"`
	Frequency   float64 `yaml:"frequency"`
	Persistence float64 `yaml:"persistence"`
	Amplitude   float64 `yaml:"amplitude"`
}

func (p *SimplexParams) applyDefaults() {
	if p.Octaves <= 0 {
		p.Octaves = 4
	}
	if p.Frequency <= 0 {
		p.Frequency = 0.08
	}
	if p.Persistence <= 0 {
		p.Persistence = 0.5
	}
	if p.Amplitude <= 0 {
		p.Amplitude = 1.5
	}
}

// Simplex is fractal opensimplex noise scaled into the same range as Waves.
type Simplex struct {
	elev  opensimplex.Noise
	moist opensimplex.Noise
	p     SimplexParams
}

func NewSimplex(seed int64, p SimplexParams) *Simplex {
	p.applyDefaults()
	return &Simplex{
		elev:  opensimplex.New(seed),
		moist: opensimplex.New(seed + 1),
		p:     p,
	}
}

func (s *Simplex) Elevation(x, y int) float64 {
	return s.octaves(s.elev, float64(x), float64(y)) * s.p.Amplitude
}

func (s *Simplex) Moisture(x, y int) float64 {
	return s.octaves(s.moist, float64(x), float64(y)) * s.p.Amplitude
}

func (s *Simplex) octaves(n opensimplex.Noise, x, y float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	freq := s.p.Frequency
	for i := 0; i < s.p.Octaves; i++ {
		total += n.Eval2(x*freq, y*freq) * amplitude
		maxVal += amplitude
		amplitude *= s.p.Persistence
		freq *= 2
	}
	return total / maxVal
}

type Tile struct{ X, Y int }

// Pinned overrides individual tiles of a base field (Waves when nil).
type Pinned struct {
	Base  Field
	Elev  map[Tile]float64
	Moist map[Tile]float64
}

func (p Pinned) Elevation(x, y int) float64 {
	if v, ok := p.Elev[Tile{X: x, Y: y}]; ok {
		return v
	}
	return p.base().Elevation(x, y)
}

func (p Pinned) Moisture(x, y int) float64 {
	if v, ok := p.Moist[Tile{X: x, Y: y}]; ok {
		return v
	}
	return p.base().Moisture(x, y)
}

func (p Pinned) base() Field {
	if p.Base == nil {
		return Waves{}
	}
	return p.Base
}

func New(kind string, seed int64, p SimplexParams) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindWaves:
		return Waves{}, nil
	case KindSimplex:
		return NewSimplex(seed, p), nil
	default:
		return nil, fmt.Errorf("unknown noise kind %q", kind)
	}
}
