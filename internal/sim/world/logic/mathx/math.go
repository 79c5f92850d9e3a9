package mathx

import "math"

// FloorDivF snaps a world-space coordinate to the enclosing cell index.
func FloorDivF(v float64, size int) int {
	if size <= 0 {
		size = 1
	}
	return int(math.Floor(v / float64(size)))
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Vec2 is a world-space point or velocity in pixels.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2 { return Vec2{X: v.X * k, Y: v.Y * k} }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }

func Distance(a, b Vec2) float64 { return a.Sub(b).Len() }
