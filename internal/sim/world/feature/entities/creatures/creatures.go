package creatures

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"tilecraft.ai/internal/sim/world/logic/mathx"
)

type ID uint64

type Creature struct {
	ID    ID         `json:"id"`
	Pos   mathx.Vec2 `json:"pos"`
	Vel   mathx.Vec2 `json:"vel"`
	Alive bool       `json:"alive"`
}

// Roster tracks mobile creatures by id. They move, so they never occupy grid tiles.
type Roster struct {
	byID map[ID]*Creature
	next uint64
}

func NewRoster() *Roster {
	return &Roster{byID: map[ID]*Creature{}}
}

func (r *Roster) Spawn(pos mathx.Vec2) Creature {
	r.next++
	c := &Creature{ID: ID(r.next), Pos: pos, Alive: true}
	r.byID[c.ID] = c
	return *c
}

func (r *Roster) Get(id ID) (Creature, bool) {
	c, ok := r.byID[id]
	if !ok {
		return Creature{}, false
	}
	return *c, true
}

// Kill drops a creature from the roster. Unknown ids are ignored.
func (r *Roster) Kill(id ID) bool {
	c, ok := r.byID[id]
	if !ok {
		return false
	}
	c.Alive = false
	delete(r.byID, id)
	return true
}

func (r *Roster) Len() int { return len(r.byID) }

func (r *Roster) IDs() []ID {
	out := make([]ID, 0, len(r.byID))
	for id := range r.byID {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Roster) Alive() []Creature {
	out := make([]Creature, 0, len(r.byID))
	for _, id := range r.IDs() {
		if c := r.byID[id]; c.Alive {
			out = append(out, *c)
		}
	}
	return out
}

// SetPos records a position reported by the physics layer.
func (r *Roster) SetPos(id ID, pos mathx.Vec2) bool {
	c, ok := r.byID[id]
	if !ok || !c.Alive {
		return false
	}
	c.Pos = pos
	return true
}

// Integrate advances creatures by dt seconds and keeps them inside bounds. It stands in
// for the physics layer when the server runs headless; a creature that hits an edge
// stops along that axis until its next steering tick.
func (r *Roster) Integrate(dt float64, bounds mathx.Vec2) {
	if dt <= 0 {
		return
	}
	for _, c := range r.byID {
		if !c.Alive {
			continue
		}
		next := c.Pos.Add(c.Vel.Scale(dt))
		if next.X < 0 || next.X > bounds.X {
			next.X = mathx.Clamp(next.X, 0, bounds.X)
			c.Vel.X = 0
		}
		if next.Y < 0 || next.Y > bounds.Y {
			next.Y = mathx.Clamp(next.Y, 0, bounds.Y)
			c.Vel.Y = 0
		}
		c.Pos = next
	}
}

const (
	DefaultInterval = 1500 * time.Millisecond
	DefaultMaxSpeed = 60.0
)

// Agent assigns undirected random velocities. It plans nothing and owns no state.
type Agent struct {
	MaxSpeed float64
}

// Tick gives every live creature in ids a fresh velocity with magnitude <= MaxSpeed.
// Ids that were removed since the caller collected them are skipped.
func (a Agent) Tick(r *Roster, ids []ID, rng *rand.Rand) int {
	maxSpeed := a.MaxSpeed
	if maxSpeed <= 0 {
		maxSpeed = DefaultMaxSpeed
	}
	n := 0
	for _, id := range ids {
		c, ok := r.byID[id]
		if !ok || !c.Alive {
			continue
		}
		angle := rng.Float64() * 2 * math.Pi
		speed := rng.Float64() * maxSpeed
		c.Vel = mathx.Vec2{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed}
		n++
	}
	return n
}
