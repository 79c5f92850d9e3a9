package interact

import (
	"errors"

	"tilecraft.ai/internal/sim/world/feature/economy/inventory"
	"tilecraft.ai/internal/sim/world/logic/mathx"
	"tilecraft.ai/internal/sim/world/terrain/grid"
)

type Button uint8

const (
	Primary Button = iota + 1
	Secondary
)

func (b Button) String() string {
	switch b {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	}
	return "unknown"
}

type State string

const (
	StateIdle          State = "IDLE"
	StateResolveTarget State = "RESOLVE_TARGET"
	StateDestroy       State = "DESTROY"
	StateBuild         State = "BUILD"
)

// Pointer is a pointer-down event in world space.
type Pointer struct {
	Button Button
	Point  mathx.Vec2
}

var ErrUnknownButton = errors.New("unknown pointer button")

// Sink mirrors applied mutations into the render layer. It is never called for no-ops.
type Sink interface {
	Removed(e grid.Entity)
	Placed(e grid.Entity)
}

type nopSink struct{}

func (nopSink) Removed(grid.Entity) {}
func (nopSink) Placed(grid.Entity)  {}

type Policy struct {
	// MaxReach limits how far from the player a tile centre may be. Zero disables the gate.
	MaxReach float64
	Costs    inventory.Costs
	// Palette is the build selection cycle, in toggle order.
	Palette []grid.EntityKind
}

func DefaultPolicy() Policy {
	return Policy{
		Costs:   inventory.DefaultCosts(),
		Palette: []grid.EntityKind{grid.Wall, grid.Rock},
	}
}

type Outcome struct {
	Path    []State
	Tile    grid.Tile
	Terrain grid.Terrain
	Applied bool
	// Err is nil when Applied, otherwise the reason nothing changed.
	Err    error
	Entity grid.Entity
	Ledger inventory.Snapshot
}

// Reason returns the rejection reason of a no-op outcome.
func (o Outcome) Reason() grid.Reason {
	r, _ := grid.ReasonOf(o.Err)
	return r
}

// Controller is the only writer of the grid's occupancy and the ledger after generation.
// It is not safe for concurrent use; the world loop owns it.
type Controller struct {
	grid   *grid.Grid
	ledger *inventory.Ledger
	policy Policy
	sink   Sink
	state  State
}

func New(g *grid.Grid, l *inventory.Ledger, p Policy, sink Sink) *Controller {
	if p.Costs == nil {
		p.Costs = inventory.DefaultCosts()
	}
	if len(p.Palette) == 0 {
		p.Palette = DefaultPolicy().Palette
	}
	if sink == nil {
		sink = nopSink{}
	}
	return &Controller{grid: g, ledger: l, policy: p, sink: sink, state: StateIdle}
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Policy() Policy { return c.policy }

// Handle runs one pointer event through Idle, ResolveTarget, Destroy or Build and back to Idle.
func (c *Controller) Handle(ev Pointer, player mathx.Vec2, selected grid.EntityKind) (out Outcome) {
	out.Path = []State{StateIdle}
	defer func() {
		c.state = StateIdle
		out.Path = append(out.Path, StateIdle)
		out.Ledger = c.ledger.Snapshot()
	}()

	c.enter(&out, StateResolveTarget)
	out.Tile = c.grid.TileAt(ev.Point)
	out.Terrain = c.grid.TerrainAt(out.Tile)

	switch ev.Button {
	case Primary:
		c.enter(&out, StateDestroy)
		out.Entity, out.Err = c.destroy(out.Tile, player)
	case Secondary:
		c.enter(&out, StateBuild)
		out.Entity, out.Err = c.build(out.Tile, player, selected)
	default:
		out.Err = ErrUnknownButton
	}
	out.Applied = out.Err == nil
	return
}

func (c *Controller) enter(out *Outcome, s State) {
	c.state = s
	out.Path = append(out.Path, s)
}

func (c *Controller) inReach(t grid.Tile, player mathx.Vec2) bool {
	if c.policy.MaxReach <= 0 {
		return true
	}
	return mathx.Distance(player, c.grid.Centre(t)) <= c.policy.MaxReach
}

func (c *Controller) destroy(t grid.Tile, player mathx.Vec2) (grid.Entity, error) {
	if !c.inReach(t, player) {
		return grid.Entity{}, grid.ErrOutOfRange
	}
	e, err := c.grid.Remove(t)
	if err != nil {
		return grid.Entity{}, err
	}
	c.ledger.CreditYield(e.Yield)
	c.sink.Removed(e)
	return e, nil
}

// build is debit, place, then refund if the grid refuses.
func (c *Controller) build(t grid.Tile, player mathx.Vec2, kind grid.EntityKind) (grid.Entity, error) {
	if !c.inReach(t, player) {
		return grid.Entity{}, grid.ErrOutOfRange
	}
	price, ok := c.policy.Costs.For(kind)
	if !ok || !kind.Placeable() {
		return grid.Entity{}, grid.ErrUnbuildable
	}
	switch terrain := c.grid.TerrainAt(t); {
	case terrain == grid.Void:
		return grid.Entity{}, grid.ErrVoid
	case terrain == grid.Water:
		return grid.Entity{}, grid.ErrAquatic
	}
	if _, occupied := c.grid.OccupantAt(t); occupied {
		return grid.Entity{}, grid.ErrOccupied
	}
	if c.grid.TooClose(t, player) {
		return grid.Entity{}, grid.ErrTooClose
	}

	if err := c.ledger.Debit(price.Resource, price.Amount); err != nil {
		return grid.Entity{}, err
	}
	e, err := c.grid.Place(t, kind, player)
	if err != nil {
		c.ledger.Credit(price.Resource, price.Amount)
		return grid.Entity{}, err
	}
	c.sink.Placed(e)
	return e, nil
}

// NextBuildable returns the palette entry after current, wrapping around.
func (c *Controller) NextBuildable(current grid.EntityKind) grid.EntityKind {
	p := c.policy.Palette
	for i, k := range p {
		if k == current {
			return p[(i+1)%len(p)]
		}
	}
	return p[0]
}
