package world

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"tilecraft.ai/internal/logging"
	"tilecraft.ai/internal/protocol"
	"tilecraft.ai/internal/sim/world/feature/economy/inventory"
	"tilecraft.ai/internal/sim/world/feature/entities/creatures"
	"tilecraft.ai/internal/sim/world/feature/work/interact"
	"tilecraft.ai/internal/sim/world/logic/mathx"
	"tilecraft.ai/internal/sim/world/logic/rates"
	"tilecraft.ai/internal/sim/world/terrain/gen"
	"tilecraft.ai/internal/sim/world/terrain/grid"
)

type Config struct {
	ID               string
	TickRateHz       int
	Seed             int64
	CreatureInterval time.Duration
	CreatureMaxSpeed float64
	SaveTimeout      time.Duration
	InboxSize        int

	// At most SaveMax save requests per SaveWindowTicks; zero disables the limit.
	SaveWindowTicks uint64
	SaveMax         int
}

func (c *Config) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 20
	}
	if c.CreatureInterval <= 0 {
		c.CreatureInterval = creatures.DefaultInterval
	}
	if c.CreatureMaxSpeed <= 0 {
		c.CreatureMaxSpeed = creatures.DefaultMaxSpeed
	}
	if c.SaveTimeout <= 0 {
		c.SaveTimeout = 5 * time.Second
	}
	if c.InboxSize <= 0 {
		c.InboxSize = 1024
	}
}

type JoinRequest struct {
	SessionID string
	Name      string
	Out       chan []byte
	Resp      chan JoinResponse
}

// JoinResponse carries everything a renderer needs before the first live update.
// Code is set when the join was refused.
type JoinResponse struct {
	Code      string
	Welcome   protocol.WelcomeMsg
	Tiles     []protocol.TilesMsg
	Creatures protocol.CreaturesMsg
}

// Input is one decoded client message. Msg holds a protocol.PointerMsg, MoveMsg,
// SelectMsg or SaveMsg.
type Input struct {
	SessionID string
	Msg       any
}

// Saver ships a ledger snapshot to the persistence endpoint.
type Saver interface {
	Save(ctx context.Context, snap inventory.Snapshot) (SaveResult, error)
}

type SaveResult struct {
	ID      int64
	Message string
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type AuditEntry struct {
	Time     time.Time `json:"time"`
	Tick     uint64    `json:"tick"`
	Session  string    `json:"session"`
	Op       string    `json:"op"` // REMOVED | PLACED
	Kind     string    `json:"kind"`
	Tile     [2]int    `json:"tile"`
	EntityID uint64    `json:"entity_id"`
	Wood     uint      `json:"wood"`
	Stone    uint      `json:"stone"`
}

type session struct {
	id   string
	name string
	out  chan []byte
}

type saveDone struct {
	session string
	res     SaveResult
	err     error
}

// World is a single-threaded authoritative simulation for one player.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg Config
	log *zap.Logger

	tick atomic.Uint64

	grid     *grid.Grid
	roster   *creatures.Roster
	steer    creatures.Agent
	rng      *rand.Rand
	ledger   *inventory.Ledger
	ctrl     *interact.Controller
	player   mathx.Vec2
	spawn    mathx.Vec2
	selected grid.EntityKind

	session *session
	// actor is the session whose input is being applied; read by the mutation sink.
	actor string

	inbox    chan Input
	join     chan JoinRequest
	leave    chan string
	saveDone chan saveDone
	stop     chan struct{}

	// Optional collaborators (may be nil).
	saver         Saver
	auditLogger   AuditLogger
	savesInFlight int
	saveLimit     rates.Window
}

func New(cfg Config, res gen.Result, policy interact.Policy, logger *zap.Logger) *World {
	cfg.applyDefaults()
	w := &World{
		cfg:       cfg,
		log:       logging.OrNop(logger).With(zap.String("world", cfg.ID)),
		grid:      res.Grid,
		roster:    res.Creatures,
		steer:     creatures.Agent{MaxSpeed: cfg.CreatureMaxSpeed},
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		ledger:    inventory.New(),
		player:    res.Spawn,
		spawn:     res.Spawn,
		inbox:     make(chan Input, cfg.InboxSize),
		join:      make(chan JoinRequest, 16),
		leave:     make(chan string, 16),
		saveDone:  make(chan saveDone, 16),
		stop:      make(chan struct{}),
		saveLimit: rates.Window{Ticks: cfg.SaveWindowTicks, Max: cfg.SaveMax},
	}
	if w.roster == nil {
		w.roster = creatures.NewRoster()
	}
	w.ctrl = interact.New(w.grid, w.ledger, policy, mutationSink{w: w})
	w.selected = w.ctrl.Policy().Palette[0]
	return w
}

func (w *World) SetSaver(s Saver)             { w.saver = s }
func (w *World) SetAuditLogger(l AuditLogger) { w.auditLogger = l }

func (w *World) Inbox() chan<- Input      { return w.inbox }
func (w *World) Join() chan<- JoinRequest { return w.join }
func (w *World) Leave() chan<- string     { return w.leave }

func (w *World) ID() string          { return w.cfg.ID }
func (w *World) CurrentTick() uint64 { return w.tick.Load() }

// The accessors below are for tests and tooling; call them only from the loop goroutine
// or before Run starts.

func (w *World) Grid() *grid.Grid             { return w.grid }
func (w *World) Creatures() *creatures.Roster { return w.roster }
func (w *World) Ledger() inventory.Snapshot   { return w.ledger.Snapshot() }
func (w *World) Player() mathx.Vec2           { return w.player }
func (w *World) Selected() grid.EntityKind    { return w.selected }

// mutationSink turns applied interactions into MUTATION messages and audit entries.
type mutationSink struct{ w *World }

func (s mutationSink) Removed(e grid.Entity) { s.w.emitMutation(protocol.OpRemoved, e) }
func (s mutationSink) Placed(e grid.Entity)  { s.w.emitMutation(protocol.OpPlaced, e) }

func (w *World) emitMutation(op string, e grid.Entity) {
	snap := w.ledger.Snapshot()
	tick := w.tick.Load()
	w.sendJSON(protocol.MutationMsg{
		Type:            protocol.TypeMutation,
		ProtocolVersion: protocol.Version,
		Tick:            tick,
		Op:              op,
		EntityID:        uint64(e.ID),
		Kind:            e.Kind.String(),
		Tile:            protocol.TileRef{X: e.Tile.X, Y: e.Tile.Y},
		By:              w.actor,
		Inventory:       inventoryMsg(snap),
	})
	if w.auditLogger == nil {
		return
	}
	err := w.auditLogger.WriteAudit(AuditEntry{
		Time:     time.Now().UTC(),
		Tick:     tick,
		Session:  w.actor,
		Op:       op,
		Kind:     e.Kind.String(),
		Tile:     [2]int{e.Tile.X, e.Tile.Y},
		EntityID: uint64(e.ID),
		Wood:     snap.Wood,
		Stone:    snap.Stone,
	})
	if err != nil {
		w.log.Warn("audit write failed", zap.Error(err))
	}
}

func inventoryMsg(s inventory.Snapshot) protocol.Inventory {
	return protocol.Inventory{Wood: s.Wood, Stone: s.Stone}
}
