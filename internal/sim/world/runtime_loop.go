package world

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tilecraft.ai/internal/protocol"
	"tilecraft.ai/internal/sim/world/feature/work/interact"
	"tilecraft.ai/internal/sim/world/logic/mathx"
	"tilecraft.ai/internal/sim/world/terrain/grid"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	steer := time.NewTicker(w.cfg.CreatureInterval)
	defer steer.Stop()

	w.log.Info("world loop started",
		zap.Int("tick_rate_hz", w.cfg.TickRateHz),
		zap.Int("creatures", w.roster.Len()),
		zap.Int("entities", len(w.grid.Entities())),
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			req.Resp <- w.handleJoin(req)
		case id := <-w.leave:
			w.handleLeave(id)
		case in := <-w.inbox:
			w.handleInput(ctx, in)
		case done := <-w.saveDone:
			w.finishSave(done)
		case <-ticker.C:
			w.StepTick()
		case <-steer.C:
			w.StepCreatures()
		}
	}
}

func (w *World) Stop() { close(w.stop) }

func (w *World) handleInput(ctx context.Context, in Input) {
	if w.session == nil || w.session.id != in.SessionID {
		return
	}
	switch m := in.Msg.(type) {
	case protocol.PointerMsg:
		w.StepPointer(in.SessionID, m)
	case protocol.MoveMsg:
		w.StepMove(m)
	case protocol.SelectMsg:
		w.StepSelect(m)
	case protocol.SaveMsg:
		w.RequestSave(ctx, in.SessionID)
	default:
		w.notice(protocol.ErrProtoBadRequest, "", fmt.Sprintf("unsupported input %T", in.Msg))
	}
}

func parseButton(s string) (interact.Button, bool) {
	switch s {
	case "primary":
		return interact.Primary, true
	case "secondary":
		return interact.Secondary, true
	}
	return 0, false
}

// StepPointer applies one pointer event on behalf of a session. Rejections are reported
// to the session as a NOTICE and change nothing.
func (w *World) StepPointer(sessionID string, m protocol.PointerMsg) interact.Outcome {
	b, ok := parseButton(m.Button)
	if !ok {
		w.notice(protocol.ErrBadRequest, "", "unknown button "+m.Button)
		return interact.Outcome{Err: interact.ErrUnknownButton}
	}
	w.actor = sessionID
	defer func() { w.actor = "" }()

	out := w.ctrl.Handle(interact.Pointer{Button: b, Point: mathx.Vec2{X: m.X, Y: m.Y}}, w.player, w.selected)
	if !out.Applied {
		reason := string(out.Reason())
		w.notice(protocol.CodeForReason(reason), reason, out.Err.Error())
		w.log.Debug("interaction rejected",
			zap.String("button", b.String()),
			zap.Int("x", out.Tile.X), zap.Int("y", out.Tile.Y),
			zap.String("reason", reason),
		)
	}
	return out
}

// StepMove records the player position reported by the client's physics, clamped to the map.
func (w *World) StepMove(m protocol.MoveMsg) {
	b := w.grid.Bounds()
	w.player = mathx.Vec2{X: mathx.Clamp(m.X, 0, b.X), Y: mathx.Clamp(m.Y, 0, b.Y)}
}

// StepSelect cycles the build selection, or picks the named palette entry.
func (w *World) StepSelect(m protocol.SelectMsg) {
	if m.Kind == "" {
		w.selected = w.ctrl.NextBuildable(w.selected)
	} else {
		k, ok := grid.ParseEntityKind(m.Kind)
		if !ok || !w.inPalette(k) {
			w.notice(protocol.ErrBadRequest, "", "not in build palette: "+m.Kind)
			return
		}
		w.selected = k
	}
	w.sendJSON(protocol.StatusMsg{
		Type:            protocol.TypeStatus,
		ProtocolVersion: protocol.Version,
		Selected:        w.selected.String(),
		Inventory:       inventoryMsg(w.ledger.Snapshot()),
	})
}

func (w *World) inPalette(k grid.EntityKind) bool {
	for _, p := range w.ctrl.Policy().Palette {
		if p == k {
			return true
		}
	}
	return false
}

// StepTick advances the world clock and moves creatures by one tick.
func (w *World) StepTick() {
	w.tick.Add(1)
	dt := 1 / float64(w.cfg.TickRateHz)
	w.roster.Integrate(dt, w.grid.Bounds())
}

// StepCreatures re-steers every live creature and pushes the result to the renderer.
func (w *World) StepCreatures() int {
	n := w.steer.Tick(w.roster, w.roster.IDs(), w.rng)
	if n > 0 {
		w.sendJSON(w.creaturesMsg())
	}
	return n
}

func (w *World) creaturesMsg() protocol.CreaturesMsg {
	alive := w.roster.Alive()
	msg := protocol.CreaturesMsg{
		Type:            protocol.TypeCreatures,
		ProtocolVersion: protocol.Version,
		Tick:            w.tick.Load(),
		Creatures:       make([]protocol.CreatureObs, 0, len(alive)),
	}
	for _, c := range alive {
		msg.Creatures = append(msg.Creatures, protocol.CreatureObs{
			ID:  uint64(c.ID),
			Pos: protocol.Point{X: c.Pos.X, Y: c.Pos.Y},
			Vel: protocol.Point{X: c.Vel.X, Y: c.Vel.Y},
		})
	}
	return msg
}

func (w *World) notice(code, reason, message string) {
	w.sendJSON(protocol.NoticeMsg{
		Type:            protocol.TypeNotice,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Reason:          reason,
		Message:         message,
	})
}

func (w *World) sendJSON(v any) {
	if w.session == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		w.log.Error("marshal outbound message", zap.Error(err))
		return
	}
	if !sendLatest(w.session.out, b) {
		w.log.Warn("session outbox full, dropped oldest message", zap.String("session", w.session.id))
	}
}

// sendLatest never blocks the loop. When the outbox is full it drops the oldest message
// and reports false.
func sendLatest(ch chan []byte, b []byte) bool {
	select {
	case ch <- b:
		return true
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
	return false
}
