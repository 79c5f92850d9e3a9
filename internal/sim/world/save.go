package world

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tilecraft.ai/internal/protocol"
)

// RequestSave snapshots the ledger and ships it off-loop. The loop never waits for the
// result and a failed save never touches the ledger.
func (w *World) RequestSave(ctx context.Context, sessionID string) {
	if w.saver == nil {
		w.sendStatus(protocol.SaveFailed, 0, "saving is disabled")
		return
	}
	if ok, cooldown := w.saveLimit.Allow(w.tick.Load()); !ok {
		w.notice(protocol.ErrRateLimited, "", fmt.Sprintf("too many saves, retry in %d ticks", cooldown))
		return
	}
	snap := w.ledger.Snapshot()
	w.savesInFlight++
	w.sendStatus(protocol.SavePending, 0, "saving...")

	saver, timeout := w.saver, w.cfg.SaveTimeout
	go func() {
		sctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		res, err := saver.Save(sctx, snap)
		select {
		case w.saveDone <- saveDone{session: sessionID, res: res, err: err}:
		case <-w.stop:
		case <-ctx.Done():
		}
	}()
}

func (w *World) finishSave(d saveDone) {
	if w.savesInFlight > 0 {
		w.savesInFlight--
	}
	if d.err != nil {
		w.log.Warn("save failed", zap.String("session", d.session), zap.Error(d.err))
		w.sendStatus(protocol.SaveFailed, 0, "Save failed: "+d.err.Error())
		return
	}
	w.log.Info("save stored", zap.String("session", d.session), zap.Int64("save_id", d.res.ID))
	w.sendStatus(protocol.SaveOK, d.res.ID, d.res.Message)
}

func (w *World) sendStatus(state string, id int64, message string) {
	w.sendJSON(protocol.StatusMsg{
		Type:            protocol.TypeStatus,
		ProtocolVersion: protocol.Version,
		Save:            state,
		SaveID:          id,
		Message:         message,
		Selected:        w.selected.String(),
		Inventory:       inventoryMsg(w.ledger.Snapshot()),
	})
}

// SavesInFlight reports how many saves have been requested but not yet answered.
func (w *World) SavesInFlight() int { return w.savesInFlight }
