package world

import (
	"go.uber.org/zap"

	"tilecraft.ai/internal/protocol"
)

func (w *World) handleJoin(req JoinRequest) JoinResponse {
	if w.session != nil && w.session.id != req.SessionID {
		w.log.Info("join refused, world already has a player",
			zap.String("session", req.SessionID),
			zap.String("active", w.session.id),
		)
		return JoinResponse{Code: protocol.ErrWorldBusy}
	}
	name := req.Name
	if name == "" {
		name = "player"
	}
	w.session = &session{id: req.SessionID, name: name, out: req.Out}
	w.log.Info("player joined", zap.String("session", req.SessionID), zap.String("name", name))

	rows := make([]protocol.TilesMsg, 0, w.grid.Height())
	for y := 0; y < w.grid.Height(); y++ {
		rows = append(rows, w.tilesMsg(y))
	}
	return JoinResponse{
		Welcome:   w.welcomeMsg(req.SessionID),
		Tiles:     rows,
		Creatures: w.creaturesMsg(),
	}
}

func (w *World) handleLeave(sessionID string) {
	if w.session == nil || w.session.id != sessionID {
		return
	}
	w.log.Info("player left", zap.String("session", sessionID))
	w.session = nil
}

func (w *World) welcomeMsg(sessionID string) protocol.WelcomeMsg {
	policy := w.ctrl.Policy()
	costs := make(map[string]protocol.Cost, len(policy.Costs))
	for k, p := range policy.Costs {
		costs[k.String()] = protocol.Cost{Resource: p.Resource.String(), Amount: p.Amount}
	}
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sessionID,
		WorldID:         w.cfg.ID,
		WorldParams: protocol.WorldParams{
			Width:      w.grid.Width(),
			Height:     w.grid.Height(),
			TileSize:   w.grid.TileSize(),
			TickRateHz: w.cfg.TickRateHz,
			Seed:       w.cfg.Seed,
			Clearance:  w.grid.Clearance(),
			MaxReach:   policy.MaxReach,
		},
		Spawn:     protocol.Point{X: w.player.X, Y: w.player.Y},
		Inventory: inventoryMsg(w.ledger.Snapshot()),
		Selected:  w.selected.String(),
		Palette:   w.PaletteNames(),
		Costs:     costs,
	}
}

func (w *World) tilesMsg(y int) protocol.TilesMsg {
	row := w.grid.Row(y)
	msg := protocol.TilesMsg{
		Type:            protocol.TypeTiles,
		ProtocolVersion: protocol.Version,
		Row:             y,
		Tiles:           make([]protocol.TileObs, 0, len(row)),
	}
	for _, t := range row {
		obs := protocol.TileObs{X: t.Tile.X, Y: t.Tile.Y, Terrain: t.Terrain.String()}
		if t.EntityID != 0 {
			obs.Occupant = t.Occupant.String()
			obs.EntityID = uint64(t.EntityID)
		}
		msg.Tiles = append(msg.Tiles, obs)
	}
	return msg
}

// PaletteNames lists the build palette in toggle order.
func (w *World) PaletteNames() []string {
	out := make([]string, 0, len(w.ctrl.Policy().Palette))
	for _, k := range w.ctrl.Policy().Palette {
		out = append(out, k.String())
	}
	return out
}
