package main

import (
	"encoding/json"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tilecraft.ai/internal/config"
	"tilecraft.ai/internal/logging"
	"tilecraft.ai/internal/protocol"
)

// view is the bot's copy of the tile stream, updated from MUTATION messages.
type view struct {
	mu        sync.Mutex
	welcome   protocol.WelcomeMsg
	occupants map[protocol.TileRef]string
	pos       protocol.Point
	inv       protocol.Inventory
}

func (v *view) apply(msg []byte, log *zap.Logger) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	switch base.Type {
	case protocol.TypeWelcome:
		if json.Unmarshal(msg, &v.welcome) == nil {
			v.pos = v.welcome.Spawn
			v.inv = v.welcome.Inventory
			log.Info("welcome",
				zap.String("session", v.welcome.SessionID),
				zap.Int("width", v.welcome.WorldParams.Width),
				zap.Int("height", v.welcome.WorldParams.Height),
			)
		}
	case protocol.TypeTiles:
		var m protocol.TilesMsg
		if json.Unmarshal(msg, &m) != nil {
			return
		}
		for _, t := range m.Tiles {
			if t.Occupant != "" {
				v.occupants[protocol.TileRef{X: t.X, Y: t.Y}] = t.Occupant
			}
		}
	case protocol.TypeMutation:
		var m protocol.MutationMsg
		if json.Unmarshal(msg, &m) != nil {
			return
		}
		if m.Op == protocol.OpRemoved {
			delete(v.occupants, m.Tile)
		} else {
			v.occupants[m.Tile] = m.Kind
		}
		v.inv = m.Inventory
		log.Info("mutation", zap.String("op", m.Op), zap.String("kind", m.Kind),
			zap.Int("x", m.Tile.X), zap.Int("y", m.Tile.Y), zap.Uint("wood", m.Inventory.Wood))
	case protocol.TypeNotice:
		var m protocol.NoticeMsg
		if json.Unmarshal(msg, &m) == nil {
			log.Info("notice", zap.String("code", m.Code), zap.String("reason", m.Reason))
		}
	case protocol.TypeStatus:
		var m protocol.StatusMsg
		if json.Unmarshal(msg, &m) == nil {
			log.Info("status", zap.String("save", m.Save), zap.String("message", m.Message), zap.String("selected", m.Selected))
		}
	}
}

// next picks one action: walk, harvest a nearby occupant, build on a free tile,
// toggle the selection or save.
func (v *view) next(r *rand.Rand) any {
	v.mu.Lock()
	defer v.mu.Unlock()
	wp := v.welcome.WorldParams
	if wp.TileSize == 0 {
		return nil
	}
	ts := float64(wp.TileSize)
	here := protocol.TileRef{X: int(v.pos.X / ts), Y: int(v.pos.Y / ts)}
	target := protocol.TileRef{X: here.X + r.Intn(5) - 2, Y: here.Y + r.Intn(5) - 2}
	centre := func(t protocol.TileRef) (float64, float64) {
		return (float64(t.X) + 0.5) * ts, (float64(t.Y) + 0.5) * ts
	}

	switch roll := r.Intn(20); {
	case roll < 8:
		x, y := centre(target)
		v.pos = protocol.Point{X: x, Y: y}
		return protocol.MoveMsg{Type: protocol.TypeMove, ProtocolVersion: protocol.Version, X: x, Y: y}
	case roll < 14:
		button := "secondary"
		if kind, occupied := v.occupants[target]; occupied && kind != "WATER_BLOCK" {
			button = "primary"
		}
		x, y := centre(target)
		return protocol.PointerMsg{Type: protocol.TypePointer, ProtocolVersion: protocol.Version, Button: button, X: x, Y: y}
	case roll < 18:
		return protocol.SelectMsg{Type: protocol.TypeSelect, ProtocolVersion: protocol.Version}
	default:
		return protocol.SaveMsg{Type: protocol.TypeSave, ProtocolVersion: protocol.Version}
	}
}

func main() {
	var (
		url   = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name  = flag.String("name", "bot", "player name")
		every = flag.Duration("every", 500*time.Millisecond, "delay between actions")
		level = flag.String("log_level", "info", "log level")
	)
	flag.Parse()

	logger, err := logging.New(config.LoggingConfig{Level: *level, Format: "console"})
	if err != nil {
		panic(err)
	}
	logger = logger.Named("bot")
	defer func() { _ = logger.Sync() }()

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatal("dial", zap.Error(err))
	}
	defer conn.Close()

	hello := protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, PlayerName: *name}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatal("send HELLO", zap.Error(err))
	}

	v := &view{occupants: map[protocol.TileRef]string{}}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				logger.Info("connection closed", zap.Error(err))
				return
			}
			v.apply(msg, logger)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	ticker := time.NewTicker(*every)
	defer ticker.Stop()
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		select {
		case <-stop:
			return
		case <-done:
			return
		case <-ticker.C:
			if act := v.next(r); act != nil {
				if err := conn.WriteJSON(act); err != nil {
					logger.Warn("send", zap.Error(err))
					return
				}
			}
		}
	}
}
