package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"tilecraft.ai/internal/logging"
	"tilecraft.ai/internal/protocol"
	"tilecraft.ai/internal/sim/world"
)

const (
	writeWait     = 5 * time.Second
	handshakeWait = 5 * time.Second
	readIdle      = 60 * time.Second
)

type Options struct {
	// OutboxSize bounds queued server messages per session; the world drops the oldest
	// when it is full.
	OutboxSize int
}

type Server struct {
	world *world.World
	opts  Options
	log   *zap.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, opts Options, logger *zap.Logger) *Server {
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = 256
	}
	return &Server{
		world: w,
		opts:  opts,
		log:   logging.OrNop(logger).With(zap.String("world", w.ID())),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			s.log.Debug("upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		sessionID, out := s.handshake(conn)
		if sessionID == "" {
			return
		}
		log := s.log.With(zap.String("session", sessionID))

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						log.Debug("write failed", zap.Error(err))
						cancel()
						return
					}
				}
			}
		}()

		for {
			_ = conn.SetReadDeadline(time.Now().Add(readIdle))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			in, err := protocol.DecodeInput(msg)
			if err != nil {
				queueNotice(out, protocol.ErrProtoBadRequest, err.Error())
				continue
			}
			select {
			case s.world.Inbox() <- world.Input{SessionID: sessionID, Msg: in}:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}
		cancel()
		s.world.Leave() <- sessionID
		log.Info("connection closed")
	}
}

func (s *Server) handshake(conn *websocket.Conn) (string, chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeWait))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil || hello.Type != protocol.TypeHello {
		closeWith(conn, "expected HELLO")
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return "", nil
	}

	sessionID := "S" + ulid.Make().String()
	out := make(chan []byte, s.opts.OutboxSize)
	respCh := make(chan world.JoinResponse, 1)
	s.world.Join() <- world.JoinRequest{
		SessionID: sessionID,
		Name:      hello.PlayerName,
		Out:       out,
		Resp:      respCh,
	}
	resp := <-respCh
	if resp.Code != "" {
		_ = writeJSON(conn, protocol.NoticeMsg{
			Type:            protocol.TypeNotice,
			ProtocolVersion: protocol.Version,
			Code:            resp.Code,
			Message:         "world already has a player",
		})
		closeWith(conn, resp.Code)
		return "", nil
	}

	// The world may already be queueing live updates; they follow the initial state.
	ok := writeJSON(conn, resp.Welcome) == nil
	for i := 0; ok && i < len(resp.Tiles); i++ {
		ok = writeJSON(conn, resp.Tiles[i]) == nil
	}
	if ok {
		ok = writeJSON(conn, resp.Creatures) == nil
	}
	if !ok {
		s.world.Leave() <- sessionID
		return "", nil
	}
	s.log.Info("session started", zap.String("session", sessionID), zap.String("player", hello.PlayerName))
	return sessionID, out
}

func queueNotice(out chan []byte, code, message string) {
	b, err := json.Marshal(protocol.NoticeMsg{
		Type:            protocol.TypeNotice,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	})
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
	}
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, b)
}
