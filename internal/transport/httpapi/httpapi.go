package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"tilecraft.ai/internal/logging"
	"tilecraft.ai/internal/protocol"
	"tilecraft.ai/internal/sim/world"
	"tilecraft.ai/internal/sim/world/feature/economy/inventory"
)

const SavePath = "/api/save"

// maxBody caps request bodies; a save is two counters.
const maxBody = 4 << 10

type SaveHandler struct {
	saver world.Saver
	log   *zap.Logger
}

func NewSaveHandler(saver world.Saver, logger *zap.Logger) *SaveHandler {
	return &SaveHandler{saver: saver, log: logging.OrNop(logger)}
}

func (h *SaveHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.Header().Set("Allow", http.MethodPost)
		writeJSON(rw, http.StatusMethodNotAllowed, protocol.SaveResponse{Message: "method not allowed"})
		return
	}
	var req protocol.SaveRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
		writeJSON(rw, http.StatusBadRequest, protocol.SaveResponse{Message: "bad json: " + err.Error()})
		return
	}
	res, err := h.saver.Save(r.Context(), inventory.Snapshot{Wood: req.Wood, Stone: req.Stone})
	if err != nil {
		h.log.Warn("save request failed", zap.Error(err), zap.String("remote", r.RemoteAddr))
		writeJSON(rw, http.StatusInternalServerError, protocol.SaveResponse{Message: err.Error()})
		return
	}
	writeJSON(rw, http.StatusOK, protocol.SaveResponse{Success: true, Message: res.Message, SaveID: res.ID})
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

// Client posts saves to a remote endpoint. It implements world.Saver.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		url:        strings.TrimRight(baseURL, "/") + SavePath,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Save(ctx context.Context, snap inventory.Snapshot) (world.SaveResult, error) {
	body, err := json.Marshal(protocol.SaveRequest{Wood: snap.Wood, Stone: snap.Stone})
	if err != nil {
		return world.SaveResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return world.SaveResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return world.SaveResult{}, err
	}
	defer resp.Body.Close()

	var out protocol.SaveResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&out); err != nil {
		return world.SaveResult{}, fmt.Errorf("save endpoint %s: decode: %w", resp.Status, err)
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		return world.SaveResult{}, fmt.Errorf("save endpoint %s: %s", resp.Status, out.Message)
	}
	return world.SaveResult{ID: out.SaveID, Message: out.Message}, nil
}
