// Package web streams per-slot NodeStatus records to connected observers
// over a websocket broadcast hub, adapted from the teacher's
// internal/web.Hub (whose STATUS_UPDATE/heartbeat/client-registry shape
// generalizes directly from AllStar node/link state to TSCH node/link
// state).
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/tschsim/engine/internal/network"
)

// envelope is the WS wire protocol's outer shape.
type envelope struct {
	MessageType string `json:"messageType"`
	Data        any    `json:"data,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

// Hub manages connected websocket clients and fans out step broadcasts.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
	logger  *zap.Logger
}

// NewHub builds an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{clients: map[*websocket.Conn]struct{}{}, logger: logger}
}

// HandleWS upgrades the request and registers the client, sending it an
// immediate STEP_STATUS snapshot of the current network's last step.
// currentNet is a function rather than a fixed pointer so the handler
// keeps working across RESET, which replaces the driver's *network.Network
// outright.
func (h *Hub) HandleWS(currentNet func() *network.Network) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		h.mu.Lock()
		h.clients[c] = struct{}{}
		n := len(h.clients)
		h.mu.Unlock()
		h.logger.Info("ws client connected", zap.Int("clients", n))

		go func() {
			defer func() {
				h.mu.Lock()
				delete(h.clients, c)
				h.mu.Unlock()
				c.Close(websocket.StatusNormalClosure, "")
			}()
			for {
				if _, _, err := c.Read(context.Background()); err != nil {
					return
				}
			}
		}()

		env := envelope{MessageType: "STEP_STATUS", Data: currentNet().Statuses(), Timestamp: time.Now().UnixMilli()}
		b, _ := json.Marshal(env)
		_ = c.Write(context.Background(), websocket.MessageText, b)
	}
}

// BroadcastStep sends one STEP_STATUS frame to every connected client;
// called once per net.Step() from the driver loop.
func (h *Hub) BroadcastStep(statuses []network.NodeStatus) {
	env := envelope{MessageType: "STEP_STATUS", Data: statuses, Timestamp: time.Now().UnixMilli()}
	payload, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("marshal step status", zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		go func(conn *websocket.Conn, p []byte) {
			_ = conn.Write(context.Background(), websocket.MessageText, p)
		}(c, payload)
	}
}

// BroadcastTallyCompleted emits a TALLY_COMPLETED event with an arbitrary
// summary payload, mirroring the teacher's
// Hub.BroadcastTallyCompleted(gamification summary).
func (h *Hub) BroadcastTallyCompleted(summary any) {
	env := envelope{MessageType: "TALLY_COMPLETED", Data: summary, Timestamp: time.Now().UnixMilli()}
	payload, _ := json.Marshal(env)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		go func(conn *websocket.Conn, p []byte) {
			_ = conn.Write(context.Background(), websocket.MessageText, p)
		}(c, payload)
	}
}

// ClientCount reports how many websocket clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
