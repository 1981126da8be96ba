// server/internal/socket/hub.go
package socket

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub tracks the WebSocket connections of logged-in users. A user may hold
// several connections (multiple tabs/devices), keyed by a per-connection id.
type Hub struct {
	log *zap.Logger

	mu      sync.RWMutex
	clients map[string]map[string]*websocket.Conn
}

// NewHub creates an empty Hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[string]map[string]*websocket.Conn),
	}
}

// Register adds a connection for a user.
func (h *Hub) Register(userID, connID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[string]*websocket.Conn)
	}
	h.clients[userID][connID] = conn
	h.log.Info("websocket client registered", zap.String("user", userID), zap.String("conn", connID))
}

// Unregister removes a connection.
func (h *Hub) Unregister(userID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[userID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
		h.log.Info("websocket client unregistered", zap.String("user", userID), zap.String("conn", connID))
	}
}

// Send pushes a message to every connection of a user. An offline user is not
// an error; per-connection write failures are logged and skipped.
func (h *Hub) Send(userID string, message []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.clients[userID]
	if !ok {
		return nil
	}

	for connID, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.log.Warn("websocket write failed",
				zap.String("user", userID), zap.String("conn", connID), zap.Error(err))
		}
	}
	return nil
}
