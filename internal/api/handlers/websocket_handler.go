// server/internal/api/handlers/websocket_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"food-rescue-api-server/internal/auth"
	"food-rescue-api-server/internal/socket"
)

// Maximum wait for a message (including pings) from the client.
const pongWait = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub *socket.Hub
	Log *zap.Logger
}

// ServeWs authenticates via the token query parameter (browsers cannot set
// headers on websocket dials) and keeps the connection registered in the hub
// until the read loop ends.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}

	claims, err := auth.ParseJWT(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn("websocket upgrade failed", zap.String("user", userID), zap.Error(err))
		return
	}

	connID := uuid.New().String()
	h.Hub.Register(userID, connID, conn)
	defer func() {
		h.Hub.Unregister(userID, connID)
		conn.Close()
	}()

	// Client pings extend the read deadline; gorilla answers with pongs.
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Log.Warn("websocket closed unexpectedly", zap.String("user", userID), zap.Error(err))
			}
			break
		}
	}
}
