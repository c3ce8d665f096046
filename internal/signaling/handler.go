package signaling

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"skillswap/pkg/logger"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   logger.Logger
}

func NewHandler(hub *Hub, logger logger.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Access is gated by the session cookie, not the Origin header.
				return true
			},
		},
		logger: logger,
	}
}

// VideoCall handles GET /ws/video_call/:room_name. Every frame a member
// sends is relayed verbatim to the other members of the room.
func (h *Handler) VideoCall(c *gin.Context) {
	username, exists := c.Get("username")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	roomName := c.Param("room_name")
	if roomName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing room name"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn(c.Request.Context(), "websocket upgrade failed",
			logger.Field{Key: "error", Value: err},
		)
		return
	}

	client := newClient(h.hub, conn, username.(string), VideoCallGroup(roomName), true, h.logger)
	client.run()
}

// Notifications handles GET /ws/notifications/:username. The channel is
// push-only and a user may only subscribe to their own channel.
func (h *Handler) Notifications(c *gin.Context) {
	username, exists := c.Get("username")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if c.Param("username") != username.(string) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn(c.Request.Context(), "websocket upgrade failed",
			logger.Field{Key: "error", Value: err},
		)
		return
	}

	client := newClient(h.hub, conn, username.(string), UserGroup(username.(string)), false, h.logger)
	client.run()
}
