package handlers

import (
	"github.com/courease/courease-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler upgrades the connection and hands it to the chat hub.
// Identity comes from the auth middleware, not from the client.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		userName := c.GetString("userName")
		userRole := c.GetString("userRole")

		services.HandleWebSocket(hub, c.Writer, c.Request, userID, userName, userRole)
	}
}
