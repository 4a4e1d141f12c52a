package routes

import (
	"aluminet/hub"

	"github.com/gin-gonic/gin"
)

func SetupWebSocketRoutes(r *gin.Engine, h *hub.Hub) {
	// Presence / message / notification channel endpoint
	r.GET("/ws", h.HandleSocket)
}
