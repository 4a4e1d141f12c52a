package routes

import (
	"aluminet/auth"
	"aluminet/messages"
	"aluminet/notifications"

	"github.com/gin-gonic/gin"
)

func SetupAPIRoutes(r *gin.Engine, authHandlers *auth.Handlers, messageHandlers *messages.Handlers, notificationHandlers *notifications.Handlers) {
	api := r.Group("/api")
	{
		api.POST("/register", authHandlers.HandleRegister)
		api.POST("/login", authHandlers.HandleLogin)

		api.POST("/notifications", auth.AuthMiddleware(), notificationHandlers.HandleCreate)
		api.GET("/notifications", auth.AuthMiddleware(), notificationHandlers.HandleList)
		api.PATCH("/notifications/:id/read", auth.AuthMiddleware(), notificationHandlers.HandleMarkRead)
		api.DELETE("/notifications/:id", auth.AuthMiddleware(), notificationHandlers.HandleDelete)
	}

	r.GET("/messages/:userId/:otherId", auth.AuthMiddleware(), messageHandlers.HandleGetConversation)
	r.PATCH("/messages/:userId/:otherId/read", auth.AuthMiddleware(), messageHandlers.HandleMarkConversationRead)
}
