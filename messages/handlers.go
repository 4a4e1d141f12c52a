package messages

import (
	"log"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Store *Store
}

func (h *Handlers) HandleGetConversation(c *gin.Context) {
	userID := c.Param("userId")
	otherID := c.Param("otherId")
	if userID == "" || otherID == "" {
		c.JSON(400, gin.H{"error": "Missing user id"})
		return
	}

	history, err := h.Store.Conversation(userID, otherID)
	if err != nil {
		log.Println("Error querying conversation:", err)
		c.JSON(500, gin.H{"error": "Database error extracting messages"})
		return
	}
	if history == nil {
		history = []Message{}
	}

	c.JSON(200, history)
}

func (h *Handlers) HandleMarkConversationRead(c *gin.Context) {
	userID := c.Param("userId")
	otherID := c.Param("otherId")
	if userID == "" || otherID == "" {
		c.JSON(400, gin.H{"error": "Missing user id"})
		return
	}

	if err := h.Store.MarkRead(userID, otherID); err != nil {
		log.Println("Error marking conversation read:", err)
		c.JSON(500, gin.H{"error": "Database error updating messages"})
		return
	}

	c.Status(204)
}
