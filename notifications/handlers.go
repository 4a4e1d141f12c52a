package notifications

import (
	"database/sql"
	"log"

	"github.com/gin-gonic/gin"
)

// Deliverer is the realtime side: every persisted mutation is pushed to
// the connected channels so clients update without re-polling.
type Deliverer interface {
	DeliverNotification(userID string, global bool, payload interface{})
	DeliverReadUpdate(notificationID, userID string, global bool)
	DeliverRemoved(notificationID, userID string, global bool)
}

type Handlers struct {
	Store *Store
	Hub   Deliverer
}

func (h *Handlers) HandleCreate(c *gin.Context) {
	var json struct {
		UserID    string                 `json:"userId"`
		Type      string                 `json:"type"`
		Title     string                 `json:"title"`
		Message   string                 `json:"message"`
		RelatedID string                 `json:"relatedId"`
		Global    bool                   `json:"global"`
		Metadata  map[string]interface{} `json:"metadata"`
	}

	if err := c.BindJSON(&json); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request data"})
		return
	}
	if !json.Global && json.UserID == "" {
		c.JSON(400, gin.H{"error": "Either userId or global is required"})
		return
	}

	n := &Notification{
		UserID:    json.UserID,
		Type:      json.Type,
		Title:     json.Title,
		Message:   json.Message,
		RelatedID: json.RelatedID,
		Global:    json.Global,
		Metadata:  json.Metadata,
	}
	if err := h.Store.Insert(n); err != nil {
		log.Println("Error inserting notification:", err)
		c.JSON(500, gin.H{"error": "Database error inserting notification"})
		return
	}

	h.Hub.DeliverNotification(n.UserID, n.Global, n)

	c.JSON(201, n)
}

func (h *Handlers) HandleList(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(400, gin.H{"error": "Missing userId"})
		return
	}

	list, err := h.Store.ListForUser(userID)
	if err != nil {
		log.Println("Error listing notifications:", err)
		c.JSON(500, gin.H{"error": "Database error extracting notifications"})
		return
	}
	if list == nil {
		list = []Notification{}
	}

	c.JSON(200, list)
}

func (h *Handlers) HandleMarkRead(c *gin.Context) {
	id := c.Param("id")
	readerID := c.Query("userId")
	if readerID == "" {
		c.JSON(400, gin.H{"error": "Missing userId"})
		return
	}

	n, err := h.Store.MarkRead(id, readerID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(404, gin.H{"error": "Notification not found"})
			return
		}
		log.Println("Error marking notification read:", err)
		c.JSON(500, gin.H{"error": "Database error updating notification"})
		return
	}

	// Target the record's owner, not the acting reader; the two only
	// coincide for a scoped record read by its own user.
	h.Hub.DeliverReadUpdate(n.ID, n.UserID, n.Global)

	c.JSON(200, n)
}

func (h *Handlers) HandleDelete(c *gin.Context) {
	id := c.Param("id")

	n, err := h.Store.Delete(id)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(404, gin.H{"error": "Notification not found"})
			return
		}
		log.Println("Error deleting notification:", err)
		c.JSON(500, gin.H{"error": "Database error deleting notification"})
		return
	}

	h.Hub.DeliverRemoved(n.ID, n.UserID, n.Global)

	c.Status(204)
}
