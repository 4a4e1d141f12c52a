package hub

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const maxMessageSize = 256 * 1024

func handshakeToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	return c.GetHeader("Authorization")
}

// HandleSocket is the websocket endpoint. The credential is verified
// before the upgrade; a connection with no valid identity never touches
// the registry.
func (h *Hub) HandleSocket(c *gin.Context) {
	identity, err := h.auth(handshakeToken(c))
	if err != nil {
		c.JSON(401, gin.H{"error": "Auth error"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return h.isOriginAllowed(r.Header.Get("Origin"))
		},
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade failed:", err)
		return
	}

	ch := newChannel(conn, identity, h.WriteWait, h.pingPeriod())
	go ch.WritePump()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(h.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.PongWait))
		return nil
	})

	h.registry.Register(ch)
	h.broadcastPresence()

	h.readLoop(ch)
	h.evict(ch)
}

func (h *Hub) readLoop(ch *Channel) {
	for {
		_, msgBytes, err := ch.Conn.ReadMessage()
		if err != nil {
			return
		}

		var wsMsg WSMessage
		if err := json.Unmarshal(msgBytes, &wsMsg); err != nil {
			log.Println("Invalid message format:", err)
			continue
		}

		h.dispatchMessage(ch, wsMsg)
	}
}

func (h *Hub) dispatchMessage(ch *Channel, wsMsg WSMessage) {
	switch wsMsg.Type {
	case "send-message":
		h.relayMessage(ch, wsMsg)
	case "join-notification-room":
		// Delivery is already scoped by the registry identity; the join
		// only has to be acknowledged as idempotent.
		data, err := decodeData[JoinNotificationRoom](wsMsg.Data)
		if err != nil {
			log.Println("Invalid join-notification-room data:", err)
			return
		}
		if data.UserID != "" && data.UserID != ch.Identity {
			log.Printf("join-notification-room for %s ignored on channel bound to %s", data.UserID, ch.Identity)
		}
	default:
		log.Println("Unknown message type:", wsMsg.Type)
	}
}

// evict removes the channel and, if it was still registered, follows with
// exactly one presence re-broadcast. Evicting an already-absent channel
// is a no-op.
func (h *Hub) evict(ch *Channel) {
	removed := h.registry.Unregister(ch)
	ch.Close()
	if removed {
		h.broadcastPresence()
	}
}
