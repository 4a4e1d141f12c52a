package hub

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const sendQueueSize = 64

// Channel is one open websocket bound to a user identity for its whole
// life. It is owned by the registry from admission until eviction.
type Channel struct {
	ID        string
	Identity  string
	Conn      *websocket.Conn
	CreatedAt time.Time

	SendQueue chan WSMessage
	Done      chan struct{}

	writeWait  time.Duration
	pingPeriod time.Duration

	closeOnce sync.Once
}

func newChannel(conn *websocket.Conn, identity string, writeWait, pingPeriod time.Duration) *Channel {
	return &Channel{
		ID:         uuid.NewString(),
		Identity:   identity,
		Conn:       conn,
		CreatedAt:  time.Now().UTC(),
		SendQueue:  make(chan WSMessage, sendQueueSize),
		Done:       make(chan struct{}),
		writeWait:  writeWait,
		pingPeriod: pingPeriod,
	}
}

// WritePump is the single writer for the connection. It also carries the
// heartbeat: periodic pings whose pongs extend the read deadline set in
// the read loop.
func (c *Channel) WritePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.SendQueue:
			if !ok {
				return
			}
			c.Conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.Conn.WriteJSON(msg); err != nil {
				log.Println("WritePump error:", err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.Done:
			return
		}
	}
}

// trySend queues an event without ever blocking the caller. A full queue
// means the consumer is too slow or already dead; the event is dropped
// and the liveness ping will evict the channel soon after.
func (c *Channel) trySend(msg WSMessage) {
	select {
	case <-c.Done:
	case c.SendQueue <- msg:
	default:
		log.Printf("trySend: queue full, dropping %q event for %s", msg.Type, c.Identity)
	}
}

// Close is safe to call more than once and from any goroutine.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		close(c.Done)
		c.Conn.Close()
	})
}
