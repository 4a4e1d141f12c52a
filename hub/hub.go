package hub

import (
	"net/url"
	"strings"
	"time"

	"aluminet/messages"
)

const (
	defaultWriteWait = 10 * time.Second
	defaultPongWait  = 60 * time.Second
)

// MessageStore is the durable side of the relay. Persistence always
// precedes fan-out, so nothing is ever delivered that is not on disk.
type MessageStore interface {
	Insert(sender, recipient, text, fileRef string) (*messages.Message, error)
}

// Authenticator turns a connection-time credential into a user identity
// or refuses the handshake.
type Authenticator func(token string) (string, error)

type Hub struct {
	registry *Registry
	store    MessageStore
	auth     Authenticator

	allowedOrigins map[string]struct{}

	// Overridable for tests; fixed before serving.
	WriteWait time.Duration
	PongWait  time.Duration
}

func New(store MessageStore, auth Authenticator) *Hub {
	return &Hub{
		registry:  NewRegistry(),
		store:     store,
		auth:      auth,
		WriteWait: defaultWriteWait,
		PongWait:  defaultPongWait,
	}
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

func (h *Hub) pingPeriod() time.Duration {
	return h.PongWait * 9 / 10
}

// SetAllowedOrigins restricts the websocket handshake to the given
// browser origins. With no list configured every origin is accepted.
func (h *Hub) SetAllowedOrigins(origins []string) {
	next := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		normalized := normalizeOrigin(origin)
		if normalized == "" {
			continue
		}
		next[normalized] = struct{}{}
	}
	h.allowedOrigins = next
}

func (h *Hub) isOriginAllowed(origin string) bool {
	if len(h.allowedOrigins) == 0 {
		return true
	}
	normalized := normalizeOrigin(origin)
	if normalized == "" {
		return false
	}
	_, ok := h.allowedOrigins[normalized]
	return ok
}

func normalizeOrigin(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

func ParseAllowedOriginsFromEnv(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		out = append(out, origin)
	}
	return out
}

// broadcastPresence pushes the full online set to every live channel. A
// client that misses one snapshot is corrected by the next.
func (h *Hub) broadcastPresence() {
	snapshot := WSMessage{Type: "online-users", Data: h.registry.AllIdentities()}
	for _, ch := range h.registry.AllChannels() {
		ch.trySend(snapshot)
	}
}
