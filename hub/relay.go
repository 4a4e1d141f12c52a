package hub

import "log"

// relayMessage handles one send-message event on the sender's reading
// goroutine: validate, persist, then fan out to every channel of both
// the recipient and the sender. Persisting first keeps per-pair delivery
// in store order and guarantees nothing undurable is ever delivered.
func (h *Hub) relayMessage(ch *Channel, wsMsg WSMessage) {
	data, err := decodeData[SendMessageData](wsMsg.Data)
	if err != nil {
		log.Println("Invalid send-message data:", err)
		return
	}
	if !validSendMessage(data) {
		return
	}

	msg, err := h.store.Insert(ch.Identity, data.Recipient, data.Text, data.File)
	if err != nil {
		log.Println("Error persisting message:", err)
		ch.trySend(WSMessage{Type: "error", Data: ChatError{Content: "Failed to send message"}})
		return
	}

	event := WSMessage{Type: "receive-message", Data: msg}
	targets := make(map[*Channel]struct{})
	for _, target := range h.registry.ChannelsFor(data.Recipient) {
		targets[target] = struct{}{}
	}
	// Echo to the sender's other devices so multi-device clients stay in
	// sync; the originating channel gets it too.
	for _, target := range h.registry.ChannelsFor(ch.Identity) {
		targets[target] = struct{}{}
	}
	for target := range targets {
		target.trySend(event)
	}
}

func validSendMessage(data SendMessageData) bool {
	if data.Recipient == "" {
		return false
	}
	return data.Text != "" || data.File != ""
}
