package hub

// Notification fan-out is pure targeting and push over records the REST
// layer has already persisted. A global record goes to every live
// channel; a scoped one only to the target user's channels.

func (h *Hub) notificationTargets(userID string, global bool) []*Channel {
	if global {
		return h.registry.AllChannels()
	}
	return h.registry.ChannelsFor(userID)
}

func (h *Hub) DeliverNotification(userID string, global bool, payload interface{}) {
	event := WSMessage{Type: "new-notification", Data: payload}
	for _, ch := range h.notificationTargets(userID, global) {
		ch.trySend(event)
	}
}

func (h *Hub) DeliverReadUpdate(notificationID, userID string, global bool) {
	event := WSMessage{Type: "notification-read", Data: NotificationRef{NotificationID: notificationID}}
	for _, ch := range h.notificationTargets(userID, global) {
		ch.trySend(event)
	}
}

func (h *Hub) DeliverRemoved(notificationID, userID string, global bool) {
	event := WSMessage{Type: "notification-removed", Data: NotificationRef{NotificationID: notificationID}}
	for _, ch := range h.notificationTargets(userID, global) {
		ch.trySend(event)
	}
}
