package hub

import "encoding/json"

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type SendMessageData struct {
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
	File      string `json:"file"`
}

type JoinNotificationRoom struct {
	UserID string `json:"userId"`
}

type NotificationRef struct {
	NotificationID string `json:"notificationId"`
}

type ChatError struct {
	Content string `json:"message"`
}

// decodeData decodes WSMessage.Data into a typed struct.
func decodeData[T any](raw interface{}) (T, error) {
	var data T
	bytes, err := json.Marshal(raw)
	if err != nil {
		return data, err
	}
	err = json.Unmarshal(bytes, &data)
	return data, err
}
