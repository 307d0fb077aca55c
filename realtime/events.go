package realtime

import "encoding/json"

// Outbound events
const (
	EventOnlineUsers     = "getOnlineUsers"
	EventNewMessage      = "newMessage"
	EventUserTyping      = "userTyping"
	EventNewNotification = "newNotification"
	EventMessageSent     = "messageSent"
	EventError           = "error"
)

// Inbound events
const (
	EventTyping      = "typing"
	EventSendMessage = "sendMessage"
)

// Message is the JSON frame exchanged over a connection.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func encode(event string, data interface{}) ([]byte, error) {
	return json.Marshal(Message{Event: event, Data: data})
}
