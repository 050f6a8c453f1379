package realtime

import (
	"encoding/json"
	"time"
)

const (
	SupportChannel      = "private-admin.support"
	SupportMessageEvent = "support.message.created"
)

// Frame is what a websocket subscriber receives.
type Frame struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

type ConversationRef struct {
	ID            int64      `json:"id"`
	Status        *string    `json:"status,omitempty"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
}

type MessagePayload struct {
	ID         int64      `json:"id"`
	Body       string     `json:"body"`
	SenderType string     `json:"senderType"`
	Source     *string    `json:"source,omitempty"`
	SentAt     *time.Time `json:"sentAt,omitempty"`
}

// SupportMessage is the payload of support.message.created.
type SupportMessage struct {
	Conversation ConversationRef `json:"conversation"`
	Message      MessagePayload  `json:"message"`
}

// NewFrame encodes data into a frame for channel/event.
func NewFrame(channel, event string, data any) (Frame, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Channel: channel, Event: event, Data: b}, nil
}
