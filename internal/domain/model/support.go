package model

import "time"

const (
	SupportOpen       = "open"
	SupportInProgress = "in_progress"
	SupportResolved   = "resolved"
	SupportClosed     = "closed"

	SenderUser  = "user"
	SenderAdmin = "admin"
)

// SupportConversation is a ticket. Status accepts any of the four values in
// any order; no transition table is enforced.
type SupportConversation struct {
	Base
	UserID        *int64           `gorm:"index" json:"user_id"`
	UserName      string           `gorm:"size:120" json:"user_name"`
	Subject       string           `gorm:"size:255" json:"subject" binding:"required"`
	Status        string           `gorm:"size:20;index" json:"status" binding:"omitempty,oneof=open in_progress resolved closed"`
	AssignedTo    *int64           `json:"assigned_to"`
	Source        string           `gorm:"size:40" json:"source"`
	LastMessageAt *time.Time       `json:"last_message_at"`
	Messages      []SupportMessage `gorm:"foreignKey:ConversationID" json:"messages"`
}

func (SupportConversation) TableName() string { return "support_conversations" }

type SupportMessage struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	ConversationID int64     `gorm:"index" json:"conversation_id"`
	Body           string    `json:"body" binding:"required"`
	SenderType     string    `gorm:"size:20" json:"sender_type"`
	SenderID       *int64    `json:"sender_id"`
	Source         *string   `gorm:"size:40" json:"source"`
	SentAt         time.Time `json:"sent_at"`
}

func (SupportMessage) TableName() string { return "support_messages" }
