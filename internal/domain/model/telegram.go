package model

import "time"

// TelegramLink ties a studio user to a Telegram chat for notifications.
type TelegramLink struct {
	Base
	UserID   *int64     `gorm:"index" json:"user_id"`
	UserName string     `gorm:"size:120" json:"user_name"`
	ChatID   string     `gorm:"size:64;uniqueIndex" json:"chat_id" binding:"required"`
	Username *string    `gorm:"size:64" json:"username"`
	IsActive bool       `json:"is_active"`
	LinkedAt *time.Time `json:"linked_at"`
}

func (TelegramLink) TableName() string { return "telegram_links" }

// TelegramSettings is a single-row table.
type TelegramSettings struct {
	Base
	BotToken           string `gorm:"size:255" json:"bot_token"`
	ChatID             string `gorm:"size:64" json:"chat_id"`
	NotifyApplications bool   `json:"notify_applications"`
	NotifySupport      bool   `json:"notify_support"`
}

func (TelegramSettings) TableName() string { return "telegram_settings" }

func DefaultTelegramSettings() TelegramSettings {
	return TelegramSettings{NotifyApplications: true, NotifySupport: true}
}
