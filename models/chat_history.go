package models

import "gorm.io/datatypes"

// ChatHistory is one message in a session's conversation log. The table name
// is inherited from the n8n workflow that also writes to it. Message is
// arbitrary JSON (role, content, tool calls...) stored as jsonb; deleting the
// owning BotUser cascades to its history.
type ChatHistory struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	SessionID string         `gorm:"size:255;index;not null" json:"session_id"`
	BotUser   *BotUser       `gorm:"foreignKey:SessionID;references:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Message   datatypes.JSON `gorm:"not null" json:"message"`
}

func (ChatHistory) TableName() string { return "n8n_chat_histories" }
