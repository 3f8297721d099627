package models

import (
	"time"

	"gorm.io/datatypes"
)

type MessageSender string

const (
	SenderUser  MessageSender = "USER"
	SenderAI    MessageSender = "AI"
	SenderAdmin MessageSender = "ADMIN"
)

type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaDocument MediaType = "document"
	MediaAudio    MediaType = "audio"
	MediaVideo    MediaType = "video"
)

// Message is one turn in a conversation. Rows are immutable once created;
// ordering for the memory window is by created_at.
type Message struct {
	ID             string        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ConversationID string        `gorm:"column:conversation_id;type:uuid;index" json:"conversation_id"`
	Sender         MessageSender `gorm:"column:sender;type:text" json:"sender"`
	Content        string        `gorm:"column:content;type:text" json:"content"`

	MediaURL  *string    `gorm:"column:media_url;type:text" json:"media_url,omitempty"`
	MediaType *MediaType `gorm:"column:media_type;type:text" json:"media_type,omitempty"`

	// Raw transport extras (push name, mimetype, message ref).
	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (Message) TableName() string { return "wa_messages" }
