package models

import "time"

type HandledBy string

const (
	HandledByAI    HandledBy = "AI"
	HandledByHuman HandledBy = "HUMAN"
)

type ConversationStatus string

const (
	ConversationActive ConversationStatus = "active"
	ConversationClosed ConversationStatus = "closed"
)

// Conversation is the single active thread between a merchant and a customer.
// A partial unique index on (merchant_id, customer_id) WHERE status='active'
// keeps it single (see config.EnsurePostgresSchema).
type Conversation struct {
	ID         string             `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	MerchantID string             `gorm:"column:merchant_id;type:uuid;index" json:"merchant_id"`
	CustomerID string             `gorm:"column:customer_id;type:uuid;index" json:"customer_id"`
	Status     ConversationStatus `gorm:"column:status;type:text;default:active" json:"status"`
	HandledBy  HandledBy          `gorm:"column:handled_by;type:text;default:AI" json:"handled_by"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Conversation) TableName() string { return "wa_conversations" }
