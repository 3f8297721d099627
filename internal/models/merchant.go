package models

import "time"

type MerchantStatus string

const (
	MerchantActive   MerchantStatus = "active"
	MerchantInactive MerchantStatus = "inactive"
)

// Merchant is a business tenant. quota_remaining is a soft display counter;
// daily_message_limit is the hard gate enforced per calendar day.
type Merchant struct {
	ID                string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name              string         `gorm:"column:name;type:text" json:"name"`
	Status            MerchantStatus `gorm:"column:status;type:text;default:active" json:"status"`
	DailyMessageLimit int            `gorm:"column:daily_message_limit;default:300" json:"daily_message_limit"`
	QuotaRemaining    int            `gorm:"column:quota_remaining;default:0" json:"quota_remaining"`
	SubscriptionTier  string         `gorm:"column:subscription_tier;type:text" json:"subscription_tier"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Merchant) TableName() string { return "merchants" }
