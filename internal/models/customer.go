package models

import "time"

// Customer is a WhatsApp contact scoped to one merchant. Created lazily on
// the first inbound message; Name is backfilled from the push name once known.
type Customer struct {
	ID          string  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	MerchantID  string  `gorm:"column:merchant_id;type:uuid;index" json:"merchant_id"`
	PhoneNumber string  `gorm:"column:phone_number;type:text" json:"phone_number"`
	Name        *string `gorm:"column:name;type:text" json:"name,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Customer) TableName() string { return "wa_customers" }
