package models

// UsageLog is one row per (merchant, UTC calendar day). Both counters only
// ever increase within the day.
type UsageLog struct {
	ID           string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	MerchantID   string `gorm:"column:merchant_id;type:uuid;uniqueIndex:uniq_merchant_day" json:"merchant_id"`
	LogDate      string `gorm:"column:log_date;type:date;uniqueIndex:uniq_merchant_day" json:"log_date"`
	MessageCount int    `gorm:"column:message_count;default:0" json:"message_count"`
	TokenUsage   int64  `gorm:"column:token_usage;default:0" json:"token_usage"`
}

func (UsageLog) TableName() string { return "usage_logs" }
