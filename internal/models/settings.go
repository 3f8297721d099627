package models

// PlatformSetting is a loosely-typed key-value row edited from the dashboard.
// Values may arrive JSON-quoted; parsing lives in services.SettingsService.
type PlatformSetting struct {
	Key   string `gorm:"column:key;type:text;primaryKey" json:"key"`
	Value string `gorm:"column:value;type:text" json:"value"`
}

func (PlatformSetting) TableName() string { return "platform_settings" }

// AISettings is the immutable per-request snapshot of the platform AI
// configuration, with defaults applied for missing keys.
type AISettings struct {
	SystemPrompt string  `json:"system_prompt"`
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
	DelayMinMs   int     `json:"delay_min_ms"`
	DelayMaxMs   int     `json:"delay_max_ms"`
}
