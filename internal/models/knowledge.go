package models

import "time"

const ChunkReady = "ready"

// KnowledgeChunk is a retrievable unit of business text. Rows are produced by
// the document ingestion pipeline; this service only reads ready chunks.
type KnowledgeChunk struct {
	ID         string  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	MerchantID string  `gorm:"column:merchant_id;type:uuid;index" json:"merchant_id"`
	Content    string  `gorm:"column:content;type:text" json:"content"`
	FileName   string  `gorm:"column:file_name;type:text" json:"file_name"`
	ChunkIndex int     `gorm:"column:chunk_index" json:"chunk_index"`
	SectorTag  *string `gorm:"column:sector_tag;type:text;index" json:"sector_tag,omitempty"`
	Status     string  `gorm:"column:status;type:text;default:processing" json:"status"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (KnowledgeChunk) TableName() string { return "knowledge_chunks" }
