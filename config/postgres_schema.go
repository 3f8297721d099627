package config

import (
	"errors"

	"github.com/balasin/balasin/internal/models"
)

// EnsurePostgresSchema migrates the relational tables and installs the
// partial unique index that keeps at most one active conversation per
// (merchant, customer) pair under concurrent webhook deliveries.
func EnsurePostgresSchema() error {
	if PostgresDB == nil {
		return errors.New("PostgresDB is nil; call InitPostgres() first")
	}

	if err := PostgresDB.AutoMigrate(
		&models.Merchant{},
		&models.Customer{},
		&models.Conversation{},
		&models.Message{},
		&models.KnowledgeChunk{},
		&models.UsageLog{},
		&models.PlatformSetting{},
	); err != nil {
		return err
	}

	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_conversation
			ON wa_conversations (merchant_id, customer_id)
			WHERE status = 'active'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_customer_phone
			ON wa_customers (merchant_id, phone_number)`,
		`CREATE INDEX IF NOT EXISTS idx_chunk_fts
			ON knowledge_chunks
			USING gin (to_tsvector('simple', content))`,
	}
	for _, stmt := range stmts {
		if err := PostgresDB.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
