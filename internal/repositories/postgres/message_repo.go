package postgres

import (
	"context"

	"github.com/balasin/balasin/internal/models"
	"gorm.io/gorm"
)

type MessageRepo interface {
	Insert(ctx context.Context, m *models.Message) error
	// LatestN returns up to n messages, newest first.
	LatestN(ctx context.Context, conversationID string, n int) ([]models.Message, error)
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepo{db: db}
}

func (r *messageRepo) Insert(ctx context.Context, m *models.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *messageRepo) LatestN(ctx context.Context, conversationID string, n int) ([]models.Message, error) {
	if n <= 0 {
		n = 10
	}
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(n).
		Find(&rows).Error
	return rows, err
}
