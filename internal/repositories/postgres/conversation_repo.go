package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/balasin/balasin/internal/models"
	"github.com/balasin/balasin/internal/utils"
	"gorm.io/gorm"
)

type ConversationRepo interface {
	FindActive(ctx context.Context, merchantID, customerID string) (*models.Conversation, error)
	Create(ctx context.Context, c *models.Conversation) error
	Touch(ctx context.Context, id string, at time.Time) error
	SetHandledBy(ctx context.Context, id string, by models.HandledBy, at time.Time) error
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) FindActive(ctx context.Context, merchantID, customerID string) (*models.Conversation, error) {
	var c models.Conversation
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND customer_id = ? AND status = ?", merchantID, customerID, models.ConversationActive).
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *conversationRepo) Create(ctx context.Context, c *models.Conversation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *conversationRepo) Touch(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", at).Error
}

func (r *conversationRepo) SetHandledBy(ctx context.Context, id string, by models.HandledBy, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"handled_by": by,
			"updated_at": at,
		}).Error
}
