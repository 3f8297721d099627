package postgres

import (
	"context"
	"errors"

	"github.com/balasin/balasin/internal/models"
	"github.com/balasin/balasin/internal/utils"
	"gorm.io/gorm"
)

type MerchantRepo interface {
	GetByID(ctx context.Context, id string) (*models.Merchant, error)
	// ConsumeQuota decrements quota_remaining by one, never below zero.
	ConsumeQuota(ctx context.Context, id string) error
}

type merchantRepo struct {
	db *gorm.DB
}

func NewMerchantRepo(db *gorm.DB) MerchantRepo {
	return &merchantRepo{db: db}
}

func (r *merchantRepo) GetByID(ctx context.Context, id string) (*models.Merchant, error) {
	var m models.Merchant
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &m, err
}

func (r *merchantRepo) ConsumeQuota(ctx context.Context, id string) error {
	// Guarded update keeps the counter floored at 0; zero rows affected is
	// fine (quota is a display signal, not a gate).
	return r.db.WithContext(ctx).
		Model(&models.Merchant{}).
		Where("id = ? AND quota_remaining > 0", id).
		UpdateColumn("quota_remaining", gorm.Expr("quota_remaining - 1")).Error
}
