package postgres

import (
	"context"
	"errors"

	"github.com/balasin/balasin/internal/models"
	"github.com/balasin/balasin/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsageRepo interface {
	GetByDay(ctx context.Context, merchantID, day string) (*models.UsageLog, error)
	// IncrementDay upserts the (merchant, day) row, adding one message and the
	// given token cost.
	IncrementDay(ctx context.Context, merchantID, day string, tokens int64) error
}

type usageRepo struct {
	db *gorm.DB
}

func NewUsageRepo(db *gorm.DB) UsageRepo {
	return &usageRepo{db: db}
}

func (r *usageRepo) GetByDay(ctx context.Context, merchantID, day string) (*models.UsageLog, error) {
	var row models.UsageLog
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND log_date = ?", merchantID, day).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *usageRepo) IncrementDay(ctx context.Context, merchantID, day string, tokens int64) error {
	row := &models.UsageLog{
		ID:           uuid.NewString(),
		MerchantID:   merchantID,
		LogDate:      day,
		MessageCount: 1,
		TokenUsage:   tokens,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "merchant_id"}, {Name: "log_date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"message_count": gorm.Expr("usage_logs.message_count + 1"),
				"token_usage":   gorm.Expr("usage_logs.token_usage + ?", tokens),
			}),
		}).
		Create(row).Error
}
