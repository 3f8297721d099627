package postgres

import (
	"context"

	"github.com/balasin/balasin/internal/models"
	"gorm.io/gorm"
)

type SettingsRepo interface {
	All(ctx context.Context) ([]models.PlatformSetting, error)
}

type settingsRepo struct {
	db *gorm.DB
}

func NewSettingsRepo(db *gorm.DB) SettingsRepo {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) All(ctx context.Context) ([]models.PlatformSetting, error) {
	var rows []models.PlatformSetting
	err := r.db.WithContext(ctx).Find(&rows).Error
	return rows, err
}
