package postgres

import (
	"context"
	"errors"

	"github.com/balasin/balasin/internal/models"
	"github.com/balasin/balasin/internal/utils"
	"gorm.io/gorm"
)

type CustomerRepo interface {
	FindByPhone(ctx context.Context, merchantID, phone string) (*models.Customer, error)
	Create(ctx context.Context, c *models.Customer) error
	SetName(ctx context.Context, id, name string) error
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepo {
	return &customerRepo{db: db}
}

func (r *customerRepo) FindByPhone(ctx context.Context, merchantID, phone string) (*models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND phone_number = ?", merchantID, phone).
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *customerRepo) Create(ctx context.Context, c *models.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) SetName(ctx context.Context, id, name string) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		UpdateColumn("name", name).Error
}
