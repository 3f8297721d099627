package services

import (
	"context"
	"errors"
	"time"

	"github.com/balasin/balasin/internal/models"
	pgrepo "github.com/balasin/balasin/internal/repositories/postgres"
	"github.com/balasin/balasin/internal/utils"
)

// UsageService enforces the per-merchant daily ceiling and keeps the usage
// and quota counters.
type UsageService interface {
	// AllowToday reports whether the merchant is still under its daily
	// message ceiling. At or above the ceiling the inbound event is dropped
	// silently.
	AllowToday(ctx context.Context, merchant *models.Merchant) (bool, error)
	// RecordReply runs after a successful completion call: today's usage row
	// is upserted (+1 message, +tokens) and the consumable quota decremented,
	// floored at zero.
	RecordReply(ctx context.Context, merchantID string, tokens int64) error
}

type usageService struct {
	usage     pgrepo.UsageRepo
	merchants pgrepo.MerchantRepo
	now       func() time.Time
}

func NewUsageService(usage pgrepo.UsageRepo, merchants pgrepo.MerchantRepo) UsageService {
	return &usageService{usage: usage, merchants: merchants, now: time.Now}
}

func usageDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func (s *usageService) AllowToday(ctx context.Context, merchant *models.Merchant) (bool, error) {
	const op = "UsageService.AllowToday"

	limit := merchant.DailyMessageLimit
	if limit <= 0 {
		limit = 300
	}

	row, err := s.usage.GetByDay(ctx, merchant.ID, usageDay(s.now()))
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return true, nil
		}
		return false, utils.E(utils.CodeInternal, op, "failed to load usage log", err)
	}
	return row.MessageCount < limit, nil
}

func (s *usageService) RecordReply(ctx context.Context, merchantID string, tokens int64) error {
	const op = "UsageService.RecordReply"

	if tokens < 0 {
		tokens = 0
	}
	if err := s.usage.IncrementDay(ctx, merchantID, usageDay(s.now()), tokens); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to upsert usage log", err)
	}
	if err := s.merchants.ConsumeQuota(ctx, merchantID); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to consume quota", err)
	}
	return nil
}
