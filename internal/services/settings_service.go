package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/balasin/balasin/internal/cache"
	"github.com/balasin/balasin/internal/models"
	pgrepo "github.com/balasin/balasin/internal/repositories/postgres"
	"github.com/balasin/balasin/internal/utils"
)

// DefaultSystemPrompt is used when no ai_system_prompt row exists. The
// template placeholders are substituted by the pipeline.
const DefaultSystemPrompt = `Kamu adalah asisten customer service yang ramah dan profesional. Jawab pertanyaan berdasarkan konteks yang diberikan. Jika kamu tidak tahu jawabannya atau pelanggan meminta berbicara dengan manusia, balas HANYA dengan kata ESKALASI_HUMAN.`

const (
	defaultModel       = "google/gemini-2.5-flash-lite"
	defaultTemperature = 0.3
	defaultMaxTokens   = 1024
	defaultDelayMinMs  = 2000
	defaultDelayMaxMs  = 4000
)

const (
	settingsCacheKey = "platform:ai_settings"
	settingsCacheTTL = time.Minute
)

// SettingsService materializes the loosely-typed platform_settings rows into
// one immutable snapshot per request.
type SettingsService interface {
	Snapshot(ctx context.Context) (models.AISettings, error)
}

type settingsService struct {
	repo  pgrepo.SettingsRepo
	cache cache.Cache
}

func NewSettingsService(repo pgrepo.SettingsRepo, c cache.Cache) SettingsService {
	return &settingsService{repo: repo, cache: c}
}

func (s *settingsService) Snapshot(ctx context.Context) (models.AISettings, error) {
	const op = "SettingsService.Snapshot"

	var snap models.AISettings
	if s.cache != nil {
		if hit, err := s.cache.GetJSON(ctx, settingsCacheKey, &snap); err == nil && hit {
			return snap, nil
		}
	}

	rows, err := s.repo.All(ctx)
	if err != nil {
		return models.AISettings{}, utils.E(utils.CodeInternal, op, "failed to load platform settings", err)
	}

	cfg := make(map[string]string, len(rows))
	for _, row := range rows {
		cfg[row.Key] = row.Value
	}
	snap = buildSnapshot(cfg)

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, settingsCacheKey, snap, settingsCacheTTL)
	}
	return snap, nil
}

func buildSnapshot(cfg map[string]string) models.AISettings {
	snap := models.AISettings{
		SystemPrompt: DefaultSystemPrompt,
		Model:        defaultModel,
		Temperature:  defaultTemperature,
		MaxTokens:    defaultMaxTokens,
		DelayMinMs:   defaultDelayMinMs,
		DelayMaxMs:   defaultDelayMaxMs,
	}

	if v := settingValue(cfg, "ai_system_prompt"); v != "" {
		snap.SystemPrompt = v
	}
	if v := settingValue(cfg, "ai_model"); v != "" {
		snap.Model = v
	}
	if v := settingValue(cfg, "ai_temperature"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			snap.Temperature = f
		}
	}
	if v := settingValue(cfg, "ai_max_tokens"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			snap.MaxTokens = n
		}
	}
	if v := settingValue(cfg, "wa_delay_min_ms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			snap.DelayMinMs = n
		}
	}
	if v := settingValue(cfg, "wa_delay_max_ms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= snap.DelayMinMs {
			snap.DelayMaxMs = n
		}
	}
	return snap
}

// settingValue reads a key and strips the JSON quoting the dashboard leaves
// on string values.
func settingValue(cfg map[string]string, key string) string {
	v := strings.TrimSpace(cfg[key])
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		v = v[1 : len(v)-1]
	}
	return v
}
