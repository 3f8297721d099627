package services

import (
	"context"
	"testing"

	"github.com/balasin/balasin/internal/models"

	"github.com/stretchr/testify/require"
)

type stubSettingsRepo struct {
	rows  []models.PlatformSetting
	calls int
}

func (r *stubSettingsRepo) All(_ context.Context) ([]models.PlatformSetting, error) {
	r.calls++
	return r.rows, nil
}

func TestSettingsSnapshot_Defaults(t *testing.T) {
	svc := NewSettingsService(&stubSettingsRepo{}, nil)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, DefaultSystemPrompt, snap.SystemPrompt)
	require.Equal(t, "google/gemini-2.5-flash-lite", snap.Model)
	require.Equal(t, 0.3, snap.Temperature)
	require.Equal(t, 1024, snap.MaxTokens)
	require.Equal(t, 2000, snap.DelayMinMs)
	require.Equal(t, 4000, snap.DelayMaxMs)
}

func TestSettingsSnapshot_RowsOverrideDefaults(t *testing.T) {
	repo := &stubSettingsRepo{rows: []models.PlatformSetting{
		{Key: "ai_model", Value: `"openai/gpt-4o-mini"`}, // dashboard leaves JSON quotes
		{Key: "ai_temperature", Value: "0.7"},
		{Key: "ai_max_tokens", Value: "2048"},
		{Key: "wa_delay_min_ms", Value: "1000"},
		{Key: "wa_delay_max_ms", Value: "1500"},
	}}
	svc := NewSettingsService(repo, nil)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, "openai/gpt-4o-mini", snap.Model)
	require.Equal(t, 0.7, snap.Temperature)
	require.Equal(t, 2048, snap.MaxTokens)
	require.Equal(t, 1000, snap.DelayMinMs)
	require.Equal(t, 1500, snap.DelayMaxMs)
}

func TestSettingsSnapshot_GarbageValuesKeepDefaults(t *testing.T) {
	repo := &stubSettingsRepo{rows: []models.PlatformSetting{
		{Key: "ai_temperature", Value: "warm"},
		{Key: "ai_max_tokens", Value: "-5"},
		{Key: "wa_delay_max_ms", Value: "100"}, // below the min, rejected
	}}
	svc := NewSettingsService(repo, nil)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0.3, snap.Temperature)
	require.Equal(t, 1024, snap.MaxTokens)
	require.Equal(t, 4000, snap.DelayMaxMs)
}
