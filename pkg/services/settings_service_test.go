package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
)

func TestSettingsService_DefaultsWhenMissing(t *testing.T) {
	svc := NewSettingsService(t.TempDir(), zap.NewNop())

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)
}

func TestSettingsService_SaveThenGet(t *testing.T) {
	dir := t.TempDir()
	svc := NewSettingsService(dir, zap.NewNop())
	ctx := context.Background()

	want := &models.AppSettings{
		LowStockThreshold:      50,
		CriticalStockThreshold: 5,
		Categories: []models.CategoryConfig{
			{Name: "Copper", Color: "orange", Order: 1},
			{Name: "400G AOC", Color: "blue", Order: 0},
		},
	}
	require.NoError(t, svc.Save(ctx, want))

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = os.Stat(filepath.Join(dir, SettingsFileName+".tmp"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	names, err := svc.CategoryNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"400G AOC", "Copper"}, names)
}

func TestSettingsService_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFileName), []byte("low_stock_threshold: 40\n"), 0o644))
	svc := NewSettingsService(dir, zap.NewNop())

	got, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40, got.LowStockThreshold)
	assert.Equal(t, 10, got.CriticalStockThreshold)
	assert.Equal(t, models.DefaultSettings().Categories, got.Categories)
}

func TestSettingsService_UnreadableFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFileName), []byte("low_stock_threshold: [oops\n"), 0o644))
	svc := NewSettingsService(dir, zap.NewNop())

	got, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), got)
}

func TestSettingsService_SaveRejectsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		settings *models.AppSettings
	}{
		{"negative threshold", &models.AppSettings{LowStockThreshold: -1}},
		{"critical above low", &models.AppSettings{LowStockThreshold: 5, CriticalStockThreshold: 6}},
		{"unnamed category", &models.AppSettings{
			LowStockThreshold: 5,
			Categories:        []models.CategoryConfig{{Color: "red"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			svc := NewSettingsService(dir, zap.NewNop())

			err := svc.Save(context.Background(), tt.settings)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidSettings))

			_, statErr := os.Stat(filepath.Join(dir, SettingsFileName))
			assert.True(t, errors.Is(statErr, os.ErrNotExist))
		})
	}
}
