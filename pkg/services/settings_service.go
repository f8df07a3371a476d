package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
)

// SettingsFileName is the file, inside the data directory, holding display settings.
const SettingsFileName = "settings.yaml"

// SettingsService reads and writes the user-editable display settings.
type SettingsService interface {
	// Get returns the saved settings layered over the defaults.
	Get(ctx context.Context) (*models.AppSettings, error)
	// Save validates and persists settings, replacing what was stored.
	Save(ctx context.Context, settings *models.AppSettings) error
	// CategoryNames returns category names in display order.
	CategoryNames(ctx context.Context) ([]string, error)
}

type settingsService struct {
	path     string
	validate *validator.Validate
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewSettingsService creates a SettingsService storing YAML under dataDir.
func NewSettingsService(dataDir string, logger *zap.Logger) SettingsService {
	return &settingsService{
		path:     filepath.Join(dataDir, SettingsFileName),
		validate: validator.New(),
		logger:   logger.Named("settings"),
	}
}

var _ SettingsService = (*settingsService)(nil)

func (s *settingsService) Get(ctx context.Context) (*models.AppSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := models.DefaultSettings()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	// Keys missing from the file keep their default values.
	if err := yaml.Unmarshal(data, settings); err != nil {
		s.logger.Warn("Ignoring unreadable settings file",
			zap.String("path", s.path),
			zap.Error(err))
		return models.DefaultSettings(), nil
	}
	return settings, nil
}

func (s *settingsService) Save(ctx context.Context, settings *models.AppSettings) error {
	if err := s.validate.Struct(settings); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidSettings, err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Write to a temp file and rename so readers never see a partial file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}

	s.logger.Info("Saved settings",
		zap.Int("low_stock_threshold", settings.LowStockThreshold),
		zap.Int("critical_stock_threshold", settings.CriticalStockThreshold),
		zap.Int("categories", len(settings.Categories)))
	return nil
}

func (s *settingsService) CategoryNames(ctx context.Context) ([]string, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	ordered := settings.OrderedCategories()
	names := make([]string, 0, len(ordered))
	for _, c := range ordered {
		names = append(names, c.Name)
	}
	return names, nil
}
