package services

import (
	"context"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/repositories"
)

// MsfConfigService manages per-MSF display overrides.
type MsfConfigService interface {
	List(ctx context.Context) ([]*models.MsfConfig, error)
	Get(ctx context.Context, msf string) (*models.MsfConfig, error)
	// Put applies the patch on top of the stored config (or an empty one).
	Put(ctx context.Context, msf string, patch *models.MsfConfigPatch) (*models.MsfConfig, error)
	Delete(ctx context.Context, msf string) error
}

type msfConfigService struct {
	repo repositories.MsfConfigRepository
}

// NewMsfConfigService creates a new MsfConfigService.
func NewMsfConfigService(repo repositories.MsfConfigRepository) MsfConfigService {
	return &msfConfigService{repo: repo}
}

var _ MsfConfigService = (*msfConfigService)(nil)

func (s *msfConfigService) List(ctx context.Context) ([]*models.MsfConfig, error) {
	return s.repo.List(ctx)
}

func (s *msfConfigService) Get(ctx context.Context, msf string) (*models.MsfConfig, error) {
	cfg, err := s.repo.Get(ctx, msf)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, apperrors.ErrNotFound
	}
	return cfg, nil
}

func (s *msfConfigService) Put(ctx context.Context, msf string, patch *models.MsfConfigPatch) (*models.MsfConfig, error) {
	cfg, err := s.repo.Get(ctx, msf)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &models.MsfConfig{MSF: msf}
	}

	patch.Apply(cfg)
	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *msfConfigService) Delete(ctx context.Context, msf string) error {
	return s.repo.Delete(ctx, msf)
}
