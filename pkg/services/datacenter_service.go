package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/database"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/repositories"
)

// DatacenterDeletion reports what deleting a datacenter removed.
type DatacenterDeletion struct {
	ID                string `json:"id"`
	LedgerRowsDeleted int64  `json:"ledger_rows_deleted"`
}

// DatacenterService manages the datacenter registry.
type DatacenterService interface {
	List(ctx context.Context) ([]*models.Datacenter, error)
	Save(ctx context.Context, dc *models.Datacenter) error
	Rename(ctx context.Context, id, name string) error
	// Delete removes the datacenter and erases its ledger scope in one
	// transaction. The catalog is untouched.
	Delete(ctx context.Context, id string) (*DatacenterDeletion, error)
}

type datacenterService struct {
	tx          database.Transactor
	datacenters repositories.DatacenterRepository
	ledger      repositories.LedgerRepository
	logger      *zap.Logger
}

// NewDatacenterService creates a new DatacenterService.
func NewDatacenterService(
	tx database.Transactor,
	datacenters repositories.DatacenterRepository,
	ledger repositories.LedgerRepository,
	logger *zap.Logger,
) DatacenterService {
	return &datacenterService{
		tx:          tx,
		datacenters: datacenters,
		ledger:      ledger,
		logger:      logger.Named("datacenters"),
	}
}

var _ DatacenterService = (*datacenterService)(nil)

func (s *datacenterService) List(ctx context.Context) ([]*models.Datacenter, error) {
	return s.datacenters.List(ctx)
}

func (s *datacenterService) Save(ctx context.Context, dc *models.Datacenter) error {
	dc.ID = strings.TrimSpace(dc.ID)
	dc.Name = strings.TrimSpace(dc.Name)
	return s.datacenters.Upsert(ctx, dc)
}

func (s *datacenterService) Rename(ctx context.Context, id, name string) error {
	return s.datacenters.UpdateName(ctx, id, strings.TrimSpace(name))
}

func (s *datacenterService) Delete(ctx context.Context, id string) (*DatacenterDeletion, error) {
	result := &DatacenterDeletion{ID: id}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Serialize with any import into the same datacenter.
		if err := s.ledger.LockDatacenter(ctx, id); err != nil {
			return err
		}

		deleted, err := s.ledger.DeleteByDatacenter(ctx, id)
		if err != nil {
			return err
		}
		result.LedgerRowsDeleted = deleted

		existed, err := s.datacenters.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !existed && deleted == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deleted datacenter",
		zap.String("id", id),
		zap.Int64("ledger_rows_deleted", result.LedgerRowsDeleted))
	return result, nil
}
