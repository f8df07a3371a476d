package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/database"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/repositories"
)

// DataService performs whole-database maintenance.
type DataService interface {
	// EraseAll deletes the catalog, the ledger and the import history in one transaction.
	EraseAll(ctx context.Context) (*models.ErasureResult, error)
}

type dataService struct {
	tx      database.Transactor
	erasure repositories.ErasureRepository
	logger  *zap.Logger
}

// NewDataService creates a new DataService.
func NewDataService(tx database.Transactor, erasure repositories.ErasureRepository, logger *zap.Logger) DataService {
	return &dataService{tx: tx, erasure: erasure, logger: logger.Named("data")}
}

var _ DataService = (*dataService)(nil)

func (s *dataService) EraseAll(ctx context.Context) (*models.ErasureResult, error) {
	var result *models.ErasureResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.erasure.DeleteAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Warn("Erased all inventory data",
		zap.Int64("products_deleted", result.ProductsDeleted),
		zap.Int64("inventory_deleted", result.InventoryDeleted),
		zap.Int64("imports_deleted", result.ImportsDeleted))
	return result, nil
}
