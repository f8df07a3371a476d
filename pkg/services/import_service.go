package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/batch"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/database"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/repositories"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/retry"
)

// NoValidRecordsMessage is returned, as a soft failure, when a file yields no usable rows.
const NoValidRecordsMessage = "No valid records found in file. Make sure the file has MSF and Item Name columns."

// ReconciliationError reports a failed reconciliation pass. Nothing from the
// pass was persisted.
type ReconciliationError struct {
	Filename   string
	Datacenter string
	Err        error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation of %q into datacenter %q failed: %v", e.Filename, e.Datacenter, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is/As.
func (e *ReconciliationError) Unwrap() []error {
	return []error{apperrors.ErrReconciliationFailed, e.Err}
}

// ImportService ingests inventory exports and reconciles them against the
// catalog and the per-datacenter ledger.
type ImportService interface {
	// Import parses the file (format chosen by extension) and reconciles it.
	// A file with no usable rows returns a result with Success=false and no error.
	Import(ctx context.Context, filename, datacenter string, r io.Reader) (*models.ImportResult, error)

	// Reconcile applies already-parsed records as one all-or-nothing pass:
	// every catalog entry is zeroed in the datacenter, then each record is
	// upserted into the catalog and its quantity appended to the ledger.
	Reconcile(ctx context.Context, filename, datacenter string, records []batch.Record) (*models.ImportResult, error)

	// History returns the most recent import audit records.
	History(ctx context.Context, limit int) ([]*models.ImportRecord, error)
}

type importService struct {
	tx       database.Transactor
	catalog  repositories.CatalogRepository
	ledger   repositories.LedgerRepository
	imports  repositories.ImportRepository
	retryCfg *retry.Config
	now      func() time.Time
	logger   *zap.Logger
}

// NewImportService creates a new ImportService.
func NewImportService(
	tx database.Transactor,
	catalog repositories.CatalogRepository,
	ledger repositories.LedgerRepository,
	imports repositories.ImportRepository,
	logger *zap.Logger,
) ImportService {
	return &importService{
		tx:       tx,
		catalog:  catalog,
		ledger:   ledger,
		imports:  imports,
		retryCfg: retry.DefaultConfig(),
		now:      time.Now,
		logger:   logger.Named("import"),
	}
}

var _ ImportService = (*importService)(nil)

func (s *importService) Import(ctx context.Context, filename, datacenter string, r io.Reader) (*models.ImportResult, error) {
	format, err := batch.FormatFromFilename(filename)
	if err != nil {
		return nil, err
	}

	parsed, err := batch.Parse(r, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	s.logger.Info("Parsed inventory file",
		zap.String("filename", filename),
		zap.String("datacenter", datacenter),
		zap.Int("rows_found", parsed.Stats.RowsFound),
		zap.Int("rows_accepted", parsed.Stats.RowsAccepted))

	return s.Reconcile(ctx, filename, datacenter, parsed.Records)
}

func (s *importService) Reconcile(ctx context.Context, filename, datacenter string, records []batch.Record) (*models.ImportResult, error) {
	if len(records) == 0 {
		return &models.ImportResult{Success: false, Error: NoValidRecordsMessage}, nil
	}

	var result *models.ImportResult
	// A deadlock against an import into another datacenter rolls the whole pass
	// back, so the pass can simply run again.
	err := retry.DoIfRetryable(ctx, s.retryCfg, func() error {
		var err error
		result, err = s.reconcileOnce(ctx, filename, datacenter, records)
		if err != nil && retry.IsRetryable(err) {
			s.logger.Warn("Reconciliation hit a transient error, retrying",
				zap.String("filename", filename),
				zap.String("datacenter", datacenter),
				zap.Error(err))
		}
		return err
	})
	if err != nil {
		s.logger.Error("Reconciliation failed",
			zap.String("filename", filename),
			zap.String("datacenter", datacenter),
			zap.Error(err))
		return nil, &ReconciliationError{Filename: filename, Datacenter: datacenter, Err: err}
	}

	s.logger.Info("Reconciliation complete",
		zap.String("filename", filename),
		zap.String("datacenter", datacenter),
		zap.Stringer("import_id", result.ImportID),
		zap.Int("records_processed", result.RecordsProcessed),
		zap.Int("new_products", result.NewProducts),
		zap.Int("updated_products", result.UpdatedProducts),
		zap.Int("reset_count", result.ResetCount))

	return result, nil
}

func (s *importService) reconcileOnce(ctx context.Context, filename, datacenter string, records []batch.Record) (*models.ImportResult, error) {
	passID := uuid.New()
	result := &models.ImportResult{ImportID: &passID}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ledger.LockDatacenter(ctx, datacenter); err != nil {
			return err
		}

		resetCount, err := s.ledger.ResetDatacenter(ctx, datacenter, filename+models.ResetSuffix, passID)
		if err != nil {
			return err
		}
		result.ResetCount = resetCount

		for i := range records {
			created, err := s.applyRecord(ctx, &records[i])
			if err != nil {
				return fmt.Errorf("record %d (%s): %w", i+1, records[i].MSF, err)
			}
			if created {
				result.NewProducts++
			} else {
				result.UpdatedProducts++
			}

			if err := s.ledger.Append(ctx, &models.LedgerEntry{
				MSF:        records[i].MSF,
				Datacenter: datacenter,
				Quantity:   records[i].Quantity,
				SourceFile: filename,
				ImportID:   passID,
			}); err != nil {
				return fmt.Errorf("record %d (%s): %w", i+1, records[i].MSF, err)
			}
		}
		result.RecordsProcessed = len(records)

		return s.imports.Create(ctx, &models.ImportRecord{
			ImportID:         passID,
			Filename:         filename,
			Datacenter:       datacenter,
			RecordsProcessed: result.RecordsProcessed,
			NewProducts:      result.NewProducts,
			UpdatedProducts:  result.UpdatedProducts,
			ResetCount:       result.ResetCount,
		})
	})
	if err != nil {
		return nil, err
	}

	result.Success = true
	return result, nil
}

// applyRecord upserts the catalog entry for rec and reports whether it was new.
func (s *importService) applyRecord(ctx context.Context, rec *batch.Record) (bool, error) {
	incoming := rec.CatalogEntry()
	now := s.now()

	existing, err := s.catalog.GetForUpdate(ctx, rec.MSF)
	if err != nil {
		return false, err
	}

	if existing == nil {
		inserted, err := s.catalog.Insert(ctx, models.MergeCatalogEntry(nil, incoming, now))
		if err != nil {
			return false, err
		}
		if inserted {
			return true, nil
		}
		// A concurrent import created the entry first; merge into theirs.
		existing, err = s.catalog.GetForUpdate(ctx, rec.MSF)
		if err != nil {
			return false, err
		}
		if existing == nil {
			return false, errors.New("catalog entry vanished after insert conflict")
		}
	}

	if err := s.catalog.Update(ctx, models.MergeCatalogEntry(existing, incoming, now)); err != nil {
		return false, err
	}
	return false, nil
}

func (s *importService) History(ctx context.Context, limit int) ([]*models.ImportRecord, error) {
	records, err := s.imports.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*models.ImportRecord{}
	}
	return records, nil
}
