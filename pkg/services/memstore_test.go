package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/repositories"
)

// ============================================================================
// In-memory storage shared by the repository fakes
// ============================================================================

var errInjected = errors.New("injected storage failure")

type memStore struct {
	catalog    map[string]*models.CatalogEntry
	ledger     []*models.LedgerEntry
	imports    []*models.ImportRecord
	configs    map[string]*models.MsfConfig
	dcs        map[string]*models.Datacenter
	nextID     int64
	clock      time.Time
	locks      []string
	txCount    int
	catalogOps int
	// failCatalogWriteAt makes the Nth catalog insert/update fail (1-based, 0 = never).
	failCatalogWriteAt int
	// failAuditCreate makes the import audit insert fail.
	failAuditCreate bool
	// lockErrs are returned, one per call, by LockDatacenter before it succeeds.
	lockErrs []error
}

func newMemStore() *memStore {
	return &memStore{
		catalog: make(map[string]*models.CatalogEntry),
		configs: make(map[string]*models.MsfConfig),
		dcs:     make(map[string]*models.Datacenter),
		clock:   time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp, one microsecond apart.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Microsecond)
	return s.clock
}

type memSnapshot struct {
	catalog map[string]models.CatalogEntry
	ledger  []models.LedgerEntry
	imports []models.ImportRecord
	configs map[string]models.MsfConfig
	dcs     map[string]models.Datacenter
	nextID  int64
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		catalog: make(map[string]models.CatalogEntry, len(s.catalog)),
		configs: make(map[string]models.MsfConfig, len(s.configs)),
		dcs:     make(map[string]models.Datacenter, len(s.dcs)),
		nextID:  s.nextID,
	}
	for k, v := range s.catalog {
		snap.catalog[k] = *v
	}
	for _, e := range s.ledger {
		snap.ledger = append(snap.ledger, *e)
	}
	for _, r := range s.imports {
		snap.imports = append(snap.imports, *r)
	}
	for k, v := range s.configs {
		snap.configs[k] = *v
	}
	for k, v := range s.dcs {
		snap.dcs[k] = *v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.catalog = make(map[string]*models.CatalogEntry, len(snap.catalog))
	for k, v := range snap.catalog {
		v := v
		s.catalog[k] = &v
	}
	s.ledger = nil
	for _, e := range snap.ledger {
		e := e
		s.ledger = append(s.ledger, &e)
	}
	s.imports = nil
	for _, r := range snap.imports {
		r := r
		s.imports = append(s.imports, &r)
	}
	s.configs = make(map[string]*models.MsfConfig, len(snap.configs))
	for k, v := range snap.configs {
		v := v
		s.configs[k] = &v
	}
	s.dcs = make(map[string]*models.Datacenter, len(snap.dcs))
	for k, v := range snap.dcs {
		v := v
		s.dcs[k] = &v
	}
	s.nextID = snap.nextID
}

func (s *memStore) latest(msf string, datacenter *string) *models.LedgerEntry {
	var best *models.LedgerEntry
	for _, e := range s.ledger {
		if e.MSF != msf || (datacenter != nil && e.Datacenter != *datacenter) {
			continue
		}
		if best == nil || e.ImportTimestamp.After(best.ImportTimestamp) ||
			(e.ImportTimestamp.Equal(best.ImportTimestamp) && e.ID > best.ID) {
			best = e
		}
	}
	return best
}

func (s *memStore) currentQuantity(msf, datacenter string) int {
	if e := s.latest(msf, &datacenter); e != nil {
		return e.Quantity
	}
	return 0
}

func (s *memStore) catalogWrite() error {
	s.catalogOps++
	if s.failCatalogWriteAt > 0 && s.catalogOps == s.failCatalogWriteAt {
		return errInjected
	}
	return nil
}

// ============================================================================
// Transactor fake: snapshot before, restore on error
// ============================================================================

type memTransactor struct {
	store *memStore
}

func (t *memTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.store.txCount++
	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

// ============================================================================
// Repository fakes
// ============================================================================

type memCatalogRepo struct{ store *memStore }

var _ repositories.CatalogRepository = (*memCatalogRepo)(nil)

func (r *memCatalogRepo) GetForUpdate(ctx context.Context, msf string) (*models.CatalogEntry, error) {
	return r.GetByMSF(ctx, msf)
}

func (r *memCatalogRepo) GetByMSF(ctx context.Context, msf string) (*models.CatalogEntry, error) {
	e, ok := r.store.catalog[msf]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *memCatalogRepo) Insert(ctx context.Context, entry *models.CatalogEntry) (bool, error) {
	if err := r.store.catalogWrite(); err != nil {
		return false, err
	}
	if _, exists := r.store.catalog[entry.MSF]; exists {
		return false, nil
	}
	cp := *entry
	r.store.catalog[entry.MSF] = &cp
	return true, nil
}

func (r *memCatalogRepo) Update(ctx context.Context, entry *models.CatalogEntry) error {
	if err := r.store.catalogWrite(); err != nil {
		return err
	}
	if _, exists := r.store.catalog[entry.MSF]; !exists {
		return apperrors.ErrNotFound
	}
	cp := *entry
	r.store.catalog[entry.MSF] = &cp
	return nil
}

func (r *memCatalogRepo) UpdateCategory(ctx context.Context, msf, category string) error {
	e, exists := r.store.catalog[msf]
	if !exists {
		return apperrors.ErrNotFound
	}
	cp := *e
	cp.Category = &category
	r.store.catalog[msf] = &cp
	return nil
}

func (r *memCatalogRepo) List(ctx context.Context) ([]*models.CatalogEntry, error) {
	var out []*models.CatalogEntry
	for _, msf := range r.store.sortedMSFs() {
		cp := *r.store.catalog[msf]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memStore) sortedMSFs() []string {
	keys := make([]string, 0, len(s.catalog))
	for k := range s.catalog {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type memLedgerRepo struct{ store *memStore }

var _ repositories.LedgerRepository = (*memLedgerRepo)(nil)

func (r *memLedgerRepo) LockDatacenter(ctx context.Context, datacenter string) error {
	if len(r.store.lockErrs) > 0 {
		err := r.store.lockErrs[0]
		r.store.lockErrs = r.store.lockErrs[1:]
		return err
	}
	r.store.locks = append(r.store.locks, datacenter)
	return nil
}

func (r *memLedgerRepo) ResetDatacenter(ctx context.Context, datacenter, sourceFile string, importID uuid.UUID) (int, error) {
	msfs := r.store.sortedMSFs()
	for _, msf := range msfs {
		r.append(&models.LedgerEntry{MSF: msf, Datacenter: datacenter, SourceFile: sourceFile, ImportID: importID})
	}
	return len(msfs), nil
}

func (r *memLedgerRepo) Append(ctx context.Context, entry *models.LedgerEntry) error {
	if _, ok := r.store.catalog[entry.MSF]; !ok {
		return errors.New("violates foreign key constraint")
	}
	r.append(entry)
	return nil
}

func (r *memLedgerRepo) append(entry *models.LedgerEntry) {
	r.store.nextID++
	entry.ID = r.store.nextID
	entry.ImportTimestamp = r.store.tick()
	cp := *entry
	r.store.ledger = append(r.store.ledger, &cp)
}

func (r *memLedgerRepo) LatestQuantity(ctx context.Context, msf string, datacenter *string) (int, error) {
	if e := r.store.latest(msf, datacenter); e != nil {
		return e.Quantity, nil
	}
	return 0, nil
}

func (r *memLedgerRepo) History(ctx context.Context, msf string, datacenter *string, limit int) ([]*models.LedgerEntry, error) {
	var out []*models.LedgerEntry
	for i := len(r.store.ledger) - 1; i >= 0; i-- {
		e := r.store.ledger[i]
		if e.MSF != msf || (datacenter != nil && e.Datacenter != *datacenter) {
			continue
		}
		cp := *e
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memLedgerRepo) DeleteByDatacenter(ctx context.Context, datacenter string) (int64, error) {
	var kept []*models.LedgerEntry
	var deleted int64
	for _, e := range r.store.ledger {
		if e.Datacenter == datacenter {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.store.ledger = kept
	return deleted, nil
}

type memImportRepo struct{ store *memStore }

var _ repositories.ImportRepository = (*memImportRepo)(nil)

func (r *memImportRepo) Create(ctx context.Context, record *models.ImportRecord) error {
	if r.store.failAuditCreate {
		return errInjected
	}
	r.store.nextID++
	record.ID = r.store.nextID
	record.ImportDate = r.store.tick()
	cp := *record
	r.store.imports = append(r.store.imports, &cp)
	return nil
}

func (r *memImportRepo) List(ctx context.Context, limit int) ([]*models.ImportRecord, error) {
	var out []*models.ImportRecord
	for i := len(r.store.imports) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *r.store.imports[i]
		out = append(out, &cp)
	}
	return out, nil
}

// memInventoryRepo answers inventory reads from the store, like the LATERAL join does.
type memInventoryRepo struct{ store *memStore }

var _ repositories.InventoryRepository = (*memInventoryRepo)(nil)

func (r *memInventoryRepo) List(ctx context.Context, filter models.InventoryFilter) ([]*models.InventoryItem, error) {
	var out []*models.InventoryItem
	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, msf := range r.store.sortedMSFs() {
		e := r.store.catalog[msf]
		if needle != "" &&
			!strings.Contains(strings.ToLower(e.MSF), needle) &&
			!strings.Contains(strings.ToLower(e.ItemName), needle) &&
			!strings.Contains(strings.ToLower(models.StringValue(e.Category)), needle) {
			continue
		}
		item := &models.InventoryItem{CatalogEntry: *e}
		if latest := r.store.latest(msf, filter.Datacenter); latest != nil {
			item.Quantity = latest.Quantity
		}
		if cfg, ok := r.store.configs[msf]; ok {
			cp := *cfg
			item.Config = &cp
		}
		out = append(out, item)
	}
	return out, nil
}

type memDatacenterRepo struct{ store *memStore }

var _ repositories.DatacenterRepository = (*memDatacenterRepo)(nil)

func (r *memDatacenterRepo) List(ctx context.Context) ([]*models.Datacenter, error) {
	out := make([]*models.Datacenter, 0, len(r.store.dcs))
	for _, dc := range r.store.dcs {
		cp := *dc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memDatacenterRepo) Upsert(ctx context.Context, dc *models.Datacenter) error {
	if existing, ok := r.store.dcs[dc.ID]; ok {
		dc.CreatedAt = existing.CreatedAt
	} else {
		dc.CreatedAt = r.store.tick()
	}
	cp := *dc
	r.store.dcs[dc.ID] = &cp
	return nil
}

func (r *memDatacenterRepo) UpdateName(ctx context.Context, id, name string) error {
	dc, ok := r.store.dcs[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	dc.Name = name
	return nil
}

func (r *memDatacenterRepo) Delete(ctx context.Context, id string) (bool, error) {
	_, ok := r.store.dcs[id]
	delete(r.store.dcs, id)
	return ok, nil
}

type memMsfConfigRepo struct{ store *memStore }

var _ repositories.MsfConfigRepository = (*memMsfConfigRepo)(nil)

func (r *memMsfConfigRepo) List(ctx context.Context) ([]*models.MsfConfig, error) {
	out := make([]*models.MsfConfig, 0, len(r.store.configs))
	for _, c := range r.store.configs {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MSF < out[j].MSF })
	return out, nil
}

func (r *memMsfConfigRepo) Get(ctx context.Context, msf string) (*models.MsfConfig, error) {
	c, ok := r.store.configs[msf]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memMsfConfigRepo) Upsert(ctx context.Context, cfg *models.MsfConfig) error {
	now := r.store.tick()
	if existing, ok := r.store.configs[cfg.MSF]; ok {
		cfg.CreatedAt = existing.CreatedAt
	} else {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now
	cp := *cfg
	r.store.configs[cfg.MSF] = &cp
	return nil
}

func (r *memMsfConfigRepo) Delete(ctx context.Context, msf string) error {
	if _, ok := r.store.configs[msf]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.store.configs, msf)
	return nil
}

type memErasureRepo struct{ store *memStore }

var _ repositories.ErasureRepository = (*memErasureRepo)(nil)

func (r *memErasureRepo) DeleteAll(ctx context.Context) (*models.ErasureResult, error) {
	result := &models.ErasureResult{
		ProductsDeleted:  int64(len(r.store.catalog)),
		InventoryDeleted: int64(len(r.store.ledger)),
		ImportsDeleted:   int64(len(r.store.imports)),
	}
	r.store.catalog = make(map[string]*models.CatalogEntry)
	r.store.ledger = nil
	r.store.imports = nil
	return result, nil
}
