package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/batch"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/services"
)

// noScope passes requests straight through; handler tests use mock services.
func noScope(next http.HandlerFunc) http.HandlerFunc { return next }

// mockImportService records the upload it was given.
type mockImportService struct {
	result  *models.ImportResult
	err     error
	history []*models.ImportRecord

	gotFilename   string
	gotDatacenter string
	gotBody       string
	gotLimit      int
}

func (m *mockImportService) Import(ctx context.Context, filename, datacenter string, r io.Reader) (*models.ImportResult, error) {
	m.gotFilename = filename
	m.gotDatacenter = datacenter
	body, _ := io.ReadAll(r)
	m.gotBody = string(body)
	return m.result, m.err
}

func (m *mockImportService) Reconcile(ctx context.Context, filename, datacenter string, records []batch.Record) (*models.ImportResult, error) {
	return m.result, m.err
}

func (m *mockImportService) History(ctx context.Context, limit int) ([]*models.ImportRecord, error) {
	m.gotLimit = limit
	return m.history, m.err
}

// mockInventoryService returns canned reads and records the datacenter filter.
type mockInventoryService struct {
	items    []*models.InventoryItem
	groups   []*models.CategoryGroup
	detail   *models.ProductDetail
	quantity int
	export   []byte
	err      error

	gotDatacenter *string
	gotQuery      string
	gotMSF        string
	gotCategory   string
}

func (m *mockInventoryService) CurrentQuantity(ctx context.Context, msf string, datacenter *string) (int, error) {
	m.gotMSF = msf
	m.gotDatacenter = datacenter
	return m.quantity, m.err
}

func (m *mockInventoryService) ListProducts(ctx context.Context, datacenter *string) ([]*models.InventoryItem, error) {
	m.gotDatacenter = datacenter
	return m.items, m.err
}

func (m *mockInventoryService) Search(ctx context.Context, query string, datacenter *string) ([]*models.InventoryItem, error) {
	m.gotQuery = query
	m.gotDatacenter = datacenter
	return m.items, m.err
}

func (m *mockInventoryService) GroupedInventory(ctx context.Context, datacenter *string) ([]*models.CategoryGroup, error) {
	m.gotDatacenter = datacenter
	return m.groups, m.err
}

func (m *mockInventoryService) GetProduct(ctx context.Context, msf string, datacenter *string) (*models.ProductDetail, error) {
	m.gotMSF = msf
	m.gotDatacenter = datacenter
	return m.detail, m.err
}

func (m *mockInventoryService) UpdateCategory(ctx context.Context, msf, category string) error {
	m.gotMSF = msf
	m.gotCategory = category
	return m.err
}

func (m *mockInventoryService) ExportXLSX(ctx context.Context, datacenter *string, w io.Writer) error {
	m.gotDatacenter = datacenter
	if m.err != nil {
		return m.err
	}
	_, err := w.Write(m.export)
	return err
}

type mockDatacenterService struct {
	datacenters []*models.Datacenter
	deletion    *services.DatacenterDeletion
	err         error

	saved     *models.Datacenter
	renamedID string
	newName   string
	deletedID string
}

func (m *mockDatacenterService) List(ctx context.Context) ([]*models.Datacenter, error) {
	return m.datacenters, m.err
}

func (m *mockDatacenterService) Save(ctx context.Context, dc *models.Datacenter) error {
	m.saved = dc
	return m.err
}

func (m *mockDatacenterService) Rename(ctx context.Context, id, name string) error {
	m.renamedID = id
	m.newName = name
	return m.err
}

func (m *mockDatacenterService) Delete(ctx context.Context, id string) (*services.DatacenterDeletion, error) {
	m.deletedID = id
	return m.deletion, m.err
}

type mockMsfConfigService struct {
	configs []*models.MsfConfig
	config  *models.MsfConfig
	err     error

	gotPatch *models.MsfConfigPatch
	deleted  string
}

func (m *mockMsfConfigService) List(ctx context.Context) ([]*models.MsfConfig, error) {
	return m.configs, m.err
}

func (m *mockMsfConfigService) Get(ctx context.Context, msf string) (*models.MsfConfig, error) {
	return m.config, m.err
}

func (m *mockMsfConfigService) Put(ctx context.Context, msf string, patch *models.MsfConfigPatch) (*models.MsfConfig, error) {
	m.gotPatch = patch
	if m.err != nil {
		return nil, m.err
	}
	cfg := &models.MsfConfig{MSF: msf}
	patch.Apply(cfg)
	return cfg, nil
}

func (m *mockMsfConfigService) Delete(ctx context.Context, msf string) error {
	m.deleted = msf
	return m.err
}

type mockSettingsService struct {
	settings *models.AppSettings
	err      error
	saved    *models.AppSettings
}

func (m *mockSettingsService) Get(ctx context.Context) (*models.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.settings != nil {
		return m.settings, nil
	}
	return models.DefaultSettings(), nil
}

func (m *mockSettingsService) Save(ctx context.Context, settings *models.AppSettings) error {
	if m.err != nil {
		return m.err
	}
	m.saved = settings
	return nil
}

func (m *mockSettingsService) CategoryNames(ctx context.Context) ([]string, error) {
	settings, err := m.Get(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, c := range settings.OrderedCategories() {
		names = append(names, c.Name)
	}
	return names, nil
}

type mockDataService struct {
	result *models.ErasureResult
	err    error
	called bool
}

func (m *mockDataService) EraseAll(ctx context.Context) (*models.ErasureResult, error) {
	m.called = true
	return m.result, m.err
}

var (
	_ services.ImportService     = (*mockImportService)(nil)
	_ services.InventoryService  = (*mockInventoryService)(nil)
	_ services.DatacenterService = (*mockDatacenterService)(nil)
	_ services.MsfConfigService  = (*mockMsfConfigService)(nil)
	_ services.SettingsService   = (*mockSettingsService)(nil)
	_ services.DataService       = (*mockDataService)(nil)
)

func strPtr(s string) *string { return &s }
