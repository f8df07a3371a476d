package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
)

// staticSettings serves fixed settings without touching disk.
type staticSettings struct {
	settings *models.AppSettings
}

func (s *staticSettings) Get(ctx context.Context) (*models.AppSettings, error) {
	cp := *s.settings
	return &cp, nil
}

func (s *staticSettings) Save(ctx context.Context, settings *models.AppSettings) error {
	s.settings = settings
	return nil
}

func (s *staticSettings) CategoryNames(ctx context.Context) ([]string, error) {
	var names []string
	for _, c := range s.settings.OrderedCategories() {
		names = append(names, c.Name)
	}
	return names, nil
}

func newTestInventoryService(store *memStore) *inventoryService {
	return NewInventoryService(
		&memInventoryRepo{store: store},
		&memCatalogRepo{store: store},
		&memLedgerRepo{store: store},
		&staticSettings{settings: models.DefaultSettings()},
		zap.NewNop(),
	).(*inventoryService)
}

// seedInventory imports a small two-datacenter fixture.
func seedInventory(t *testing.T, store *memStore) {
	t.Helper()
	imports := newTestImportService(store)
	ctx := context.Background()

	_, err := imports.Reconcile(ctx, "dc1.csv", "DC1", parseCSV(t, csvHeader+
		"A1,400G AOC 7M QSFP-DD,AOCCable,25,Cage 1,DC1\n"+
		"B2,CAT6 COPPER 2FT PATCHCORD,PatchCords,12,Cage 2,DC1\n"+
		"C3,MTP FIBER JUMPER 10M,FibrJmpers,3,Cage 3,DC1\n"+
		"D4,Mystery Part,,1,Cage 4,DC1\n"))
	require.NoError(t, err)
	_, err = imports.Reconcile(ctx, "dc2.csv", "DC2", parseCSV(t, csvHeader+
		"A1,400G AOC 7M QSFP-DD,AOCCable,5,Cage 9,DC2\n"))
	require.NoError(t, err)
}

func TestInventoryService_CurrentQuantity(t *testing.T) {
	store := newMemStore()
	seedInventory(t, store)
	svc := newTestInventoryService(store)
	ctx := context.Background()

	qty, err := svc.CurrentQuantity(ctx, "A1", models.StringPtr("DC1"))
	require.NoError(t, err)
	assert.Equal(t, 25, qty)

	qty, err = svc.CurrentQuantity(ctx, "B2", models.StringPtr("DC2"))
	require.NoError(t, err)
	assert.Equal(t, 0, qty, "reset by the DC2 import")

	qty, err = svc.CurrentQuantity(ctx, "NOPE", models.StringPtr("DC1"))
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
}

func TestInventoryService_ListProducts_StockLevels(t *testing.T) {
	store := newMemStore()
	seedInventory(t, store)
	svc := newTestInventoryService(store)

	items, err := svc.ListProducts(context.Background(), models.StringPtr("DC1"))
	require.NoError(t, err)
	require.Len(t, items, 4)

	levels := make(map[string]string)
	for _, item := range items {
		levels[item.MSF] = item.StockLevel
	}
	assert.Equal(t, models.StockLevelOK, levels["A1"])
	assert.Equal(t, models.StockLevelLow, levels["B2"])
	assert.Equal(t, models.StockLevelCritical, levels["C3"])
}

func TestInventoryService_ListProducts_Empty(t *testing.T) {
	svc := newTestInventoryService(newMemStore())

	items, err := svc.ListProducts(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestInventoryService_Search(t *testing.T) {
	store := newMemStore()
	seedInventory(t, store)
	svc := newTestInventoryService(store)
	ctx := context.Background()

	items, err := svc.Search(ctx, "   ", nil)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	items, err = svc.Search(ctx, "copper", models.StringPtr("DC1"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B2", items[0].MSF)
	assert.Equal(t, 12, items[0].Quantity)
}

func TestInventoryService_GroupedInventory(t *testing.T) {
	store := newMemStore()
	seedInventory(t, store)
	require.NoError(t, (&memMsfConfigRepo{store: store}).Upsert(context.Background(),
		&models.MsfConfig{MSF: "C3", Hidden: true}))
	svc := newTestInventoryService(store)

	groups, err := svc.GroupedInventory(context.Background(), models.StringPtr("DC1"))
	require.NoError(t, err)

	var names []string
	for _, g := range groups {
		names = append(names, g.Category)
	}
	// Settings order first, then Other from settings; hidden C3 leaves MTP Fiber empty.
	assert.Equal(t, []string{"400G AOC", "Copper", "Other"}, names)
	assert.Equal(t, "blue", groups[0].Color)
	assert.Equal(t, 25, groups[0].TotalQuantity)
	assert.Equal(t, "D4", groups[2].Items[0].MSF)
}

func TestInventoryService_GroupedInventory_OverridesAndUnknownCategories(t *testing.T) {
	store := newMemStore()
	seedInventory(t, store)
	configs := &memMsfConfigRepo{store: store}
	ctx := context.Background()
	require.NoError(t, configs.Upsert(ctx, &models.MsfConfig{MSF: "B2", CategoryOverride: models.StringPtr("Zebra Cables")}))
	require.NoError(t, configs.Upsert(ctx, &models.MsfConfig{MSF: "C3", CategoryOverride: models.StringPtr("Alpha Cables")}))

	svc := newTestInventoryService(store)
	svc.settings = &staticSettings{settings: &models.AppSettings{
		LowStockThreshold:      20,
		CriticalStockThreshold: 10,
		Categories:             []models.CategoryConfig{{Name: "400G AOC", Color: "blue"}},
	}}
	store.catalog["D4"].Category = nil

	groups, err := svc.GroupedInventory(ctx, models.StringPtr("DC1"))
	require.NoError(t, err)

	var names []string
	for _, g := range groups {
		names = append(names, g.Category)
	}
	assert.Equal(t, []string{"400G AOC", "Alpha Cables", "Zebra Cables", models.UncategorizedLabel}, names)
}

func TestInventoryService_GroupedInventory_CustomOrder(t *testing.T) {
	store := newMemStore()
	imports := newTestImportService(store)
	ctx := context.Background()
	_, err := imports.Reconcile(ctx, "dc1.csv", "DC1", parseCSV(t, csvHeader+
		"A1,CAT6 COPPER 1FT,PatchCords,1,,\n"+
		"A2,CAT6 COPPER 2FT,PatchCords,1,,\n"+
		"A3,CAT6 COPPER 3FT,PatchCords,1,,\n"))
	require.NoError(t, err)

	order := 1
	require.NoError(t, (&memMsfConfigRepo{store: store}).Upsert(ctx, &models.MsfConfig{MSF: "A3", CustomOrder: &order}))

	groups, err := newTestInventoryService(store).GroupedInventory(ctx, nil)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	var msfs []string
	for _, item := range groups[0].Items {
		msfs = append(msfs, item.MSF)
	}
	assert.Equal(t, []string{"A3", "A1", "A2"}, msfs)
}

func TestInventoryService_GetProduct(t *testing.T) {
	store := newMemStore()
	seedInventory(t, store)
	svc := newTestInventoryService(store)
	ctx := context.Background()

	detail, err := svc.GetProduct(ctx, "A1", nil)
	require.NoError(t, err)
	assert.Equal(t, "A1", detail.Product.MSF)
	// dc1 row, then the DC2 reset row, then the dc2 row.
	require.Len(t, detail.History, 3)
	assert.Equal(t, "DC2", detail.History[0].Datacenter)
	assert.Equal(t, 5, detail.History[0].Quantity)

	detail, err = svc.GetProduct(ctx, "A1", models.StringPtr("DC1"))
	require.NoError(t, err)
	require.Len(t, detail.History, 1)
	assert.Equal(t, 25, detail.History[0].Quantity)

	_, err = svc.GetProduct(ctx, "NOPE", nil)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestInventoryService_UpdateCategory(t *testing.T) {
	store := newMemStore()
	seedInventory(t, store)
	svc := newTestInventoryService(store)
	ctx := context.Background()

	require.NoError(t, svc.UpdateCategory(ctx, "D4", "  Copper "))
	assert.Equal(t, "Copper", models.StringValue(store.catalog["D4"].Category))

	assert.Error(t, svc.UpdateCategory(ctx, "D4", " "))
	assert.True(t, errors.Is(svc.UpdateCategory(ctx, "NOPE", "Copper"), apperrors.ErrNotFound))
}

func TestInventoryService_ExportXLSX(t *testing.T) {
	store := newMemStore()
	seedInventory(t, store)
	svc := newTestInventoryService(store)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportXLSX(context.Background(), models.StringPtr("DC1"), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ExportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "MSF", rows[0][0])
	assert.Equal(t, "Stock Level", rows[0][10])

	a1 := rows[1]
	assert.Equal(t, "A1", a1[0])
	assert.Equal(t, "400G AOC 7M QSFP-DD", a1[1])
	assert.Equal(t, "7M - 400G - AOC", a1[2])
	assert.Equal(t, "400G AOC", a1[3])
	assert.Equal(t, "25", a1[9])
	assert.Equal(t, models.StockLevelOK, a1[10])
}
