package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/cable"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/repositories"
)

// ExportSheetName is the worksheet written by ExportXLSX.
const ExportSheetName = "Inventory"

var exportHeader = []interface{}{
	"MSF", "Item Name", "Description", "Category", "Speed", "Length",
	"Cable Type", "Connector", "Location", "Quantity", "Stock Level",
}

// InventoryService answers "how many of X are there" questions.
//
// Every datacenter argument follows the same convention: nil means all
// datacenters, a pointer to "" means the unscoped datacenter.
type InventoryService interface {
	// CurrentQuantity resolves the latest ledger quantity for one MSF; 0 if none.
	CurrentQuantity(ctx context.Context, msf string, datacenter *string) (int, error)
	ListProducts(ctx context.Context, datacenter *string) ([]*models.InventoryItem, error)
	Search(ctx context.Context, query string, datacenter *string) ([]*models.InventoryItem, error)
	// GroupedInventory groups visible items by effective category in the
	// configured display order; unknown categories follow alphabetically.
	GroupedInventory(ctx context.Context, datacenter *string) ([]*models.CategoryGroup, error)
	GetProduct(ctx context.Context, msf string, datacenter *string) (*models.ProductDetail, error)
	UpdateCategory(ctx context.Context, msf, category string) error
	ExportXLSX(ctx context.Context, datacenter *string, w io.Writer) error
}

type inventoryService struct {
	inventory repositories.InventoryRepository
	catalog   repositories.CatalogRepository
	ledger    repositories.LedgerRepository
	settings  SettingsService
	logger    *zap.Logger
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(
	inventory repositories.InventoryRepository,
	catalog repositories.CatalogRepository,
	ledger repositories.LedgerRepository,
	settings SettingsService,
	logger *zap.Logger,
) InventoryService {
	return &inventoryService{
		inventory: inventory,
		catalog:   catalog,
		ledger:    ledger,
		settings:  settings,
		logger:    logger.Named("inventory"),
	}
}

var _ InventoryService = (*inventoryService)(nil)

func (s *inventoryService) CurrentQuantity(ctx context.Context, msf string, datacenter *string) (int, error) {
	return s.ledger.LatestQuantity(ctx, msf, datacenter)
}

func (s *inventoryService) ListProducts(ctx context.Context, datacenter *string) ([]*models.InventoryItem, error) {
	return s.list(ctx, models.InventoryFilter{Datacenter: datacenter})
}

func (s *inventoryService) Search(ctx context.Context, query string, datacenter *string) ([]*models.InventoryItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.InventoryItem{}, nil
	}
	return s.list(ctx, models.InventoryFilter{Datacenter: datacenter, Search: query})
}

func (s *inventoryService) list(ctx context.Context, filter models.InventoryFilter) ([]*models.InventoryItem, error) {
	items, err := s.inventory.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		item.StockLevel = settings.StockLevel(item.Quantity)
	}
	if items == nil {
		items = []*models.InventoryItem{}
	}
	return items, nil
}

func (s *inventoryService) GroupedInventory(ctx context.Context, datacenter *string) ([]*models.CategoryGroup, error) {
	items, err := s.ListProducts(ctx, datacenter)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*models.CategoryGroup)
	for _, item := range items {
		if item.Hidden() {
			continue
		}
		name := item.EffectiveCategory()
		g, ok := groups[name]
		if !ok {
			g = &models.CategoryGroup{Category: name, Items: []*models.InventoryItem{}}
			groups[name] = g
		}
		g.Items = append(g.Items, item)
		g.TotalQuantity += item.Quantity
	}

	rank := make(map[string]int)
	for i, c := range settings.OrderedCategories() {
		if _, seen := rank[c.Name]; !seen {
			rank[c.Name] = i
		}
		if g, ok := groups[c.Name]; ok && g.Color == "" {
			g.Color = c.Color
		}
	}

	out := make([]*models.CategoryGroup, 0, len(groups))
	for _, g := range groups {
		sortGroupItems(g.Items)
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Category, out[j].Category
		ra, aKnown := rank[a]
		rb, bKnown := rank[b]
		switch {
		case aKnown && bKnown:
			return ra < rb
		case aKnown != bKnown:
			return aKnown
		case (a == models.UncategorizedLabel) != (b == models.UncategorizedLabel):
			return b == models.UncategorizedLabel
		default:
			return a < b
		}
	})
	return out, nil
}

// sortGroupItems applies custom_order first (lowest first), then the list order.
func sortGroupItems(items []*models.InventoryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		oi, oj := customOrder(items[i]), customOrder(items[j])
		switch {
		case oi != nil && oj != nil:
			return *oi < *oj
		default:
			return oi != nil && oj == nil
		}
	})
}

func customOrder(item *models.InventoryItem) *int {
	if item.Config == nil {
		return nil
	}
	return item.Config.CustomOrder
}

func (s *inventoryService) GetProduct(ctx context.Context, msf string, datacenter *string) (*models.ProductDetail, error) {
	product, err := s.catalog.GetByMSF(ctx, msf)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperrors.ErrNotFound
	}

	history, err := s.ledger.History(ctx, msf, datacenter, 0)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []*models.LedgerEntry{}
	}

	return &models.ProductDetail{Product: product, History: history}, nil
}

func (s *inventoryService) UpdateCategory(ctx context.Context, msf, category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return fmt.Errorf("category is required")
	}
	if err := s.catalog.UpdateCategory(ctx, msf, category); err != nil {
		return err
	}
	s.logger.Info("Updated product category",
		zap.String("msf", msf),
		zap.String("category", category))
	return nil
}

func (s *inventoryService) ExportXLSX(ctx context.Context, datacenter *string, w io.Writer) error {
	items, err := s.ListProducts(ctx, datacenter)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(ExportSheetName, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(ExportSheetName, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			item.MSF,
			item.ItemName,
			cable.Describe(item.ItemName, attributesOf(&item.CatalogEntry)),
			item.EffectiveCategory(),
			models.StringValue(item.Speed),
			models.StringValue(item.CableLength),
			models.StringValue(item.CableType),
			models.StringValue(item.ConnectorType),
			models.StringValue(item.Location),
			item.Quantity,
			item.StockLevel,
		}
		if err := f.SetSheetRow(ExportSheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", item.MSF, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// attributesOf rebuilds the extracted attributes stored on a catalog entry.
func attributesOf(e *models.CatalogEntry) cable.Attributes {
	return cable.Attributes{
		Length:        e.CableLengthValue,
		LengthUnit:    models.StringValue(e.CableLengthUnit),
		Speed:         models.StringValue(e.Speed),
		CableType:     models.StringValue(e.CableType),
		ConnectorType: models.StringValue(e.ConnectorType),
	}
}
