package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// RegisterInventoryTools registers the read-only inventory tools.
func RegisterInventoryTools(s *server.MCPServer, deps *InventoryToolDeps) {
	registerListInventoryTool(s, deps)
	registerGetCurrentQuantityTool(s, deps)
	registerGetLedgerHistoryTool(s, deps)
	registerListImportsTool(s, deps)
}

type inventoryItemResponse struct {
	MSF           string `json:"msf"`
	ItemName      string `json:"item_name"`
	Category      string `json:"category"`
	CableLength   string `json:"cable_length,omitempty"`
	Speed         string `json:"speed,omitempty"`
	CableType     string `json:"cable_type,omitempty"`
	ConnectorType string `json:"connector_type,omitempty"`
	Location      string `json:"location,omitempty"`
	Quantity      int    `json:"quantity"`
	StockLevel    string `json:"stock_level"`
}

func toInventoryItemResponse(item *models.InventoryItem) inventoryItemResponse {
	return inventoryItemResponse{
		MSF:           item.MSF,
		ItemName:      item.ItemName,
		Category:      item.EffectiveCategory(),
		CableLength:   models.StringValue(item.CableLength),
		Speed:         models.StringValue(item.Speed),
		CableType:     models.StringValue(item.CableType),
		ConnectorType: models.StringValue(item.ConnectorType),
		Location:      models.StringValue(item.Location),
		Quantity:      item.Quantity,
		StockLevel:    item.StockLevel,
	}
}

// registerListInventoryTool adds list_inventory, the catalog joined with current quantities.
func registerListInventoryTool(s *server.MCPServer, deps *InventoryToolDeps) {
	tool := mcp.NewTool(
		"list_inventory",
		mcp.WithDescription(
			"List cable parts with their current on-hand quantity and stock level. "+
				"Omit datacenter to resolve quantities across all datacenters; pass an empty string for the unscoped datacenter. "+
				"Optionally filter by a search term (MSF, name or category) or an exact category.",
		),
		mcp.WithString("datacenter", mcp.Description("Datacenter code, e.g. 'DC1'")),
		mcp.WithString("search", mcp.Description("Case-insensitive match on MSF, item name or category")),
		mcp.WithString("category", mcp.Description("Only return items in this category, e.g. '400G AOC'")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		scopedCtx, cleanup, err := acquireScope(ctx, deps)
		if err != nil {
			return nil, err
		}
		defer cleanup()

		datacenter := getDatacenter(req)
		search := trimString(getOptionalString(req, "search"))
		category := trimString(getOptionalString(req, "category"))

		var items []*models.InventoryItem
		if search != "" {
			items, err = deps.Inventory.Search(scopedCtx, search, datacenter)
		} else {
			items, err = deps.Inventory.ListProducts(scopedCtx, datacenter)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list inventory: %w", err)
		}

		result := struct {
			Items      []inventoryItemResponse `json:"items"`
			Count      int                     `json:"count"`
			Total      int                     `json:"total_quantity"`
			Datacenter *string                 `json:"datacenter"`
		}{
			Items:      make([]inventoryItemResponse, 0, len(items)),
			Datacenter: datacenter,
		}
		for _, item := range items {
			if category != "" && !strings.EqualFold(item.EffectiveCategory(), category) {
				continue
			}
			result.Items = append(result.Items, toInventoryItemResponse(item))
			result.Total += item.Quantity
		}
		result.Count = len(result.Items)

		return jsonResult(result)
	})
}

// registerGetCurrentQuantityTool adds get_current_quantity, the latest ledger quantity for one MSF.
func registerGetCurrentQuantityTool(s *server.MCPServer, deps *InventoryToolDeps) {
	tool := mcp.NewTool(
		"get_current_quantity",
		mcp.WithDescription(
			"Get the current quantity of one MSF: the most recent ledger snapshot. "+
				"Without a datacenter the most recent snapshot across all datacenters wins (quantities are not summed). "+
				"Returns 0 for an MSF that was never imported.",
		),
		mcp.WithString("msf", mcp.Required(), mcp.Description("The MSF part identifier")),
		mcp.WithString("datacenter", mcp.Description("Datacenter code, e.g. 'DC1'")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		msf, errResult := requireMSF(req)
		if errResult != nil {
			return errResult, nil
		}

		scopedCtx, cleanup, err := acquireScope(ctx, deps)
		if err != nil {
			return nil, err
		}
		defer cleanup()

		datacenter := getDatacenter(req)
		quantity, err := deps.Inventory.CurrentQuantity(scopedCtx, msf, datacenter)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve quantity: %w", err)
		}

		return jsonResult(struct {
			MSF        string  `json:"msf"`
			Datacenter *string `json:"datacenter"`
			Quantity   int     `json:"quantity"`
		}{msf, datacenter, quantity})
	})
}

type ledgerEntryResponse struct {
	Datacenter string    `json:"datacenter"`
	Quantity   int       `json:"quantity"`
	ImportedAt time.Time `json:"imported_at"`
	SourceFile string    `json:"source_file"`
	Reset      bool      `json:"reset"`
}

// registerGetLedgerHistoryTool adds get_ledger_history, the quantity snapshots for one MSF.
func registerGetLedgerHistoryTool(s *server.MCPServer, deps *InventoryToolDeps) {
	tool := mcp.NewTool(
		"get_ledger_history",
		mcp.WithDescription(
			"Get the ledger history of one MSF, newest first. Every import writes a snapshot; "+
				"rows marked reset were zeroed because the MSF was absent from that import.",
		),
		mcp.WithString("msf", mcp.Required(), mcp.Description("The MSF part identifier")),
		mcp.WithString("datacenter", mcp.Description("Datacenter code, e.g. 'DC1'")),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum rows to return (default %d, max %d)", defaultHistoryLimit, maxHistoryLimit))),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		msf, errResult := requireMSF(req)
		if errResult != nil {
			return errResult, nil
		}

		scopedCtx, cleanup, err := acquireScope(ctx, deps)
		if err != nil {
			return nil, err
		}
		defer cleanup()

		detail, err := deps.Inventory.GetProduct(scopedCtx, msf, getDatacenter(req))
		if err != nil {
			if result, ok := lookupError(msf, err); ok {
				deps.Logger.Debug("Ledger history requested for unknown MSF", zap.String("msf", msf))
				return result, nil
			}
			return nil, fmt.Errorf("failed to get ledger history: %w", err)
		}

		history := detail.History
		if limit := getLimit(req, defaultHistoryLimit, maxHistoryLimit); len(history) > limit {
			history = history[:limit]
		}

		result := struct {
			MSF      string                `json:"msf"`
			ItemName string                `json:"item_name"`
			History  []ledgerEntryResponse `json:"history"`
			Count    int                   `json:"count"`
		}{
			MSF:      detail.Product.MSF,
			ItemName: detail.Product.ItemName,
			History:  make([]ledgerEntryResponse, 0, len(history)),
			Count:    len(history),
		}
		for _, e := range history {
			result.History = append(result.History, ledgerEntryResponse{
				Datacenter: e.Datacenter,
				Quantity:   e.Quantity,
				ImportedAt: e.ImportTimestamp,
				SourceFile: e.SourceFile,
				Reset:      e.IsReset(),
			})
		}

		return jsonResult(result)
	})
}

// registerListImportsTool adds list_imports, the reconciliation audit trail.
func registerListImportsTool(s *server.MCPServer, deps *InventoryToolDeps) {
	tool := mcp.NewTool(
		"list_imports",
		mcp.WithDescription(
			"List recent inventory imports, newest first, with the number of records processed, "+
				"new and updated products, and how many entries were reset to zero.",
		),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum imports to return (default %d, max %d)", defaultHistoryLimit, maxHistoryLimit))),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		scopedCtx, cleanup, err := acquireScope(ctx, deps)
		if err != nil {
			return nil, err
		}
		defer cleanup()

		records, err := deps.Imports.History(scopedCtx, getLimit(req, defaultHistoryLimit, maxHistoryLimit))
		if err != nil {
			return nil, fmt.Errorf("failed to list imports: %w", err)
		}
		if records == nil {
			records = []*models.ImportRecord{}
		}

		return jsonResult(struct {
			Imports []*models.ImportRecord `json:"imports"`
			Count   int                    `json:"count"`
		}{records, len(records)})
	})
}
