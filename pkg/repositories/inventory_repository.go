package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/apperrors"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/database"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
)

// InventoryRepository reads the catalog joined with each entry's current
// quantity and display config.
type InventoryRepository interface {
	List(ctx context.Context, filter models.InventoryFilter) ([]*models.InventoryItem, error)
}

type inventoryRepository struct{}

// NewInventoryRepository creates a new InventoryRepository.
func NewInventoryRepository() InventoryRepository {
	return &inventoryRepository{}
}

var _ InventoryRepository = (*inventoryRepository)(nil)

func (r *inventoryRepository) List(ctx context.Context, filter models.InventoryFilter) ([]*models.InventoryItem, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT c.msf, c.item_name, c.item_group, c.category, c.cable_type, c.cable_length,
		       c.cable_length_value, c.cable_length_unit, c.speed, c.connector_type,
		       c.location, c.datacenter, c.created_at, c.updated_at,
		       COALESCE(latest.quantity, 0),
		       mc.msf, mc.short_name, mc.category_override, mc.notes, mc.hidden,
		       mc.custom_order, mc.created_at, mc.updated_at
		FROM cbls_catalog c
		LEFT JOIN LATERAL (
			SELECT l.quantity
			FROM cbls_ledger l
			WHERE l.msf = c.msf AND ($1::text IS NULL OR l.datacenter = $1)
			ORDER BY l.import_timestamp DESC, l.id DESC
			LIMIT 1
		) latest ON TRUE
		LEFT JOIN cbls_msf_config mc ON mc.msf = c.msf
		WHERE $2::text = '' OR c.msf ILIKE $2 OR c.item_name ILIKE $2 OR c.category ILIKE $2
		ORDER BY c.category NULLS FIRST, c.cable_length_value NULLS FIRST, c.msf`

	rows, err := scope.Conn.Query(ctx, query, filter.Datacenter, likePattern(filter.Search))
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	items := make([]*models.InventoryItem, 0)
	for rows.Next() {
		var (
			item       models.InventoryItem
			cfgMSF     *string
			cfg        models.MsfConfig
			hidden     *bool
			cfgCreated *time.Time
			cfgUpdated *time.Time
		)

		targets := catalogScanTargets(&item.CatalogEntry)
		targets = append(targets,
			&item.Quantity,
			&cfgMSF,
			&cfg.ShortName,
			&cfg.CategoryOverride,
			&cfg.Notes,
			&hidden,
			&cfg.CustomOrder,
			&cfgCreated,
			&cfgUpdated,
		)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}

		if cfgMSF != nil {
			cfg.MSF = *cfgMSF
			cfg.Hidden = hidden != nil && *hidden
			if cfgCreated != nil {
				cfg.CreatedAt = *cfgCreated
			}
			if cfgUpdated != nil {
				cfg.UpdatedAt = *cfgUpdated
			}
			item.Config = &cfg
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory: %w", err)
	}

	return items, nil
}

// likePattern wraps s for a substring ILIKE match, escaping LIKE metacharacters.
// An empty input stays empty so the query can skip the filter.
func likePattern(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
