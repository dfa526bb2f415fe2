package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dataclinica/internal/models"

	"github.com/google/uuid"
)

type SupplyRepository interface {
	Create(ctx context.Context, supply *models.Supply) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Supply, error)
	GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*models.Supply, error)
	Update(ctx context.Context, supply *models.Supply) error
	UpdateThresholds(ctx context.Context, supply *models.Supply) error
	Discontinue(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Supply, error)
	AdvancedSearch(ctx context.Context, tenantID uuid.UUID, filter *models.SupplySearchFilter) ([]*models.Supply, error)
	ListBelowReorder(ctx context.Context, tenantID uuid.UUID) ([]*models.Supply, error)
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]*models.Supply, error)
	GetStats(ctx context.Context, tenantID uuid.UUID) (*models.SupplyStats, error)
}

type supplyRepo struct {
	db DB
}

func NewSupplyRepo(db DB) SupplyRepository {
	return &supplyRepo{db: db}
}

const supplyColumns = `id, tenant_id, sku, barcode, name, category, subcategory, brand, manufacturer, unit, unit_cost, current_stock, min_stock, max_stock, reorder_point, reorder_quantity, lead_time_days, safety_stock, department, location, batch_number, expiry_date, sterile, controlled, requires_prescription, status, criticality, created_at, updated_at`

func scanSupply(row interface{ Scan(...interface{}) error }) (*models.Supply, error) {
	supply := &models.Supply{}
	err := row.Scan(
		&supply.ID, &supply.TenantID, &supply.SKU, &supply.Barcode, &supply.Name,
		&supply.Category, &supply.Subcategory, &supply.Brand, &supply.Manufacturer,
		&supply.Unit, &supply.UnitCost, &supply.CurrentStock, &supply.MinStock,
		&supply.MaxStock, &supply.ReorderPoint, &supply.ReorderQuantity,
		&supply.LeadTimeDays, &supply.SafetyStock, &supply.Department,
		&supply.Location, &supply.BatchNumber, &supply.ExpiryDate, &supply.Sterile,
		&supply.Controlled, &supply.RequiresPrescription, &supply.Status,
		&supply.Criticality, &supply.CreatedAt, &supply.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return supply, nil
}

func (r *supplyRepo) Create(ctx context.Context, supply *models.Supply) error {
	query := `
		INSERT INTO supplies (id, tenant_id, sku, barcode, name, category, subcategory, brand, manufacturer, unit, unit_cost, current_stock, min_stock, max_stock, reorder_point, reorder_quantity, lead_time_days, safety_stock, department, location, batch_number, expiry_date, sterile, controlled, requires_prescription, status, criticality, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		supply.ID, supply.TenantID, supply.SKU, supply.Barcode, supply.Name,
		supply.Category, supply.Subcategory, supply.Brand, supply.Manufacturer,
		supply.Unit, supply.UnitCost, supply.CurrentStock, supply.MinStock,
		supply.MaxStock, supply.ReorderPoint, supply.ReorderQuantity,
		supply.LeadTimeDays, supply.SafetyStock, supply.Department,
		supply.Location, supply.BatchNumber, supply.ExpiryDate, supply.Sterile,
		supply.Controlled, supply.RequiresPrescription, supply.Status, supply.Criticality,
	)
	return err
}

func (r *supplyRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Supply, error) {
	query := `
		SELECT ` + supplyColumns + `
		FROM supplies
		WHERE tenant_id = $1 AND id = $2
	`
	return scanSupply(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *supplyRepo) GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*models.Supply, error) {
	query := `
		SELECT ` + supplyColumns + `
		FROM supplies
		WHERE tenant_id = $1 AND sku = $2
	`
	return scanSupply(r.db.QueryRow(ctx, query, tenantID, sku))
}

func (r *supplyRepo) Update(ctx context.Context, supply *models.Supply) error {
	query := `
		UPDATE supplies
		SET barcode = $1, name = $2, category = $3, subcategory = $4, brand = $5, manufacturer = $6, unit = $7, unit_cost = $8, department = $9, location = $10, batch_number = $11, expiry_date = $12, sterile = $13, controlled = $14, requires_prescription = $15, status = $16, criticality = $17, lead_time_days = $18, safety_stock = $19, updated_at = NOW()
		WHERE tenant_id = $20 AND id = $21
	`
	_, err := r.db.Exec(ctx, query,
		supply.Barcode, supply.Name, supply.Category, supply.Subcategory,
		supply.Brand, supply.Manufacturer, supply.Unit, supply.UnitCost,
		supply.Department, supply.Location, supply.BatchNumber, supply.ExpiryDate,
		supply.Sterile, supply.Controlled, supply.RequiresPrescription,
		supply.Status, supply.Criticality, supply.LeadTimeDays, supply.SafetyStock,
		supply.TenantID, supply.ID,
	)
	return err
}

// UpdateThresholds persists recalculated reorder parameters without
// touching the rest of the row.
func (r *supplyRepo) UpdateThresholds(ctx context.Context, supply *models.Supply) error {
	query := `
		UPDATE supplies
		SET min_stock = $1, max_stock = $2, reorder_point = $3, reorder_quantity = $4, lead_time_days = $5, safety_stock = $6, updated_at = NOW()
		WHERE tenant_id = $7 AND id = $8
	`
	_, err := r.db.Exec(ctx, query,
		supply.MinStock, supply.MaxStock, supply.ReorderPoint, supply.ReorderQuantity,
		supply.LeadTimeDays, supply.SafetyStock, supply.TenantID, supply.ID,
	)
	return err
}

// Discontinue is the delete path. Rows are never removed because the
// movement ledger references them.
func (r *supplyRepo) Discontinue(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `
		UPDATE supplies
		SET status = 'discontinued', updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
	`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *supplyRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Supply, error) {
	query := `
		SELECT ` + supplyColumns + `
		FROM supplies
		WHERE tenant_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var supplies []*models.Supply
	for rows.Next() {
		supply, err := scanSupply(rows)
		if err != nil {
			return nil, err
		}
		supplies = append(supplies, supply)
	}
	return supplies, nil
}

func (r *supplyRepo) AdvancedSearch(ctx context.Context, tenantID uuid.UUID, filter *models.SupplySearchFilter) ([]*models.Supply, error) {
	// Set defaults
	if filter.Limit == 0 {
		filter.Limit = 50
	}
	if filter.SortBy == "" {
		filter.SortBy = "name"
	}
	if filter.SortOrder == "" {
		filter.SortOrder = "asc"
	}

	// Build query dynamically
	queryBase := `
		SELECT ` + supplyColumns + `
		FROM supplies
		WHERE tenant_id = $1
	`
	args := []interface{}{tenantID}
	conditionCount := 1

	// Full-text search across multiple fields
	if filter.Query != "" {
		conditionCount++
		queryBase += fmt.Sprintf(` AND (
			name ILIKE $%d OR
			sku ILIKE $%d OR
			COALESCE(barcode, '') ILIKE $%d OR
			COALESCE(brand, '') ILIKE $%d
		)`, conditionCount, conditionCount, conditionCount, conditionCount)
		args = append(args, "%"+filter.Query+"%")
	}

	if filter.Category != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND category = $%d`, conditionCount)
		args = append(args, *filter.Category)
	}

	if filter.Department != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND department = $%d`, conditionCount)
		args = append(args, *filter.Department)
	}

	if filter.Status != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND status = $%d`, conditionCount)
		args = append(args, *filter.Status)
	}

	if filter.Criticality != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND criticality = $%d`, conditionCount)
		args = append(args, *filter.Criticality)
	}

	if filter.Controlled != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND controlled = $%d`, conditionCount)
		args = append(args, *filter.Controlled)
	}

	// Stock range
	if filter.MinStock != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND current_stock >= $%d`, conditionCount)
		args = append(args, *filter.MinStock)
	}
	if filter.MaxStock != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND current_stock <= $%d`, conditionCount)
		args = append(args, *filter.MaxStock)
	}

	if filter.BelowReorder {
		queryBase += ` AND current_stock <= reorder_point`
	}

	if filter.ExpiringBefore != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND expiry_date IS NOT NULL AND expiry_date <= $%d`, conditionCount)
		args = append(args, *filter.ExpiringBefore)
	}

	// Ordering
	validSortFields := map[string]bool{
		"name": true, "sku": true, "current_stock": true, "expiry_date": true, "updated_at": true,
	}
	sortField := "name"
	if validSortFields[filter.SortBy] {
		sortField = filter.SortBy
	}
	sortOrder := "ASC"
	if strings.ToLower(filter.SortOrder) == "desc" {
		sortOrder = "DESC"
	}
	queryBase += fmt.Sprintf(` ORDER BY %s %s`, sortField, sortOrder)

	// Pagination
	conditionCount++
	queryBase += fmt.Sprintf(` LIMIT $%d`, conditionCount)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		conditionCount++
		queryBase += fmt.Sprintf(` OFFSET $%d`, conditionCount)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var supplies []*models.Supply
	for rows.Next() {
		supply, err := scanSupply(rows)
		if err != nil {
			return nil, err
		}
		supplies = append(supplies, supply)
	}

	return supplies, nil
}

func (r *supplyRepo) ListBelowReorder(ctx context.Context, tenantID uuid.UUID) ([]*models.Supply, error) {
	query := `
		SELECT ` + supplyColumns + `
		FROM supplies
		WHERE tenant_id = $1 AND status = 'active' AND current_stock <= reorder_point
		ORDER BY current_stock::float / NULLIF(reorder_point, 0) NULLS FIRST, name
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var supplies []*models.Supply
	for rows.Next() {
		supply, err := scanSupply(rows)
		if err != nil {
			return nil, err
		}
		supplies = append(supplies, supply)
	}
	return supplies, nil
}

func (r *supplyRepo) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*models.Supply, error) {
	query := `
		SELECT ` + supplyColumns + `
		FROM supplies
		WHERE tenant_id = $1 AND status = 'active'
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var supplies []*models.Supply
	for rows.Next() {
		supply, err := scanSupply(rows)
		if err != nil {
			return nil, err
		}
		supplies = append(supplies, supply)
	}
	return supplies, nil
}

func (r *supplyRepo) GetStats(ctx context.Context, tenantID uuid.UUID) (*models.SupplyStats, error) {
	stats := &models.SupplyStats{
		TenantID:      tenantID,
		ByCategory:    make(map[string]int),
		ByCriticality: make(map[string]int),
		GeneratedAt:   time.Now(),
	}

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(unit_cost * current_stock), 0),
			COUNT(*) FILTER (WHERE current_stock = 0),
			COUNT(*) FILTER (WHERE current_stock <= reorder_point),
			COUNT(*) FILTER (WHERE max_stock > 0 AND current_stock > max_stock * 1.5),
			COUNT(*) FILTER (WHERE expiry_date IS NOT NULL AND expiry_date <= NOW() + INTERVAL '30 days')
		FROM supplies
		WHERE tenant_id = $1 AND status = 'active'
	`
	err := r.db.QueryRow(ctx, query, tenantID).Scan(
		&stats.TotalSupplies, &stats.TotalValue, &stats.OutOfStock,
		&stats.BelowReorder, &stats.Overstocked, &stats.ExpiringSoon,
	)
	if err != nil {
		return nil, err
	}

	categoryQuery := `
		SELECT category, COUNT(*)
		FROM supplies
		WHERE tenant_id = $1 AND status = 'active'
		GROUP BY category
	`
	rows, err := r.db.Query(ctx, categoryQuery, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats.ByCategory[category] = count
	}

	criticalityQuery := `
		SELECT criticality, COUNT(*)
		FROM supplies
		WHERE tenant_id = $1 AND status = 'active'
		GROUP BY criticality
	`
	rows, err = r.db.Query(ctx, criticalityQuery, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var criticality string
		var count int
		if err := rows.Scan(&criticality, &count); err != nil {
			return nil, err
		}
		stats.ByCriticality[criticality] = count
	}

	return stats, nil
}
