package repositories

import (
	"context"
	"fmt"
	"time"

	"dataclinica/internal/models"

	"github.com/google/uuid"
)

// MovementRepository is append-only: the ledger has no update or delete.
// Corrections are recorded as compensating adjustment movements.
type MovementRepository interface {
	CreateWithStockDelta(ctx context.Context, movement *models.SupplyMovement, delta int) (int, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SupplyMovement, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.MovementSearchFilter) ([]*models.SupplyMovement, error)
	ListBySupply(ctx context.Context, tenantID, supplyID uuid.UUID, limit, offset int) ([]*models.SupplyMovement, error)
	DailyConsumption(ctx context.Context, tenantID, supplyID uuid.UUID, since time.Time) ([]models.DailyUsage, error)
	TotalConsumedBetween(ctx context.Context, tenantID, supplyID uuid.UUID, from, to time.Time) (int, error)
}

type movementRepo struct {
	db DB
}

func NewMovementRepo(db DB) MovementRepository {
	return &movementRepo{db: db}
}

const movementColumns = `id, tenant_id, supply_id, type, quantity, transfer_quantity, from_department, to_department, batch_number, expiry_date, patient_id, performed_by, reason, unit_cost, created_at`

const movementInsert = `
	INSERT INTO supply_movements (id, tenant_id, supply_id, type, quantity, transfer_quantity, from_department, to_department, batch_number, expiry_date, patient_id, performed_by, reason, unit_cost, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`

func scanMovement(row interface{ Scan(...interface{}) error }) (*models.SupplyMovement, error) {
	m := &models.SupplyMovement{}
	err := row.Scan(
		&m.ID, &m.TenantID, &m.SupplyID, &m.Type, &m.Quantity, &m.TransferQuantity,
		&m.FromDepartment, &m.ToDepartment, &m.BatchNumber, &m.ExpiryDate,
		&m.PatientID, &m.PerformedBy, &m.Reason, &m.UnitCost, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// CreateWithStockDelta appends the ledger entry and applies its stock effect
// in one transaction, so a failed insert can never leave the stock level
// without its ledger row. The guarded UPDATE refuses deltas that would drive
// the level negative; callers translate pgx.ErrNoRows into an
// insufficient-stock error. A zero delta skips the stock update entirely
// (transfers change departments, not the tenant-level count).
func (r *movementRepo) CreateWithStockDelta(ctx context.Context, movement *models.SupplyMovement, delta int) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var newStock int
	if delta != 0 {
		stockQuery := `
			UPDATE supplies
			SET current_stock = current_stock + $1, updated_at = NOW()
			WHERE tenant_id = $2 AND id = $3 AND current_stock + $1 >= 0
			RETURNING current_stock
		`
		if err := tx.QueryRow(ctx, stockQuery, delta, movement.TenantID, movement.SupplyID).Scan(&newStock); err != nil {
			return 0, err
		}
	}

	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	movement.CreatedAt = time.Now()

	_, err = tx.Exec(ctx, movementInsert,
		movement.ID, movement.TenantID, movement.SupplyID, movement.Type,
		movement.Quantity, movement.TransferQuantity,
		movement.FromDepartment, movement.ToDepartment,
		movement.BatchNumber, movement.ExpiryDate, movement.PatientID,
		movement.PerformedBy, movement.Reason, movement.UnitCost, movement.CreatedAt,
	)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newStock, nil
}

func (r *movementRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SupplyMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM supply_movements
		WHERE tenant_id = $1 AND id = $2
	`
	return scanMovement(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *movementRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.MovementSearchFilter) ([]*models.SupplyMovement, error) {
	if filter == nil {
		filter = &models.MovementSearchFilter{}
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	query := `
		SELECT ` + movementColumns + `
		FROM supply_movements
		WHERE tenant_id = $1
	`
	args := []interface{}{tenantID}
	conditionCount := 1

	if filter.SupplyID != nil {
		conditionCount++
		query += fmt.Sprintf(` AND supply_id = $%d`, conditionCount)
		args = append(args, *filter.SupplyID)
	}

	if filter.Type != nil {
		conditionCount++
		query += fmt.Sprintf(` AND type = $%d`, conditionCount)
		args = append(args, *filter.Type)
	}

	if filter.PatientID != nil {
		conditionCount++
		query += fmt.Sprintf(` AND patient_id = $%d`, conditionCount)
		args = append(args, *filter.PatientID)
	}

	if filter.PerformedBy != nil {
		conditionCount++
		query += fmt.Sprintf(` AND performed_by = $%d`, conditionCount)
		args = append(args, *filter.PerformedBy)
	}

	if filter.Department != nil {
		conditionCount++
		query += fmt.Sprintf(` AND (from_department = $%d OR to_department = $%d)`, conditionCount, conditionCount)
		args = append(args, *filter.Department)
	}

	if filter.From != nil {
		conditionCount++
		query += fmt.Sprintf(` AND created_at >= $%d`, conditionCount)
		args = append(args, *filter.From)
	}

	if filter.To != nil {
		conditionCount++
		query += fmt.Sprintf(` AND created_at <= $%d`, conditionCount)
		args = append(args, *filter.To)
	}

	query += ` ORDER BY created_at DESC`

	conditionCount++
	query += fmt.Sprintf(` LIMIT $%d`, conditionCount)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		conditionCount++
		query += fmt.Sprintf(` OFFSET $%d`, conditionCount)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*models.SupplyMovement
	for rows.Next() {
		movement, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}
	return movements, nil
}

func (r *movementRepo) ListBySupply(ctx context.Context, tenantID, supplyID uuid.UUID, limit, offset int) ([]*models.SupplyMovement, error) {
	filter := &models.MovementSearchFilter{
		SupplyID: &supplyID,
		Limit:    limit,
		Offset:   offset,
	}
	return r.List(ctx, tenantID, filter)
}

// DailyConsumption buckets out and waste movements per calendar day since
// the cutoff. Days with no consumption are absent from the result; the
// usage window divisor comes from the caller, not the row count.
func (r *movementRepo) DailyConsumption(ctx context.Context, tenantID, supplyID uuid.UUID, since time.Time) ([]models.DailyUsage, error) {
	query := `
		SELECT DATE(created_at), SUM(ABS(quantity))
		FROM supply_movements
		WHERE tenant_id = $1 AND supply_id = $2 AND type IN ('out', 'waste') AND created_at >= $3
		GROUP BY DATE(created_at)
		ORDER BY DATE(created_at)
	`
	rows, err := r.db.Query(ctx, query, tenantID, supplyID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usage []models.DailyUsage
	for rows.Next() {
		var day models.DailyUsage
		if err := rows.Scan(&day.Date, &day.Quantity); err != nil {
			return nil, err
		}
		usage = append(usage, day)
	}
	return usage, nil
}

// TotalConsumedBetween sums out and waste movements inside a closed window,
// so historical report periods do not pick up consumption after their end.
func (r *movementRepo) TotalConsumedBetween(ctx context.Context, tenantID, supplyID uuid.UUID, from, to time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(ABS(quantity)), 0)
		FROM supply_movements
		WHERE tenant_id = $1 AND supply_id = $2 AND type IN ('out', 'waste') AND created_at >= $3 AND created_at <= $4
	`
	var total int
	err := r.db.QueryRow(ctx, query, tenantID, supplyID, from, to).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}
