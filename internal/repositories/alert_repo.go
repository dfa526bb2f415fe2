package repositories

import (
	"context"
	"fmt"
	"time"

	"dataclinica/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AlertRepository interface {
	Create(ctx context.Context, alert *models.SupplyAlert) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SupplyAlert, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.AlertSearchFilter) ([]*models.SupplyAlert, error)
	FindOpenBySupplyAndType(ctx context.Context, tenantID, supplyID uuid.UUID, alertType string) (*models.SupplyAlert, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
	Resolve(ctx context.Context, tenantID, id uuid.UUID) error
	ResolveOpenForSupply(ctx context.Context, tenantID, supplyID uuid.UUID, alertType string) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	CountUnread(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type alertRepo struct {
	db DB
}

func NewAlertRepo(db DB) AlertRepository {
	return &alertRepo{db: db}
}

const alertColumns = `id, tenant_id, supply_id, type, severity, message, status, created_at, resolved_at`

func scanAlert(row interface{ Scan(...interface{}) error }) (*models.SupplyAlert, error) {
	alert := &models.SupplyAlert{}
	err := row.Scan(
		&alert.ID, &alert.TenantID, &alert.SupplyID, &alert.Type,
		&alert.Severity, &alert.Message, &alert.Status,
		&alert.CreatedAt, &alert.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return alert, nil
}

func (r *alertRepo) Create(ctx context.Context, alert *models.SupplyAlert) error {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	alert.CreatedAt = time.Now()

	query := `
		INSERT INTO supply_alerts (id, tenant_id, supply_id, type, severity, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		alert.ID, alert.TenantID, alert.SupplyID, alert.Type,
		alert.Severity, alert.Message, alert.Status, alert.CreatedAt,
	)
	return err
}

func (r *alertRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SupplyAlert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM supply_alerts
		WHERE tenant_id = $1 AND id = $2
	`
	return scanAlert(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *alertRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.AlertSearchFilter) ([]*models.SupplyAlert, error) {
	if filter == nil {
		filter = &models.AlertSearchFilter{}
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	query := `
		SELECT ` + alertColumns + `
		FROM supply_alerts
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

	if filter.Severity != nil {
		conditionCount++
		query += fmt.Sprintf(` AND severity = $%d`, conditionCount)
		args = append(args, *filter.Severity)
	}

	if filter.Status != nil {
		conditionCount++
		query += fmt.Sprintf(` AND status = $%d`, conditionCount)
		args = append(args, *filter.Status)
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

	var alerts []*models.SupplyAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

// FindOpenBySupplyAndType returns the newest unresolved alert of the given
// type, or nil when there is none. The monitor job uses this to avoid
// stacking duplicate alerts for a condition that is still open.
func (r *alertRepo) FindOpenBySupplyAndType(ctx context.Context, tenantID, supplyID uuid.UUID, alertType string) (*models.SupplyAlert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM supply_alerts
		WHERE tenant_id = $1 AND supply_id = $2 AND type = $3 AND status != 'resolved'
		ORDER BY created_at DESC
		LIMIT 1
	`
	alert, err := scanAlert(r.db.QueryRow(ctx, query, tenantID, supplyID, alertType))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return alert, nil
}

func (r *alertRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	query := `
		UPDATE supply_alerts
		SET status = $1
		WHERE tenant_id = $2 AND id = $3
	`
	_, err := r.db.Exec(ctx, query, status, tenantID, id)
	return err
}

func (r *alertRepo) Resolve(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `
		UPDATE supply_alerts
		SET status = 'resolved', resolved_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND status != 'resolved'
	`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *alertRepo) ResolveOpenForSupply(ctx context.Context, tenantID, supplyID uuid.UUID, alertType string) error {
	query := `
		UPDATE supply_alerts
		SET status = 'resolved', resolved_at = NOW()
		WHERE tenant_id = $1 AND supply_id = $2 AND type = $3 AND status != 'resolved'
	`
	_, err := r.db.Exec(ctx, query, tenantID, supplyID, alertType)
	return err
}

func (r *alertRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM supply_alerts WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *alertRepo) CountUnread(ctx context.Context, tenantID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM supply_alerts WHERE tenant_id = $1 AND status = 'unread'`
	var count int
	err := r.db.QueryRow(ctx, query, tenantID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
