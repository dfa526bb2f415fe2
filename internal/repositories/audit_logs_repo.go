package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dataclinica/internal/models"

	"github.com/google/uuid"
)

type AuditLogsRepository interface {
	Create(ctx context.Context, auditLog *models.AuditLog) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.AuditLog, error)
	List(ctx context.Context, tenantID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
	GetByEntity(ctx context.Context, tenantID uuid.UUID, entityType, entityID string, limit, offset int) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db DB
}

func NewAuditLogsRepo(db DB) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Create(ctx context.Context, auditLog *models.AuditLog) error {
	auditLog.CreatedAt = time.Now()
	if auditLog.ID == uuid.Nil {
		auditLog.ID = uuid.New()
	}

	var detailsBytes []byte
	var err error
	if auditLog.Details != nil {
		detailsBytes, err = json.Marshal(auditLog.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal details: %w", err)
		}
	}

	query := `
		INSERT INTO audit_logs (id, tenant_id, entity_type, entity_id, action, details, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.Exec(ctx, query,
		auditLog.ID, auditLog.TenantID, auditLog.EntityType, auditLog.EntityID,
		auditLog.Action, detailsBytes, auditLog.ChangedBy, auditLog.CreatedAt,
	)
	return err
}

func (r *auditLogsRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.AuditLog, error) {
	auditLog := &models.AuditLog{}
	var detailsBytes []byte

	query := `
		SELECT id, tenant_id, entity_type, entity_id, action, details, changed_by, created_at
		FROM audit_logs
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(
		&auditLog.ID, &auditLog.TenantID, &auditLog.EntityType, &auditLog.EntityID,
		&auditLog.Action, &detailsBytes, &auditLog.ChangedBy, &auditLog.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(detailsBytes) > 0 {
		if err := json.Unmarshal(detailsBytes, &auditLog.Details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal details: %w", err)
		}
	}
	return auditLog, nil
}

func (r *auditLogsRepo) List(ctx context.Context, tenantID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}

	query := `
		SELECT id, tenant_id, entity_type, entity_id, action, details, changed_by, created_at
		FROM audit_logs
		WHERE tenant_id = $1
	`
	args := []interface{}{tenantID}
	argIdx := 1

	if filters.EntityType != nil {
		argIdx++
		query += fmt.Sprintf(" AND entity_type = $%d", argIdx)
		args = append(args, *filters.EntityType)
	}

	if filters.EntityID != nil {
		argIdx++
		query += fmt.Sprintf(" AND entity_id = $%d", argIdx)
		args = append(args, *filters.EntityID)
	}

	if filters.Action != nil {
		argIdx++
		query += fmt.Sprintf(" AND action = $%d", argIdx)
		args = append(args, *filters.Action)
	}

	if filters.ChangedBy != nil {
		argIdx++
		query += fmt.Sprintf(" AND changed_by = $%d", argIdx)
		args = append(args, *filters.ChangedBy)
	}

	if filters.StartDate != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *filters.StartDate)
	}

	if filters.EndDate != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *filters.EndDate)
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		argIdx++
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
		if filters.Offset > 0 {
			argIdx++
			query += fmt.Sprintf(" OFFSET $%d", argIdx)
			args = append(args, filters.Offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auditLogs []*models.AuditLog
	for rows.Next() {
		auditLog := &models.AuditLog{}
		var detailsBytes []byte

		err := rows.Scan(
			&auditLog.ID, &auditLog.TenantID, &auditLog.EntityType, &auditLog.EntityID,
			&auditLog.Action, &detailsBytes, &auditLog.ChangedBy, &auditLog.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if len(detailsBytes) > 0 {
			if err := json.Unmarshal(detailsBytes, &auditLog.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal details: %w", err)
			}
		}
		auditLogs = append(auditLogs, auditLog)
	}
	return auditLogs, nil
}

func (r *auditLogsRepo) GetByEntity(ctx context.Context, tenantID uuid.UUID, entityType, entityID string, limit, offset int) ([]*models.AuditLog, error) {
	filters := &models.AuditLogFilters{
		EntityType: &entityType,
		EntityID:   &entityID,
		Limit:      limit,
		Offset:     offset,
	}
	return r.List(ctx, tenantID, filters)
}
