package services

import (
	"context"

	"dataclinica/internal/models"
	"dataclinica/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type AuditLogsService interface {
	Record(ctx context.Context, tenantID uuid.UUID, entityType, entityID, action string, details models.JSONB, changedBy *uuid.UUID)
	List(ctx context.Context, tenantID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
	GetByEntity(ctx context.Context, tenantID uuid.UUID, entityType, entityID string, limit, offset int) ([]*models.AuditLog, error)
}

type auditLogsService struct {
	auditRepo repositories.AuditLogsRepository
}

func NewAuditLogsService(auditRepo repositories.AuditLogsRepository) AuditLogsService {
	return &auditLogsService{auditRepo: auditRepo}
}

// Record writes an audit entry. Audit failures never fail the request that
// produced them; they are logged and dropped.
func (s *auditLogsService) Record(ctx context.Context, tenantID uuid.UUID, entityType, entityID, action string, details models.JSONB, changedBy *uuid.UUID) {
	entry := &models.AuditLog{
		TenantID:   tenantID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Details:    details,
		ChangedBy:  changedBy,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Msg("failed to write audit log")
	}
}

func (s *auditLogsService) List(ctx context.Context, tenantID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	return s.auditRepo.List(ctx, tenantID, filters)
}

func (s *auditLogsService) GetByEntity(ctx context.Context, tenantID uuid.UUID, entityType, entityID string, limit, offset int) ([]*models.AuditLog, error) {
	return s.auditRepo.GetByEntity(ctx, tenantID, entityType, entityID, limit, offset)
}
