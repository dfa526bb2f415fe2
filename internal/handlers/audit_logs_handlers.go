package handlers

import (
	"net/http"

	"dataclinica/internal/common"
	"dataclinica/internal/models"
	"dataclinica/internal/services"

	"github.com/labstack/echo/v4"
)

// AuditLogsHandlers exposes the audit trail for compliance review.
type AuditLogsHandlers struct {
	auditService services.AuditLogsService
}

func NewAuditLogsHandlers(auditService services.AuditLogsService) *AuditLogsHandlers {
	return &AuditLogsHandlers{
		auditService: auditService,
	}
}

// ListAuditLogs handles GET /v1/audit-logs
func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var filters models.AuditLogFilters
	if err := c.Bind(&filters); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid query parameters")
	}
	filters.Limit, filters.Offset = common.ValidatePaginationParams(filters.Limit, filters.Offset)

	logs, err := h.auditService.List(ctx, tenantID, &filters)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, logs)
}

// GetEntityAuditLogs handles GET /v1/audit-logs/:entityType/:entityID
func (h *AuditLogsHandlers) GetEntityAuditLogs(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	entityType := c.Param("entityType")
	entityID := c.Param("entityID")
	if entityType == "" || entityID == "" {
		return common.SendValidationError(c, "entity", "entityType and entityID are required")
	}

	limit, offset := common.ValidatePaginationParams(0, 0)
	logs, err := h.auditService.GetByEntity(ctx, tenantID, entityType, entityID, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, logs)
}
