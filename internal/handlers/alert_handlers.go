package handlers

import (
	"net/http"

	"dataclinica/internal/common"
	"dataclinica/internal/models"
	"dataclinica/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AlertHandlers handles alert lifecycle endpoints. Alerts are created by
// the monitor job, never over HTTP.
type AlertHandlers struct {
	alertService services.AlertService
}

func NewAlertHandlers(alertService services.AlertService) *AlertHandlers {
	return &AlertHandlers{
		alertService: alertService,
	}
}

func (h *AlertHandlers) identity(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, common.SendUnauthorizedError(c)
	}
	alertID, err := common.ValidateUUID(c.Param("id"), "alert id")
	if err != nil {
		return uuid.Nil, uuid.Nil, common.SendValidationError(c, "id", err.Error())
	}
	return tenantID, alertID, nil
}

// ListAlerts handles GET /v1/supplies/alerts
func (h *AlertHandlers) ListAlerts(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var filter models.AlertSearchFilter
	if err := c.Bind(&filter); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid query parameters")
	}
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)

	alerts, err := h.alertService.List(ctx, tenantID, &filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, alerts)
}

// UnreadCount handles GET /v1/supplies/alerts/unread-count
func (h *AlertHandlers) UnreadCount(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	count, err := h.alertService.CountUnread(ctx, tenantID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, map[string]int{"unread": count})
}

// MarkRead handles PATCH /v1/supplies/alerts/:id/read
func (h *AlertHandlers) MarkRead(c echo.Context) error {
	tenantID, alertID, err := h.identity(c)
	if err != nil {
		return err
	}

	if err := h.alertService.MarkRead(c.Request().Context(), tenantID, alertID); err != nil {
		return respondServiceError(c, err)
	}
	return common.SendMessage(c, http.StatusOK, "Alert marked as read")
}

// ResolveAlert handles PATCH /v1/supplies/alerts/:id/resolve
func (h *AlertHandlers) ResolveAlert(c echo.Context) error {
	tenantID, alertID, err := h.identity(c)
	if err != nil {
		return err
	}

	if err := h.alertService.Resolve(c.Request().Context(), tenantID, alertID); err != nil {
		return respondServiceError(c, err)
	}
	return common.SendMessage(c, http.StatusOK, "Alert resolved")
}

// DismissAlert handles DELETE /v1/supplies/alerts/:id
func (h *AlertHandlers) DismissAlert(c echo.Context) error {
	tenantID, alertID, err := h.identity(c)
	if err != nil {
		return err
	}

	if err := h.alertService.Dismiss(c.Request().Context(), tenantID, alertID); err != nil {
		return respondServiceError(c, err)
	}
	return common.SendMessage(c, http.StatusOK, "Alert dismissed")
}
