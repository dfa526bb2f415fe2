package handlers

import (
	"net/http"
	"strconv"

	"dataclinica/internal/common"
	"dataclinica/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ReplenishmentHandlers exposes the reorder-point calculation, stockout
// prediction and usage analysis endpoints.
type ReplenishmentHandlers struct {
	replenishmentService services.ReplenishmentService
}

func NewReplenishmentHandlers(replenishmentService services.ReplenishmentService) *ReplenishmentHandlers {
	return &ReplenishmentHandlers{
		replenishmentService: replenishmentService,
	}
}

func (h *ReplenishmentHandlers) identity(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, common.SendUnauthorizedError(c)
	}
	supplyID, err := common.ValidateUUID(c.Param("id"), "supply id")
	if err != nil {
		return uuid.Nil, uuid.Nil, common.SendValidationError(c, "id", err.Error())
	}
	return tenantID, supplyID, nil
}

// CalculateReorderPoint handles POST /v1/supplies/:id/reorder-point.
// lead_time_days and safety_stock default to the supply's stored values
// when omitted from the body.
func (h *ReplenishmentHandlers) CalculateReorderPoint(c echo.Context) error {
	tenantID, supplyID, err := h.identity(c)
	if err != nil {
		return err
	}

	var req struct {
		LeadTimeDays *int `json:"lead_time_days"`
		SafetyStock  *int `json:"safety_stock"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid request format")
	}

	result, err := h.replenishmentService.CalculateReorderPoint(c.Request().Context(), tenantID, supplyID, req.LeadTimeDays, req.SafetyStock)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, result)
}

// PredictStockout handles GET /v1/supplies/:id/predict-stockout
func (h *ReplenishmentHandlers) PredictStockout(c echo.Context) error {
	tenantID, supplyID, err := h.identity(c)
	if err != nil {
		return err
	}

	prediction, err := h.replenishmentService.PredictStockout(c.Request().Context(), tenantID, supplyID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, prediction)
}

// UsageAnalysis handles GET /v1/supplies/:id/usage-analysis
func (h *ReplenishmentHandlers) UsageAnalysis(c echo.Context) error {
	tenantID, supplyID, err := h.identity(c)
	if err != nil {
		return err
	}

	windowDays := 0
	if raw := c.QueryParam("window_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 365 {
			return common.SendValidationError(c, "window_days", "must be an integer between 1 and 365")
		}
		windowDays = parsed
	}

	analysis, err := h.replenishmentService.UsageAnalysis(c.Request().Context(), tenantID, supplyID, windowDays)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, analysis)
}
