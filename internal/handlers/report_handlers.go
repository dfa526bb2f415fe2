package handlers

import (
	"net/http"
	"time"

	"dataclinica/internal/common"
	"dataclinica/internal/services"

	"github.com/labstack/echo/v4"
)

// ReportHandlers generates archived inventory reports.
type ReportHandlers struct {
	reportService services.ReportService
}

func NewReportHandlers(reportService services.ReportService) *ReportHandlers {
	return &ReportHandlers{
		reportService: reportService,
	}
}

// GenerateUsageReport handles POST /v1/supplies/reports/usage. Defaults to the
// trailing 30 days when no period is given.
func (h *ReportHandlers) GenerateUsageReport(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		PeriodStart *string `json:"period_start"`
		PeriodEnd   *string `json:"period_end"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid request format")
	}

	periodEnd := time.Now()
	periodStart := periodEnd.AddDate(0, 0, -30)
	if req.PeriodStart != nil && *req.PeriodStart != "" {
		parsed, err := time.Parse("2006-01-02", *req.PeriodStart)
		if err != nil {
			return common.SendValidationError(c, "period_start", "expected YYYY-MM-DD")
		}
		periodStart = parsed
	}
	if req.PeriodEnd != nil && *req.PeriodEnd != "" {
		parsed, err := time.Parse("2006-01-02", *req.PeriodEnd)
		if err != nil {
			return common.SendValidationError(c, "period_end", "expected YYYY-MM-DD")
		}
		periodEnd = parsed
	}
	if err := common.ValidateDateRange(periodStart, periodEnd); err != nil {
		return common.SendValidationError(c, "period", err.Error())
	}

	result, err := h.reportService.GenerateUsageReport(ctx, tenantID, periodStart, periodEnd)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusCreated, result)
}
