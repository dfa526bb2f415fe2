package handlers

import (
	"net/http"
	"strings"
	"time"

	"dataclinica/internal/common"
	"dataclinica/internal/models"
	"dataclinica/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// SupplyHandlers handles HTTP requests for the supply catalog.
type SupplyHandlers struct {
	supplyService services.SupplyService
}

func NewSupplyHandlers(supplyService services.SupplyService) *SupplyHandlers {
	return &SupplyHandlers{
		supplyService: supplyService,
	}
}

type supplyRequest struct {
	SKU                  string   `json:"sku"`
	Barcode              *string  `json:"barcode"`
	Name                 string   `json:"name"`
	Category             string   `json:"category"`
	Subcategory          *string  `json:"subcategory"`
	Brand                *string  `json:"brand"`
	Manufacturer         *string  `json:"manufacturer"`
	Unit                 string   `json:"unit"`
	UnitCost             *float64 `json:"unit_cost"`
	CurrentStock         int      `json:"current_stock"`
	MinStock             int      `json:"min_stock"`
	MaxStock             int      `json:"max_stock"`
	ReorderPoint         int      `json:"reorder_point"`
	ReorderQuantity      int      `json:"reorder_quantity"`
	LeadTimeDays         int      `json:"lead_time_days"`
	SafetyStock          int      `json:"safety_stock"`
	Department           *string  `json:"department"`
	Location             *string  `json:"location"`
	BatchNumber          *string  `json:"batch_number"`
	ExpiryDate           *string  `json:"expiry_date"`
	Sterile              bool     `json:"sterile"`
	Controlled           bool     `json:"controlled"`
	RequiresPrescription bool     `json:"requires_prescription"`
	Status               string   `json:"status"`
	Criticality          string   `json:"criticality"`
}

func (h *SupplyHandlers) validateSupply(req *supplyRequest) error {
	if strings.TrimSpace(req.SKU) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "SKU is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Supply name is required")
	}
	if strings.TrimSpace(req.Category) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Category is required")
	}
	if strings.TrimSpace(req.Unit) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Unit is required")
	}
	return nil
}

func (h *SupplyHandlers) buildSupply(req *supplyRequest) (*models.Supply, error) {
	supply := &models.Supply{
		SKU:                  strings.TrimSpace(req.SKU),
		Barcode:              req.Barcode,
		Name:                 strings.TrimSpace(req.Name),
		Category:             req.Category,
		Subcategory:          req.Subcategory,
		Brand:                req.Brand,
		Manufacturer:         req.Manufacturer,
		Unit:                 req.Unit,
		CurrentStock:         req.CurrentStock,
		MinStock:             req.MinStock,
		MaxStock:             req.MaxStock,
		ReorderPoint:         req.ReorderPoint,
		ReorderQuantity:      req.ReorderQuantity,
		LeadTimeDays:         req.LeadTimeDays,
		SafetyStock:          req.SafetyStock,
		Department:           req.Department,
		Location:             req.Location,
		BatchNumber:          req.BatchNumber,
		Sterile:              req.Sterile,
		Controlled:           req.Controlled,
		RequiresPrescription: req.RequiresPrescription,
		Status:               req.Status,
		Criticality:          req.Criticality,
	}
	if req.UnitCost != nil {
		supply.UnitCost = decimal.NewFromFloat(*req.UnitCost)
	}
	if req.ExpiryDate != nil && *req.ExpiryDate != "" {
		expiryDate, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid expiry date format, expected YYYY-MM-DD")
		}
		supply.ExpiryDate = &expiryDate
	}
	return supply, nil
}

// CreateSupply handles POST /v1/supplies
func (h *SupplyHandlers) CreateSupply(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req supplyRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid request format")
	}
	if err := h.validateSupply(&req); err != nil {
		return err
	}

	supply, err := h.buildSupply(&req)
	if err != nil {
		return err
	}

	if err := h.supplyService.Create(ctx, tenantID, supply); err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusCreated, supply)
}

// GetSupply handles GET /v1/supplies/:id
func (h *SupplyHandlers) GetSupply(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "supply id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	supply, err := h.supplyService.GetByID(ctx, tenantID, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, supply)
}

// UpdateSupply handles PUT /v1/supplies/:id
func (h *SupplyHandlers) UpdateSupply(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "supply id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req supplyRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid request format")
	}
	if err := h.validateSupply(&req); err != nil {
		return err
	}

	supply, err := h.buildSupply(&req)
	if err != nil {
		return err
	}
	supply.ID = id

	if err := h.supplyService.Update(ctx, tenantID, supply); err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, supply)
}

// DiscontinueSupply handles DELETE /v1/supplies/:id. Supplies are never
// hard-deleted; the movement ledger references them forever.
func (h *SupplyHandlers) DiscontinueSupply(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "supply id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.supplyService.Discontinue(ctx, tenantID, id); err != nil {
		return respondServiceError(c, err)
	}
	return common.SendMessage(c, http.StatusOK, "Supply discontinued")
}

// ListSupplies handles GET /v1/supplies with search and filter parameters.
func (h *SupplyHandlers) ListSupplies(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var filter models.SupplySearchFilter
	if err := c.Bind(&filter); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid query parameters")
	}
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)

	supplies, err := h.supplyService.AdvancedSearch(ctx, tenantID, &filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, supplies)
}

// GetStats handles GET /v1/supplies/stats
func (h *SupplyHandlers) GetStats(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	stats, err := h.supplyService.GetStats(ctx, tenantID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, stats)
}
