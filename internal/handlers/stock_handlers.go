package handlers

import (
	"net/http"

	"dataclinica/internal/common"
	"dataclinica/internal/models"
	"dataclinica/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// StockHandlers handles stock movement endpoints: consume, receive,
// transfer, adjust and the movement ledger.
type StockHandlers struct {
	stockService services.StockService
}

func NewStockHandlers(stockService services.StockService) *StockHandlers {
	return &StockHandlers{
		stockService: stockService,
	}
}

func (h *StockHandlers) identity(c echo.Context) (uuid.UUID, uuid.UUID, uuid.UUID, error) {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, uuid.Nil, common.SendUnauthorizedError(c)
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, uuid.Nil, common.SendUnauthorizedError(c)
	}
	supplyID, err := common.ValidateUUID(c.Param("id"), "supply id")
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, common.SendValidationError(c, "id", err.Error())
	}
	return tenantID, userID, supplyID, nil
}

// ConsumeStock handles POST /v1/supplies/:id/consume
func (h *StockHandlers) ConsumeStock(c echo.Context) error {
	tenantID, userID, supplyID, err := h.identity(c)
	if err != nil {
		return err
	}

	var req services.ConsumeRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid request format")
	}

	movement, err := h.stockService.Consume(c.Request().Context(), tenantID, supplyID, userID, &req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusCreated, movement)
}

// ReceiveStock handles POST /v1/supplies/:id/receive
func (h *StockHandlers) ReceiveStock(c echo.Context) error {
	tenantID, userID, supplyID, err := h.identity(c)
	if err != nil {
		return err
	}

	var req services.ReceiveRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid request format")
	}

	movement, err := h.stockService.Receive(c.Request().Context(), tenantID, supplyID, userID, &req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusCreated, movement)
}

// TransferStock handles POST /v1/supplies/:id/transfer
func (h *StockHandlers) TransferStock(c echo.Context) error {
	tenantID, userID, supplyID, err := h.identity(c)
	if err != nil {
		return err
	}

	var req services.TransferRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid request format")
	}

	movement, err := h.stockService.Transfer(c.Request().Context(), tenantID, supplyID, userID, &req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusCreated, movement)
}

// AdjustStock handles PATCH /v1/supplies/:id/stock
func (h *StockHandlers) AdjustStock(c echo.Context) error {
	tenantID, userID, supplyID, err := h.identity(c)
	if err != nil {
		return err
	}

	var req services.AdjustRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid request format")
	}

	movement, err := h.stockService.Adjust(c.Request().Context(), tenantID, supplyID, userID, &req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusCreated, movement)
}

// ListSupplyMovements handles GET /v1/supplies/:id/movements
func (h *StockHandlers) ListSupplyMovements(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	supplyID, err := common.ValidateUUID(c.Param("id"), "supply id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var filter models.MovementSearchFilter
	if err := c.Bind(&filter); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid query parameters")
	}
	limit, offset := common.ValidatePaginationParams(filter.Limit, filter.Offset)

	movements, err := h.stockService.ListSupplyMovements(ctx, tenantID, supplyID, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, movements)
}

// ListMovements handles GET /v1/supplies/movements across all supplies.
func (h *StockHandlers) ListMovements(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var filter models.MovementSearchFilter
	if err := c.Bind(&filter); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid query parameters")
	}
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)

	movements, err := h.stockService.ListMovements(ctx, tenantID, &filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, movements)
}
