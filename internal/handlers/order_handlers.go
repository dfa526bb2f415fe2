package handlers

import (
	"net/http"
	"strings"
	"time"

	"dataclinica/internal/common"
	"dataclinica/internal/models"
	"dataclinica/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// OrderHandlers handles supply order endpoints.
type OrderHandlers struct {
	orderService services.OrderService
}

func NewOrderHandlers(orderService services.OrderService) *OrderHandlers {
	return &OrderHandlers{
		orderService: orderService,
	}
}

type orderItemRequest struct {
	SupplyID string  `json:"supply_id"`
	Quantity int     `json:"quantity"`
	UnitCost float64 `json:"unit_cost"`
}

type orderRequest struct {
	Supplier         string             `json:"supplier"`
	Status           string             `json:"status"`
	Notes            *string            `json:"notes"`
	ExpectedDelivery *string            `json:"expected_delivery"`
	Items            []orderItemRequest `json:"items"`
}

// CreateOrder handles POST /v1/supplies/orders
func (h *OrderHandlers) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req orderRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid request format")
	}
	if strings.TrimSpace(req.Supplier) == "" {
		return common.SendValidationError(c, "supplier", "supplier is required")
	}

	order := &models.SupplyOrder{
		Supplier: strings.TrimSpace(req.Supplier),
		Status:   req.Status,
		Notes:    req.Notes,
	}
	if req.ExpectedDelivery != nil && *req.ExpectedDelivery != "" {
		expected, err := time.Parse("2006-01-02", *req.ExpectedDelivery)
		if err != nil {
			return common.SendValidationError(c, "expected_delivery", "expected YYYY-MM-DD")
		}
		order.ExpectedDelivery = &expected
	}

	for _, item := range req.Items {
		supplyID, err := common.ValidateUUID(item.SupplyID, "supply_id")
		if err != nil {
			return common.SendValidationError(c, "items.supply_id", err.Error())
		}
		order.Items = append(order.Items, &models.SupplyOrderItem{
			ID:       uuid.New(),
			SupplyID: supplyID,
			Quantity: item.Quantity,
			UnitCost: decimal.NewFromFloat(item.UnitCost),
		})
	}

	if err := h.orderService.Create(ctx, tenantID, userID, order); err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusCreated, order)
}

// GetOrder handles GET /v1/supplies/orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "order id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	order, err := h.orderService.GetByID(ctx, tenantID, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, order)
}

// ListOrders handles GET /v1/supplies/orders
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var filter models.OrderSearchFilter
	if err := c.Bind(&filter); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid query parameters")
	}
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)

	orders, err := h.orderService.List(ctx, tenantID, &filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, orders)
}

// UpdateOrderStatus handles PATCH /v1/supplies/orders/:id/status
func (h *OrderHandlers) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "order id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid request format")
	}
	if strings.TrimSpace(req.Status) == "" {
		return common.SendValidationError(c, "status", "status is required")
	}

	order, err := h.orderService.Transition(ctx, tenantID, id, req.Status)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, order)
}

// ReceiveOrderItems handles POST /v1/supplies/orders/:id/receive
func (h *OrderHandlers) ReceiveOrderItems(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "order id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req struct {
		Items []services.ReceiveItemRequest `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid request format")
	}

	order, err := h.orderService.ReceiveItems(ctx, tenantID, id, userID, req.Items)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, order)
}
