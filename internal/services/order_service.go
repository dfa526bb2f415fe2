package services

import (
	"context"
	"fmt"

	"dataclinica/internal/models"
	"dataclinica/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ReceiveItemRequest records a partial or full delivery of one line item.
type ReceiveItemRequest struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

type OrderService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, order *models.SupplyOrder) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SupplyOrder, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.OrderSearchFilter) ([]*models.SupplyOrder, error)
	Transition(ctx context.Context, tenantID, id uuid.UUID, toStatus string) (*models.SupplyOrder, error)
	ReceiveItems(ctx context.Context, tenantID, orderID, userID uuid.UUID, items []ReceiveItemRequest) (*models.SupplyOrder, error)
}

type orderService struct {
	orderRepo    repositories.OrderRepository
	supplyRepo   repositories.SupplyRepository
	stockService StockService
}

func NewOrderService(orderRepo repositories.OrderRepository, supplyRepo repositories.SupplyRepository, stockService StockService) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		supplyRepo:   supplyRepo,
		stockService: stockService,
	}
}

func (s *orderService) Create(ctx context.Context, tenantID, userID uuid.UUID, order *models.SupplyOrder) error {
	order.TenantID = tenantID
	order.ID = uuid.New()
	order.CreatedBy = userID
	if order.Status == "" {
		order.Status = models.OrderStatusDraft
	}
	if order.Status != models.OrderStatusDraft && order.Status != models.OrderStatusPending {
		return fmt.Errorf("orders start as draft or pending, not %q: %w", order.Status, ErrValidation)
	}
	if order.Supplier == "" {
		return fmt.Errorf("supplier is required: %w", ErrValidation)
	}
	if len(order.Items) == 0 {
		return fmt.Errorf("order needs at least one item: %w", ErrValidation)
	}

	total := decimal.Zero
	for _, item := range order.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("item quantity must be positive: %w", ErrValidation)
		}
		// Every line must reference a supply in this tenant.
		if _, err := s.supplyRepo.GetByID(ctx, tenantID, item.SupplyID); err != nil {
			if err == pgx.ErrNoRows {
				return fmt.Errorf("supply %s: %w", item.SupplyID, ErrNotFound)
			}
			return err
		}
		item.ReceivedQuantity = 0
		total = total.Add(item.UnitCost.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	order.Total = total

	return s.orderRepo.Create(ctx, order)
}

func (s *orderService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SupplyOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, tenantID, id)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, tenantID uuid.UUID, filter *models.OrderSearchFilter) ([]*models.SupplyOrder, error) {
	return s.orderRepo.List(ctx, tenantID, filter)
}

func (s *orderService) Transition(ctx context.Context, tenantID, id uuid.UUID, toStatus string) (*models.SupplyOrder, error) {
	order, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if models.IsTerminalOrderStatus(order.Status) {
		return nil, fmt.Errorf("order %s is %s and cannot change status: %w", id, order.Status, ErrInvalidTransition)
	}
	// partial and received are reached through ReceiveItems, never by a
	// bare status change.
	if toStatus == models.OrderStatusPartial || toStatus == models.OrderStatusReceived {
		return nil, fmt.Errorf("status %q is set by receiving items: %w", toStatus, ErrInvalidTransition)
	}
	if err := models.ValidateOrderTransition(order.Status, toStatus); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidTransition)
	}

	if err := s.orderRepo.UpdateStatus(ctx, tenantID, id, toStatus); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, tenantID, id)
}

// ReceiveItems books deliveries: each received line becomes an in movement
// with the order's batch details, and the order moves to partial or
// received depending on whether every line is complete.
func (s *orderService) ReceiveItems(ctx context.Context, tenantID, orderID, userID uuid.UUID, items []ReceiveItemRequest) (*models.SupplyOrder, error) {
	order, err := s.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusOrdered && order.Status != models.OrderStatusPartial {
		return nil, fmt.Errorf("order %s is %s, only ordered or partial orders can receive items: %w", orderID, order.Status, ErrInvalidTransition)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no items to receive: %w", ErrValidation)
	}

	lines := make(map[uuid.UUID]*models.SupplyOrderItem, len(order.Items))
	for _, item := range order.Items {
		lines[item.ID] = item
	}

	for _, recv := range items {
		line, ok := lines[recv.ItemID]
		if !ok {
			return nil, fmt.Errorf("item %s does not belong to order %s: %w", recv.ItemID, orderID, ErrValidation)
		}
		if recv.Quantity <= 0 {
			return nil, fmt.Errorf("received quantity must be positive: %w", ErrValidation)
		}
		if line.ReceivedQuantity+recv.Quantity > line.Quantity {
			return nil, fmt.Errorf("item %s would exceed ordered quantity %d: %w", recv.ItemID, line.Quantity, ErrValidation)
		}

		unitCost := line.UnitCost
		if _, err := s.stockService.Receive(ctx, tenantID, line.SupplyID, userID, &ReceiveRequest{
			Quantity: recv.Quantity,
			UnitCost: &unitCost,
		}); err != nil {
			return nil, err
		}

		line.ReceivedQuantity += recv.Quantity
		if err := s.orderRepo.UpdateItemReceived(ctx, tenantID, orderID, line.ID, line.ReceivedQuantity); err != nil {
			return nil, err
		}
	}

	newStatus := models.OrderStatusPartial
	if order.FullyReceived() {
		newStatus = models.OrderStatusReceived
	}
	if err := s.orderRepo.UpdateStatus(ctx, tenantID, orderID, newStatus); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, tenantID, orderID)
}
