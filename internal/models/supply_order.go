package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses. draft -> pending -> approved -> ordered -> partial -> received,
// cancelled reachable from any non-terminal state.
const (
	OrderStatusDraft     = "draft"
	OrderStatusPending   = "pending"
	OrderStatusApproved  = "approved"
	OrderStatusOrdered   = "ordered"
	OrderStatusPartial   = "partial"
	OrderStatusReceived  = "received"
	OrderStatusCancelled = "cancelled"
)

// orderTransitions encodes the status machine. Keys absent from the map are
// terminal states.
var orderTransitions = map[string][]string{
	OrderStatusDraft:    {OrderStatusPending, OrderStatusCancelled},
	OrderStatusPending:  {OrderStatusApproved, OrderStatusCancelled},
	OrderStatusApproved: {OrderStatusOrdered, OrderStatusCancelled},
	OrderStatusOrdered:  {OrderStatusPartial, OrderStatusReceived, OrderStatusCancelled},
	OrderStatusPartial:  {OrderStatusReceived, OrderStatusCancelled},
}

// ValidateOrderTransition reports whether moving from one status to another
// is allowed by the status machine.
func ValidateOrderTransition(from, to string) error {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("cannot transition order from %q to %q", from, to)
}

// IsTerminalOrderStatus reports whether a status admits no further transitions.
func IsTerminalOrderStatus(status string) bool {
	return len(orderTransitions[status]) == 0
}

type SupplyOrder struct {
	ID               uuid.UUID          `json:"id" db:"id"`
	TenantID         uuid.UUID          `json:"tenant_id" db:"tenant_id"`
	Supplier         string             `json:"supplier" db:"supplier"`
	Status           string             `json:"status" db:"status"`
	Total            decimal.Decimal    `json:"total" db:"total"`
	Notes            *string            `json:"notes" db:"notes"`
	OrderedAt        *time.Time         `json:"ordered_at" db:"ordered_at"`
	ExpectedDelivery *time.Time         `json:"expected_delivery" db:"expected_delivery"`
	ReceivedAt       *time.Time         `json:"received_at" db:"received_at"`
	CreatedBy        uuid.UUID          `json:"created_by" db:"created_by"`
	CreatedAt        time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" db:"updated_at"`
	Items            []*SupplyOrderItem `json:"items,omitempty" db:"-"`
}

type SupplyOrderItem struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	OrderID          uuid.UUID       `json:"order_id" db:"order_id"`
	SupplyID         uuid.UUID       `json:"supply_id" db:"supply_id"`
	Quantity         int             `json:"quantity" db:"quantity"`
	ReceivedQuantity int             `json:"received_quantity" db:"received_quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost" db:"unit_cost"`
}

// FullyReceived reports whether every line item has been received in full.
func (o *SupplyOrder) FullyReceived() bool {
	if len(o.Items) == 0 {
		return false
	}
	for _, item := range o.Items {
		if item.ReceivedQuantity < item.Quantity {
			return false
		}
	}
	return true
}

// OrderSearchFilter holds filter criteria for order queries
type OrderSearchFilter struct {
	Status   *string    `json:"status,omitempty" query:"status"`     // Status filter
	Supplier *string    `json:"supplier,omitempty" query:"supplier"` // Supplier name filter (ILIKE)
	From     *time.Time `json:"from,omitempty" query:"from"`         // Created-at lower bound
	To       *time.Time `json:"to,omitempty" query:"to"`             // Created-at upper bound
	Limit    int        `json:"limit,omitempty" query:"limit"`       // Page size (default: 50)
	Offset   int        `json:"offset,omitempty" query:"offset"`     // Page offset
}
