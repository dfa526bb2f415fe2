package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movement types. Quantity is stored as the signed delta applied to
// current_stock: in/return are positive, out/waste negative, adjustment
// either sign, transfer zero at the supply level (stock moves between
// departments, not out of the tenant).
const (
	MovementIn         = "in"
	MovementOut        = "out"
	MovementTransfer   = "transfer"
	MovementAdjustment = "adjustment"
	MovementWaste      = "waste"
	MovementReturn     = "return"
)

// SupplyMovement is an immutable ledger entry. Rows are append-only;
// there is no update or delete path anywhere in the repository.
// TransferQuantity carries the amount moved between departments on
// transfer rows, since their Quantity stays zero at the supply level.
type SupplyMovement struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	TenantID         uuid.UUID        `json:"tenant_id" db:"tenant_id"`
	SupplyID         uuid.UUID        `json:"supply_id" db:"supply_id"`
	Type             string           `json:"type" db:"type"`
	Quantity         int              `json:"quantity" db:"quantity"`
	TransferQuantity *int             `json:"transfer_quantity,omitempty" db:"transfer_quantity"`
	FromDepartment   *string          `json:"from_department" db:"from_department"`
	ToDepartment     *string          `json:"to_department" db:"to_department"`
	BatchNumber      *string          `json:"batch_number" db:"batch_number"`
	ExpiryDate       *time.Time       `json:"expiry_date" db:"expiry_date"`
	PatientID        *uuid.UUID       `json:"patient_id" db:"patient_id"`
	PerformedBy      uuid.UUID        `json:"performed_by" db:"performed_by"`
	Reason           *string          `json:"reason" db:"reason"`
	UnitCost         *decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
}

// ValidateMovementType checks the movement type against the closed set.
func ValidateMovementType(movementType string) error {
	switch movementType {
	case MovementIn, MovementOut, MovementTransfer, MovementAdjustment, MovementWaste, MovementReturn:
		return nil
	default:
		return fmt.Errorf("movement type must be one of: in, out, transfer, adjustment, waste, return")
	}
}

// MovementSearchFilter holds filter criteria for ledger queries
type MovementSearchFilter struct {
	SupplyID    *uuid.UUID `json:"supply_id,omitempty" query:"supply_id"`       // Supply filter
	Type        *string    `json:"type,omitempty" query:"type"`                 // Movement type filter
	PatientID   *uuid.UUID `json:"patient_id,omitempty" query:"patient_id"`     // Patient linkage filter
	PerformedBy *uuid.UUID `json:"performed_by,omitempty" query:"performed_by"` // Actor filter
	Department  *string    `json:"department,omitempty" query:"department"`     // Matches from or to department
	From        *time.Time `json:"from,omitempty" query:"from"`                 // Created-at lower bound
	To          *time.Time `json:"to,omitempty" query:"to"`                     // Created-at upper bound
	Limit       int        `json:"limit,omitempty" query:"limit"`               // Page size (default: 50)
	Offset      int        `json:"offset,omitempty" query:"offset"`             // Page offset
}
