package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Supply lifecycle statuses
const (
	SupplyStatusActive       = "active"
	SupplyStatusInactive     = "inactive"
	SupplyStatusDiscontinued = "discontinued"
	SupplyStatusRecalled     = "recalled"
)

// Supply criticality levels
const (
	CriticalityLow    = "low"
	CriticalityMedium = "medium"
	CriticalityHigh   = "high"
)

// Derived stock statuses (computed from thresholds, never stored)
const (
	StockStatusOK          = "ok"
	StockStatusLow         = "low"
	StockStatusCritical    = "critical"
	StockStatusOutOfStock  = "out_of_stock"
	StockStatusOverstocked = "overstocked"
)

type Supply struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	TenantID             uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	SKU                  string          `json:"sku" db:"sku"`
	Barcode              *string         `json:"barcode" db:"barcode"`
	Name                 string          `json:"name" db:"name"`
	Category             string          `json:"category" db:"category"`
	Subcategory          *string         `json:"subcategory" db:"subcategory"`
	Brand                *string         `json:"brand" db:"brand"`
	Manufacturer         *string         `json:"manufacturer" db:"manufacturer"`
	Unit                 string          `json:"unit" db:"unit"`
	UnitCost             decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	CurrentStock         int             `json:"current_stock" db:"current_stock"`
	MinStock             int             `json:"min_stock" db:"min_stock"`
	MaxStock             int             `json:"max_stock" db:"max_stock"`
	ReorderPoint         int             `json:"reorder_point" db:"reorder_point"`
	ReorderQuantity      int             `json:"reorder_quantity" db:"reorder_quantity"`
	LeadTimeDays         int             `json:"lead_time_days" db:"lead_time_days"`
	SafetyStock          int             `json:"safety_stock" db:"safety_stock"`
	Department           *string         `json:"department" db:"department"`
	Location             *string         `json:"location" db:"location"`
	BatchNumber          *string         `json:"batch_number" db:"batch_number"`
	ExpiryDate           *time.Time      `json:"expiry_date" db:"expiry_date"`
	Sterile              bool            `json:"sterile" db:"sterile"`
	Controlled           bool            `json:"controlled" db:"controlled"`
	RequiresPrescription bool            `json:"requires_prescription" db:"requires_prescription"`
	Status               string          `json:"status" db:"status"`
	Criticality          string          `json:"criticality" db:"criticality"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// ValidateThresholds enforces 0 <= min_stock <= reorder_point <= max_stock
// and current_stock >= 0.
func (s *Supply) ValidateThresholds() error {
	if s.MinStock < 0 {
		return fmt.Errorf("min_stock cannot be negative")
	}
	if s.ReorderPoint < s.MinStock {
		return fmt.Errorf("reorder_point cannot be below min_stock")
	}
	if s.MaxStock < s.ReorderPoint {
		return fmt.Errorf("max_stock cannot be below reorder_point")
	}
	if s.CurrentStock < 0 {
		return fmt.Errorf("current_stock cannot be negative")
	}
	return nil
}

// StockStatus derives the presentation status from the thresholds.
// Out-of-stock wins over everything else regardless of other fields.
func (s *Supply) StockStatus() string {
	switch {
	case s.CurrentStock == 0:
		return StockStatusOutOfStock
	case s.CurrentStock <= s.MinStock:
		return StockStatusCritical
	case s.CurrentStock <= s.ReorderPoint:
		return StockStatusLow
	case s.MaxStock > 0 && float64(s.CurrentStock) > float64(s.MaxStock)*1.5:
		return StockStatusOverstocked
	default:
		return StockStatusOK
	}
}

// SupplySearchFilter holds search and filter criteria for supply queries
type SupplySearchFilter struct {
	Query          string     `json:"query,omitempty" query:"query"`                     // Full-text search across name, sku, brand
	Category       *string    `json:"category,omitempty" query:"category"`               // Category filter
	Department     *string    `json:"department,omitempty" query:"department"`           // Department filter
	Status         *string    `json:"status,omitempty" query:"status"`                   // Lifecycle status filter
	Criticality    *string    `json:"criticality,omitempty" query:"criticality"`         // Criticality filter
	Controlled     *bool      `json:"controlled,omitempty" query:"controlled"`           // Controlled-substance flag
	MinStock       *int       `json:"min_stock,omitempty" query:"min_stock"`             // Minimum current stock
	MaxStock       *int       `json:"max_stock,omitempty" query:"max_stock"`             // Maximum current stock
	BelowReorder   bool       `json:"below_reorder,omitempty" query:"below_reorder"`     // Only supplies at or under reorder point
	ExpiringBefore *time.Time `json:"expiring_before,omitempty" query:"expiring_before"` // Expiry date cutoff
	SortBy         string     `json:"sort_by,omitempty" query:"sort_by"`                 // Sort field: name, sku, current_stock, expiry_date, updated_at
	SortOrder      string     `json:"sort_order,omitempty" query:"sort_order"`           // Sort order: asc, desc
	Limit          int        `json:"limit,omitempty" query:"limit"`                     // Page size (default: 50)
	Offset         int        `json:"offset,omitempty" query:"offset"`                   // Page offset
}

// SupplyStats aggregates inventory figures for the stats endpoint.
type SupplyStats struct {
	TenantID      uuid.UUID       `json:"tenant_id"`
	TotalSupplies int             `json:"total_supplies"`
	TotalValue    decimal.Decimal `json:"total_value"`
	OutOfStock    int             `json:"out_of_stock"`
	BelowReorder  int             `json:"below_reorder"`
	Overstocked   int             `json:"overstocked"`
	ExpiringSoon  int             `json:"expiring_soon"`
	ByCategory    map[string]int  `json:"by_category"`
	ByCriticality map[string]int  `json:"by_criticality"`
	GeneratedAt   time.Time       `json:"generated_at"`
}
