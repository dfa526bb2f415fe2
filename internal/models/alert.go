package models

import (
	"time"

	"github.com/google/uuid"
)

// Alert types, generated by the monitor job when a supply crosses a threshold.
const (
	AlertLowStock   = "low_stock"
	AlertOutOfStock = "out_of_stock"
	AlertExpiring   = "expiring"
	AlertExpired    = "expired"
	AlertOverstock  = "overstock"
	AlertRecall     = "recall"
)

// Alert severities
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert lifecycle: unread -> read -> resolved, or dismissed (deleted).
const (
	AlertStatusUnread   = "unread"
	AlertStatusRead     = "read"
	AlertStatusResolved = "resolved"
)

// SupplyAlert is derived state, never authoritative: the monitor job creates
// it from supply thresholds and resolves it when the condition clears.
type SupplyAlert struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	TenantID   uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	SupplyID   uuid.UUID  `json:"supply_id" db:"supply_id"`
	Type       string     `json:"type" db:"type"`
	Severity   string     `json:"severity" db:"severity"`
	Message    string     `json:"message" db:"message"`
	Status     string     `json:"status" db:"status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at" db:"resolved_at"`
}

// AlertSearchFilter holds filter criteria for alert queries
type AlertSearchFilter struct {
	SupplyID *uuid.UUID `json:"supply_id,omitempty" query:"supply_id"` // Supply filter
	Type     *string    `json:"type,omitempty" query:"type"`           // Alert type filter
	Severity *string    `json:"severity,omitempty" query:"severity"`   // Severity filter
	Status   *string    `json:"status,omitempty" query:"status"`       // Lifecycle status filter
	Limit    int        `json:"limit,omitempty" query:"limit"`         // Page size (default: 50)
	Offset   int        `json:"offset,omitempty" query:"offset"`       // Page offset
}
