package models

import (
	"time"

	"github.com/google/uuid"
)

// JSONB maps to a Postgres jsonb column.
type JSONB map[string]interface{}

// Action constants for audit logs
const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// AuditLog records a change to a business entity. Written by the audit
// middleware for every mutating request; queryable for compliance.
type AuditLog struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	TenantID   uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	EntityType string     `json:"entity_type" db:"entity_type"`
	EntityID   string     `json:"entity_id" db:"entity_id"`
	Action     string     `json:"action" db:"action"`
	Details    JSONB      `json:"details" db:"details"`
	ChangedBy  *uuid.UUID `json:"changed_by" db:"changed_by"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// AuditLogFilters represents filters for querying audit logs
type AuditLogFilters struct {
	EntityType *string    `json:"entity_type" query:"entity_type"`
	EntityID   *string    `json:"entity_id" query:"entity_id"`
	Action     *string    `json:"action" query:"action"`
	ChangedBy  *uuid.UUID `json:"changed_by" query:"changed_by"`
	StartDate  *time.Time `json:"start_date" query:"start_date"`
	EndDate    *time.Time `json:"end_date" query:"end_date"`
	Limit      int        `json:"limit" query:"limit"`
	Offset     int        `json:"offset" query:"offset"`
}
