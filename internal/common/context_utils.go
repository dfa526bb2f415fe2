package common

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	TenantIDKey contextKey = "tenant_id"
	UserRoleKey contextKey = "user_role"
)

// Error codes carried in the response envelope so the UI can branch on the
// failure class instead of parsing message strings.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeInsufficientHistory = "INSUFFICIENT_HISTORY"
	CodeRateLimited         = "RATE_LIMITED"
	CodeServerError         = "SERVER_ERROR"
)

// Envelope is the uniform response body: {success, data?, error?, message?}.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// APIError is the structured error half of the envelope.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// SendData wraps a payload in a success envelope.
func SendData(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

// SendMessage wraps an informational message in a success envelope.
func SendMessage(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: true, Message: message})
}

// SendError wraps a structured error in a failure envelope.
func SendError(c echo.Context, status int, code, message string) error {
	return c.JSON(status, Envelope{Success: false, Error: &APIError{Code: code, Message: message}})
}

// SendValidationError reports a per-field validation failure.
func SendValidationError(c echo.Context, field, message string) error {
	return c.JSON(http.StatusBadRequest, Envelope{
		Success: false,
		Error: &APIError{
			Code:    CodeValidation,
			Message: "Validation failed",
			Details: map[string]string{field: message},
		},
	})
}

// SendNotFoundError reports a missing resource.
func SendNotFoundError(c echo.Context, resource string) error {
	return SendError(c, http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// SendServerError reports an internal failure without leaking details.
func SendServerError(c echo.Context, message string) error {
	return SendError(c, http.StatusInternalServerError, CodeServerError, message)
}

// SendUnauthorizedError reports a missing or invalid identity.
func SendUnauthorizedError(c echo.Context) error {
	return SendError(c, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized access")
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetTenantIDFromContext extracts the tenant ID from the request context
func GetTenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
	return tenantID, ok
}

// GetUserRoleFromContext extracts the caller's role from the request context
func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleKey).(string)
	return role, ok
}

// ValidateUUID parses and validates a UUID path or query parameter.
func ValidateUUID(idStr, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID", fieldName)
	}
	return id, nil
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidatePositiveInteger validates positive integer values with upper bounds
func ValidatePositiveInteger(value int, fieldName string, maxValue int) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	if value > maxValue {
		return fmt.Errorf("%s cannot exceed %d", fieldName, maxValue)
	}
	return nil
}

// ValidatePaginationParams clamps limit/offset to safe bounds.
func ValidatePaginationParams(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ValidateSortOrder normalizes a sort order parameter.
func ValidateSortOrder(sortOrder string) string {
	if strings.EqualFold(sortOrder, "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateDateRange rejects inverted or unreasonably large ranges.
func ValidateDateRange(start, end time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("end date cannot be before start date")
	}
	if end.Sub(start) > 10*365*24*time.Hour {
		return fmt.Errorf("date range cannot exceed 10 years")
	}
	return nil
}

// SafeString safely dereferences string pointers.
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
