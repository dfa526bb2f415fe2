package middleware

import (
	"time"

	"dataclinica/internal/common"
	"dataclinica/internal/models"
	"dataclinica/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AuditMiddleware records mutating requests in the audit trail.
type AuditMiddleware struct {
	auditService services.AuditLogsService
}

func NewAuditMiddleware(auditService services.AuditLogsService) *AuditMiddleware {
	return &AuditMiddleware{
		auditService: auditService,
	}
}

// AuditMutations logs every non-GET request after it completes. Reads are
// not audited; the trail tracks changes, not traffic.
func (m *AuditMiddleware) AuditMutations(entityType string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			method := c.Request().Method
			if method == "GET" || method == "HEAD" || method == "OPTIONS" {
				return err
			}

			ctx := c.Request().Context()
			tenantID, ok := common.GetTenantIDFromContext(ctx)
			if !ok {
				return err
			}

			var userPtr *uuid.UUID
			if userID, ok := common.GetUserIDFromContext(ctx); ok {
				userPtr = &userID
			}

			entityID := c.Param("id")
			if entityID == "" {
				entityID = c.Path()
			}

			details := models.JSONB{
				"method":    method,
				"path":      c.Path(),
				"status":    c.Response().Status,
				"ip":        c.RealIP(),
				"timestamp": time.Now().Format(time.RFC3339),
			}
			if err != nil {
				details["error"] = err.Error()
			}

			m.auditService.Record(ctx, tenantID, entityType, entityID, method+" "+c.Path(), details, userPtr)
			return err
		}
	}
}
