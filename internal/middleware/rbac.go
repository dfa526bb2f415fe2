package middleware

import (
	"net/http"

	"dataclinica/internal/common"
	"dataclinica/internal/services"

	"github.com/labstack/echo/v4"
)

type RBACMiddleware struct {
	rbacService services.RBACService
}

func NewRBACMiddleware(rbacService services.RBACService) *RBACMiddleware {
	return &RBACMiddleware{
		rbacService: rbacService,
	}
}

// RequirePermission rejects callers whose role lacks the named permission.
func (m *RBACMiddleware) RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if _, ok := common.GetUserIDFromContext(ctx); !ok {
				return common.SendUnauthorizedError(c)
			}
			role, ok := common.GetUserRoleFromContext(ctx)
			if !ok {
				return common.SendUnauthorizedError(c)
			}

			hasPermission, err := m.rbacService.RoleHasPermission(ctx, role, permission)
			if err != nil {
				return common.SendServerError(c, "Error checking permission")
			}
			if !hasPermission {
				return common.SendError(c, http.StatusForbidden, common.CodeForbidden, "Insufficient permissions")
			}

			return next(c)
		}
	}
}
