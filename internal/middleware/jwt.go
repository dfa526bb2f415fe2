package middleware

import (
	"context"
	"net/http"

	"dataclinica/internal/common"
	"dataclinica/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTConfig returns the token validation middleware. Signature and expiry
// checks happen here; LoadIdentity moves the claims into the request
// context afterwards.
func JWTConfig(jwtSecret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(services.TokenClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return common.SendError(c, http.StatusUnauthorized, common.CodeUnauthorized, "Invalid token")
		},
	})
}

// LoadIdentity copies the validated claims into the request context so
// services and the RBAC check see the caller's user, tenant and role.
// Tenant and role come from the claims, so no database round trip happens
// per request.
func LoadIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			claims, ok := token.Claims.(*services.TokenClaims)
			if !ok {
				return common.SendUnauthorizedError(c)
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return common.SendError(c, http.StatusUnauthorized, common.CodeUnauthorized, "Invalid user_id in token")
			}
			tenantID, err := uuid.Parse(claims.TenantID)
			if err != nil {
				return common.SendError(c, http.StatusUnauthorized, common.CodeUnauthorized, "Invalid tenant_id in token")
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.TenantIDKey, tenantID)
			ctx = context.WithValue(ctx, common.UserRoleKey, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
