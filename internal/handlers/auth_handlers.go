package handlers

import (
	"net/http"
	"strings"

	"dataclinica/internal/common"
	"dataclinica/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles signup, login and token refresh.
type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

// Signup handles POST /v1/auth/signup. Registers a clinic and its first
// admin user in one step.
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req services.SignupRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid request format")
	}

	tokens, err := h.authService.Signup(c.Request().Context(), &req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusCreated, tokens)
}

// Login handles POST /v1/auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid request format")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return common.SendValidationError(c, "credentials", "email and password are required")
	}

	tokens, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, tokens)
}

// Refresh handles POST /v1/auth/refresh. The presented refresh token is
// consumed; the response carries a new pair.
func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return common.SendValidationError(c, "refresh_token", "refresh_token is required")
	}

	tokens, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return respondServiceError(c, err)
	}
	return common.SendData(c, http.StatusOK, tokens)
}
