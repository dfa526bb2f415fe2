package handlers

import (
	"errors"
	"net/http"

	"dataclinica/internal/common"
	"dataclinica/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// respondServiceError translates service sentinel errors into envelope
// responses. Anything unclassified is a 500 with the detail kept server-side.
func respondServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return common.SendError(c, http.StatusBadRequest, common.CodeValidation, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return common.SendError(c, http.StatusNotFound, common.CodeNotFound, err.Error())
	case errors.Is(err, services.ErrInsufficientStock):
		return common.SendError(c, http.StatusConflict, common.CodeInsufficientStock, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		return common.SendError(c, http.StatusConflict, common.CodeInvalidTransition, err.Error())
	case errors.Is(err, services.ErrInsufficientHistory):
		return common.SendError(c, http.StatusUnprocessableEntity, common.CodeInsufficientHistory, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		return common.SendError(c, http.StatusUnauthorized, common.CodeUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrRateLimited):
		return common.SendError(c, http.StatusTooManyRequests, common.CodeRateLimited, "Too many attempts, try again later")
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return common.SendServerError(c, "Internal server error")
	}
}
