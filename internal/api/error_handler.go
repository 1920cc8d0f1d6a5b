package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/imagetagger/accounts/internal/api/handler"
	"github.com/imagetagger/accounts/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Errors map[string]string `json:"errors"`
}

// sentinelStatus lists the domain errors that reach the client unchanged.
// Order matters only for errors that wrap more than one sentinel.
var sentinelStatus = []struct {
	err  error
	code int
}{
	{domain.ErrTeamNotFound, http.StatusNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrTeamExists, http.StatusConflict},
	{domain.ErrUserExists, http.StatusConflict},
	{domain.ErrInvalidTeamName, http.StatusUnprocessableEntity},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrSessionNotFound, http.StatusUnauthorized},
}

// NewHTTPErrorHandler renders handler errors. Form errors become
// 422 {"errors": {...}}, everything else {"error": "..."}. Errors without a
// known mapping are logged and answered with a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *handler.ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusUnprocessableEntity, validationResponse{Errors: ve.Fields})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)})
			return
		}

		for _, s := range sentinelStatus {
			if errors.Is(err, s.err) {
				_ = c.JSON(s.code, errorResponse{Error: sentinelMessage(s.err)})
				return
			}
		}

		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("unhandled error")
		_ = c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func sentinelMessage(err error) string {
	if errors.Is(err, domain.ErrSessionNotFound) {
		return "session expired"
	}
	return err.Error()
}
