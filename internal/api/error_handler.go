package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gccn-chatbot/session-service/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, domain.ErrUnauthenticated.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		// Validation detail is built from field names only.
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrMissingField),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrPasswordTooLong),
		errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusBadRequest, rootMessage(err)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrThrottled):
		return http.StatusTooManyRequests, domain.ErrThrottled.Error()
	case errors.Is(err, domain.ErrUpstreamThrottled):
		logFailure(log, c, err, "upstream throttled")
		return http.StatusTooManyRequests, domain.ErrUpstreamThrottled.Error()
	case errors.Is(err, domain.ErrGenerationFailed):
		logFailure(log, c, err, "generation failed")
		return http.StatusInternalServerError, domain.ErrGenerationFailed.Error()
	case errors.Is(err, domain.ErrStorageUnavailable):
		logFailure(log, c, err, "storage unavailable")
		return http.StatusServiceUnavailable, domain.ErrStorageUnavailable.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	logFailure(log, c, err, "unhandled error")
	return http.StatusInternalServerError, "internal server error"
}

// rootMessage returns the message of the account-flow sentinel in err.
func rootMessage(err error) string {
	for _, target := range []error{
		domain.ErrMissingField,
		domain.ErrWeakPassword,
		domain.ErrPasswordTooLong,
		domain.ErrDuplicateUsername,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

func logFailure(log zerolog.Logger, c echo.Context, err error, msg string) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg(msg)
}
