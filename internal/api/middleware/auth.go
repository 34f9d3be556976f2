package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gccn-chatbot/session-service/internal/core/domain"
	"github.com/gccn-chatbot/session-service/internal/core/ports"
)

// UserIDKey is the echo context key holding the authenticated user ID.
const UserIDKey = "user_id"

// Auth verifies the bearer token and injects the user ID into context.
// Every failure is terminal for the request and surfaces as
// domain.ErrUnauthenticated; the specific reason is only logged.
func Auth(tokens ports.TokenService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.ErrUnauthenticated
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return domain.ErrUnauthenticated
			}

			v := tokens.Verify(strings.TrimSpace(parts[1]))
			if v.Status != ports.TokenValid {
				log.Debug().
					Str("reason", v.Status.String()).
					Str("path", c.Path()).
					Msg("token rejected")
				return domain.ErrUnauthenticated
			}

			c.Set(UserIDKey, v.UserID)
			return next(c)
		}
	}
}
