package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/gccn-chatbot/session-service/internal/api/middleware"
	"github.com/gccn-chatbot/session-service/internal/core/domain"
)

// ctxUserID extracts the user ID injected by the Auth middleware. An empty
// value means the route was mounted without the middleware; treat it as
// unauthenticated rather than serving someone else's data.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.UserIDKey).(string)
	if userID == "" {
		return "", domain.ErrUnauthenticated
	}
	return userID, nil
}
