package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/imagetagger/accounts/internal/api/middleware"
)

// actorID returns the authenticated user injected by the Auth middleware.
// Its absence means the route was registered without Auth.
func actorID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.KeyUserID).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}

// optionalActorID returns the user set by Identify, or "" for anonymous requests.
func optionalActorID(c echo.Context) string {
	id, _ := c.Get(middleware.KeyUserID).(string)
	return id
}

func sessionID(c echo.Context) string {
	sid, _ := c.Get(middleware.KeySessionID).(string)
	return sid
}
