package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/imagetagger/accounts/internal/core/domain"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "session_token"

// Context keys set by Auth and Identify.
const (
	KeyUserID    = "user_id"
	KeyUsername  = "username"
	KeySessionID = "session_id"
)

var errNoToken = errors.New("no token")

// SessionChecker resolves a session ID to the user it belongs to.
type SessionChecker interface {
	Lookup(ctx context.Context, sessionID string) (string, error)
}

// Auth requires a valid token whose session is still open and injects the
// user into the context.
func Auth(jwtSecret string, sessions SessionChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := authenticate(c, jwtSecret, sessions)
			switch {
			case err == nil:
				return next(c)
			case errors.Is(err, errNoToken):
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			default:
				return err
			}
		}
	}
}

// Identify is the optional variant of Auth: anonymous requests and requests
// with stale tokens pass through without a user.
func Identify(jwtSecret string, sessions SessionChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := authenticate(c, jwtSecret, sessions); err != nil {
				var he *echo.HTTPError
				if !errors.Is(err, errNoToken) && !errors.As(err, &he) {
					return err
				}
			}
			return next(c)
		}
	}
}

func authenticate(c echo.Context, jwtSecret string, sessions SessionChecker) error {
	raw, err := tokenFromRequest(c)
	if err != nil {
		return err
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	userID, _ := claims["sub"].(string)
	sessionID, _ := claims["sid"].(string)
	if userID == "" || sessionID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	owner, err := sessions.Lookup(c.Request().Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
		}
		return err
	}
	if owner != userID {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	c.Set(KeyUserID, userID)
	c.Set(KeyUsername, claims["username"])
	c.Set(KeySessionID, sessionID)
	return nil
}

// tokenFromRequest prefers the Authorization header over the cookie.
func tokenFromRequest(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}
		return parts[1], nil
	}

	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", errNoToken
}
