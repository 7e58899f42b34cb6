package middleware

import (
	"net/http"
	"strings"

	"authd/internal/common"
	"authd/internal/services"

	"github.com/labstack/echo/v4"
)

// BearerToken extracts the session token from the Authorization header.
// The empty string means no credential was presented.
func BearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}
	return token
}

// SessionAuth validates the bearer token on every request and stores the
// verified caller in the request context. There is no caching: each request
// re-reads the session and user rows.
func SessionAuth(sessions services.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			user, err := sessions.Authenticate(c.Request().Context(), token)
			if err != nil {
				status := common.HTTPStatusFor(err)
				if status == http.StatusInternalServerError {
					c.Logger().Errorf("session validation failed: %v", err)
					return echo.NewHTTPError(status, "Internal error")
				}
				return echo.NewHTTPError(status, err.Error())
			}

			ctx := common.WithCaller(c.Request().Context(), user)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
