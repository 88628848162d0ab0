package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mlanina/auth_service/internal/guard"
	"github.com/mlanina/auth_service/internal/models"
	"github.com/mlanina/auth_service/pkg/logging"
)

// UserKey is the echo context key the authenticated user is stored under.
const UserKey = "user"

type Auth struct {
	Guard *guard.Guard
}

func NewAuth(g *guard.Guard) *Auth {
	return &Auth{Guard: g}
}

// RequireAuth authenticates the bearer token and stores the resolved user in
// the request context. Token-layer detail is collapsed to a plain 401; the log
// sink gets the cause.
func (m *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "require_auth")

		token := bearerToken(c)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		user, err := m.Guard.Authenticate(ctx, token)
		if err != nil {
			if errors.Is(err, guard.ErrInactiveAccount) {
				l.Warn("auth_rejected", "reason", "inactive account")
				return echo.NewHTTPError(http.StatusBadRequest, "Inactive user")
			}
			l.Warn("auth_rejected", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authentication credentials")
		}

		c.Set(UserKey, user)
		return next(c)
	}
}

// RequireRole gates the route on a role policy. Must run after RequireAuth.
func (m *Auth) RequireRole(policy guard.RolePolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFrom(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authentication credentials")
			}

			if _, err := m.Guard.Authorize(user, policy); err != nil {
				logging.FromContext(c.Request().Context()).
					Warn("authorization_rejected", "username", user.Username, "role", user.Role)
				return echo.NewHTTPError(http.StatusForbidden, "Access forbidden")
			}

			return next(c)
		}
	}
}

// UserFrom returns the authenticated user set by RequireAuth, or nil.
func UserFrom(c echo.Context) *models.User {
	if u, ok := c.Get(UserKey).(*models.User); ok {
		return u
	}
	return nil
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}
