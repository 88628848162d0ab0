package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mlanina/auth_service/internal/guard"
	"github.com/mlanina/auth_service/internal/middleware"
)

type Deps struct {
	AuthHandler *AuthHTTP
	Guard       *guard.Guard
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMw := middleware.NewAuth(d.Guard)

	e.POST("/token", d.AuthHandler.Login)
	e.POST("/signup", d.AuthHandler.Signup)
	e.POST("/forgot-password", d.AuthHandler.ForgotPassword)
	e.GET("/reset-password", d.AuthHandler.ShowResetForm)
	e.POST("/reset-password", d.AuthHandler.ResetPassword)

	private := e.Group("", authMw.RequireAuth)
	private.GET("/profile", d.AuthHandler.Profile)

	admin := e.Group("/admin", authMw.RequireAuth, authMw.RequireRole(guard.RoleIs("admin")))
	admin.GET("/dashboard", d.AuthHandler.AdminDashboard)

	reports := e.Group("/reports", authMw.RequireAuth, authMw.RequireRole(guard.RoleIn("admin", "auditor")))
	reports.GET("", d.AuthHandler.Reports)
}
