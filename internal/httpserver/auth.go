package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mlanina/auth_service/internal/middleware"
	"github.com/mlanina/auth_service/internal/repo"
	"github.com/mlanina/auth_service/internal/service"
	"github.com/mlanina/auth_service/pkg/logging"
	"github.com/mlanina/auth_service/pkg/tokens"
)

type AuthHTTP struct {
	Svc *service.AuthService

	// FrontendURL hosts the reset-password form the emailed link lands on.
	FrontendURL string
}

// Login verifies a username/password pair and returns a bearer access token.
// Unknown user and wrong password are deliberately indistinguishable.
func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrValidation) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect username or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error Logging In")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": res.AccessToken,
		"token_type":   res.TokenType,
	})
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_signup")

	var req struct {
		Username string `json:"username" form:"username"`
		FullName string `json:"full_name" form:"full_name"`
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, req.Username, req.FullName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateUsername):
			return echo.NewHTTPError(http.StatusConflict, "Username already exists")
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Error Completing Signup")
		}
	}

	return c.JSON(http.StatusOK, user)
}

// Profile returns the authenticated user's non-secret fields.
func (h *AuthHTTP) Profile(c echo.Context) error {
	user := middleware.UserFrom(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authentication credentials")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"username":  user.Username,
		"role":      user.Role,
		"email":     user.Email,
		"full_name": user.FullName,
	})
}

func (h *AuthHTTP) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_forgot_password")

	var req struct {
		Username string `json:"username" form:"username"`
		Email    string `json:"email" form:"email"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("forgot_password_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.ForgotPassword(ctx, req.Username, req.Email); err != nil {
		switch {
		case errors.Is(err, repo.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "username and email are required")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Error Sending Reset Link")
		}
	}

	return c.JSON(http.StatusOK, "Reset Link Sent")
}

// ShowResetForm is the target of the emailed link; it forwards the token to
// the frontend reset form.
func (h *AuthHTTP) ShowResetForm(c echo.Context) error {
	token := c.QueryParam("token")
	url := fmt.Sprintf("%s/?page=reset_password&token=%s", h.FrontendURL, token)
	return c.Redirect(http.StatusFound, url)
}

func (h *AuthHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_reset_password")

	var req struct {
		Token       string `json:"token" form:"token"`
		NewPassword string `json:"new_password" form:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("reset_password_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, tokens.ErrInvalidResetToken):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid or expired token")
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "new password is required")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Error Resetting Password")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Password updated successfully."})
}

func (h *AuthHTTP) AdminDashboard(c echo.Context) error {
	user := middleware.UserFrom(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authentication credentials")
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": fmt.Sprintf("Welcome Admin %s", user.Username)})
}

func (h *AuthHTTP) Reports(c echo.Context) error {
	user := middleware.UserFrom(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authentication credentials")
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": fmt.Sprintf("Reports for %s", user.Role)})
}
