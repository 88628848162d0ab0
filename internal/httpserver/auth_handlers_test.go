package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mlanina/auth_service/internal/guard"
	"github.com/mlanina/auth_service/internal/models"
	"github.com/mlanina/auth_service/internal/repo"
	"github.com/mlanina/auth_service/internal/service"
	"github.com/mlanina/auth_service/pkg/hash"
	"github.com/mlanina/auth_service/pkg/tokens"
)

type nopMailer struct{}

func (nopMailer) Send(to, subject, body string) error { return nil }

type handlerEnv struct {
	e      *echo.Echo
	db     *gorm.DB
	access *tokens.AccessTokenService
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	codec := tokens.NewCodec([]byte("handler-test-secret"))
	access := tokens.NewAccessTokenService(codec, 15*time.Minute)
	userRepo := repo.GormRepo{DB: db}

	svc := &service.AuthService{
		Repo:    userRepo,
		Access:  access,
		Reset:   tokens.NewResetTokenService(codec, time.Hour),
		Mailer:  nopMailer{},
		APIBase: "http://localhost:8080",
	}

	e := echo.New()
	Register(e, &Deps{
		AuthHandler: &AuthHTTP{Svc: svc, FrontendURL: "http://localhost:8501"},
		Guard:       guard.New(access, &userRepo),
	})

	return &handlerEnv{e: e, db: db, access: access}
}

func (env *handlerEnv) doJSON(t *testing.T, method, path string, payload any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

// seedUser inserts a record directly, bypassing signup's forced "user" role.
func (env *handlerEnv) seedUser(t *testing.T, username, password, role string, disabled bool) {
	t.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&models.User{
		Username:     username,
		Email:        username + "@x.com",
		Role:         role,
		Disabled:     disabled,
		PasswordHash: pwHash,
	}).Error)
}

func TestSignup(t *testing.T) {
	t.Parallel()

	env := newHandlerEnv(t)
	payload := map[string]string{
		"username":  "alice",
		"full_name": "Alice Liddell",
		"email":     "alice@x.com",
		"password":  "p1",
	}

	rec := env.doJSON(t, http.MethodPost, "/signup", payload, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var created models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, "user", created.Role)
	assert.NotEmpty(t, created.ID)
	assert.NotContains(t, rec.Body.String(), "password_hash")

	rec = env.doJSON(t, http.MethodPost, "/signup", payload, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	env := newHandlerEnv(t)
	env.seedUser(t, "alice", "p1", "user", false)

	rec := env.doJSON(t, http.MethodPost, "/token", map[string]string{"username": "alice", "password": "p1"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["access_token"])
	assert.Equal(t, "bearer", resp["token_type"])

	claims, err := env.access.Verify(resp["access_token"])
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "user", claims.Role)

	rec = env.doJSON(t, http.MethodPost, "/token", map[string]string{"username": "alice", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/token", map[string]string{"username": "nobody", "password": "p1"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfile(t *testing.T) {
	t.Parallel()

	env := newHandlerEnv(t)
	env.seedUser(t, "alice", "p1", "user", false)

	rec := env.doJSON(t, http.MethodGet, "/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := env.access.Issue("alice", "user")
	require.NoError(t, err)

	rec = env.doJSON(t, http.MethodGet, "/profile", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "alice", profile["username"])
	assert.Equal(t, "user", profile["role"])
	assert.Equal(t, "alice@x.com", profile["email"])
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestProfile_DisabledUser(t *testing.T) {
	t.Parallel()

	env := newHandlerEnv(t)
	env.seedUser(t, "alice", "p1", "user", true)

	token, err := env.access.Issue("alice", "user")
	require.NoError(t, err)

	rec := env.doJSON(t, http.MethodGet, "/profile", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfile_TamperedToken(t *testing.T) {
	t.Parallel()

	env := newHandlerEnv(t)
	env.seedUser(t, "alice", "p1", "user", false)

	token, err := env.access.Issue("alice", "user")
	require.NoError(t, err)

	rec := env.doJSON(t, http.MethodGet, "/profile", nil, token+"x")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGatedRoutes(t *testing.T) {
	t.Parallel()

	env := newHandlerEnv(t)
	env.seedUser(t, "root", "p1", "admin", false)
	env.seedUser(t, "audra", "p1", "auditor", false)
	env.seedUser(t, "alice", "p1", "user", false)

	tokenFor := func(username, role string) string {
		token, err := env.access.Issue(username, role)
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{name: "admin on dashboard", path: "/admin/dashboard", token: tokenFor("root", "admin"), status: http.StatusOK},
		{name: "auditor on dashboard", path: "/admin/dashboard", token: tokenFor("audra", "auditor"), status: http.StatusForbidden},
		{name: "user on dashboard", path: "/admin/dashboard", token: tokenFor("alice", "user"), status: http.StatusForbidden},
		{name: "admin on reports", path: "/reports", token: tokenFor("root", "admin"), status: http.StatusOK},
		{name: "auditor on reports", path: "/reports", token: tokenFor("audra", "auditor"), status: http.StatusOK},
		{name: "user on reports", path: "/reports", token: tokenFor("alice", "user"), status: http.StatusForbidden},
		{name: "no token on dashboard", path: "/admin/dashboard", token: "", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := env.doJSON(t, http.MethodGet, tt.path, nil, tt.token)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestForgotPassword_UnknownUser(t *testing.T) {
	t.Parallel()

	env := newHandlerEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/forgot-password",
		map[string]string{"username": "nobody", "email": "nobody@x.com"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResetPassword_InvalidToken(t *testing.T) {
	t.Parallel()

	env := newHandlerEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/reset-password",
		map[string]string{"token": "garbage", "new_password": "p2"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShowResetForm_RedirectsWithToken(t *testing.T) {
	t.Parallel()

	env := newHandlerEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/reset-password?token=abc123", nil)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderLocation), "token=abc123")
	assert.Contains(t, rec.Header().Get(echo.HeaderLocation), "http://localhost:8501")
}

func TestHealthProbes(t *testing.T) {
	t.Parallel()

	env := newHandlerEnv(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := env.doJSON(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
