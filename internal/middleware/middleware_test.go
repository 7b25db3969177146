package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/epms/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionServer(m *SessionManager, role domain.Role) *echo.Echo {
	e := echo.New()
	e.POST("/login", func(c echo.Context) error {
		if err := m.Start(c, &domain.User{ID: 7, Username: "ann", Role: role}); err != nil {
			return err
		}
		return c.NoContent(http.StatusOK)
	})
	e.POST("/logout", func(c echo.Context) error {
		if err := m.Clear(c); err != nil {
			return err
		}
		return c.NoContent(http.StatusOK)
	})

	g := e.Group("", m.RequireSession())
	g.GET("/me", func(c echo.Context) error {
		u, _ := CurrentUser(c)
		return c.JSON(http.StatusOK, u)
	})
	g.POST("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, RequireRole(domain.RoleAdmin))
	return e
}

func do(e *echo.Echo, method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireSession(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour, false)
	e := newSessionServer(m, domain.RoleUser)

	rec := do(e, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	login := do(e, http.MethodPost, "/login", nil)
	require.Equal(t, http.StatusOK, login.Code)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.True(t, cookies[0].HttpOnly)

	rec = do(e, http.MethodGet, "/me", cookies)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"username":"ann","role":"user"}`, rec.Body.String())

	rec = do(e, http.MethodPost, "/admin", cookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	logout := do(e, http.MethodPost, "/logout", cookies)
	require.Equal(t, http.StatusOK, logout.Code)
	cleared := logout.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.True(t, cleared[0].MaxAge < 0)
}

func TestRequireSession_RejectsForeignCookie(t *testing.T) {
	issuer := NewSessionManager("other-secret", time.Hour, false)
	login := do(newSessionServer(issuer, domain.RoleAdmin), http.MethodPost, "/login", nil)

	m := NewSessionManager("test-secret", time.Hour, false)
	rec := do(newSessionServer(m, domain.RoleAdmin), http.MethodGet, "/me", login.Result().Cookies())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole_Admin(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour, false)
	e := newSessionServer(m, domain.RoleAdmin)

	cookies := do(e, http.MethodPost, "/login", nil).Result().Cookies()
	rec := do(e, http.MethodPost, "/admin", cookies)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimit(t *testing.T) {
	_, err := RateLimit("ten per minute")
	assert.Error(t, err)

	mw, err := RateLimit("2-M")
	require.NoError(t, err)

	e := echo.New()
	e.POST("/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, mw)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(e, http.MethodPost, "/login", nil).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRequestLogger(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger())
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	rec := do(e, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(echo.HeaderXRequestID))
}
