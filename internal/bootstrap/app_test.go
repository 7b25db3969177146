package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/locvowork/epms/internal/handler"
	"github.com/locvowork/epms/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	limit, err := middleware.RateLimit("100-M")
	require.NoError(t, err)

	sessions := middleware.NewSessionManager("test-secret", time.Hour, false)
	h := &handlers{
		auth:       handler.NewAuthHandler(nil, sessions),
		employee:   handler.NewEmployeeHandler(nil, nil),
		department: handler.NewDepartmentHandler(nil),
		salary:     handler.NewSalaryHandler(nil),
		report:     handler.NewReportHandler(nil),
		sessions:   sessions,
		loginLimit: limit,
	}

	app := NewApp()
	app.RegisterRoutes(h)
	return app
}

func TestRegisterRoutes(t *testing.T) {
	app := newTestApp(t)

	registered := map[string]bool{}
	for _, r := range app.Echo.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, route := range []string{
		"POST /api/login",
		"POST /api/logout",
		"GET /api/me",
		"POST /api/employees",
		"GET /api/employees",
		"DELETE /api/employees/:id",
		"POST /api/employee-department",
		"POST /api/departments",
		"GET /api/departments",
		"POST /api/salaries",
		"GET /api/salaries",
		"PUT /api/salaries/:id",
		"DELETE /api/salaries/:id",
		"GET /api/reports/monthly",
		"GET /api/reports/monthly/export",
		"POST /api/reports/monthly/archive",
		"GET /api/reports/archive/:year/:month",
		"POST /api/schema/refresh",
	} {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestSecuredRoutesRequireSession(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/employees"},
		{http.MethodPost, "/api/salaries"},
		{http.MethodDelete, "/api/salaries/1"},
		{http.MethodGet, "/api/reports/monthly?month=March"},
		{http.MethodPost, "/api/schema/refresh"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			app.Echo.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
