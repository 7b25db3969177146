package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/logger"
	"github.com/locvowork/epms/internal/service/serviceutils"
)

const (
	SessionName = "epms-session"

	sessionUserID   = "user-id"
	sessionUsername = "username"
	sessionRole     = "role"

	contextUserKey = "session-user"
)

// SessionUser is the identity stored in the session cookie.
type SessionUser struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// SessionManager issues, reads and clears the login session cookie.
type SessionManager struct {
	store sessions.Store
}

// NewSessionManager creates a cookie-backed SessionManager.
func NewSessionManager(secret string, maxAge time.Duration, secure bool) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// Start stores u in a fresh session cookie.
func (m *SessionManager) Start(c echo.Context, u *domain.User) error {
	session, err := m.store.Get(c.Request(), SessionName)
	if err != nil && session == nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	session.Values[sessionUserID] = u.ID
	session.Values[sessionUsername] = u.Username
	session.Values[sessionRole] = string(u.Role)
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(c echo.Context) error {
	session, _ := m.store.Get(c.Request(), SessionName)
	if session == nil {
		return nil
	}
	session.Values = map[interface{}]interface{}{}
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (m *SessionManager) load(r *http.Request) (SessionUser, bool) {
	session, err := m.store.Get(r, SessionName)
	if err != nil || session == nil {
		return SessionUser{}, false
	}
	id, ok := session.Values[sessionUserID].(int64)
	if !ok {
		return SessionUser{}, false
	}
	username, _ := session.Values[sessionUsername].(string)
	role, _ := session.Values[sessionRole].(string)
	return SessionUser{ID: id, Username: username, Role: domain.Role(role)}, true
}

// RequireSession rejects requests without a valid login session with 401.
func (m *SessionManager) RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := m.load(c.Request())
			if !ok {
				return serviceutils.ResponseError(c, http.StatusUnauthorized, "Unauthorized", domain.ErrUnauthorized)
			}
			c.Set(contextUserKey, u)

			ctx := logger.WithLogger(c.Request().Context(), map[string]interface{}{
				"user": u.Username,
			})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireRole must run after RequireSession.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return serviceutils.ResponseError(c, http.StatusUnauthorized, "Unauthorized", domain.ErrUnauthorized)
			}
			if u.Role != role {
				return serviceutils.ResponseError(c, http.StatusForbidden, "Forbidden", domain.ErrForbidden)
			}
			return next(c)
		}
	}
}

// CurrentUser returns the session user set by RequireSession.
func CurrentUser(c echo.Context) (SessionUser, bool) {
	u, ok := c.Get(contextUserKey).(SessionUser)
	return u, ok
}
