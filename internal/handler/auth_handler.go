package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/logger"
	"github.com/locvowork/epms/internal/middleware"
	"github.com/locvowork/epms/internal/service"
	"github.com/locvowork/epms/internal/service/serviceutils"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User middleware.SessionUser `json:"user"`
}

type AuthHandler struct {
	svc      service.AuthService
	sessions *middleware.SessionManager
}

func NewAuthHandler(svc service.AuthService, sessions *middleware.SessionManager) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: sessions}
}

func (h *AuthHandler) LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	ctx := c.Request().Context()
	u, err := h.svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			logger.WarnLog(ctx, "Failed login attempt for %q", req.Username)
			return serviceutils.ResponseError(c, http.StatusUnauthorized, "Invalid credentials", nil)
		}
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Login failed", err)
	}

	if err := h.sessions.Start(c, u); err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Login failed", err)
	}
	logger.InfoLog(ctx, "User %s logged in", u.Username)

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Login successful", loginResponse{
		User: middleware.SessionUser{ID: u.ID, Username: u.Username, Role: u.Role},
	})
}

func (h *AuthHandler) LogoutHandler(c echo.Context) error {
	if err := h.sessions.Clear(c); err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Logout failed", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Logout successful", nil)
}

func (h *AuthHandler) MeHandler(c echo.Context) error {
	su, ok := middleware.CurrentUser(c)
	if !ok {
		return serviceutils.ResponseError(c, http.StatusUnauthorized, "Unauthorized", domain.ErrUnauthorized)
	}

	u, err := h.svc.GetUser(c.Request().Context(), su.ID)
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to get user", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "User retrieved successfully", u)
}
