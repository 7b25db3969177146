package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/service"
	"github.com/locvowork/epms/internal/service/serviceutils"
)

type DepartmentHandler struct {
	svc service.DepartmentService
}

func NewDepartmentHandler(svc service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{svc: svc}
}

func (h *DepartmentHandler) CreateHandler(c echo.Context) error {
	var req domain.Department
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	if err := h.svc.Create(c.Request().Context(), &req); err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to create department", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Department created successfully", req)
}

func (h *DepartmentHandler) ListHandler(c echo.Context) error {
	departments, err := h.svc.List(c.Request().Context())
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to list departments", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Departments listed successfully", departments)
}
