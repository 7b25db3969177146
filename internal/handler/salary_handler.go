package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/service"
	"github.com/locvowork/epms/internal/service/serviceutils"
)

type SalaryHandler struct {
	svc service.SalaryService
}

func NewSalaryHandler(svc service.SalaryService) *SalaryHandler {
	return &SalaryHandler{svc: svc}
}

func salaryID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func (h *SalaryHandler) CreateHandler(c echo.Context) error {
	var req domain.Salary
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	if err := h.svc.Create(c.Request().Context(), &req); err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to create salary record", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Salary record created successfully", req)
}

func (h *SalaryHandler) ListHandler(c echo.Context) error {
	filter := domain.SalaryFilter{EmployeeNumber: c.QueryParam("employeeNumber")}

	records, err := h.svc.List(c.Request().Context(), filter)
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to list salary records", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Salary records listed successfully", records)
}

func (h *SalaryHandler) UpdateHandler(c echo.Context) error {
	id, err := salaryID(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid salary ID", err)
	}

	var req domain.Salary
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	if err := h.svc.Update(c.Request().Context(), id, &req); err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to update salary record", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Salary record updated successfully", req)
}

func (h *SalaryHandler) DeleteHandler(c echo.Context) error {
	id, err := salaryID(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid salary ID", err)
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to delete salary record", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Salary record deleted successfully", nil)
}

func (h *SalaryHandler) RefreshSchemaHandler(c echo.Context) error {
	h.svc.RefreshSchema(c.Request().Context())
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Salary schema cache refreshed", nil)
}
