package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/service"
	"github.com/locvowork/epms/internal/service/serviceutils"
)

type EmployeeHandler struct {
	svc         service.EmployeeService
	assignments service.AssignmentService
}

func NewEmployeeHandler(svc service.EmployeeService, assignments service.AssignmentService) *EmployeeHandler {
	return &EmployeeHandler{svc: svc, assignments: assignments}
}

func (h *EmployeeHandler) CreateHandler(c echo.Context) error {
	var req domain.Employee
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	if err := h.svc.Create(c.Request().Context(), &req); err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to create employee", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Employee created successfully", req)
}

func (h *EmployeeHandler) GetHandler(c echo.Context) error {
	emp, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to get employee", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee retrieved successfully", emp)
}

func (h *EmployeeHandler) DeleteHandler(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to delete employee", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee deleted successfully", nil)
}

func (h *EmployeeHandler) ListHandler(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	filter := domain.EmployeeFilter{
		Limit:  limit,
		Offset: offset,
	}

	employees, err := h.svc.List(c.Request().Context(), filter)
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to list employees", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employees listed successfully", employees)
}

func (h *EmployeeHandler) SearchHandler(c echo.Context) error {
	employees, err := h.svc.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to search employees", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employees found", employees)
}

func (h *EmployeeHandler) ReindexHandler(c echo.Context) error {
	n, err := h.svc.Reindex(c.Request().Context())
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to reindex employees", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employees reindexed", map[string]int{"indexed": n})
}

func (h *EmployeeHandler) DepartmentsHandler(c echo.Context) error {
	assignments, err := h.assignments.ListByEmployee(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to list assignments", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Assignments listed successfully", assignments)
}

// AssignHandler serves POST /employee-department.
func (h *EmployeeHandler) AssignHandler(c echo.Context) error {
	var req domain.EmployeeDepartment
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	if err := h.assignments.Assign(c.Request().Context(), &req); err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to assign employee to department", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Employee assigned to department successfully", req)
}
