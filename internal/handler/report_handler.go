package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/middleware"
	"github.com/locvowork/epms/internal/service"
	"github.com/locvowork/epms/internal/service/serviceutils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	svc service.ReportService
}

func NewReportHandler(svc service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// reportFilter reads ?month=&year=. An empty year matches every year.
func reportFilter(c echo.Context) (domain.ReportFilter, error) {
	filter := domain.ReportFilter{Month: c.QueryParam("month")}
	if filter.Month == "" {
		return filter, fmt.Errorf("%w: month is required", domain.ErrValidation)
	}
	if y := c.QueryParam("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid year %q", domain.ErrValidation, y)
		}
		filter.Year = &year
	}
	return filter, nil
}

func (h *ReportHandler) MonthlyHandler(c echo.Context) error {
	filter, err := reportFilter(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid report parameters", err)
	}

	rows, err := h.svc.Monthly(c.Request().Context(), filter)
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to generate report", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Report generated successfully", rows)
}

func (h *ReportHandler) ExportHandler(c echo.Context) error {
	filter, err := reportFilter(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid report parameters", err)
	}

	var buf bytes.Buffer
	if err := h.svc.Export(c.Request().Context(), filter, &buf); err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to export report", err)
	}

	filename := "payroll_" + filter.Month
	if filter.Year != nil {
		filename += "_" + strconv.Itoa(*filter.Year)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename+".xlsx"))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ReportHandler) ArchiveHandler(c echo.Context) error {
	filter, err := reportFilter(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid report parameters", err)
	}

	u, _ := middleware.CurrentUser(c)
	snap, err := h.svc.Archive(c.Request().Context(), filter, u.Username)
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to archive report", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Report archived successfully", snap)
}

func (h *ReportHandler) ListArchivedHandler(c echo.Context) error {
	snaps, err := h.svc.ListArchived(c.Request().Context())
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to list archived reports", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Archived reports listed successfully", snaps)
}

func (h *ReportHandler) GetArchivedHandler(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid year", err)
	}

	snap, err := h.svc.GetArchived(c.Request().Context(), c.Param("month"), year)
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to get archived report", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Archived report retrieved successfully", snap)
}
