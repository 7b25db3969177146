package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/logger"
	"github.com/locvowork/epms/pkg/xlsxreport"
	"github.com/shopspring/decimal"
)

const monthlyReportLayout = `
sheet: Payroll
header_style:
  bold: true
  fill_color: "#DDEBF7"
columns:
  - field_name: FirstName
    header: First Name
    width: 18
  - field_name: LastName
    header: Last Name
    width: 18
  - field_name: Position
    header: Position
    width: 20
  - field_name: DepartmentName
    header: Department
    width: 22
  - field_name: Month
    header: Month
    width: 12
  - field_name: Year
    header: Year
    width: 8
  - field_name: NetSalary
    header: Net Salary
    width: 14
    number_format: "#,##0.00"
`

// ReportService produces monthly payroll reports
type ReportService interface {
	Monthly(ctx context.Context, filter domain.ReportFilter) ([]domain.ReportRow, error)
	// Export writes the monthly report as an xlsx workbook.
	Export(ctx context.Context, filter domain.ReportFilter, w io.Writer) error
	Archive(ctx context.Context, filter domain.ReportFilter, generatedBy string) (*domain.ReportSnapshot, error)
	GetArchived(ctx context.Context, month string, year int) (*domain.ReportSnapshot, error)
	ListArchived(ctx context.Context) ([]domain.ReportSnapshot, error)
}

type reportService struct {
	salaries domain.SalaryRepository
	archive  domain.ReportArchive
	layout   *xlsxreport.Template
	now      func() time.Time
}

// NewReportService creates a new ReportService. archive may be nil when no
// document store is configured.
func NewReportService(salaries domain.SalaryRepository, archive domain.ReportArchive) ReportService {
	layout, err := xlsxreport.Parse(monthlyReportLayout)
	if err != nil {
		panic(err)
	}
	return &reportService{salaries: salaries, archive: archive, layout: layout, now: time.Now}
}

func (s *reportService) normalize(filter domain.ReportFilter) (domain.ReportFilter, error) {
	month, err := normalizeMonth(filter.Month)
	if err != nil {
		return filter, err
	}
	filter.Month = month
	if filter.Year != nil && *filter.Year <= 0 {
		return filter, invalid("invalid year %d", *filter.Year)
	}
	return filter, nil
}

func (s *reportService) Monthly(ctx context.Context, filter domain.ReportFilter) ([]domain.ReportRow, error) {
	filter, err := s.normalize(filter)
	if err != nil {
		return nil, err
	}
	return s.salaries.MonthlyReport(ctx, filter)
}

func totalNet(rows []domain.ReportRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.NetSalary)
	}
	return total
}

func (s *reportService) Export(ctx context.Context, filter domain.ReportFilter, w io.Writer) error {
	filter, err := s.normalize(filter)
	if err != nil {
		return err
	}
	rows, err := s.salaries.MonthlyReport(ctx, filter)
	if err != nil {
		return err
	}
	tmpl := *s.layout
	tmpl.Title = "Payroll report " + filter.Month
	if filter.Year != nil {
		tmpl.Title = fmt.Sprintf("%s %d", tmpl.Title, *filter.Year)
	}
	footer := &xlsxreport.Footer{Label: "Total", Value: totalNet(rows)}
	if err := tmpl.Write(w, rows, footer); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}
	return nil
}

// Archive generates the report and stores it. Year is required so the
// snapshot has a stable key, and the salary table must have a year column
// or the rows would mix every year's month under one key.
func (s *reportService) Archive(ctx context.Context, filter domain.ReportFilter, generatedBy string) (*domain.ReportSnapshot, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("report archive: %w", domain.ErrUnavailable)
	}
	if filter.Year == nil {
		return nil, invalid("year is required to archive a report")
	}
	filter, err := s.normalize(filter)
	if err != nil {
		return nil, err
	}
	tracksYear, err := s.salaries.TracksYear(ctx)
	if err != nil {
		return nil, err
	}
	if !tracksYear {
		return nil, invalid("salary table has no year column, reports cannot be archived by year")
	}
	rows, err := s.salaries.MonthlyReport(ctx, filter)
	if err != nil {
		return nil, err
	}

	snap := &domain.ReportSnapshot{
		Month:       filter.Month,
		Year:        *filter.Year,
		GeneratedBy: generatedBy,
		GeneratedAt: s.now().UTC(),
		Rows:        rows,
		TotalNet:    totalNet(rows).StringFixed(2),
	}
	if err := s.archive.SaveReport(ctx, snap); err != nil {
		return nil, err
	}
	logger.InfoLog(ctx, "Archived %s %d payroll report with %d rows", snap.Month, snap.Year, len(rows))
	return snap, nil
}

func (s *reportService) GetArchived(ctx context.Context, month string, year int) (*domain.ReportSnapshot, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("report archive: %w", domain.ErrUnavailable)
	}
	month, err := normalizeMonth(month)
	if err != nil {
		return nil, err
	}
	return s.archive.GetReport(ctx, month, year)
}

func (s *reportService) ListArchived(ctx context.Context) ([]domain.ReportSnapshot, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("report archive: %w", domain.ErrUnavailable)
	}
	return s.archive.ListReports(ctx)
}
