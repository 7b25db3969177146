package service

import (
	"context"
	"fmt"
	"time"

	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/logger"
	"github.com/shopspring/decimal"
)

// SchemaRefresher drops the cached salary layout.
type SchemaRefresher interface {
	Refresh(ctx context.Context)
}

// SalaryService handles business logic for salary records
type SalaryService interface {
	Create(ctx context.Context, s *domain.Salary) error
	List(ctx context.Context, filter domain.SalaryFilter) ([]domain.SalaryRecord, error)
	Update(ctx context.Context, id int64, s *domain.Salary) error
	Delete(ctx context.Context, id int64) error
	RefreshSchema(ctx context.Context)
}

type salaryService struct {
	salaries  domain.SalaryRepository
	employees domain.EmployeeRepository
	schema    SchemaRefresher
	now       func() time.Time
}

// NewSalaryService creates a new SalaryService
func NewSalaryService(salaries domain.SalaryRepository, employees domain.EmployeeRepository, schema SchemaRefresher) SalaryService {
	return &salaryService{salaries: salaries, employees: employees, schema: schema, now: time.Now}
}

// prepare validates s and fills the derived fields. An omitted net salary
// becomes gross - deduction; a supplied one that disagrees is kept and
// logged.
func (svc *salaryService) prepare(ctx context.Context, s *domain.Salary) error {
	month, err := normalizeMonth(s.Month)
	if err != nil {
		return err
	}
	s.Month = month

	if s.GrossSalary.IsNegative() || s.TotalDeduction.IsNegative() {
		return invalid("salary amounts must not be negative")
	}
	if s.Year < 0 {
		return invalid("invalid year %d", s.Year)
	}

	expected := s.GrossSalary.Sub(s.TotalDeduction)
	if !s.NetSalary.Valid {
		s.NetSalary = decimal.NewNullDecimal(expected)
	} else if !s.NetSalary.Decimal.Equal(expected) {
		logger.WarnLog(ctx, "Net salary %s differs from gross %s - deduction %s",
			s.NetSalary.Decimal, s.GrossSalary, s.TotalDeduction)
	}
	return nil
}

func (svc *salaryService) Create(ctx context.Context, s *domain.Salary) error {
	if err := required(map[string]string{"employeeNumber": s.EmployeeNumber}); err != nil {
		return err
	}
	if err := svc.prepare(ctx, s); err != nil {
		return err
	}
	if s.Year == 0 {
		s.Year = svc.now().Year()
	}

	ok, err := svc.employees.Exists(ctx, s.EmployeeNumber)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("employee %s: %w", s.EmployeeNumber, domain.ErrNotFound)
	}

	if err := svc.salaries.Create(ctx, s); err != nil {
		return err
	}
	logger.InfoLog(ctx, "Salary %d created for employee %s", s.ID, s.EmployeeNumber)
	return nil
}

func (svc *salaryService) List(ctx context.Context, filter domain.SalaryFilter) ([]domain.SalaryRecord, error) {
	return svc.salaries.List(ctx, filter)
}

func (svc *salaryService) Update(ctx context.Context, id int64, s *domain.Salary) error {
	if id <= 0 {
		return invalid("invalid salary id %d", id)
	}
	if err := svc.prepare(ctx, s); err != nil {
		return err
	}
	return svc.salaries.Update(ctx, id, s)
}

func (svc *salaryService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalid("invalid salary id %d", id)
	}
	return svc.salaries.Delete(ctx, id)
}

func (svc *salaryService) RefreshSchema(ctx context.Context) {
	svc.schema.Refresh(ctx)
	logger.InfoLog(ctx, "Salary schema cache refreshed")
}
