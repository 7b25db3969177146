package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/logger"
	"github.com/locvowork/epms/pkg/dataflow"
)

const (
	reindexBatchSize = 200
	reindexRetries   = 3
)

// EmployeeService handles business logic for employees
type EmployeeService interface {
	Create(ctx context.Context, e *domain.Employee) error
	Get(ctx context.Context, employeeNumber string) (*domain.Employee, error)
	List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error)
	Delete(ctx context.Context, employeeNumber string) error
	Search(ctx context.Context, name string) ([]domain.Employee, error)
	// Reindex rebuilds the search index from the database and returns the number of employees indexed.
	Reindex(ctx context.Context) (int, error)
}

type employeeService struct {
	employees   domain.EmployeeRepository
	departments domain.DepartmentRepository
	index       domain.EmployeeIndex
	backoff     func(attempt int) time.Duration
}

// NewEmployeeService creates a new EmployeeService. index may be nil when
// search is not configured.
func NewEmployeeService(employees domain.EmployeeRepository, departments domain.DepartmentRepository, index domain.EmployeeIndex) EmployeeService {
	return &employeeService{
		employees:   employees,
		departments: departments,
		index:       index,
		backoff:     dataflow.ExponentialBackoff(200*time.Millisecond, 2*time.Second),
	}
}

func (s *employeeService) Create(ctx context.Context, e *domain.Employee) error {
	if err := required(map[string]string{
		"employeeNumber": e.EmployeeNumber,
		"firstName":      e.FirstName,
		"lastName":       e.LastName,
		"position":       e.Position,
	}); err != nil {
		return err
	}
	if !e.Gender.Valid() {
		return invalid("gender must be Male, Female or Other")
	}
	if e.HiredDate.IsZero() {
		return invalid("missing hiredDate")
	}

	if e.DepartmentCode != nil {
		code := strings.TrimSpace(*e.DepartmentCode)
		if code == "" {
			e.DepartmentCode = nil
		} else {
			ok, err := s.departments.Exists(ctx, code)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("department %s: %w", code, domain.ErrNotFound)
			}
			e.DepartmentCode = &code
		}
	}

	if err := s.employees.Create(ctx, e); err != nil {
		return err
	}
	logger.InfoLog(ctx, "Employee %s created", e.EmployeeNumber)

	if s.index != nil {
		if err := s.index.IndexEmployee(ctx, *e); err != nil {
			logger.WarnLog(ctx, "Failed to index employee %s: %v", e.EmployeeNumber, err)
		}
	}
	return nil
}

func (s *employeeService) Get(ctx context.Context, employeeNumber string) (*domain.Employee, error) {
	return s.employees.GetByNumber(ctx, employeeNumber)
}

func (s *employeeService) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	return s.employees.List(ctx, filter)
}

func (s *employeeService) Delete(ctx context.Context, employeeNumber string) error {
	if err := s.employees.Delete(ctx, employeeNumber); err != nil {
		return err
	}
	logger.InfoLog(ctx, "Employee %s deleted", employeeNumber)

	if s.index != nil {
		if err := s.index.DeleteEmployee(ctx, employeeNumber); err != nil {
			logger.WarnLog(ctx, "Failed to remove employee %s from index: %v", employeeNumber, err)
		}
	}
	return nil
}

func (s *employeeService) Search(ctx context.Context, name string) ([]domain.Employee, error) {
	if s.index == nil {
		return nil, fmt.Errorf("employee search: %w", domain.ErrUnavailable)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("missing search query")
	}
	return s.index.SearchEmployeesByName(ctx, name)
}

func (s *employeeService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, fmt.Errorf("employee search: %w", domain.ErrUnavailable)
	}

	employees, err := s.employees.List(ctx, domain.EmployeeFilter{})
	if err != nil {
		return 0, err
	}

	items := make([]interface{}, len(employees))
	for i := range employees {
		items[i] = employees[i]
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batches := dataflow.Batch(ctx, dataflow.From(ctx, items...), reindexBatchSize)
	docs := dataflow.Map(ctx, batches, func(msg interface{}) (interface{}, error) {
		batch := msg.([]interface{})
		out := make([]domain.Employee, len(batch))
		for i, item := range batch {
			out[i] = item.(domain.Employee)
		}
		return out, nil
	}, dataflow.WithBufferSize(2))

	err = dataflow.ForEach(ctx, docs, func(msg interface{}) error {
		return s.index.BulkIndexEmployees(ctx, msg.([]domain.Employee))
	},
		dataflow.WithWorkers(2),
		dataflow.WithRetry(reindexRetries, s.backoff),
		dataflow.WithErrorHandler(func(err error) bool {
			logger.WarnLog(ctx, "Bulk index batch failed after %d retries: %v", reindexRetries, err)
			return false
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reindex employees: %w", err)
	}

	logger.InfoLog(ctx, "Reindexed %d employees", len(employees))
	return len(employees), nil
}
