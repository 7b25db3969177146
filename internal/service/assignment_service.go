package service

import (
	"context"
	"fmt"

	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/logger"
)

// AssignmentService links employees to departments
type AssignmentService interface {
	Assign(ctx context.Context, a *domain.EmployeeDepartment) error
	ListByEmployee(ctx context.Context, employeeNumber string) ([]domain.EmployeeDepartment, error)
}

type assignmentService struct {
	employees   domain.EmployeeRepository
	departments domain.DepartmentRepository
	assignments domain.AssignmentRepository
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	employees domain.EmployeeRepository,
	departments domain.DepartmentRepository,
	assignments domain.AssignmentRepository,
) AssignmentService {
	return &assignmentService{employees: employees, departments: departments, assignments: assignments}
}

// Assign checks that both the employee and the department exist before
// inserting; either missing yields domain.ErrNotFound and nothing is written.
func (s *assignmentService) Assign(ctx context.Context, a *domain.EmployeeDepartment) error {
	if err := required(map[string]string{
		"employeeNumber": a.EmployeeNumber,
		"departmentCode": a.DepartmentCode,
	}); err != nil {
		return err
	}
	if a.AssignedDate.IsZero() {
		return invalid("missing assignedDate")
	}

	logger.InfoLog(ctx, "Assigning employee %s to department %s", a.EmployeeNumber, a.DepartmentCode)

	ok, err := s.employees.Exists(ctx, a.EmployeeNumber)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("employee %s: %w", a.EmployeeNumber, domain.ErrNotFound)
	}

	ok, err = s.departments.Exists(ctx, a.DepartmentCode)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("department %s: %w", a.DepartmentCode, domain.ErrNotFound)
	}

	return s.assignments.Create(ctx, a)
}

func (s *assignmentService) ListByEmployee(ctx context.Context, employeeNumber string) ([]domain.EmployeeDepartment, error) {
	return s.assignments.ListByEmployee(ctx, employeeNumber)
}
