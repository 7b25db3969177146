package service

import (
	"context"

	"github.com/locvowork/epms/internal/domain"
)

// DepartmentService handles business logic for departments
type DepartmentService interface {
	Create(ctx context.Context, d *domain.Department) error
	List(ctx context.Context) ([]domain.Department, error)
}

type departmentService struct {
	departments domain.DepartmentRepository
}

// NewDepartmentService creates a new DepartmentService
func NewDepartmentService(departments domain.DepartmentRepository) DepartmentService {
	return &departmentService{departments: departments}
}

func (s *departmentService) Create(ctx context.Context, d *domain.Department) error {
	if err := required(map[string]string{
		"departmentCode": d.DepartmentCode,
		"departmentName": d.DepartmentName,
	}); err != nil {
		return err
	}
	if d.GrossSalary.IsNegative() {
		return invalid("grossSalary must not be negative")
	}
	return s.departments.Create(ctx, d)
}

func (s *departmentService) List(ctx context.Context) ([]domain.Department, error) {
	return s.departments.List(ctx)
}
