package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/repository/builder"
)

type assignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository
func NewAssignmentRepository(db *sqlx.DB) domain.AssignmentRepository {
	return &assignmentRepository{db: db}
}

// Create inserts the assignment and fills a.ID. A repeated
// (employee, department) pair yields domain.ErrConflict.
func (r *assignmentRepository) Create(ctx context.Context, a *domain.EmployeeDepartment) error {
	query, args := builder.NewSQLBuilder().
		Insert("employee_department", "employee_number", "department_code", "assigned_date").
		Values(a.EmployeeNumber, a.DepartmentCode, a.AssignedDate).
		Returning("id").
		Build()

	if err := r.db.GetContext(ctx, &a.ID, query, args...); err != nil {
		return wrapError("assign employee to department", err)
	}
	return nil
}

func (r *assignmentRepository) ListByEmployee(ctx context.Context, employeeNumber string) ([]domain.EmployeeDepartment, error) {
	query, args := builder.NewSQLBuilder().
		Select("id", "employee_number", "department_code", "assigned_date").
		From("employee_department").
		Where("employee_number = ?", employeeNumber).
		OrderBy("assigned_date DESC").
		Build()

	assignments := []domain.EmployeeDepartment{}
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, wrapError("list assignments", err)
	}
	return assignments, nil
}
