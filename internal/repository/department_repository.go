package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/repository/builder"
)

type departmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository creates a new instance of DepartmentRepository
func NewDepartmentRepository(db *sqlx.DB) domain.DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, d *domain.Department) error {
	query, args := builder.NewSQLBuilder().
		Insert("department", "department_code", "department_name", "gross_salary").
		Values(d.DepartmentCode, d.DepartmentName, d.GrossSalary).
		Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return wrapError("create department", err)
	}
	return nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	query, args := builder.NewSQLBuilder().
		Select("department_code", "department_name", "gross_salary").
		From("department").
		OrderBy("department_code ASC").
		Build()

	departments := []domain.Department{}
	if err := r.db.SelectContext(ctx, &departments, query, args...); err != nil {
		return nil, wrapError("list departments", err)
	}
	return departments, nil
}

func (r *departmentRepository) Exists(ctx context.Context, departmentCode string) (bool, error) {
	query, args := builder.NewSQLBuilder().
		Select("COUNT(*)").
		From("department").
		Where("department_code = ?", departmentCode).
		Build()

	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return false, wrapError("check department", err)
	}
	return n > 0, nil
}
