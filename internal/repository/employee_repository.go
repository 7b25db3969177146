package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/locvowork/epms/internal/database"
	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/logger"
	"github.com/locvowork/epms/internal/repository/builder"
	"github.com/locvowork/epms/internal/repository/salaryschema"
)

var employeeColumns = []string{
	"employee_number", "first_name", "last_name", "position", "address",
	"telephone", "gender", "hired_date", "department_code",
}

// LayoutSource provides the current salary table layout.
type LayoutSource interface {
	Get(ctx context.Context) (salaryschema.Layout, error)
}

type employeeRepository struct {
	db      *sqlx.DB
	layouts LayoutSource
}

// NewEmployeeRepository creates a new instance of EmployeeRepository.
// layouts locates the salary rows removed together with an employee.
func NewEmployeeRepository(db *sqlx.DB, layouts LayoutSource) domain.EmployeeRepository {
	return &employeeRepository{db: db, layouts: layouts}
}

func (r *employeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query, args := builder.NewSQLBuilder().
			Insert("employee", employeeColumns...).
			Values(e.EmployeeNumber, e.FirstName, e.LastName, e.Position, e.Address,
				e.Telephone, e.Gender, e.HiredDate, e.DepartmentCode).
			Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return wrapError("create employee", err)
		}

		if e.DepartmentCode == nil || *e.DepartmentCode == "" {
			return nil
		}
		query, args = builder.NewSQLBuilder().
			Insert("employee_department", "employee_number", "department_code", "assigned_date").
			Values(e.EmployeeNumber, *e.DepartmentCode, e.HiredDate).
			Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return wrapError("assign employee department", err)
		}
		return nil
	})
}

func (r *employeeRepository) GetByNumber(ctx context.Context, employeeNumber string) (*domain.Employee, error) {
	query, args := builder.NewSQLBuilder().
		Select(employeeColumns...).
		From("employee").
		Where("employee_number = ?", employeeNumber).
		Build()

	var e domain.Employee
	if err := r.db.GetContext(ctx, &e, query, args...); err != nil {
		return nil, wrapError("get employee "+employeeNumber, err)
	}
	return &e, nil
}

func (r *employeeRepository) Exists(ctx context.Context, employeeNumber string) (bool, error) {
	query, args := builder.NewSQLBuilder().
		Select("COUNT(*)").
		From("employee").
		Where("employee_number = ?", employeeNumber).
		Build()

	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return false, wrapError("check employee", err)
	}
	return n > 0, nil
}

func (r *employeeRepository) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	b := builder.NewSQLBuilder()
	b.Select(employeeColumns...).
		From("employee").
		OrderBy("employee_number ASC")

	if filter.Limit > 0 {
		b.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		b.Offset(filter.Offset)
	}

	query, args := b.Build()
	employees := []domain.Employee{}
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, wrapError("list employees", err)
	}
	return employees, nil
}

// Delete removes salary rows and assignments explicitly so the cascade also
// holds on deployments created without foreign keys.
func (r *employeeRepository) Delete(ctx context.Context, employeeNumber string) error {
	layout, err := r.layouts.Get(ctx)
	hasSalary := true
	if err != nil {
		if !errors.Is(err, domain.ErrTableNotFound) {
			return err
		}
		hasSalary = false
	}

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if hasSalary {
			query, args := builder.NewSQLBuilder().
				Delete(builder.Ident(salaryschema.SalaryTable)).
				Where(builder.Ident(layout.EmployeeLinkColumn)+" = ?", employeeNumber).
				Build()
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return wrapError("delete employee salaries", err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				logger.InfoLog(ctx, "Removed %d salary rows of employee %s", n, employeeNumber)
			}
		}

		query, args := builder.NewSQLBuilder().
			Delete("employee_department").
			Where("employee_number = ?", employeeNumber).
			Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return wrapError("delete employee assignments", err)
		}

		query, args = builder.NewSQLBuilder().
			Delete("employee").
			Where("employee_number = ?", employeeNumber).
			Build()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return wrapError("delete employee", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return wrapError("delete employee "+employeeNumber, sql.ErrNoRows)
		}
		return nil
	})
}
