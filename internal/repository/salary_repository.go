package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/repository/salaryschema"
)

// LayoutCache is the salary layout snapshot shared by all requests.
type LayoutCache interface {
	LayoutSource
	InvalidateOnSchemaError(ctx context.Context, err error) bool
}

type salaryRepository struct {
	db      *sqlx.DB
	layouts LayoutCache
}

// NewSalaryRepository creates a schema-adaptive SalaryRepository.
func NewSalaryRepository(db *sqlx.DB, layouts LayoutCache) domain.SalaryRepository {
	return &salaryRepository{db: db, layouts: layouts}
}

func (r *salaryRepository) layout(ctx context.Context) (salaryschema.Layout, error) {
	l, err := r.layouts.Get(ctx)
	if err != nil {
		return salaryschema.Layout{}, fmt.Errorf("failed to resolve salary layout: %w", err)
	}
	return l, nil
}

// fail drops the cached layout when err says the schema changed, then wraps err.
func (r *salaryRepository) fail(ctx context.Context, action string, err error) error {
	r.layouts.InvalidateOnSchemaError(ctx, err)
	return wrapError(action, err)
}

func fieldsOf(s *domain.Salary) salaryschema.SalaryFields {
	return salaryschema.SalaryFields{
		EmployeeNumber: s.EmployeeNumber,
		Gross:          s.GrossSalary,
		Deduction:      s.TotalDeduction,
		Net:            s.NetSalary.Decimal,
		Month:          s.Month,
		Year:           s.Year,
	}
}

// Create inserts s and fills s.ID from the salary primary key.
func (r *salaryRepository) Create(ctx context.Context, s *domain.Salary) error {
	l, err := r.layout(ctx)
	if err != nil {
		return err
	}
	st, err := salaryschema.BuildInsertSalary(l, fieldsOf(s))
	if err != nil {
		return err
	}
	if err := r.db.QueryRowxContext(ctx, st.SQL, st.Args...).Scan(&s.ID); err != nil {
		return r.fail(ctx, "create salary", err)
	}
	if !l.HasYear {
		s.Year = 0
	}
	return nil
}

// List returns every salary row joined with its employee. Row keys follow
// the live salary columns.
func (r *salaryRepository) List(ctx context.Context, filter domain.SalaryFilter) ([]domain.SalaryRecord, error) {
	l, err := r.layout(ctx)
	if err != nil {
		return nil, err
	}
	st, err := salaryschema.BuildSalaryListQuery(l, filter.EmployeeNumber)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryxContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, r.fail(ctx, "list salaries", err)
	}
	defer rows.Close()

	records := []domain.SalaryRecord{}
	for rows.Next() {
		rec := make(map[string]interface{})
		if err := rows.MapScan(rec); err != nil {
			return nil, fmt.Errorf("failed to scan salary: %w", err)
		}
		for k, v := range rec {
			if b, ok := v.([]byte); ok {
				rec[k] = string(b)
			}
		}
		records = append(records, domain.SalaryRecord(rec))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return records, nil
}

func (r *salaryRepository) Update(ctx context.Context, id int64, s *domain.Salary) error {
	l, err := r.layout(ctx)
	if err != nil {
		return err
	}
	st, err := salaryschema.BuildUpdateSalary(l, id, fieldsOf(s))
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return r.fail(ctx, "update salary", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wrapError(fmt.Sprintf("update salary %d", id), sql.ErrNoRows)
	}
	s.ID = id
	return nil
}

func (r *salaryRepository) Delete(ctx context.Context, id int64) error {
	l, err := r.layout(ctx)
	if err != nil {
		return err
	}
	st, err := salaryschema.BuildDeleteSalary(l, id)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return r.fail(ctx, "delete salary", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wrapError(fmt.Sprintf("delete salary %d", id), sql.ErrNoRows)
	}
	return nil
}

func (r *salaryRepository) TracksYear(ctx context.Context) (bool, error) {
	l, err := r.layout(ctx)
	if err != nil {
		return false, err
	}
	return l.HasYear, nil
}

// MonthlyReport joins salary, employee and department for one month. Year
// is set on rows only when the salary table has a year column.
func (r *salaryRepository) MonthlyReport(ctx context.Context, filter domain.ReportFilter) ([]domain.ReportRow, error) {
	l, err := r.layout(ctx)
	if err != nil {
		return nil, err
	}
	st, err := salaryschema.BuildMonthlyReportQuery(l, filter.Month, filter.Year)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, r.fail(ctx, "generate monthly report", err)
	}
	defer rows.Close()

	report := []domain.ReportRow{}
	for rows.Next() {
		var row domain.ReportRow
		dest := []interface{}{&row.FirstName, &row.LastName, &row.Position, &row.DepartmentName, &row.NetSalary, &row.Month}
		var year sql.NullInt64
		if l.HasYear {
			dest = append(dest, &year)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		if year.Valid {
			y := int(year.Int64)
			row.Year = &y
		}
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return report, nil
}
