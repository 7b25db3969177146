package salaryschema

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/logger"
)

const columnsQuery = `
	SELECT c.column_name, c.data_type,
		EXISTS (
			SELECT 1
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage k
				ON k.constraint_name = tc.constraint_name
				AND k.table_schema = tc.table_schema
				AND k.table_name = tc.table_name
			WHERE tc.constraint_type = 'PRIMARY KEY'
				AND tc.table_schema = c.table_schema
				AND tc.table_name = c.table_name
				AND k.column_name = c.column_name
		) AS is_primary
	FROM information_schema.columns c
	WHERE c.table_schema = current_schema() AND c.table_name = $1
	ORDER BY c.ordinal_position
`

// Inspector reads column metadata from information_schema.
type Inspector struct {
	db sqlx.QueryerContext
}

// NewInspector creates a new Inspector
func NewInspector(db sqlx.QueryerContext) *Inspector {
	return &Inspector{db: db}
}

// Columns returns the columns of table in ordinal order. A table without
// columns does not exist and yields domain.ErrTableNotFound.
func (i *Inspector) Columns(ctx context.Context, table string) ([]Column, error) {
	var cols []Column
	if err := sqlx.SelectContext(ctx, i.db, &cols, columnsQuery, table); err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%s %w", table, domain.ErrTableNotFound)
	}
	return cols, nil
}

// Probe inspects the salary and employee tables and resolves a Layout.
// A missing salary table is an error; an employee table that cannot be
// inspected only degrades the employee primary key to its default.
func (i *Inspector) Probe(ctx context.Context) (Layout, error) {
	salaryCols, err := i.Columns(ctx, SalaryTable)
	if err != nil {
		return Layout{}, err
	}

	employeeCols, err := i.Columns(ctx, EmployeeTable)
	if err != nil {
		logger.WarnLog(ctx, "Employee table inspection failed, using default primary key: %v", err)
		employeeCols = nil
	}

	layout := NewLayout(salaryCols, employeeCols)
	if len(layout.Fallbacks) > 0 {
		logger.WarnLog(ctx, "Salary schema resolved with defaults for: %s", strings.Join(layout.Fallbacks, ", "))
	}
	logger.InfoLog(ctx, "Salary schema: salary.%s -> employee.%s, salary pk %s, year column %t",
		layout.EmployeeLinkColumn, layout.EmployeePrimaryKey, layout.SalaryPrimaryKey, layout.HasYear)
	return layout, nil
}
