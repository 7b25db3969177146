package salaryschema

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/locvowork/epms/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columnsRe = regexp.QuoteMeta("FROM information_schema.columns c")

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "postgres"), mock
}

func columnRows(cols ...Column) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"column_name", "data_type", "is_primary"})
	for _, c := range cols {
		rows.AddRow(c.Name, c.DataType, c.PrimaryKey)
	}
	return rows
}

func TestInspectorProbe(t *testing.T) {
	t.Run("resolves drifted schema", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(columnsRe).WithArgs("salary").WillReturnRows(columnRows(
			Column{Name: "id", DataType: "integer", PrimaryKey: true},
			Column{Name: "employeeId", DataType: "character varying"},
			Column{Name: "grossSalary", DataType: "numeric"},
			Column{Name: "month", DataType: "character varying"},
		))
		mock.ExpectQuery(columnsRe).WithArgs("employee").WillReturnRows(columnRows(
			Column{Name: "employee_number", DataType: "character varying", PrimaryKey: true},
		))

		l, err := NewInspector(db).Probe(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "employeeId", l.EmployeeLinkColumn)
		assert.Equal(t, "employee_number", l.EmployeePrimaryKey)
		assert.Equal(t, "id", l.SalaryPrimaryKey)
		assert.False(t, l.HasYear)
		assert.Empty(t, l.Fallbacks)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing salary table", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(columnsRe).WithArgs("salary").WillReturnRows(columnRows())

		_, err := NewInspector(db).Probe(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrTableNotFound))
	})

	t.Run("employee inspection failure falls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(columnsRe).WithArgs("salary").WillReturnRows(columnRows(
			Column{Name: "salary_id", PrimaryKey: true},
			Column{Name: "employee_number"},
			Column{Name: "year"},
		))
		mock.ExpectQuery(columnsRe).WithArgs("employee").WillReturnError(errors.New("permission denied"))

		l, err := NewInspector(db).Probe(context.Background())
		require.NoError(t, err)
		assert.Equal(t, DefaultEmployeePrimaryKey, l.EmployeePrimaryKey)
		assert.True(t, l.HasYear)
		assert.Equal(t, []string{"employee primary key"}, l.Fallbacks)
	})
}
