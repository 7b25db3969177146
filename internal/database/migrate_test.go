package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "postgres"), mock
}

func expectCreate(mock sqlmock.Sqlmock, table string) *sqlmock.ExpectedExec {
	return mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + table + " ("))
}

func TestMigrate(t *testing.T) {
	t.Run("creates tables in dependency order", func(t *testing.T) {
		db, mock := newMockDB(t)
		for _, table := range []string{"employee", "department", "users", "salary", "employee_department"} {
			expectCreate(mock, table).WillReturnResult(sqlmock.NewResult(0, 0))
		}

		require.NoError(t, NewMigrator(db).Migrate(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("falls back to employee_department without foreign keys", func(t *testing.T) {
		db, mock := newMockDB(t)
		for _, table := range []string{"employee", "department", "users", "salary"} {
			expectCreate(mock, table).WillReturnResult(sqlmock.NewResult(0, 0))
		}
		mock.ExpectExec(regexp.QuoteMeta("REFERENCES department(department_code)")).
			WillReturnError(errors.New("cannot add foreign key constraint"))
		expectCreate(mock, "employee_department").WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, NewMigrator(db).Migrate(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops on a failing parent table", func(t *testing.T) {
		db, mock := newMockDB(t)
		expectCreate(mock, "employee").WillReturnError(errors.New("connection refused"))

		err := NewMigrator(db).Migrate(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "employee table")
	})
}

func TestEnsureSalaryTable(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(salaryTableExists)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		created, err := NewMigrator(db).EnsureSalaryTable(context.Background())
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(salaryTableExists)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		expectCreate(mock, "salary").WillReturnResult(sqlmock.NewResult(0, 0))

		created, err := NewMigrator(db).EnsureSalaryTable(context.Background())
		require.NoError(t, err)
		assert.True(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
