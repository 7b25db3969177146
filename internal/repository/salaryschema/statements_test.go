package salaryschema

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	withYear = Layout{
		EmployeeLinkColumn: "employee_number",
		EmployeePrimaryKey: "employee_number",
		SalaryPrimaryKey:   "salary_id",
		HasYear:            true,
		YearColumn:         "year",
	}
	withoutYear = Layout{
		EmployeeLinkColumn: "employeeId",
		EmployeePrimaryKey: "employee_number",
		SalaryPrimaryKey:   "salary_id",
	}
	fields = SalaryFields{
		EmployeeNumber: "E1",
		Gross:          decimal.NewFromInt(5000),
		Deduction:      decimal.NewFromInt(500),
		Net:            decimal.NewFromInt(4500),
		Month:          "January",
		Year:           2024,
	}
)

func TestBuildInsertSalary(t *testing.T) {
	t.Run("without year", func(t *testing.T) {
		st, err := BuildInsertSalary(withoutYear, fields)
		require.NoError(t, err)

		assert.Equal(t, KindInsert, st.Kind)
		assert.Equal(t,
			`INSERT INTO "salary" ("employeeId", "gross_salary", "total_deduction", "net_salary", "month") VALUES ($1, $2, $3, $4, $5) RETURNING "salary_id"`,
			st.SQL)
		assert.Equal(t, []interface{}{"E1", fields.Gross, fields.Deduction, fields.Net, "January"}, st.Args)
	})

	t.Run("with year", func(t *testing.T) {
		st, err := BuildInsertSalary(withYear, fields)
		require.NoError(t, err)

		assert.Equal(t,
			`INSERT INTO "salary" ("employee_number", "gross_salary", "total_deduction", "net_salary", "month", "year") VALUES ($1, $2, $3, $4, $5, $6) RETURNING "salary_id"`,
			st.SQL)
		require.Len(t, st.Args, 6)
		assert.Equal(t, "E1", st.Args[0])
		assert.Equal(t, "January", st.Args[4])
		assert.Equal(t, 2024, st.Args[5])
	})
}

func TestBuildUpdateSalary(t *testing.T) {
	t.Run("with year", func(t *testing.T) {
		st, err := BuildUpdateSalary(withYear, 42, fields)
		require.NoError(t, err)

		assert.Equal(t, KindUpdate, st.Kind)
		assert.Equal(t,
			`UPDATE "salary" SET "gross_salary" = $1, "total_deduction" = $2, "net_salary" = $3, "month" = $4, "year" = $5 WHERE "salary_id" = $6`,
			st.SQL)
		assert.Equal(t, []interface{}{fields.Gross, fields.Deduction, fields.Net, "January", 2024, int64(42)}, st.Args)
	})

	t.Run("without year", func(t *testing.T) {
		l := withoutYear
		l.SalaryPrimaryKey = "salaryId"
		st, err := BuildUpdateSalary(l, 7, fields)
		require.NoError(t, err)

		assert.Equal(t,
			`UPDATE "salary" SET "gross_salary" = $1, "total_deduction" = $2, "net_salary" = $3, "month" = $4 WHERE "salaryId" = $5`,
			st.SQL)
		assert.Len(t, st.Args, 5)
	})

	t.Run("omitted year keeps the stored one", func(t *testing.T) {
		f := fields
		f.Year = 0
		st, err := BuildUpdateSalary(withYear, 3, f)
		require.NoError(t, err)

		assert.Equal(t,
			`UPDATE "salary" SET "gross_salary" = $1, "total_deduction" = $2, "net_salary" = $3, "month" = $4 WHERE "salary_id" = $5`,
			st.SQL)
		assert.Equal(t, []interface{}{f.Gross, f.Deduction, f.Net, "January", int64(3)}, st.Args)
	})
}

func TestBuildDeleteSalary(t *testing.T) {
	st, err := BuildDeleteSalary(withYear, 9)
	require.NoError(t, err)
	assert.Equal(t, KindDelete, st.Kind)
	assert.Equal(t, `DELETE FROM "salary" WHERE "salary_id" = $1`, st.SQL)
	assert.Equal(t, []interface{}{int64(9)}, st.Args)
}

func TestBuildSalaryListQuery(t *testing.T) {
	st, err := BuildSalaryListQuery(withoutYear, "")
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "salary".*, "employee"."first_name", "employee"."last_name", "employee"."position" FROM "salary" `+
			`INNER JOIN "employee" ON "salary"."employeeId" = "employee"."employee_number" ORDER BY "salary"."salary_id" ASC`,
		st.SQL)
	assert.Empty(t, st.Args)

	st, err = BuildSalaryListQuery(withoutYear, "E1")
	require.NoError(t, err)
	assert.Contains(t, st.SQL, `WHERE "salary"."employeeId" = $1`)
	assert.Equal(t, []interface{}{"E1"}, st.Args)
}

func TestBuildMonthlyReportQuery(t *testing.T) {
	year := 2024

	t.Run("year column present", func(t *testing.T) {
		st, err := BuildMonthlyReportQuery(withYear, "March", &year)
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT "employee"."first_name", "employee"."last_name", "employee"."position", "department"."department_name", `+
				`"salary"."net_salary", "salary"."month", "salary"."year" FROM "salary" `+
				`INNER JOIN "employee" ON "salary"."employee_number" = "employee"."employee_number" `+
				`INNER JOIN "department" ON "employee"."department_code" = "department"."department_code" `+
				`WHERE "salary"."month" = $1 AND "salary"."year" = $2 `+
				`ORDER BY "employee"."last_name" ASC, "employee"."first_name" ASC`,
			st.SQL)
		assert.Equal(t, []interface{}{"March", 2024}, st.Args)
	})

	t.Run("year column absent ignores year", func(t *testing.T) {
		st, err := BuildMonthlyReportQuery(withoutYear, "March", &year)
		require.NoError(t, err)
		assert.NotContains(t, st.SQL, `"year"`)
		assert.Equal(t, []interface{}{"March"}, st.Args)
	})

	t.Run("year not requested", func(t *testing.T) {
		st, err := BuildMonthlyReportQuery(withYear, "March", nil)
		require.NoError(t, err)
		assert.Contains(t, st.SQL, `"salary"."year" FROM`)
		assert.NotContains(t, st.SQL, `"salary"."year" = `)
		assert.Equal(t, []interface{}{"March"}, st.Args)
	})
}

func TestStatementValidate(t *testing.T) {
	st := Statement{Kind: KindInsert, SQL: "INSERT INTO x (a, b) VALUES ($1, $2)", Args: []interface{}{1}}
	err := st.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert statement")
}
