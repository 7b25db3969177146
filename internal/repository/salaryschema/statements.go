package salaryschema

import (
	"fmt"

	"github.com/locvowork/epms/internal/repository/builder"
	"github.com/shopspring/decimal"
)

const (
	grossColumn     = "gross_salary"
	deductionColumn = "total_deduction"
	netColumn       = "net_salary"
	monthColumn     = "month"
)

// Kind tags the shape of a Statement.
type Kind int

const (
	KindInsert Kind = iota + 1
	KindUpdate
	KindSelect
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	case KindSelect:
		return "select"
	case KindDelete:
		return "delete"
	}
	return "unknown"
}

// Statement is a composed SQL statement with its positional arguments.
type Statement struct {
	Kind Kind
	SQL  string
	Args []interface{}
}

// Validate checks that SQL references exactly $1..$n for its n arguments.
func (s Statement) Validate() error {
	if err := builder.CheckPlaceholders(s.SQL, s.Args); err != nil {
		return fmt.Errorf("%s statement: %w", s.Kind, err)
	}
	return nil
}

// SalaryFields are the values written by insert and update. Year is used
// only when the layout has a year column.
type SalaryFields struct {
	EmployeeNumber string
	Gross          decimal.Decimal
	Deduction      decimal.Decimal
	Net            decimal.Decimal
	Month          string
	Year           int
}

func newStatement(kind Kind, b *builder.SQLBuilder) (Statement, error) {
	sql, args := b.Build()
	st := Statement{Kind: kind, SQL: sql, Args: args}
	if err := st.Validate(); err != nil {
		return Statement{}, err
	}
	return st, nil
}

func col(table, column string) string {
	return builder.Ident(table + "." + column)
}

// BuildInsertSalary inserts one salary row. Columns and arguments are
// [link, gross, deduction, net, month] plus year when the layout has one,
// always in that order.
func BuildInsertSalary(l Layout, f SalaryFields) (Statement, error) {
	cols := []string{
		builder.Ident(l.EmployeeLinkColumn),
		builder.Ident(grossColumn),
		builder.Ident(deductionColumn),
		builder.Ident(netColumn),
		builder.Ident(monthColumn),
	}
	vals := []interface{}{f.EmployeeNumber, f.Gross, f.Deduction, f.Net, f.Month}
	if l.HasYear {
		cols = append(cols, builder.Ident(l.YearColumn))
		vals = append(vals, f.Year)
	}

	b := builder.NewSQLBuilder().
		Insert(builder.Ident(SalaryTable), cols...).
		Values(vals...).
		Returning(builder.Ident(l.SalaryPrimaryKey))
	return newStatement(KindInsert, b)
}

// BuildUpdateSalary rewrites gross, deduction, net and month of the row
// whose salary primary key equals id. The year column is set only when
// f.Year is non-zero, so an omitted year keeps the stored one.
func BuildUpdateSalary(l Layout, id int64, f SalaryFields) (Statement, error) {
	b := builder.NewSQLBuilder().
		Update(builder.Ident(SalaryTable)).
		Set(builder.Ident(grossColumn), f.Gross).
		Set(builder.Ident(deductionColumn), f.Deduction).
		Set(builder.Ident(netColumn), f.Net).
		Set(builder.Ident(monthColumn), f.Month)
	if l.HasYear && f.Year != 0 {
		b.Set(builder.Ident(l.YearColumn), f.Year)
	}
	b.Where(builder.Ident(l.SalaryPrimaryKey)+" = ?", id)
	return newStatement(KindUpdate, b)
}

// BuildDeleteSalary removes the row whose salary primary key equals id.
func BuildDeleteSalary(l Layout, id int64) (Statement, error) {
	b := builder.NewSQLBuilder().
		Delete(builder.Ident(SalaryTable)).
		Where(builder.Ident(l.SalaryPrimaryKey)+" = ?", id)
	return newStatement(KindDelete, b)
}

// BuildSalaryListQuery selects every salary column joined with the
// employee's name and position. A non-empty employeeNumber restricts the
// listing to that employee.
func BuildSalaryListQuery(l Layout, employeeNumber string) (Statement, error) {
	b := builder.NewSQLBuilder().
		Select(
			builder.Ident(SalaryTable+".*"),
			col(EmployeeTable, "first_name"),
			col(EmployeeTable, "last_name"),
			col(EmployeeTable, "position"),
		).
		From(builder.Ident(SalaryTable)).
		Join("INNER", builder.Ident(EmployeeTable),
			col(SalaryTable, l.EmployeeLinkColumn)+" = "+col(EmployeeTable, l.EmployeePrimaryKey))
	if employeeNumber != "" {
		b.Where(col(SalaryTable, l.EmployeeLinkColumn)+" = ?", employeeNumber)
	}
	b.OrderBy(col(SalaryTable, l.SalaryPrimaryKey) + " ASC")
	return newStatement(KindSelect, b)
}

// BuildMonthlyReportQuery joins salary -> employee -> department for one
// month. The year filter and the year output column apply only when the
// layout has a year column; a nil year matches all years.
func BuildMonthlyReportQuery(l Layout, month string, year *int) (Statement, error) {
	cols := []string{
		col(EmployeeTable, "first_name"),
		col(EmployeeTable, "last_name"),
		col(EmployeeTable, "position"),
		col(DepartmentTable, "department_name"),
		col(SalaryTable, netColumn),
		col(SalaryTable, monthColumn),
	}
	if l.HasYear {
		cols = append(cols, col(SalaryTable, l.YearColumn))
	}

	b := builder.NewSQLBuilder().
		Select(cols...).
		From(builder.Ident(SalaryTable)).
		Join("INNER", builder.Ident(EmployeeTable),
			col(SalaryTable, l.EmployeeLinkColumn)+" = "+col(EmployeeTable, l.EmployeePrimaryKey)).
		Join("INNER", builder.Ident(DepartmentTable),
			col(EmployeeTable, "department_code")+" = "+col(DepartmentTable, "department_code")).
		Where(col(SalaryTable, monthColumn)+" = ?", month)
	if l.HasYear && year != nil {
		b.Where(col(SalaryTable, l.YearColumn)+" = ?", *year)
	}
	b.OrderBy(col(EmployeeTable, "last_name") + " ASC").
		OrderBy(col(EmployeeTable, "first_name") + " ASC")
	return newStatement(KindSelect, b)
}
