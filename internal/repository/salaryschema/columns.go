// Package salaryschema resolves the deployed layout of the salary and
// employee tables and composes the salary statements against it.
package salaryschema

import "strings"

const (
	SalaryTable     = "salary"
	EmployeeTable   = "employee"
	DepartmentTable = "department"

	DefaultEmployeeLinkColumn = "employee_id"
	DefaultEmployeePrimaryKey = "employee_number"
	DefaultSalaryPrimaryKey   = "salary_id"

	YearColumn = "year"
)

// Column is the metadata of one table column.
type Column struct {
	Name       string `db:"column_name"`
	DataType   string `db:"data_type"`
	PrimaryKey bool   `db:"is_primary"`
}

// ResolveEmployeeLinkColumn returns the first salary column whose name
// contains "employee" (case-insensitive). fallback is true when none matched
// and DefaultEmployeeLinkColumn was returned.
func ResolveEmployeeLinkColumn(salaryColumns []Column) (name string, fallback bool) {
	for _, c := range salaryColumns {
		if strings.Contains(strings.ToLower(c.Name), "employee") {
			return c.Name, false
		}
	}
	return DefaultEmployeeLinkColumn, true
}

// ResolveEmployeePrimaryKey returns the first employee column flagged as primary key.
func ResolveEmployeePrimaryKey(employeeColumns []Column) (name string, fallback bool) {
	return primaryKey(employeeColumns, DefaultEmployeePrimaryKey)
}

// ResolveSalaryPrimaryKey returns the first salary column flagged as primary key.
func ResolveSalaryPrimaryKey(salaryColumns []Column) (name string, fallback bool) {
	return primaryKey(salaryColumns, DefaultSalaryPrimaryKey)
}

func primaryKey(cols []Column, def string) (string, bool) {
	for _, c := range cols {
		if c.PrimaryKey {
			return c.Name, false
		}
	}
	return def, true
}

// HasYearColumn reports whether a column named exactly "year" (any case) exists.
func HasYearColumn(cols []Column) bool {
	for _, c := range cols {
		if strings.EqualFold(c.Name, YearColumn) {
			return true
		}
	}
	return false
}

// Layout is an immutable snapshot of the resolved salary/employee structure.
type Layout struct {
	EmployeeLinkColumn string
	EmployeePrimaryKey string
	SalaryPrimaryKey   string
	HasYear            bool
	// YearColumn is the year column as spelled in the table; empty when HasYear is false.
	YearColumn string
	// Fallbacks lists the fields that were resolved to a default name.
	Fallbacks []string
}

// NewLayout resolves a Layout from the column metadata of both tables.
func NewLayout(salaryColumns, employeeColumns []Column) Layout {
	var l Layout
	var fb bool

	if l.EmployeeLinkColumn, fb = ResolveEmployeeLinkColumn(salaryColumns); fb {
		l.Fallbacks = append(l.Fallbacks, "employee link column")
	}
	if l.EmployeePrimaryKey, fb = ResolveEmployeePrimaryKey(employeeColumns); fb {
		l.Fallbacks = append(l.Fallbacks, "employee primary key")
	}
	if l.SalaryPrimaryKey, fb = ResolveSalaryPrimaryKey(salaryColumns); fb {
		l.Fallbacks = append(l.Fallbacks, "salary primary key")
	}
	for _, c := range salaryColumns {
		if strings.EqualFold(c.Name, YearColumn) {
			l.HasYear = true
			l.YearColumn = c.Name
			break
		}
	}
	return l
}
