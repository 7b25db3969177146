package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Gender is the enumerated gender of an employee.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Valid reports whether g is one of the accepted values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Role is the authorization role of a user account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Employee represents the employee table
type Employee struct {
	EmployeeNumber string  `json:"employeeNumber" db:"employee_number"`
	FirstName      string  `json:"firstName" db:"first_name"`
	LastName       string  `json:"lastName" db:"last_name"`
	Position       string  `json:"position" db:"position"`
	Address        string  `json:"address" db:"address"`
	Telephone      string  `json:"telephone" db:"telephone"`
	Gender         Gender  `json:"gender" db:"gender"`
	HiredDate      Date    `json:"hiredDate" db:"hired_date"`
	DepartmentCode *string `json:"departmentCode,omitempty" db:"department_code"`
}

// Department represents the department table
type Department struct {
	DepartmentCode string          `json:"departmentCode" db:"department_code"`
	DepartmentName string          `json:"departmentName" db:"department_name"`
	GrossSalary    decimal.Decimal `json:"grossSalary" db:"gross_salary"`
}

// EmployeeDepartment links one employee to one department.
type EmployeeDepartment struct {
	ID             int64  `json:"id" db:"id"`
	EmployeeNumber string `json:"employeeNumber" db:"employee_number"`
	DepartmentCode string `json:"departmentCode" db:"department_code"`
	AssignedDate   Date   `json:"assignedDate" db:"assigned_date"`
}

// Salary is a salary record as submitted by clients. Year is ignored when
// the deployed salary table has no year column. NetSalary is invalid when
// the client left it out.
type Salary struct {
	ID             int64               `json:"salaryId"`
	EmployeeNumber string              `json:"employeeNumber"`
	GrossSalary    decimal.Decimal     `json:"grossSalary"`
	TotalDeduction decimal.Decimal     `json:"totalDeduction"`
	NetSalary      decimal.NullDecimal `json:"netSalary"`
	Month          string              `json:"month"`
	Year           int                 `json:"year,omitempty"`
}

// SalaryRecord is one row of the salary listing: every column of the
// deployed salary table plus the employee's name and position. The key set
// follows the live schema, so a table without a year column yields rows
// without a "year" key.
type SalaryRecord map[string]interface{}

// ReportRow is one line of the monthly payroll report.
type ReportRow struct {
	FirstName      string          `json:"firstName" db:"first_name"`
	LastName       string          `json:"lastName" db:"last_name"`
	Position       string          `json:"position" db:"position"`
	DepartmentName string          `json:"departmentName" db:"department_name"`
	NetSalary      decimal.Decimal `json:"netSalary" db:"net_salary"`
	Month          string          `json:"month" db:"month"`
	Year           *int            `json:"year,omitempty" db:"year"`
}

// ReportFilter selects the salary rows of a monthly report. A nil Year
// matches every year.
type ReportFilter struct {
	Month string
	Year  *int
}

// ReportSnapshot is an archived copy of a generated monthly report.
type ReportSnapshot struct {
	Month       string      `json:"month"`
	Year        int         `json:"year"`
	GeneratedBy string      `json:"generatedBy"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Rows        []ReportRow `json:"rows"`
	TotalNet    string      `json:"totalNet"`
}

// User represents the users table
type User struct {
	ID           int64     `json:"id" db:"user_id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
