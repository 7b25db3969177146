package domain

import "context"

// EmployeeFilter defines criteria for listing employees
type EmployeeFilter struct {
	Limit  int
	Offset int
}

// SalaryFilter narrows a salary listing. Empty fields match everything.
type SalaryFilter struct {
	EmployeeNumber string
}

// EmployeeRepository defines the interface for employee data access
type EmployeeRepository interface {
	// Create inserts the employee and, when DepartmentCode is set, its department assignment.
	Create(ctx context.Context, e *Employee) error
	GetByNumber(ctx context.Context, employeeNumber string) (*Employee, error)
	Exists(ctx context.Context, employeeNumber string) (bool, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	// Delete removes the employee together with its salary rows and assignments.
	Delete(ctx context.Context, employeeNumber string) error
}

type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	List(ctx context.Context) ([]Department, error)
	Exists(ctx context.Context, departmentCode string) (bool, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, a *EmployeeDepartment) error
	ListByEmployee(ctx context.Context, employeeNumber string) ([]EmployeeDepartment, error)
}

type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	CountByRole(ctx context.Context, role Role) (int, error)
	Create(ctx context.Context, u *User) error
}

// SalaryRepository is schema-adaptive: every call resolves the deployed
// salary/employee column layout before composing SQL.
type SalaryRepository interface {
	Create(ctx context.Context, s *Salary) error
	List(ctx context.Context, filter SalaryFilter) ([]SalaryRecord, error)
	Update(ctx context.Context, id int64, s *Salary) error
	Delete(ctx context.Context, id int64) error
	MonthlyReport(ctx context.Context, filter ReportFilter) ([]ReportRow, error)
	// TracksYear reports whether the deployed salary table has a year column.
	TracksYear(ctx context.Context) (bool, error)
}

// EmployeeIndex is the full-text employee search backend.
type EmployeeIndex interface {
	IndexEmployee(ctx context.Context, e Employee) error
	DeleteEmployee(ctx context.Context, employeeNumber string) error
	BulkIndexEmployees(ctx context.Context, employees []Employee) error
	SearchEmployeesByName(ctx context.Context, name string) ([]Employee, error)
}

// ReportArchive stores generated monthly reports.
type ReportArchive interface {
	SaveReport(ctx context.Context, snap *ReportSnapshot) error
	GetReport(ctx context.Context, month string, year int) (*ReportSnapshot, error)
	ListReports(ctx context.Context) ([]ReportSnapshot, error)
}
