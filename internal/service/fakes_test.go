package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/locvowork/epms/internal/domain"
)

type fakeEmployees struct {
	byNumber map[string]domain.Employee
	created  []domain.Employee
	deleted  []string
}

func newFakeEmployees(numbers ...string) *fakeEmployees {
	f := &fakeEmployees{byNumber: map[string]domain.Employee{}}
	for _, n := range numbers {
		f.byNumber[n] = domain.Employee{EmployeeNumber: n, FirstName: "F" + n, LastName: "L" + n}
	}
	return f
}

func (f *fakeEmployees) Create(ctx context.Context, e *domain.Employee) error {
	if _, ok := f.byNumber[e.EmployeeNumber]; ok {
		return domain.ErrConflict
	}
	f.byNumber[e.EmployeeNumber] = *e
	f.created = append(f.created, *e)
	return nil
}

func (f *fakeEmployees) GetByNumber(ctx context.Context, n string) (*domain.Employee, error) {
	e, ok := f.byNumber[n]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (f *fakeEmployees) Exists(ctx context.Context, n string) (bool, error) {
	_, ok := f.byNumber[n]
	return ok, nil
}

func (f *fakeEmployees) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	out := make([]domain.Employee, 0, len(f.byNumber))
	for _, e := range f.byNumber {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEmployees) Delete(ctx context.Context, n string) error {
	if _, ok := f.byNumber[n]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byNumber, n)
	f.deleted = append(f.deleted, n)
	return nil
}

type fakeDepartments struct {
	codes map[string]bool
}

func (f *fakeDepartments) Create(ctx context.Context, d *domain.Department) error {
	f.codes[d.DepartmentCode] = true
	return nil
}

func (f *fakeDepartments) List(ctx context.Context) ([]domain.Department, error) {
	return nil, nil
}

func (f *fakeDepartments) Exists(ctx context.Context, code string) (bool, error) {
	return f.codes[code], nil
}

type fakeAssignments struct {
	created []domain.EmployeeDepartment
}

func (f *fakeAssignments) Create(ctx context.Context, a *domain.EmployeeDepartment) error {
	a.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *a)
	return nil
}

func (f *fakeAssignments) ListByEmployee(ctx context.Context, n string) ([]domain.EmployeeDepartment, error) {
	return f.created, nil
}

type fakeSalaries struct {
	created []domain.Salary
	updated map[int64]domain.Salary
	report  []domain.ReportRow
	filter  domain.ReportFilter
	noYear  bool
}

func (f *fakeSalaries) Create(ctx context.Context, s *domain.Salary) error {
	s.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *s)
	return nil
}

func (f *fakeSalaries) List(ctx context.Context, filter domain.SalaryFilter) ([]domain.SalaryRecord, error) {
	return nil, nil
}

func (f *fakeSalaries) Update(ctx context.Context, id int64, s *domain.Salary) error {
	if f.updated == nil {
		f.updated = map[int64]domain.Salary{}
	}
	f.updated[id] = *s
	return nil
}

func (f *fakeSalaries) Delete(ctx context.Context, id int64) error {
	return nil
}

func (f *fakeSalaries) MonthlyReport(ctx context.Context, filter domain.ReportFilter) ([]domain.ReportRow, error) {
	f.filter = filter
	return f.report, nil
}

func (f *fakeSalaries) TracksYear(ctx context.Context) (bool, error) {
	return !f.noYear, nil
}

type fakeUsers struct {
	users []domain.User
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", domain.ErrNotFound)
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	n := 0
	for _, u := range f.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (f *fakeUsers) Create(ctx context.Context, u *domain.User) error {
	u.ID = int64(len(f.users) + 1)
	f.users = append(f.users, *u)
	return nil
}

type fakeIndex struct {
	mu      sync.Mutex
	indexed []domain.Employee
	removed []string
	batches []int
	err     error
	// failures makes that many BulkIndexEmployees calls fail before err applies.
	failures int
}

func (f *fakeIndex) IndexEmployee(ctx context.Context, e domain.Employee) error {
	f.indexed = append(f.indexed, e)
	return f.err
}

func (f *fakeIndex) DeleteEmployee(ctx context.Context, n string) error {
	f.removed = append(f.removed, n)
	return f.err
}

func (f *fakeIndex) BulkIndexEmployees(ctx context.Context, employees []domain.Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("es_rejected_execution_exception")
	}
	f.batches = append(f.batches, len(employees))
	f.indexed = append(f.indexed, employees...)
	return f.err
}

func (f *fakeIndex) SearchEmployeesByName(ctx context.Context, name string) ([]domain.Employee, error) {
	return f.indexed, f.err
}

type fakeArchive struct {
	saved []domain.ReportSnapshot
}

func (f *fakeArchive) SaveReport(ctx context.Context, snap *domain.ReportSnapshot) error {
	f.saved = append(f.saved, *snap)
	return nil
}

func (f *fakeArchive) GetReport(ctx context.Context, month string, year int) (*domain.ReportSnapshot, error) {
	for _, s := range f.saved {
		if s.Month == month && s.Year == year {
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeArchive) ListReports(ctx context.Context) ([]domain.ReportSnapshot, error) {
	return f.saved, nil
}

type countingRefresher struct {
	calls int
}

func (r *countingRefresher) Refresh(ctx context.Context) {
	r.calls++
}
