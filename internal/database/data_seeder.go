package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/repository/builder"
	"github.com/locvowork/epms/internal/repository/salaryschema"
	"github.com/shopspring/decimal"
)

const (
	seedDepartmentSQL = `
		INSERT INTO department (department_code, department_name, gross_salary)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`
	seedEmployeeSQL = `
		INSERT INTO employee (employee_number, first_name, last_name, position, address, telephone, gender, hired_date, department_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT DO NOTHING`
	seedAssignmentSQL = `
		INSERT INTO employee_department (employee_number, department_code, assigned_date)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`
)

// SeedEmployeePrefix marks seeded employees so ClearData leaves real ones alone.
const SeedEmployeePrefix = "SEED"

type DataSeeder struct {
	db  *sqlx.DB
	rnd *rand.Rand
	now func() time.Time
}

func NewDataSeeder(db *sqlx.DB) *DataSeeder {
	return &DataSeeder{
		db:  db,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

var (
	seedDepartments = []domain.Department{
		{DepartmentCode: "ENG", DepartmentName: "Engineering", GrossSalary: decimal.NewFromInt(6000)},
		{DepartmentCode: "FIN", DepartmentName: "Finance", GrossSalary: decimal.NewFromInt(5000)},
		{DepartmentCode: "HR", DepartmentName: "Human Resources", GrossSalary: decimal.NewFromInt(4200)},
		{DepartmentCode: "OPS", DepartmentName: "Operations", GrossSalary: decimal.NewFromInt(3800)},
		{DepartmentCode: "SAL", DepartmentName: "Sales", GrossSalary: decimal.NewFromInt(4500)},
	}
	firstNames = []string{"Ann", "Bao", "Chloe", "Dung", "Emil", "Fatima", "Gia", "Hugo", "Ines", "Khoa"}
	lastNames  = []string{"Le", "Nguyen", "Tran", "Smith", "Garcia", "Kim", "Pham", "Muller", "Rossi", "Vo"}
	positions  = []string{"Engineer", "Analyst", "Manager", "Clerk", "Specialist"}
	streets    = []string{"Main St", "Le Loi", "Oak Ave", "Hai Ba Trung", "Market St"}
	genders    = []domain.Gender{domain.GenderMale, domain.GenderFemale, domain.GenderOther}
	monthNames = []string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	}
)

// SeedStats counts the rows written by SeedData.
type SeedStats struct {
	Departments int
	Employees   int
	Salaries    int
}

// SeedData writes demo departments, numEmployees employees with their
// assignments, and one salary row per employee for each of the last months
// months. Salary rows follow the live salary layout.
func (ds *DataSeeder) SeedData(ctx context.Context, numEmployees, months int) (SeedStats, error) {
	start := time.Now()
	fmt.Println("🚀 Seeding data...")

	if months > len(monthNames) {
		months = len(monthNames)
	}

	var stats SeedStats
	err := WithTx(ctx, ds.db, func(tx *sqlx.Tx) error {
		layout, err := salaryschema.NewInspector(tx).Probe(ctx)
		if err != nil {
			return err
		}

		fmt.Println("🏢 Creating departments...")
		for _, d := range seedDepartments {
			if _, err := tx.ExecContext(ctx, seedDepartmentSQL, d.DepartmentCode, d.DepartmentName, d.GrossSalary); err != nil {
				return fmt.Errorf("failed to insert department %s: %w", d.DepartmentCode, err)
			}
			stats.Departments++
		}

		fmt.Println("👥 Creating employees and salaries...")
		empStmt, err := tx.PreparexContext(ctx, seedEmployeeSQL)
		if err != nil {
			return err
		}
		defer empStmt.Close()
		assignStmt, err := tx.PreparexContext(ctx, seedAssignmentSQL)
		if err != nil {
			return err
		}
		defer assignStmt.Close()

		for i := 1; i <= numEmployees; i++ {
			e, dept := ds.employee(i)
			if _, err := empStmt.ExecContext(ctx, e.EmployeeNumber, e.FirstName, e.LastName, e.Position,
				e.Address, e.Telephone, e.Gender, e.HiredDate, e.DepartmentCode); err != nil {
				return fmt.Errorf("failed to insert employee %s: %w", e.EmployeeNumber, err)
			}
			if _, err := assignStmt.ExecContext(ctx, e.EmployeeNumber, dept.DepartmentCode, e.HiredDate); err != nil {
				return fmt.Errorf("failed to assign employee %s: %w", e.EmployeeNumber, err)
			}
			stats.Employees++

			for _, f := range ds.salaries(e.EmployeeNumber, dept, months) {
				st, err := salaryschema.BuildInsertSalary(layout, f)
				if err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx, st.SQL, st.Args...); err != nil {
					return fmt.Errorf("failed to insert salary of %s: %w", e.EmployeeNumber, err)
				}
				stats.Salaries++
			}
		}
		return nil
	})
	if err != nil {
		return SeedStats{}, err
	}

	fmt.Printf("🎉 Done in %v\n", time.Since(start))
	fmt.Printf("📊 Stats: %d departments, %d employees, %d salaries\n", stats.Departments, stats.Employees, stats.Salaries)
	return stats, nil
}

func (ds *DataSeeder) employee(i int) (domain.Employee, domain.Department) {
	dept := seedDepartments[ds.rnd.Intn(len(seedDepartments))]
	code := dept.DepartmentCode
	hired := ds.now().AddDate(-1-ds.rnd.Intn(8), -ds.rnd.Intn(12), 0)
	return domain.Employee{
		EmployeeNumber: fmt.Sprintf("%s%04d", SeedEmployeePrefix, i),
		FirstName:      firstNames[ds.rnd.Intn(len(firstNames))],
		LastName:       lastNames[ds.rnd.Intn(len(lastNames))],
		Position:       positions[ds.rnd.Intn(len(positions))],
		Address:        fmt.Sprintf("%d %s", 1+ds.rnd.Intn(200), streets[ds.rnd.Intn(len(streets))]),
		Telephone:      fmt.Sprintf("555-%04d", ds.rnd.Intn(10000)),
		Gender:         genders[ds.rnd.Intn(len(genders))],
		HiredDate:      domain.NewDate(hired),
		DepartmentCode: &code,
	}, dept
}

// salaries returns one salary per month, walking back from the current month.
func (ds *DataSeeder) salaries(employeeNumber string, dept domain.Department, months int) []salaryschema.SalaryFields {
	now := ds.now()
	out := make([]salaryschema.SalaryFields, 0, months)
	for m := 0; m < months; m++ {
		t := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -m, 0)
		gross := dept.GrossSalary.Add(decimal.NewFromInt(int64(ds.rnd.Intn(1000))))
		deduction := gross.Mul(decimal.NewFromFloat(0.1)).Round(2)
		out = append(out, salaryschema.SalaryFields{
			EmployeeNumber: employeeNumber,
			Gross:          gross,
			Deduction:      deduction,
			Net:            gross.Sub(deduction),
			Month:          monthNames[t.Month()-1],
			Year:           t.Year(),
		})
	}
	return out
}

// ClearData removes seeded employees with their salaries and assignments,
// then the seeded departments nobody else references. Users are kept.
func (ds *DataSeeder) ClearData(ctx context.Context) error {
	fmt.Println("🗑️  Clearing data...")

	return WithTx(ctx, ds.db, func(tx *sqlx.Tx) error {
		layout, err := salaryschema.NewInspector(tx).Probe(ctx)
		if err != nil {
			return err
		}
		pattern := SeedEmployeePrefix + "%"

		// Clear children first
		query, args := builder.NewSQLBuilder().
			Delete(builder.Ident(salaryschema.SalaryTable)).
			Where(builder.Ident(layout.EmployeeLinkColumn)+" LIKE ?", pattern).
			Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete salaries: %w", err)
		}

		query, args = builder.NewSQLBuilder().
			Delete("employee_department").
			Where("employee_number LIKE ?", pattern).
			Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete assignments: %w", err)
		}

		query, args = builder.NewSQLBuilder().
			Delete("employee").
			Where("employee_number LIKE ?", pattern).
			Build()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to delete employees: %w", err)
		}
		n, _ := res.RowsAffected()

		for _, d := range seedDepartments {
			query, args = builder.NewSQLBuilder().
				Delete("department").
				Where("department_code = ?", d.DepartmentCode).
				Where("NOT EXISTS (SELECT 1 FROM employee_department ed WHERE ed.department_code = department.department_code)").
				Build()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("failed to delete department %s: %w", d.DepartmentCode, err)
			}
		}

		fmt.Printf("✅ Cleared %d seeded employees\n", n)
		return nil
	})
}

// Presets
type SeedPreset string

const (
	PresetSmall  SeedPreset = "small"
	PresetMedium SeedPreset = "medium"
	PresetLarge  SeedPreset = "large"
)

// GetPresetConfig returns configuration for a preset
func GetPresetConfig(preset SeedPreset) (numEmployees, months int) {
	switch preset {
	case PresetSmall:
		return 10, 3
	case PresetMedium:
		return 100, 6
	case PresetLarge:
		return 1000, 12
	default:
		return 100, 6
	}
}
