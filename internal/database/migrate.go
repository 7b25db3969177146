package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/locvowork/epms/internal/logger"
)

const createEmployeeTable = `
	CREATE TABLE IF NOT EXISTS employee (
		employee_number VARCHAR(20) PRIMARY KEY,
		first_name VARCHAR(50) NOT NULL,
		last_name VARCHAR(50) NOT NULL,
		position VARCHAR(50) NOT NULL,
		address VARCHAR(255) NOT NULL,
		telephone VARCHAR(20) NOT NULL,
		gender VARCHAR(10) NOT NULL CHECK (gender IN ('Male', 'Female', 'Other')),
		hired_date DATE NOT NULL,
		department_code VARCHAR(20)
	)`

const createDepartmentTable = `
	CREATE TABLE IF NOT EXISTS department (
		department_code VARCHAR(20) PRIMARY KEY,
		department_name VARCHAR(100) NOT NULL,
		gross_salary NUMERIC(10, 2) NOT NULL
	)`

const createUsersTable = `
	CREATE TABLE IF NOT EXISTS users (
		user_id SERIAL PRIMARY KEY,
		username VARCHAR(50) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(10) NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

const createSalaryTable = `
	CREATE TABLE IF NOT EXISTS salary (
		salary_id SERIAL PRIMARY KEY,
		employee_number VARCHAR(20) NOT NULL REFERENCES employee(employee_number) ON DELETE CASCADE,
		gross_salary NUMERIC(10, 2) NOT NULL,
		total_deduction NUMERIC(10, 2) NOT NULL,
		net_salary NUMERIC(10, 2) NOT NULL,
		month VARCHAR(20) NOT NULL,
		year INT NOT NULL
	)`

const createEmployeeDepartmentTable = `
	CREATE TABLE IF NOT EXISTS employee_department (
		id SERIAL PRIMARY KEY,
		employee_number VARCHAR(20) NOT NULL REFERENCES employee(employee_number) ON DELETE CASCADE,
		department_code VARCHAR(20) NOT NULL REFERENCES department(department_code) ON DELETE CASCADE,
		assigned_date DATE NOT NULL,
		CONSTRAINT unique_employee_department UNIQUE (employee_number, department_code)
	)`

const createEmployeeDepartmentTableNoFK = `
	CREATE TABLE IF NOT EXISTS employee_department (
		id SERIAL PRIMARY KEY,
		employee_number VARCHAR(20) NOT NULL,
		department_code VARCHAR(20) NOT NULL,
		assigned_date DATE NOT NULL,
		CONSTRAINT unique_employee_department UNIQUE (employee_number, department_code)
	)`

const salaryTableExists = `SELECT to_regclass('salary') IS NOT NULL`

// Migrator creates the EPMS tables idempotently.
type Migrator struct {
	db *sqlx.DB
}

// NewMigrator creates a new Migrator
func NewMigrator(db *sqlx.DB) *Migrator {
	return &Migrator{db: db}
}

// Migrate creates every table that does not exist yet, parents before
// children. When employee_department cannot be created with its foreign keys
// it is created without them.
func (m *Migrator) Migrate(ctx context.Context) error {
	return WithConn(ctx, m.db, func(conn *sqlx.Conn) error {
		steps := []struct {
			table string
			ddl   string
		}{
			{"employee", createEmployeeTable},
			{"department", createDepartmentTable},
			{"users", createUsersTable},
			{"salary", createSalaryTable},
		}
		for _, s := range steps {
			logger.InfoLog(ctx, "Creating %s table...", s.table)
			if _, err := conn.ExecContext(ctx, s.ddl); err != nil {
				return fmt.Errorf("failed to create %s table: %w", s.table, err)
			}
		}

		logger.InfoLog(ctx, "Creating employee_department table...")
		if _, err := conn.ExecContext(ctx, createEmployeeDepartmentTable); err != nil {
			logger.ErrorLog(ctx, "Error creating employee_department table: %v", err)
			logger.WarnLog(ctx, "Creating employee_department table without foreign keys")
			if _, err := conn.ExecContext(ctx, createEmployeeDepartmentTableNoFK); err != nil {
				return fmt.Errorf("failed to create employee_department table: %w", err)
			}
		}

		logger.InfoLog(ctx, "All tables created successfully")
		return nil
	})
}

// EnsureSalaryTable recreates the salary table when it has gone missing and
// reports whether it had to.
func (m *Migrator) EnsureSalaryTable(ctx context.Context) (bool, error) {
	var exists bool
	if err := m.db.GetContext(ctx, &exists, salaryTableExists); err != nil {
		return false, fmt.Errorf("failed to check salary table: %w", err)
	}
	if exists {
		logger.InfoLog(ctx, "Salary table exists")
		return false, nil
	}

	logger.WarnLog(ctx, "Salary table not found, creating it...")
	if _, err := m.db.ExecContext(ctx, createSalaryTable); err != nil {
		return false, fmt.Errorf("failed to create salary table: %w", err)
	}
	logger.InfoLog(ctx, "Salary table created successfully")
	return true, nil
}
