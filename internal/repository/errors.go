package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/locvowork/epms/internal/domain"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqUndefinedTable      = "42P01"
)

// wrapError translates driver errors into domain errors where one applies
// and prefixes everything with the failed action.
func wrapError(action string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", action, domain.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w: %s", action, domain.ErrConflict, pqErr.Message)
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", action, domain.ErrNotFound, pqErr.Message)
		case pqUndefinedTable:
			return fmt.Errorf("%s: %w: %s", action, domain.ErrTableNotFound, pqErr.Message)
		}
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
