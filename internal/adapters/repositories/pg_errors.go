package repositories

import (
	"attendance-service/internal/ports"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// mapWriteErr translates the constraint violations callers can act on into
// port errors. missingRef is the port error for a dangling foreign key: on
// insert the referenced row is missing (ErrNotFound), on delete it is still
// referenced (ErrConflict).
func mapWriteErr(err error, missingRef error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, ports.ErrConflict)
	case pgForeignKeyViolation:
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, missingRef)
	}
	return err
}
