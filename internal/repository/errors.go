package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/apperr"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translate maps driver and gorm errors onto the application error kinds.
func translate(err error, name string) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	var pgErr *pgconn.PgError
	isPg := errors.As(err, &pgErr)

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(fmt.Sprintf("No %s found", name))
	case errors.Is(err, gorm.ErrDuplicatedKey), isPg && pgErr.Code == pgUniqueViolation:
		return apperr.Conflict(fmt.Sprintf("A %s matching the supplied data already exists", name), err)
	case errors.Is(err, gorm.ErrForeignKeyViolated), isPg && pgErr.Code == pgForeignKeyViolation:
		return apperr.Conflict(fmt.Sprintf("The %s references a record that does not exist", name), err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Internal("database operation timed out", err)
	default:
		return apperr.Internal("database error", err)
	}
}
