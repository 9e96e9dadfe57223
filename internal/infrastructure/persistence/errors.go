package persistence

import (
	"errors"
	"fmt"

	"github.com/hotteokboki/lseed-project/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// PostgreSQL integrity constraint violation codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
)

func integrityCode(code string) (bool, bool) {
	switch code {
	case pgUniqueViolation:
		return true, true
	case pgForeignKeyViolation, pgCheckViolation, pgNotNullViolation:
		return true, false
	}
	return false, false
}

// translateError maps storage constraint violations to
// shared.IntegrityError and wraps everything else with op.
// gorm.ErrRecordNotFound becomes shared.ErrNotFound.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if ok, unique := integrityCode(pgErr.Code); ok {
			return &shared.IntegrityError{Unique: unique, Constraint: pgErr.ConstraintName, Err: err}
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if ok, unique := integrityCode(string(pqErr.Code)); ok {
			return &shared.IntegrityError{Unique: unique, Constraint: pqErr.Constraint, Err: err}
		}
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &shared.IntegrityError{Unique: true, Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated), errors.Is(err, gorm.ErrCheckConstraintViolated):
		return &shared.IntegrityError{Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
