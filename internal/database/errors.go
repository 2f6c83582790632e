package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/osse101/HarvestRealm_Go/internal/domain"
)

// domainSentinels are errors the ledger raises on purpose; they are never
// re-labelled as persistence failures.
var domainSentinels = []error{
	domain.ErrValidation,
	domain.ErrPositionOccupied,
	domain.ErrInvalidSeedType,
	domain.ErrInsufficientInvestment,
	domain.ErrCropNotFound,
	domain.ErrCropNotReady,
	domain.ErrCropAlreadyHarvested,
	domain.ErrNotOwner,
	domain.ErrNotAuthorized,
	domain.ErrPlayerNotFound,
	domain.ErrPersistence,
}

// Translate turns a store error into a *domain.PersistenceError tagged with op.
// Domain errors and nil pass through untouched.
func Translate(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range domainSentinels {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return domain.NewPersistenceError(op, err)
}

// IsContention reports whether err is a store-level conflict: a constraint,
// serialization, deadlock or lock-timeout failure, or a cancelled wait.
func IsContention(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case PgCodeUniqueViolation, PgCodeForeignKeyViolation, PgCodeCheckViolation,
			PgCodeSerializationFailure, PgCodeDeadlockDetected, PgCodeLockNotAvailable:
			return true
		}
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// PgCode extracts the SQLSTATE from a Postgres error, or "" for anything else.
func PgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
