package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/osse101/HarvestRealm_Go/internal/domain"
)

func TestTranslate(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, Translate(domain.OpCommit, nil))
	})

	t.Run("domain errors pass through", func(t *testing.T) {
		for _, err := range []error{
			domain.ErrPositionOccupied,
			fmt.Errorf("%w: c1", domain.ErrCropNotFound),
			&domain.CropNotReadyError{CropID: "c1"},
			domain.ErrCropAlreadyHarvested,
		} {
			got := Translate(domain.OpPlant, err)
			assert.Same(t, err, got)
		}
	})

	t.Run("driver errors become persistence errors", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: PgCodeSerializationFailure, Message: "could not serialize access"}
		got := Translate(domain.OpCommit, pgErr)

		var pe *domain.PersistenceError
		assert.ErrorAs(t, got, &pe)
		assert.Equal(t, domain.OpCommit, pe.Op)
		assert.ErrorIs(t, got, domain.ErrPersistence)
		assert.Equal(t, PgCodeSerializationFailure, PgCode(got))
	})
}

func TestIsContention(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique violation", &pgconn.PgError{Code: PgCodeUniqueViolation}, true},
		{"deadlock", &pgconn.PgError{Code: PgCodeDeadlockDetected}, true},
		{"lock timeout", &pgconn.PgError{Code: PgCodeLockNotAvailable}, true},
		{"syntax error", &pgconn.PgError{Code: "42601"}, false},
		{"context deadline", fmt.Errorf("acquire: %w", context.DeadlineExceeded), true},
		{"plain", errors.New("eof"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsContention(tt.err))
		})
	}
}
