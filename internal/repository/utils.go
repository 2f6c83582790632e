package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/osse101/HarvestRealm_Go/internal/domain"
	"github.com/osse101/HarvestRealm_Go/internal/logger"
)

// SafeRollback rolls back a transaction and logs any error
func SafeRollback(ctx context.Context, tx Tx) {
	if err := tx.Rollback(ctx); err != nil {
		// Check for common "closed" errors to avoid noise
		if !isTxClosed(err) {
			logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
		}
	}
}

func isTxClosed(err error) bool {
	return errors.Is(err, sql.ErrTxDone) || strings.Contains(err.Error(), domain.ErrMsgTxClosed)
}
