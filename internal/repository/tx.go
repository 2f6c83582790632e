package repository

import (
	"context"
)

// Tx is the commit/rollback surface shared by the pgx and database/sql transactions.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
