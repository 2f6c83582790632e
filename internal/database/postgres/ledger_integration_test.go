package postgres

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/osse101/HarvestRealm_Go/internal/database"
	"github.com/osse101/HarvestRealm_Go/internal/domain"
	"github.com/osse101/HarvestRealm_Go/internal/repository"
	"github.com/osse101/HarvestRealm_Go/internal/testing/ledgertest"
)

var (
	testDBConnString  string
	testPool          *pgxpool.Pool
	migrationsApplied bool
	migrationsMux     sync.Mutex
)

func TestMain(m *testing.M) {
	flag.Parse()

	var terminate func()
	if !testing.Short() {
		testDBConnString, terminate = setupContainer(context.Background())
	}

	code := m.Run()

	if testPool != nil {
		testPool.Close()
	}
	if terminate != nil {
		terminate()
	}
	os.Exit(code)
}

func setupContainer(ctx context.Context) (string, func()) {
	// Handle potential panics from testcontainers (no Docker available)
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic in setupContainer: %v\n", r)
		}
	}()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		fmt.Printf("WARNING: Failed to start postgres container: %v\n", err)
		return "", func() {}
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Printf("WARNING: Failed to get connection string: %v\n", err)
		_ = pgContainer.Terminate(ctx)
		return "", func() {}
	}

	return connStr, func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate container: %v\n", err)
		}
	}
}

// ensureLedger connects and applies migrations once for all tests in the package
func ensureLedger(t *testing.T) *Ledger {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if testDBConnString == "" {
		t.Skip("Skipping integration test: database not available")
	}

	migrationsMux.Lock()
	defer migrationsMux.Unlock()

	ctx := context.Background()
	if testPool == nil {
		pool, err := database.NewPool(ctx, testDBConnString, 20, time.Minute, 5*time.Minute)
		require.NoError(t, err)
		testPool = pool
	}
	if !migrationsApplied {
		require.NoError(t, database.Migrate(ctx, testPool))
		migrationsApplied = true
	}
	return NewLedger(testPool)
}

func TestLedger_Integration(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T) repository.Ledger {
		return ensureLedger(t)
	})
}

func TestLedger_PersistenceErrorTranslation(t *testing.T) {
	l := ensureLedger(t)
	ctx := context.Background()

	// Inserting a crop for a player that does not exist violates the foreign key
	crop := ledgertest.NewCrop(ledgertest.NewAddress(), ledgertest.NewAddress(), 0, 0)
	err := l.RunAtomic(ctx, crop.WorldID, func(tx repository.LedgerTx) error {
		return tx.InsertCrop(ctx, crop)
	})
	require.Error(t, err)

	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.OpInsertCrop, pe.Op)
	assert.Equal(t, database.PgCodeForeignKeyViolation, database.PgCode(err))
	assert.True(t, database.IsContention(err))
}

func TestLedger_CancelledContext(t *testing.T) {
	l := ensureLedger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.RunAtomic(ctx, "0xcancelled", func(tx repository.LedgerTx) error {
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestWorldLockKey(t *testing.T) {
	a := worldLockKey("0xabc")
	assert.Equal(t, a, worldLockKey("0xabc"))
	assert.NotEqual(t, a, worldLockKey("0xabd"))
	assert.Positive(t, a)
}
