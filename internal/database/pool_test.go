package database

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

	"github.com/osse101/HarvestRealm_Go/internal/testing/leaktest"
)

var testDBConnString string

func TestMain(m *testing.M) {
	flag.Parse()

	var terminate func()
	if !testing.Short() {
		testDBConnString, terminate = setupContainer(context.Background())
	}

	code := m.Run()

	if terminate != nil {
		terminate()
	}
	os.Exit(code)
}

func setupContainer(ctx context.Context) (string, func()) {
	// testcontainers panics when no docker daemon is reachable
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic in setupContainer: %v\n", r)
		}
	}()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("realm"),
		postgres.WithUsername("realm"),
		postgres.WithPassword("realm"),
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

func requireDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if testDBConnString == "" {
		t.Skip("Skipping integration test: database not available")
	}

	pool, err := NewPool(context.Background(), testDBConnString, 6, time.Minute, 5*time.Minute)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(context.Background(), pool))
	return pool
}

func TestNewPool_Sizing(t *testing.T) {
	if testing.Short() || testDBConnString == "" {
		t.Skip("Skipping integration test: database not available")
	}

	tests := []struct {
		name     string
		maxConns int
		wantMax  int32
		wantMin  int32
	}{
		{"below default minimum", 1, 1, 1},
		{"above default minimum", 8, 8, DefaultMinConnections},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, err := NewPool(context.Background(), testDBConnString, tt.maxConns, time.Minute, time.Hour)
			require.NoError(t, err)
			defer pool.Close()

			cfg := pool.Config()
			assert.Equal(t, tt.wantMax, cfg.MaxConns)
			assert.Equal(t, tt.wantMin, cfg.MinConns)
			assert.Equal(t, time.Minute, cfg.MaxConnIdleTime)
		})
	}
}

func TestNewPool_BadConnString(t *testing.T) {
	_, err := NewPool(context.Background(), "postgres://%zz", 4, time.Minute, time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgFailedToParseConnString)
}

func TestMigrate_RoundTrip(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()

	// already migrated by requireDB; a second run is a no-op
	require.NoError(t, Migrate(ctx, pool))
	version, err := MigrationVersion(ctx, pool)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, version, int64(1))

	require.NoError(t, MigrateDown(ctx, pool))
	assert.False(t, tableExists(t, pool, "crops"))

	require.NoError(t, Migrate(ctx, pool))
	for _, table := range []string{"players", "crops"} {
		assert.True(t, tableExists(t, pool, table), "table %s should exist", table)
	}
	require.NoError(t, MigrationStatus(ctx, pool))
}

func TestSchemaConstraintsSurfaceAsContention(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, "INSERT INTO players (id, name, xp) VALUES ('0xneg', 'neg', -1)")
	require.Error(t, err)
	assert.Equal(t, PgCodeCheckViolation, PgCode(err))
	assert.True(t, IsContention(err))

	_, err = pool.Exec(ctx, `INSERT INTO crops (id, player_id, world_id, seed_type, x, y, planted_at, growth_time_ms, investment_amount)
		VALUES ('c-orphan', '0xmissing', 'w', 'eth_bean', 1, 1, NOW(), 1000, 10)`)
	require.Error(t, err)
	assert.Equal(t, PgCodeForeignKeyViolation, PgCode(err))
}

// Two transactions taking the same advisory key run one after the other
func TestAdvisoryLockSerializesWorld(t *testing.T) {
	pool := requireDB(t)
	checker := leaktest.NewGoroutineChecker(t)

	const key = int64(424242)
	var (
		mu     sync.Mutex
		order  []string
		wg     sync.WaitGroup
		inside = make(chan struct{})
	)
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	hold := func(name string, signal chan struct{}, pause time.Duration) {
		defer wg.Done()
		ctx := context.Background()
		tx, err := pool.Begin(ctx)
		if !assert.NoError(t, err) {
			return
		}
		defer func() { _ = tx.Rollback(ctx) }()

		_, err = tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", key)
		if !assert.NoError(t, err) {
			return
		}
		record(name + ":in")
		if signal != nil {
			close(signal)
		}
		time.Sleep(pause)
		record(name + ":out")
		assert.NoError(t, tx.Commit(ctx))
	}

	wg.Add(1)
	go hold("first", inside, 150*time.Millisecond)
	<-inside
	wg.Add(1)
	go hold("second", nil, 0)
	wg.Wait()

	assert.Equal(t, []string{"first:in", "first:out", "second:in", "second:out"}, order)
	assert.Equal(t, int32(0), pool.Stat().AcquiredConns())
	checker.Check(2)
}

func tableExists(t *testing.T, pool *pgxpool.Pool, table string) bool {
	t.Helper()
	var exists bool
	err := pool.QueryRow(context.Background(),
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", table).Scan(&exists)
	require.NoError(t, err)
	return exists
}
