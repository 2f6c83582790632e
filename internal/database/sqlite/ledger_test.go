package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/HarvestRealm_Go/internal/domain"
	"github.com/osse101/HarvestRealm_Go/internal/repository"
	"github.com/osse101/HarvestRealm_Go/internal/testing/ledgertest"
)

func newTestLedger(t *testing.T) repository.Ledger {
	t.Helper()
	l, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(l.Close)
	return l
}

func TestLedger(t *testing.T) {
	ledgertest.Run(t, newTestLedger)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	assert.ErrorContains(t, err, ErrMsgEmptyPath)
}

func TestOpen_FileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")

	l, err := Open(path)
	require.NoError(t, err)
	player := ledgertest.NewAddress()
	_, err = l.GetOrCreatePlayer(ctx, player, "persisted")
	require.NoError(t, err)
	crop := ledgertest.NewCrop(player, player, 1, 2)
	require.NoError(t, ledgertest.Plant(ctx, l, crop))
	l.Close()

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetCrop(ctx, crop.ID)
	require.NoError(t, err)
	assert.Equal(t, player, got.PlayerID)
	assert.True(t, crop.PlantedAt.Equal(got.PlantedAt))
}

func TestLedger_ForeignKeyViolationIsPersistenceError(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	crop := ledgertest.NewCrop(ledgertest.NewAddress(), ledgertest.NewAddress(), 0, 0)
	err := l.RunAtomic(ctx, crop.WorldID, func(tx repository.LedgerTx) error {
		return tx.InsertCrop(ctx, crop)
	})

	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.OpInsertCrop, pe.Op)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestLedger_CancelledContext(t *testing.T) {
	l := newTestLedger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := l.RunAtomic(ctx, "world", func(tx repository.LedgerTx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.False(t, called)
}
