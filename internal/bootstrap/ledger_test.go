package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/HarvestRealm_Go/internal/config"
)

func TestOpenLedger_SQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "realm.db"),
	}

	ledger, err := OpenLedger(context.Background(), cfg)
	require.NoError(t, err)
	defer ledger.Close()

	assert.NoError(t, ledger.Ping(context.Background()))
	worlds, err := ledger.ListWorlds(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, worlds)
}

func TestOpenLedger_UnknownDriver(t *testing.T) {
	_, err := OpenLedger(context.Background(), &config.Config{DBDriver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgUnknownDriver)
}
