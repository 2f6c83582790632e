// Package ledgertest holds the behavioural checks every repository.Ledger
// backend must pass. Backend packages call Run from their own tests.
package ledgertest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/HarvestRealm_Go/internal/domain"
	"github.com/osse101/HarvestRealm_Go/internal/repository"
)

// Radius used by the occupancy checks
const Radius = 32.0

// Factory returns a ledger ready for use. It may be shared between subtests;
// every check uses fresh player and world ids.
type Factory func(t *testing.T) repository.Ledger

// Run executes the full conformance suite against the ledger built by newLedger
func Run(t *testing.T, newLedger Factory) {
	t.Run("GetOrCreatePlayer", func(t *testing.T) { testGetOrCreatePlayer(t, newLedger(t)) })
	t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, newLedger(t)) })
	t.Run("GetCropNotFound", func(t *testing.T) { testGetCropNotFound(t, newLedger(t)) })
	t.Run("MonotonicExperience", func(t *testing.T) { testMonotonicExperience(t, newLedger(t)) })
	t.Run("HarvestIdempotence", func(t *testing.T) { testHarvestIdempotence(t, newLedger(t)) })
	t.Run("Occupancy", func(t *testing.T) { testOccupancy(t, newLedger(t)) })
	t.Run("RollbackOnError", func(t *testing.T) { testRollbackOnError(t, newLedger(t)) })
	t.Run("AtomicPlantRace", func(t *testing.T) { testAtomicPlantRace(t, newLedger(t)) })
	t.Run("ListCrops", func(t *testing.T) { testListCrops(t, newLedger(t)) })
	t.Run("ListWorlds", func(t *testing.T) { testListWorlds(t, newLedger(t)) })
}

// NewAddress returns a random, well-formed lowercase player address
func NewAddress() string {
	return "0x" + strings.ReplaceAll(uuid.NewString(), "-", "") + "00000000"
}

// NewCrop builds an unharvested usdc_sprout crop at (x, y) planted at a millisecond-aligned now
func NewCrop(playerID, worldID string, x, y float64) *domain.Crop {
	return &domain.Crop{
		ID:               uuid.NewString(),
		PlayerID:         playerID,
		WorldID:          worldID,
		SeedType:         domain.SeedUSDCSprout,
		X:                x,
		Y:                y,
		PlantedAt:        time.Now().UTC().Truncate(time.Millisecond),
		GrowthTime:       24 * time.Hour,
		InvestmentAmount: 10,
	}
}

// Plant runs the occupancy check and insert inside one atomic block
func Plant(ctx context.Context, l repository.Ledger, crop *domain.Crop) error {
	return l.RunAtomic(ctx, crop.WorldID, func(tx repository.LedgerTx) error {
		occupied, err := tx.QueryOccupancy(ctx, crop.WorldID, crop.X, crop.Y, Radius)
		if err != nil {
			return err
		}
		if occupied {
			return domain.ErrPositionOccupied
		}
		return tx.InsertCrop(ctx, crop)
	})
}

func seedPlayer(t *testing.T, l repository.Ledger) string {
	t.Helper()
	id := NewAddress()
	_, err := l.GetOrCreatePlayer(context.Background(), id, "farmer")
	require.NoError(t, err)
	return id
}

func testGetOrCreatePlayer(t *testing.T, l repository.Ledger) {
	ctx := context.Background()
	id := NewAddress()

	p, err := l.GetOrCreatePlayer(ctx, id, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "alice", p.Name)
	assert.Zero(t, p.XP)

	// Loading again keeps the record, an empty name keeps the stored one
	again, err := l.GetOrCreatePlayer(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Name)
	assert.Equal(t, p.CreatedAt.Unix(), again.CreatedAt.Unix())

	renamed, err := l.GetOrCreatePlayer(ctx, id, "alice2")
	require.NoError(t, err)
	assert.Equal(t, "alice2", renamed.Name)
}

func testRoundTrip(t *testing.T, l repository.Ledger) {
	ctx := context.Background()
	player := seedPlayer(t, l)
	crop := NewCrop(player, player, 123.5, -42.25)
	crop.SeedType = domain.SeedETHBean
	crop.GrowthTime = 48 * time.Hour
	crop.InvestmentAmount = 75.125

	require.NoError(t, Plant(ctx, l, crop))

	got, err := l.GetCrop(ctx, crop.ID)
	require.NoError(t, err)
	assert.Equal(t, crop.SeedType, got.SeedType)
	assert.Equal(t, crop.X, got.X)
	assert.Equal(t, crop.Y, got.Y)
	assert.True(t, crop.PlantedAt.Equal(got.PlantedAt), "planted_at %v != %v", crop.PlantedAt, got.PlantedAt)
	assert.Equal(t, crop.GrowthTime, got.GrowthTime)
	assert.InDelta(t, crop.InvestmentAmount, got.InvestmentAmount, 1e-9)
	assert.Equal(t, crop.PlayerID, got.PlayerID)
	assert.Equal(t, crop.WorldID, got.WorldID)
	assert.False(t, got.Harvested)
	assert.Nil(t, got.YieldAmount)
	assert.Nil(t, got.HarvestedAt)
}

func testGetCropNotFound(t *testing.T, l repository.Ledger) {
	_, err := l.GetCrop(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrCropNotFound)
}

func testMonotonicExperience(t *testing.T, l repository.Ledger) {
	ctx := context.Background()
	player := seedPlayer(t, l)

	rewards := []int64{1, 3, 10, 1}
	var want, prev int64
	for _, r := range rewards {
		want += r
		err := l.RunAtomic(ctx, player, func(tx repository.LedgerTx) error {
			xp, err := tx.UpdateExperience(ctx, player, r)
			if err != nil {
				return err
			}
			assert.GreaterOrEqual(t, xp, prev)
			prev = xp
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, want, prev)

	err := l.RunAtomic(ctx, player, func(tx repository.LedgerTx) error {
		_, err := tx.UpdateExperience(ctx, player, -5)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = l.RunAtomic(ctx, player, func(tx repository.LedgerTx) error {
		p, err := tx.GetPlayerForUpdate(ctx, player)
		if err != nil {
			return err
		}
		assert.Equal(t, want, p.XP)
		return nil
	})
	require.NoError(t, err)

	err = l.RunAtomic(ctx, player, func(tx repository.LedgerTx) error {
		_, err := tx.UpdateExperience(ctx, NewAddress(), 1)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func testHarvestIdempotence(t *testing.T, l repository.Ledger) {
	ctx := context.Background()
	player := seedPlayer(t, l)
	crop := NewCrop(player, player, 0, 0)
	require.NoError(t, Plant(ctx, l, crop))

	at := time.Now().UTC().Truncate(time.Millisecond)
	harvest := func(yield float64) error {
		return l.RunAtomic(ctx, player, func(tx repository.LedgerTx) error {
			return tx.MarkHarvested(ctx, crop.ID, yield, at)
		})
	}

	require.NoError(t, harvest(1.37))
	err := harvest(99.99)
	assert.ErrorIs(t, err, domain.ErrCropAlreadyHarvested)

	got, err := l.GetCrop(ctx, crop.ID)
	require.NoError(t, err)
	assert.True(t, got.Harvested)
	require.NotNil(t, got.YieldAmount)
	assert.InDelta(t, 1.37, *got.YieldAmount, 1e-9)
	require.NotNil(t, got.HarvestedAt)
	assert.True(t, at.Equal(*got.HarvestedAt))

	err = l.RunAtomic(ctx, player, func(tx repository.LedgerTx) error {
		return tx.MarkHarvested(ctx, uuid.NewString(), 1, at)
	})
	assert.ErrorIs(t, err, domain.ErrCropNotFound)
}

func testOccupancy(t *testing.T, l repository.Ledger) {
	ctx := context.Background()
	player := seedPlayer(t, l)
	crop := NewCrop(player, player, 100, 100)
	require.NoError(t, Plant(ctx, l, crop))

	tests := []struct {
		name  string
		world string
		x, y  float64
		want  bool
	}{
		{"same point", player, 100, 100, true},
		{"inside radius", player, 120, 110, true},
		{"on the boundary", player, 100 + Radius, 100, true},
		{"just outside", player, 100 + Radius + 0.01, 100, false},
		{"other world", NewAddress(), 100, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got bool
			err := l.RunAtomic(ctx, tt.world, func(tx repository.LedgerTx) error {
				var err error
				got, err = tx.QueryOccupancy(ctx, tt.world, tt.x, tt.y, Radius)
				return err
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	// Harvested crops no longer claim their position
	err := l.RunAtomic(ctx, player, func(tx repository.LedgerTx) error {
		return tx.MarkHarvested(ctx, crop.ID, 0, time.Now())
	})
	require.NoError(t, err)
	require.NoError(t, Plant(ctx, l, NewCrop(player, player, 100, 100)))
}

func testRollbackOnError(t *testing.T, l repository.Ledger) {
	ctx := context.Background()
	player := seedPlayer(t, l)
	crop := NewCrop(player, player, 5, 5)
	boom := errors.New("boom")

	err := l.RunAtomic(ctx, player, func(tx repository.LedgerTx) error {
		if err := tx.InsertCrop(ctx, crop); err != nil {
			return err
		}
		if _, err := tx.UpdateExperience(ctx, player, 10); err != nil {
			return err
		}
		return boom
	})
	assert.Same(t, boom, err)

	_, err = l.GetCrop(ctx, crop.ID)
	assert.ErrorIs(t, err, domain.ErrCropNotFound)

	p, err := l.GetOrCreatePlayer(ctx, player, "")
	require.NoError(t, err)
	assert.Zero(t, p.XP)
}

func testAtomicPlantRace(t *testing.T, l repository.Ledger) {
	ctx := context.Background()
	player := seedPlayer(t, l)

	const contenders = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		occupied int
		others   []error
		start    = make(chan struct{})
	)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			crop := NewCrop(player, player, 200+float64(i), 200-float64(i))
			err := Plant(ctx, l, crop)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrPositionOccupied):
				occupied++
			default:
				others = append(others, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	require.Empty(t, others, "unexpected errors: %v", others)
	assert.Equal(t, 1, wins, "exactly one plant must win")
	assert.Equal(t, contenders-1, occupied)

	crops, err := l.ListCrops(ctx, player, false)
	require.NoError(t, err)
	assert.Len(t, crops, 1)
}

func testListCrops(t *testing.T, l repository.Ledger) {
	ctx := context.Background()
	player := seedPlayer(t, l)

	var ids []string
	for i := 0; i < 3; i++ {
		crop := NewCrop(player, player, float64(i)*100, 0)
		crop.PlantedAt = crop.PlantedAt.Add(time.Duration(i) * time.Second)
		require.NoError(t, Plant(ctx, l, crop))
		ids = append(ids, crop.ID)
	}
	err := l.RunAtomic(ctx, player, func(tx repository.LedgerTx) error {
		return tx.MarkHarvested(ctx, ids[0], 0.5, time.Now())
	})
	require.NoError(t, err)

	live, err := l.ListCrops(ctx, player, false)
	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.Equal(t, ids[1], live[0].ID)
	assert.Equal(t, ids[2], live[1].ID)

	all, err := l.ListCrops(ctx, player, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	empty, err := l.ListCrops(ctx, NewAddress(), true)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func testListWorlds(t *testing.T, l repository.Ledger) {
	ctx := context.Background()
	owner := NewAddress()
	_, err := l.GetOrCreatePlayer(ctx, owner, "listed")
	require.NoError(t, err)

	// Planted far in the future so it sorts first regardless of other subtests
	base := time.Now().UTC().Add(1000 * time.Hour).Truncate(time.Millisecond)
	for i := 0; i < 2; i++ {
		crop := NewCrop(owner, owner, float64(i)*100, 0)
		crop.PlantedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, Plant(ctx, l, crop))
		if i == 0 {
			err := l.RunAtomic(ctx, owner, func(tx repository.LedgerTx) error {
				return tx.MarkHarvested(ctx, crop.ID, 0, time.Now())
			})
			require.NoError(t, err)
		}
	}

	worlds, err := l.ListWorlds(ctx, 5, 0)
	require.NoError(t, err)
	require.NotEmpty(t, worlds)

	w := worlds[0]
	assert.Equal(t, owner, w.OwnerID)
	assert.Equal(t, "listed", w.OwnerName)
	assert.Equal(t, 1, w.ActiveCrops)
	assert.Equal(t, 2, w.TotalCrops)
	assert.True(t, base.Add(time.Minute).Equal(w.LastPlanted), "last planted %v", w.LastPlanted)

	paged, err := l.ListWorlds(ctx, 5, 1_000_000)
	require.NoError(t, err)
	assert.Empty(t, paged)
}
