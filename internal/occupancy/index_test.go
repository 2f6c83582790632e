package occupancy

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingQuerier struct {
	gotRadius float64
	gotWorld  string
	answer    bool
	err       error
}

func (q *recordingQuerier) QueryOccupancy(_ context.Context, worldID string, _, _, radius float64) (bool, error) {
	q.gotWorld = worldID
	q.gotRadius = radius
	return q.answer, q.err
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		radius  float64
		wantErr bool
	}{
		{"positive", 32, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.radius)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsOccupied_UsesConfiguredRadius(t *testing.T) {
	idx, err := New(12.5)
	require.NoError(t, err)

	q := &recordingQuerier{answer: true}
	occupied, err := idx.IsOccupied(context.Background(), q, "0xworld", 1, 2)

	require.NoError(t, err)
	assert.True(t, occupied)
	assert.Equal(t, 12.5, q.gotRadius)
	assert.Equal(t, "0xworld", q.gotWorld)
}

func TestIsOccupied_PropagatesError(t *testing.T) {
	idx, err := New(DefaultRadius)
	require.NoError(t, err)

	boom := errors.New("lock timeout")
	_, err = idx.IsOccupied(context.Background(), &recordingQuerier{err: boom}, "w", 0, 0)
	assert.ErrorIs(t, err, boom)
}

func TestWithin(t *testing.T) {
	tests := []struct {
		name           string
		ax, ay, bx, by float64
		r              float64
		want           bool
	}{
		{"same point", 100, 100, 100, 100, 32, true},
		{"on the boundary", 0, 0, 3, 4, 5, true},
		{"just outside", 0, 0, 3, 4.01, 5, false},
		{"far", 0, 0, 100, 100, 32, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Within(tt.ax, tt.ay, tt.bx, tt.by, tt.r))
		})
	}
}
