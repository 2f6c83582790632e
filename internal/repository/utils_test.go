package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockTx struct {
	mock.Mock
}

func (m *mockTx) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockTx) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestSafeRollback(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"clean rollback", nil},
		{"already committed", sql.ErrTxDone},
		{"pgx closed", errors.New("tx is closed")},
		{"driver failure is logged, not returned", errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := new(mockTx)
			tx.On("Rollback", mock.Anything).Return(tt.err).Once()

			assert.NotPanics(t, func() { SafeRollback(context.Background(), tx) })
			tx.AssertExpectations(t)
		})
	}
}

func TestIsTxClosed(t *testing.T) {
	assert.True(t, isTxClosed(sql.ErrTxDone))
	assert.True(t, isTxClosed(errors.New("tx is closed")))
	assert.False(t, isTxClosed(errors.New("deadlock detected")))
}
