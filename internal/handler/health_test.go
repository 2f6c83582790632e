package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockLedger mocks the ledger surface the handlers read
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestHandleHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	HandleHealthz().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"status":"ok"}`+"\n", w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestHandleReadyz(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantBody   []string
	}{
		{"ledger reachable", nil, http.StatusOK, []string{`"status":"ok"`}},
		{"ledger down", assert.AnError, http.StatusServiceUnavailable, []string{`"status":"unavailable"`, `"message":"database connection failed"`}},
		{"ping timeout", context.DeadlineExceeded, http.StatusServiceUnavailable, []string{`"status":"unavailable"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &MockLedger{}
			ledger.On("Ping", mock.Anything).Return(tt.pingErr)

			w := httptest.NewRecorder()
			HandleReadyz(ledger).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			for _, s := range tt.wantBody {
				assert.Contains(t, w.Body.String(), s)
			}
			ledger.AssertExpectations(t)
		})
	}
}

func TestHandleReadyz_PingHasDeadline(t *testing.T) {
	ledger := &MockLedger{}
	ledger.On("Ping", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})).Return(nil)

	w := httptest.NewRecorder()
	HandleReadyz(ledger).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	ledger.AssertExpectations(t)
}
