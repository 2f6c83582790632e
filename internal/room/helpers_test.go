package room

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/HarvestRealm_Go/internal/auth"
	"github.com/osse101/HarvestRealm_Go/internal/config"
	"github.com/osse101/HarvestRealm_Go/internal/database/sqlite"
	"github.com/osse101/HarvestRealm_Go/internal/domain"
	"github.com/osse101/HarvestRealm_Go/internal/journal"
	"github.com/osse101/HarvestRealm_Go/internal/protocol"
	"github.com/osse101/HarvestRealm_Go/internal/repository"
	"github.com/osse101/HarvestRealm_Go/internal/worker"
)

const frameTimeout = 2 * time.Second

type harness struct {
	t        *testing.T
	ledger   repository.Ledger
	pool     *worker.Pool
	manager  *Manager
	auth     *auth.Authenticator
	journal  *memoryJournal
	clock    *fakeClock
	shutdown sync.Once
}

func testTuning() config.Tuning {
	tuning := config.DefaultTuning()
	tuning.TickRateHz = 50
	tuning.PlayerGrace = 300 * time.Millisecond
	tuning.HarvestDisplayDelay = time.Second
	tuning.OutboundQueueSize = 64
	return tuning
}

func newSQLiteLedger(t *testing.T) repository.Ledger {
	t.Helper()
	l, err := sqlite.Open(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(l.Close)
	return l
}

// newHarness builds a manager over ledger. The clock only drives game time;
// the tick still runs on wall time.
func newHarness(t *testing.T, ledger repository.Ledger, tuning config.Tuning) *harness {
	t.Helper()

	pool := worker.NewPool(4, 64)
	pool.Start()

	clock := newFakeClock(time.Now())
	j := &memoryJournal{}
	manager, err := NewManager(Deps{
		Ledger:  ledger,
		Pool:    pool,
		Tuning:  tuning,
		Journal: j,
		Clock:   clock.Now,
	})
	require.NoError(t, err)

	h := &harness{t: t, ledger: ledger, pool: pool, manager: manager, auth: newTestAuth(t), journal: j, clock: clock}
	t.Cleanup(h.close)
	return h
}

func (h *harness) close() {
	h.shutdown.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.manager.Shutdown(ctx)
		h.pool.Stop()
	})
}

func newTestAuth(t *testing.T) *auth.Authenticator {
	t.Helper()
	a, err := auth.New(auth.Config{})
	require.NoError(t, err)
	return a
}

type client struct {
	t       *testing.T
	room    *Room
	session *Session
}

// join opens worldID and joins it as playerID, consuming welcome and state
func (h *harness) join(worldID, playerID string) (*client, protocol.Welcome, protocol.State) {
	h.t.Helper()
	ctx := context.Background()

	r, err := h.manager.Open(ctx, worldID)
	require.NoError(h.t, err)

	identity, err := h.auth.Resolve(&auth.JoinClaim{PlayerID: playerID}, worldID)
	require.NoError(h.t, err)

	s := NewSession(ctx, identity, 64)
	require.NoError(h.t, r.Join(ctx, s))

	c := &client{t: h.t, room: r, session: s}
	welcome := decodeData[protocol.Welcome](h.t, c.expect(protocol.TypeWelcome))
	state := decodeData[protocol.State](h.t, c.expect(protocol.TypeState))
	return c, welcome, state
}

func (c *client) send(msgType string, data any) {
	c.t.Helper()
	frame, err := protocol.Encode(msgType, data)
	require.NoError(c.t, err)
	env, err := protocol.Decode(frame)
	require.NoError(c.t, err)
	require.NoError(c.t, c.room.Deliver(context.Background(), c.session, env))
}

func (c *client) sendRaw(raw string) {
	c.t.Helper()
	env, err := protocol.Decode([]byte(raw))
	require.NoError(c.t, err)
	require.NoError(c.t, c.room.Deliver(context.Background(), c.session, env))
}

func (c *client) leave() {
	c.room.Leave(c.session)
}

// leaveAndWait returns once the room has processed the leave, which closes
// the session's outbound queue.
func (c *client) leaveAndWait() {
	c.t.Helper()
	c.leave()
	deadline := time.After(frameTimeout)
	for {
		select {
		case _, ok := <-c.session.Out():
			if !ok {
				return
			}
		case <-deadline:
			c.t.Fatalf("timed out waiting for session %s to close", c.session.ID)
		}
	}
}

// expect reads frames until one of msgType arrives. An unexpected
// game_error fails the test.
func (c *client) expect(msgType string) protocol.Envelope {
	c.t.Helper()
	deadline := time.After(frameTimeout)
	for {
		select {
		case frame, ok := <-c.session.Out():
			require.True(c.t, ok, "session closed while waiting for %s", msgType)
			env, err := protocol.Decode(frame)
			require.NoError(c.t, err)
			if env.Type == msgType {
				return env
			}
			if env.Type == protocol.TypeGameError {
				c.t.Fatalf("unexpected game_error while waiting for %s: %s", msgType, env.Data)
			}
		case <-deadline:
			c.t.Fatalf("timed out waiting for %s", msgType)
		}
	}
}

func (c *client) expectError(code string) domain.GameError {
	c.t.Helper()
	ge := decodeData[domain.GameError](c.t, c.expect(protocol.TypeGameError))
	require.Equal(c.t, code, ge.Code, ge.Message)
	return ge
}

// drain collects every frame type received during d
func (c *client) drain(d time.Duration) []string {
	var types []string
	deadline := time.After(d)
	for {
		select {
		case frame, ok := <-c.session.Out():
			if !ok {
				return types
			}
			env, err := protocol.Decode(frame)
			require.NoError(c.t, err)
			types = append(types, env.Type)
		case <-deadline:
			return types
		}
	}
}

func decodeData[T any](t *testing.T, env protocol.Envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memoryJournal struct {
	mu      sync.Mutex
	entries []journal.Entry
}

func (j *memoryJournal) Write(e journal.Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return nil
}

func (j *memoryJournal) Entries() []journal.Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]journal.Entry(nil), j.entries...)
}

// gatedLedger holds every atomic block until the gate is opened
type gatedLedger struct {
	repository.Ledger
	gate chan struct{}
}

func (g *gatedLedger) RunAtomic(ctx context.Context, worldID string, fn func(tx repository.LedgerTx) error) error {
	select {
	case <-g.gate:
	case <-ctx.Done():
		return ctx.Err()
	}
	return g.Ledger.RunAtomic(ctx, worldID, fn)
}

// MockLedger is a testify mock of repository.Ledger for fault injection
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) RunAtomic(ctx context.Context, worldID string, fn func(tx repository.LedgerTx) error) error {
	args := m.Called(ctx, worldID, fn)
	return args.Error(0)
}

func (m *MockLedger) GetOrCreatePlayer(ctx context.Context, id, name string) (*domain.Player, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Player), args.Error(1)
}

func (m *MockLedger) GetCrop(ctx context.Context, id string) (*domain.Crop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Crop), args.Error(1)
}

func (m *MockLedger) ListCrops(ctx context.Context, worldID string, includeHarvested bool) ([]domain.Crop, error) {
	args := m.Called(ctx, worldID, includeHarvested)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Crop), args.Error(1)
}

func (m *MockLedger) ListWorlds(ctx context.Context, limit, offset int) ([]domain.WorldSummary, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorldSummary), args.Error(1)
}

func (m *MockLedger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockLedger) Close() {
	m.Called()
}

// captureLogs routes the default logger to a JSON buffer for the test
func captureLogs(t *testing.T) *logBuffer {
	t.Helper()
	buf := &logBuffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return buf
}

type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// find returns the first record logged with msg
func (b *logBuffer) find(t *testing.T, msg string) map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, line := range strings.Split(strings.TrimSpace(b.buf.String()), "\n") {
		var rec map[string]any
		if json.Unmarshal([]byte(line), &rec) == nil && rec["msg"] == msg {
			return rec
		}
	}
	t.Fatalf("no log record %q", msg)
	return nil
}
