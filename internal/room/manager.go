package room

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/HarvestRealm_Go/internal/domain"
	"github.com/osse101/HarvestRealm_Go/internal/logger"
	"github.com/osse101/HarvestRealm_Go/internal/metrics"
	"github.com/osse101/HarvestRealm_Go/internal/worker"
)

// Manager is the registry of open rooms, one per world id
type Manager struct {
	deps Deps

	mu     sync.Mutex
	rooms  map[string]*entry
	closed bool
}

// entry lets concurrent Opens of the same world share one hydration
type entry struct {
	room  *Room
	ready chan struct{}
	err   error
}

// NewManager creates a room registry
func NewManager(deps Deps) (*Manager, error) {
	deps, err := deps.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Manager{
		deps:  deps,
		rooms: make(map[string]*entry),
	}, nil
}

// Open returns the room for worldID, creating and hydrating it on first use
func (m *Manager) Open(ctx context.Context, worldID string) (*Room, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	if e, ok := m.rooms[worldID]; ok {
		m.mu.Unlock()
		select {
		case <-e.ready:
			return e.room, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	e := &entry{ready: make(chan struct{})}
	m.rooms[worldID] = e
	m.mu.Unlock()

	crops, err := m.deps.Ledger.ListCrops(ctx, worldID, false)
	if err != nil {
		e.err = domain.NewPersistenceError(domain.OpListCrops, err)
		m.mu.Lock()
		delete(m.rooms, worldID)
		m.mu.Unlock()
		close(e.ready)
		return nil, e.err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		e.err = ErrManagerClosed
		close(e.ready)
		return nil, e.err
	}
	e.room = newRoom(worldID, m.deps, crops)
	e.room.start()
	m.mu.Unlock()

	metrics.RoomsActive.Inc()
	close(e.ready)
	return e.room, nil
}

// Get returns an already open room
func (m *Manager) Get(worldID string) (*Room, bool) {
	m.mu.Lock()
	e, ok := m.rooms[worldID]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-e.ready:
		return e.room, e.room != nil
	default:
		return nil, false
	}
}

// Len reports the number of open rooms
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

// ReapIdle stops rooms that have had no sessions for RoomIdleTimeout
func (m *Manager) ReapIdle(now time.Time) int {
	timeout := m.deps.Tuning.RoomIdleTimeout

	m.mu.Lock()
	var idle []*Room
	for id, e := range m.rooms {
		select {
		case <-e.ready:
		default:
			continue
		}
		if e.room == nil || e.room.Occupants() > 0 {
			continue
		}
		if since, ok := e.room.IdleSince(); ok && now.Sub(since) >= timeout {
			delete(m.rooms, id)
			idle = append(idle, e.room)
		}
	}
	m.mu.Unlock()

	for _, r := range idle {
		r.Stop()
		metrics.RoomsActive.Dec()
		logger.FromContext(r.ctx).Info(LogMsgRoomReaped)
	}
	return len(idle)
}

// ReaperJob is the periodic job that closes idle rooms
func (m *Manager) ReaperJob() worker.Job {
	return worker.JobFunc(func(ctx context.Context) error {
		m.ReapIdle(m.deps.Clock())
		return nil
	})
}

// Shutdown stops every room. Rooms stop concurrently; ctx bounds the wait.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	rooms := make([]*Room, 0, len(m.rooms))
	for id, e := range m.rooms {
		select {
		case <-e.ready:
			if e.room != nil {
				rooms = append(rooms, e.room)
			}
		default:
		}
		delete(m.rooms, id)
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, r := range rooms {
		wg.Add(1)
		go func(r *Room) {
			defer wg.Done()
			r.Stop()
			metrics.RoomsActive.Dec()
		}(r)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
