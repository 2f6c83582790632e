package room

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/osse101/HarvestRealm_Go/internal/auth"
	"github.com/osse101/HarvestRealm_Go/internal/logger"
	"github.com/osse101/HarvestRealm_Go/internal/metrics"
)

// Session is one live connection bound to a resolved identity.
// The room is the only writer to its outbound queue and closes the queue
// when it lets go of the session.
type Session struct {
	ID       string
	Identity auth.Identity

	ctx       context.Context
	out       chan []byte
	closeOnce sync.Once
}

// NewSession creates a session with a bounded outbound queue
func NewSession(ctx context.Context, identity auth.Identity, queueSize int) *Session {
	if queueSize < 1 {
		queueSize = 1
	}
	id := uuid.NewString()
	return &Session{
		ID:       id,
		Identity: identity,
		ctx:      logger.WithSessionID(ctx, id),
		out:      make(chan []byte, queueSize),
	}
}

// Out yields encoded frames for the transport writer. It is closed once the
// room has removed the session.
func (s *Session) Out() <-chan []byte {
	return s.out
}

// Context carries the session's log fields
func (s *Session) Context() context.Context {
	return s.ctx
}

// send queues a frame without blocking; a full queue drops it
func (s *Session) send(frame []byte) bool {
	select {
	case s.out <- frame:
		return true
	default:
		metrics.OutboundDropped.Inc()
		return false
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() { close(s.out) })
}
