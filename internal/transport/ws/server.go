package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/osse101/HarvestRealm_Go/internal/auth"
	"github.com/osse101/HarvestRealm_Go/internal/domain"
	"github.com/osse101/HarvestRealm_Go/internal/logger"
	"github.com/osse101/HarvestRealm_Go/internal/protocol"
	"github.com/osse101/HarvestRealm_Go/internal/room"
)

// Rooms is the part of the room registry the transport needs
type Rooms interface {
	Open(ctx context.Context, worldID string) (*room.Room, error)
}

// Config controls the websocket endpoint
type Config struct {
	// DefaultWorldID serves connections that do not name a world
	DefaultWorldID string
	// AllowedOrigins restricts browser origins; empty allows any
	AllowedOrigins []string
	// QueueSize bounds each session's outbound queue
	QueueSize int
}

// Server upgrades HTTP requests to websocket sessions and pumps frames
// between the socket and a room.
type Server struct {
	rooms    Rooms
	auth     *auth.Authenticator
	cfg      Config
	origins  map[string]struct{}
	upgrader websocket.Upgrader
}

// NewServer creates the websocket endpoint
func NewServer(rooms Rooms, authenticator *auth.Authenticator, cfg Config) *Server {
	if cfg.DefaultWorldID == "" {
		cfg.DefaultWorldID = domain.DefaultWorldID
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = DefaultQueueSize
	}
	s := &Server{
		rooms:   rooms,
		auth:    authenticator,
		cfg:     cfg,
		origins: make(map[string]struct{}, len(cfg.AllowedOrigins)),
	}
	for _, o := range cfg.AllowedOrigins {
		s.origins[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  ReadBufferSize,
		WriteBufferSize: WriteBufferSize,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.origins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	_, ok := s.origins[strings.ToLower(strings.TrimRight(origin, "/"))]
	if !ok {
		logger.FromContext(r.Context()).Warn(LogMsgOriginRejected, "origin", origin)
	}
	return ok
}

// ServeHTTP handles GET /ws/{worldId}
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	worldID, err := auth.NormalizeWorldID(chi.URLParam(r, URLParamWorldID), s.cfg.DefaultWorldID)
	if err != nil {
		log.Warn(LogMsgBadWorldID, "world_id", chi.URLParam(r, URLParamWorldID))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn(LogMsgUpgradeFailed, "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(ReadLimit)

	// the request context ends with the hijacked handler; the session
	// lives until the socket or the room closes
	ctx := logger.WithWorldID(context.WithoutCancel(r.Context()), worldID)

	identity, err := s.handshake(ctx, conn, worldID)
	if err != nil {
		return
	}

	sess, rm, err := s.join(ctx, worldID, identity)
	if err != nil {
		logger.FromContext(ctx).Error(LogMsgJoinFailed, "player", identity.PlayerID, "error", err)
		writeError(conn, err)
		closeWith(conn, websocket.CloseTryAgainLater, ReasonUnavailable)
		return
	}

	s.serve(conn, rm, sess)
}

// handshake reads the join claim and resolves it. Failures are reported to
// the client and close the socket.
func (s *Server) handshake(ctx context.Context, conn *websocket.Conn, worldID string) (auth.Identity, error) {
	log := logger.FromContext(ctx)

	_ = conn.SetReadDeadline(time.Now().Add(HandshakeTimeout))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		log.Debug(LogMsgHandshakeFailed, "error", err)
		return auth.Identity{}, err
	}
	_ = conn.SetReadDeadline(time.Time{})

	env, err := protocol.Decode(raw)
	if err == nil && env.Type != protocol.TypeJoin {
		err = errors.New(ReasonExpectedJoin)
	}
	if err != nil {
		log.Debug(LogMsgHandshakeFailed, "error", err)
		closeWith(conn, websocket.ClosePolicyViolation, ReasonExpectedJoin)
		return auth.Identity{}, err
	}

	var claim *auth.JoinClaim
	if err := protocol.Unmarshal(env, &claim); err != nil {
		claim = nil
	}
	identity, err := s.auth.Resolve(claim, worldID)
	if err != nil {
		log.Warn(LogMsgAuthFailed, "error", err)
		writeError(conn, err)
		closeWith(conn, auth.CloseCodeAuthFailed, ReasonAuthFailed)
		return auth.Identity{}, err
	}
	return identity, nil
}

// join opens the room and joins it. A room reaped between Open and Join is
// reopened once.
func (s *Server) join(ctx context.Context, worldID string, identity auth.Identity) (*room.Session, *room.Room, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		rm, err := s.rooms.Open(ctx, worldID)
		if err != nil {
			return nil, nil, err
		}
		sess := room.NewSession(ctx, identity, s.cfg.QueueSize)
		err = rm.Join(ctx, sess)
		if err == nil {
			return sess, rm, nil
		}
		lastErr = err
		if !errors.Is(err, room.ErrRoomClosed) {
			break
		}
	}
	return nil, nil, lastErr
}

// serve runs the writer on its own goroutine and the reader on this one
func (s *Server) serve(conn *websocket.Conn, rm *room.Room, sess *room.Session) {
	log := logger.FromContext(sess.Context())
	log.Info(LogMsgConnected, "player", sess.Identity.PlayerID, "host", sess.Identity.IsHost)

	direct := make(chan []byte, directQueueSize)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		writePump(conn, sess, direct)
	}()

	readPump(conn, rm, sess, direct)

	rm.Leave(sess)
	wg.Wait()
	log.Info(LogMsgDisconnected, "player", sess.Identity.PlayerID)
}

// readPump forwards frames to the room until the socket fails or the room
// stops accepting them. Frames that do not decode are answered directly.
func readPump(conn *websocket.Conn, rm *room.Room, sess *room.Session, direct chan<- []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(PongWait))
	})

	ctx := sess.Context()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(PongWait))

		env, err := protocol.Decode(raw)
		if err != nil {
			frame, encErr := protocol.EncodeError(err)
			if encErr == nil {
				select {
				case direct <- frame:
				default:
				}
			}
			continue
		}
		if err := rm.Deliver(ctx, sess, env); err != nil {
			return
		}
	}
}

// writePump is the only writer on conn once the session has joined
func writePump(conn *websocket.Conn, sess *room.Session, direct <-chan []byte) {
	ticker := time.NewTicker(PingPeriod)
	defer ticker.Stop()

	log := logger.FromContext(sess.Context())
	write := func(frame []byte) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(WriteWait))
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			log.Debug(LogMsgWriteFailed, "error", err)
			return false
		}
		return true
	}

	for {
		select {
		case frame, ok := <-sess.Out():
			if !ok {
				closeWith(conn, websocket.CloseNormalClosure, ReasonSessionClosed)
				// unblock the reader
				_ = conn.SetReadDeadline(time.Now().Add(CloseGrace))
				return
			}
			if !write(frame) {
				_ = conn.Close()
				drain(sess)
				return
			}
		case frame := <-direct:
			if !write(frame) {
				_ = conn.Close()
				drain(sess)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(WriteWait)); err != nil {
				_ = conn.Close()
				drain(sess)
				return
			}
		}
	}
}

// drain discards frames until the room closes the session
func drain(sess *room.Session) {
	for range sess.Out() {
	}
}

func writeError(conn *websocket.Conn, err error) {
	frame, encErr := protocol.EncodeError(err)
	if encErr != nil {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(WriteWait))
	_ = conn.WriteMessage(websocket.TextMessage, frame)
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(CloseGrace))
}
