package room

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/osse101/HarvestRealm_Go/internal/crop"
	"github.com/osse101/HarvestRealm_Go/internal/domain"
	"github.com/osse101/HarvestRealm_Go/internal/logger"
	"github.com/osse101/HarvestRealm_Go/internal/metrics"
	"github.com/osse101/HarvestRealm_Go/internal/protocol"
	"github.com/osse101/HarvestRealm_Go/internal/scheduler"
	"github.com/osse101/HarvestRealm_Go/internal/utils"
	"github.com/osse101/HarvestRealm_Go/internal/worker"
)

// Room owns the live state of one world. All live state is read and written
// by the run goroutine only; other goroutines talk to it through channels.
type Room struct {
	worldID string
	deps    Deps
	ctx     context.Context

	join    chan *joinRequest
	leave   chan *Session
	inbox   chan inbound
	results chan any
	query   chan chan protocol.State

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	// occupants counts connected sessions plus pending joins
	occupants atomic.Int32
	idleSince atomic.Int64

	// owned by run
	members   map[string]*member
	pending   map[string]*joinRequest
	crops     map[string]*domain.Crop
	stages    map[string]domain.Stage
	deadlines *scheduler.Deadlines
	patch     patch
}

// member is a live player keyed by session id. A disconnected member keeps
// its record until its eviction task fires.
type member struct {
	session *Session
	player  domain.LivePlayer
	evict   *scheduler.Task

	// ledger-bound messages waiting behind the one in flight
	queue []protocol.Envelope
	busy  bool
}

type joinRequest struct {
	session *Session
	reply   chan error
}

type inbound struct {
	session *Session
	env     protocol.Envelope
}

func newRoom(worldID string, deps Deps, crops []domain.Crop) *Room {
	r := &Room{
		worldID:   worldID,
		deps:      deps,
		ctx:       logger.WithWorldID(context.Background(), worldID),
		join:      make(chan *joinRequest, joinQueueSize),
		leave:     make(chan *Session, leaveQueueSize),
		inbox:     make(chan inbound, inboxSize),
		results:   make(chan any, resultsQueueSize),
		query:     make(chan chan protocol.State),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		members:   make(map[string]*member),
		pending:   make(map[string]*joinRequest),
		crops:     make(map[string]*domain.Crop, len(crops)),
		stages:    make(map[string]domain.Stage, len(crops)),
		deadlines: scheduler.NewDeadlines(),
		patch:     newPatch(),
	}
	now := deps.Clock()
	for i := range crops {
		c := crops[i]
		r.crops[c.ID] = &c
		r.stages[c.ID] = crop.DeriveStage(c.PlantedAt, c.GrowthTime, now)
	}
	r.idleSince.Store(now.UnixNano())
	return r
}

// WorldID is the world this room serves
func (r *Room) WorldID() string {
	return r.worldID
}

// Done is closed once the run loop has exited
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Occupants reports connected sessions plus joins in progress
func (r *Room) Occupants() int {
	return int(r.occupants.Load())
}

// IdleSince reports when the room last became empty
func (r *Room) IdleSince() (time.Time, bool) {
	ns := r.idleSince.Load()
	if ns == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, ns), true
}

// Join hydrates the session's player and adds it to live state. It returns
// once the welcome and state frames are queued on the session.
func (r *Room) Join(ctx context.Context, s *Session) error {
	req := &joinRequest{session: s, reply: make(chan error, 1)}
	select {
	case r.join <- req:
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.reply:
		return err
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		r.Leave(s)
		return ctx.Err()
	}
}

// Leave marks the session disconnected. It is safe to call more than once.
func (r *Room) Leave(s *Session) {
	select {
	case r.leave <- s:
	case <-r.done:
	}
}

// Deliver hands one inbound frame to the room, blocking while the inbox is full
func (r *Room) Deliver(ctx context.Context, s *Session, env protocol.Envelope) error {
	select {
	case r.inbox <- inbound{session: s, env: env}:
		return nil
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current live state
func (r *Room) Snapshot(ctx context.Context) (protocol.State, error) {
	reply := make(chan protocol.State, 1)
	select {
	case r.query <- reply:
	case <-r.done:
		return protocol.State{}, ErrRoomClosed
	case <-ctx.Done():
		return protocol.State{}, ctx.Err()
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return protocol.State{}, ctx.Err()
	}
}

// Stop ends the run loop and closes every session. Jobs already handed to
// the worker pool still commit; their results are discarded.
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}

func (r *Room) start() {
	go r.run()
}

func (r *Room) run() {
	defer close(r.done)

	ticker := time.NewTicker(r.deps.Tuning.TickInterval())
	defer ticker.Stop()

	log := logger.FromContext(r.ctx)
	log.Info(LogMsgRoomStarted, "crops", len(r.crops))

	for {
		select {
		case <-r.stop:
			r.shutdown()
			log.Info(LogMsgRoomStopped)
			return
		case req := <-r.join:
			r.handleJoin(req)
		case s := <-r.leave:
			r.handleLeave(s)
		case in := <-r.inbox:
			r.handleMessage(in)
		case res := <-r.results:
			r.applyResult(res)
		case reply := <-r.query:
			reply <- r.snapshot(r.deps.Clock())
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Room) applyResult(res any) {
	switch res := res.(type) {
	case joinResult:
		r.applyJoin(res)
	case plantResult:
		r.applyPlant(res)
	case harvestResult:
		r.applyHarvest(res)
	}
}

func (r *Room) tick() {
	now := r.deps.Clock()
	r.deadlines.RunDue(now)

	for id, c := range r.crops {
		if c.Harvested {
			continue
		}
		if stage := crop.DeriveStage(c.PlantedAt, c.GrowthTime, now); stage != r.stages[id] {
			r.stages[id] = stage
			r.patch.markCrop(id)
		}
	}

	r.flushPatch(now)
}

func (r *Room) shutdown() {
	for id, req := range r.pending {
		req.reply <- ErrRoomClosed
		req.session.close()
		delete(r.pending, id)
	}
	connected := 0
	for _, m := range r.members {
		if m.session != nil {
			m.session.close()
			m.session = nil
			connected++
		}
	}
	metrics.SessionsActive.Sub(float64(connected))
	r.occupants.Store(0)
}

// ---------------------------------------------------------------------------
// Joins and leaves
// ---------------------------------------------------------------------------

func (r *Room) handleJoin(req *joinRequest) {
	s := req.session
	if _, dup := r.pending[s.ID]; dup {
		req.reply <- fmt.Errorf("%w: session already joining", domain.ErrValidation)
		return
	}
	if _, dup := r.members[s.ID]; dup {
		req.reply <- fmt.Errorf("%w: session already joined", domain.ErrValidation)
		return
	}

	r.pending[s.ID] = req
	r.occupy()

	identity := s.Identity
	ok := r.submit(s, func(ctx context.Context) any {
		p, err := r.deps.Ledger.GetOrCreatePlayer(ctx, identity.PlayerID, identity.Name)
		return joinResult{session: s, player: p, err: err}
	})
	if !ok {
		delete(r.pending, s.ID)
		r.release()
		req.reply <- ErrServerBusy
	}
}

type joinResult struct {
	session *Session
	player  *domain.Player
	err     error
}

func (r *Room) applyJoin(res joinResult) {
	s := res.session
	req, ok := r.pending[s.ID]
	if !ok {
		// left while hydrating
		return
	}
	delete(r.pending, s.ID)

	log := logger.FromContext(s.Context())
	if res.err != nil {
		log.Error(LogMsgJoinFailed, "player", s.Identity.PlayerID, "error", res.err)
		r.release()
		req.reply <- res.err
		return
	}

	now := r.deps.Clock()
	w := r.deps.Tuning.World
	x, y, reconnect := r.reclaim(res.player.ID)
	if !reconnect {
		x, y = w.SpawnX, w.SpawnY
	}

	m := &member{
		session: s,
		player: domain.LivePlayer{
			SessionID: s.ID,
			PlayerID:  res.player.ID,
			Name:      res.player.Name,
			XP:        res.player.XP,
			X:         x,
			Y:         y,
			Connected: true,
			IsHost:    s.Identity.IsHost,
			LastSeen:  now,
		},
	}
	r.members[s.ID] = m
	r.patch.markPlayer(s.ID)
	metrics.SessionsActive.Inc()
	req.reply <- nil

	r.send(m, protocol.TypeWelcome, protocol.Welcome{
		Message:      protocol.WelcomeMessage,
		PlayerID:     m.player.PlayerID,
		SessionID:    s.ID,
		IsHost:       m.player.IsHost,
		WorldOwnerID: r.worldID,
		ServerTime:   now.UnixMilli(),
	})
	r.send(m, protocol.TypeState, r.snapshot(now))

	if reconnect {
		log.Info(LogMsgPlayerReconnected, "player", m.player.PlayerID)
		return
	}
	r.broadcastExcept(s.ID, protocol.TypePlayerJoined, m.player)
	log.Info(LogMsgPlayerJoined, "player", m.player.PlayerID, "host", m.player.IsHost)
}

// reclaim drops disconnected records of playerID whose eviction is still
// pending and returns the last known position.
func (r *Room) reclaim(playerID string) (x, y float64, found bool) {
	for sid, m := range r.members {
		if m.session != nil || m.player.PlayerID != playerID {
			continue
		}
		r.deadlines.Cancel(m.evict)
		delete(r.members, sid)
		r.patch.removePlayer(sid)
		x, y, found = m.player.X, m.player.Y, true
	}
	return x, y, found
}

func (r *Room) handleLeave(s *Session) {
	if req, ok := r.pending[s.ID]; ok {
		delete(r.pending, s.ID)
		r.release()
		req.reply <- ErrRoomClosed
		s.close()
		return
	}

	m, ok := r.members[s.ID]
	if !ok || m.session != s {
		s.close()
		return
	}

	now := r.deps.Clock()
	m.session = nil
	m.queue = nil
	m.player.Connected = false
	m.player.LastSeen = now
	r.patch.markPlayer(s.ID)
	s.close()
	r.release()
	metrics.SessionsActive.Dec()

	sid := s.ID
	m.evict = r.deadlines.Schedule(now.Add(r.deps.Tuning.PlayerGrace), func() { r.evict(sid) })
	logger.FromContext(s.Context()).Info(LogMsgPlayerDisconnect, "player", m.player.PlayerID)
}

func (r *Room) evict(sessionID string) {
	m, ok := r.members[sessionID]
	if !ok || m.session != nil {
		return
	}
	delete(r.members, sessionID)
	r.patch.removePlayer(sessionID)
	r.broadcast(protocol.TypePlayerLeft, protocol.PlayerLeft{SessionID: sessionID, PlayerID: m.player.PlayerID})
	logger.FromContext(r.ctx).Info(LogMsgPlayerEvicted, "session_id", sessionID, "player", m.player.PlayerID)
}

func (r *Room) occupy() {
	r.occupants.Add(1)
	r.idleSince.Store(0)
}

func (r *Room) release() {
	if r.occupants.Add(-1) <= 0 {
		r.occupants.Store(0)
		r.idleSince.Store(r.deps.Clock().UnixNano())
	}
}

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

func (r *Room) handleMessage(in inbound) {
	m, ok := r.members[in.session.ID]
	if !ok || m.session != in.session {
		return
	}
	m.player.LastSeen = r.deps.Clock()

	switch in.env.Type {
	case protocol.TypeMove:
		metrics.MessagesTotal.WithLabelValues(in.env.Type).Inc()
		r.handleMove(m, in.env)
	case protocol.TypeChat:
		metrics.MessagesTotal.WithLabelValues(in.env.Type).Inc()
		r.handleChat(m, in.env)
	case protocol.TypePing:
		metrics.MessagesTotal.WithLabelValues(in.env.Type).Inc()
		r.send(m, protocol.TypePong, protocol.Pong{Timestamp: r.deps.Clock().UnixMilli()})
	case protocol.TypePlant, protocol.TypeHarvest:
		metrics.MessagesTotal.WithLabelValues(in.env.Type).Inc()
		m.queue = append(m.queue, in.env)
		r.pump(m)
	default:
		metrics.MessagesTotal.WithLabelValues(metricTypeUnknown).Inc()
		r.replyError(m, fmt.Errorf("%w: %s %q", domain.ErrValidation, protocol.ErrMsgUnknownType, in.env.Type))
	}
}

func (r *Room) handleMove(m *member, env protocol.Envelope) {
	mv, err := protocol.DecodeInto[protocol.Move](env)
	if err != nil {
		r.replyError(m, err)
		return
	}
	w := r.deps.Tuning.World
	x := utils.Clamp(*mv.X, w.MinX, w.MaxX)
	y := utils.Clamp(*mv.Y, w.MinY, w.MaxY)
	if x != m.player.X || y != m.player.Y {
		m.player.X, m.player.Y = x, y
		r.patch.markPlayer(m.player.SessionID)
	}
	logger.FromContext(m.session.Context()).Debug(LogMsgPlayerMoved, "x", x, "y", y)
}

func (r *Room) handleChat(m *member, env protocol.Envelope) {
	c, err := protocol.DecodeInto[protocol.Chat](env)
	if err != nil {
		r.replyError(m, err)
		return
	}
	text := utils.NormalizeText(c.Text, r.deps.Tuning.ChatMaxRunes)
	if text == "" {
		r.replyError(m, fmt.Errorf("%w: %s", domain.ErrValidation, ErrMsgEmptyChat))
		return
	}
	r.broadcast(protocol.TypeChat, protocol.ChatEvent{
		SessionID: m.player.SessionID,
		PlayerID:  m.player.PlayerID,
		Name:      m.player.Name,
		Text:      text,
		Timestamp: r.deps.Clock().UnixMilli(),
	})
}

// pump dispatches queued ledger-bound messages while the member has none in flight
func (r *Room) pump(m *member) {
	for !m.busy && len(m.queue) > 0 && m.session != nil {
		env := m.queue[0]
		m.queue = m.queue[1:]
		if err := r.dispatch(m, env); err != nil {
			r.replyError(m, err)
		}
	}
}

func (r *Room) dispatch(m *member, env protocol.Envelope) error {
	if !m.player.IsHost {
		logger.FromContext(m.session.Context()).Warn(LogMsgVisitorMutation, "player", m.player.PlayerID, "type", env.Type)
		return domain.ErrNotAuthorized
	}

	s := m.session
	playerID := m.player.PlayerID
	switch env.Type {
	case protocol.TypePlant:
		p, err := protocol.DecodeInto[protocol.Plant](env)
		if err != nil {
			return err
		}
		if !r.inBounds(*p.X, *p.Y) {
			return fmt.Errorf("%w: %s", domain.ErrValidation, ErrMsgOutOfBounds)
		}
		if !r.submit(s, func(ctx context.Context) any { return r.plant(ctx, s.ID, playerID, p) }) {
			return ErrServerBusy
		}
	case protocol.TypeHarvest:
		h, err := protocol.DecodeInto[protocol.Harvest](env)
		if err != nil {
			return err
		}
		if !r.submit(s, func(ctx context.Context) any { return r.harvest(ctx, s.ID, playerID, h.CropID) }) {
			return ErrServerBusy
		}
	}
	m.busy = true
	return nil
}

func (r *Room) inBounds(x, y float64) bool {
	w := r.deps.Tuning.World
	return x >= w.MinX && x <= w.MaxX && y >= w.MinY && y <= w.MaxY
}

// setXP raises the live experience of every session of playerID
func (r *Room) setXP(playerID string, xp int64) {
	for sid, m := range r.members {
		if m.player.PlayerID == playerID && xp > m.player.XP {
			m.player.XP = xp
			r.patch.markPlayer(sid)
		}
	}
}

// ---------------------------------------------------------------------------
// Outbound
// ---------------------------------------------------------------------------

func (r *Room) send(m *member, msgType string, data any) {
	if m == nil || m.session == nil {
		return
	}
	frame, err := protocol.Encode(msgType, data)
	if err != nil {
		logger.FromContext(r.ctx).Error(LogMsgEncodeFailed, "type", msgType, "error", err)
		return
	}
	m.session.send(frame)
}

func (r *Room) replyError(m *member, err error) {
	ge := domain.ToGameError(err)
	metrics.GameErrorsTotal.WithLabelValues(ge.Code).Inc()
	r.send(m, protocol.TypeGameError, ge)
}

func (r *Room) broadcast(msgType string, data any) {
	r.broadcastExcept("", msgType, data)
}

func (r *Room) broadcastExcept(skipSessionID, msgType string, data any) {
	frame, err := protocol.Encode(msgType, data)
	if err != nil {
		logger.FromContext(r.ctx).Error(LogMsgEncodeFailed, "type", msgType, "error", err)
		return
	}
	for sid, m := range r.members {
		if sid == skipSessionID || m.session == nil {
			continue
		}
		m.session.send(frame)
	}
}

func (r *Room) snapshot(now time.Time) protocol.State {
	st := protocol.State{
		Players:    make([]domain.LivePlayer, 0, len(r.members)),
		Crops:      make([]protocol.CropView, 0, len(r.crops)),
		ServerTime: now.UnixMilli(),
	}
	for _, m := range r.members {
		st.Players = append(st.Players, m.player)
	}
	for _, c := range r.crops {
		st.Crops = append(st.Crops, protocol.NewCropView(c, now))
	}
	sort.Slice(st.Players, func(i, j int) bool { return st.Players[i].SessionID < st.Players[j].SessionID })
	sort.Slice(st.Crops, func(i, j int) bool { return st.Crops[i].ID < st.Crops[j].ID })
	return st
}

func (r *Room) flushPatch(now time.Time) {
	if r.patch.empty() {
		return
	}
	p := protocol.StatePatch{ServerTime: now.UnixMilli()}
	for _, sid := range sortedKeys(r.patch.players) {
		if m, ok := r.members[sid]; ok {
			p.Players = append(p.Players, m.player)
		}
	}
	for _, id := range sortedKeys(r.patch.crops) {
		if c, ok := r.crops[id]; ok {
			p.Crops = append(p.Crops, protocol.NewCropView(c, now))
		}
	}
	p.RemovedPlayers = sortedKeys(r.patch.removedPlayers)
	p.RemovedCrops = sortedKeys(r.patch.removedCrops)
	r.patch.reset()

	if !p.Empty() {
		r.broadcast(protocol.TypeStatePatch, p)
	}
}

// submit runs fn on the worker pool and routes its result back to the run loop
func (r *Room) submit(s *Session, fn func(ctx context.Context) any) bool {
	base := s.Context()
	job := func(ctx context.Context) error {
		ctx = logger.WithSessionID(logger.WithWorldID(ctx, r.worldID), s.ID)
		res := fn(ctx)
		select {
		case r.results <- res:
		case <-r.done:
		}
		return nil
	}
	if !r.deps.Pool.TryEnqueue(worker.JobFunc(job)) {
		metrics.WorkerQueueRejections.Inc()
		logger.FromContext(base).Warn(LogMsgJobRejected, "queued", r.deps.Pool.QueueDepth())
		return false
	}
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
