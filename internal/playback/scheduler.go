package playback

import (
	"context"
	"log"
	"time"
)

// TimeoutDisconnect is how long a guild's voice connection may sit idle
// before it is dropped.
const TimeoutDisconnect = 15 * time.Minute

// Scheduler serializes playback per guild: at most one active playback at a
// time, FIFO queue behind it, cooperative cancellation, and teardown of the
// voice connection on request, on empty presence, and on idle timeout.
//
// Every state transition runs on the single goroutine inside Run. The public
// methods and the transport's completion callbacks only post events; they
// never mutate a session from their own call stack.
type Scheduler struct {
	transport Transport
	presence  PresenceSource
	registry  *Registry

	idleTimeout time.Duration

	events chan event
	quit   chan struct{}
}

type eventKind int

const (
	evSubmit eventKind = iota
	evStop
	evClear
	evLeave
	evFinished
	evPresence
	evTimer
	evState
)

type event struct {
	kind    eventKind
	guildID string
	req     Request
	outcome Outcome
	gen     uint64
	reply   chan SessionState
}

// SessionState is an observable snapshot of one guild session, for
// diagnostics and tests.
type SessionState struct {
	Status     Status
	Queued     int
	Connected  bool
	TimerArmed bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithIdleTimeout overrides the idle-disconnect timeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.idleTimeout = d }
}

// NewScheduler creates a scheduler. Call Run before posting any work.
func NewScheduler(transport Transport, presence PresenceSource, opts ...Option) *Scheduler {
	s := &Scheduler{
		transport:   transport,
		presence:    presence,
		registry:    NewRegistry(),
		idleTimeout: TimeoutDisconnect,
		events:      make(chan event, 64),
		quit:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run consumes events until ctx is cancelled. It must be running for any of
// the public operations to take effect.
func (s *Scheduler) Run(ctx context.Context) {
	defer close(s.quit)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			s.dispatch(ev)
		}
	}
}

// Submit queues a request for its guild, starting playback immediately if
// the guild is idle.
func (s *Scheduler) Submit(req Request) {
	s.post(event{kind: evSubmit, guildID: req.GuildID, req: req})
}

// Stop cancels the current playback, if any. The queue is kept; the
// resulting completion drains the next item. No-op for unknown guilds.
func (s *Scheduler) Stop(guildID string) {
	s.post(event{kind: evStop, guildID: guildID})
}

// Clear discards the whole queue and cancels the current playback, if any.
func (s *Scheduler) Clear(guildID string) {
	s.post(event{kind: evClear, guildID: guildID})
}

// Leave drops the guild's voice connection immediately, discarding the
// queue and cancelling any current playback. Presence and idle logic are
// bypassed.
func (s *Scheduler) Leave(guildID string) {
	s.post(event{kind: evLeave, guildID: guildID})
}

// NotifyPresence re-evaluates whether the guild's voice connection should
// be kept, using a fresh presence snapshot.
func (s *Scheduler) NotifyPresence(guildID string) {
	s.post(event{kind: evPresence, guildID: guildID})
}

// State reports the observable state of a guild session. It acts as a
// barrier: all events posted before it have been processed when it returns.
func (s *Scheduler) State(guildID string) SessionState {
	reply := make(chan SessionState, 1)
	s.post(event{kind: evState, guildID: guildID, reply: reply})
	select {
	case st := <-reply:
		return st
	case <-s.quit:
		return SessionState{Status: StatusIdle}
	}
}

func (s *Scheduler) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.quit:
	}
}

func (s *Scheduler) dispatch(ev event) {
	switch ev.kind {
	case evSubmit:
		s.handleSubmit(ev.req)
	case evStop:
		s.handleStop(ev.guildID)
	case evClear:
		s.handleClear(ev.guildID)
	case evLeave:
		s.handleLeave(ev.guildID)
	case evFinished:
		s.handleFinished(ev.guildID, ev.outcome)
	case evPresence:
		s.handlePresence(ev.guildID)
	case evTimer:
		s.handleTimer(ev.guildID, ev.gen)
	case evState:
		s.handleState(ev.guildID, ev.reply)
	}
}

func (s *Scheduler) handleSubmit(req Request) {
	sess := s.registry.GetOrCreate(req.GuildID)
	sess.disarmIdleTimer()
	sess.enqueue(req)
	log.Printf("[INFO] [%s] Queued %s request | QueueLen=%d", req.GuildID, req.Kind, len(sess.queue))
	if sess.status == StatusIdle {
		s.drain(sess)
		// Everything refused synchronously: the session is idle again and
		// must not keep its connection without a timer.
		if sess.status == StatusIdle {
			s.idleTransition(sess)
		}
	}
}

func (s *Scheduler) handleStop(guildID string) {
	sess := s.registry.Get(guildID)
	if sess == nil || sess.handle == nil {
		return
	}
	log.Printf("[INFO] [%s] Stopping current playback", guildID)
	sess.handle.Cancel()
}

func (s *Scheduler) handleClear(guildID string) {
	sess := s.registry.Get(guildID)
	if sess == nil {
		return
	}
	log.Printf("[INFO] [%s] Clearing queue | dropped=%d", guildID, len(sess.queue))
	sess.queue = nil
	if sess.handle != nil {
		sess.handle.Cancel()
	}
}

func (s *Scheduler) handleLeave(guildID string) {
	sess := s.registry.GetOrCreate(guildID)
	sess.disarmIdleTimer()
	sess.queue = nil
	if sess.handle != nil {
		sess.handle.Cancel()
	}
	log.Printf("[INFO] [%s] Leaving voice channel on request", guildID)
	s.transport.Disconnect(guildID)
	sess.connected = false
}

// handleFinished is the single completion path. Success, failure and forced
// cancellation all land here, and the queue keeps draining regardless.
func (s *Scheduler) handleFinished(guildID string, outcome Outcome) {
	sess := s.registry.Get(guildID)
	if sess == nil || sess.status != StatusPlaying {
		log.Printf("[WARN] [%s] Stale completion (%s) ignored", guildID, outcome)
		return
	}
	sess.handle = nil
	sess.status = StatusIdle
	switch outcome {
	case OutcomeFailed:
		log.Printf("[ERR] [%s] Playback failed, continuing with queue", guildID)
	default:
		log.Printf("[INFO] [%s] Playback finished (%s) | QueueLen=%d", guildID, outcome, len(sess.queue))
	}

	s.drain(sess)
	if sess.status == StatusIdle {
		s.idleTransition(sess)
	}
}

// drain starts the next queued request. It loops instead of recursing so a
// long queue of synchronously failing requests cannot grow the stack.
func (s *Scheduler) drain(sess *Session) {
	for {
		req, ok := sess.popFront()
		if !ok {
			return
		}
		guildID := sess.guildID
		handle, err := s.transport.Play(req, func(outcome Outcome) {
			s.post(event{kind: evFinished, guildID: guildID, outcome: outcome})
		})
		if err != nil {
			// Synchronous refusal: same as a failed completion, try the
			// next item without ever having left Idle.
			log.Printf("[ERR] [%s] Playback start failed: %v", guildID, err)
			continue
		}
		sess.handle = handle
		sess.status = StatusPlaying
		sess.connected = true
		return
	}
}

// idleTransition runs after a completion leaves the session idle with an
// empty queue: evaluate presence, and either drop the connection now or arm
// the idle timer.
func (s *Scheduler) idleTransition(sess *Session) {
	if !sess.connected {
		return
	}
	if s.presence.Snapshot(sess.guildID).ShouldDisconnect() {
		log.Printf("[INFO] [%s] No listeners left, disconnecting", sess.guildID)
		sess.disarmIdleTimer()
		s.transport.Disconnect(sess.guildID)
		sess.connected = false
		return
	}
	s.armIdleTimer(sess)
}

func (s *Scheduler) armIdleTimer(sess *Session) {
	guildID := sess.guildID
	sess.armIdleTimer(s.idleTimeout, func(gen uint64) {
		s.post(event{kind: evTimer, guildID: guildID, gen: gen})
	})
}

func (s *Scheduler) handlePresence(guildID string) {
	sess := s.registry.Get(guildID)
	if sess == nil || !sess.connected {
		return
	}
	if !s.presence.Snapshot(guildID).ShouldDisconnect() {
		return
	}
	log.Printf("[INFO] [%s] No tts-enabled members in channel, disconnecting", guildID)
	sess.disarmIdleTimer()
	sess.queue = nil
	if sess.handle != nil {
		sess.handle.Cancel()
	}
	s.transport.Disconnect(guildID)
	sess.connected = false
}

// handleTimer fires the idle disconnect. A generation mismatch means the
// timer was superseded between firing and delivery.
func (s *Scheduler) handleTimer(guildID string, gen uint64) {
	sess := s.registry.Get(guildID)
	if sess == nil || !sess.timerValid(gen) {
		return
	}
	sess.idleTimer = nil
	log.Printf("[INFO] [%s] Idle timeout reached, disconnecting", guildID)
	s.transport.Disconnect(guildID)
	sess.connected = false
}

func (s *Scheduler) handleState(guildID string, reply chan SessionState) {
	st := SessionState{Status: StatusIdle}
	if sess := s.registry.Get(guildID); sess != nil {
		st = SessionState{
			Status:     sess.status,
			Queued:     len(sess.queue),
			Connected:  sess.connected,
			TimerArmed: sess.idleTimer != nil,
		}
	}
	reply <- st
}
