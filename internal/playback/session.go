package playback

import "time"

// Status of a guild session. A session is Playing exactly while it owns a
// non-nil active handle.
type Status string

const (
	StatusIdle    Status = "Idle"
	StatusPlaying Status = "Playing"
)

// Session holds the playback state for one guild: the pending FIFO queue,
// the active handle, and the idle-disconnect timer. Sessions are created on
// first use and reset to idle, never destroyed.
//
// All fields are confined to the scheduler goroutine; nothing here locks.
type Session struct {
	guildID string

	queue  []Request
	status Status
	handle Handle

	// connected tracks whether the scheduler believes the guild has a live
	// voice connection. The idle transition is skipped entirely once a
	// disconnect has been requested.
	connected bool

	idleTimer *time.Timer
	timerGen  uint64
}

func newSession(guildID string) *Session {
	return &Session{
		guildID: guildID,
		status:  StatusIdle,
	}
}

// enqueue appends a request at the tail.
func (g *Session) enqueue(req Request) {
	g.queue = append(g.queue, req)
}

// popFront removes and returns the head of the queue.
func (g *Session) popFront() (Request, bool) {
	if len(g.queue) == 0 {
		return Request{}, false
	}
	req := g.queue[0]
	g.queue = g.queue[1:]
	return req, true
}

// reset returns the session to idle with an empty queue. The active handle,
// if any, is left to its completion callback.
func (g *Session) reset() {
	g.queue = nil
	g.handle = nil
	g.status = StatusIdle
	g.disarmIdleTimer()
}

// armIdleTimer schedules fire after d. Any previously outstanding timer is
// disarmed first, so at most one timer per guild ever exists. fire receives
// a generation number; a fire whose generation no longer matches is stale
// and must be ignored.
func (g *Session) armIdleTimer(d time.Duration, fire func(gen uint64)) {
	g.disarmIdleTimer()
	g.timerGen++
	gen := g.timerGen
	g.idleTimer = time.AfterFunc(d, func() { fire(gen) })
}

// disarmIdleTimer stops the outstanding timer, if any, and invalidates any
// fire already in flight.
func (g *Session) disarmIdleTimer() {
	if g.idleTimer != nil {
		g.idleTimer.Stop()
		g.idleTimer = nil
	}
	g.timerGen++
}

// timerValid reports whether a fired generation still belongs to the
// currently armed timer.
func (g *Session) timerValid(gen uint64) bool {
	return g.idleTimer != nil && gen == g.timerGen
}
