package playback

import "time"

// Kind tells the transport what kind of audio a request carries.
type Kind string

const (
	// KindSpeech carries synthesized speech as encoded audio bytes.
	KindSpeech Kind = "speech"
	// KindSound carries a remote sound-clip URL the transport fetches itself.
	KindSound Kind = "sound"
)

// Request is one unit of audio queued for a guild. It is immutable once
// submitted; the scheduler never inspects the payload, only routes it.
type Request struct {
	ID        string // unique per request, diagnostics only
	Kind      Kind
	Audio     []byte // speech only, encoded (MP3)
	SourceURL string // sound only
	GuildID   string
	ChannelID string // voice channel to play into
	UserID    string

	RequestedAt time.Time // diagnostics only, queue order is FIFO
}

// Outcome is the terminal result of one playback attempt. The scheduler
// drains the queue identically for all outcomes; only logging differs.
type Outcome string

const (
	OutcomeDone      Outcome = "done"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// Handle is the live control object for an in-flight playback. Cancel is
// cooperative: it requests the transport to end the stream, and the
// completion callback fires once it actually has.
type Handle interface {
	Cancel()
}

// Transport is the voice collaborator. Play must either return an error
// synchronously or invoke done exactly once when the attempt ends, whatever
// the outcome. Disconnect must be idempotent.
type Transport interface {
	Play(req Request, done func(Outcome)) (Handle, error)
	Disconnect(guildID string)
}
