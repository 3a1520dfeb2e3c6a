package playback

// Registry owns the guild-keyed session map. Sessions are created lazily on
// first lookup and live for the whole process; teardown resets them to idle
// instead of removing them.
//
// The map is only ever touched from the scheduler goroutine.
type Registry struct {
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for guildID, creating it on first use.
func (r *Registry) GetOrCreate(guildID string) *Session {
	if s, ok := r.sessions[guildID]; ok {
		return s
	}
	s := newSession(guildID)
	r.sessions[guildID] = s
	return s
}

// Get returns the session for guildID, or nil if none exists yet.
func (r *Registry) Get(guildID string) *Session {
	return r.sessions[guildID]
}

// Len reports how many guilds have sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}
