package playback

// Snapshot is the voice-channel membership of a guild at one instant:
// the human members of the channel the bot is connected to, and which of
// them have text-to-speech enabled.
type Snapshot struct {
	Members []string
	Enabled map[string]bool
}

// PresenceSource reports the current membership of the bot's voice channel
// in a guild. An empty snapshot means the bot is not connected or is alone.
type PresenceSource interface {
	Snapshot(guildID string) Snapshot
}

// ShouldDisconnect reports whether the voice connection has no reason to
// stay up: the channel has no human members, or none of them has
// text-to-speech enabled.
func (s Snapshot) ShouldDisconnect() bool {
	for _, id := range s.Members {
		if s.Enabled[id] {
			return false
		}
	}
	return true
}
