package discord

import (
	"github.com/keshon/parrot/internal/playback"
)

// Snapshot implements playback.PresenceSource: the human members of the
// channel the bot is currently connected to in this guild, with their
// tts_enabled flags. An empty snapshot means the bot is not connected or
// nobody else is there.
func (b *Bot) Snapshot(guildID string) playback.Snapshot {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return playback.Snapshot{}
	}

	botID := b.dg.State.User.ID
	var botChannel string
	for _, vs := range guild.VoiceStates {
		if vs.UserID == botID {
			botChannel = vs.ChannelID
			break
		}
	}
	if botChannel == "" {
		return playback.Snapshot{}
	}

	snap := playback.Snapshot{Enabled: make(map[string]bool)}
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != botChannel || vs.UserID == botID {
			continue
		}
		if member, err := b.dg.State.Member(guildID, vs.UserID); err == nil && member.User != nil && member.User.Bot {
			continue
		}
		snap.Members = append(snap.Members, vs.UserID)
		snap.Enabled[vs.UserID] = b.store.TTSEnabled(vs.UserID)
	}
	return snap
}
