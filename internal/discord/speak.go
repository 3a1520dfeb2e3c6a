package discord

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/keshon/parrot/internal/playback"
	"github.com/keshon/parrot/internal/tts"
)

// maybeSpeak synthesizes a plain chat message and queues it for playback,
// provided the author sits in a voice channel and has text-to-speech
// enabled. Synthesis runs here in the handler goroutine; the scheduler only
// ever sees ready audio.
func (b *Bot) maybeSpeak(m *discordgo.MessageCreate) {
	vs, err := b.FindUserVoiceState(m.GuildID, m.Author.ID)
	if err != nil {
		return
	}

	record, ok, err := b.store.GetUser(m.Author.ID)
	if err != nil {
		log.Printf("[ERR] Failed to load user %s: %v", m.Author.ID, err)
		return
	}
	if !ok || !record.TTSEnabled {
		return
	}

	if !b.limiter(m.GuildID).Allow() {
		log.Printf("[WARN] [%s] Synthesis rate limit hit, dropping message from %s", m.GuildID, m.Author.Username)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	audio, err := b.synth.Synthesize(ctx, m.Content, tts.Voice{
		Name:          record.Voice,
		LanguageCodes: []string{record.Language},
	})
	if err != nil {
		log.Printf("[ERR] [%s] Synthesis failed for %s: %v", m.GuildID, m.Author.Username, err)
		return
	}

	b.scheduler.Submit(playback.Request{
		ID:          uuid.NewString(),
		Kind:        playback.KindSpeech,
		Audio:       audio,
		GuildID:     m.GuildID,
		ChannelID:   vs.ChannelID,
		UserID:      m.Author.ID,
		RequestedAt: time.Now(),
	})
}
