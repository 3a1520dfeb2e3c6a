package discord

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/keshon/parrot/internal/playback"
	"github.com/keshon/parrot/internal/storage"
	"github.com/keshon/parrot/internal/voicecatalog"
)

const commandTimeout = 30 * time.Second

// onMessageCreate routes prefixed messages to commands and everything else
// to the speak path.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID || m.Author.Bot || m.GuildID == "" {
		return
	}

	if strings.HasPrefix(m.Content, b.cfg.CommandPrefix) {
		b.handleCommand(m, strings.TrimPrefix(m.Content, b.cfg.CommandPrefix))
		return
	}

	b.maybeSpeak(m)
}

func (b *Bot) handleCommand(m *discordgo.MessageCreate, raw string) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "tts":
		b.handleTTS(m)
	case "stop":
		b.scheduler.Stop(m.GuildID)
	case "clear":
		b.scheduler.Clear(m.GuildID)
	case "leave":
		b.scheduler.Leave(m.GuildID)
	case "random":
		b.handleRandom(m)
	case "voice":
		b.handleVoice(m, args)
	case "sound":
		b.handleSound(m, args)
	case "settings":
		b.handleSettings(m)
	}
}

// handleTTS toggles the caller's text-to-speech flag. Disabling may leave
// the channel without enabled listeners, so presence is re-evaluated.
func (b *Bot) handleTTS(m *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	record, err := b.getOrCreateUser(ctx, m.Author.ID)
	if err != nil {
		log.Printf("[ERR] Failed to load user %s: %v", m.Author.ID, err)
		return
	}

	record.TTSEnabled = !record.TTSEnabled
	if err := b.store.SetUser(m.Author.ID, record); err != nil {
		log.Printf("[ERR] Failed to save user %s: %v", m.Author.ID, err)
		return
	}

	state := "disabled"
	if record.TTSEnabled {
		state = "enabled"
	}
	b.reply(m.ChannelID, fmt.Sprintf("Text to speech %s for %s", state, m.Author.Username))
	b.scheduler.NotifyPresence(m.GuildID)
}

// handleRandom assigns the caller a random Wavenet voice.
func (b *Bot) handleRandom(m *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	voices, err := b.catalog.Voices(ctx, voicecatalog.Filter{Type: "Wavenet"})
	if err != nil || len(voices) == 0 {
		log.Printf("[ERR] Voice catalog unavailable: %v", err)
		b.reply(m.ChannelID, "Voice list is unavailable right now.")
		return
	}

	record, err := b.getOrCreateUser(ctx, m.Author.ID)
	if err != nil {
		log.Printf("[ERR] Failed to load user %s: %v", m.Author.ID, err)
		return
	}

	picked := voices[rand.Intn(len(voices))]
	record.Voice = picked.Name
	record.Language = picked.LanguageCodes[0]
	if err := b.store.SetUser(m.Author.ID, record); err != nil {
		log.Printf("[ERR] Failed to save user %s: %v", m.Author.ID, err)
		return
	}
	b.reply(m.ChannelID, "Language changed to "+picked.Name)
}

// handleVoice sets the caller's voice by exact catalog name, or reports the
// current one when called without an argument.
func (b *Bot) handleVoice(m *discordgo.MessageCreate, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if len(args) == 0 {
		record, err := b.getOrCreateUser(ctx, m.Author.ID)
		if err != nil {
			log.Printf("[ERR] Failed to load user %s: %v", m.Author.ID, err)
			return
		}
		b.reply(m.ChannelID, "Current voice: "+record.Voice)
		return
	}

	name := args[0]
	picked, ok, err := b.catalog.Find(ctx, name)
	if err != nil {
		log.Printf("[ERR] Voice catalog unavailable: %v", err)
		b.reply(m.ChannelID, "Voice list is unavailable right now.")
		return
	}
	if !ok {
		b.reply(m.ChannelID, "Not a valid voice: "+name)
		return
	}

	record, err := b.getOrCreateUser(ctx, m.Author.ID)
	if err != nil {
		log.Printf("[ERR] Failed to load user %s: %v", m.Author.ID, err)
		return
	}
	record.Voice = picked.Name
	record.Language = picked.LanguageCodes[0]
	if err := b.store.SetUser(m.Author.ID, record); err != nil {
		log.Printf("[ERR] Failed to save user %s: %v", m.Author.ID, err)
		return
	}
	b.reply(m.ChannelID, "Voice set to "+picked.Name)
}

// handleSound resolves a sound-effect name and queues it for the caller's
// voice channel.
func (b *Bot) handleSound(m *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		b.reply(m.ChannelID, "Usage: "+b.cfg.CommandPrefix+"sound <name>")
		return
	}

	vs, err := b.FindUserVoiceState(m.GuildID, m.Author.ID)
	if err != nil {
		b.reply(m.ChannelID, "Join a voice channel first.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	name := strings.Join(args, " ")
	url, err := b.sounds.Resolve(ctx, name)
	if err != nil {
		log.Printf("[WARN] Sound %q not resolved: %v", name, err)
		b.reply(m.ChannelID, "No sound found for: "+name)
		return
	}

	b.scheduler.Submit(playback.Request{
		ID:          uuid.NewString(),
		Kind:        playback.KindSound,
		SourceURL:   url,
		GuildID:     m.GuildID,
		ChannelID:   vs.ChannelID,
		UserID:      m.Author.ID,
		RequestedAt: time.Now(),
	})
}

func (b *Bot) handleSettings(m *discordgo.MessageCreate) {
	p := b.cfg.CommandPrefix
	b.reply(m.ChannelID, fmt.Sprintf(`Settings for ParrotBot

%[1]stts : enable/disable text to speech
%[1]sstop : stop playing the current message
%[1]sclear : stop playing and cancel all queued messages
%[1]sleave : leave the voice channel
%[1]srandom : choose a random new voice
%[1]ssound <name> : play a sound clip

The next settings all relate to the voice
See: https://cloud.google.com/text-to-speech/docs/voices
-------------------
%[1]svoice : The voice name (ex: en-US-Wavenet-A)`, p))
}

// getOrCreateUser loads a user record, creating one with a random en-US
// Wavenet voice and tts disabled on first sight.
func (b *Bot) getOrCreateUser(ctx context.Context, userID string) (storage.UserRecord, error) {
	record, ok, err := b.store.GetUser(userID)
	if err != nil {
		return storage.UserRecord{}, err
	}
	if ok {
		return record, nil
	}

	voices, err := b.catalog.Voices(ctx, voicecatalog.Filter{LanguageCode: "en-US", Type: "Wavenet"})
	if err != nil {
		return storage.UserRecord{}, fmt.Errorf("failed to pick a starter voice: %w", err)
	}
	if len(voices) == 0 {
		return storage.UserRecord{}, fmt.Errorf("no en-US Wavenet voices in catalog")
	}

	picked := voices[rand.Intn(len(voices))]
	record = storage.UserRecord{
		Language:   picked.LanguageCodes[0],
		Voice:      picked.Name,
		TTSEnabled: false,
	}
	if err := b.store.SetUser(userID, record); err != nil {
		return storage.UserRecord{}, err
	}
	log.Printf("[INFO] New user %s with voice %s", userID, picked.Name)
	return record, nil
}
