package discord

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/keshon/parrot/internal/config"
	"github.com/keshon/parrot/internal/playback"
	"github.com/keshon/parrot/internal/sound"
	"github.com/keshon/parrot/internal/storage"
	"github.com/keshon/parrot/internal/tts"
	"github.com/keshon/parrot/internal/voice"
	"github.com/keshon/parrot/internal/voicecatalog"
)

// Bot is the Discord front of the text-to-speech pipeline: it turns chat
// messages and voice-state events into scheduler operations.
type Bot struct {
	dg        *discordgo.Session
	cfg       *config.Config
	store     *storage.Storage
	synth     tts.Synthesizer
	catalog   *voicecatalog.Cache
	sounds    *sound.Resolver
	scheduler *playback.Scheduler
	transport *voice.Transport

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// StartBot runs the Discord bot until ctx is cancelled.
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage, synth tts.Synthesizer, catalog *voicecatalog.Cache, sounds *sound.Resolver) error {
	b := &Bot{
		cfg:      cfg,
		store:    store,
		synth:    synth,
		catalog:  catalog,
		sounds:   sounds,
		limiters: make(map[string]*rate.Limiter),
	}
	if err := b.run(ctx, cfg.DiscordToken); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

// run starts the Discord session and the playback scheduler loop.
func (b *Bot) run(ctx context.Context, token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	b.dg = dg
	b.transport = voice.NewTransport(dg)
	b.scheduler = playback.NewScheduler(b.transport, b)

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onVoiceStateUpdate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	go b.scheduler.Run(ctx)

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsMessageContent
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}
	log.Printf("[INFO] ✅ Logged in as %v, serving %d guild(s)", botInfo.Username, len(r.Guilds))
}

// onVoiceStateUpdate re-evaluates presence whenever anyone joins, leaves or
// moves between voice channels.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.GuildID == "" {
		return
	}
	b.scheduler.NotifyPresence(v.GuildID)
}

// FindUserVoiceState finds the voice state of a user.
func (b *Bot) FindUserVoiceState(guildID, userID string) (*discordgo.VoiceState, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving guild: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs, nil
		}
	}
	return nil, fmt.Errorf("user not in any voice channel")
}

// limiter returns the per-guild synthesis rate limiter.
func (b *Bot) limiter(guildID string) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	if l, ok := b.limiters[guildID]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(1), 3)
	b.limiters[guildID] = l
	return l
}

func (b *Bot) reply(channelID, text string) {
	if _, err := b.dg.ChannelMessageSend(channelID, text); err != nil {
		log.Printf("[WARN] Failed to send message to channel %s: %v", channelID, err)
	}
}
