// Package voice plays playback requests into Discord voice channels. It
// implements the transport side of the playback scheduler: every started
// attempt reports its outcome exactly once through the done callback.
package voice

import (
	"fmt"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/parrot/internal/playback"
)

type Transport struct {
	dg    *discordgo.Session
	mu    sync.Mutex
	conns map[string]*discordgo.VoiceConnection
}

func NewTransport(dg *discordgo.Session) *Transport {
	return &Transport{
		dg:    dg,
		conns: make(map[string]*discordgo.VoiceConnection),
	}
}

// handle cancels one in-flight playback by closing its stop channel.
type handle struct {
	once sync.Once
	stop chan struct{}
}

func (h *handle) Cancel() {
	h.once.Do(func() { close(h.stop) })
}

func (h *handle) cancelled() bool {
	select {
	case <-h.stop:
		return true
	default:
		return false
	}
}

// Play joins the request's voice channel, decodes its audio through ffmpeg
// and streams opus frames until the clip ends or the handle is cancelled.
// done is invoked exactly once from the playback goroutine.
func (t *Transport) Play(req playback.Request, done func(playback.Outcome)) (playback.Handle, error) {
	vc, err := t.join(req.GuildID, req.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}

	stream, cleanup, err := openStream(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}

	h := &handle{stop: make(chan struct{})}

	go func() {
		defer cleanup()

		streamErr := streamToDiscord(stream, h.stop, vc)

		switch {
		case h.cancelled():
			done(playback.OutcomeCancelled)
		case streamErr != nil:
			log.Printf("[ERR] [%s] Stream error for request %s: %v", req.GuildID, req.ID, streamErr)
			done(playback.OutcomeFailed)
		default:
			done(playback.OutcomeDone)
		}
	}()

	return h, nil
}

// Disconnect drops the guild's voice connection. Safe to call when there is
// none.
func (t *Transport) Disconnect(guildID string) {
	t.mu.Lock()
	vc := t.conns[guildID]
	delete(t.conns, guildID)
	t.mu.Unlock()

	if vc == nil {
		return
	}
	if err := vc.Disconnect(); err != nil {
		log.Printf("[WARN] [%s] Voice disconnect error: %v", guildID, err)
	} else {
		log.Printf("[INFO] [%s] Left voice channel", guildID)
	}
}

// join reuses the existing connection when it already points at the wanted
// channel, otherwise (re)joins.
func (t *Transport) join(guildID, channelID string) (*discordgo.VoiceConnection, error) {
	if channelID == "" {
		return nil, fmt.Errorf("voice channel ID is not set")
	}

	t.mu.Lock()
	vc := t.conns[guildID]
	t.mu.Unlock()

	if vc != nil && vc.ChannelID == channelID {
		return vc, nil
	}

	vc, err := t.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] [%s] Joined voice channel %s", guildID, channelID)

	t.mu.Lock()
	t.conns[guildID] = vc
	t.mu.Unlock()
	return vc, nil
}
