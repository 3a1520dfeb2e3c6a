// Package voicecatalog caches the synthesis voice catalog so the bot does
// not hit the provider on every voice command.
package voicecatalog

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/keshon/parrot/internal/tts"
)

// DefaultTTL is how long a fetched catalog stays fresh.
const DefaultTTL = 7 * 24 * time.Hour

// Filter narrows a catalog lookup. Both fields are optional; when both are
// set a voice must satisfy both.
type Filter struct {
	LanguageCode string // exact match against one of the voice's language codes
	Type         string // substring of the voice name, e.g. "Wavenet"
}

// Lister is the provider side of the catalog, satisfied by tts.Synthesizer.
type Lister interface {
	ListVoices(ctx context.Context) ([]tts.Voice, error)
}

// Cache is a TTL cache over the provider's voice list. The snapshot is
// replaced wholesale on refresh, never patched.
type Cache struct {
	mu     sync.Mutex
	lister Lister
	ttl    time.Duration

	voices    []tts.Voice
	fetchedAt time.Time
}

func New(lister Lister, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{lister: lister, ttl: ttl}
}

// Voices returns the catalog entries matching f, refreshing the cache first
// if it is empty or stale. A failed refresh leaves the previous snapshot in
// place and is returned to the caller.
func (c *Cache) Voices(ctx context.Context, f Filter) ([]tts.Voice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.voices) == 0 || time.Since(c.fetchedAt) > c.ttl {
		fresh, err := c.lister.ListVoices(ctx)
		if err != nil {
			return nil, fmt.Errorf("voice catalog refresh failed: %w", err)
		}
		c.voices = fresh
		c.fetchedAt = time.Now()
		log.Printf("[INFO] Voice catalog refreshed | voices=%d", len(fresh))
	}

	return filterVoices(c.voices, f), nil
}

// Find returns the catalog entry with the exact given name.
func (c *Cache) Find(ctx context.Context, name string) (tts.Voice, bool, error) {
	voices, err := c.Voices(ctx, Filter{})
	if err != nil {
		return tts.Voice{}, false, err
	}
	for _, v := range voices {
		if v.Name == name {
			return v, true, nil
		}
	}
	return tts.Voice{}, false, nil
}

func filterVoices(voices []tts.Voice, f Filter) []tts.Voice {
	out := make([]tts.Voice, 0, len(voices))
	for _, v := range voices {
		if f.LanguageCode != "" && !hasLanguage(v, f.LanguageCode) {
			continue
		}
		if f.Type != "" && !strings.Contains(v.Name, f.Type) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func hasLanguage(v tts.Voice, code string) bool {
	for _, c := range v.LanguageCodes {
		if c == code {
			return true
		}
	}
	return false
}
