package voicecatalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/keshon/parrot/internal/tts"
)

type fakeLister struct {
	voices []tts.Voice
	err    error
	calls  int
}

func (f *fakeLister) ListVoices(ctx context.Context) ([]tts.Voice, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.voices, nil
}

var catalog = []tts.Voice{
	{Name: "en-US-Wavenet-A", LanguageCodes: []string{"en-US"}},
	{Name: "en-US-Standard-B", LanguageCodes: []string{"en-US"}},
	{Name: "en-GB-Wavenet-C", LanguageCodes: []string{"en-GB"}},
	{Name: "de-DE-Wavenet-D", LanguageCodes: []string{"de-DE"}},
}

func TestVoicesRefreshesWhenEmpty(t *testing.T) {
	lister := &fakeLister{voices: catalog}
	c := New(lister, time.Hour)

	voices, err := c.Voices(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("Voices() error = %v", err)
	}
	if len(voices) != len(catalog) || lister.calls != 1 {
		t.Fatalf("voices=%d calls=%d, want %d voices from 1 call", len(voices), lister.calls, len(catalog))
	}

	// Fresh cache, no second fetch.
	if _, err := c.Voices(context.Background(), Filter{}); err != nil {
		t.Fatalf("Voices() error = %v", err)
	}
	if lister.calls != 1 {
		t.Fatalf("calls = %d, want 1 (cache still fresh)", lister.calls)
	}
}

func TestVoicesRefreshesWhenStale(t *testing.T) {
	lister := &fakeLister{voices: catalog}
	c := New(lister, time.Hour)

	if _, err := c.Voices(context.Background(), Filter{}); err != nil {
		t.Fatalf("Voices() error = %v", err)
	}
	c.fetchedAt = time.Now().Add(-2 * time.Hour)

	if _, err := c.Voices(context.Background(), Filter{}); err != nil {
		t.Fatalf("Voices() error = %v", err)
	}
	if lister.calls != 2 {
		t.Fatalf("calls = %d, want 2 (stale cache must refresh)", lister.calls)
	}
}

func TestVoicesFilters(t *testing.T) {
	c := New(&fakeLister{voices: catalog}, time.Hour)
	ctx := context.Background()

	byLang, err := c.Voices(ctx, Filter{LanguageCode: "en-US"})
	if err != nil {
		t.Fatalf("Voices() error = %v", err)
	}
	if len(byLang) != 2 {
		t.Fatalf("en-US voices = %d, want 2", len(byLang))
	}

	byType, err := c.Voices(ctx, Filter{Type: "Wavenet"})
	if err != nil {
		t.Fatalf("Voices() error = %v", err)
	}
	if len(byType) != 3 {
		t.Fatalf("Wavenet voices = %d, want 3", len(byType))
	}

	both, err := c.Voices(ctx, Filter{LanguageCode: "en-US", Type: "Wavenet"})
	if err != nil {
		t.Fatalf("Voices() error = %v", err)
	}
	if len(both) != 1 || both[0].Name != "en-US-Wavenet-A" {
		t.Fatalf("combined filter = %+v, want only en-US-Wavenet-A", both)
	}
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	lister := &fakeLister{voices: catalog}
	c := New(lister, time.Hour)
	ctx := context.Background()

	if _, err := c.Voices(ctx, Filter{}); err != nil {
		t.Fatalf("Voices() error = %v", err)
	}

	lister.err = errors.New("quota exceeded")
	c.fetchedAt = time.Now().Add(-2 * time.Hour)

	if _, err := c.Voices(ctx, Filter{}); err == nil {
		t.Fatalf("Voices() expected refresh error")
	}
	if len(c.voices) != len(catalog) {
		t.Fatalf("failed refresh replaced snapshot: %d voices left", len(c.voices))
	}

	// Provider recovers, next call refreshes again.
	lister.err = nil
	voices, err := c.Voices(ctx, Filter{})
	if err != nil {
		t.Fatalf("Voices() after recovery error = %v", err)
	}
	if len(voices) != len(catalog) {
		t.Fatalf("voices after recovery = %d, want %d", len(voices), len(catalog))
	}
}

func TestFind(t *testing.T) {
	c := New(&fakeLister{voices: catalog}, time.Hour)
	ctx := context.Background()

	v, ok, err := c.Find(ctx, "en-GB-Wavenet-C")
	if err != nil || !ok {
		t.Fatalf("Find() = %v, %v, %v", v, ok, err)
	}
	if v.LanguageCodes[0] != "en-GB" {
		t.Fatalf("found voice = %+v", v)
	}

	if _, ok, _ := c.Find(ctx, "nope"); ok {
		t.Fatalf("Find() matched a nonexistent voice")
	}
}
