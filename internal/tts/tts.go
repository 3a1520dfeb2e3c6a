package tts

import (
	"context"
	"errors"
)

// Voice is one entry of the synthesis voice catalog.
type Voice struct {
	Name          string   `json:"name"`
	LanguageCodes []string `json:"languageCodes"`
}

// ErrSynthesis marks a failed or malformed synthesis result.
var ErrSynthesis = errors.New("tts: synthesis failed")

// Synthesizer converts text to encoded audio and exposes the provider's
// voice catalog.
type Synthesizer interface {
	// Synthesize returns the spoken text as MP3 bytes.
	Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error)

	// ListVoices returns the full voice catalog.
	ListVoices(ctx context.Context) ([]Voice, error)
}
