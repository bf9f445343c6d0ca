// Package tts synthesizes narration text into playable audio bytes.
package tts

import (
	"context"
	"fmt"

	"github.com/commitcast/commitcast/model"
)

// Synthesizer converts narration text into encoded audio. Failures
// surface as errors; the caller decides whether to skip or abort.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// New returns the Synthesizer for the configured provider.
func New(cfg model.VoiceoverConfig) (Synthesizer, error) {
	switch cfg.Provider {
	case model.ProviderElevenLabs:
		return NewElevenLabs(cfg.APIKey, cfg.VoiceID, cfg.ModelID), nil
	case model.ProviderInworld:
		return NewInworld(cfg.APIKey, cfg.VoiceID, cfg.ModelID), nil
	default:
		return nil, fmt.Errorf("unknown voiceover provider %q", cfg.Provider)
	}
}
