package commitcast

import (
	"log"

	"github.com/commitcast/commitcast/internal/audio"
	"github.com/commitcast/commitcast/internal/cache"
	"github.com/commitcast/commitcast/internal/config"
	"github.com/commitcast/commitcast/internal/llm"
	"github.com/commitcast/commitcast/internal/tts"
)

// applyDefaults fills in missing fields on the builder with sensible
// defaults.
func applyDefaults(b *Builder) error {
	if b.config == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		b.config = cfg
	}
	if b.repoPath == "" {
		b.repoPath = "."
	}

	// Keys may still be missing when the caller skipped the setup flow.
	config.FinalizeVoiceover(&b.config.Voiceover)
	vc := b.config.Voiceover

	if b.llm == nil && vc.OpenAIAPIKey != "" {
		b.llm = llm.NewOpenAI(vc.OpenAIAPIKey, vc.NarrationModel)
	}

	if b.synth == nil && vc.Enabled && vc.APIKey != "" {
		s, err := tts.New(vc)
		if err != nil {
			return err
		}
		b.synth = s
	}

	// The cache is a convenience, not a requirement. Narration still
	// works when the database cannot be opened.
	if b.cache == nil && !b.noCache {
		c, err := cache.Open(b.config.DatabasePath)
		if err != nil {
			log.Printf("narration cache unavailable: %v", err)
		} else {
			b.cache = c
		}
	}

	// The speaker claims the audio device lazily, so constructing it here
	// is safe even on machines with no sound output.
	if b.sink == nil && vc.Enabled {
		b.sink = audio.NewSpeaker()
	}

	return nil
}
