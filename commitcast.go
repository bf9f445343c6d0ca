// Package commitcast turns git commits into narrated diff playback: a
// language model explains each group of hunks in a narration sized to the
// typing animation's predicted duration, a text-to-speech provider voices
// it, and a trigger-based player keeps audio off the caller's thread.
//
// Use the Builder to compose a Narrator:
//
//	n, err := commitcast.NewBuilder().Build()
//	commit, err := n.LoadCommit(ctx, "HEAD")
//	chunks := n.Generate(ctx, commit)
//
// Or customize components:
//
//	n, err := commitcast.NewBuilder().
//	    WithConfig(cfg).
//	    WithSynthesizer(mySynth).
//	    WithSink(mySink).
//	    Build()
package commitcast

import (
	"context"

	"github.com/commitcast/commitcast/internal/audio"
	"github.com/commitcast/commitcast/internal/cache"
	"github.com/commitcast/commitcast/internal/config"
	"github.com/commitcast/commitcast/internal/gitio"
	"github.com/commitcast/commitcast/internal/llm"
	"github.com/commitcast/commitcast/internal/orchestrator"
	"github.com/commitcast/commitcast/internal/tts"
	"github.com/commitcast/commitcast/model"
)

// Builder constructs a Narrator.
type Builder struct {
	config   *config.Config
	repoPath string
	llm      llm.Client
	synth    tts.Synthesizer
	cache    *cache.Cache
	sink     audio.Sink
	noCache  bool
}

// NewBuilder creates a new Builder with sensible defaults.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithConfig sets the loaded configuration.
func (b *Builder) WithConfig(cfg *config.Config) *Builder {
	b.config = cfg
	return b
}

// WithRepo sets the git repository the narrator reads commits from
// (default: current directory).
func (b *Builder) WithRepo(path string) *Builder {
	b.repoPath = path
	return b
}

// WithLLM sets the language-model client used for context, ordering,
// grouping and narration.
func (b *Builder) WithLLM(client llm.Client) *Builder {
	b.llm = client
	return b
}

// WithSynthesizer sets the text-to-speech backend.
func (b *Builder) WithSynthesizer(s tts.Synthesizer) *Builder {
	b.synth = s
	return b
}

// WithCache sets the narration cache.
func (b *Builder) WithCache(c *cache.Cache) *Builder {
	b.cache = c
	return b
}

// WithoutCache disables the narration cache entirely.
func (b *Builder) WithoutCache() *Builder {
	b.noCache = true
	return b
}

// WithSink sets the audio output. Tests pass a fake; by default playback
// goes to the system speaker.
func (b *Builder) WithSink(s audio.Sink) *Builder {
	b.sink = s
	return b
}

// Build creates the Narrator. Missing components are filled with
// defaults; voiceover stays silently disabled when its configuration is
// incomplete.
func (b *Builder) Build() (*Narrator, error) {
	if err := applyDefaults(b); err != nil {
		return nil, err
	}

	store := audio.NewChunkStore()
	gen := orchestrator.New(b.config.Voiceover, store, orchestrator.Deps{
		LLM:      b.llm,
		Synth:    b.synth,
		Cache:    b.cache,
		RepoPath: b.repoPath,
	})

	return &Narrator{
		config:   b.config,
		repoPath: b.repoPath,
		gen:      gen,
		store:    store,
		player:   audio.NewPlayer(store, b.sink),
		cache:    b.cache,
	}, nil
}

// Narrator generates narration chunks for commits and plays them back on
// demand. Generation runs off the caller's thread via Start; playback is
// trigger-based and non-blocking throughout.
type Narrator struct {
	config   *config.Config
	repoPath string
	gen      *orchestrator.Generator
	store    *audio.ChunkStore
	player   *audio.Player
	cache    *cache.Cache
}

// Config returns the effective configuration.
func (n *Narrator) Config() *config.Config { return n.config }

// Enabled reports whether voiceover generation is fully configured.
func (n *Narrator) Enabled() bool {
	vc := n.config.Voiceover
	return vc.Enabled && vc.APIKey != "" && vc.UseLLMExplanations && vc.OpenAIAPIKey != ""
}

// LoadCommit reads one commit from the repository and prepares it for
// generation at the configured typing speed. An empty rev means HEAD.
func (n *Narrator) LoadCommit(ctx context.Context, rev string) (orchestrator.Commit, error) {
	c, err := gitio.LoadCommit(ctx, n.repoPath, rev)
	if err != nil {
		return orchestrator.Commit{}, err
	}
	return orchestrator.Commit{
		Hash:    c.Hash,
		Author:  c.Author,
		Message: c.Message,
		Files:   c.Files,
		SpeedMS: n.config.SpeedMS,
	}, nil
}

// Generate runs the narration pipeline for one commit and blocks until
// it finishes. Chunks land in the store as they complete.
func (n *Narrator) Generate(ctx context.Context, commit orchestrator.Commit) []model.DiffChunk {
	return n.gen.Generate(ctx, commit)
}

// Start runs Generate on a background goroutine and returns a Job to
// poll, wait on, or cancel.
func (n *Narrator) Start(ctx context.Context, commit orchestrator.Commit) *orchestrator.Job {
	return n.gen.Start(ctx, commit)
}

// Progress returns the pipeline's latest status line and completion
// ratio.
func (n *Narrator) Progress() (string, float32) {
	return n.gen.Progress()
}

// Trigger starts playback of one chunk without blocking.
func (n *Narrator) Trigger(chunkID int) {
	n.player.Trigger(chunkID)
}

// PollFinished returns the ids of chunks whose audio has finished since
// the last poll.
func (n *Narrator) PollFinished() []int {
	return n.player.PollFinished()
}

// Pause pauses audio output.
func (n *Narrator) Pause() { n.player.Pause() }

// Resume resumes audio output.
func (n *Narrator) Resume() { n.player.Resume() }

// ChunksFor returns the stored chunks for one file, ordered by chunk id.
func (n *Narrator) ChunksFor(path string) []model.DiffChunk {
	return n.store.ForFile(path)
}

// Store returns the underlying chunk store for direct access.
func (n *Narrator) Store() *audio.ChunkStore { return n.store }

// Close releases the narration cache.
func (n *Narrator) Close() error {
	if n.cache == nil {
		return nil
	}
	return n.cache.Close()
}
