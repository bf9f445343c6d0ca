// Package orchestrator runs the end-to-end narration pipeline for one
// commit: project context, file ordering, per-file segmentation and
// narration, then per-chunk speech synthesis. Errors inside the pipeline
// are contained at chunk or file granularity; the external contract is
// "return whatever chunks were successfully produced".
package orchestrator

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/commitcast/commitcast/internal/audio"
	"github.com/commitcast/commitcast/internal/cache"
	"github.com/commitcast/commitcast/internal/llm"
	"github.com/commitcast/commitcast/internal/narrate"
	"github.com/commitcast/commitcast/internal/tts"
	"github.com/commitcast/commitcast/model"
)

// maxFiles caps how many changed files narrate per commit.
const maxFiles = 5

// Commit is the unit of generation: one commit's message and changed
// files, plus the typing speed the animation will run at.
type Commit struct {
	Hash    string
	Author  string
	Message string
	Files   []model.FileChange
	SpeedMS int
}

// Deps are the collaborators the generator drives. Cache is optional;
// LLM and Synth must be set when narration is enabled.
type Deps struct {
	LLM      llm.Client
	Synth    tts.Synthesizer
	Cache    *cache.Cache
	RepoPath string
}

// Generator produces a commit's narration chunks and records them in the
// shared chunk store for the player to pick up.
type Generator struct {
	cfg   model.VoiceoverConfig
	deps  Deps
	store *audio.ChunkStore
	narr  narrate.Generator

	filePacing  time.Duration
	synthPacing time.Duration

	progress progressCell
}

// New builds a generator around the shared chunk store.
func New(cfg model.VoiceoverConfig, store *audio.ChunkStore, deps Deps) *Generator {
	return &Generator{
		cfg:   cfg,
		deps:  deps,
		store: store,
		narr: narrate.Generator{
			Client: deps.LLM,
			Buffer: cfg.BufferFactor,
			Pacing: 300 * time.Millisecond,
		},
		filePacing:  time.Second,
		synthPacing: 300 * time.Millisecond,
	}
}

// Progress returns the latest pipeline status line and completion ratio.
func (g *Generator) Progress() (string, float32) {
	return g.progress.get()
}

// Generate runs the whole pipeline synchronously. Chunks are stored as
// they complete so playback can begin before the commit finishes. The
// previous commit's chunks are cleared first: stale audio must never
// play over the wrong diff.
func (g *Generator) Generate(ctx context.Context, commit Commit) []model.DiffChunk {
	if !g.cfg.Enabled || g.cfg.APIKey == "" {
		return nil
	}
	// Narration quality depends entirely on the language model; without
	// it, no narration is better than a mis-contextualized one.
	if !g.cfg.UseLLMExplanations || g.cfg.OpenAIAPIKey == "" {
		return nil
	}

	g.store.Clear()

	g.progress.set("analyzing project", 0.05)
	pc, err := narrate.BuildProjectContext(ctx, g.deps.LLM, g.deps.RepoPath)
	if err != nil {
		log.Printf("project context failed, skipping narration: %v", err)
		g.progress.set("narration unavailable", 0)
		return nil
	}

	important := keepInteresting(commit.Files)

	g.progress.set("ordering files", 0.1)
	ordered := narrate.OrderFiles(ctx, g.deps.LLM, pc, commit.Message, important)

	var all []model.DiffChunk
	globalID := 0
	for i, f := range ordered {
		if i > 0 {
			if err := sleepCtx(ctx, g.filePacing); err != nil {
				break
			}
		}
		g.progress.set("narrating "+f.Path, 0.1+0.85*float32(i)/float32(len(ordered)))

		fileChunks := g.narr.ChunksForFile(ctx, pc, commit.Message, f.Path, f.Diff, commit.SpeedMS)
		for _, chunk := range fileChunks {
			if err := sleepCtx(ctx, g.synthPacing); err != nil {
				return all
			}
			voiced, ok := g.voice(ctx, chunk)
			if !ok {
				continue
			}
			voiced.ChunkID = globalID
			globalID++
			g.store.InsertAll(voiced)
			all = append(all, voiced)
		}
	}

	g.progress.set("narration ready", 1.0)
	g.recordRun(pc.RepoName, commit, all)
	return all
}

// voice attaches synthesized audio to a chunk, consulting the cache
// first. A failed synthesis drops the chunk; a failed decode only falls
// back to the word-count duration estimate.
func (g *Generator) voice(ctx context.Context, chunk model.DiffChunk) (model.DiffChunk, bool) {
	key := cache.Key(string(g.cfg.Provider), g.cfg.VoiceID, g.cfg.ModelID, chunk.Explanation)
	if g.deps.Cache != nil {
		if entry, err := g.deps.Cache.GetAudio(key); err == nil {
			chunk.AudioData = entry.Audio
			chunk.HasAudio = true
			chunk.AudioDurationSecs = entry.DurationSecs
			return chunk, true
		}
	}

	data, err := g.deps.Synth.Synthesize(ctx, chunk.Explanation)
	if err != nil {
		log.Printf("synthesis for %s failed, dropping chunk: %v", chunk.FilePath, err)
		return chunk, false
	}

	chunk.AudioData = data
	chunk.HasAudio = true
	if secs, err := audio.Duration(data); err == nil {
		chunk.AudioDurationSecs = secs
	}

	if g.deps.Cache != nil {
		err := g.deps.Cache.PutAudio(&cache.Entry{
			Key:          key,
			Provider:     string(g.cfg.Provider),
			VoiceID:      g.cfg.VoiceID,
			ModelID:      g.cfg.ModelID,
			TextWords:    len(strings.Fields(chunk.Explanation)),
			Audio:        data,
			DurationSecs: chunk.AudioDurationSecs,
		})
		if err != nil {
			log.Printf("caching audio failed: %v", err)
		}
	}
	return chunk, true
}

func (g *Generator) recordRun(repoName string, commit Commit, chunks []model.DiffChunk) {
	if g.deps.Cache == nil {
		return
	}
	var audioSecs float64
	for _, c := range chunks {
		audioSecs += c.AudioDurationSecs
	}
	err := g.deps.Cache.AddRun(&cache.Run{
		ID:         uuid.New().String()[:8],
		Repo:       repoName,
		CommitHash: commit.Hash,
		Message:    commit.Message,
		ChunkCount: len(chunks),
		AudioSecs:  audioSecs,
	})
	if err != nil {
		log.Printf("recording run failed: %v", err)
	}
}

// keepInteresting filters out lockfiles and data blobs nobody wants
// narrated, then caps the list.
func keepInteresting(files []model.FileChange) []model.FileChange {
	kept := make([]model.FileChange, 0, len(files))
	for _, f := range files {
		if boringFile(f.Path) {
			continue
		}
		kept = append(kept, f)
		if len(kept) == maxFiles {
			break
		}
	}
	return kept
}

func boringFile(path string) bool {
	return strings.Contains(path, "package-lock.json") ||
		strings.Contains(path, "yarn.lock") ||
		strings.Contains(path, "pnpm-lock.yaml") ||
		strings.HasSuffix(path, ".lock") ||
		strings.HasSuffix(path, ".json")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type progressCell struct {
	mu     sync.Mutex
	status string
	ratio  float32
}

func (p *progressCell) set(status string, ratio float32) {
	p.mu.Lock()
	p.status = status
	p.ratio = ratio
	p.mu.Unlock()
}

func (p *progressCell) get() (string, float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status, p.ratio
}
