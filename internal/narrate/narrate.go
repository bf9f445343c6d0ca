// Package narrate turns commit diffs into timed narration scripts.
//
// The pipeline couples three clocks: the typing animation's duration
// (computed from the diff), the narration's word count (derived from that
// duration at a fixed speaking rate), and the synthesized audio's length.
// Narrations are sized so the speech outlasts the animation it covers.
package narrate

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/commitcast/commitcast/internal/llm"
	"github.com/commitcast/commitcast/internal/timing"
	"github.com/commitcast/commitcast/model"
)

// Generator produces narrated chunks for a commit's diffs.
type Generator struct {
	Client llm.Client
	// Buffer multiplies the animation duration when sizing narrations.
	// Zero means timing.DefaultBufferFactor.
	Buffer float64
	// Pacing is slept before each narration call to stay under provider
	// rate limits. Zero disables the delay.
	Pacing time.Duration
}

// ChunksForFile segments one file's diff into semantic chunks and writes
// a duration-matched narration for each. A chunk whose narration call
// fails is dropped; the rest of the file still narrates. Chunk IDs are
// file-local here and reassigned globally by the caller.
func (g *Generator) ChunksForFile(ctx context.Context, pc model.ProjectContext, commitMessage, filename, diff string, speedMS int) []model.DiffChunk {
	hunks := parseHunks(diff)
	groups := groupHunks(ctx, g.Client, pc, commitMessage, filename, hunks)

	var chunks []model.DiffChunk
	for idx, group := range groups {
		var lines []string
		for _, hi := range group {
			lines = append(lines, hunks[hi]...)
		}

		animationSecs := timing.AnimationDuration(lines, speedMS)
		targetWords := timing.TargetWords(animationSecs, g.Buffer)
		chunkDiff := strings.Join(lines, "\n")

		if g.Pacing > 0 {
			select {
			case <-time.After(g.Pacing):
			case <-ctx.Done():
				return chunks
			}
		}

		maxTokens := targetWords * 2
		if maxTokens < 200 {
			maxTokens = 200
		}
		prompt := narrationPrompt(pc, commitMessage, filename, chunkDiff, targetWords, animationSecs)
		text, err := llm.CompleteWithRetry(ctx, g.Client, prompt, llm.Options{
			Temperature: 0.7,
			MaxTokens:   maxTokens,
		})
		if err != nil {
			log.Printf("narration for %s chunk %d failed: %v", filename, idx, err)
			continue
		}

		// The model is not trusted to hit the target: re-measure and use
		// the real word count for the provisional duration.
		actualWords := len(strings.Fields(text))

		chunks = append(chunks, model.DiffChunk{
			ChunkID:               idx,
			FilePath:              filename,
			HunkIndices:           group,
			Explanation:           text,
			EstimatedDurationSecs: animationSecs,
			AudioDurationSecs:     float64(actualWords) / timing.SpeakingRate,
		})
	}
	return chunks
}
