// Package timing models the typing animation's pacing so narration can be
// sized to fill it. The multipliers mirror the renderer's timing rules and
// are a compatibility contract: changing them desynchronizes every
// narration the tool produces.
package timing

import "strings"

// Animation timing multipliers, in units of the per-character speed.
const (
	insertLinePause = 6.7
	deleteLinePause = 10.0
	hunkPause       = 50.0
	cursorMovePause = 0.5
	// cursorMoveSteps is the average number of cursor steps to reach a new
	// hunk location.
	cursorMoveSteps = 5.0
)

// MinDurationSecs is the floor on any predicted animation duration. Even a
// trivial diff gets a speakable narration window.
const MinDurationSecs = 5.0

// SpeakingRate is the assumed synthesized speech rate in words per second
// (150 words per minute).
const SpeakingRate = 2.5

// DefaultBufferFactor oversizes narration relative to the animation so the
// voice never finishes before the typing does.
const DefaultBufferFactor = 2.0

// Narration word count bounds.
const (
	MinWords = 40
	MaxWords = 400
)

// AnimationDuration predicts, in seconds, how long the typing animation for
// the given unified-diff lines runs at speedMS milliseconds per character.
//
// Lines before the first hunk header (file headers, index lines) cost
// nothing. Each header costs a cursor move, plus a hunk pause for every
// header after the first. An added line costs one speed unit per character
// after the "+" prefix plus the line-insertion pause; a deleted line costs
// only the deletion pause; context lines are free.
//
// The function is pure: identical inputs always produce the identical
// duration, which downstream word sizing depends on.
func AnimationDuration(lines []string, speedMS int) float64 {
	speed := float64(speedMS)
	var totalMS float64
	inHunk := false
	hunkCount := 0

	for _, line := range lines {
		if strings.HasPrefix(line, "@@") {
			if hunkCount > 0 {
				totalMS += hunkPause * speed
			}
			totalMS += cursorMovePause * speed * cursorMoveSteps
			hunkCount++
			inHunk = true
			continue
		}

		if !inHunk {
			continue
		}

		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			chars := len(line) - 1
			totalMS += float64(chars)*speed + insertLinePause*speed
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			totalMS += deleteLinePause * speed
		}
	}

	secs := totalMS / 1000.0
	if secs < MinDurationSecs {
		return MinDurationSecs
	}
	return secs
}

// TargetWords converts an animation duration into the narration word count
// requested from the language model: duration times speaking rate times the
// buffer factor, clamped to [MinWords, MaxWords]. A buffer of zero or less
// falls back to DefaultBufferFactor.
func TargetWords(secs, buffer float64) int {
	if buffer <= 0 {
		buffer = DefaultBufferFactor
	}
	words := int(secs * SpeakingRate * buffer)
	if words < MinWords {
		return MinWords
	}
	if words > MaxWords {
		return MaxWords
	}
	return words
}
