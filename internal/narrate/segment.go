package narrate

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/commitcast/commitcast/internal/llm"
	"github.com/commitcast/commitcast/model"
)

// parseHunks splits diff text into hunks, each keeping its @@ header as
// the first line. Anything before the first header is dropped.
func parseHunks(diff string) [][]string {
	var hunks [][]string
	var current []string
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "@@") {
			if len(current) > 0 {
				hunks = append(hunks, current)
			}
			current = []string{line}
		} else if len(current) > 0 {
			current = append(current, line)
		}
	}
	if len(current) > 0 {
		hunks = append(hunks, current)
	}
	return hunks
}

// hunkSummaries builds the compact per-hunk descriptions shown to the
// grouping model: header, change counts, and up to three changed lines.
func hunkSummaries(hunks [][]string) []string {
	summaries := make([]string, 0, len(hunks))
	for i, hunk := range hunks {
		header := hunk[0]

		var adds, dels int
		for _, l := range hunk {
			if strings.HasPrefix(l, "+") && !strings.HasPrefix(l, "+++") {
				adds++
			} else if strings.HasPrefix(l, "-") && !strings.HasPrefix(l, "---") {
				dels++
			}
		}

		var preview []string
		for _, l := range hunk[1:] {
			if strings.HasPrefix(l, "+") || strings.HasPrefix(l, "-") {
				preview = append(preview, l)
				if len(preview) == 3 {
					break
				}
			}
		}

		summaries = append(summaries, fmt.Sprintf("Hunk %d: %s — %d additions, %d deletions\n  Preview: %s",
			i, header, adds, dels, strings.Join(preview, " | ")))
	}
	return summaries
}

// groupHunks asks the model to bundle hunks into semantic chunks. Every
// failure mode degrades to a playable grouping rather than an error: a
// commit must still narrate something.
func groupHunks(ctx context.Context, client llm.Client, pc model.ProjectContext, commitMessage, filename string, hunks [][]string) [][]int {
	if len(hunks) <= 1 {
		return [][]int{sequence(len(hunks))}
	}

	prompt := groupingPrompt(pc, commitMessage, filename, hunkSummaries(hunks))
	raw, err := client.Complete(ctx, prompt, llm.Options{Temperature: 0.3, MaxTokens: 256})
	if err != nil {
		return [][]int{sequence(len(hunks))}
	}
	return parseGroups(raw, len(hunks))
}

// parseGroups validates the model's {"chunks": [[...]]} response against
// the real hunk count. Out-of-range and already-claimed indices are
// dropped, empty groups vanish, and unclaimed hunks are appended as a
// final catch-all group.
func parseGroups(raw string, n int) [][]int {
	jsonStr := extractJSONObject(raw)
	var parsed map[string]any
	if jsonStr == "" || json.Unmarshal([]byte(jsonStr), &parsed) != nil {
		// All hunks in one chunk.
		return [][]int{sequence(n)}
	}

	chunksVal, ok := parsed["chunks"].([]any)
	if !ok {
		// One chunk per hunk.
		groups := make([][]int, n)
		for i := range groups {
			groups[i] = []int{i}
		}
		return groups
	}

	used := make(map[int]bool, n)
	var groups [][]int
	for _, groupVal := range chunksVal {
		indices, ok := groupVal.([]any)
		if !ok {
			continue
		}
		var valid []int
		for _, v := range indices {
			f, ok := v.(float64)
			if !ok || f != math.Trunc(f) || f < 0 {
				continue
			}
			idx := int(f)
			if idx >= n || used[idx] {
				continue
			}
			used[idx] = true
			valid = append(valid, idx)
		}
		if len(valid) > 0 {
			groups = append(groups, valid)
		}
	}

	var missed []int
	for i := 0; i < n; i++ {
		if !used[i] {
			missed = append(missed, i)
		}
	}
	if len(missed) > 0 {
		groups = append(groups, missed)
	}
	return groups
}

func sequence(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
