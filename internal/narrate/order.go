package narrate

import (
	"context"
	"encoding/json"

	"github.com/commitcast/commitcast/internal/llm"
	"github.com/commitcast/commitcast/model"
)

// OrderFiles asks the model to order a commit's files the way a developer
// would logically have written them. This is a best-effort convenience:
// any transport or parse failure returns the original order unchanged.
func OrderFiles(ctx context.Context, client llm.Client, pc model.ProjectContext, commitMessage string, files []model.FileChange) []model.FileChange {
	if len(files) <= 1 {
		return files
	}

	entries := make([]string, 0, len(files))
	for i, f := range files {
		entries = append(entries, fileEntry(i, f))
	}

	raw, err := client.Complete(ctx, orderingPrompt(pc, commitMessage, entries), llm.Options{
		Temperature: 0.2,
		MaxTokens:   128,
	})
	if err != nil {
		return files
	}

	jsonStr := extractJSONArray(raw)
	if jsonStr == "" {
		return files
	}
	var indices []int
	if err := json.Unmarshal([]byte(jsonStr), &indices); err != nil {
		return files
	}

	ordered := make([]model.FileChange, 0, len(files))
	used := make(map[int]bool, len(files))
	for _, idx := range indices {
		if idx >= 0 && idx < len(files) && !used[idx] {
			used[idx] = true
			ordered = append(ordered, files[idx])
		}
	}
	// Anything the model never mentioned keeps its original relative order.
	for i, f := range files {
		if !used[i] {
			ordered = append(ordered, f)
		}
	}
	return ordered
}
