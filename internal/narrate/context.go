package narrate

import (
	"context"
	"fmt"

	"github.com/commitcast/commitcast/internal/gitio"
	"github.com/commitcast/commitcast/internal/llm"
	"github.com/commitcast/commitcast/model"
)

// BuildProjectContext samples well-known repository files and asks the
// model for a speakable project description. The description is required
// by every later prompt, so failure here is an error rather than a
// fallback.
func BuildProjectContext(ctx context.Context, client llm.Client, repoPath string) (model.ProjectContext, error) {
	pc := model.ProjectContext{RepoName: gitio.RepoName(repoPath)}

	blocks := gitio.SampleKeyFiles(repoPath)
	if len(blocks) == 0 {
		return pc, fmt.Errorf("no key files found for context extraction")
	}

	description, err := llm.CompleteWithRetry(ctx, client, contextPrompt(blocks), llm.Options{
		Temperature: 0.5,
		MaxTokens:   2048,
	})
	if err != nil {
		return pc, fmt.Errorf("describing project: %w", err)
	}

	pc.Description = description
	return pc, nil
}
