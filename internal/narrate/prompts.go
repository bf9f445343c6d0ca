package narrate

import (
	"fmt"
	"strings"

	"github.com/commitcast/commitcast/model"
)

const contextPromptTmpl = `You are analyzing a code repository using the DeepWiki principle. Based on the key files below, provide a comprehensive technical description (300-500 words) covering:
1. What this project does and its core purpose
2. Main architecture and tech stack
3. Key components and how they interact
4. Important patterns or design decisions

IMPORTANT: Write for TEXT-TO-SPEECH pronunciation. Use natural spoken language:
- Say 'Node' not 'Node.js' or 'Node dot JS'
- Say 'TypeScript' not 'TS'
- Say 'React' not 'React.js'
- Avoid symbols, abbreviations, file extensions when possible
- Write how developers actually speak about code

This context will be used in voice narration, so be specific and technical but naturally speakable.

Repository files:
%s

Provide ONLY the description, no preamble or meta-commentary.`

func contextPrompt(fileBlocks []string) string {
	return fmt.Sprintf(contextPromptTmpl, strings.Join(fileBlocks, "\n\n---\n\n"))
}

const orderingPromptTmpl = `You are ordering files for a code walkthrough narration.

PROJECT: %s - %s
COMMIT: "%s"

FILES:
%s

Order these files by how a developer would logically write them:
- Config/setup files first
- Type definitions and data models next
- Core logic and business rules
- Integration points (API calls, database)
- UI/presentation last
- New files before modifications
- Dependencies before dependents

Respond with ONLY a JSON array of the file indices. Example: [2, 0, 3, 1]`

func orderingPrompt(pc model.ProjectContext, commitMessage string, entries []string) string {
	return fmt.Sprintf(orderingPromptTmpl,
		pc.RepoName, model.Clip(pc.Description, 200), commitMessage,
		strings.Join(entries, "\n"))
}

func fileEntry(i int, f model.FileChange) string {
	return fmt.Sprintf("%d: %s (%s, %d diff lines)", i, f.Path, f.Status.Word(), lineCount(f.Diff))
}

const groupingPromptTmpl = `You are grouping code changes for a narrated walkthrough.

PROJECT: %s - %s
COMMIT: "%s"
FILE: %s

HUNKS:
%s

Group these hunks into 1-4 semantic chunks. Each chunk should cover a coherent change (e.g. imports, a new function, config updates). Keep related hunks together.

Respond with ONLY JSON: {"chunks": [[0, 1], [2], [3, 4]]}`

func groupingPrompt(pc model.ProjectContext, commitMessage, filename string, summaries []string) string {
	return fmt.Sprintf(groupingPromptTmpl,
		pc.RepoName, model.Clip(pc.Description, 300), commitMessage, filename,
		strings.Join(summaries, "\n"))
}

const narrationPromptTmpl = `You are narrating live code changes for a developer teaching stream.

PROJECT: %s - %s
COMMIT: "%s"
FILE: %s

CODE CHANGES:
%s

Write a %d-word narration explaining these changes.
This narration will be spoken by text-to-speech while the code is being typed on screen.
The typing animation for this section lasts %.0f seconds, so the narration MUST fill that time.

RULES:
- Explain WHAT changed, WHY it matters for this project, and HOW it works
- Be semantically rich: describe the purpose and design decisions, not just surface changes
- OPTIMIZE FOR SPEECH: Say 'Node' not 'Node.js', 'React' not 'React.js', 'TypeScript' not 'TS'
- No symbols, no file extensions, no code syntax. Write how developers actually talk.

Respond with ONLY the narration text.`

func narrationPrompt(pc model.ProjectContext, commitMessage, filename, chunkDiff string, targetWords int, animationSecs float64) string {
	return fmt.Sprintf(narrationPromptTmpl,
		pc.RepoName, pc.Description, commitMessage, filename, chunkDiff,
		targetWords, animationSecs)
}

// lineCount counts lines the way a diff viewer would: no phantom final
// line for a trailing newline, zero for empty text.
func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return len(strings.Split(strings.TrimSuffix(s, "\n"), "\n"))
}
