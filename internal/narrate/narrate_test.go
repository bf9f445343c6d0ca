package narrate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/commitcast/commitcast/internal/llm"
	"github.com/commitcast/commitcast/model"
)

// fakeLLM answers each call type by recognizing its prompt.
type fakeLLM struct {
	calls     []string
	groupResp string
	orderResp string
	narration string
	failWith  error
	narrFails int
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	f.calls = append(f.calls, prompt)
	if f.failWith != nil {
		return "", f.failWith
	}
	switch {
	case strings.Contains(prompt, "DeepWiki"):
		return "A terminal tool that replays commits as typing animations.", nil
	case strings.Contains(prompt, "Group these hunks"):
		return f.groupResp, nil
	case strings.Contains(prompt, "Order these files"):
		return f.orderResp, nil
	default:
		if f.narrFails > 0 {
			f.narrFails--
			return "", errors.New("narration failed")
		}
		return f.narration, nil
	}
}

func (f *fakeLLM) callsContaining(marker string) int {
	n := 0
	for _, c := range f.calls {
		if strings.Contains(c, marker) {
			n++
		}
	}
	return n
}

var testContext = model.ProjectContext{
	RepoName:    "demo",
	Description: "A demo project for tests.",
}

const threeHunkDiff = `@@ -1,2 +1,4 @@
 package main
+import "fmt"
+import "os"
@@ -10,2 +12,3 @@
 func main() {
+	fmt.Println("hi")
 }
@@ -30,1 +33,2 @@
 // tail
+// more tail`

func TestChunksForFileGroupsAndNarrates(t *testing.T) {
	f := &fakeLLM{
		groupResp: `{"chunks": [[0, 1], [2]]}`,
		narration: "one two three four",
	}
	g := &Generator{Client: f}

	chunks := g.ChunksForFile(context.Background(), testContext, "add greeting", "main.go", threeHunkDiff, 30)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	first := chunks[0]
	if first.ChunkID != 0 || first.FilePath != "main.go" {
		t.Fatalf("unexpected first chunk: %+v", first)
	}
	if len(first.HunkIndices) != 2 || first.HunkIndices[0] != 0 || first.HunkIndices[1] != 1 {
		t.Fatalf("unexpected hunk indices: %v", first.HunkIndices)
	}
	if first.Explanation != "one two three four" {
		t.Fatalf("unexpected explanation: %q", first.Explanation)
	}
	// Four words at 2.5 words/sec.
	if first.AudioDurationSecs != 1.6 {
		t.Fatalf("expected provisional 1.6s, got %v", first.AudioDurationSecs)
	}
	if first.EstimatedDurationSecs < 5.0 {
		t.Fatalf("animation duration below floor: %v", first.EstimatedDurationSecs)
	}
	if chunks[1].ChunkID != 1 || len(chunks[1].HunkIndices) != 1 || chunks[1].HunkIndices[0] != 2 {
		t.Fatalf("unexpected second chunk: %+v", chunks[1])
	}
}

func TestChunksForFileDropsFailedNarration(t *testing.T) {
	f := &fakeLLM{
		groupResp: `{"chunks": [[0], [1], [2]]}`,
		narration: "words here",
		narrFails: 1,
	}
	g := &Generator{Client: f}

	chunks := g.ChunksForFile(context.Background(), testContext, "msg", "main.go", threeHunkDiff, 30)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 surviving chunks, got %d", len(chunks))
	}
	// The first group failed; survivors keep their group positions.
	if chunks[0].ChunkID != 1 || chunks[1].ChunkID != 2 {
		t.Fatalf("unexpected chunk ids: %d, %d", chunks[0].ChunkID, chunks[1].ChunkID)
	}
}

func TestChunksForFileSingleHunkSkipsGrouping(t *testing.T) {
	f := &fakeLLM{narration: "a b c"}
	g := &Generator{Client: f}

	diff := "@@ -1,1 +1,2 @@\n context\n+added"
	chunks := g.ChunksForFile(context.Background(), testContext, "msg", "one.go", diff, 30)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if f.callsContaining("Group these hunks") != 0 {
		t.Fatal("grouping model call should be skipped for a single hunk")
	}
	if f.callsContaining("narration") == 0 {
		t.Fatal("expected a narration call")
	}
}

func TestChunksForFileWordBudgetInPrompt(t *testing.T) {
	f := &fakeLLM{narration: "tiny"}
	g := &Generator{Client: f}

	// A trivial diff hits the 5 second floor: 5 * 2.5 * 2.0 = 25 words,
	// clamped up to the 40 word minimum.
	diff := "@@ -1,1 +1,2 @@\nctx\n+x"
	g.ChunksForFile(context.Background(), testContext, "msg", "tiny.go", diff, 30)

	if f.callsContaining("Write a 40-word narration") != 1 {
		t.Fatalf("expected a 40-word budget in the prompt, calls: %v", f.calls)
	}
}

func TestBuildProjectContext(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module demo\n"), 0o644); err != nil {
		t.Fatalf("write go.mod: %v", err)
	}

	f := &fakeLLM{}
	pc, err := BuildProjectContext(context.Background(), f, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.RepoName != filepath.Base(dir) {
		t.Fatalf("unexpected repo name: %q", pc.RepoName)
	}
	if !strings.Contains(pc.Description, "terminal tool") {
		t.Fatalf("unexpected description: %q", pc.Description)
	}
}

func TestBuildProjectContextNoKeyFiles(t *testing.T) {
	if _, err := BuildProjectContext(context.Background(), &fakeLLM{}, t.TempDir()); err == nil {
		t.Fatal("expected an error for a repo with no key files")
	}
}

func TestBuildProjectContextModelFailure(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module demo\n"), 0o644); err != nil {
		t.Fatalf("write go.mod: %v", err)
	}
	f := &fakeLLM{failWith: errors.New("api down")}
	if _, err := BuildProjectContext(context.Background(), f, dir); err == nil {
		t.Fatal("expected model failure to propagate")
	}
}
