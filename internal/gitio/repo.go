package gitio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/commitcast/commitcast/model"
)

// keyFiles are the well-known repository files sampled for project context,
// each capped at a character budget.
var keyFiles = []struct {
	path     string
	maxChars int
}{
	{"Cargo.toml", 5000},
	{"package.json", 5000},
	{"go.mod", 5000},
	{"src/main.rs", 8000},
	{"src/lib.rs", 8000},
	{"src/index.ts", 8000},
	{"main.py", 8000},
	{"README.md", 3000},
}

// SampleKeyFiles reads whichever key files exist under repoPath and returns
// one "File: <path>\n<content>" block per file, ready to join into a
// context prompt. Missing files are skipped silently.
func SampleKeyFiles(repoPath string) []string {
	var blocks []string
	for _, kf := range keyFiles {
		content, err := os.ReadFile(filepath.Join(repoPath, kf.path))
		if err != nil {
			continue
		}
		preview := model.Clip(string(content), kf.maxChars)
		blocks = append(blocks, fmt.Sprintf("File: %s\n%s", kf.path, preview))
	}
	return blocks
}

// RepoName derives a display name for the repository: the final segment of
// the first remote URL in .git/config, else the repository directory name,
// else "repository".
func RepoName(repoPath string) string {
	if name := nameFromGitConfig(filepath.Join(repoPath, ".git", "config")); name != "" {
		return name
	}
	if abs, err := filepath.Abs(repoPath); err == nil {
		if base := filepath.Base(abs); base != "" && base != "." && base != string(filepath.Separator) {
			return base
		}
	}
	return "repository"
}

func nameFromGitConfig(configPath string) string {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.Contains(line, "url = ") {
			continue
		}
		parts := strings.SplitN(line, "url = ", 2)
		if len(parts) != 2 {
			continue
		}
		url := strings.TrimSuffix(strings.TrimSpace(parts[1]), ".git")
		if idx := strings.LastIndexAny(url, "/:"); idx >= 0 {
			url = url[idx+1:]
		}
		if url != "" {
			return url
		}
	}
	return ""
}

// Commit is one loaded commit: metadata plus parsed per-file changes.
type Commit struct {
	Hash    string
	Author  string
	Message string
	Files   []model.FileChange
}

// LoadCommit reads one commit from the repository at repoPath using the
// git binary. An empty rev means HEAD.
func LoadCommit(ctx context.Context, repoPath, rev string) (Commit, error) {
	if rev == "" {
		rev = "HEAD"
	}

	meta, err := gitOutput(ctx, repoPath, "show", "-s", "--format=%h%n%an%n%B", rev)
	if err != nil {
		return Commit{}, fmt.Errorf("reading commit: %w", err)
	}
	var c Commit
	parts := strings.SplitN(meta, "\n", 3)
	if len(parts) > 0 {
		c.Hash = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		c.Author = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		c.Message = strings.TrimSpace(parts[2])
	}

	patch, err := gitOutput(ctx, repoPath, "show", "--format=", "--patch", "--no-color", "--no-ext-diff", rev)
	if err != nil {
		return Commit{}, fmt.Errorf("reading commit diff: %w", err)
	}

	for _, f := range ParsePatch(patch) {
		c.Files = append(c.Files, model.FileChange{
			Path:   f.Path,
			Diff:   BuildDiffText(f.Hunks),
			Status: f.Status,
		})
	}
	return c, nil
}

func gitOutput(ctx context.Context, repoPath string, args ...string) (string, error) {
	full := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
