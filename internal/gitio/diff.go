// Package gitio loads commit file changes from a local repository and
// converts them into the unified-diff text the narration pipeline consumes.
package gitio

import (
	"strings"

	"github.com/commitcast/commitcast/model"
)

// LineKind classifies one line of a hunk.
type LineKind int

const (
	LineContext LineKind = iota
	LineAdded
	LineDeleted
)

// Line is a single diff line with its prefix stripped.
type Line struct {
	Kind    LineKind
	Content string
}

// Hunk is a contiguous block of a unified diff: the "@@ -a,b +c,d @@"
// header and the lines under it.
type Hunk struct {
	Header string
	Lines  []Line
}

// File is one changed file parsed out of a commit's patch.
type File struct {
	Path   string
	Status model.FileStatus
	Hunks  []Hunk
}

// BuildDiffText reconstructs unified-diff text from parsed hunks: each
// header line followed by its "+"/"-"/" " prefixed lines. This is the
// wire format every downstream component (segmenter, duration model)
// operates on.
func BuildDiffText(hunks []Hunk) string {
	var b strings.Builder
	for _, h := range hunks {
		b.WriteString(h.Header)
		b.WriteByte('\n')
		for _, line := range h.Lines {
			switch line.Kind {
			case LineAdded:
				b.WriteByte('+')
			case LineDeleted:
				b.WriteByte('-')
			default:
				b.WriteByte(' ')
			}
			b.WriteString(line.Content)
			b.WriteByte('\n')
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// ParsePatch splits `git show --patch` output into per-file changes. Files
// with no hunks (binary or mode-only changes) are kept with an empty hunk
// list.
func ParsePatch(patch string) []File {
	var files []File
	var cur *File
	var hunk *Hunk

	flush := func() {
		if cur == nil {
			return
		}
		if hunk != nil {
			cur.Hunks = append(cur.Hunks, *hunk)
			hunk = nil
		}
		files = append(files, *cur)
		cur = nil
	}

	for _, raw := range strings.Split(strings.TrimSuffix(patch, "\n"), "\n") {
		if strings.HasPrefix(raw, "diff --git ") {
			flush()
			cur = &File{Status: model.StatusModified}
			continue
		}
		if cur == nil {
			continue
		}

		if strings.HasPrefix(raw, "@@") {
			if hunk != nil {
				cur.Hunks = append(cur.Hunks, *hunk)
			}
			hunk = &Hunk{Header: raw}
			continue
		}

		// Inside a hunk every line carries a prefix, so content must be
		// classified before the header checks below. A deleted line whose
		// content begins with "--" would otherwise look like a file header.
		if hunk != nil {
			switch {
			case strings.HasPrefix(raw, "+"):
				hunk.Lines = append(hunk.Lines, Line{Kind: LineAdded, Content: raw[1:]})
			case strings.HasPrefix(raw, "-"):
				hunk.Lines = append(hunk.Lines, Line{Kind: LineDeleted, Content: raw[1:]})
			case strings.HasPrefix(raw, " "):
				hunk.Lines = append(hunk.Lines, Line{Kind: LineContext, Content: raw[1:]})
			case raw == "":
				hunk.Lines = append(hunk.Lines, Line{Kind: LineContext, Content: ""})
			}
			// "\ No newline at end of file" markers are dropped.
			continue
		}

		// Header region between "diff --git" and the first hunk.
		switch {
		case strings.HasPrefix(raw, "new file mode"):
			cur.Status = model.StatusAdded
		case strings.HasPrefix(raw, "deleted file mode"):
			cur.Status = model.StatusDeleted
		case strings.HasPrefix(raw, "rename from "):
			cur.Status = model.StatusRenamed
		case strings.HasPrefix(raw, "copy from "):
			cur.Status = model.StatusCopied
		case strings.HasPrefix(raw, "--- "):
			if cur.Path == "" {
				cur.Path = stripPathPrefix(raw[4:], "a/")
			}
		case strings.HasPrefix(raw, "+++ "):
			if p := stripPathPrefix(raw[4:], "b/"); p != "" {
				cur.Path = p
			}
		}
	}
	flush()

	return files
}

// stripPathPrefix turns "a/src/main.go" into "src/main.go" and maps
// /dev/null (added or deleted side of the pair) to "".
func stripPathPrefix(p, prefix string) string {
	p = strings.TrimSpace(p)
	if p == "/dev/null" {
		return ""
	}
	return strings.TrimPrefix(p, prefix)
}
