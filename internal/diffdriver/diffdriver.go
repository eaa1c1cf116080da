// Package diffdriver invokes the external `diff` binary in unified,
// zero-context mode and parses its hunk headers into Change ranges
// (spec.md §4.4).
package diffdriver

import (
	"os"
	"regexp"
	"strconv"

	"github.com/caseflow/git-casefile/internal/casefileerr"
	"github.com/caseflow/git-casefile/internal/janitor"
	"github.com/caseflow/git-casefile/internal/subproc"
)

// Change is a contiguous differing range between two text versions, with
// 1-based half-open [start, end) ranges on both sides (spec.md §3).
type Change struct {
	BaseStart    int
	BaseEnd      int
	CurrentStart int
	CurrentEnd   int
}

// Content is one side of a diff: either a path to content already on
// disk, or content held in memory that must be materialized to a
// temporary file for the duration of the call.
type Content struct {
	Path      string
	Immediate *string
}

// FromPath builds a Content referring to on-disk content.
func FromPath(path string) Content { return Content{Path: path} }

// FromImmediate builds a Content from in-memory text.
func FromImmediate(text string) Content { return Content{Immediate: &text} }

func (c Content) describe() string {
	if c.Immediate != nil {
		return "<in-memory content>"
	}
	return c.Path
}

// Driver wraps the `diff` binary.
type Driver struct {
	runner subproc.Invoker
}

// New constructs a Driver over the given Invoker (typically a
// *subproc.Runner configured for the `diff` program).
func New(runner subproc.Invoker) *Driver {
	return &Driver{runner: runner}
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// GetHunks runs `diff -U 0 base current` and parses every hunk header
// line into a Change.
func (d *Driver) GetHunks(base, current Content) ([]Change, error) {
	j := janitor.New()
	defer func() { _ = j.CleanUpSync() }()

	basePath, err := d.materialize(base, j)
	if err != nil {
		return nil, err
	}
	currentPath, err := d.materialize(current, j)
	if err != nil {
		return nil, err
	}

	var lines []string
	var pending []byte

	res, err := d.runner.Invoke(subproc.InvokeOptions{
		Args: []string{"-U", "0", basePath, currentPath},
		Stdout: func(chunk string, _ func()) {
			pending = append(pending, chunk...)
		},
		Exit: func(code int) (any, error) {
			if code != 0 && code != 1 {
				return nil, casefileerr.New(casefileerr.CodeDiffFailure, "diff failed comparing base and current").
					WithFields(map[string]any{"base": base.describe(), "current": current.describe(), "exitCode": code})
			}
			return nil, nil
		},
	})
	if err != nil {
		return nil, err
	}
	_ = res
	lines = splitLines(string(pending))

	var changes []Change
	for _, line := range lines {
		m := hunkHeaderRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		changes = append(changes, parseHunk(m))
	}
	return changes, nil
}

func parseHunk(m []string) Change {
	s := atoi(m[1])
	l := atoiOr(m[2], 1)
	hasL := m[2] != ""
	t := atoi(m[3])
	mLen := atoiOr(m[4], 1)
	hasM := m[4] != ""

	var baseStart, baseEnd int
	if hasL && atoi(m[2]) == 0 {
		baseStart, baseEnd = s+1, s+1
	} else {
		baseStart = s
		baseEnd = s + l
	}

	var curStart, curEnd int
	if hasM && atoi(m[4]) == 0 {
		curStart, curEnd = t+1, t+1
	} else {
		curStart = t
		curEnd = t + mLen
	}

	return Change{BaseStart: baseStart, BaseEnd: baseEnd, CurrentStart: curStart, CurrentEnd: curEnd}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	return atoi(s)
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func (d *Driver) materialize(c Content, j *janitor.Janitor) (string, error) {
	if c.Path != "" {
		return c.Path, nil
	}
	if c.Immediate == nil {
		return "", casefileerr.New(casefileerr.CodeUnknownContentType, "diff content must set Path or Immediate")
	}
	f, err := os.CreateTemp("", "git-casefile-diff-*")
	if err != nil {
		return "", casefileerr.Wrap(casefileerr.CodeDiffFailure, "creating temp file for in-memory diff content", err)
	}
	name := f.Name()
	j.Defer(func() error { return os.Remove(name) })

	if _, err := f.WriteString(*c.Immediate); err != nil {
		_ = f.Close()
		return "", casefileerr.Wrap(casefileerr.CodeDiffFailure, "writing temp file for in-memory diff content", err)
	}
	if err := f.Close(); err != nil {
		return "", casefileerr.Wrap(casefileerr.CodeDiffFailure, "closing temp file for in-memory diff content", err)
	}
	return name, nil
}
