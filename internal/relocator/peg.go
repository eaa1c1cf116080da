package relocator

import (
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/caseflow/git-casefile/internal/casefile"
	"github.com/caseflow/git-casefile/internal/diffdriver"
	"github.com/caseflow/git-casefile/internal/gitdriver"
)

// LineRange is computeCurrentLineRange's result: the current-side range
// a base-side line maps into, plus its single best guess (Prime).
type LineRange struct {
	Start int
	Prime int
	End   int
}

// baseContext resolves everything a hunk-walk needs to cross the
// base/current boundary for file at commit: the base blob (read
// cwd-relative, since the caller only has a filesystem path) and a
// resolved commit sha for the peg the caller will mint.
func (r *Relocator) baseContext(file, commit string) (sha string, baseBlob []byte, err error) {
	dir := dirnameOf(file)
	name := basenameOf(file)

	g := new(errgroup.Group)
	g.Go(func() error {
		s, _, e := r.git.RevParse(commit)
		sha = s
		return e
	})
	g.Go(func() error {
		b, e := r.git.GetBlobContentRelative(commit, dir, name)
		baseBlob = b
		return e
	})
	if err := g.Wait(); err != nil {
		return "", nil, err
	}
	return sha, baseBlob, nil
}

// ComputeLinePeg implements spec.md §4.6's computeLinePeg: it first tries
// a direct blame lookup, and only falls back to diffing base against
// current content when blame cannot attribute the line (e.g. a local,
// uncommitted edit). Degrades to {Line: currentLine} with no commit if
// any of the fallback's reads fail.
func (r *Relocator) ComputeLinePeg(file string, currentLine int, commit string) casefile.Peg {
	content, live, readErr := r.readCurrent(file)
	var liveContent *string
	if live {
		liveContent = &content
	}
	if peg, err := r.git.LineIntroduction(file, currentLine, gitdriver.LineIntroductionOptions{
		Commit:      commit,
		LiveContent: liveContent,
	}); err == nil {
		return peg
	}
	if readErr != nil {
		return casefile.Peg{Line: currentLine}
	}

	resolveAt := commit
	if resolveAt == "" {
		resolveAt = "HEAD"
	}
	sha, baseBlob, err := r.baseContext(file, resolveAt)
	if err != nil {
		return casefile.Peg{Line: currentLine}
	}

	hunks, err := r.diff.GetHunks(diffdriver.FromImmediate(string(baseBlob)), diffdriver.FromImmediate(content))
	if err != nil {
		return casefile.Peg{Line: currentLine}
	}

	currentOffset := 0
	for _, h := range hunks {
		if currentLine < h.CurrentStart {
			return casefile.Peg{Line: currentLine - currentOffset, Commit: sha}
		}
		if currentLine < h.CurrentEnd {
			span := h.CurrentEnd - h.CurrentStart
			baseSpan := h.BaseEnd - h.BaseStart
			baseLine := h.BaseStart
			if span > 0 {
				baseLine += (currentLine - h.CurrentStart) * baseSpan / span
			}
			return casefile.Peg{Line: baseLine, Commit: sha}
		}
		currentOffset = h.CurrentEnd - h.BaseEnd
	}
	return casefile.Peg{Line: currentLine - currentOffset, Commit: sha}
}

// computeCurrentLineRange implements spec.md §4.6's
// computeCurrentLineRange: the mirror-image walk of ComputeLinePeg,
// mapping a base-side peg back onto a range of current-side candidates.
func (r *Relocator) computeCurrentLineRange(file string, peg casefile.Peg, currentContent string) (LineRange, error) {
	dir := dirnameOf(file)
	name := basenameOf(file)
	baseBlob, err := r.git.GetBlobContentRelative(peg.Commit, dir, name)
	if err != nil {
		return LineRange{}, err
	}

	hunks, err := r.diff.GetHunks(diffdriver.FromImmediate(string(baseBlob)), diffdriver.FromImmediate(currentContent))
	if err != nil {
		return LineRange{}, err
	}

	currentOffset := 0
	for _, h := range hunks {
		if peg.Line < h.BaseStart {
			start := peg.Line + currentOffset
			return LineRange{Start: start, Prime: start, End: start + 1}, nil
		}
		if peg.Line < h.BaseEnd {
			span := h.BaseEnd - h.BaseStart
			curSpan := h.CurrentEnd - h.CurrentStart
			prime := h.CurrentStart
			if span > 0 {
				prime += (peg.Line - h.BaseStart) * curSpan / span
			}
			return LineRange{Start: h.CurrentStart, Prime: prime, End: h.CurrentEnd}, nil
		}
		currentOffset = h.CurrentEnd - h.BaseEnd
	}
	start := peg.Line + currentOffset
	return LineRange{Start: start, Prime: start, End: start + 1}, nil
}

func dirnameOf(p string) string  { return filepath.Dir(p) }
func basenameOf(p string) string { return filepath.Base(p) }
