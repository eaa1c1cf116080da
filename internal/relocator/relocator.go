// Package relocator implements BookmarkRelocator (spec.md §4.6): given a
// bookmark's peg, it recovers the bookmark's current (file, line, col),
// combining blame-based pinpointing with a diff-hunk fallback search; the
// inverse direction computes a fresh peg for a live line.
package relocator

import (
	"os"
	"strconv"
	"strings"

	"github.com/caseflow/git-casefile/internal/casefile"
	"github.com/caseflow/git-casefile/internal/casefileerr"
	"github.com/caseflow/git-casefile/internal/diffdriver"
	"github.com/caseflow/git-casefile/internal/gitdriver"
)

// untrackedWindowSize bounds the no-peg / final-fallback spiral search
// (spec.md §4.6: UNTRACKED_WINDOW_SIZE = 15).
const untrackedWindowSize = 15

// Logger receives warnings for relocation strategies that failed for a
// reason other than "not found" before falling through to the next
// strategy (spec.md §7).
type Logger interface {
	Warn(format string, args ...any)
}

// NopLogger discards warnings.
type NopLogger struct{}

func (NopLogger) Warn(string, ...any) {}

// ContentSource resolves the live editor buffer content for a file, when
// available (e.g. an open, possibly unsaved, editor tab). Returning ""
// with ok=false means "use the on-disk content instead".
type ContentSource interface {
	LiveContent(file string) (content string, ok bool)
}

// DiskContentSource always reports no live content, forcing on-disk
// reads throughout.
type DiskContentSource struct{}

func (DiskContentSource) LiveContent(string) (string, bool) { return "", false }

// Relocator is the BookmarkRelocator.
type Relocator struct {
	git     *gitdriver.Driver
	diff    *diffdriver.Driver
	content ContentSource
	log     Logger
}

// New constructs a Relocator.
func New(git *gitdriver.Driver, diff *diffdriver.Driver, content ContentSource, log Logger) *Relocator {
	if content == nil {
		content = DiskContentSource{}
	}
	if log == nil {
		log = NopLogger{}
	}
	return &Relocator{git: git, diff: diff, content: content, log: log}
}

// Query carries the parameters of CurrentLocation.
type Query struct {
	File     string
	Line     int
	MarkText string
	Peg      *casefile.Peg
}

func (r *Relocator) readCurrent(file string) (content string, live bool, err error) {
	if c, ok := r.content.LiveContent(file); ok {
		return c, true, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", false, casefileerr.Wrap(casefileerr.CodeInvalidCommit, "reading "+file, err)
	}
	return string(data), false, nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func rowHasText(lines []string, line int, markText string) bool {
	if line < 1 || line > len(lines) {
		return false
	}
	return strings.Contains(lines[line-1], markText)
}

func colOf(lines []string, line int, markText string) int {
	idx := strings.Index(lines[line-1], markText)
	return idx + 1
}

// CurrentLocation implements spec.md §4.6's currentLocation: a
// deterministic, short-circuiting search that tries the peg-based
// strategies first (when a peg is present) and otherwise spirals out
// from the last-known line.
func (r *Relocator) CurrentLocation(q Query) (casefile.Location, error) {
	content, live, err := r.readCurrent(q.File)
	if err != nil {
		return casefile.Location{}, err
	}
	lines := splitLines(content)

	if q.Peg != nil {
		if loc, ok := r.tryBlamePinpoint(q, lines, content, live); ok {
			return loc, nil
		}
		if loc, ok := r.tryDiffFallback(q, lines, content); ok {
			return loc, nil
		}
	}

	if loc, ok := spiralSearch(q.File, lines, q.Line, q.MarkText); ok {
		return loc, nil
	}
	return casefile.Location{}, casefileerr.New(casefileerr.CodeMarkNotFound, "mark text not found near line "+strconv.Itoa(q.Line))
}

// tryBlamePinpoint is strategy 1: blame-based pinpointing.
func (r *Relocator) tryBlamePinpoint(q Query, lines []string, content string, live bool) (casefile.Location, bool) {
	var liveContent *string
	if live {
		liveContent = &content
	}
	line, err := r.git.FindCurrentLinePosition(q.File, *q.Peg, liveContent)
	if err != nil {
		if !isExpectedRelocationError(err) {
			r.log.Warn("blame pinpoint failed for %s: %v", q.File, err)
		}
		return casefile.Location{}, false
	}
	if !rowHasText(lines, line, q.MarkText) {
		r.log.Warn("blame pinpointed %s:%d but mark text is not there", q.File, line)
		return casefile.Location{}, false
	}
	return casefile.Location{File: q.File, Line: line, Col: colOf(lines, line, q.MarkText)}, true
}

// tryDiffFallback is strategy 2: compute the current-line range implied
// by base-to-current hunks, then radiate outward from its Prime line.
func (r *Relocator) tryDiffFallback(q Query, lines []string, content string) (casefile.Location, bool) {
	rng, err := r.computeCurrentLineRange(q.File, *q.Peg, content)
	if err != nil {
		if !isExpectedRelocationError(err) {
			r.log.Warn("diff fallback failed for %s: %v", q.File, err)
		}
		return casefile.Location{}, false
	}

	if rowHasText(lines, rng.Prime, q.MarkText) {
		return casefile.Location{File: q.File, Line: rng.Prime, Col: colOf(lines, rng.Prime, q.MarkText)}, true
	}

	maxRadius := rng.Prime - rng.Start
	if end := rng.End - rng.Prime; end > maxRadius {
		maxRadius = end
	}
	for i := 1; i <= maxRadius; i++ {
		lo := rng.Prime - i
		if lo >= rng.Start && lo < rng.Prime && rowHasText(lines, lo, q.MarkText) {
			return casefile.Location{File: q.File, Line: lo, Col: colOf(lines, lo, q.MarkText)}, true
		}
		hi := rng.Prime + i
		if hi > rng.Prime && hi < rng.End && rowHasText(lines, hi, q.MarkText) {
			return casefile.Location{File: q.File, Line: hi, Col: colOf(lines, hi, q.MarkText)}, true
		}
	}
	return casefile.Location{}, false
}

// spiralSearch is the no-peg / final fallback: try line, then radiate
// ±1…±untrackedWindowSize, positive offset checked first each step.
func spiralSearch(file string, lines []string, line int, markText string) (casefile.Location, bool) {
	if rowHasText(lines, line, markText) {
		return casefile.Location{File: file, Line: line, Col: colOf(lines, line, markText)}, true
	}
	for i := 1; i <= untrackedWindowSize; i++ {
		if rowHasText(lines, line+i, markText) {
			return casefile.Location{File: file, Line: line + i, Col: colOf(lines, line+i, markText)}, true
		}
		if rowHasText(lines, line-i, markText) {
			return casefile.Location{File: file, Line: line - i, Col: colOf(lines, line-i, markText)}, true
		}
	}
	return casefile.Location{}, false
}

// isExpectedRelocationError reports whether err is one of the relocator's
// expected "not found" outcomes, which are suppressed silently between
// strategies rather than logged as warnings (spec.md §7).
func isExpectedRelocationError(err error) bool {
	return casefileerr.HasCode(err, casefileerr.CodeMarkNotFound) || casefileerr.HasCode(err, casefileerr.CodeLineNotFound)
}
