package gitdriver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/caseflow/git-casefile/internal/casefile"
	"github.com/caseflow/git-casefile/internal/casefileerr"
	"github.com/caseflow/git-casefile/internal/record"
	"github.com/caseflow/git-casefile/internal/subproc"
)

var allZeroShaRe = regexp.MustCompile(`^0{40}$|^0{64}$`)
var blamePorcelainFirstLineRe = regexp.MustCompile(`^(\S+) (\d+) (\d+)`)
var blameIncrementalLineRe = regexp.MustCompile(`^(\S+?) (\d+) (\d+) (\d+)`)

// LineIntroductionOptions selects what lineIntroduction blames against.
// Precedence: an explicit Commit beats LiveContent beats the on-disk
// version (spec.md §4.5.11).
type LineIntroductionOptions struct {
	Commit      string
	LiveContent *string
}

// LineIntroduction runs `git blame -L line,line --porcelain` to recover
// the commit (and that commit's line number) that introduced line.
func (d *Driver) LineIntroduction(file string, line int, opts LineIntroductionOptions) (casefile.Peg, error) {
	args := []string{"blame", "-L", fmt.Sprintf("%d,%d", line, line), "--porcelain"}

	var stdinOverride func(*subproc.InvokeOptions)
	switch {
	case opts.Commit != "":
		args = append(args, opts.Commit)
	case opts.LiveContent != nil:
		args = append(args, "--contents", "-")
		stdinOverride = withStdin(*opts.LiveContent)
	}
	args = append(args, "--", basename(file))

	overrides := []func(*subproc.InvokeOptions){withCwd(dirname(file))}
	if stdinOverride != nil {
		overrides = append(overrides, stdinOverride)
	}

	out, err := d.git(args, overrides...)
	if err != nil {
		return casefile.Peg{}, casefileerr.Wrap(casefileerr.CodeNoCommitFound, "blame on "+file+":"+strconv.Itoa(line), err)
	}

	firstLine, _, _ := strings.Cut(strings.TrimLeft(out, "\n"), "\n")
	m := blamePorcelainFirstLineRe.FindStringSubmatch(firstLine)
	if m == nil {
		return casefile.Peg{}, casefileerr.New(casefileerr.CodeNoCommitFound, "could not parse blame output for "+file+":"+strconv.Itoa(line))
	}
	sha := m[1]
	if allZeroShaRe.MatchString(sha) {
		return casefile.Peg{}, casefileerr.New(casefileerr.CodeNoCommitFound, "line has no originating commit (working tree only)")
	}
	sourceLine, _ := strconv.Atoi(m[2])
	return casefile.Peg{Commit: sha, Line: sourceLine}, nil
}

// FindCurrentLinePosition runs `git blame --incremental` to map peg back
// onto the file's current content, terminating the stream on first
// match (spec.md §4.5.11).
func (d *Driver) FindCurrentLinePosition(file string, peg casefile.Peg, content *string) (int, error) {
	args := []string{"blame", "--incremental"}
	var stdinSet func(*subproc.InvokeOptions)
	if content != nil {
		args = append(args, "--contents", "-")
		stdinSet = withStdin(*content)
	}
	args = append(args, "--", basename(file))

	overrides := []func(*subproc.InvokeOptions){withCwd(dirname(file))}
	if stdinSet != nil {
		overrides = append(overrides, stdinSet)
	}

	found := -1
	_, err := d.gitRecords(args, record.NewStringSeparator("\n"), func(rec string) ([]string, bool) {
		m := blameIncrementalLineRe.FindStringSubmatch(rec)
		if m == nil {
			return nil, false
		}
		if m[1] != peg.Commit {
			return nil, false
		}
		sourceLine, _ := strconv.Atoi(m[2])
		resultLine, _ := strconv.Atoi(m[3])
		span, _ := strconv.Atoi(m[4])
		if peg.Line < sourceLine || peg.Line >= sourceLine+span {
			return nil, false
		}
		found = resultLine + (peg.Line - sourceLine)
		return nil, true
	}, overrides...)
	if err != nil {
		return 0, err
	}
	if found < 0 {
		return 0, casefileerr.New(casefileerr.CodeLineNotFound, "no blame group for "+peg.Commit+" covers line "+strconv.Itoa(peg.Line))
	}
	return found, nil
}
