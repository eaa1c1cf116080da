package gitdriver

import (
	"regexp"
	"strings"
	"time"

	"github.com/caseflow/git-casefile/internal/casefile"
	"github.com/caseflow/git-casefile/internal/casefileerr"
)

var commitInfoRe = regexp.MustCompile(`^- (\S+) (\S+ \S+ \S+)`)

// GetDeletedCasefileRefs implements spec.md §4.5.10: parses
// `git log -z --diff-filter=D --name-status --pretty=format:"- %H %ci"`
// as a two-state machine over NUL-separated records. partial, if
// non-empty, restricts history to paths matching `*<partial>*/*`.
func (d *Driver) GetDeletedCasefileRefs(ref, partial string) ([]casefile.DeletedRef, error) {
	args := []string{"log", "-z", "--diff-filter=D", "--name-status", `--pretty=format:- %H %ci`, ref}
	if partial != "" {
		args = append(args, "--", "*"+partial+"*/*")
	}

	records, err := d.gitNULRecords(args)
	if err != nil {
		if recoverableAbsence(err) {
			return nil, nil
		}
		return nil, err
	}

	var refs []casefile.DeletedRef
	const stateAction = 0
	const statePath = 1
	state := stateAction
	var commit string
	var committed int64

	for _, rec := range records {
		switch state {
		case stateAction:
			if rec == "" {
				continue
			}
			if strings.HasPrefix(rec, "-") {
				firstLine, _, _ := strings.Cut(rec, "\n")
				m := commitInfoRe.FindStringSubmatch(firstLine)
				if m == nil {
					return nil, casefileerr.New(casefileerr.CodeInvalidGitLogOutput, "malformed commit-info line: "+firstLine)
				}
				commit = m[1]
				t, perr := time.Parse("2006-01-02 15:04:05 -0700", m[2])
				if perr != nil {
					return nil, casefileerr.Wrap(casefileerr.CodeInvalidGitLogOutput, "malformed commit date: "+m[2], perr)
				}
				committed = t.Unix()
			}
			state = statePath
		case statePath:
			refs = append(refs, casefile.DeletedRef{Commit: commit, Committed: committed, Path: rec})
			state = stateAction
		}
	}
	return refs, nil
}
