// Package gitdriver implements every Git plumbing operation the shared-
// casefiles protocol needs: ls-tree/mktree/hash-object/commit-tree for
// building tree/commit objects out of deltas, log/blame for history and
// line-tracking, and push/update-ref for distributing state over the
// shared-casefiles ref (spec.md §4.5). It is grounded on the calling
// convention of gorewood-timbers' internal/git package (Run/RunContext
// over os/exec, exec.Error detection, NUL/field-separated log parsing),
// generalized to the subproc.Runner contract for streaming and timeouts.
package gitdriver

import (
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/caseflow/git-casefile/internal/casefile"
	"github.com/caseflow/git-casefile/internal/casefileerr"
	"github.com/caseflow/git-casefile/internal/config"
	"github.com/caseflow/git-casefile/internal/record"
	"github.com/caseflow/git-casefile/internal/subproc"
)

// Logger receives best-effort warnings from recovery paths that fall
// through to a secondary strategy (e.g. a blame lookup that failed for a
// reason other than "no commit found").
type Logger interface {
	Warn(format string, args ...any)
}

// NopLogger discards warnings.
type NopLogger struct{}

func (NopLogger) Warn(string, ...any) {}

// Driver is the Git plumbing driver. It holds no repository state beyond
// what the runner's working directory implies.
type Driver struct {
	runner subproc.Invoker
	cfg    config.Options
	log    Logger
}

// New constructs a Driver. runner must be configured for the `git`
// program (see config.Options.GitPath).
func New(runner subproc.Invoker, cfg config.Options, log Logger) *Driver {
	if log == nil {
		log = NopLogger{}
	}
	return &Driver{runner: runner, cfg: cfg, log: log}
}

// git runs `git <args>` with the given overrides, capturing stdout.
func (d *Driver) git(args []string, overrides ...func(*subproc.InvokeOptions)) (string, error) {
	opts := subproc.InvokeOptions{Args: args}
	var buf strings.Builder
	opts.Stdout = func(chunk string, _ func()) { buf.WriteString(chunk) }
	for _, o := range overrides {
		o(&opts)
	}
	_, err := d.runner.Invoke(opts)
	return buf.String(), err
}

// gitRecords runs `git <args>`, splitting decoded stdout into records via
// a record.Stream (the C1 component) with the given separator, rather
// than a one-off splitter local to GitDriver. handler may return true to stop early (e.g. once
// findCurrentLinePosition finds its match); in that case the returned
// records slice holds only what was collected before stopping.
func (d *Driver) gitRecords(args []string, sep record.Separator, handler func(rec string) (records []string, stop bool), overrides ...func(*subproc.InvokeOptions)) ([]string, error) {
	var records []string
	stopped := false
	stream, err := record.New(sep, func(rec string) bool {
		if handler != nil {
			var stop bool
			records, stop = handler(rec)
			if stop {
				stopped = true
			}
			return stop
		}
		records = append(records, rec)
		return false
	}, nil)
	if err != nil {
		return nil, err
	}

	opts := subproc.InvokeOptions{Args: args}
	opts.Stdout = func(chunk string, stop func()) {
		stream.Write([]byte(chunk))
		if stopped {
			stop()
		}
	}
	for _, o := range overrides {
		o(&opts)
	}
	_, err = d.runner.Invoke(opts)
	if !stopped {
		stream.Flush()
	}
	return records, err
}

// gitNULRecords is gitRecords specialized to NUL-separated output
// (ls-tree -z, log -z), collecting every record.
func (d *Driver) gitNULRecords(args []string, overrides ...func(*subproc.InvokeOptions)) ([]string, error) {
	var all []string
	return d.gitRecords(args, record.NewStringSeparator("\x00"), func(rec string) ([]string, bool) {
		all = append(all, rec)
		return all, false
	}, overrides...)
}

func withCwd(dir string) func(*subproc.InvokeOptions) {
	return func(o *subproc.InvokeOptions) { o.Cwd = dir }
}

func withStdin(content string) func(*subproc.InvokeOptions) {
	return func(o *subproc.InvokeOptions) {
		o.FeedStdin = func(w io.WriteCloser) {
			_, _ = io.WriteString(w, content)
			_ = w.Close()
		}
	}
}

// recoverableAbsence reports whether err is the kind of "expected
// plumbing absence" spec.md §7 says to recover from locally (a git
// subcommand exiting non-zero because a ref/path/tree does not exist
// yet) — never for infrastructure failures.
func recoverableAbsence(err error) bool {
	if err == nil {
		return false
	}
	if casefileerr.IsBug(err) {
		return false
	}
	return casefileerr.HasCode(err, casefileerr.CodeChildProcessFailure)
}

// RevParse resolves committish to a full object name. resolved is false
// (with hash "") if committish does not resolve — the caller substitutes
// whatever default applies (usually the empty tree).
func (d *Driver) RevParse(committish string) (hash string, resolved bool, err error) {
	out, err := d.git([]string{"rev-parse", committish})
	if err != nil {
		if recoverableAbsence(err) {
			return "", false, nil
		}
		return "", false, casefileerr.Wrap(casefileerr.CodeInvalidCommittish, "rev-parse "+committish, err)
	}
	return strings.TrimSpace(out), true, nil
}

// RevParseParents lists the parents of committish (via `committish^@`).
// A root commit yields an empty, non-error result.
func (d *Driver) RevParseParents(committish string) ([]string, error) {
	out, err := d.git([]string{"rev-parse", committish + "^@"})
	if err != nil {
		if recoverableAbsence(err) {
			return nil, nil
		}
		return nil, casefileerr.Wrap(casefileerr.CodeInvalidCommittish, "rev-parse "+committish+"^@", err)
	}
	return nonEmptyLines(out), nil
}

// LsTree lists the immediate children of treeish (non-recursive). Callers
// decide how to recover when treeish does not exist (§4.5.5 treats it as
// "no entries yet"; §4.5.6 drops the whole group).
func (d *Driver) LsTree(treeish string) ([]casefile.TreeEntry, error) {
	recs, err := d.gitNULRecords([]string{"ls-tree", "-z", treeish})
	if err != nil {
		return nil, err
	}
	return parseTreeEntries(recs), nil
}

// LsTreeRecursiveFullTree lists every blob under ref, full paths, exactly
// as getListOfCasefiles needs (`ls-tree -rz --full-tree`).
func (d *Driver) LsTreeRecursiveFullTree(ref string) ([]casefile.TreeEntry, error) {
	recs, err := d.gitNULRecords([]string{"ls-tree", "-rz", "--full-tree", ref})
	if err != nil {
		return nil, nil //nolint:nilerr // §4.5.2: non-zero exit returns empty, not an error
	}
	return parseTreeEntries(recs), nil
}

func parseTreeEntries(records []string) []casefile.TreeEntry {
	var entries []casefile.TreeEntry
	for _, rec := range records {
		if rec == "" {
			continue
		}
		e, ok := parseTreeEntryLine(rec)
		if ok {
			entries = append(entries, e)
		}
	}
	return entries
}

func parseTreeEntryLine(line string) (casefile.TreeEntry, bool) {
	tabIdx := strings.IndexByte(line, '\t')
	if tabIdx < 0 {
		return casefile.TreeEntry{}, false
	}
	head := line[:tabIdx]
	name := line[tabIdx+1:]
	fields := strings.SplitN(head, " ", 3)
	if len(fields) != 3 {
		return casefile.TreeEntry{}, false
	}
	return casefile.TreeEntry{Mode: fields[0], Type: fields[1], Hash: fields[2], Name: name}, true
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// Mktree builds a tree object from entries, rejecting any entry whose
// Name contains "/" and rejecting a non-empty input that degrades to the
// empty tree.
func (d *Driver) Mktree(entries []casefile.TreeEntry) (string, error) {
	for _, e := range entries {
		if strings.Contains(e.Name, "/") {
			return "", casefileerr.New(casefileerr.CodeInvalidTreeEntry, "tree entry name must not contain '/': "+e.Name)
		}
	}

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s %s %s\t%s\x00", e.Mode, e.Type, e.Hash, e.Name))
	}

	out, err := d.git([]string{"mktree", "-z"}, withStdin(sb.String()))
	if err != nil {
		return "", casefileerr.Wrap(casefileerr.CodeGitWriteFailed, "mktree", err)
	}
	hash := strings.TrimSpace(out)
	if len(entries) > 0 && (hash == "" || hash == config.EmptyTreeHash) {
		return "", casefileerr.New(casefileerr.CodeInvalidTreeResult, "mktree produced an empty result for non-empty input").
			WithFields(map[string]any{"badEntries": entries})
	}
	if hash == "" {
		return config.EmptyTreeHash, nil
	}
	return hash, nil
}

// GetHashOfCasefile computes the blob hash `git hash-object -w --stdin`
// would assign to the casefile's JSON serialization, writing the object
// into the store.
func (d *Driver) GetHashOfCasefile(cf casefile.Casefile) (string, error) {
	blob, err := cf.MarshalBlob()
	if err != nil {
		return "", casefileerr.Wrap(casefileerr.CodeGitWriteFailed, "marshaling casefile blob", err)
	}
	out, err := d.git([]string{"hash-object", "-w", "--stdin"}, withStdin(string(blob)))
	if err != nil {
		return "", casefileerr.Wrap(casefileerr.CodeGitWriteFailed, "hash-object", err)
	}
	return strings.TrimSpace(out), nil
}

// CommitCasefilesTree creates a commit for rootTree with the given
// parents and message.
func (d *Driver) CommitCasefilesTree(rootTree string, parents []string, message string) (string, error) {
	args := []string{"commit-tree", rootTree, "-m", message}
	for _, p := range parents {
		args = append(args, "-p", p)
	}
	out, err := d.git(args)
	if err != nil {
		return "", casefileerr.Wrap(casefileerr.CodeGitWriteFailed, "commit-tree", err)
	}
	return strings.TrimSpace(out), nil
}

// PushSpec is one push refspec (spec.md §4.5.8). The empty string as
// Source deletes the remote ref.
type PushSpec struct {
	Source string
	Dest   string
	Force  bool
}

// NewPushSpecFromBranch builds the shorthand form: source=str,
// dest="refs/heads/"+str, force=false.
func NewPushSpecFromBranch(branch string) PushSpec {
	return PushSpec{Source: branch, Dest: "refs/heads/" + branch}
}

// Push runs `git push <remote> [+]<source>:<dest>`.
func (d *Driver) Push(remote string, spec PushSpec) error {
	refspec := spec.Source + ":" + spec.Dest
	if spec.Force {
		refspec = "+" + refspec
	}
	_, err := d.git([]string{"push", remote, refspec})
	if err != nil {
		return casefileerr.Wrap(casefileerr.CodeGitWriteFailed, "push "+refspec+" to "+remote, err)
	}
	return nil
}

// UpdateRef sets ref to newValue, or deletes it if newValue is "".
func (d *Driver) UpdateRef(ref, newValue string) error {
	var args []string
	if newValue == "" {
		args = []string{"update-ref", "-d", ref}
	} else {
		args = []string{"update-ref", ref, newValue}
	}
	_, err := d.git(args)
	if err != nil {
		return casefileerr.Wrap(casefileerr.CodeGitWriteFailed, "update-ref "+ref, err)
	}
	return nil
}

// GetDateOfLastChange returns the commit date of the last change to path
// as of commit (`git log --pretty=%ci -n1 commit -- path`).
func (d *Driver) GetDateOfLastChange(pathArg, commit string) (time.Time, error) {
	out, err := d.git([]string{"log", "--pretty=%ci", "-n1", commit, "--", pathArg})
	if err != nil {
		return time.Time{}, err
	}
	line := strings.TrimSpace(out)
	if line == "" {
		return time.Time{}, casefileerr.New(casefileerr.CodeInvalidCommit, "no history for "+pathArg+" at "+commit)
	}
	t, err := time.Parse("2006-01-02 15:04:05 -0700", line)
	if err != nil {
		return time.Time{}, casefileerr.Wrap(casefileerr.CodeInvalidCommit, "parsing commit date: "+line, err)
	}
	return t, nil
}

// FindLatestCommitParentWithPath returns whichever parent of committish
// most recently touched path, per spec.md §4.5.9: ties go to the earlier
// parent (strict > comparison), and parents where the lookup fails are
// skipped.
func (d *Driver) FindLatestCommitParentWithPath(pathArg, committish string) (string, error) {
	parents, err := d.RevParseParents(committish)
	if err != nil {
		return "", err
	}

	best := ""
	var bestDate time.Time
	for _, p := range parents {
		date, err := d.GetDateOfLastChange(pathArg, p)
		if err != nil {
			d.log.Warn("skipping parent %s: %v", p, err)
			continue
		}
		if date.After(bestDate) {
			bestDate = date
			best = p
		}
	}
	if best == "" {
		return "", casefileerr.New(casefileerr.CodeInvalidCommit, "no parent of "+committish+" touched "+pathArg)
	}
	return best, nil
}

// TestIfCommitKnownToRemote reports whether any of remote's remote-
// tracking branches contain commit (`git branch -r --contains <commit>
// <remote>/*`).
func (d *Driver) TestIfCommitKnownToRemote(remote, commit string) (bool, error) {
	out, err := d.git([]string{"branch", "-r", "--contains", commit, remote + "/*"})
	if err != nil {
		if recoverableAbsence(err) {
			return false, nil
		}
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

func basename(p string) string { return path.Base(filepath.ToSlash(p)) }
func dirname(p string) string  { return filepath.Dir(p) }
