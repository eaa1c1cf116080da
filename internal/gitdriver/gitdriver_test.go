package gitdriver

import (
	"reflect"
	"strings"
	"testing"

	"github.com/caseflow/git-casefile/internal/casefile"
	"github.com/caseflow/git-casefile/internal/casefileerr"
	"github.com/caseflow/git-casefile/internal/config"
	"github.com/caseflow/git-casefile/internal/subproc"
)

type fakeResponse struct {
	stdout   string
	exitCode int
}

// fakeInvoker dispatches canned responses keyed by the joined Args,
// mirroring diffdriver_test.go's fakeInvoker but supporting a sequence
// of distinct git subcommands per test, the way a real GitDriver
// operation issues several in a row.
type fakeInvoker struct {
	responses map[string]fakeResponse
	calls     []subproc.InvokeOptions
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{responses: map[string]fakeResponse{}}
}

func (f *fakeInvoker) on(args []string, stdout string) {
	f.responses[strings.Join(args, " ")] = fakeResponse{stdout: stdout}
}

func (f *fakeInvoker) onFail(args []string, exitCode int) {
	f.responses[strings.Join(args, " ")] = fakeResponse{exitCode: exitCode}
}

func (f *fakeInvoker) Invoke(opts subproc.InvokeOptions) (any, error) {
	f.calls = append(f.calls, opts)
	resp := f.responses[strings.Join(opts.Args, " ")]

	if opts.Stdout != nil {
		opts.Stdout(resp.stdout, func() {})
	}
	if opts.Exit != nil {
		return opts.Exit(resp.exitCode)
	}
	if resp.exitCode != 0 {
		return nil, casefileerr.New(casefileerr.CodeChildProcessFailure, "fake non-zero exit").
			WithFields(map[string]any{"exitCode": resp.exitCode, "args": opts.Args})
	}
	if opts.MakeResult != nil {
		return opts.MakeResult()
	}
	return opts.Result, nil
}

func testDriver(f *fakeInvoker) *Driver {
	return New(f, config.Defaults(), nil)
}

func TestGetListOfCasefilesGroupsAdjacentRecords(t *testing.T) {
	f := newFakeInvoker()
	f.on([]string{"ls-tree", "-rz", "--full-tree", config.SharedCasefilesRef},
		"100644 blob h1\ta casefile/22218950-aaaa\x00100644 blob h2\ta casefile/ed421d07-bbbb\x00")
	d := testDriver(f)

	groups, err := d.GetListOfCasefiles(config.SharedCasefilesRef)
	if err != nil {
		t.Fatalf("GetListOfCasefiles() error = %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1: %v", len(groups), groups)
	}
	if groups[0].Name != "a casefile" {
		t.Errorf("Name = %q, want %q", groups[0].Name, "a casefile")
	}
	if !reflect.DeepEqual(groups[0].Instances, []string{"22218950-aaaa", "ed421d07-bbbb"}) {
		t.Errorf("Instances = %v", groups[0].Instances)
	}
}

func TestGetListOfCasefilesNonAdjacentDuplicatesStaySeparate(t *testing.T) {
	f := newFakeInvoker()
	f.on([]string{"ls-tree", "-rz", "--full-tree", config.SharedCasefilesRef},
		"100644 blob h1\tg/i1\x00100644 blob h2\tother/j\x00100644 blob h3\tg/i2\x00")
	d := testDriver(f)

	groups, err := d.GetListOfCasefiles(config.SharedCasefilesRef)
	if err != nil {
		t.Fatalf("GetListOfCasefiles() error = %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("len(groups) = %d, want 3: %v", len(groups), groups)
	}
	if groups[0].Name != "g" || groups[1].Name != "other" || groups[2].Name != "g" {
		t.Errorf("group names = %v", []string{groups[0].Name, groups[1].Name, groups[2].Name})
	}
}

func TestGetDeletedCasefileRefsTwoStateParser(t *testing.T) {
	f := newFakeInvoker()
	stream := "- C1 2021-01-02 15:04:05 +0000\nD\x00p1\x00\x00" +
		"- C2 2021-02-03 10:00:00 +0000\nD\x00p2\x00D\x00p3\x00\x00"
	f.on([]string{"log", "-z", "--diff-filter=D", "--name-status", "--pretty=format:- %H %ci", config.SharedCasefilesRef}, stream)
	d := testDriver(f)

	refs, err := d.GetDeletedCasefileRefs(config.SharedCasefilesRef, "")
	if err != nil {
		t.Fatalf("GetDeletedCasefileRefs() error = %v", err)
	}
	if len(refs) != 3 {
		t.Fatalf("len(refs) = %d, want 3: %v", len(refs), refs)
	}
	want := []struct{ commit, path string }{{"C1", "p1"}, {"C2", "p2"}, {"C2", "p3"}}
	for i, w := range want {
		if refs[i].Commit != w.commit || refs[i].Path != w.path {
			t.Errorf("refs[%d] = {%q, %q}, want {%q, %q}", i, refs[i].Commit, refs[i].Path, w.commit, w.path)
		}
	}
}

func TestGetDeletedCasefileRefsMalformedCommitInfo(t *testing.T) {
	f := newFakeInvoker()
	f.on([]string{"log", "-z", "--diff-filter=D", "--name-status", "--pretty=format:- %H %ci", config.SharedCasefilesRef}, "- onlyonefield\x00p1\x00")
	d := testDriver(f)

	_, err := d.GetDeletedCasefileRefs(config.SharedCasefilesRef, "")
	if err == nil {
		t.Fatal("GetDeletedCasefileRefs() expected error, got nil")
	}
	if !casefileerr.HasCode(err, casefileerr.CodeInvalidGitLogOutput) {
		t.Errorf("error should carry CodeInvalidGitLogOutput, got %v", err)
	}
}

func TestMktreeRejectsSlashInEntryName(t *testing.T) {
	d := testDriver(newFakeInvoker())
	_, err := d.Mktree([]casefile.TreeEntry{{Mode: "100644", Type: "blob", Hash: "h", Name: "a/b"}})
	if err == nil {
		t.Fatal("Mktree() expected error, got nil")
	}
	if !casefileerr.HasCode(err, casefileerr.CodeInvalidTreeEntry) {
		t.Errorf("error should carry CodeInvalidTreeEntry, got %v", err)
	}
}

func TestMktreeRejectsEmptyResultForNonEmptyInput(t *testing.T) {
	f := newFakeInvoker()
	f.on([]string{"mktree", "-z"}, "")
	d := testDriver(f)

	_, err := d.Mktree([]casefile.TreeEntry{{Mode: "100644", Type: "blob", Hash: "h", Name: "x"}})
	if err == nil {
		t.Fatal("Mktree() expected error, got nil")
	}
	if !casefileerr.HasCode(err, casefileerr.CodeInvalidTreeResult) {
		t.Errorf("error should carry CodeInvalidTreeResult, got %v", err)
	}
}

func TestShareCasefileNoOpWhenBlobUnchanged(t *testing.T) {
	f := newFakeInvoker()
	f.on([]string{"rev-parse", config.SharedCasefilesRef}, "tree0sha\n")
	f.on([]string{"hash-object", "-w", "--stdin"}, "bloba\n")
	f.on([]string{"ls-tree", "-z", "tree0sha:notes"}, "100644 blob bloba\tabc\x00")
	d := testDriver(f)

	result, err := d.ShareCasefile("origin", "notes/abc", nil)
	if err != nil {
		t.Fatalf("ShareCasefile() error = %v", err)
	}
	if !result.NoOp {
		t.Error("NoOp = false, want true")
	}
	if result.Commit != "tree0sha" {
		t.Errorf("Commit = %q, want %q", result.Commit, "tree0sha")
	}
	// no mktree/commit-tree/push/update-ref calls should have happened
	for _, c := range f.calls {
		if len(c.Args) > 0 && (c.Args[0] == "push" || c.Args[0] == "commit-tree" || c.Args[0] == "mktree" || c.Args[0] == "update-ref") {
			t.Errorf("unexpected call with args %v", c.Args)
		}
	}
}

// sequencedMktreeInvoker wraps fakeInvoker but returns mktreeResults in
// order for successive "mktree -z" calls, since GitDriver issues two of
// them per share (group tree, then root tree) with the same argv.
type sequencedMktreeInvoker struct {
	*fakeInvoker
	mktreeResults []string
	mktreeCalls   int
}

func (s *sequencedMktreeInvoker) Invoke(opts subproc.InvokeOptions) (any, error) {
	if len(opts.Args) == 2 && opts.Args[0] == "mktree" && opts.Args[1] == "-z" {
		idx := s.mktreeCalls
		s.mktreeCalls++
		if opts.Stdout != nil && idx < len(s.mktreeResults) {
			opts.Stdout(s.mktreeResults[idx], func() {})
		}
		if opts.Exit != nil {
			return opts.Exit(0)
		}
		return opts.Result, nil
	}
	return s.fakeInvoker.Invoke(opts)
}

func TestShareCasefileNewInstanceCommitsAndPushes(t *testing.T) {
	f := newFakeInvoker()
	f.on([]string{"rev-parse", config.SharedCasefilesRef}, "tree0sha\n")
	f.on([]string{"hash-object", "-w", "--stdin"}, "bloba\n")
	f.on([]string{"ls-tree", "-z", "tree0sha:notes"}, "")
	f.on([]string{"ls-tree", "-z", "tree0sha"}, "")
	f.on([]string{"commit-tree", "roottreesha", "-m", "Share casefile", "-p", "tree0sha"}, "newcommitsha\n")
	f.on([]string{"push", "origin", "newcommitsha:" + config.SharedCasefilesRef}, "")
	f.on([]string{"update-ref", config.SharedCasefilesRef, "newcommitsha"}, "")

	seq := &sequencedMktreeInvoker{fakeInvoker: f, mktreeResults: []string{"grouptreesha\n", "roottreesha\n"}}
	d := New(seq, config.Defaults(), nil)

	result, err := d.ShareCasefile("origin", "notes/abc", []casefile.Bookmark{{File: "a.go", Line: 1, Text: "x"}})
	if err != nil {
		t.Fatalf("ShareCasefile() error = %v", err)
	}
	if result.NoOp {
		t.Error("NoOp = true, want false")
	}
	if result.Commit != "newcommitsha" {
		t.Errorf("Commit = %q, want %q", result.Commit, "newcommitsha")
	}
}

func TestDeleteSoleCasefileDeletesRemoteRef(t *testing.T) {
	f := newFakeInvoker()
	f.on([]string{"rev-parse", config.SharedCasefilesRef}, "roottree1\n")
	f.on([]string{"ls-tree", "-z", "roottree1:a"}, "100644 blob h\tb\x00")
	f.on([]string{"ls-tree", "-z", "roottree1"}, "040000 tree grouphash\ta\x00")
	f.on([]string{"push", "origin", ":" + config.SharedCasefilesRef}, "")
	f.on([]string{"update-ref", "-d", config.SharedCasefilesRef}, "")
	d := testDriver(f)

	result, err := d.DeleteCasefilePaths("origin", []string{"a/b"})
	if err != nil {
		t.Fatalf("DeleteCasefilePaths() error = %v", err)
	}
	if !result.Changed {
		t.Error("Changed = false, want true")
	}
	if result.Commit != "" {
		t.Errorf("Commit = %q, want empty", result.Commit)
	}
}

func TestDeleteCasefilePathsNoOpWhenNothingMatches(t *testing.T) {
	f := newFakeInvoker()
	f.on([]string{"rev-parse", config.SharedCasefilesRef}, "roottree1\n")
	f.on([]string{"ls-tree", "-z", "roottree1:a"}, "100644 blob h\tother\x00")
	d := testDriver(f)

	result, err := d.DeleteCasefilePaths("origin", []string{"a/b"})
	if err != nil {
		t.Fatalf("DeleteCasefilePaths() error = %v", err)
	}
	if result.Changed {
		t.Error("Changed = true, want false")
	}
}

func TestLineIntroductionRejectsAllZeroSha(t *testing.T) {
	f := newFakeInvoker()
	f.on([]string{"blame", "-L", "5,5", "--porcelain", "--", "file.go"}, strings.Repeat("0", 40)+" 5 5 1\n")
	d := testDriver(f)

	_, err := d.LineIntroduction("file.go", 5, LineIntroductionOptions{})
	if err == nil {
		t.Fatal("LineIntroduction() expected error, got nil")
	}
	if !casefileerr.HasCode(err, casefileerr.CodeNoCommitFound) {
		t.Errorf("error should carry CodeNoCommitFound, got %v", err)
	}
}

func TestLineIntroductionParsesSourceLine(t *testing.T) {
	f := newFakeInvoker()
	f.on([]string{"blame", "-L", "5,5", "--porcelain", "--", "file.go"}, "deadbeef 3 5 1\nauthor nobody\n")
	d := testDriver(f)

	peg, err := d.LineIntroduction("file.go", 5, LineIntroductionOptions{})
	if err != nil {
		t.Fatalf("LineIntroduction() error = %v", err)
	}
	if peg.Commit != "deadbeef" {
		t.Errorf("Commit = %q, want %q", peg.Commit, "deadbeef")
	}
	if peg.Line != 3 {
		t.Errorf("Line = %d, want 3", peg.Line)
	}
}

func TestFindCurrentLinePositionMatchesAndStops(t *testing.T) {
	f := newFakeInvoker()
	f.on([]string{"blame", "--incremental", "--", "file.go"},
		"deadbeef 1 1 4\nauthor nobody\nsomeother 10 10 1\n")
	d := testDriver(f)

	line, err := d.FindCurrentLinePosition("file.go", casefile.Peg{Commit: "deadbeef", Line: 2}, nil)
	if err != nil {
		t.Fatalf("FindCurrentLinePosition() error = %v", err)
	}
	if line != 2 {
		t.Errorf("line = %d, want 2", line)
	}
}

func TestFindCurrentLinePositionNoMatchFails(t *testing.T) {
	f := newFakeInvoker()
	f.on([]string{"blame", "--incremental", "--", "file.go"}, "other 1 1 4\n")
	d := testDriver(f)

	_, err := d.FindCurrentLinePosition("file.go", casefile.Peg{Commit: "deadbeef", Line: 2}, nil)
	if err == nil {
		t.Fatal("FindCurrentLinePosition() expected error, got nil")
	}
	if !casefileerr.HasCode(err, casefileerr.CodeLineNotFound) {
		t.Errorf("error should carry CodeLineNotFound, got %v", err)
	}
}

func TestSelectCommitsUnknownToRemote(t *testing.T) {
	f := newFakeInvoker()
	f.on([]string{"branch", "-r", "--contains", "c1", "origin/*"}, "origin/main\n")
	f.on([]string{"branch", "-r", "--contains", "c2", "origin/*"}, "")
	d := testDriver(f)

	unknown, err := d.SelectCommitsUnknownToRemote("origin", []string{"c1", "c2"})
	if err != nil {
		t.Fatalf("SelectCommitsUnknownToRemote() error = %v", err)
	}
	if !reflect.DeepEqual(unknown, []string{"c2"}) {
		t.Errorf("unknown = %v, want [c2]", unknown)
	}
}

func TestPushCommitRefsSkipsCommitsAlreadyKnownToRemote(t *testing.T) {
	f := newFakeInvoker()
	f.on([]string{"branch", "-r", "--contains", "c1", "origin/*"}, "origin/main\n")
	f.on([]string{"branch", "-r", "--contains", "c2", "origin/*"}, "")
	f.on([]string{"push", "origin", "c2:refs/collaboration/referenced-commits/c2"}, "")
	d := testDriver(f)

	if err := d.PushCommitRefs("origin", "c1", "c2"); err != nil {
		t.Fatalf("PushCommitRefs() error = %v", err)
	}

	for _, call := range f.calls {
		if reflect.DeepEqual(call.Args, []string{"push", "origin", "c1:refs/collaboration/referenced-commits/c1"}) {
			t.Error("c1 is already known to the remote and must not be pushed")
		}
	}
}
