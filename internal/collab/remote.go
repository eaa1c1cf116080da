package collab

import (
	"github.com/caseflow/git-casefile/internal/casefile"
	"github.com/caseflow/git-casefile/internal/config"
	"github.com/caseflow/git-casefile/internal/gitdriver"
)

// GitRemote is the façade over one named remote's share/delete/fetch
// operations (spec.md §4.5.5-§4.5.8).
type GitRemote struct {
	name string
	git  *gitdriver.Driver
	cfg  config.Options
}

// Name returns the remote's name.
func (r GitRemote) Name() string { return r.name }

// FetchSharedCasefiles fetches every shared-casefiles ref from the
// remote (spec.md §4.5.8).
func (r GitRemote) FetchSharedCasefiles() error {
	return r.git.FetchSharedCasefilesFromRemote(r.name)
}

// Fetch fetches the remote's default refspec (spec.md §4.5.7).
func (r GitRemote) Fetch() error {
	return r.git.FetchFromRemote(r.name)
}

// CommitsUnknownResult is CommitsUnknown's result: either every
// referenced commit is already known to the remote, or Unknown lists
// the ones that are not (spec.md §9's redesign of commitsUnknown).
type CommitsUnknownResult struct {
	AllKnown bool
	Unknown  []string
}

// CommitsUnknown flattens every peg referenced by bookmarks (depth-first,
// deduped) and reports which of those commits the remote does not yet
// have (spec.md §4.5.6/§9).
func (r GitRemote) CommitsUnknown(bookmarks []casefile.Bookmark) (CommitsUnknownResult, error) {
	commits := FlattenPegCommits(bookmarks)
	if len(commits) == 0 {
		return CommitsUnknownResult{AllKnown: true}, nil
	}

	unknown, err := r.git.SelectCommitsUnknownToRemote(r.name, commits)
	if err != nil {
		return CommitsUnknownResult{}, err
	}
	if len(unknown) == 0 {
		return CommitsUnknownResult{AllKnown: true}, nil
	}
	return CommitsUnknownResult{Unknown: unknown}, nil
}

// PushCommitRefs pushes a keep-alive ref per commit, so the remote can
// never garbage-collect a commit a peg still points at (spec.md §9
// supplemented feature, keeping referenced but otherwise unreachable
// commits alive across history rewrites).
func (r GitRemote) PushCommitRefs(commits ...string) error {
	return r.git.PushCommitRefs(r.name, commits...)
}

// Share publishes bookmarks under path (spec.md §4.5.5).
func (r GitRemote) Share(path string, bookmarks []casefile.Bookmark) (gitdriver.ShareResult, error) {
	return r.git.ShareCasefile(r.name, path, bookmarks)
}

// Delete removes the casefiles at paths (spec.md §4.5.6).
func (r GitRemote) Delete(paths []string) (gitdriver.DeleteResult, error) {
	return r.git.DeleteCasefilePaths(r.name, paths)
}
