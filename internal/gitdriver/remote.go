package gitdriver

import (
	"golang.org/x/sync/errgroup"

	"github.com/caseflow/git-casefile/internal/casefileerr"
)

// commitsUnknownBatchSize bounds the concurrency of
// SelectCommitsUnknownToRemote (spec.md §4.5.12, §5).
const commitsUnknownBatchSize = 8

// GetListOfRemotes lists configured remote names (`git remote`).
func (d *Driver) GetListOfRemotes() ([]string, error) {
	out, err := d.git([]string{"remote"})
	if err != nil {
		return nil, err
	}
	return nonEmptyLines(out), nil
}

// FetchSharedCasefilesFromRemote fetches only the shared-casefiles ref
// namespace from remote, using the glob refspec `+<ref>*:<ref>*` so any
// ref sharing the prefix comes along too.
func (d *Driver) FetchSharedCasefilesFromRemote(remote string) error {
	ref := d.cfg.Ref
	refspec := "+" + ref + "*:" + ref + "*"
	_, err := d.git([]string{"fetch", remote, refspec})
	if err != nil {
		return casefileerr.Wrap(casefileerr.CodeGitWriteFailed, "fetching shared casefiles from "+remote, err)
	}
	return nil
}

// FetchFromRemote runs a plain `git fetch <remote>`.
func (d *Driver) FetchFromRemote(remote string) error {
	_, err := d.git([]string{"fetch", remote})
	if err != nil {
		return casefileerr.Wrap(casefileerr.CodeGitWriteFailed, "fetching from "+remote, err)
	}
	return nil
}

// SelectCommitsUnknownToRemote filters commits down to those remote has
// no remote-tracking branch containing, checking in batches of 8.
func (d *Driver) SelectCommitsUnknownToRemote(remote string, commits []string) ([]string, error) {
	known := make([]bool, len(commits))

	for start := 0; start < len(commits); start += commitsUnknownBatchSize {
		end := start + commitsUnknownBatchSize
		if end > len(commits) {
			end = len(commits)
		}
		g := new(errgroup.Group)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				k, err := d.TestIfCommitKnownToRemote(remote, commits[i])
				if err != nil {
					return err
				}
				known[i] = k
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	var unknown []string
	for i, k := range known {
		if !k {
			unknown = append(unknown, commits[i])
		}
	}
	return unknown, nil
}

// PushCommitRefs anchors each commit against garbage collection by
// pushing refs/collaboration/referenced-commits/<sha> on remote — the
// mechanism bookmark pegs rely on to keep their referenced commits alive
// once shared (spec.md §3, §6: "Push-commit refs"). A commit remote
// already knows about (TestIfCommitKnownToRemote) is skipped.
func (d *Driver) PushCommitRefs(remote string, commits ...string) error {
	for _, c := range commits {
		known, err := d.TestIfCommitKnownToRemote(remote, c)
		if err != nil {
			return err
		}
		if known {
			continue
		}
		spec := PushSpec{Source: c, Dest: d.cfg.RefsPrefix + c}
		if err := d.Push(remote, spec); err != nil {
			return err
		}
	}
	return nil
}
