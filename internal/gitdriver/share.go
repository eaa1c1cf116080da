package gitdriver

import (
	"github.com/caseflow/git-casefile/internal/casefile"
	"github.com/caseflow/git-casefile/internal/config"
)

// ShareResult is the outcome of ShareCasefile: either a genuine new
// commit, or a no-op when the blob content was already shared unchanged.
type ShareResult struct {
	Message string
	Commit  string
	NoOp    bool
}

// ShareCasefile implements spec.md §4.5.5: it writes bookmarks as a blob,
// splices it into the group's tree and the root tree, commits, pushes,
// and only then advances the local ref. An identical existing blob is a
// no-op: neither push nor local ref update occurs.
func (d *Driver) ShareCasefile(remote, path string, bookmarks []casefile.Bookmark) (ShareResult, error) {
	p, ok := casefile.ParsePath(path)
	if !ok {
		return ShareResult{}, nil
	}

	ref := d.cfg.Ref
	parentHash, resolved, err := d.RevParse(ref)
	if err != nil {
		return ShareResult{}, err
	}
	var parents []string
	tree0 := config.EmptyTreeHash
	if resolved {
		parents = []string{parentHash}
		tree0 = parentHash
	}

	hash, err := d.GetHashOfCasefile(casefile.Casefile{Path: path, Bookmarks: bookmarks})
	if err != nil {
		return ShareResult{}, err
	}

	entriesG, err := d.lsTreeOrEmpty(tree0 + ":" + p.Group)
	if err != nil {
		return ShareResult{}, err
	}

	found := false
	for i, e := range entriesG {
		if e.Name != p.Instance {
			continue
		}
		found = true
		if e.Hash == hash {
			return ShareResult{Message: "no changes to share", Commit: tree0, NoOp: true}, nil
		}
		entriesG[i].Hash = hash
		break
	}
	if !found {
		entriesG = append(entriesG, casefile.TreeEntry{Mode: "100644", Type: "blob", Hash: hash, Name: p.Instance})
	}

	groupTree, err := d.Mktree(entriesG)
	if err != nil {
		return ShareResult{}, err
	}

	entriesR, err := d.lsTreeOrEmpty(tree0)
	if err != nil {
		return ShareResult{}, err
	}
	entriesR = replaceOrAppendTree(entriesR, p.Group, groupTree)

	rootTree, err := d.Mktree(entriesR)
	if err != nil {
		return ShareResult{}, err
	}

	newCommit, err := d.CommitCasefilesTree(rootTree, parents, "Share casefile")
	if err != nil {
		return ShareResult{}, err
	}

	if err := d.Push(remote, PushSpec{Source: newCommit, Dest: ref}); err != nil {
		return ShareResult{}, err
	}
	if err := d.UpdateRef(ref, newCommit); err != nil {
		return ShareResult{}, err
	}

	return ShareResult{Message: "casefile shared", Commit: newCommit}, nil
}

// lsTreeOrEmpty is LsTree with the "treeish does not exist yet" case
// recovered to an empty entry list, rather than surfaced as an error —
// the expected-plumbing-absence recovery spec.md §7 describes.
func (d *Driver) lsTreeOrEmpty(treeish string) ([]casefile.TreeEntry, error) {
	entries, err := d.LsTree(treeish)
	if err != nil {
		if recoverableAbsence(err) {
			return nil, nil
		}
		return nil, err
	}
	return entries, nil
}

// replaceOrAppendTree removes any entry named group from entries and
// appends a fresh {040000, tree, hash, group} entry in its place.
func replaceOrAppendTree(entries []casefile.TreeEntry, group, hash string) []casefile.TreeEntry {
	out := make([]casefile.TreeEntry, 0, len(entries)+1)
	for _, e := range entries {
		if e.Name == group {
			continue
		}
		out = append(out, e)
	}
	out = append(out, casefile.TreeEntry{Mode: "040000", Type: "tree", Hash: hash, Name: group})
	return out
}
