package gitdriver

import (
	"sort"
	"strings"

	"github.com/caseflow/git-casefile/internal/casefile"
	"github.com/caseflow/git-casefile/internal/casefileerr"
)

// GetListOfCasefiles lists the shared tree's groups, each with its
// instances, in `ls-tree` traversal order (spec.md §4.5.2). Grouping is
// by strictly adjacent records sharing a group name — a tree whose
// entries were somehow unsorted would split one group into several; Git
// always returns sorted output, so that case is unreachable in practice
// and is deliberately left unfixed (spec.md §9 Open Question).
func (d *Driver) GetListOfCasefiles(ref string) ([]casefile.CasefileGroupListing, error) {
	entries, err := d.LsTreeRecursiveFullTree(ref)
	if err != nil {
		return nil, err
	}

	var groups []casefile.CasefileGroupListing
	for _, e := range entries {
		if e.Mode != "100644" || e.Type != "blob" {
			continue
		}
		group, instance, ok := splitGroupInstance(e.Name)
		if !ok {
			continue
		}
		if n := len(groups); n > 0 && groups[n-1].Name == group {
			groups[n-1].Instances = append(groups[n-1].Instances, instance)
			continue
		}
		groups = append(groups, casefile.CasefileGroupListing{Name: group, Instances: []string{instance}})
	}
	return groups, nil
}

// splitGroupInstance splits "<group>/<remainder>" on the left-most "/"
// — the inverse of casefile.Path's right-most split, because ls-tree
// paths here are exactly two segments deep by construction (§3: "casefiles
// live exactly one directory deep in the shared tree").
func splitGroupInstance(name string) (group, instance string, ok bool) {
	idx := strings.IndexByte(name, '/')
	if idx < 0 {
		return "", "", false
	}
	return name[:idx], name[idx+1:], true
}

// GetCasefileAuthors lists distinct author names that have touched path
// in ref's history (`git log --pretty=format:%aN`), deduped by first
// occurrence and then sorted ascending.
func (d *Driver) GetCasefileAuthors(ref, path string) ([]string, error) {
	out, err := d.git([]string{"log", "--pretty=format:%aN", ref, "--", path})
	if err != nil {
		if recoverableAbsence(err) {
			return nil, nil
		}
		return nil, err
	}

	seen := map[string]bool{}
	var authors []string
	for _, name := range nonEmptyLines(out) {
		if seen[name] {
			continue
		}
		seen[name] = true
		authors = append(authors, name)
	}
	sort.Strings(authors)
	return authors, nil
}

// GetBlobContent reads the raw bytes of the blob at path within commit
// (`git cat-file blob <commit>:<path>`).
func (d *Driver) GetBlobContent(path, commit string) ([]byte, error) {
	out, err := d.git([]string{"cat-file", "blob", commit + ":" + path})
	if err != nil {
		return nil, casefileerr.Wrap(casefileerr.CodeInvalidCommittish, "reading blob "+path+" at "+commit, err)
	}
	return []byte(out), nil
}

// GetBlobContentRelative reads the blob at name within commit, addressing
// it the same cwd-relative way blame does (`<commit>:./<name>` run with
// Cwd=dir), for callers that only have a filesystem path rather than a
// repo-relative one. BookmarkRelocator uses this to read the base version
// of a file it is only tracking by its on-disk path.
func (d *Driver) GetBlobContentRelative(commit, dir, name string) ([]byte, error) {
	out, err := d.git([]string{"cat-file", "blob", commit + ":./" + name}, withCwd(dir))
	if err != nil {
		return nil, casefileerr.Wrap(casefileerr.CodeInvalidCommittish, "reading blob "+name+" at "+commit, err)
	}
	return []byte(out), nil
}

// GetCasefileOptions configures GetCasefile.
type GetCasefileOptions struct {
	// BeforeCommit, if set, resolves the casefile as of the best parent
	// of this commit that still touched path (§4.5.9), instead of the
	// ref's current tip.
	BeforeCommit string
}

// GetCasefile retrieves and parses the casefile at path. With no
// BeforeCommit, it reads the blob at `<ref>:<path>`; with BeforeCommit
// set, it resolves the pre-deletion parent first.
func (d *Driver) GetCasefile(ref, path string, opts GetCasefileOptions) (casefile.Casefile, error) {
	commit := ref
	if opts.BeforeCommit != "" {
		parent, err := d.FindLatestCommitParentWithPath(path, opts.BeforeCommit)
		if err != nil {
			return casefile.Casefile{}, err
		}
		commit = parent
	}

	data, err := d.GetBlobContent(path, commit)
	if err != nil {
		return casefile.Casefile{}, err
	}

	cf, err := casefile.ParseCasefile(data)
	if err != nil {
		return casefile.Casefile{}, casefileerr.Wrap(casefileerr.CodeInvalidCommit, "parsing casefile blob at "+path, err)
	}
	cf.Path = path
	return cf, nil
}
