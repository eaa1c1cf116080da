package gitdriver

import (
	"golang.org/x/sync/errgroup"

	"github.com/caseflow/git-casefile/internal/casefile"
)

// DeleteResult is the outcome of DeleteCasefilePaths.
type DeleteResult struct {
	Changed bool
	Commit  string // "" means the ref itself was deleted
}

type groupChange struct {
	group     string
	newTree   string // "" means this group is gone entirely
	removed   bool
	unchanged bool
}

// DeleteCasefilePaths implements spec.md §4.5.6. Per-group lsTree calls
// fan out concurrently, one goroutine per group, since each group addresses a disjoint
// subtree and ordering among them is irrelevant.
func (d *Driver) DeleteCasefilePaths(remote string, paths []string) (DeleteResult, error) {
	byGroup := map[string][]string{}
	var order []string
	for _, raw := range paths {
		p, ok := casefile.ParsePath(raw)
		if !ok {
			continue
		}
		if _, seen := byGroup[p.Group]; !seen {
			order = append(order, p.Group)
		}
		byGroup[p.Group] = append(byGroup[p.Group], p.Instance)
	}

	ref := d.cfg.Ref
	tree0, resolved, err := d.RevParse(ref)
	if err != nil {
		return DeleteResult{}, err
	}
	if !resolved {
		return DeleteResult{}, nil
	}

	changes := make([]groupChange, len(order))
	g := new(errgroup.Group)
	for i, group := range order {
		i, group := i, group
		instances := byGroup[group]
		g.Go(func() error {
			c, err := d.computeGroupChange(tree0, group, instances)
			if err != nil {
				return err
			}
			changes[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return DeleteResult{}, err
	}

	anyChanged := false
	for _, c := range changes {
		if !c.unchanged {
			anyChanged = true
			break
		}
	}
	if !anyChanged {
		return DeleteResult{}, nil
	}

	entriesR, err := d.lsTreeOrEmpty(tree0)
	if err != nil {
		return DeleteResult{}, err
	}
	for _, c := range changes {
		if c.unchanged {
			continue
		}
		entriesR = removeTreeEntry(entriesR, c.group)
		if !c.removed {
			entriesR = append(entriesR, casefile.TreeEntry{Mode: "040000", Type: "tree", Hash: c.newTree, Name: c.group})
		}
	}

	newCommit := ""
	if len(entriesR) > 0 {
		rootTree, err := d.Mktree(entriesR)
		if err != nil {
			return DeleteResult{}, err
		}
		newCommit, err = d.CommitCasefilesTree(rootTree, []string{tree0}, "Delete casefile")
		if err != nil {
			return DeleteResult{}, err
		}
	}

	if err := d.Push(remote, PushSpec{Source: newCommit, Dest: ref}); err != nil {
		return DeleteResult{}, err
	}
	if err := d.UpdateRef(ref, newCommit); err != nil {
		return DeleteResult{}, err
	}

	return DeleteResult{Changed: true, Commit: newCommit}, nil
}

func (d *Driver) computeGroupChange(tree0, group string, toRemove []string) (groupChange, error) {
	entries, err := d.LsTree(tree0 + ":" + group)
	if err != nil {
		if recoverableAbsence(err) {
			return groupChange{group: group, unchanged: true}, nil
		}
		return groupChange{}, err
	}

	remove := map[string]bool{}
	for _, name := range toRemove {
		remove[name] = true
	}

	var kept []casefile.TreeEntry
	anyRemoved := false
	for _, e := range entries {
		if remove[e.Name] {
			anyRemoved = true
			continue
		}
		kept = append(kept, e)
	}
	if !anyRemoved {
		return groupChange{group: group, unchanged: true}, nil
	}
	if len(kept) == 0 {
		return groupChange{group: group, removed: true}, nil
	}

	newTree, err := d.Mktree(kept)
	if err != nil {
		return groupChange{}, err
	}
	return groupChange{group: group, newTree: newTree}, nil
}

func removeTreeEntry(entries []casefile.TreeEntry, name string) []casefile.TreeEntry {
	out := make([]casefile.TreeEntry, 0, len(entries))
	for _, e := range entries {
		if e.Name == name {
			continue
		}
		out = append(out, e)
	}
	return out
}
