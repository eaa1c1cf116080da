package collab

import (
	"sort"
	"time"

	"github.com/caseflow/git-casefile/internal/casefile"
	"github.com/caseflow/git-casefile/internal/gitdriver"
)

// CasefileGroup is one group's raw listing: a name and its instance
// identifiers (spec.md §4.5.2).
type CasefileGroup struct {
	Name      string   `json:"name"`
	Instances []string `json:"instances"`
}

// CasefileRef addresses one casefile instance in the shared tree,
// without yet having read its content.
type CasefileRef struct {
	Group    string `json:"group"`
	Instance string `json:"instance"`
	Path     string `json:"path"`

	git *gitdriver.Driver
	ref string
}

// GetAuthors lists the distinct authors who have touched this casefile
// (spec.md §4.5.4).
func (r CasefileRef) GetAuthors() ([]string, error) {
	return r.git.GetCasefileAuthors(r.ref, r.Path)
}

// Load reads and parses the casefile (spec.md §4.5.3).
func (r CasefileRef) Load() (casefile.Casefile, error) {
	return r.git.GetCasefile(r.ref, r.Path, gitdriver.GetCasefileOptions{})
}

// DeletedCasefileRef is a deleted-casefile record recovered from the
// shared ref's history, with enough information to retrieve the
// casefile as it stood just before deletion (spec.md §4.5.9/§4.5.10).
type DeletedCasefileRef struct {
	DeletionCommit string    `json:"deletionCommit"`
	Committed      time.Time `json:"committed"`
	Path           string    `json:"path"`

	git *gitdriver.Driver
}

// GetAuthors lists the distinct authors who touched this casefile
// before it was deleted.
func (r DeletedCasefileRef) GetAuthors() ([]string, error) {
	return r.git.GetCasefileAuthors(r.DeletionCommit, r.Path)
}

// Retrieve reads the casefile as of the last parent of DeletionCommit
// that still had it (spec.md §4.5.9).
func (r DeletedCasefileRef) Retrieve() (casefile.Casefile, error) {
	return r.git.GetCasefile(r.DeletionCommit, r.Path, gitdriver.GetCasefileOptions{BeforeCommit: r.DeletionCommit})
}

// sortGroupsByName sorts groups in place by Name, for stable listing
// output regardless of ls-tree's traversal order.
func sortGroupsByName(groups []CasefileGroup) {
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
}
