// Package collab is git-casefile's façade: it wires GitDriver, DiffDriver,
// and BookmarkRelocator into the reference types an agent or the CLI
// actually hands around (spec.md §4.7) — CasefileGroup, CasefileRef,
// DeletedCasefileRef, GitRemote — so a caller never touches a raw ref
// string or tree entry directly.
package collab

import (
	"time"

	"github.com/caseflow/git-casefile/internal/casefile"
	"github.com/caseflow/git-casefile/internal/config"
	"github.com/caseflow/git-casefile/internal/diffdriver"
	"github.com/caseflow/git-casefile/internal/gitdriver"
	"github.com/caseflow/git-casefile/internal/relocator"
	"github.com/caseflow/git-casefile/internal/subproc"
)

// Logger receives best-effort warnings surfaced from the underlying
// drivers (GitDriver's recovery paths, the relocator's fallen-through
// strategies).
type Logger interface {
	Warn(format string, args ...any)
}

// NopLogger discards warnings.
type NopLogger struct{}

func (NopLogger) Warn(string, ...any) {}

type driverLogAdapter struct{ log Logger }

func (a driverLogAdapter) Warn(format string, args ...any) { a.log.Warn(format, args...) }

// CasefileKeeper owns one repository's casefile machinery: the tree at
// cfg.Ref, its GitDriver/DiffDriver plumbing, and the relocator built on
// top of them.
type CasefileKeeper struct {
	git   *gitdriver.Driver
	diff  *diffdriver.Driver
	reloc *relocator.Relocator
	cfg   config.Options
}

// New wires a CasefileKeeper from cfg, spawning `git`/`diff` via
// subproc.Runner (spec.md §4.2). content, if nil, defaults to on-disk
// reads; log, if nil, discards warnings.
func New(cfg config.Options, content relocator.ContentSource, log Logger) *CasefileKeeper {
	if log == nil {
		log = NopLogger{}
	}
	adapter := driverLogAdapter{log: log}

	gitRunner := subproc.New(subproc.Config{
		Program: cfg.GitPath,
		Timeout: cfg.Timeout,
	})
	diffRunner := subproc.New(subproc.Config{
		Program: cfg.DiffPath,
		Timeout: cfg.Timeout,
	})

	git := gitdriver.New(gitRunner, cfg, adapter)
	diff := diffdriver.New(diffRunner)
	reloc := relocator.New(git, diff, content, adapter)

	return &CasefileKeeper{git: git, diff: diff, reloc: reloc, cfg: cfg}
}

// NewFromDrivers wires a CasefileKeeper from already-constructed drivers,
// bypassing subproc.New. Callers that need to inject a fake subproc.Invoker
// (tests, mainly) build their own GitDriver/DiffDriver/Relocator and hand
// them here instead of going through New.
func NewFromDrivers(git *gitdriver.Driver, diff *diffdriver.Driver, reloc *relocator.Relocator, cfg config.Options) *CasefileKeeper {
	return &CasefileKeeper{git: git, diff: diff, reloc: reloc, cfg: cfg}
}

// ListGroups lists every group in the shared tree (spec.md §4.5.2).
func (k *CasefileKeeper) ListGroups() ([]CasefileGroup, error) {
	listings, err := k.git.GetListOfCasefiles(k.cfg.Ref)
	if err != nil {
		return nil, err
	}
	groups := make([]CasefileGroup, len(listings))
	for i, l := range listings {
		groups[i] = CasefileGroup{Name: l.Name, Instances: l.Instances}
	}
	sortGroupsByName(groups)
	return groups, nil
}

// ListRefs lists every CasefileRef in the shared tree, flattening every
// group's instances (spec.md §4.5.2/§4.5.3).
func (k *CasefileKeeper) ListRefs() ([]CasefileRef, error) {
	groups, err := k.ListGroups()
	if err != nil {
		return nil, err
	}
	var refs []CasefileRef
	for _, g := range groups {
		for _, instance := range g.Instances {
			refs = append(refs, k.newRef(g.Name, instance))
		}
	}
	return refs, nil
}

func (k *CasefileKeeper) newRef(group, instance string) CasefileRef {
	return CasefileRef{
		Group:    group,
		Instance: instance,
		Path:     casefile.Path{Group: group, Instance: instance}.String(),
		git:      k.git,
		ref:      k.cfg.Ref,
	}
}

// GetCasefile reads the casefile at path (spec.md §4.5.3).
func (k *CasefileKeeper) GetCasefile(path string) (casefile.Casefile, error) {
	return k.git.GetCasefile(k.cfg.Ref, path, gitdriver.GetCasefileOptions{})
}

// GetAuthors lists the distinct authors who have touched the casefile at
// path in the shared ref's history (spec.md §4.5.4).
func (k *CasefileKeeper) GetAuthors(path string) ([]string, error) {
	return k.git.GetCasefileAuthors(k.cfg.Ref, path)
}

// ListDeleted lists deleted-casefile records from the shared ref's
// history, optionally restricted to groups matching partial (spec.md
// §4.5.10).
func (k *CasefileKeeper) ListDeleted(partial string) ([]DeletedCasefileRef, error) {
	raw, err := k.git.GetDeletedCasefileRefs(k.cfg.Ref, partial)
	if err != nil {
		return nil, err
	}
	refs := make([]DeletedCasefileRef, len(raw))
	for i, r := range raw {
		refs[i] = DeletedCasefileRef{
			DeletionCommit: r.Commit,
			Committed:      time.Unix(r.Committed, 0).UTC(),
			Path:           r.Path,
			git:            k.git,
		}
	}
	return refs, nil
}

// Locate resolves a bookmark's current (file, line, col) (spec.md §4.6).
func (k *CasefileKeeper) Locate(q relocator.Query) (casefile.Location, error) {
	return k.reloc.CurrentLocation(q)
}

// ComputeLinePeg mints a fresh peg for a live edit (spec.md §4.6).
func (k *CasefileKeeper) ComputeLinePeg(file string, currentLine int, commit string) casefile.Peg {
	return k.reloc.ComputeLinePeg(file, currentLine, commit)
}

// Remote returns the GitRemote façade for name.
func (k *CasefileKeeper) Remote(name string) GitRemote {
	return GitRemote{name: name, git: k.git, cfg: k.cfg}
}

// DefaultRemote returns the GitRemote façade for cfg.Remote.
func (k *CasefileKeeper) DefaultRemote() GitRemote {
	return k.Remote(k.cfg.Remote)
}

// ListRemotes lists configured Git remotes (spec.md §4.5.7).
func (k *CasefileKeeper) ListRemotes() ([]string, error) {
	return k.git.GetListOfRemotes()
}
