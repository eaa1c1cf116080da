// Package casefile defines the data carriers shared across git-casefile:
// bookmarks, casefiles, casefile paths, and the small structural types
// GitDriver's wire-format parsers produce (spec.md §3).
package casefile

import (
	"encoding/json"
	"strings"
)

// Peg pins a Bookmark to a specific commit and line, so it can be
// relocated later as the file evolves.
type Peg struct {
	Commit string `json:"commit"`
	Line   int    `json:"line"`
}

// Bookmark pegs a file/line at a specific commit. Identity is structural:
// two bookmarks with the same fields are the same bookmark.
type Bookmark struct {
	File     string     `json:"file"`
	Line     int        `json:"line"`
	Text     string     `json:"text"`
	Children []Bookmark `json:"children,omitempty"`
	Peg      *Peg       `json:"peg,omitempty"`
}

// Casefile is a JSON document listing bookmarks, addressable at a
// CasefilePath in the shared tree. Path is never stored in the blob; it
// is derived from the tree location and injected on read.
type Casefile struct {
	Path      string     `json:"-"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// MarshalBlob renders the casefile the way it is stored as a Git blob:
// `{"bookmarks": [...]}`, without Path.
func (c Casefile) MarshalBlob() ([]byte, error) {
	return json.Marshal(struct {
		Bookmarks []Bookmark `json:"bookmarks"`
	}{Bookmarks: c.Bookmarks})
}

// ParseCasefile decodes a casefile blob. The legacy bare-array form
// (`[...]`) is normalized to the object form. Path is not read from the
// blob; the caller injects it via Casefile.Path afterward.
func ParseCasefile(data []byte) (Casefile, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var bookmarks []Bookmark
		if err := json.Unmarshal([]byte(trimmed), &bookmarks); err != nil {
			return Casefile{}, err
		}
		return Casefile{Bookmarks: bookmarks}, nil
	}

	var obj struct {
		Bookmarks []Bookmark `json:"bookmarks"`
	}
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return Casefile{}, err
	}
	return Casefile{Bookmarks: obj.Bookmarks}, nil
}

// Path is a "<group>/<instance>" address in the shared tree. Group may
// itself contain "/"; splitting is on the right-most single "/".
type Path struct {
	Group    string
	Instance string
}

// String renders "<group>/<instance>".
func (p Path) String() string {
	return p.Group + "/" + p.Instance
}

// ParsePath splits a CasefilePath string on its right-most "/".
func ParsePath(s string) (Path, bool) {
	idx := strings.LastIndex(s, "/")
	if idx < 0 {
		return Path{}, false
	}
	return Path{Group: s[:idx], Instance: s[idx+1:]}, true
}

// CasefileGroupListing is one group's raw listing as GitDriver recovers
// it from the shared tree: a group name and its instance identifiers, in
// ls-tree traversal order.
type CasefileGroupListing struct {
	Name      string
	Instances []string
}

// TreeEntry is one Git tree entry. Name never contains "/".
type TreeEntry struct {
	Mode string
	Type string
	Hash string
	Name string
}

// DeletedRef is a deleted-casefile record recovered from the shared
// ref's history.
type DeletedRef struct {
	Commit    string
	Committed int64 // Unix seconds
	Path      string
}

// Location is the resolved current position of a bookmark's mark text.
type Location struct {
	File string
	Line int
	Col  int
}
