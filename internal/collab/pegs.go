package collab

import "github.com/caseflow/git-casefile/internal/casefile"

// FlattenPegCommits walks bookmarks (and their Children) depth-first,
// collecting every pegged commit, deduped by first occurrence. A
// bookmark forest with no pegs at all (e.g. freshly created, never
// shared) yields an empty slice.
func FlattenPegCommits(bookmarks []casefile.Bookmark) []string {
	seen := map[string]bool{}
	var commits []string
	var walk func([]casefile.Bookmark)
	walk = func(bms []casefile.Bookmark) {
		for _, b := range bms {
			if b.Peg != nil && b.Peg.Commit != "" && !seen[b.Peg.Commit] {
				seen[b.Peg.Commit] = true
				commits = append(commits, b.Peg.Commit)
			}
			walk(b.Children)
		}
	}
	walk(bookmarks)
	return commits
}
