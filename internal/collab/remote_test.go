package collab

import (
	"strings"
	"testing"

	"github.com/caseflow/git-casefile/internal/casefile"
	"github.com/caseflow/git-casefile/internal/config"
	"github.com/caseflow/git-casefile/internal/gitdriver"
	"github.com/caseflow/git-casefile/internal/subproc"
)

type fakeInvoker struct {
	responses map[string]string
}

func (f *fakeInvoker) Invoke(opts subproc.InvokeOptions) (any, error) {
	if opts.Stdout != nil {
		opts.Stdout(f.responses[strings.Join(opts.Args, " ")], func() {})
	}
	return opts.Result, nil
}

func TestGitRemoteCommitsUnknown(t *testing.T) {
	tests := []struct {
		name      string
		responses map[string]string
		bookmarks []casefile.Bookmark
		wantAll   bool
		wantList  []string
	}{
		{
			name:      "all known when there are no pegs",
			responses: map[string]string{},
			bookmarks: []casefile.Bookmark{{File: "a.go"}},
			wantAll:   true,
		},
		{
			name: "reports the commits the remote is missing",
			responses: map[string]string{
				"branch -r --contains c1 origin/*": "origin/main\n",
				"branch -r --contains c2 origin/*": "",
			},
			bookmarks: []casefile.Bookmark{
				{File: "a.go", Peg: &casefile.Peg{Commit: "c1"}},
				{
					File: "b.go",
					Children: []casefile.Bookmark{
						{File: "c.go", Peg: &casefile.Peg{Commit: "c2"}},
					},
				},
			},
			wantAll:  false,
			wantList: []string{"c2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeInvoker{responses: tt.responses}
			remote := GitRemote{name: "origin", git: gitdriver.New(f, config.Defaults(), nil)}

			result, err := remote.CommitsUnknown(tt.bookmarks)
			if err != nil {
				t.Fatalf("CommitsUnknown() error = %v", err)
			}
			if result.AllKnown != tt.wantAll {
				t.Errorf("AllKnown = %v, want %v", result.AllKnown, tt.wantAll)
			}
			if len(result.Unknown) != len(tt.wantList) {
				t.Fatalf("Unknown = %v, want %v", result.Unknown, tt.wantList)
			}
			for i, c := range tt.wantList {
				if result.Unknown[i] != c {
					t.Errorf("Unknown[%d] = %q, want %q", i, result.Unknown[i], c)
				}
			}
		})
	}
}
