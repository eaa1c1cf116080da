package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/caseflow/git-casefile/internal/casefile"
)

func TestPrinter_JSON_Error(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, true, false)

	printer.Error(NewUserError("missing required flag: --why"))

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\noutput: %s", err, buf.String())
	}
	if result["error"] != "missing required flag: --why" {
		t.Errorf("error = %v, want %q", result["error"], "missing required flag: --why")
	}
	if code, ok := result["code"].(float64); !ok || int(code) != ExitUserError {
		t.Errorf("code = %v, want %d", result["code"], ExitUserError)
	}
}

func TestPrinter_JSON_WrapsUncodedError(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, true, false)

	printer.Error(errPlain("boom"))

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if code, ok := result["code"].(float64); !ok || int(code) != ExitUserError {
		t.Errorf("code = %v, want %d (uncoded errors default to user error)", result["code"], ExitUserError)
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }

func TestPrinter_Human_Error(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.Error(NewUserError("missing required flag: --why"))

	out := buf.String()
	if !strings.Contains(out, "Error") {
		t.Errorf("output should contain %q: %q", "Error", out)
	}
	if !strings.Contains(out, "missing required flag: --why") {
		t.Errorf("output should contain the error message: %q", out)
	}
}

func TestPrinter_Warn(t *testing.T) {
	tests := []struct {
		name     string
		jsonMode bool
		want     string
	}{
		{name: "human mode", jsonMode: false, want: "Warning: skipping parent deadbeef"},
		{name: "json mode", jsonMode: true, want: `"warning": "skipping parent deadbeef"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printer := NewPrinter(&buf, tt.jsonMode, false)
			printer.Warn("skipping parent %s", "deadbeef")
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want to contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestPrinter_Println(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.Println("hello")

	if buf.String() != "hello\n" {
		t.Errorf("output = %q, want %q", buf.String(), "hello\n")
	}
}

func TestPrinter_WriteJSON(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, true, false)

	if err := printer.WriteJSON([]string{"alice", "bob"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var authors []string
	if err := json.Unmarshal(buf.Bytes(), &authors); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if len(authors) != 2 || authors[0] != "alice" || authors[1] != "bob" {
		t.Errorf("authors = %v, want [alice bob]", authors)
	}
}

func TestPrinter_Table(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.Table([]string{"Group", "Instances"}, [][]string{
		{"refactor", "2"},
		{"bugfix", "1"},
	})

	out := buf.String()
	if !strings.Contains(out, "Group") || !strings.Contains(out, "Instances") {
		t.Errorf("output should contain headers: %q", out)
	}
	if !strings.Contains(out, "refactor") || !strings.Contains(out, "bugfix") {
		t.Errorf("output should contain row data: %q", out)
	}
}

func TestPrinter_Table_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.Table(nil, [][]string{{"ignored"}})

	if buf.String() != "" {
		t.Errorf("Table with no headers should write nothing, got %q", buf.String())
	}
}

func TestPrinter_Bookmarks_Empty(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.Bookmarks(nil)

	if !strings.Contains(buf.String(), "(no bookmarks)") {
		t.Errorf("output = %q, want to contain %q", buf.String(), "(no bookmarks)")
	}
}

func TestPrinter_Bookmarks_NestedWithPegs(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	bookmarks := []casefile.Bookmark{
		{
			File: "main.go", Line: 10, Text: "func main",
			Peg: &casefile.Peg{Commit: "deadbeefcafe", Line: 10},
			Children: []casefile.Bookmark{
				{File: "main.go", Line: 12, Text: "call run"},
			},
		},
	}

	printer.Bookmarks(bookmarks)
	out := buf.String()

	if !strings.Contains(out, "main.go:10  func main  [deadbee:10]") {
		t.Errorf("output missing pegged bookmark line: %q", out)
	}
	if !strings.Contains(out, "  main.go:12  call run  [unpegged]") {
		t.Errorf("output missing indented unpegged child: %q", out)
	}
}

func TestPrinter_Location(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.Location(casefile.Location{File: "main.go", Line: 42, Col: 3})

	if buf.String() != "main.go:42:3\n" {
		t.Errorf("output = %q, want %q", buf.String(), "main.go:42:3\n")
	}
}

func TestPrinter_Peg(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.Peg(casefile.Peg{Commit: "deadbeefcafe1234", Line: 7})

	if buf.String() != "deadbee:7\n" {
		t.Errorf("output = %q, want %q", buf.String(), "deadbee:7\n")
	}
}

func TestIsJSON(t *testing.T) {
	printer := NewPrinter(&bytes.Buffer{}, true, false)
	if !printer.IsJSON() {
		t.Error("IsJSON() = false, want true")
	}
}

func TestIsTTY(t *testing.T) {
	printer := NewPrinter(&bytes.Buffer{}, false, true)
	if !printer.IsTTY() {
		t.Error("IsTTY() = false, want true")
	}
}
