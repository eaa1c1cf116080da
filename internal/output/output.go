package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/caseflow/git-casefile/internal/casefile"
)

// Printer renders casefile results to a writer, switching between JSON
// and human-readable rendering based on how the CLI was invoked.
type Printer struct {
	w      io.Writer
	json   bool
	isTTY  bool
	styles *Styles
}

// Styles holds lipgloss styles for human-readable output.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Bold    lipgloss.Style
	Dim     lipgloss.Style
}

// NewPrinter creates a new Printer.
// If jsonMode is true, output is JSON formatted.
// If isTTY is true, colors are enabled for human output.
func NewPrinter(writer io.Writer, jsonMode bool, isTTY bool) *Printer {
	styles := &Styles{
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true), // Red
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),          // Yellow
		Bold:    lipgloss.NewStyle().Bold(true),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}

	if !isTTY {
		styles.Error = lipgloss.NewStyle()
		styles.Warning = lipgloss.NewStyle()
		styles.Bold = lipgloss.NewStyle()
		styles.Dim = lipgloss.NewStyle()
	}

	return &Printer{w: writer, json: jsonMode, isTTY: isTTY, styles: styles}
}

// IsJSON returns true if the printer is in JSON mode.
func (p *Printer) IsJSON() bool {
	return p.json
}

// IsTTY returns true if the printer output is a TTY.
func (p *Printer) IsTTY() bool {
	return p.isTTY
}

// Error outputs an error: {"error": "...", "code": N} in JSON mode, a
// styled "Error: message" line otherwise.
func (p *Printer) Error(err error) {
	exitErr := &ExitError{}
	if !errors.As(err, &exitErr) {
		exitErr = &ExitError{Code: ExitUserError, Message: err.Error()}
	}

	if p.json {
		mustWrite(p.w.Write(ErrorJSON(exitErr.Message, exitErr.Code)))
		mustWrite(fmt.Fprintln(p.w))
		return
	}

	mustWrite(fmt.Fprintf(p.w, "%s: %s\n", p.styles.Error.Render("Error"), exitErr.Message))
}

// Warn outputs a warning surfaced from GitDriver or the relocator's
// fallback strategies: {"warning": "..."} in JSON mode, a styled
// "Warning: message" line otherwise.
func (p *Printer) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.json {
		_ = p.writeJSON(map[string]any{"warning": msg})
		return
	}
	mustWrite(fmt.Fprintf(p.w, "%s: %s\n", p.styles.Warning.Render("Warning"), msg))
}

// Println writes a line to the output, unconditionally of JSON mode —
// callers use this only for messages that have no structured form (e.g.
// "no shared casefiles").
func (p *Printer) Println(args ...any) {
	mustWrite(fmt.Fprintln(p.w, args...))
}

func (p *Printer) writeJSON(data any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// WriteJSON encodes data as indented JSON and writes it. The commands use
// it for their --json output.
func (p *Printer) WriteJSON(data any) error {
	return p.writeJSON(data)
}

// ErrorJSON returns JSON-formatted error bytes: {"error": "...", "code": N}.
func ErrorJSON(message string, code int) []byte {
	result, _ := json.Marshal(map[string]any{"error": message, "code": code})
	return result
}

// mustWrite panics if a write to the output writer fails. The writer is
// always either stdout or an in-memory test buffer, so a failure here
// means something is badly wrong with the process, not with the data.
func mustWrite(_ int, err error) {
	if err != nil {
		panic(fmt.Sprintf("write failed: %v", err))
	}
}

// Table renders a simple table with column alignment: headers in bold,
// column widths sized to the widest cell. Used for casefile group and
// deleted-casefile listings.
func (p *Printer) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}
	widths := calcColumnWidths(headers, rows)
	p.printTableHeaders(headers, widths)
	for _, row := range rows {
		p.printTableRow(row, widths)
	}
}

func calcColumnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

func (p *Printer) printTableHeaders(headers []string, widths []int) {
	for i, h := range headers {
		if i > 0 {
			mustWrite(fmt.Fprint(p.w, "  "))
		}
		mustWrite(fmt.Fprint(p.w, p.styles.Bold.Render(padRight(h, widths[i]))))
	}
	mustWrite(fmt.Fprintln(p.w))
}

func (p *Printer) printTableRow(row []string, widths []int) {
	for i, cell := range row {
		if i >= len(widths) {
			break
		}
		if i > 0 {
			mustWrite(fmt.Fprint(p.w, "  "))
		}
		mustWrite(fmt.Fprint(p.w, padRight(cell, widths[i])))
	}
	mustWrite(fmt.Fprintln(p.w))
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Bookmarks renders a bookmark forest as an indented tree, one bookmark
// per line: "<file>:<line>  <text>  [<peg>]", children indented two
// spaces under their parent.
func (p *Printer) Bookmarks(bookmarks []casefile.Bookmark) {
	if len(bookmarks) == 0 {
		mustWrite(fmt.Fprintln(p.w, p.styles.Dim.Render("(no bookmarks)")))
		return
	}
	p.printBookmarks(bookmarks, 0)
}

func (p *Printer) printBookmarks(bookmarks []casefile.Bookmark, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, b := range bookmarks {
		peg := "unpegged"
		if b.Peg != nil {
			peg = shortSHA(b.Peg.Commit) + ":" + strconv.Itoa(b.Peg.Line)
		}
		mustWrite(fmt.Fprintf(p.w, "%s%s:%d  %s  [%s]\n", indent, b.File, b.Line, b.Text, peg))
		p.printBookmarks(b.Children, depth+1)
	}
}

// Location renders a resolved bookmark position as "<file>:<line>:<col>".
func (p *Printer) Location(loc casefile.Location) {
	mustWrite(fmt.Fprintf(p.w, "%s:%d:%d\n", loc.File, loc.Line, loc.Col))
}

// Peg renders a freshly minted peg as "<short-sha>:<line>".
func (p *Printer) Peg(peg casefile.Peg) {
	mustWrite(fmt.Fprintf(p.w, "%s:%d\n", shortSHA(peg.Commit), peg.Line))
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
