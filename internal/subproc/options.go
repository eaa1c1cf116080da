package subproc

import (
	"strings"

	"github.com/caseflow/git-casefile/internal/casefileerr"
)

// Style selects how long-form options render to argv.
type Style int

const (
	// GNUOpt renders long names as "--name[=value]" and short (1-char)
	// names as "-n value".
	GNUOpt Style = iota
	// OneDash renders every name as "-name value", regardless of length.
	OneDash
)

// Opt is one entry of the options-to-argv translation. Value is either
// bool(true) (a flag) or a string (a valued option). The special name "-"
// packs a short-flag cluster: each character of its string Value becomes
// an independent "-x" flag.
//
// Opts is a slice rather than a map so argv rendering is deterministic —
// the spec's JS original iterates an object's own keys in insertion
// order, which Go's map type cannot reproduce.
type Opt struct {
	Name  string
	Value any
}

// Opts is an ordered list of Opt, rendered in order.
type Opts []Opt

// Render translates Opts into argv fragments according to style.
func Render(style Style, opts Opts) ([]string, error) {
	var out []string
	for _, o := range opts {
		if o.Name == "-" {
			s, ok := o.Value.(string)
			if !ok {
				return nil, casefileerr.New(casefileerr.CodeBadOptionsKey, `"-" option value must be a string of short flags`)
			}
			for _, ch := range s {
				out = append(out, "-"+string(ch))
			}
			continue
		}

		switch v := o.Value.(type) {
		case bool:
			if !v {
				continue
			}
			if strings.Contains(o.Name, "=") {
				return nil, casefileerr.New(casefileerr.CodeBadOptionsKey, "flag-only option key must not contain '=': "+o.Name)
			}
			out = append(out, renderFlag(style, o.Name))
		case string:
			out = append(out, renderValued(style, o.Name, v)...)
		default:
			return nil, casefileerr.New(casefileerr.CodeBadOptionsKey, "unsupported option value type for key: "+o.Name)
		}
	}
	return out, nil
}

func renderFlag(style Style, name string) string {
	if style == OneDash || len(name) == 1 {
		return "-" + name
	}
	return "--" + name
}

func renderValued(style Style, name, value string) []string {
	switch {
	case style == GNUOpt && len(name) > 1:
		return []string{"--" + name + "=" + value}
	case style == GNUOpt:
		return []string{"-" + name, value}
	default: // OneDash
		return []string{"-" + name, value}
	}
}
