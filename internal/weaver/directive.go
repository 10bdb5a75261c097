package weaver

import "strings"

// DirectiveKind distinguishes region openers from closers.
type DirectiveKind int

const (
	// Open starts one or more named regions (#docregion).
	Open DirectiveKind = iota
	// Close ends one or more named regions (#enddocregion).
	Close
)

const (
	openMarker  = "#docregion"
	closeMarker = "#enddocregion"
)

// Directive is a recognized region marker line.
type Directive struct {
	Kind  DirectiveKind
	Names []string // as written, in order; may be empty
	Line  int      // zero-based line index
}

// commentWrapper is a comment delimiter pair the marker may be wrapped in.
type commentWrapper struct {
	prefix string
	suffix string
}

// Wrappers are tried in order; the empty pair recognizes a bare marker.
// Adding a comment style means adding a pair here, nothing else.
var commentWrappers = []commentWrapper{
	{"", ""},
	{"//", ""},
	{"#", ""},
	{"/*", "*/"},
	{"<!--", "-->"},
}

// ParseDirective classifies a single line. It returns the directive and
// true when the entire trimmed line, after stripping one recognized comment
// wrapper, matches the marker grammar; any other line is content and
// returns false. Malformed wrappers (e.g. an unclosed block comment) are
// content, not errors.
func ParseDirective(line string, index int) (Directive, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Directive{}, false
	}

	for _, w := range commentWrappers {
		inner := trimmed
		if w.prefix != "" {
			if !strings.HasPrefix(inner, w.prefix) {
				continue
			}
			inner = inner[len(w.prefix):]
		}
		if w.suffix != "" {
			if !strings.HasSuffix(inner, w.suffix) {
				continue
			}
			inner = inner[:len(inner)-len(w.suffix)]
		}
		if kind, names, ok := parseMarker(strings.TrimSpace(inner)); ok {
			return Directive{Kind: kind, Names: names, Line: index}, true
		}
	}

	return Directive{}, false
}

// parseMarker matches the inner grammar: the marker keyword, optionally
// followed by whitespace and a comma-separated name list.
func parseMarker(inner string) (DirectiveKind, []string, bool) {
	var kind DirectiveKind
	var rest string

	switch {
	case strings.HasPrefix(inner, closeMarker):
		kind = Close
		rest = inner[len(closeMarker):]
	case strings.HasPrefix(inner, openMarker):
		kind = Open
		rest = inner[len(openMarker):]
	default:
		return 0, nil, false
	}

	// The keyword must stand alone: "#docregionx" is content.
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, nil, false
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return kind, nil, true
	}

	var names []string
	for _, name := range strings.Split(rest, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return kind, names, true
}
