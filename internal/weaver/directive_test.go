package weaver

import (
	"reflect"
	"testing"
)

func TestParseDirective(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		ok    bool
		kind  DirectiveKind
		names []string
	}{
		{"bare open", "#docregion main", true, Open, []string{"main"}},
		{"bare close", "#enddocregion main", true, Close, []string{"main"}},
		{"bare open no names", "#docregion", true, Open, nil},
		{"bare close no names", "#enddocregion", true, Close, nil},
		{"line comment", "// #docregion a", true, Open, []string{"a"}},
		{"line comment no space", "//#docregion a", true, Open, []string{"a"}},
		{"line comment indented", "   // #enddocregion a", true, Close, []string{"a"}},
		{"hash comment", "# #docregion cfg", true, Open, []string{"cfg"}},
		{"block comment", "/* #docregion q1 */", true, Open, []string{"q1"}},
		{"block comment close", "/* #enddocregion q1 */", true, Close, []string{"q1"}},
		{"html comment", "<!-- #docregion x,y -->", true, Open, []string{"x", "y"}},
		{"multiple names with spaces", "// #docregion a, b ,c", true, Open, []string{"a", "b", "c"}},
		{"empty list entries dropped", "// #docregion a,,b,", true, Open, []string{"a", "b"}},
		{"trailing whitespace", "// #docregion a   ", true, Open, []string{"a"}},

		{"plain content", "const x = 1;", false, 0, nil},
		{"empty line", "", false, 0, nil},
		{"keyword embedded in content", "code(); // #docregion a", false, 0, nil},
		{"keyword mid-comment", "// see #docregion for details", false, 0, nil},
		{"keyword glued to suffix", "// #docregionx", false, 0, nil},
		{"missing hash", "// docregion a", false, 0, nil},
		{"unclosed block comment", "/* #docregion a", false, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ParseDirective(tt.line, 7)
			if ok != tt.ok {
				t.Fatalf("ParseDirective(%q): ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if !ok {
				return
			}
			if d.Kind != tt.kind {
				t.Errorf("ParseDirective(%q): kind = %v, want %v", tt.line, d.Kind, tt.kind)
			}
			if !reflect.DeepEqual(d.Names, tt.names) {
				t.Errorf("ParseDirective(%q): names = %v, want %v", tt.line, d.Names, tt.names)
			}
			if d.Line != 7 {
				t.Errorf("ParseDirective(%q): line = %d, want 7", tt.line, d.Line)
			}
		})
	}
}

func TestParseDirectiveNamesAreCaseSensitive(t *testing.T) {
	res := Weave("case.txt", "// #docregion Main\nx\n// #enddocregion main\n")

	if _, ok := res.Excerpt("Main"); !ok {
		t.Error("expected excerpt Main")
	}
	// The mismatched close targets a different region entirely.
	if len(res.Diagnostics) != 2 {
		t.Fatalf("expected not-open + never-closed diagnostics, got %v", res.Diagnostics)
	}
}
