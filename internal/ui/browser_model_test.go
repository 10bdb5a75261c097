package ui

import (
	"testing"

	"excerpter/internal/pipeline"
	"excerpter/internal/weaver"
)

func itemFor(t *testing.T, source, text, name string) excerptItem {
	t.Helper()
	res := weaver.Weave(source, text)
	e, ok := res.Excerpt(name)
	if !ok {
		t.Fatalf("excerpt %q not found in %q", name, source)
	}
	return newExcerptItem(res, e, "/src/"+source)
}

func TestMatchesQuery(t *testing.T) {
	item := itemFor(t, "lib/main.go", "// #docregion setup\nserver := newServer()\n// #enddocregion setup\n", "setup")

	tests := []struct {
		name  string
		words []string
		want  bool
	}{
		{"empty query", nil, true},
		{"matches excerpt name", []string{"setup"}, true},
		{"matches file", []string{"main.go"}, true},
		{"matches folder", []string{"lib"}, true},
		{"matches first content line", []string{"newserver"}, true},
		{"all words must match", []string{"setup", "main"}, true},
		{"one word misses", []string{"setup", "teardown"}, false},
		{"no match", []string{"zzz"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := item.matchesQuery(tt.words); got != tt.want {
				t.Errorf("matchesQuery(%v) = %v, want %v", tt.words, got, tt.want)
			}
		})
	}
}

func TestRangeLabel(t *testing.T) {
	tests := []struct {
		name string
		text string
		reg  string
		want string
	}{
		{
			"single line",
			"// #docregion r\nx\n// #enddocregion r\n",
			"r",
			"lines 2",
		},
		{
			"span",
			"// #docregion r\nx\ny\n// #enddocregion r\n",
			"r",
			"lines 2-3",
		},
		{
			"discontiguous",
			"// #docregion r\nx\n// #enddocregion r\ngap\n// #docregion r\ny\n// #enddocregion r\n",
			"r",
			"lines 2, 6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := itemFor(t, "f.go", tt.text, tt.reg)
			if got := item.rangeLabel(); got != tt.want {
				t.Errorf("rangeLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildItemsSkipsEmptyExcerpts(t *testing.T) {
	res := weaver.Weave("e.go", "// #docregion empty\n// #enddocregion empty\nx\n")
	items := buildItems([]pipeline.FileResult{{Rel: "e.go", Path: "/src/e.go", Result: res}})

	if len(items) != 1 {
		t.Fatalf("expected only the full document item, got %d", len(items))
	}
	if items[0].excerpt.Name != weaver.FullDocument {
		t.Errorf("unexpected item %q", items[0].excerpt.Name)
	}
}

func TestFilterItems(t *testing.T) {
	items := []excerptItem{
		itemFor(t, "a.go", "// #docregion alpha\n1\n// #enddocregion alpha\n", "alpha"),
		itemFor(t, "b.go", "// #docregion beta\n2\n// #enddocregion beta\n", "beta"),
	}
	m := newBrowserModel(items)

	m.textInput.SetValue("beta")
	m.filterItems()
	if len(m.filtered) != 1 || m.filtered[0].excerpt.Name != "beta" {
		t.Errorf("filtered = %d items", len(m.filtered))
	}

	m.textInput.SetValue("")
	m.filterItems()
	if len(m.filtered) != 2 {
		t.Errorf("reset filter: got %d items, want 2", len(m.filtered))
	}
}
