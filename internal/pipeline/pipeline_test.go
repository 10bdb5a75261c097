package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"excerpter/internal/weaver"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "sub/util.go", "package sub\n")
	writeFile(t, root, "notes.txt", "notes\n")
	writeFile(t, root, ".hidden/secret.go", "package hidden\n")

	files, err := Discover(root, []string{"**.go"}, []string{"sub/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, files)
}

func TestDiscoverIncludesEverythingByDefaultPattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "a\n")
	writeFile(t, root, "b/c.txt", "c\n")

	files, err := Discover(root, []string{"**"}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "b/c.txt"}, files)
}

func TestDiscoverBadPattern(t *testing.T) {
	root := t.TempDir()
	_, err := Discover(root, []string{"[unterminated"}, nil)
	assert.Error(t, err)
}

func TestWeaveFileTagsDiagnosticsWithRelativePath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/broken.go", "// #docregion open\nvar x = 1\n")

	fr, err := WeaveFile(root, "pkg/broken.go")
	require.NoError(t, err)
	require.Len(t, fr.Result.Diagnostics, 1)
	assert.Equal(t, "pkg/broken.go", fr.Result.Diagnostics[0].Source)
}

func TestWeaveTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "// #docregion r\nx\n// #enddocregion r\n")
	writeFile(t, root, "b.go", "plain\n")

	results, err := WeaveTree(Options{Root: root, Include: []string{"**.go"}})
	require.NoError(t, err)
	require.Len(t, results, 2)

	a := results[0]
	assert.Equal(t, "a.go", a.Rel)
	e, ok := a.Result.Excerpt("r")
	require.True(t, ok)
	assert.Equal(t, []weaver.Range{{Start: 1, End: 2}}, e.Ranges)
}

func TestBuildWritesFragments(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeFile(t, root, "lib/main.go", `// #docregion setup
a := 1
// #enddocregion setup
b := 2
// #docregion setup
c := 3
// #enddocregion setup
`)

	sum, err := Build(Options{
		Root:      root,
		OutputDir: out,
		Include:   []string{"**.go"},
		Plaster:   "// ···",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Files)
	assert.Equal(t, 2, sum.Excerpts)
	assert.Equal(t, 2, sum.Fragments)
	assert.Empty(t, sum.Diagnostics)

	full, err := os.ReadFile(filepath.Join(out, "lib", "main.go.excerpts", "full.go"))
	require.NoError(t, err)
	assert.Equal(t, "a := 1\nb := 2\nc := 3\n", string(full))

	setup, err := os.ReadFile(filepath.Join(out, "lib", "main.go.excerpts", "setup.go"))
	require.NoError(t, err)
	assert.Equal(t, "a := 1\n// ···\nc := 3\n", string(setup))
}

func TestBuildCollectsDiagnostics(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeFile(t, root, "bad.go", "// #enddocregion nope\nx\n")

	sum, err := Build(Options{Root: root, OutputDir: out, Include: []string{"**.go"}})
	require.NoError(t, err)
	require.Len(t, sum.Diagnostics, 1)
	assert.Equal(t, "bad.go", sum.Diagnostics[0].Source)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "full", slugify(weaver.FullDocument))
	assert.Equal(t, "main-setup", slugify("main-setup"))
	assert.Equal(t, "a_b", slugify("a b"))
	assert.Equal(t, "q_r.1", slugify("q/r.1"))
}

func TestFormatDiagnostic(t *testing.T) {
	d := weaver.Diagnostic{Source: "a.go", Message: `region "x" is not open`, Line: 4}
	assert.Equal(t, `warning: a.go:5: region "x" is not open`, FormatDiagnostic(d))

	d.Line = weaver.NoLine
	assert.Equal(t, `warning: a.go: region "x" is not open`, FormatDiagnostic(d))
}
