// Package pipeline is the on-disk collaborator around the weaver: it
// discovers source files, weaves each one, and writes rendered fragment
// files for a documentation build to consume.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/schollz/progressbar/v3"

	"excerpter/internal/render"
	"excerpter/internal/weaver"
)

// Options configures a tree weave.
type Options struct {
	Root      string   // source tree root
	OutputDir string   // fragment destination (Build only)
	Include   []string // glob patterns on slash-separated relative paths
	Exclude   []string
	Plaster   string // elision marker written into fragments
	Progress  bool   // show a progress bar on stderr
}

// FileResult pairs one source file with its weave.
type FileResult struct {
	Rel    string // slash-separated path relative to the root
	Path   string // absolute path
	Result *weaver.Result
}

// Summary reports what a Build produced.
type Summary struct {
	Files       int
	Excerpts    int
	Fragments   int
	Diagnostics []weaver.Diagnostic
}

// compilePatterns compiles glob patterns with '/' as the separator, so **
// crosses directories and * does not.
func compilePatterns(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchAny(globs []glob.Glob, rel string) bool {
	for _, g := range globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Discover walks root and returns the slash-separated relative paths of
// regular files matching the include patterns and none of the excludes.
// Hidden directories are skipped.
func Discover(root string, include, exclude []string) ([]string, error) {
	inc, err := compilePatterns(include)
	if err != nil {
		return nil, err
	}
	exc, err := compilePatterns(exclude)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if len(inc) > 0 && !matchAny(inc, rel) {
			return nil
		}
		if matchAny(exc, rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// WeaveFile reads and weaves a single file. The relative path becomes the
// source identifier tagging the result's diagnostics.
func WeaveFile(root, rel string) (FileResult, error) {
	path := filepath.Join(root, filepath.FromSlash(rel))
	data, err := os.ReadFile(path)
	if err != nil {
		return FileResult{}, err
	}
	return FileResult{
		Rel:    rel,
		Path:   path,
		Result: weaver.Weave(rel, string(data)),
	}, nil
}

// WeaveTree discovers and weaves every matching file under the root.
func WeaveTree(opts Options) ([]FileResult, error) {
	files, err := Discover(opts.Root, opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(files))
	for _, rel := range files {
		fr, err := WeaveFile(opts.Root, rel)
		if err != nil {
			return nil, err
		}
		results = append(results, fr)
	}
	return results, nil
}

// Build weaves the tree and writes one fragment file per excerpt under
// OutputDir. Markup problems never fail the build; they are collected in
// the summary for the caller to report.
func Build(opts Options) (*Summary, error) {
	files, err := Discover(opts.Root, opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.Default(int64(len(files)), "weaving")
	}

	sum := &Summary{}
	for _, rel := range files {
		fr, err := WeaveFile(opts.Root, rel)
		if err != nil {
			return nil, err
		}
		written, err := writeFragments(opts.OutputDir, fr, opts.Plaster)
		if err != nil {
			return nil, err
		}
		sum.Files++
		sum.Excerpts += len(fr.Result.Excerpts)
		sum.Fragments += written
		sum.Diagnostics = append(sum.Diagnostics, fr.Result.Diagnostics...)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return sum, nil
}

// writeFragments writes each excerpt of one file into
// <out>/<rel>.excerpts/<slug><ext>, keeping the source extension so
// downstream highlighting still works.
func writeFragments(outDir string, fr FileResult, plaster string) (int, error) {
	dir := filepath.Join(outDir, filepath.FromSlash(fr.Rel)+".excerpts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	ext := filepath.Ext(fr.Rel)
	if ext == "" {
		ext = ".txt"
	}

	rd := render.Renderer{Plaster: plaster}
	written := 0
	for _, e := range fr.Result.Excerpts {
		text := rd.RenderExcerpt(fr.Result, e)
		if text != "" {
			text += "\n"
		}
		name := filepath.Join(dir, slugify(e.Name)+ext)
		if err := os.WriteFile(name, []byte(text), 0o644); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// slugify maps an excerpt name to a filesystem-safe file stem.
func slugify(name string) string {
	if name == weaver.FullDocument {
		return "full"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// FormatDiagnostic renders a diagnostic for CLI display, 1-based lines.
func FormatDiagnostic(d weaver.Diagnostic) string {
	if d.Line == weaver.NoLine {
		return fmt.Sprintf("warning: %s: %s", d.Source, d.Message)
	}
	return fmt.Sprintf("warning: %s:%d: %s", d.Source, d.Line+1, d.Message)
}
