// Package render materializes excerpt text from a weave result. It is the
// downstream consumer of the weaver: it slices the original lines by an
// excerpt's ranges and never touches the filesystem.
package render

import (
	"fmt"
	"strings"

	"excerpter/internal/weaver"
)

// Renderer controls how an excerpt is materialized.
type Renderer struct {
	// Plaster, when non-empty, is emitted as its own line between
	// discontiguous ranges to mark elided content (e.g. "···").
	Plaster string
	// LineNumbers prefixes every line with its original 1-based number.
	LineNumbers bool
}

// Lines returns the content lines covered by the excerpt's ranges, in
// order. Directive lines inside a range are skipped: they are markup, not
// content.
func Lines(res *weaver.Result, e *weaver.Excerpt) []string {
	var out []string
	for _, r := range e.Ranges {
		for i := r.Start; i < r.End; i++ {
			if res.IsDirective(i) {
				continue
			}
			out = append(out, res.Lines[i])
		}
	}
	return out
}

// Render materializes the named excerpt. The second return is false when
// the result has no excerpt with that name.
func (rd Renderer) Render(res *weaver.Result, name string) (string, bool) {
	e, ok := res.Excerpt(name)
	if !ok {
		return "", false
	}
	return rd.RenderExcerpt(res, e), true
}

// RenderExcerpt materializes one excerpt. With zero options the output is
// exactly the covered content lines joined by newlines, so slicing and
// re-rendering loses nothing.
func (rd Renderer) RenderExcerpt(res *weaver.Result, e *weaver.Excerpt) string {
	if !rd.LineNumbers && rd.Plaster == "" {
		return strings.Join(Lines(res, e), "\n")
	}

	width := numberWidth(e)
	var b strings.Builder
	for ri, r := range e.Ranges {
		// Plaster marks elided content; a gap holding nothing but
		// stripped directive lines gets none.
		if ri > 0 && rd.Plaster != "" && gapHasContent(res, e.Ranges[ri-1].End, r.Start) {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			if rd.LineNumbers {
				b.WriteString(strings.Repeat(" ", width) + "  ")
			}
			b.WriteString(rd.Plaster)
		}
		for i := r.Start; i < r.End; i++ {
			if res.IsDirective(i) {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			if rd.LineNumbers {
				fmt.Fprintf(&b, "%*d  ", width, i+1)
			}
			b.WriteString(res.Lines[i])
		}
	}
	return b.String()
}

// gapHasContent reports whether any line in [from, to) is a content line.
func gapHasContent(res *weaver.Result, from, to int) bool {
	for i := from; i < to; i++ {
		if !res.IsDirective(i) {
			return true
		}
	}
	return false
}

// numberWidth returns the gutter width needed for the excerpt's highest
// original line number.
func numberWidth(e *weaver.Excerpt) int {
	last := 0
	for _, r := range e.Ranges {
		if r.End > last {
			last = r.End
		}
	}
	return len(fmt.Sprint(last))
}
