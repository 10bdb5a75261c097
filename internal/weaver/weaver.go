// Package weaver extracts named, possibly overlapping sub-ranges of
// line-oriented source text, delimited by paired #docregion /
// #enddocregion comment markers. The weave is a pure function of
// (source identifier, source text): no globals, no I/O, safe to run
// concurrently over different documents.
package weaver

import "strings"

// FullDocument is the distinguished excerpt name covering the whole
// document with directive lines removed. It is always present and always
// first in a result.
const FullDocument = "(full)"

// Range is a contiguous run of line indices, start inclusive, end
// exclusive. Start < End always holds for stored ranges.
type Range struct {
	Start int
	End   int
}

// Excerpt is the finalized set of ranges for one region name, ascending
// and already merged.
type Excerpt struct {
	Name   string
	Ranges []Range
}

// Result is a finished weave. Excerpts holds FullDocument first, then
// each region in the order its first open directive appeared.
type Result struct {
	Source      string
	Lines       []string
	Excerpts    []*Excerpt
	Diagnostics []Diagnostic

	byName     map[string]*Excerpt
	directives map[int]bool
}

// Excerpt returns the excerpt for name, if any.
func (r *Result) Excerpt(name string) (*Excerpt, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// IsDirective reports whether line index i held a directive.
func (r *Result) IsDirective(i int) bool {
	return r.directives[i]
}

// SplitLines splits source text on line terminators. A trailing
// terminator does not produce a phantom empty final line; interior empty
// lines are real content lines. CR-LF terminators are tolerated.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// regionState is the tracker's per-name record. pending is the start of
// the range currently being accumulated, or -1 when none is.
type regionState struct {
	open    bool
	pending int
}

// Weave runs the full pass over text: classify each line, track region
// state transitions, and assemble the per-name range lists. source is an
// opaque identifier used only to tag diagnostics. Weave always returns a
// usable result; markup problems surface as diagnostics, never errors.
func Weave(source, text string) *Result {
	lines := SplitLines(text)

	full := &Excerpt{Name: FullDocument}
	res := &Result{
		Source:     source,
		Lines:      lines,
		Excerpts:   []*Excerpt{full},
		byName:     map[string]*Excerpt{FullDocument: full},
		directives: make(map[int]bool),
	}

	states := make(map[string]*regionState)
	var order []string
	fullPending := NoLine

	for i, line := range lines {
		dir, ok := ParseDirective(line, i)
		if !ok {
			// Content line: start or extend the pending run for the
			// full document and every open region.
			if fullPending == NoLine {
				fullPending = i
			}
			for _, name := range order {
				if st := states[name]; st.open && st.pending == NoLine {
					st.pending = i
				}
			}
			continue
		}

		// A directive line is never part of a range and ends every run
		// in progress.
		res.directives[i] = true
		if fullPending != NoLine {
			full.Ranges = append(full.Ranges, Range{fullPending, i})
			fullPending = NoLine
		}
		for _, name := range order {
			if st := states[name]; st.pending != NoLine {
				res.byName[name].Ranges = append(res.byName[name].Ranges, Range{st.pending, i})
				st.pending = NoLine
			}
		}

		switch dir.Kind {
		case Open:
			for _, name := range dir.Names {
				st := states[name]
				if st == nil {
					states[name] = &regionState{open: true, pending: NoLine}
					order = append(order, name)
					e := &Excerpt{Name: name}
					res.Excerpts = append(res.Excerpts, e)
					res.byName[name] = e
					continue
				}
				if st.open {
					res.Diagnostics = append(res.Diagnostics, regionAlreadyOpen(source, name, i))
					continue
				}
				st.open = true
			}
		case Close:
			for _, name := range dir.Names {
				st := states[name]
				if st == nil || !st.open {
					res.Diagnostics = append(res.Diagnostics, regionNotOpen(source, name, i))
					continue
				}
				st.open = false
			}
		}
	}

	// EOF finalizes every still-pending run; regions left open are
	// implicitly closed and reported.
	if fullPending != NoLine {
		full.Ranges = append(full.Ranges, Range{fullPending, len(lines)})
	}
	for _, name := range order {
		st := states[name]
		if st.pending != NoLine {
			res.byName[name].Ranges = append(res.byName[name].Ranges, Range{st.pending, len(lines)})
		}
		if st.open {
			res.Diagnostics = append(res.Diagnostics, regionNeverClosed(source, name))
		}
	}

	// Assembly: within a named region, runs separated only by directive
	// lines are contiguous once those lines are stripped, so merge them.
	// The full document keeps its splits: a directive always breaks it.
	for _, name := range order {
		e := res.byName[name]
		e.Ranges = res.mergeAcrossDirectives(e.Ranges)
	}

	return res
}

// mergeAcrossDirectives folds consecutive ranges whose gap holds no
// content lines into one range.
func (r *Result) mergeAcrossDirectives(ranges []Range) []Range {
	if len(ranges) < 2 {
		return ranges
	}
	merged := ranges[:1]
	for _, next := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.directivesOnly(last.End, next.Start) {
			last.End = next.End
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// directivesOnly reports whether every line index in [from, to) is a
// directive line.
func (r *Result) directivesOnly(from, to int) bool {
	for i := from; i < to; i++ {
		if !r.directives[i] {
			return false
		}
	}
	return true
}
