package ui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"excerpter/internal/config"
	"excerpter/internal/output"
	"excerpter/internal/pipeline"
	"excerpter/internal/render"
)

// getTTY returns file handles for TUI input/output
// Uses /dev/tty to bypass shell pipes and command substitution
func getTTY() (in *os.File, out *os.File, cleanup func()) {
	var closers []func()

	// Check if stdout is a terminal
	// If not (e.g., piped or captured by $()), use /dev/tty
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) == 0 {
		// stdout is NOT a terminal - we're being captured
		out, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			out = os.Stderr // Last resort fallback
		} else {
			closers = append(closers, func() { out.Close() })
		}

		in, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			in = os.Stdin
		} else {
			closers = append(closers, func() { in.Close() })
		}

		// Tell lipgloss to use the TTY for color detection
		lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(out))

		return in, out, func() {
			for _, c := range closers {
				c()
			}
		}
	}

	// stdout IS a terminal - use normal stdin/stdout
	return os.Stdin, os.Stdout, func() {}
}

// buildItems flattens weave results into browsable items, skipping
// excerpts that cover no lines
func buildItems(results []pipeline.FileResult) []excerptItem {
	var items []excerptItem
	for _, fr := range results {
		for _, e := range fr.Result.Excerpts {
			if len(e.Ranges) == 0 {
				continue
			}
			items = append(items, newExcerptItem(fr.Result, e, fr.Path))
		}
	}
	return items
}

// Run launches the excerpt browser over the given weave results. The
// selected excerpt is rendered with the configured plaster and line
// number settings and emitted through the configured output mode.
func Run(results []pipeline.FileResult, initialQuery string) error {
	items := buildItems(results)
	if len(items) == 0 {
		return fmt.Errorf("no excerpts found")
	}

	m := newBrowserModel(items)
	if initialQuery != "" {
		m.textInput.SetValue(initialQuery)
		m.filterItems()
	}

	ttyIn, ttyOut, cleanup := getTTY()
	RefreshStyles() // Refresh after getTTY sets up the renderer
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(ttyOut), tea.WithInput(ttyIn))
	finalModel, err := p.Run()
	cleanup()

	if err != nil {
		return err
	}

	result := finalModel.(browserModel)
	if result.selected == nil {
		return nil
	}

	item := result.selected
	text := render.Renderer{
		Plaster:     config.GetPlaster(),
		LineNumbers: config.GetLineNumbers(),
	}.RenderExcerpt(item.res, item.excerpt)

	return output.NewWriter(config.GetOutput()).Emit(text)
}
