package ui

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"excerpter/internal/config"
	"excerpter/internal/render"
	"excerpter/internal/weaver"
)

// ============================================================================
// String Builder Pool - reduces GC pressure from rendering
// ============================================================================

var builderPool = sync.Pool{
	New: func() interface{} {
		return &strings.Builder{}
	},
}

func getBuilder() *strings.Builder {
	b := builderPool.Get().(*strings.Builder)
	b.Reset()
	return b
}

func putBuilder(b *strings.Builder) {
	if b.Cap() < 64*1024 { // Don't pool huge builders
		builderPool.Put(b)
	}
}

// ============================================================================
// Excerpt Item
// ============================================================================

// excerptItem pairs one excerpt with its weave result and display metadata
type excerptItem struct {
	res     *weaver.Result
	excerpt *weaver.Excerpt
	path    string // absolute source path, for Ctrl+O
	folder  string
	file    string
	first   string // first content line, for the list view
}

// newExcerptItem creates an excerptItem from a weave result entry
func newExcerptItem(res *weaver.Result, e *weaver.Excerpt, path string) excerptItem {
	folder := filepath.Base(filepath.Dir(res.Source))
	if folder == "." {
		folder = ""
	}

	first := ""
	if lines := render.Lines(res, e); len(lines) > 0 {
		first = strings.TrimSpace(lines[0])
	}

	return excerptItem{
		res:     res,
		excerpt: e,
		path:    path,
		folder:  folder,
		file:    filepath.Base(res.Source),
		first:   first,
	}
}

// rangeLabel renders the excerpt's 1-based line spans for display
func (item *excerptItem) rangeLabel() string {
	parts := make([]string, 0, len(item.excerpt.Ranges))
	for _, r := range item.excerpt.Ranges {
		if r.End-r.Start == 1 {
			parts = append(parts, fmt.Sprint(r.Start+1))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", r.Start+1, r.End))
		}
	}
	if len(parts) == 0 {
		return "empty"
	}
	return "lines " + strings.Join(parts, ", ")
}

// matchesQuery checks if the item matches all search words
// Uses case-insensitive substring matching on original strings
func (item *excerptItem) matchesQuery(words []string) bool {
	for _, word := range words {
		if !item.containsWord(word) {
			return false
		}
	}
	return true
}

// containsWord checks if any field contains the word (case-insensitive)
func (item *excerptItem) containsWord(word string) bool {
	if containsIgnoreCase(item.folder, word) {
		return true
	}
	if containsIgnoreCase(item.file, word) {
		return true
	}
	if containsIgnoreCase(item.excerpt.Name, word) {
		return true
	}
	return containsIgnoreCase(item.first, word)
}

// containsIgnoreCase is a case-insensitive substring check; callers pass
// a pre-lowercased word
func containsIgnoreCase(s, word string) bool {
	if len(word) > len(s) {
		return false
	}
	return strings.Contains(strings.ToLower(s), word)
}

// ============================================================================
// Column Config
// ============================================================================

// columnConfig holds display column widths and gaps
type columnConfig struct {
	nameWidth int
	pathWidth int
	gap       int
}

// loadColumnConfig loads column configuration from config
func loadColumnConfig() columnConfig {
	return columnConfig{
		nameWidth: config.GetColumnName(),
		pathWidth: config.GetColumnPath(),
		gap:       config.GetColumnGap(),
	}
}

// ============================================================================
// Debounce
// ============================================================================

// filterMsg triggers filtering after debounce
type filterMsg struct{}

// debounceFilter returns a command that triggers filtering after a delay
func debounceFilter() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return filterMsg{}
	})
}

// ============================================================================
// Browser Model
// ============================================================================

// browserModel is the Bubble Tea model for excerpt browsing
type browserModel struct {
	width     int
	height    int
	textInput textinput.Model
	quitting  bool

	items    []excerptItem
	filtered []excerptItem
	cursor   int
	offset   int // viewport scroll offset
	selected *excerptItem
	columns  columnConfig
}

// newBrowserModel creates a browserModel over the given items
func newBrowserModel(items []excerptItem) browserModel {
	ti := textinput.New()
	ti.Placeholder = "Type to search..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	return browserModel{
		items:     items,
		filtered:  items,
		textInput: ti,
		columns:   loadColumnConfig(),
	}
}

// Init implements tea.Model
func (m browserModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 4
	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}
	case filterMsg:
		m.filterItems()
		return m, nil
	}

	prevQuery := m.textInput.Value()
	var cmds []tea.Cmd
	var tiCmd tea.Cmd
	m.textInput, tiCmd = m.textInput.Update(msg)
	cmds = append(cmds, tiCmd)

	// Only trigger debounced filter if query changed
	if m.textInput.Value() != prevQuery {
		cmds = append(cmds, debounceFilter())
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes keyboard input
func (m *browserModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return tea.Quit
	case "enter":
		if m.cursor < len(m.filtered) {
			m.selected = &m.filtered[m.cursor]
			m.quitting = true
			return tea.Quit
		}
	case "up", "ctrl+p":
		m.moveCursor(-1)
	case "down", "ctrl+n":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-10)
	case "pgdown":
		m.moveCursor(10)
	case "home", "ctrl+a":
		m.cursor = 0
	case "end", "ctrl+e":
		m.cursor = max(0, len(m.filtered)-1)
	case "ctrl+o":
		if m.cursor < len(m.filtered) {
			openFileInViewer(m.filtered[m.cursor].path)
		}
	}
	return nil
}

// moveCursor moves the cursor by delta, clamping to valid range
func (m *browserModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(0, len(m.filtered)-1))
}

// filterItems filters the item list based on the search query
func (m *browserModel) filterItems() {
	query := strings.TrimSpace(m.textInput.Value())

	if query == "" {
		m.filtered = m.items
	} else {
		words := strings.Fields(strings.ToLower(query))
		m.filtered = make([]excerptItem, 0, len(m.items))
		for i := range m.items {
			if m.items[i].matchesQuery(words) {
				m.filtered = append(m.filtered, m.items[i])
			}
		}
	}

	m.cursor = clamp(m.cursor, 0, max(0, len(m.filtered)-1))
	m.offset = 0
}

// View implements tea.Model
func (m browserModel) View() string {
	if m.quitting {
		return ""
	}

	width := maxInt(m.width, 80)
	height := maxInt(m.height, 24)

	preview := m.renderPreview(width)
	previewLines := countLines(preview)

	inputLines := 3 // divider + info + input
	listHeight := maxInt(height-previewLines-inputLines, 3)
	list := m.renderList(listHeight)
	listLines := countLines(list)

	padding := maxInt(height-previewLines-listLines-inputLines, 0)

	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(preview)
	b.WriteString(list)
	b.WriteString(strings.Repeat("\n", padding))
	b.WriteString(m.renderInput(width))

	return b.String()
}

// renderPreview renders the preview pane for the cursored excerpt
func (m browserModel) renderPreview(width int) string {
	b := getBuilder()
	defer putBuilder(b)
	lines := 0
	const maxLines = 10

	if m.cursor < len(m.filtered) {
		item := m.filtered[m.cursor]

		b.WriteString(styles.PreviewPath.Render(item.res.Source))
		b.WriteString("  ")
		b.WriteString(styles.PreviewName.Render(item.excerpt.Name))
		b.WriteString("  ")
		b.WriteString(styles.Dim.Render(item.rangeLabel()))
		b.WriteString("\n")
		lines++

		snippet := render.Renderer{LineNumbers: true, Plaster: "···"}.
			RenderExcerpt(item.res, item.excerpt)
		snippet = truncateLines(snippet, maxLines-lines-1, 0)
		for _, line := range strings.Split(snippet, "\n") {
			b.WriteString(styles.PreviewCode.Render(truncateString(line, width-2)))
			b.WriteString("\n")
			lines++
		}
	}

	// Pad to fixed height
	for lines < maxLines {
		b.WriteString("\n")
		lines++
	}

	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")

	return b.String()
}

// renderList renders the scrollable excerpt list
func (m *browserModel) renderList(maxHeight int) string {
	if len(m.filtered) == 0 {
		return ""
	}

	start, end := scrollWindow(m.cursor, len(m.filtered), maxHeight, &m.offset)
	gap := strings.Repeat(" ", m.columns.gap)

	b := getBuilder()
	defer putBuilder(b)
	for i := start; i < end; i++ {
		b.WriteString(m.renderListItem(m.filtered[i], i == m.cursor, gap))
		b.WriteString("\n")
	}

	return b.String()
}

// renderListItem renders a single list row
func (m browserModel) renderListItem(item excerptItem, selected bool, gap string) string {
	nStyle, pStyle, cStyle := styles.Name, styles.Path, styles.Code
	if selected {
		nStyle = styles.WithSelection(nStyle)
		pStyle = styles.WithSelection(pStyle)
		cStyle = styles.WithSelection(cStyle)
	}

	name := truncateString(item.excerpt.Name, m.columns.nameWidth)
	namePadded := fmt.Sprintf("%-*s", m.columns.nameWidth, name)

	path := truncateString(item.res.Source, m.columns.pathWidth)
	pathPadded := fmt.Sprintf("%-*s", m.columns.pathWidth, path)

	code := truncateString(item.first, m.codeWidth())

	gapStr := gap
	if selected {
		gapStr = styles.Selected.Render(gap)
	}

	line := nStyle.Render(namePadded) + gapStr + pStyle.Render(pathPadded) + gapStr + cStyle.Render(code)
	if selected {
		return styles.Cursor.Render("▶ ") + line
	}
	return "  " + line
}

// codeWidth returns the available width for the code column
func (m browserModel) codeWidth() int {
	width := 60
	if m.width > 0 {
		used := m.columns.nameWidth + m.columns.gap*2 + m.columns.pathWidth + 4
		if available := m.width - used; available > 0 && available < width {
			width = available
		}
	}
	return width
}

// renderInput renders the input section at the bottom
func (m browserModel) renderInput(width int) string {
	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render(fmt.Sprintf("  %d/%d", len(m.filtered), len(m.items))))
	b.WriteString(" • ")
	b.WriteString(styles.Dim.Render("Ctrl+O open"))
	b.WriteString(" • ")
	b.WriteString(styles.Dim.Render("ESC exit"))
	b.WriteString("\n")
	b.WriteString(m.textInput.View())
	return b.String()
}

// ============================================================================
// Helpers
// ============================================================================

// clamp restricts v to the range [minV, maxV]
func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// maxInt returns the larger of a and b
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// countLines counts the number of lines in a string
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// scrollWindow calculates the visible range for a scrollable list
func scrollWindow(cursor, total, height int, offset *int) (start, end int) {
	if cursor < *offset {
		*offset = cursor
	}
	if cursor >= *offset+height {
		*offset = cursor - height + 1
	}
	maxOffset := max(0, total-height)
	*offset = clamp(*offset, 0, maxOffset)

	start = *offset
	end = min(start+height, total)
	return
}

// truncateString truncates a string to maxLen with ellipsis
func truncateString(s string, maxLen int) string {
	if maxLen <= 3 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// truncateLines truncates text to maxLines with optional maxLen per content
func truncateLines(text string, maxLines int, maxLen int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > maxLines {
		text = strings.Join(lines[:maxLines], "\n") + "..."
	}
	if maxLen > 0 && len(text) > maxLen {
		text = text[:maxLen-3] + "..."
	}
	return text
}

// openFileInViewer opens the file in the configured editor or system default
func openFileInViewer(filePath string) {
	var cmd *exec.Cmd

	if editor := config.GetEditor(); editor != "" {
		cmd = exec.Command(editor, filePath)
	} else {
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", filePath)
		case "windows":
			cmd = exec.Command("cmd", "/c", "start", "", filePath)
		default: // linux, freebsd, etc.
			cmd = exec.Command("xdg-open", filePath)
		}
	}
	_ = cmd.Start()
}
