package output

import (
	"fmt"
	"os/exec"
	"strings"
)

// ============================================================================
// Clipboard Interface
// ============================================================================

// Clipboard defines the interface for clipboard operations
type Clipboard interface {
	Copy(text string) error
}

// systemClipboard implements Clipboard using system commands
type systemClipboard struct{}

// Copy copies text to the system clipboard
func (c *systemClipboard) Copy(text string) error {
	cmd := c.findClipboardCommand()
	if cmd == nil {
		// No clipboard tool found, just print
		fmt.Println(text)
		return nil
	}
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// findClipboardCommand returns the appropriate clipboard command for the system
func (c *systemClipboard) findClipboardCommand() *exec.Cmd {
	switch {
	case commandExists("wl-copy"):
		return exec.Command("wl-copy")
	case commandExists("xclip"):
		return exec.Command("xclip", "-selection", "clipboard")
	case commandExists("xsel"):
		return exec.Command("xsel", "--clipboard", "--input")
	case commandExists("pbcopy"):
		return exec.Command("pbcopy")
	default:
		return nil
	}
}

// commandExists checks if a command is available in PATH
func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ============================================================================
// Writer
// ============================================================================

// Writer emits a selected excerpt's rendered text according to the
// configured output mode.
type Writer struct {
	mode      string
	clipboard Clipboard
}

// NewWriter creates a writer for the given mode ("print" or "copy")
func NewWriter(mode string) *Writer {
	return &Writer{
		mode:      mode,
		clipboard: &systemClipboard{},
	}
}

// WithClipboard sets a custom clipboard implementation (useful for testing)
func (w *Writer) WithClipboard(c Clipboard) *Writer {
	w.clipboard = c
	return w
}

// Mode returns the writer's output mode
func (w *Writer) Mode() string {
	return w.mode
}

// Emit delivers text according to the output mode
func (w *Writer) Emit(text string) error {
	switch w.mode {
	case "copy":
		return w.clipboard.Copy(text)
	case "print", "":
		fmt.Println(text)
		return nil
	default:
		return fmt.Errorf("unknown output mode: %s", w.mode)
	}
}
