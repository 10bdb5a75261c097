package output

import "testing"

// fakeClipboard records copied text
type fakeClipboard struct {
	copied string
}

func (f *fakeClipboard) Copy(text string) error {
	f.copied = text
	return nil
}

func TestWriterCopy(t *testing.T) {
	clip := &fakeClipboard{}
	w := NewWriter("copy").WithClipboard(clip)

	if err := w.Emit("func main() {}"); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if clip.copied != "func main() {}" {
		t.Errorf("copied = %q", clip.copied)
	}
}

func TestWriterUnknownMode(t *testing.T) {
	if err := NewWriter("teleport").Emit("x"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestWriterMode(t *testing.T) {
	if got := NewWriter("print").Mode(); got != "print" {
		t.Errorf("Mode() = %q", got)
	}
}
