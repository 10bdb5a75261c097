package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsChangedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")

	w, err := NewWatcher(root, []string{"**.go"}, nil)
	require.NoError(t, err)
	w.SetDebounce(50 * time.Millisecond)

	changed := make(chan []string, 1)
	require.NoError(t, w.Start(context.Background(), func(rels []string) {
		select {
		case changed <- rels:
		default:
		}
	}))
	defer w.Stop()

	// Give the watch goroutine a moment before generating events.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, root, "a.go", "package a // changed\n")

	select {
	case rels := <-changed:
		assert.Equal(t, []string{"a.go"}, rels)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestWatcherIgnoresNonMatchingFiles(t *testing.T) {
	root := t.TempDir()

	w, err := NewWatcher(root, []string{"**.go"}, nil)
	require.NoError(t, err)
	w.SetDebounce(50 * time.Millisecond)

	changed := make(chan []string, 1)
	require.NoError(t, w.Start(context.Background(), func(rels []string) {
		select {
		case changed <- rels:
		default:
		}
	}))
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, root, "notes.txt", "ignored\n")

	select {
	case rels := <-changed:
		t.Fatalf("unexpected notification: %v", rels)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()

	w, err := NewWatcher(root, []string{"**.go"}, nil)
	require.NoError(t, err)
	w.SetDebounce(50 * time.Millisecond)

	changed := make(chan []string, 1)
	require.NoError(t, w.Start(context.Background(), func(rels []string) {
		select {
		case changed <- rels:
		default:
		}
	}))
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	// Let the new directory get registered before writing into it.
	time.Sleep(200 * time.Millisecond)
	writeFile(t, root, "sub/b.go", "package sub\n")

	select {
	case rels := <-changed:
		assert.Equal(t, []string{"sub/b.go"}, rels)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	root := t.TempDir()

	w, err := NewWatcher(root, []string{"**"}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background(), func([]string) {}))

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
