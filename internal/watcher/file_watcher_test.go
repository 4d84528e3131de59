package watcher

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

	fw, err := NewFileWatcher(root, []string{".py"}, 50*time.Millisecond)
	require.NoError(t, err)
	defer fw.Stop()

	changes := make(chan []string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx, func(files []string) {
		select {
		case changes <- files:
		default:
		}
	}))

	target := filepath.Join(root, "module.py")
	require.NoError(t, os.WriteFile(target, []byte("x = 1\n"), 0o644))

	select {
	case files := <-changes:
		assert.Contains(t, files, target)
	case <-time.After(5 * time.Second):
		t.Fatal("no change batch within timeout")
	}
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	root := t.TempDir()

	fw, err := NewFileWatcher(root, []string{".py"}, 50*time.Millisecond)
	require.NoError(t, err)
	defer fw.Stop()

	changes := make(chan []string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx, func(files []string) {
		select {
		case changes <- files:
		default:
		}
	}))

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi"), 0o644))

	select {
	case files := <-changes:
		t.Fatalf("unexpected callback for %v", files)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherPauseAccumulates(t *testing.T) {
	root := t.TempDir()

	fw, err := NewFileWatcher(root, []string{".py"}, 50*time.Millisecond)
	require.NoError(t, err)
	defer fw.Stop()

	changes := make(chan []string, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx, func(files []string) {
		changes <- files
	}))

	fw.Pause()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.py"), []byte("a = 1\n"), 0o644))

	select {
	case files := <-changes:
		t.Fatalf("callback fired while paused: %v", files)
	case <-time.After(500 * time.Millisecond):
	}

	fw.Resume()
	select {
	case files := <-changes:
		assert.NotEmpty(t, files)
	case <-time.After(5 * time.Second):
		t.Fatal("no batch after resume")
	}
}

func TestWatcherStopIdempotent(t *testing.T) {
	fw, err := NewFileWatcher(t.TempDir(), []string{".py"}, 50*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, fw.Stop())
	require.NoError(t, fw.Stop())
}

func TestWatcherMissingRoot(t *testing.T) {
	_, err := NewFileWatcher(filepath.Join(t.TempDir(), "does-not-exist"), []string{".py"}, 0)
	assert.Error(t, err)
}
