// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

// startWatch runs Watch in the background and returns the call counter and a
// channel closed when Watch returns.
func startWatch(t *testing.T, ctx context.Context, source string, debounce time.Duration, fn Func) (*atomic.Int32, <-chan error) {
	t.Helper()
	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, source, debounce, quietLogger(), func(ctx context.Context) error {
			calls.Add(1)
			if fn != nil {
				return fn(ctx)
			}
			return nil
		})
	}()
	time.Sleep(100 * time.Millisecond)
	return &calls, done
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatch_RunsOnSourceChange(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "index.adoc")
	writeFile(t, source, "= Book\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls, _ := startWatch(t, ctx, source, 50*time.Millisecond, nil)

	writeFile(t, source, "= Book\n\n== Chapter\n")

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return calls.Load() >= 1
	}, "watcher did not run after source change")
}

func TestWatch_IgnoresGeneratedFiles(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "index.adoc")
	writeFile(t, source, "= Book\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls, _ := startWatch(t, ctx, source, 50*time.Millisecond, nil)

	writeFile(t, filepath.Join(dir, "index.xml"), "<article/>")
	writeFile(t, filepath.Join(dir, "index.md"), "# Book")
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, int32(0), calls.Load())
}

func TestWatch_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "index.adoc")
	writeFile(t, source, "= Book\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls, _ := startWatch(t, ctx, source, 300*time.Millisecond, nil)

	writeFile(t, source, "= Book\n\n== One\n")
	writeFile(t, filepath.Join(dir, "chapter-1.adoc"), "== One\n")
	writeFile(t, filepath.Join(dir, "chapter-2.adoc"), "== Two\n")

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return calls.Load() >= 1
	}, "watcher did not run after burst")
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatch_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "index.adoc")
	writeFile(t, source, "= Book\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls, _ := startWatch(t, ctx, source, 50*time.Millisecond, nil)

	sub := filepath.Join(dir, "chapters")
	require.NoError(t, os.Mkdir(sub, 0o755))
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(sub, "intro.adoc"), "== Intro\n")

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return calls.Load() >= 1
	}, "watcher did not pick up file in new subdirectory")
}

func TestWatch_ErrorsAreNotFatal(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "index.adoc")
	writeFile(t, source, "= Book\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls, done := startWatch(t, ctx, source, 50*time.Millisecond, func(context.Context) error {
		return errors.New("asciidoctor failed")
	})

	writeFile(t, source, "= Book v2\n")
	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return calls.Load() >= 1
	}, "first run missing")

	time.Sleep(100 * time.Millisecond)
	writeFile(t, source, "= Book v3\n")
	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return calls.Load() >= 2
	}, "watcher stopped after a failed run")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "gone", "index.adoc"), 0, quietLogger(), func(context.Context) error { return nil })
	require.Error(t, err)
}

func TestIsSource(t *testing.T) {
	assert.True(t, IsSource("docs/index.adoc"))
	assert.True(t, IsSource("docs/INDEX.ADOC"))
	assert.False(t, IsSource("docs/index.md"))
	assert.False(t, IsSource("docs/index.xml"))
	assert.False(t, IsSource("docs/adoc"))
}
