package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectEvents(t *testing.T, events <-chan string, want int, timeout time.Duration) map[string]struct{} {
	t.Helper()
	got := map[string]struct{}{}
	deadline := time.After(timeout)
	for len(got) < want {
		select {
		case p, ok := <-events:
			if !ok {
				return got
			}
			got[p] = struct{}{}
		case <-deadline:
			return got
		}
	}
	return got
}

func TestStartWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, nil)
	require.Error(t, err)
}

func TestStartWatcherInitialScan(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.txt"))
	touch(t, filepath.Join(dir, "b.pdf"))
	touch(t, filepath.Join(dir, "skip.md"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, InitialScan: true}, nil)
	require.NoError(t, err)

	got := collectEvents(t, events, 2, 2*time.Second)
	assert.Contains(t, got, filepath.Join(dir, "a.txt"))
	assert.Contains(t, got, filepath.Join(dir, "b.pdf"))
	assert.NotContains(t, got, filepath.Join(dir, "skip.md"))
}

func TestStartWatcherEmitsNewFiles(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}}, nil)
	require.NoError(t, err)

	path := filepath.Join(dir, "new.txt")
	touch(t, path)

	got := collectEvents(t, events, 1, 2*time.Second)
	assert.Contains(t, got, path)
}

// A burst of creates under a tiny debounce window must not corrupt the
// pending set or lose files; every distinct path comes out exactly once
// and shutdown closes the channel cleanly mid-flight.
func TestStartWatcherDebounceBurst(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:    []string{dir},
		Debounce: time.Millisecond,
	}, nil)
	require.NoError(t, err)

	const n = 200
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			path := filepath.Join(dir, fmt.Sprintf("burst-%03d.txt", i))
			if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
				return
			}
		}
	}()
	<-done

	got := collectEvents(t, events, n, 5*time.Second)
	assert.Len(t, got, n)

	cancel()
	// The channel must close without a panic while events may still be pending.
	for range events {
	}
}

func TestStartWatcherShutdownClosesChannels(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	events, errs, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, Debounce: 10 * time.Millisecond}, nil)
	require.NoError(t, err)

	touch(t, filepath.Join(dir, "inflight.txt"))
	cancel()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				for range errs {
				}
				return
			}
		case <-timeout:
			t.Fatal("events channel did not close after cancellation")
		}
	}
}
