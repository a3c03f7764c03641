package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	fw, err := New(path, 50*time.Millisecond, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))
	defer fw.Stop()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`[{"name": "x"}]`), 0o644))
	}

	select {
	case <-fw.Changes():
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}

	// The burst is coalesced into a single notification.
	select {
	case <-fw.Changes():
		t.Fatal("burst reported twice")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFileWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	fw, err := New(path, 30*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, fw.Start(context.Background()))
	defer fw.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))

	select {
	case <-fw.Changes():
		t.Fatal("sibling write reported")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestStopIsIdempotent(t *testing.T) {
	fw, err := New(filepath.Join(t.TempDir(), "r.json"), 0, nil)
	require.NoError(t, err)
	require.NoError(t, fw.Start(context.Background()))
	fw.Stop()
	fw.Stop()
}

func TestFileWatcherStartFailureReleasesWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "results.json")

	fw, err := New(path, 30*time.Millisecond, nil)
	require.NoError(t, err)
	require.Error(t, fw.Start(context.Background()))

	stopped := make(chan struct{})
	go func() {
		fw.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked after a failed Start")
	}
}
