package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kindle-notion/internal/entities"
)

type fakeSyncer struct {
	mu       sync.Mutex
	triggers []entities.SyncTrigger
	onRun    func()
}

func (s *fakeSyncer) Run(ctx context.Context, trigger entities.SyncTrigger) (*entities.SyncRun, error) {
	s.mu.Lock()
	s.triggers = append(s.triggers, trigger)
	s.mu.Unlock()
	if s.onRun != nil {
		s.onRun()
	}
	return &entities.SyncRun{UUID: "run", Status: entities.SyncStatusCompleted}, nil
}

func (s *fakeSyncer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.triggers)
}

func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	// give fsnotify a moment to register the directory
	time.Sleep(50 * time.Millisecond)
}

func TestWatcher_SyncsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "My Clippings.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	syncer := &fakeSyncer{}
	startWatcher(t, New(path, syncer, 20*time.Millisecond))

	require.NoError(t, os.WriteFile(path, []byte("new content"), 0o644))

	assert.Eventually(t, func() bool { return syncer.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	syncer.mu.Lock()
	defer syncer.mu.Unlock()
	assert.Equal(t, entities.SyncTriggerWatch, syncer.triggers[0])
}

func TestWatcher_SyncsWhenFileCreated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "My Clippings.txt")

	syncer := &fakeSyncer{}
	startWatcher(t, New(path, syncer, 20*time.Millisecond))

	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	assert.Eventually(t, func() bool { return syncer.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_DebouncesBurstOfWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "My Clippings.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	syncer := &fakeSyncer{}
	startWatcher(t, New(path, syncer, 200*time.Millisecond))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := f.WriteString("line\n")
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	assert.Eventually(t, func() bool { return syncer.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, syncer.count())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "My Clippings.txt")

	syncer := &fakeSyncer{}
	startWatcher(t, New(path, syncer, 20*time.Millisecond))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 0, syncer.count())
}

func TestWatcher_IgnoresOwnMarkerWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "My Clippings.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	syncer := &fakeSyncer{}
	syncer.onRun = func() {
		// the archiver appends to the file during the sync
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			_, _ = f.WriteString("==========\n")
			_ = f.Close()
		}
	}
	startWatcher(t, New(path, syncer, 50*time.Millisecond))

	require.NoError(t, os.WriteFile(path, []byte("clip\n"), 0o644))

	assert.Eventually(t, func() bool { return syncer.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, syncer.count())
}

func TestWatcher_RefreshIgnoresMarkerFromOtherTrigger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "My Clippings.txt")
	require.NoError(t, os.WriteFile(path, []byte("clip\n"), 0o644))

	syncer := &fakeSyncer{}
	w := New(path, syncer, 100*time.Millisecond)
	startWatcher(t, w)

	// a scheduled run marks the file and reports back when it finishes
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("==========\n==========\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	w.Refresh()

	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, 0, syncer.count())

	require.NoError(t, os.WriteFile(path, []byte("clip\nnew clip\n"), 0o644))
	assert.Eventually(t, func() bool { return syncer.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing", "My Clippings.txt"), &fakeSyncer{}, 0)
	err := w.Watch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}
