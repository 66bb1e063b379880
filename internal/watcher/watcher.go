package watcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mrlokans/kindle-notion/internal/entities"
	"github.com/mrlokans/kindle-notion/internal/services"
)

// DefaultDebounce is how long the file has to stay quiet before a sync starts.
const DefaultDebounce = 500 * time.Millisecond

// Syncer runs one sync of the clippings file.
type Syncer interface {
	Run(ctx context.Context, trigger entities.SyncTrigger) (*entities.SyncRun, error)
}

// Watcher starts a sync whenever the clippings file is written, for example
// when a Kindle is mounted and the file copied over.
type Watcher struct {
	path     string
	syncer   Syncer
	debounce time.Duration

	mu          sync.Mutex
	lastSize    int64
	lastModTime time.Time
}

// New creates a watcher for the file at path. A zero debounce uses DefaultDebounce.
func New(path string, syncer Syncer, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		syncer:   syncer,
		debounce: debounce,
	}
}

// Watch blocks until ctx is cancelled. The parent directory is watched so
// that the file may be created or replaced after the watcher starts.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	// The file as it is at startup has either been synced already or will
	// be picked up by the scheduler.
	w.Refresh()

	log.Printf("Watcher: watching %s", w.path)

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			log.Printf("Watcher: stopped")
			return nil

		case <-timerCh:
			timerCh = nil
			w.syncIfChanged(ctx)

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerCh = timer.C

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher: error: %v", watchErr)
		}
	}
}

// syncIfChanged skips events caused by a sync itself, such as the
// archive marker being appended.
func (w *Watcher) syncIfChanged(ctx context.Context) {
	info, err := os.Stat(w.path)
	if err != nil {
		return
	}
	w.mu.Lock()
	unchanged := info.Size() == w.lastSize && info.ModTime().Equal(w.lastModTime)
	w.mu.Unlock()
	if unchanged {
		return
	}

	log.Printf("Watcher: %s changed, starting sync", w.path)
	run, err := w.syncer.Run(ctx, entities.SyncTriggerWatch)
	switch {
	case errors.Is(err, services.ErrSyncInProgress):
		// Try again on the next change
		return
	case err != nil:
		log.Printf("Watcher: sync failed: %v", err)
	case run != nil:
		log.Printf("Watcher: sync run %s finished with status %s", run.UUID, run.Status)
	}
	w.Refresh()
}

// Refresh records the file as already synced. Call it after runs started
// by other triggers so their marker write does not start another sync.
func (w *Watcher) Refresh() {
	size, modTime := int64(-1), time.Time{}
	if info, err := os.Stat(w.path); err == nil {
		size, modTime = info.Size(), info.ModTime()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastSize, w.lastModTime = size, modTime
}
