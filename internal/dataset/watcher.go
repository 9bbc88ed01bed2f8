package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"labordash/internal/infrastructure"
	"labordash/pkg/contracts/domain"
)

// ChangeEvent describes a reload triggered by a file change
type ChangeEvent struct {
	Path  string
	Op    string
	Table *domain.Table
	Err   error
}

// Watcher reloads the cache entry of one data file when it changes on disk.
// It watches the parent directory so editors that replace the file by
// rename are observed too.
type Watcher struct {
	path     string
	cache    *Cache
	debounce time.Duration
	onChange func(context.Context, ChangeEvent)
	logger   *slog.Logger

	fsw      *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
}

// NewWatcher creates a watcher for path. onChange may be nil.
func NewWatcher(path string, cache *Cache, debounce time.Duration, onChange func(context.Context, ChangeEvent), logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		path:     abs,
		cache:    cache,
		debounce: debounce,
		onChange: onChange,
		logger:   infrastructure.WithComponent(logger, "dataset_watcher"),
		fsw:      fsw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.fsw.Add(dir); err != nil {
		w.fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Info("watching data file", slog.String("path", w.path))
	w.started.Store(true)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.started.Load() {
			<-w.doneCh
		}
		w.fsw.Close()
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var (
		timer  *time.Timer
		fire   <-chan time.Time
		lastOp fsnotify.Op
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			lastOp = event.Op
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", slog.String("error", err.Error()))

		case <-fire:
			fire = nil
			w.reload(ctx, lastOp)
		}
	}
}

func (w *Watcher) reload(ctx context.Context, op fsnotify.Op) {
	table, err := w.cache.Reload(ctx, w.path)
	event := ChangeEvent{Path: w.path, Op: op.String(), Table: table, Err: err}

	if err != nil {
		w.logger.Warn("data file changed but could not be loaded",
			slog.String("op", event.Op),
			slog.String("error", err.Error()))
	} else {
		w.logger.Info("data file reloaded",
			slog.String("op", event.Op),
			slog.Int("records", table.Len()),
			slog.String("fingerprint", table.Fingerprint))
	}

	if w.onChange != nil {
		w.onChange(ctx, event)
	}
}
