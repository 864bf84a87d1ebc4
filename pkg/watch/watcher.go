package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"bitmark-hq/compiler/pkg/config"
)

// Event reports a settled change to a source file.
type Event struct {
	// Path is the changed file.
	Path string

	// Removed is set when the file was deleted or renamed away.
	Removed bool
}

// Config configures a Watcher.
type Config struct {
	// Root is the directory watched recursively, or a single file.
	Root string

	// Debounce is the quiet period before a change is reported.
	Debounce time.Duration

	// Extensions lists the file extensions that are reported.
	Extensions []string

	// SkipHidden ignores files and directories whose name starts with a dot.
	SkipHidden bool
}

// FromConfig builds a watcher configuration for root.
func FromConfig(root string, cfg config.WatchConfig) Config {
	return Config{
		Root:       root,
		Debounce:   cfg.Debounce,
		Extensions: cfg.Extensions,
		SkipHidden: true,
	}
}

// Watcher reports changes to bitmark sources below a root directory.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   Config
	debounce *Debouncer

	mu       sync.Mutex
	running  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
	readyCh  chan struct{}
}

// New creates a watcher. logger may be nil.
func New(cfg Config, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsw,
		logger:   logger.With("component", "watch"),
		config:   cfg,
		debounce: NewDebouncer(cfg.Debounce),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		readyCh:  make(chan struct{}),
	}, nil
}

// Ready is closed once the root is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.readyCh
}

// Running reports whether Watch is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Watch reports settled changes to onChange until ctx is done or Stop is
// called. onChange runs on debouncer goroutines, one at a time per file.
// Watch releases the watcher when it returns.
func (w *Watcher) Watch(ctx context.Context, onChange func(context.Context, Event)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.debounce.Stop()
		w.watcher.Close()
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.addPath(w.config.Root); err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}
	close(w.readyCh)

	w.logger.Info("file watcher started",
		"root", w.config.Root,
		"debounce_ms", w.config.Debounce.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("file watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("file watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			w.handle(ctx, event, onChange)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event, onChange func(context.Context, Event)) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.hidden(event.Name) {
				if err := w.addDirectory(event.Name); err != nil {
					w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
			}
			return
		}
	}

	if !w.shouldProcess(event) {
		return
	}

	ev := Event{
		Path:    event.Name,
		Removed: event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename),
	}
	w.logger.Debug("file event detected", "path", event.Name, "op", event.Op.String())

	w.debounce.Trigger(event.Name, func() {
		if ev.Removed {
			if _, err := os.Stat(ev.Path); err == nil {
				ev.Removed = false
			}
		}
		onChange(ctx, ev)
	})
}

// Stop ends a running Watch and waits for it to return. A watcher that was
// never started is released.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })

	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if running {
		<-w.doneCh
		return
	}
	w.watcher.Close()
}

func (w *Watcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return w.addDirectory(path)
	}
	return w.watcher.Add(path)
}

func (w *Watcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.hidden(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		w.logger.Debug("watching directory", "path", path)
		return nil
	})
}

func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if w.hidden(event.Name) {
		return false
	}
	return HasExtension(event.Name, w.config.Extensions)
}

func (w *Watcher) hidden(path string) bool {
	return w.config.SkipHidden && strings.HasPrefix(filepath.Base(path), ".")
}

// HasExtension reports whether path ends in one of exts, ignoring case.
func HasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// Files returns the sorted source files below root that have one of exts.
// Hidden files and directories are skipped. A root that is a file is
// returned as is.
func Files(root string, exts []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && HasExtension(path, exts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
