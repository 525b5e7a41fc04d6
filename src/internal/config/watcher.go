package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zyrohq/zyro/src/internal/log"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reloads the configuration file when it changes on disk and hands
// the freshly parsed document to registered callbacks.
type Watcher struct {
	configPath string
	debounce   time.Duration
	logger     *log.Logger

	mu        sync.Mutex
	callbacks []func(map[string]interface{})
	checksum  string
}

// NewWatcher creates a watcher for configPath. Nothing is watched until Run;
// the content present now is treated as already seen.
func NewWatcher(configPath string) *Watcher {
	w := &Watcher{
		configPath: configPath,
		debounce:   defaultDebounce,
		logger:     log.Named("ConfigWatcher"),
	}
	if _, sum, err := readFile(configPath); err == nil {
		w.checksum = sum
	}
	return w
}

// OnChange registers a callback for config changes
func (w *Watcher) OnChange(callback func(map[string]interface{})) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// SetDebounce sets the debounce duration for file changes
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run watches the directory holding the config file until ctx is done.
// Editors often replace files, so the directory is watched, not the file.
func (w *Watcher) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(filepath.Dir(w.configPath)); err != nil {
		return err
	}

	w.logger.Infof("Watching %s for changes", w.configPath)

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(w.configPath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			w.reload()

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Errorf("Config watcher error: %v", err)
		}
	}
}

// reload parses the file and notifies callbacks in registration order.
// A file that cannot be loaded or whose content did not change is skipped.
func (w *Watcher) reload() {
	data, sum, err := readFile(w.configPath)
	if err != nil {
		w.logger.Errorf("Failed to reload config: %v", err)
		return
	}

	w.mu.Lock()
	unchanged := sum == w.checksum
	w.checksum = sum
	w.mu.Unlock()
	if unchanged {
		w.logger.Debugf("Configuration content unchanged, skipping reload")
		return
	}

	raw, err := Parse(w.configPath, data)
	if err != nil {
		w.logger.Errorf("Failed to reload config: %v", err)
		return
	}

	w.mu.Lock()
	callbacks := make([]func(map[string]interface{}), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.logger.Infof("Configuration file changed: %s", w.configPath)

	for _, cb := range callbacks {
		cb(raw)
	}
}
