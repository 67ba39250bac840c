package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce collapses the burst of events an editor produces
// when saving a file.
const DefaultWatchDebounce = 100 * time.Millisecond

// WatchHandler receives each reloaded configuration, or the error that
// prevented loading it.
type WatchHandler func(Config, error)

// Watch reloads the configuration file at path whenever it is written or
// created, and calls fn with the result. It blocks
// until ctx is done.
//
// The parent directory is watched so that atomic saves are seen.
func Watch(ctx context.Context, path string, fn WatchHandler) error {
	return watch(ctx, path, DefaultWatchDebounce, func() (Config, error) {
		return Load(path)
	}, fn)
}

func watch(ctx context.Context, path string, debounce time.Duration, load func() (Config, error), fn WatchHandler) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	reload := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			fn(load())

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			fn(Config{}, fmt.Errorf("watch %s: %w", path, err))
		}
	}
}
