package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch is responsible to detect changes on markdown files. Bursts of events are collapsed: the callback runs once
// the files stay quiet for the debounce interval.
type Watch struct {
	Path     string
	Debounce time.Duration
	OnChange func(ctx context.Context, paths []string) error
	OnError  func(err error)

	file string
}

// Init the internal state.
func (w *Watch) Init() error {
	if w.Path == "" {
		return errors.New("missing 'path'")
	}
	if w.OnChange == nil {
		return errors.New("missing 'onChange'")
	}
	if w.Debounce < 0 {
		return fmt.Errorf("invalid debounce '%s'", w.Debounce)
	}
	if w.Debounce == 0 {
		w.Debounce = 250 * time.Millisecond
	}
	if w.OnError == nil {
		w.OnError = func(error) {}
	}

	stat, err := os.Stat(w.Path)
	if err != nil {
		return fmt.Errorf("fail to check the path stat: %w", err)
	}
	if !stat.IsDir() {
		w.file = filepath.Clean(w.Path)
	}
	return nil
}

// Run blocks until the context is done.
func (w Watch) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fail to create the watcher: %w", err)
	}
	defer watcher.Close()

	if w.file != "" {
		// Editors often replace the file instead of writing it, so the directory is watched.
		err = watcher.Add(filepath.Dir(w.file))
	} else {
		err = w.addTree(watcher, w.Path)
	}
	if err != nil {
		return fmt.Errorf("fail to watch '%s': %w", w.Path, err)
	}

	var (
		pending = make(map[string]struct{})
		timer   = time.NewTimer(w.Debounce)
	)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 && w.file == "" {
				if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
					if err := w.addTree(watcher, event.Name); err != nil {
						w.OnError(fmt.Errorf("fail to watch '%s': %w", event.Name, err))
					}
					continue
				}
			}
			if !w.relevant(event) {
				continue
			}
			pending[filepath.Clean(event.Name)] = struct{}{}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.Debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.OnError(fmt.Errorf("fail to watch: %w", err))

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			pending = make(map[string]struct{})

			if err := w.OnChange(ctx, paths); err != nil {
				w.OnError(err)
			}
		}
	}
}

func (w Watch) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	if w.file != "" {
		return filepath.Clean(event.Name) == w.file
	}
	return filepath.Ext(event.Name) == ".md"
}

func (Watch) addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}
