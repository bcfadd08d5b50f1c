package catalog

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/filterq/query/complete"
)

// Watcher reloads a catalog file whenever it changes on disk. It watches the
// file's directory so that editors which save by renaming a temporary file
// over the original are noticed too.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	log     commonlog.Logger
}

func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch catalog: %w", err)
	}
	if _, err := FormatFromPath(abs); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch catalog: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch catalog: %w", err)
	}
	return &Watcher{
		path:    abs,
		watcher: watcher,
		log:     commonlog.GetLogger("filterq.catalog"),
	}, nil
}

// Run blocks until ctx is done, calling onChange with every catalog that
// loads successfully after a change. Catalogs that fail to load are logged
// and skipped.
func (w *Watcher) Run(ctx context.Context, onChange func(complete.Config)) error {
	w.log.Infof("watching catalog %s", w.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				cfg, err := Load(w.path)
				if err != nil {
					w.log.Errorf("reload catalog: %s", err)
					continue
				}
				w.log.Infof("catalog reloaded: %d keys", len(cfg.Keys))
				onChange(cfg)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Errorf("catalog watcher: %s", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Watch runs a Watcher for path until ctx is done.
func Watch(ctx context.Context, path string, onChange func(complete.Config)) error {
	w, err := NewWatcher(path)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Run(ctx, onChange)
}
