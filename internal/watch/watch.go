// Package watch invokes a callback every time a DHAT report's JSON file is
// rewritten, for dhatctl's "watch" subcommand.
package watch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// ReportWatcher watches a single report file for writes.
type ReportWatcher struct {
	w    *fsnotify.Watcher
	path string
}

// New creates a ReportWatcher for path. The file must already exist: New
// returns an error if path cannot be added to the watcher.
func New(path string) (*ReportWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("dhat: creating file watcher: %w", err)
	}

	if err := w.Add(path); err != nil {
		w.Close()

		return nil, fmt.Errorf("dhat: watching %s: %w", path, err)
	}

	return &ReportWatcher{w: w, path: path}, nil
}

// Close stops the watcher.
func (rw *ReportWatcher) Close() error {
	return rw.w.Close()
}

// Run blocks, invoking onChange(path) on every write or create event
// reported for the watched file, until ctx is done or the watcher's event
// channel closes. onErr receives errors surfaced by the underlying watcher; a nil
// onErr discards them.
func (rw *ReportWatcher) Run(ctx context.Context, onChange func(path string), onErr func(error)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-rw.w.Events:
			if !ok {
				return nil
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				onChange(rw.path)
			}

		case err, ok := <-rw.w.Errors:
			if !ok {
				return nil
			}

			if onErr != nil {
				onErr(err)
			}
		}
	}
}
