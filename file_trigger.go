package sever

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/zoobzio/capitan"
)

// FileTrigger raises an interrupt against a target whenever a watched file
// is written or created. It gives an external process a way to cancel a
// running computation: touch the file, and any policy watching the target
// aborts at its next check.
type FileTrigger struct {
	path   string
	target Target
}

// NewFileTrigger creates a FileTrigger for the given path and target.
func NewFileTrigger(path string, target Target) (*FileTrigger, error) {
	if target == nil {
		return nil, ErrInvalidTarget
	}
	return &FileTrigger{path: path, target: target}, nil
}

// Path returns the watched file path.
func (t *FileTrigger) Path() string {
	return t.path
}

// Watch begins watching the path in a background goroutine. Construction
// failures surface immediately; afterwards the goroutine runs until the
// context is canceled.
func (t *FileTrigger) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := watcher.Add(t.path); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch file %s: %w", t.path, err)
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				// Only raise on write or create events
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				t.target.Raise()
				capitan.Emit(ctx, TriggerFired,
					KeyPath.Field(t.path),
				)

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Continue watching despite errors
			}
		}
	}()

	return nil
}
