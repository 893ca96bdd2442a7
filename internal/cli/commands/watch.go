package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
)

// watchFile calls onChange after path is written, created or replaced,
// once per burst of events. It watches the parent directory so editors that
// save by renaming a temp file over the original are still seen.
// onChange runs on the calling goroutine. watchFile returns when ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger, onChange func()) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	deb := newDebouncer(clockwork.NewRealClock(), debounce)
	defer deb.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != target {
				continue
			}
			// Only handle events that can change the file's contents
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			logger.Debug("model file event", "op", event.Op.String(), "file", event.Name)
			deb.Trigger()

		case <-deb.C():
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// debouncer delivers one tick on C after Trigger stops being called for
// delay. It is not safe for concurrent use; the watch loop owns it.
type debouncer struct {
	clock clockwork.Clock
	delay time.Duration
	timer clockwork.Timer
}

func newDebouncer(clock clockwork.Clock, delay time.Duration) *debouncer {
	return &debouncer{clock: clock, delay: delay}
}

// Trigger restarts the quiet period. A tick that fired but was not yet
// received is discarded.
func (d *debouncer) Trigger() {
	if d.timer == nil {
		d.timer = d.clock.NewTimer(d.delay)
		return
	}
	if !d.timer.Stop() {
		select {
		case <-d.timer.Chan():
		default:
		}
	}
	d.timer.Reset(d.delay)
}

// C returns the tick channel, or nil before the first Trigger.
func (d *debouncer) C() <-chan time.Time {
	if d.timer == nil {
		return nil
	}
	return d.timer.Chan()
}

// Stop releases the timer.
func (d *debouncer) Stop() {
	if d.timer != nil {
		d.timer.Stop()
	}
}
