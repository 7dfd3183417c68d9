package validation

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for the tree to go quiet before
// comparing again.
const DefaultDebounce = 500 * time.Millisecond

// WatchFunc receives each comparison produced by Watch.
type WatchFunc func(result *Result, err error)

// Watch compares root once, then again every time the tree settles after a
// change, until ctx is cancelled. Writes to the snapshot file itself are
// ignored.
func (v *Validator) Watch(ctx context.Context, root string, debounce time.Duration, fn WatchFunc) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := addTree(watcher, root); err != nil {
		return err
	}

	fn(v.Compare(ctx, root))

	snapshotPath := filepath.Clean(v.SnapshotPath(root))
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) == snapshotPath || isTempWrite(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						v.logger.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new directory")
					}
				}
			}
			v.logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("change detected")
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
			pending = true

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			v.logger.Warn().Err(err).Msg("watcher error")

		case <-timer.C:
			pending = false
			fn(v.Compare(ctx, root))
		}
	}
}

// addTree registers dir and every directory below it; fsnotify is not
// recursive.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func isTempWrite(name string) bool {
	return strings.HasPrefix(filepath.Base(name), ".mediakit-tmp-")
}
