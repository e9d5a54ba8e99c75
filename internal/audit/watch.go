// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package audit

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Najam-Usman/uiuc-course-planner/pkg/types"
)

// watchSettle is how long the file must stay quiet after a change before it
// is reloaded. Editors that truncate and then write emit several events for
// one save.
var watchSettle = 150 * time.Millisecond

// Watch loads the audit at path, passes it to fn, and calls fn again each
// time the file is written or replaced, until ctx is done. The parent
// directory is watched so editors that save by rename are still seen.
// Bursts of events are coalesced into one reload.
func Watch(ctx context.Context, path string, logger *zap.Logger, fn func(*types.ParsedAudit, error)) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	fn(Load(target))

	settle := time.NewTimer(watchSettle)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-settle.C:
			fn(Load(target))
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Debug("audit changed", zap.String("file", target), zap.String("op", ev.Op.String()))
			settle.Reset(watchSettle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		}
	}
}
