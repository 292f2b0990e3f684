package cmd

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDir reports writes to regular files in dir until ctx is done or the
// watcher is closed. Editor swap and backup files are skipped.
func watchDir(ctx context.Context, watcher *fsnotify.Watcher, onChange func(path string)) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if isScratchFile(event.Name) {
				continue
			}
			onChange(filepath.Clean(event.Name))

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", zap.Error(err))

		case <-ctx.Done():
			return
		}
	}
}

// isScratchFile filters out hidden, swap and backup files editors leave behind
func isScratchFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") || strings.HasPrefix(base, "#") {
		return true
	}
	for _, suffix := range []string{"~", ".swp", ".swo", ".swx", ".tmp", ".bak"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	// vim writes a throwaway test file named 4913
	return base == "4913"
}
