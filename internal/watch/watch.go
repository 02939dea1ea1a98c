// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch re-runs a conversion whenever an AsciiDoc file next to the
// source document changes.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/adoc2site/internal/apperr"
)

// DefaultDebounce is used when Watch is given a non-positive debounce.
const DefaultDebounce = 300 * time.Millisecond

// Func is called after a batch of changes settles. Its error is logged and
// watching continues.
type Func func(ctx context.Context) error

// Watch observes the directory tree holding sourcePath and calls fn once
// per burst of .adoc writes or creations, after debounce has passed without
// further events. Calls never overlap. Watch returns nil when ctx is
// cancelled.
func Watch(ctx context.Context, sourcePath string, debounce time.Duration, logger *slog.Logger, fn Func) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	root := filepath.Dir(sourcePath)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return apperr.FileSystem("watch", root, err)
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return apperr.FileSystem("watch", root, err)
	}
	logger.Info("watcher: started", slog.String("root", root), slog.Duration("debounce", debounce))

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		pending []string
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			logger.Info("watcher: change detected", slog.Any("files", pending))
			pending = nil
			start := time.Now()
			if err := fn(ctx); err != nil {
				logger.Error("watcher: run failed", slog.String("error", err.Error()))
			} else {
				logger.Info("watcher: run finished", slog.Duration("elapsed", time.Since(start)))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					continue
				}
			}
			if !IsSource(ev.Name) || ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			logger.Debug("watcher: event", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			pending = appendUnique(pending, ev.Name)
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// IsSource reports whether path names an AsciiDoc file.
func IsSource(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".adoc")
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
