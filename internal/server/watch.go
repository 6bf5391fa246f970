package server

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// debounceWindow coalesces bursts of file events (editors often write a
// file several times in quick succession) into a single rebuild.
const debounceWindow = 300 * time.Millisecond

// watch starts a recursive watcher over the configured source and component
// directories. Each settled change burst triggers a fresh build pass in its
// own goroutine; a pass still in flight is not awaited, so passes may
// overlap with no ordering guarantee between their output writes.
func (s *Server) watch(ctx context.Context, settings *config.Settings) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	roots := append(append([]string(nil), settings.SrcDirs...), settings.ComponentsDirs...)
	for _, root := range roots {
		if err := addRecursive(watcher, root); err != nil {
			slog.Warn("watch skipped", logfields.Dir(root), logfields.Error(err))
		}
	}

	var timer *time.Timer
	trigger := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceWindow, func() {
			go s.runPass(ctx)
		})
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				// New directories must be picked up for future events.
				if ev.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						_ = addRecursive(watcher, ev.Name)
					}
				}
				slog.Debug("source changed", slog.String("file", ev.Name))
				trigger()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("watcher error", logfields.Error(err))
			}
		}
	}()

	return func() { _ = watcher.Close() }, nil
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

// schedule sets up the optional periodic rebuild. Returns a no-op stop when
// no interval is configured.
func (s *Server) schedule(ctx context.Context, settings *config.Settings) (stop func(), err error) {
	if settings.RebuildEvery <= 0 {
		return func() {}, nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(settings.RebuildEvery.Std()),
		gocron.NewTask(func() { s.runPass(ctx) }),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}

	scheduler.Start()
	slog.Info("periodic rebuild enabled", slog.Duration("every", settings.RebuildEvery.Std()))
	return func() { _ = scheduler.Shutdown() }, nil
}
