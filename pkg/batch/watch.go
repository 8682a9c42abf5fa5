package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/macropower/alsroute/pkg/log"
)

// Watch processes sets under paths whenever they are created or saved, until
// ctx is done. Directories are watched recursively; file paths watch only
// that file. Each change is processed with a freshly obtained rule source
// once the file has been quiet for the debounce interval.
func (r *Runner) Watch(ctx context.Context, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}

	defer func() {
		err := watcher.Close()
		if err != nil {
			slog.Error("close watcher", slog.Any("err", err))
		}
	}()

	logger := log.WithContext(ctx)

	files, dirs, err := watchTargets(paths)
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		err := watcher.Add(dir)
		if err != nil {
			return fmt.Errorf("add %q to watcher: %w", dir, err)
		}
	}

	logger.InfoContext(ctx, "watching for changes",
		slog.Int("dirs", len(dirs)),
		slog.Int("files", len(files)),
	)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		timers = map[string]*time.Timer{}
	)

	defer func() {
		mu.Lock()
		for _, t := range timers {
			if t.Stop() {
				wg.Done()
			}
		}
		mu.Unlock()

		wg.Wait()
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()

		if t, ok := timers[path]; ok && t.Stop() {
			t.Reset(r.debounce)

			return
		}

		wg.Add(1)

		var t *time.Timer

		t = time.AfterFunc(r.debounce, func() {
			defer wg.Done()

			mu.Lock()
			if timers[path] == t {
				delete(timers, path)
			}
			mu.Unlock()

			r.runWatched(ctx, path)
		})
		timers[path] = t
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Write) {
				continue
			}

			path := filepath.Clean(evt.Name)

			if evt.Has(fsnotify.Create) {
				info, err := os.Stat(path)
				if err == nil && info.IsDir() && len(files) == 0 {
					err := watcher.Add(path)
					if err != nil {
						logger.WarnContext(ctx, "watch new directory", slog.String("dir", path), slog.Any("err", err))
					}

					continue
				}
			}

			if !IsProject(path) || IsOutput(path, r.suffix) {
				continue
			}
			if len(files) > 0 && !files[path] {
				continue
			}

			logger.DebugContext(ctx, "file changed", slog.String("file", path), slog.String("op", evt.Op.String()))
			schedule(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.ErrorContext(ctx, "watcher error", slog.Any("err", err))
		}
	}
}

// runWatched processes one changed file. Timers that fire after stopping
// are a no-op once ctx is done.
func (r *Runner) runWatched(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}

	source, err := r.source(ctx)
	if err != nil {
		fe := &FileError{Path: path, Err: fmt.Errorf("load rules: %w", err)}
		log.WithContext(ctx).ErrorContext(ctx, "process file", slog.String("file", path), slog.Any("err", err))
		r.broadcast(EventFail{Err: fe})

		return
	}

	_, _ = r.processPath(ctx, source, path)
}

// watchTargets returns the explicitly named files (empty when any path is a
// directory) and the directories to watch.
func watchTargets(paths []string) (map[string]bool, []string, error) {
	var (
		files   = map[string]bool{}
		dirs    []string
		seen    = map[string]bool{}
		anyDirs bool
	)

	addDir := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, p := range paths {
		p = filepath.Clean(p)

		info, err := os.Stat(p)
		if err != nil {
			return nil, nil, fmt.Errorf("stat %q: %w", p, err)
		}

		if !info.IsDir() {
			files[p] = true
			addDir(filepath.Dir(p))

			continue
		}

		anyDirs = true

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrPermission) {
					return filepath.SkipDir
				}

				return err
			}
			if d.IsDir() {
				addDir(path)
			}

			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("walk %q: %w", p, err)
		}
	}

	if anyDirs {
		clear(files)
	}

	return files, dirs, nil
}
