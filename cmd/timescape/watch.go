package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/timescape/compiler/load"
)

// newWatchCommand creates the watch command
func newWatchCommand(a *app) *cobra.Command {
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever a source file changes",
		Long: `Watch generates once, then watches the source directory and
regenerates after source files change. A failed run is reported and the
watch continues. Stop it with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

			rebuild := func(ctx context.Context, changed []string) {
				if len(changed) > 0 {
					a.logger.Info("sources changed", zap.Strings("files", changed))
				}
				start := time.Now()
				res, cfg, err := a.generate(ctx)
				if err == nil {
					err = a.write(ctx, cfg, res)
				}
				if err != nil {
					report(errOut, err)
					return
				}
				successColor.Fprintf(out, "✓ Generated %d files in %s (%s)\n",
					len(res.Files), a.cfg.Output, time.Since(start).Round(time.Millisecond))
			}
			rebuild(ctx, nil)

			w, err := newWatcher(a.cfg.Source, a.cfg.Output, delay, a.logger)
			if err != nil {
				return err
			}
			defer w.close()
			warnColor.Fprintf(out, "Watching %s for changes\n", a.cfg.Source)
			return w.run(ctx, rebuild)
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", 100*time.Millisecond, "quiet period before regenerating")
	return cmd
}

// watcher reports batches of source file changes under a directory tree.
type watcher struct {
	fs     *fsnotify.Watcher
	skip   string
	delay  time.Duration
	logger *zap.Logger
}

// newWatcher watches every directory under root except hidden ones and
// the skip directory.
func newWatcher(root, skip string, delay time.Duration, logger *zap.Logger) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &watcher{fs: fw, delay: delay, logger: logger}
	if skip != "" {
		if w.skip, err = filepath.Abs(skip); err != nil {
			fw.Close()
			return nil, err
		}
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) && path != root {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
		w.logger.Debug("watching directory", zap.String("dir", path))
		return nil
	})
}

func (w *watcher) ignored(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}
	if w.skip == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	return err == nil && (abs == w.skip || strings.HasPrefix(abs, w.skip+string(filepath.Separator)))
}

// run calls onChange with the changed files once no event has arrived for
// the configured delay. It returns when ctx is done.
func (w *watcher) run(ctx context.Context, onChange func(context.Context, []string)) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("watch new directory", zap.Error(err))
					}
					continue
				}
			}
			if !load.IsSource(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = struct{}{}
				timer.Reset(w.delay)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			files := make([]string, 0, len(pending))
			for f := range pending {
				files = append(files, f)
			}
			slices.Sort(files)
			clear(pending)
			onChange(ctx, files)
		}
	}
}

func (w *watcher) close() error {
	return w.fs.Close()
}
