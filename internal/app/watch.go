package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.trai.ch/pwa/internal/adapters/watcher" //nolint:depguard // Debouncing lives with the watcher adapter
	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/zerr"
)

// Watch runs Generate once, then again whenever a project file changes, until ctx is done.
// Failed runs are logged and watching continues.
func (a *App) Watch(ctx context.Context, opts GenerateOptions) error {
	cfg, err := a.loadConfig(opts.Dir)
	if err != nil {
		return err
	}
	opts.Dir = cfg.Root

	a.generateAndReport(ctx, opts)

	w, err := a.newWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	if err := w.Start(ctx, cfg.Root); err != nil {
		return zerr.Wrap(err, "failed to start watching")
	}
	a.logger.Info("watching " + cfg.Root + " for changes")

	changed := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultWindow, func(paths []string) {
		select {
		case changed <- paths:
		default:
		}
	})
	defer debouncer.Stop()

	ignored := ignoreFilter(cfg)
	go func() {
		for event := range w.Events() {
			if !ignored(event.Path) {
				debouncer.Add(event.Path)
			}
		}
	}()

	// A change event proves the tree moved, so later runs skip the cache check.
	opts.Force = true
	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-changed:
			a.logger.Info(fmt.Sprintf("%d file(s) changed, regenerating", len(paths)))
			a.generateAndReport(ctx, opts)
		}
	}
}

func (a *App) generateAndReport(ctx context.Context, opts GenerateOptions) {
	res, err := a.Generate(ctx, opts)
	if err != nil {
		a.logger.Error(err)
		return
	}
	a.logger.Info(fmt.Sprintf("wrote %s", strings.Join(res.Written, ", ")))
}

// ignoreFilter drops events caused by this tool's own writes.
func ignoreFilter(cfg *domain.Config) func(string) bool {
	outputDir := filepath.Join(cfg.Root, cfg.OutputDir)
	storePath := cachePath(cfg)
	return func(p string) bool {
		base := filepath.Base(p)
		if p == storePath || (strings.HasPrefix(base, ".") && strings.Contains(base, ".tmp-")) {
			return true
		}
		for _, name := range []string{cfg.ManifestName, cfg.ServiceWorkerName} {
			if p == filepath.Join(outputDir, name) {
				return true
			}
		}
		return false
	}
}
