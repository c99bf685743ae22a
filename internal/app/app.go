// Package app implements the application layer for pwa.
package app

import (
	"path/filepath"

	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/pwa/internal/core/ports"
	"go.trai.ch/pwa/internal/engine/scancache"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	scanner      ports.ProjectScanner
	resolver     ports.InputResolver
	writer       ports.ArtifactWriter
	cache        *scancache.Cache
	logger       ports.Logger
	tracer       ports.Tracer
	newWatcher   ports.WatcherFactory
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	scanner ports.ProjectScanner,
	resolver ports.InputResolver,
	writer ports.ArtifactWriter,
	cache *scancache.Cache,
	log ports.Logger,
	tracer ports.Tracer,
	newWatcher ports.WatcherFactory,
) *App {
	return &App{
		configLoader: loader,
		scanner:      scanner,
		resolver:     resolver,
		writer:       writer,
		cache:        cache,
		logger:       log,
		tracer:       tracer,
		newWatcher:   newWatcher,
	}
}

// loadConfig reads the configuration of the project in dir.
func (a *App) loadConfig(dir string) (*domain.Config, error) {
	if dir == "" {
		dir = "."
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrFailedToGetRoot.Error()), "dir", dir)
	}
	cfg, err := a.configLoader.Load(root)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

// cachePath returns the absolute location of the scan cache document.
func cachePath(cfg *domain.Config) string {
	if filepath.IsAbs(cfg.Cache.Path) {
		return cfg.Cache.Path
	}
	return filepath.Join(cfg.Root, cfg.Cache.Path)
}
