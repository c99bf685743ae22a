package app

import (
	"context"

	"go.trai.ch/pwa/internal/core/domain"
)

// Routes returns the compiled runtime caching table of the project in dir,
// in the order the service worker evaluates it.
func (a *App) Routes(_ context.Context, dir string) ([]domain.CompiledRoute, error) {
	cfg, err := a.loadConfig(dir)
	if err != nil {
		return nil, err
	}
	return a.compileRoutes(cfg), nil
}
