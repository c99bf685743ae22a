package app

import (
	"context"
	"fmt"

	"go.trai.ch/pwa/internal/engine/scancache"
)

// ClearOptions configures ClearCache.
type ClearOptions struct {
	Dir string
	// All removes the whole cache document instead of this project's entry.
	All bool
}

// PruneCache drops entries older than the configured max age and returns how many were removed.
// A zero max age removes nothing.
func (a *App) PruneCache(_ context.Context, dir string) (int, error) {
	cfg, err := a.loadConfig(dir)
	if err != nil {
		return 0, err
	}

	storePath := cachePath(cfg)
	store := scancache.Load(storePath)
	if store == nil {
		return 0, nil
	}

	pruned := prune(a.cache, store, cfg)
	removed := len(store.Entries)
	if pruned != nil {
		removed -= len(pruned.Entries)
	}
	if removed == 0 {
		return 0, nil
	}
	if err := scancache.Save(pruned, storePath); err != nil {
		return 0, err
	}
	a.logger.Info(fmt.Sprintf("pruned %d scan cache entries", removed))
	return removed, nil
}

// ClearCache removes the project's scan cache entry, or the whole document with opts.All.
func (a *App) ClearCache(_ context.Context, opts ClearOptions) error {
	cfg, err := a.loadConfig(opts.Dir)
	if err != nil {
		return err
	}

	storePath := cachePath(cfg)
	if opts.All {
		if err := scancache.Save(nil, storePath); err != nil {
			return err
		}
		a.logger.Info("removed scan cache " + storePath)
		return nil
	}

	store := scancache.Load(storePath)
	key, err := scancache.ProjectKey(cfg.Root)
	if err != nil {
		return err
	}
	if _, ok := scancache.Get(key, store); !ok {
		return nil
	}
	if err := scancache.Save(scancache.Remove(key, store), storePath); err != nil {
		return err
	}
	a.logger.Info("cleared scan cache entry for " + cfg.Root)
	return nil
}

// ListCache returns the entries of the project's scan cache document.
func (a *App) ListCache(_ context.Context, dir string) ([]scancache.EntryInfo, error) {
	cfg, err := a.loadConfig(dir)
	if err != nil {
		return nil, err
	}
	return a.cache.Entries(scancache.Load(cachePath(cfg))), nil
}
