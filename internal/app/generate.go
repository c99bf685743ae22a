package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/pwa/internal/engine/ledger"
	"go.trai.ch/pwa/internal/engine/policy"
	"go.trai.ch/pwa/internal/engine/scancache"
	"go.trai.ch/zerr"
)

// GenerateOptions configures a generation run.
type GenerateOptions struct {
	// Dir is the project directory. Empty means the working directory.
	Dir string
	// Force ignores the scan cache.
	Force bool
}

// GenerateResult describes a successful run.
type GenerateResult struct {
	Root     string
	CacheHit bool
	Written  []string
	Routes   int
}

// Generate scans the project, reusing the cached inventory when it is still valid,
// and writes the manifest and service worker. A failed write rolls back every
// file the run touched.
func (a *App) Generate(ctx context.Context, opts GenerateOptions) (GenerateResult, error) {
	ctx, span := a.tracer.Start(ctx, "generate")
	defer span.End()

	cfg, err := a.loadConfig(opts.Dir)
	if err != nil {
		span.RecordError(err)
		return GenerateResult{}, err
	}
	span.SetAttribute("project.root", cfg.Root)

	inv, hit, err := a.inventory(ctx, cfg, opts.Force)
	if err != nil {
		span.RecordError(err)
		return GenerateResult{}, err
	}
	span.SetAttribute("cache.hit", hit)

	applyDefaults(cfg, inv)
	routes := a.compileRoutes(cfg)
	span.SetAttribute("routes", len(routes))

	written, err := a.write(ctx, cfg, routes)
	if err != nil {
		span.RecordError(err)
		return GenerateResult{}, err
	}

	return GenerateResult{
		Root:     cfg.Root,
		CacheHit: hit,
		Written:  written,
		Routes:   len(routes),
	}, nil
}

// inventory returns the project inventory from the scan cache or a fresh scan.
// Cache persistence failures are logged and never fail the run.
func (a *App) inventory(ctx context.Context, cfg *domain.Config, force bool) (*domain.Inventory, bool, error) {
	ctx, span := a.tracer.Start(ctx, "scan")
	defer span.End()

	storePath := cachePath(cfg)
	store := scancache.Load(storePath)
	cache := a.cache.WithTTL(cfg.Cache.TTL)

	key, err := scancache.ProjectKey(cfg.Root)
	if err != nil {
		span.RecordError(err)
		return nil, false, zerr.Wrap(err, domain.ErrScanFailed.Error())
	}

	if cache.IsValid(key, store, scancache.ValidateOptions{Force: force}) {
		raw, _ := scancache.Get(key, store)
		var inv domain.Inventory
		if err := json.Unmarshal(raw, &inv); err == nil {
			span.SetAttribute("cache.hit", true)
			a.persist(prune(cache, store, cfg), store, storePath)
			return &inv, true, nil
		}
	}

	exclude := generatedPaths(cfg)
	report, err := a.scanner.Scan(ctx, cfg.Root, exclude)
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}

	var inv domain.Inventory
	if err := json.Unmarshal(report.Result, &inv); err != nil {
		span.RecordError(err)
		return nil, false, zerr.Wrap(err, domain.ErrScanFailed.Error())
	}

	watch, err := a.watchList(cfg, report)
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}
	watch.Exclude = exclude
	span.SetAttribute("watch.files", len(watch.Paths))

	updated := cache.Update(key, report.Result, store, watch)
	a.persist(prune(cache, updated, cfg), nil, storePath)
	return &inv, false, nil
}

// watchList merges the scanner's watch list with the configured patterns and the config file.
// Configured globs are also kept as listings so a file that starts matching one is noticed.
func (a *App) watchList(cfg *domain.Config, report domain.ScanReport) (scancache.WatchList, error) {
	paths := append([]string{domain.ConfigFileName}, report.WatchList...)
	listings := slices.Clone(report.Listings)
	if len(cfg.Watch) > 0 {
		extra, err := a.resolver.ResolveInputs(cfg.Watch, cfg.Root)
		if err != nil {
			return scancache.WatchList{}, zerr.Wrap(err, "failed to resolve watch patterns")
		}
		paths = append(paths, extra...)
		for _, pattern := range cfg.Watch {
			if strings.ContainsAny(pattern, "*?[") {
				listings = append(listings, filepath.ToSlash(filepath.Clean(pattern)))
			}
		}
	}
	slices.Sort(paths)
	slices.Sort(listings)
	return scancache.WatchList{
		Root:     cfg.Root,
		Paths:    slices.Compact(paths),
		Listings: slices.Compact(listings),
	}, nil
}

// generatedPaths lists the root-relative files this tool writes, which never count as project input.
func generatedPaths(cfg *domain.Config) []string {
	out := []string{
		path.Join(filepath.ToSlash(cfg.OutputDir), cfg.ManifestName),
		path.Join(filepath.ToSlash(cfg.OutputDir), cfg.ServiceWorkerName),
	}
	if rel, err := filepath.Rel(cfg.Root, cachePath(cfg)); err == nil && !strings.HasPrefix(rel, "..") {
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

// prune applies the configured max age. A zero max age turns pruning off.
func prune(cache *scancache.Cache, store *domain.ScanCacheStore, cfg *domain.Config) *domain.ScanCacheStore {
	if cfg.Cache.MaxAge <= 0 {
		return store
	}
	return cache.Prune(store, cfg.Cache.MaxAge)
}

// persist saves next unless it is the unchanged store that was loaded.
func (a *App) persist(next, loaded *domain.ScanCacheStore, storePath string) {
	if loaded != nil && next != nil && len(next.Entries) == len(loaded.Entries) {
		return
	}
	if err := scancache.Save(next, storePath); err != nil {
		a.logger.Warn(fmt.Sprintf("scan cache not saved: %v", err))
	}
}

// applyDefaults fills manifest metadata and the precache list from the inventory.
func applyDefaults(cfg *domain.Config, inv *domain.Inventory) {
	if d, ok := inv.PrimaryDescriptor(); ok {
		if cfg.App.Name == "" {
			cfg.App.Name = d.Name
		}
		if cfg.App.Description == "" {
			cfg.App.Description = d.Description
		}
	}
	if cfg.App.Name == "" {
		cfg.App.Name = filepath.Base(cfg.Root)
	}
	if cfg.App.ShortName == "" {
		cfg.App.ShortName = cfg.App.Name
	}

	if len(cfg.Precache) == 0 {
		cfg.Precache = precacheAssets(cfg, inv)
	}
}

// precacheAssets lists the assets inside the output directory, relative to it,
// leaving out the files this tool generates.
func precacheAssets(cfg *domain.Config, inv *domain.Inventory) []string {
	prefix := filepath.ToSlash(cfg.OutputDir) + "/"
	generated := map[string]bool{
		path.Join(filepath.ToSlash(cfg.OutputDir), cfg.ManifestName):      true,
		path.Join(filepath.ToSlash(cfg.OutputDir), cfg.ServiceWorkerName): true,
	}

	var out []string
	for _, files := range inv.Assets {
		for _, f := range files {
			if generated[f] || !strings.HasPrefix(f, prefix) {
				continue
			}
			out = append(out, strings.TrimPrefix(f, prefix))
		}
	}
	slices.Sort(out)
	return out
}

// compileRoutes resolves the declared routes followed by the preset. Invalid
// routes are dropped with a warning.
func (a *App) compileRoutes(cfg *domain.Config) []domain.CompiledRoute {
	routes := slices.Clone(cfg.Caching.Routes)
	preset := cfg.Caching.Preset
	if preset == "" && len(routes) == 0 {
		preset = "default"
	}
	if preset != "" {
		if extra, ok := policy.Preset(preset); ok {
			routes = append(routes, extra...)
		}
	}

	compiled, errs := policy.NewResolver(cfg.Caching.Prefix).Resolve(routes)
	for _, err := range errs {
		a.logger.Warn(fmt.Sprintf("dropping caching route: %v", err))
	}
	return compiled
}

// write renders the artifacts inside a ledger and rolls back on failure.
func (a *App) write(ctx context.Context, cfg *domain.Config, routes []domain.CompiledRoute) ([]string, error) {
	ctx, span := a.tracer.Start(ctx, "write")
	defer span.End()

	tx, err := ledger.Begin(cfg.Root, cfg.OutputDir)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	written, err := a.writer.Write(ctx, tx, cfg, routes)
	if err == nil {
		err = tx.Commit()
	}
	if err == nil {
		return written, nil
	}
	span.RecordError(err)

	report := a.rollback(ctx, tx)
	if report.Complete() {
		a.logger.Warn(fmt.Sprintf("generation failed, rolled back %d file(s)", len(report.Restored)+len(report.Removed)))
		return nil, errors.Join(domain.ErrGenerationFailed, err)
	}
	a.logger.Warn(fmt.Sprintf("generation failed, partially rolled back: %d path(s) could not be restored", len(report.Failures)))
	return nil, errors.Join(domain.ErrGenerationFailed, err, report.Err())
}

func (a *App) rollback(ctx context.Context, tx *ledger.Ledger) ledger.RollbackReport {
	_, span := a.tracer.Start(ctx, "rollback")
	defer span.End()

	report := tx.Rollback()
	span.SetAttribute("restored", len(report.Restored))
	span.SetAttribute("removed", len(report.Removed))
	span.SetAttribute("removed.dirs", len(report.RemovedDirs))
	if err := report.Err(); err != nil {
		span.RecordError(err)
	}
	return report
}
