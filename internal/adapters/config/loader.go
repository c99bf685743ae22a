// Package config provides the configuration loader for pwa.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/pwa/internal/core/ports"
	"go.trai.ch/pwa/internal/engine/policy"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

var displayModes = []string{"fullscreen", "standalone", "minimal-ui", "browser"}

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads pwa.yaml from root. A missing file yields the defaults.
// Invalid routes are dropped with a warning; every other invalid value is an error.
func (l *Loader) Load(root string) (*domain.Config, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrFailedToGetRoot.Error()), "root", root)
	}

	cfg := domain.DefaultConfig(absRoot)

	configPath := filepath.Join(absRoot, domain.ConfigFileName)
	var pwafile Pwafile
	if err := readAndUnmarshalYAML(configPath, &pwafile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, zerr.With(err, "path", configPath)
	}

	if err := l.apply(cfg, &pwafile); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	return cfg, nil
}

func (l *Loader) apply(cfg *domain.Config, f *Pwafile) error {
	if f.Version != "" && f.Version != "1" {
		return invalidf("unsupported version %q", f.Version)
	}

	applyApp(&cfg.App, f.App)
	if !slices.Contains(displayModes, cfg.App.Display) {
		return invalidf("app.display must be one of %s", strings.Join(displayModes, ", "))
	}

	if err := applyOutput(cfg, f.Output); err != nil {
		return err
	}

	cfg.Precache = f.ServiceWorker.Precache
	if f.ServiceWorker.SkipWaiting != nil {
		cfg.SkipWaiting = *f.ServiceWorker.SkipWaiting
	}
	if f.ServiceWorker.ClientsClaim != nil {
		cfg.ClientsClaim = *f.ServiceWorker.ClientsClaim
	}
	cfg.NavigationPreload = f.ServiceWorker.NavigationPreload
	cfg.Watch = f.Watch

	if err := applyCache(&cfg.Cache, f.Cache); err != nil {
		return err
	}

	switch {
	case f.Concurrency < 0:
		return invalidf("concurrency must not be negative")
	case f.Concurrency > 0:
		cfg.Concurrency = f.Concurrency
	}

	cfg.Caching.Prefix = f.Caching.Prefix
	if f.Caching.Preset != "" {
		if _, ok := policy.Preset(f.Caching.Preset); !ok {
			return zerr.With(
				fmt.Errorf("%w: %q (known: %s)", domain.ErrUnknownPreset, f.Caching.Preset, strings.Join(policy.PresetNames(), ", ")),
				"preset", f.Caching.Preset,
			)
		}
		cfg.Caching.Preset = f.Caching.Preset
	}

	for i, spec := range f.Caching.Routes {
		route, errs := policy.ParseRoute(spec)
		if len(errs) > 0 {
			l.Logger.Warn(fmt.Sprintf("skipping caching route %d: %v", i, errors.Join(errs...)))
			continue
		}
		cfg.Caching.Routes = append(cfg.Caching.Routes, route)
	}

	return nil
}

func applyApp(app *domain.AppMetadata, dto AppDTO) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&app.Name, dto.Name)
	set(&app.ShortName, dto.ShortName)
	set(&app.Description, dto.Description)
	set(&app.ThemeColor, dto.ThemeColor)
	set(&app.BackgroundColor, dto.BackgroundColor)
	set(&app.StartURL, dto.StartURL)
	set(&app.Scope, dto.Scope)
	set(&app.Display, dto.Display)
}

func applyOutput(cfg *domain.Config, dto OutputDTO) error {
	if dto.Dir != "" {
		dir := filepath.Clean(dto.Dir)
		if filepath.IsAbs(dir) || dir == ".." || strings.HasPrefix(dir, ".."+string(filepath.Separator)) {
			return invalidf("output.dir must stay inside the project root")
		}
		cfg.OutputDir = filepath.ToSlash(dir)
	}

	if dto.Manifest != "" {
		if err := checkArtifactName(dto.Manifest); err != nil {
			return err
		}
		cfg.ManifestName = dto.Manifest
	}
	if dto.ServiceWorker != "" {
		if err := checkArtifactName(dto.ServiceWorker); err != nil {
			return err
		}
		cfg.ServiceWorkerName = dto.ServiceWorker
	}
	return nil
}

func checkArtifactName(name string) error {
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return invalidf("artifact name %q must be a plain file name", name)
	}
	return nil
}

func applyCache(c *domain.CacheSettings, dto CacheDTO) error {
	if dto.Path != "" {
		c.Path = dto.Path
	}

	if dto.TTL != "" {
		ttl, err := time.ParseDuration(dto.TTL)
		if err != nil || ttl < 0 {
			return invalidf("cache.ttl %q is not a valid duration", dto.TTL)
		}
		c.TTL = ttl
	}

	if dto.MaxAge != "" {
		maxAge, err := time.ParseDuration(dto.MaxAge)
		if err != nil || maxAge < 0 {
			return invalidf("cache.maxAge %q is not a valid duration", dto.MaxAge)
		}
		c.MaxAge = maxAge
	}
	return nil
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is built from the project root
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfigParseFailed, parseErr)
	}

	return nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, fmt.Sprintf(format, args...))
}
