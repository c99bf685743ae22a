// Package artifact renders the web app manifest and the service worker.
package artifact

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"path"
	"path/filepath"
	"text/template"

	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/pwa/internal/core/ports"
	"go.trai.ch/pwa/internal/engine/policy"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

//go:embed sw.js.tmpl
var serviceWorkerSource string

var serviceWorkerTemplate = template.Must(template.New("sw.js").Parse(serviceWorkerSource))

var _ ports.ArtifactWriter = (*Writer)(nil)

// Writer renders artifacts and writes them through a transaction.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

type artifact struct {
	name   string
	render func(cfg *domain.Config, routes []domain.CompiledRoute) ([]byte, error)
}

// Write renders the manifest and service worker for cfg, at most cfg.Concurrency at a time.
// Every file goes through tx so a failed run can be rolled back.
func (w *Writer) Write(
	ctx context.Context,
	tx ports.Transaction,
	cfg *domain.Config,
	routes []domain.CompiledRoute,
) ([]string, error) {
	artifacts := []artifact{
		{name: cfg.ManifestName, render: renderManifest},
		{name: cfg.ServiceWorkerName, render: renderServiceWorker},
	}

	limit := cfg.Concurrency
	if limit <= 0 {
		limit = domain.DefaultConcurrency
	}

	written := make([]string, len(artifacts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, a := range artifacts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := a.render(cfg, routes)
			if err != nil {
				return zerr.With(zerr.Wrap(err, "failed to render artifact"), "artifact", a.name)
			}
			rel := filepath.Join(tx.OutputDir(), a.name)
			if err := tx.WriteFile(rel, data, domain.FilePerm); err != nil {
				return err
			}
			written[i] = filepath.ToSlash(rel)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return written, nil
}

type manifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name,omitempty"`
	Description     string `json:"description,omitempty"`
	StartURL        string `json:"start_url"`
	Scope           string `json:"scope"`
	Display         string `json:"display"`
	ThemeColor      string `json:"theme_color"`
	BackgroundColor string `json:"background_color"`
}

func renderManifest(cfg *domain.Config, _ []domain.CompiledRoute) ([]byte, error) {
	app := cfg.App
	data, err := json.MarshalIndent(manifest{
		Name:            app.Name,
		ShortName:       app.ShortName,
		Description:     app.Description,
		StartURL:        app.StartURL,
		Scope:           app.Scope,
		Display:         app.Display,
		ThemeColor:      app.ThemeColor,
		BackgroundColor: app.BackgroundColor,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

type serviceWorkerData struct {
	Precache          string
	RuntimeCaching    string
	SkipWaiting       bool
	ClientsClaim      bool
	NavigationPreload bool
}

func renderServiceWorker(cfg *domain.Config, routes []domain.CompiledRoute) ([]byte, error) {
	urls := make([]string, 0, len(cfg.Precache))
	for _, p := range cfg.Precache {
		urls = append(urls, path.Join("/", filepath.ToSlash(p)))
	}
	precache, err := json.MarshalIndent(urls, "", "  ")
	if err != nil {
		return nil, err
	}

	table, err := policy.RuntimeCaching(routes)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := serviceWorkerTemplate.Execute(&buf, serviceWorkerData{
		Precache:          string(precache),
		RuntimeCaching:    string(table),
		SkipWaiting:       cfg.SkipWaiting,
		ClientsClaim:      cfg.ClientsClaim,
		NavigationPreload: cfg.NavigationPreload,
	}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
