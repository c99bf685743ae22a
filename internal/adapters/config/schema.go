package config

import "go.trai.ch/pwa/internal/engine/policy"

// Pwafile represents the structure of the pwa.yaml configuration file.
type Pwafile struct {
	Version       string           `yaml:"version"`
	App           AppDTO           `yaml:"app"`
	Output        OutputDTO        `yaml:"output"`
	ServiceWorker ServiceWorkerDTO `yaml:"serviceWorker"`
	Cache         CacheDTO         `yaml:"cache"`
	Caching       CachingDTO       `yaml:"caching"`
	Watch         []string         `yaml:"watch"`
	Concurrency   int              `yaml:"concurrency"`
}

// AppDTO holds the web app manifest fields.
type AppDTO struct {
	Name            string `yaml:"name"`
	ShortName       string `yaml:"shortName"`
	Description     string `yaml:"description"`
	ThemeColor      string `yaml:"themeColor"`
	BackgroundColor string `yaml:"backgroundColor"`
	StartURL        string `yaml:"startUrl"`
	Scope           string `yaml:"scope"`
	Display         string `yaml:"display"`
}

// OutputDTO names where artifacts are written.
type OutputDTO struct {
	Dir           string `yaml:"dir"`
	Manifest      string `yaml:"manifest"`
	ServiceWorker string `yaml:"serviceWorker"`
}

// ServiceWorkerDTO configures the generated service worker.
type ServiceWorkerDTO struct {
	Precache          []string `yaml:"precache"`
	SkipWaiting       *bool    `yaml:"skipWaiting"`
	ClientsClaim      *bool    `yaml:"clientsClaim"`
	NavigationPreload bool     `yaml:"navigationPreload"`
}

// CacheDTO configures the scan cache. Durations use time.ParseDuration syntax.
type CacheDTO struct {
	Path   string `yaml:"path"`
	TTL    string `yaml:"ttl"`
	MaxAge string `yaml:"maxAge"`
}

// CachingDTO declares runtime caching routes.
type CachingDTO struct {
	Prefix string             `yaml:"prefix"`
	Preset string             `yaml:"preset"`
	Routes []policy.RouteSpec `yaml:"routes"`
}
