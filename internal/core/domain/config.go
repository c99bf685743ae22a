package domain

import "time"

// DefaultConcurrency is the number of artifacts written in parallel when the config does not say.
const DefaultConcurrency = 4

// DefaultCacheMaxAge is how old a scan cache entry may get before it is pruned from the document.
const DefaultCacheMaxAge = 30 * 24 * time.Hour

// AppMetadata is the web app manifest content.
type AppMetadata struct {
	Name            string
	ShortName       string
	Description     string
	ThemeColor      string
	BackgroundColor string
	StartURL        string
	Scope           string
	Display         string
}

// CacheSettings configures the scan cache.
type CacheSettings struct {
	// Path is the scan cache document location. Relative paths resolve against the project root.
	Path string
	// TTL is the lifetime of a freshly stored entry.
	TTL time.Duration
	// MaxAge prunes entries older than this from the document on every run.
	MaxAge time.Duration
}

// CachingSettings configures runtime caching of the generated service worker.
type CachingSettings struct {
	// Prefix is prepended to every compiled cache name.
	Prefix string
	// Preset names a built-in route set that is appended after the declared routes.
	Preset string
	// Routes are the declared routes, already parsed into typed values.
	Routes []Route
}

// Config is the typed project configuration.
type Config struct {
	Root              string
	App               AppMetadata
	OutputDir         string
	ManifestName      string
	ServiceWorkerName string
	Precache          []string
	Watch             []string
	SkipWaiting       bool
	ClientsClaim      bool
	NavigationPreload bool
	Cache             CacheSettings
	Caching           CachingSettings
	Concurrency       int
}

// DefaultConfig returns a Config with every default applied for the given root.
func DefaultConfig(root string) *Config {
	return &Config{
		Root: root,
		App: AppMetadata{
			StartURL:        "/",
			Scope:           "/",
			Display:         "standalone",
			ThemeColor:      "#000000",
			BackgroundColor: "#FFFFFF",
		},
		OutputDir:         DefaultOutputDir,
		ManifestName:      DefaultManifestName,
		ServiceWorkerName: DefaultServiceWorkerName,
		SkipWaiting:       true,
		ClientsClaim:      true,
		Cache: CacheSettings{
			Path:   CacheFileName,
			TTL:    DefaultCacheTTL,
			MaxAge: DefaultCacheMaxAge,
		},
		Concurrency: DefaultConcurrency,
	}
}
