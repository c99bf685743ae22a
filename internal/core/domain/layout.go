package domain

import "path/filepath"

const (
	// CacheFileName is the default name of the scan cache document in the project root.
	CacheFileName = ".pwa-cache.json"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "pwa.yaml"

	// DefaultOutputDir is the default directory, relative to the project root, that receives artifacts.
	DefaultOutputDir = "public"

	// DefaultManifestName is the default file name of the web app manifest.
	DefaultManifestName = "manifest.json"

	// DefaultServiceWorkerName is the default file name of the generated service worker.
	DefaultServiceWorkerName = "sw.js"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultCachePath returns the default location of the scan cache for a project root.
func DefaultCachePath(root string) string {
	return filepath.Join(root, CacheFileName)
}
