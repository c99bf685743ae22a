// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/pwa/internal/adapters/artifact"
	_ "go.trai.ch/pwa/internal/adapters/config"
	_ "go.trai.ch/pwa/internal/adapters/fs"
	_ "go.trai.ch/pwa/internal/adapters/logger"
	_ "go.trai.ch/pwa/internal/adapters/telemetry"
	_ "go.trai.ch/pwa/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/pwa/internal/app"
	_ "go.trai.ch/pwa/internal/engine/scancache"
)
