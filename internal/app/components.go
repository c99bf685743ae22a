package app

import "go.trai.ch/pwa/internal/core/ports"

// Components holds everything the CLI needs.
type Components struct {
	App    *App
	Logger ports.Logger
}
