// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/pwa/internal/core/domain"
)

// ProjectScanner inspects a project directory and reports what it found.
//
//go:generate go run go.uber.org/mock/mockgen -source=scanner.go -destination=mocks/mock_scanner.go -package=mocks
type ProjectScanner interface {
	// Scan walks the project rooted at root, skipping the project-relative paths in exclude.
	// The returned watch list holds every project-relative path whose content can change
	// the result, and the listings every pattern whose match set can.
	Scan(ctx context.Context, root string, exclude []string) (domain.ScanReport, error)
}
