package ports

import (
	"context"
	"io/fs"

	"go.trai.ch/pwa/internal/core/domain"
)

// Transaction is the part of a transaction ledger that artifact writers use.
//
//go:generate go run go.uber.org/mock/mockgen -source=artifact.go -destination=mocks/mock_artifact.go -package=mocks
type Transaction interface {
	// Root returns the directory all relative paths resolve against.
	Root() string
	// OutputDir returns the artifact directory relative to Root.
	OutputDir() string
	// WriteFile backs up relPath if it exists, writes data, and tracks relPath as created otherwise.
	WriteFile(relPath string, data []byte, perm fs.FileMode) error
}

// ArtifactWriter renders generated files into a transaction.
type ArtifactWriter interface {
	// Write renders every artifact for cfg and returns the written paths relative to the root.
	Write(ctx context.Context, tx Transaction, cfg *domain.Config, routes []domain.CompiledRoute) ([]string, error)
}
