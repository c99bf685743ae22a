package fs

import (
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/pwa/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements the InputResolver interface using filepath.Glob.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// ResolveInputs expands patterns below root into sorted, slash-separated paths relative to root.
// A glob with no matches contributes nothing. A plain path is kept even when it does not
// exist yet, so its later appearance can be detected.
func (r *Resolver) ResolveInputs(inputs []string, root string) ([]string, error) {
	uniquePaths := make(map[string]bool)

	for _, input := range inputs {
		if !hasGlobMeta(input) {
			uniquePaths[filepath.ToSlash(filepath.Clean(input))] = true
			continue
		}

		path := filepath.Join(root, input)
		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to glob path"), "path", path)
		}

		for _, match := range matches {
			rel, err := filepath.Rel(root, match)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to resolve relative path"), "path", match)
			}
			uniquePaths[filepath.ToSlash(rel)] = true
		}
	}

	result := make([]string, 0, len(uniquePaths))
	for path := range uniquePaths {
		result = append(result, path)
	}
	sort.Strings(result)

	return result, nil
}

func hasGlobMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}
