package fs

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/pwa/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ProjectScanner = (*Scanner)(nil)

// descriptorKinds maps descriptor file names to the ecosystem they describe.
var descriptorKinds = map[string]string{
	"package.json":     "npm",
	"composer.json":    "composer",
	"requirements.txt": "pip",
	"pyproject.toml":   "python",
	"Pipfile":          "pipenv",
	"manage.py":        "django",
	"go.mod":           "go",
	"Gemfile":          "ruby",
	"Cargo.toml":       "cargo",
}

var assetKinds = map[string]domain.AssetKind{
	".js":    domain.AssetScript,
	".mjs":   domain.AssetScript,
	".css":   domain.AssetStyle,
	".png":   domain.AssetImage,
	".jpg":   domain.AssetImage,
	".jpeg":  domain.AssetImage,
	".gif":   domain.AssetImage,
	".svg":   domain.AssetImage,
	".webp":  domain.AssetImage,
	".ico":   domain.AssetImage,
	".woff":  domain.AssetFont,
	".woff2": domain.AssetFont,
	".ttf":   domain.AssetFont,
	".otf":   domain.AssetFont,
	".html":  domain.AssetDocument,
}

// Scanner builds a project inventory of descriptors and static assets.
type Scanner struct {
	walker  *Walker
	ignores []string
}

// NewScanner creates a new Scanner. Entries matching ignores are skipped.
func NewScanner(walker *Walker, ignores ...string) *Scanner {
	return &Scanner{walker: walker, ignores: ignores}
}

// Scan walks root and returns the encoded inventory. Every root-level descriptor
// candidate is on the watch list whether or not it exists yet, and the walked tree
// is reported as a listing so added or removed files invalidate the result.
func (s *Scanner) Scan(ctx context.Context, root string, exclude []string) (domain.ScanReport, error) {
	info, err := os.Stat(root)
	if err != nil {
		return domain.ScanReport{}, zerr.With(zerr.Wrap(err, domain.ErrScanFailed.Error()), "root", root)
	}
	if !info.IsDir() {
		return domain.ScanReport{}, zerr.With(zerr.Wrap(domain.ErrProjectRootNotDir, domain.ErrScanFailed.Error()), "root", root)
	}

	inv := domain.Inventory{
		Descriptors: []domain.Descriptor{},
		Assets:      make(map[domain.AssetKind][]string),
	}
	watch := make(map[string]bool, len(descriptorKinds))
	for name := range descriptorKinds {
		watch[name] = true
	}

	for file := range s.walker.WalkFiles(root, s.ignores) {
		if err := ctx.Err(); err != nil {
			return domain.ScanReport{}, err
		}

		rel, err := filepath.Rel(root, file)
		if err != nil {
			return domain.ScanReport{}, zerr.With(zerr.Wrap(err, domain.ErrScanFailed.Error()), "path", file)
		}
		rel = filepath.ToSlash(rel)
		if excluded(rel, exclude) {
			continue
		}
		inv.FileCount++

		base := path.Base(rel)
		if kind, ok := descriptorKinds[base]; ok {
			watch[rel] = true
			inv.Descriptors = append(inv.Descriptors, readDescriptor(file, rel, kind))
			continue
		}

		if kind, ok := assetKinds[strings.ToLower(path.Ext(rel))]; ok {
			inv.Assets[kind] = append(inv.Assets[kind], rel)
		}
	}

	sort.SliceStable(inv.Descriptors, func(i, j int) bool {
		return descriptorLess(inv.Descriptors[i].Path, inv.Descriptors[j].Path)
	})
	for kind := range inv.Assets {
		sort.Strings(inv.Assets[kind])
	}

	result, err := json.Marshal(inv)
	if err != nil {
		return domain.ScanReport{}, zerr.Wrap(err, domain.ErrScanFailed.Error())
	}

	watchList := make([]string, 0, len(watch))
	for p := range watch {
		watchList = append(watchList, p)
	}
	sort.Strings(watchList)

	return domain.ScanReport{
		Result:    result,
		WatchList: watchList,
		Listings:  []string{domain.TreeListing},
	}, nil
}

// descriptorLess orders shallower paths first, then lexically.
func descriptorLess(a, b string) bool {
	da, db := strings.Count(a, "/"), strings.Count(b, "/")
	if da != db {
		return da < db
	}
	return a < b
}

// readDescriptor extracts identifying metadata. Unreadable or malformed files
// still produce a descriptor carrying only path and kind.
func readDescriptor(file, rel, kind string) domain.Descriptor {
	d := domain.Descriptor{Path: rel, Kind: kind}

	data, err := os.ReadFile(file) //nolint:gosec // Path comes from walking the project root
	if err != nil {
		return d
	}

	switch kind {
	case "npm", "composer":
		var meta struct {
			Name        string `json:"name"`
			Version     string `json:"version"`
			Description string `json:"description"`
		}
		if json.Unmarshal(data, &meta) == nil {
			d.Name = meta.Name
			d.Version = meta.Version
			d.Description = meta.Description
		}
	case "go":
		d.Name = goModulePath(data)
	}
	return d
}

func goModulePath(data []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if rest, ok := strings.CutPrefix(line, "module "); ok {
			return strings.Trim(strings.TrimSpace(rest), `"`)
		}
	}
	return ""
}
