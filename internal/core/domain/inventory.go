package domain

// AssetKind groups project files by how a service worker treats them.
type AssetKind string

const (
	AssetScript   AssetKind = "scripts"
	AssetStyle    AssetKind = "styles"
	AssetImage    AssetKind = "images"
	AssetFont     AssetKind = "fonts"
	AssetDocument AssetKind = "documents"
)

// Descriptor is a project descriptor file such as package.json or go.mod.
type Descriptor struct {
	Path        string `json:"path"`
	Kind        string `json:"kind"`
	Name        string `json:"name,omitempty"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
}

// Inventory is the scan result stored in the scan cache.
// Asset paths are slash-separated and relative to the project root.
type Inventory struct {
	Descriptors []Descriptor           `json:"descriptors"`
	Assets      map[AssetKind][]string `json:"assets,omitempty"`
	FileCount   int                    `json:"fileCount"`
}

// PrimaryDescriptor returns the first descriptor carrying a name, preferring the project root.
func (i *Inventory) PrimaryDescriptor() (Descriptor, bool) {
	for _, d := range i.Descriptors {
		if d.Name != "" {
			return d, true
		}
	}
	return Descriptor{}, false
}
