package ports

// Hasher defines the interface for computing content digests.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeFileHash returns a digest of the file's bytes. The digest is stable while the
	// content is unchanged and differs after any byte-level change.
	ComputeFileHash(path string) (string, error)
	// ComputeListingHash returns a digest of the sorted set of files below root matching
	// pattern, leaving out exclude. It changes when a matching file appears or disappears.
	// domain.TreeListing matches every file a project scan walks.
	ComputeListingHash(root, pattern string, exclude []string) (string, error)
}
