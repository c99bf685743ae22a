package ports

// InputResolver defines the interface for resolving watch patterns.
//
//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type InputResolver interface {
	// ResolveInputs resolves the given patterns to concrete paths relative to root.
	ResolveInputs(inputs []string, root string) ([]string, error)
}
