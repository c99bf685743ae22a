package policy

import (
	"encoding/json"

	"go.trai.ch/pwa/internal/core/domain"
)

// TableEntry is one runtime caching rule as the generated service worker reads it.
type TableEntry struct {
	URLPattern string                 `json:"urlPattern"`
	Kind       domain.MatchKind       `json:"matchKind"`
	Handler    domain.HandlerKind     `json:"handler"`
	Priority   int                    `json:"priority"`
	Options    domain.CompiledOptions `json:"options"`
}

// Table converts compiled routes into serializable entries, keeping their order.
func Table(compiled []domain.CompiledRoute) []TableEntry {
	entries := make([]TableEntry, 0, len(compiled))
	for _, route := range compiled {
		entries = append(entries, TableEntry{
			URLPattern: route.Matcher.String(),
			Kind:       route.Kind,
			Handler:    route.Handler,
			Priority:   route.Priority,
			Options:    route.Options,
		})
	}
	return entries
}

// RuntimeCaching serializes the ordered table as indented JSON.
func RuntimeCaching(compiled []domain.CompiledRoute) ([]byte, error) {
	return json.MarshalIndent(Table(compiled), "", "  ")
}
