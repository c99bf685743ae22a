package domain

import "regexp"

// HandlerKind names the runtime caching strategy a route is served with.
type HandlerKind string

const (
	// HandlerCacheFirst serves from cache and falls back to the network.
	HandlerCacheFirst HandlerKind = "CacheFirst"
	// HandlerNetworkFirst tries the network and falls back to cache.
	HandlerNetworkFirst HandlerKind = "NetworkFirst"
	// HandlerStaleWhileRevalidate serves from cache while refreshing it in the background.
	HandlerStaleWhileRevalidate HandlerKind = "StaleWhileRevalidate"
	// HandlerNetworkOnly never touches the cache.
	HandlerNetworkOnly HandlerKind = "NetworkOnly"
	// HandlerCacheOnly never touches the network.
	HandlerCacheOnly HandlerKind = "CacheOnly"
)

// HandlerKinds lists every known handler kind.
var HandlerKinds = []HandlerKind{
	HandlerCacheFirst,
	HandlerNetworkFirst,
	HandlerStaleWhileRevalidate,
	HandlerNetworkOnly,
	HandlerCacheOnly,
}

// IsValid reports whether h is one of the known handler kinds.
func (h HandlerKind) IsValid() bool {
	switch h {
	case HandlerCacheFirst, HandlerNetworkFirst, HandlerStaleWhileRevalidate, HandlerNetworkOnly, HandlerCacheOnly:
		return true
	default:
		return false
	}
}

// MatchKind selects how a route pattern is compiled.
type MatchKind string

const (
	// MatchAuto detects the kind from the pattern itself.
	MatchAuto MatchKind = ""
	// MatchLiteral matches the exact string.
	MatchLiteral MatchKind = "literal"
	// MatchGlob matches with path glob semantics.
	MatchGlob MatchKind = "glob"
	// MatchRegex uses the pattern as a regular expression.
	MatchRegex MatchKind = "regex"
)

// IsValid reports whether m is a known kind, including MatchAuto.
func (m MatchKind) IsValid() bool {
	switch m {
	case MatchAuto, MatchLiteral, MatchGlob, MatchRegex:
		return true
	default:
		return false
	}
}

// Pattern is a route match specification: either a source string or an already compiled regex.
type Pattern struct {
	Spec   string
	Regexp *regexp.Regexp
}

// IsZero reports whether the pattern carries neither a source string nor a regex.
func (p Pattern) IsZero() bool {
	return p.Spec == "" && p.Regexp == nil
}

// String returns the pattern source.
func (p Pattern) String() string {
	if p.Regexp != nil {
		return p.Regexp.String()
	}
	return p.Spec
}

// Expiration bounds how many responses a cache keeps and for how long.
type Expiration struct {
	MaxEntries    *int `json:"maxEntries,omitempty"`
	MaxAgeSeconds *int `json:"maxAgeSeconds,omitempty"`
}

// IsZero reports whether no expiration field is set.
func (e *Expiration) IsZero() bool {
	return e == nil || (e.MaxEntries == nil && e.MaxAgeSeconds == nil)
}

// CachingPolicy describes how matched requests are cached.
type CachingPolicy struct {
	Handler               HandlerKind
	CacheName             string
	NetworkTimeoutSeconds *int
	Expiration            *Expiration
	ExtraHeaders          map[string]string
	PassthroughOptions    map[string]any
}

// Conditions restrict a route to certain request methods or origins.
type Conditions struct {
	Methods        []string
	AllowedOrigins []string
}

// Route is one declared caching rule. Routes may overlap; priority orders them.
type Route struct {
	Pattern                 Pattern
	MatchKind               MatchKind
	Policy                  CachingPolicy
	Priority                int
	TTLOverride             *Expiration
	Conditions              *Conditions
	ExtraPassthroughOptions map[string]any
}

// CompiledOptions are the fully resolved options of a compiled route.
type CompiledOptions struct {
	CacheName             string            `json:"cacheName"`
	NetworkTimeoutSeconds *int              `json:"networkTimeoutSeconds,omitempty"`
	Expiration            *Expiration       `json:"expiration,omitempty"`
	Headers               map[string]string `json:"headers,omitempty"`
	Methods               []string          `json:"methods,omitempty"`
	AllowedOrigins        []string          `json:"allowedOrigins,omitempty"`
	Passthrough           map[string]any    `json:"passthrough,omitempty"`
}

// CompiledRoute is a matcher and its resolved policy, ready for first-match-wins evaluation.
type CompiledRoute struct {
	Matcher  *regexp.Regexp
	Kind     MatchKind
	Handler  HandlerKind
	Priority int
	Options  CompiledOptions
}

// Matches reports whether the route's matcher accepts the given URL path.
func (r CompiledRoute) Matches(path string) bool {
	return r.Matcher != nil && r.Matcher.MatchString(path)
}
