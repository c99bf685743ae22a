package policy

import (
	"sort"

	"go.trai.ch/pwa/internal/core/domain"
)

const day = 24 * 60 * 60

var (
	apiPatterns    = []string{"/api/**", "/json/**", "/graphql/**"}
	staticPatterns = []string{"/assets/**", "/public/**", "/static/**", "**/*.{js,css,png,jpg,svg,webp,woff,woff2}"}
	securePatterns = []string{"/admin/**", "/api/auth/**", "/dashboard/**"}
)

var presets = map[string]func() []domain.Route{
	"default": defaultPreset,
	"static":  staticPreset,
	"django":  djangoPreset,
	"flask":   flaskPreset,
	"fastapi": fastapiPreset,
}

// Preset returns a fresh copy of the named built-in route set.
func Preset(name string) ([]domain.Route, bool) {
	build, ok := presets[name]
	if !ok {
		return nil, false
	}
	return build(), true
}

// PresetNames lists the built-in route sets.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func defaultPreset() []domain.Route {
	var routes []domain.Route
	for _, p := range securePatterns {
		routes = append(routes, networkOnly(p, "secure", 30))
	}
	for _, p := range apiPatterns {
		routes = append(routes, networkFirst(p, "api-cache", 20))
	}
	for _, p := range staticPatterns {
		routes = append(routes, cacheFirst(p, "static-assets", 10, 100, 30*day))
	}
	return routes
}

func staticPreset() []domain.Route {
	var routes []domain.Route
	for _, p := range staticPatterns {
		routes = append(routes, cacheFirst(p, "static-assets", 10, 100, 30*day))
	}
	routes = append(routes, domain.Route{
		Pattern: domain.Pattern{Spec: "**/*.html"},
		Policy: domain.CachingPolicy{
			Handler:   domain.HandlerStaleWhileRevalidate,
			CacheName: "pages",
		},
	})
	return routes
}

func djangoPreset() []domain.Route {
	return []domain.Route{
		networkOnly("/admin/**", "django-admin-cache", 30),
		networkFirst("/api/**", "django-api-cache", 20),
		cacheFirst("/static/**", "django-static-cache", 10, 100, 30*day),
		cacheFirst("/media/**", "django-media-cache", 10, 50, 7*day),
	}
}

func flaskPreset() []domain.Route {
	return []domain.Route{
		networkFirst("/api/**", "flask-api-cache", 20),
		cacheFirst("/static/**", "flask-static-cache", 10, 100, 30*day),
	}
}

func fastapiPreset() []domain.Route {
	openapi := networkOnly("/openapi.json", "fastapi-docs", 30)
	openapi.MatchKind = domain.MatchLiteral
	return []domain.Route{
		openapi,
		networkOnly("/docs/**", "fastapi-docs", 30),
		networkFirst("/api/**", "fastapi-api-cache", 20),
		cacheFirst("/static/**", "fastapi-static-cache", 10, 100, 30*day),
	}
}

func cacheFirst(pattern, cacheName string, priority, maxEntries, maxAge int) domain.Route {
	return domain.Route{
		Pattern:  domain.Pattern{Spec: pattern},
		Priority: priority,
		Policy: domain.CachingPolicy{
			Handler:    domain.HandlerCacheFirst,
			CacheName:  cacheName,
			Expiration: &domain.Expiration{MaxEntries: intPtr(maxEntries), MaxAgeSeconds: intPtr(maxAge)},
		},
	}
}

func networkFirst(pattern, cacheName string, priority int) domain.Route {
	return domain.Route{
		Pattern:  domain.Pattern{Spec: pattern},
		Priority: priority,
		Policy: domain.CachingPolicy{
			Handler:               domain.HandlerNetworkFirst,
			CacheName:             cacheName,
			NetworkTimeoutSeconds: intPtr(3),
			Expiration:            &domain.Expiration{MaxEntries: intPtr(50), MaxAgeSeconds: intPtr(300)},
		},
	}
}

func networkOnly(pattern, cacheName string, priority int) domain.Route {
	return domain.Route{
		Pattern:  domain.Pattern{Spec: pattern},
		Priority: priority,
		Policy: domain.CachingPolicy{
			Handler:   domain.HandlerNetworkOnly,
			CacheName: cacheName,
		},
	}
}

func intPtr(n int) *int {
	return &n
}
