package policy

import (
	"maps"
	"slices"
	"sort"

	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/zerr"
)

// Resolver compiles routes into an ordered table.
type Resolver struct {
	// Prefix is prepended to every cache name.
	Prefix string
}

// NewResolver creates a Resolver that prefixes cache names with prefix.
func NewResolver(prefix string) *Resolver {
	return &Resolver{Prefix: prefix}
}

// Resolve compiles routes, sorted by descending priority with ties kept in input order.
// Invalid routes are dropped and reported; they never abort the rest.
func (r *Resolver) Resolve(routes []domain.Route) ([]domain.CompiledRoute, []error) {
	var (
		compiled = make([]domain.CompiledRoute, 0, len(routes))
		errs     []error
	)

	for i, route := range routes {
		if rerrs := routeErrors(route); len(rerrs) > 0 {
			for _, err := range rerrs {
				errs = append(errs, zerr.With(zerr.With(err, "route", i), "pattern", route.Pattern.String()))
			}
			continue
		}

		matcher, kind, err := CompilePattern(route.Pattern, route.MatchKind)
		if err != nil {
			errs = append(errs, zerr.With(zerr.With(err, "route", i), "pattern", route.Pattern.String()))
			continue
		}

		compiled = append(compiled, domain.CompiledRoute{
			Matcher:  matcher,
			Kind:     kind,
			Handler:  route.Policy.Handler,
			Priority: route.Priority,
			Options:  r.options(route),
		})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})
	return compiled, errs
}

// Match returns the first compiled route accepting path.
func Match(table []domain.CompiledRoute, path string) (domain.CompiledRoute, bool) {
	for _, route := range table {
		if route.Matches(path) {
			return route, true
		}
	}
	return domain.CompiledRoute{}, false
}

func (r *Resolver) options(route domain.Route) domain.CompiledOptions {
	p := route.Policy
	opts := domain.CompiledOptions{
		CacheName:             r.cacheName(p.CacheName),
		NetworkTimeoutSeconds: p.NetworkTimeoutSeconds,
		Expiration:            mergeExpiration(p.Expiration, route.TTLOverride),
		Headers:               maps.Clone(p.ExtraHeaders),
		Passthrough:           mergeOptions(p.PassthroughOptions, route.ExtraPassthroughOptions),
	}

	if c := route.Conditions; c != nil {
		if len(c.Methods) > 0 {
			opts.Methods = slices.Clone(c.Methods)
		}
		if len(c.AllowedOrigins) > 0 {
			opts.AllowedOrigins = slices.Clone(c.AllowedOrigins)
		}
	}
	return opts
}

func (r *Resolver) cacheName(name string) string {
	if r.Prefix == "" {
		return name
	}
	return r.Prefix + name
}

// mergeExpiration overlays override on base field by field.
func mergeExpiration(base, override *domain.Expiration) *domain.Expiration {
	if base.IsZero() && override.IsZero() {
		return nil
	}

	out := &domain.Expiration{}
	if base != nil {
		out.MaxEntries = base.MaxEntries
		out.MaxAgeSeconds = base.MaxAgeSeconds
	}
	if override != nil {
		if override.MaxEntries != nil {
			out.MaxEntries = override.MaxEntries
		}
		if override.MaxAgeSeconds != nil {
			out.MaxAgeSeconds = override.MaxAgeSeconds
		}
	}
	return out
}

// mergeOptions is a shallow per-key merge where extra wins.
func mergeOptions(base, extra map[string]any) map[string]any {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(base)+len(extra))
	maps.Copy(out, base)
	maps.Copy(out, extra)
	return out
}
