package policy

import (
	"strings"

	"go.trai.ch/pwa/internal/core/domain"
)

var httpMethods = map[string]bool{
	"GET": true, "HEAD": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "OPTIONS": true,
}

// ValidPolicy reports whether p has a known handler, a non-empty cache name,
// and well-formed optional fields.
func ValidPolicy(p domain.CachingPolicy) bool {
	return len(policyErrors(p)) == 0
}

// ValidRoute reports whether r has a pattern, a valid policy, and well-formed optional fields.
func ValidRoute(r domain.Route) bool {
	return len(routeErrors(r)) == 0
}

func policyErrors(p domain.CachingPolicy) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, invalid(domain.ErrInvalidPolicy, format, args...))
	}

	if !p.Handler.IsValid() {
		fail("unknown handler %q", string(p.Handler))
	}
	if strings.TrimSpace(p.CacheName) == "" {
		fail("cacheName is empty")
	}
	if p.NetworkTimeoutSeconds != nil && *p.NetworkTimeoutSeconds <= 0 {
		fail("networkTimeoutSeconds must be positive")
	}
	errs = append(errs, expirationErrors(p.Expiration, "expiration", domain.ErrInvalidPolicy)...)
	for k := range p.ExtraHeaders {
		if strings.TrimSpace(k) == "" {
			fail("header name is empty")
		}
	}
	for k := range p.PassthroughOptions {
		if k == "" {
			fail("option name is empty")
		}
	}
	return errs
}

func routeErrors(r domain.Route) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, invalid(domain.ErrInvalidRoute, format, args...))
	}

	if r.Pattern.IsZero() || (r.Pattern.Regexp == nil && strings.TrimSpace(r.Pattern.Spec) == "") {
		fail("pattern is empty")
	}
	if !r.MatchKind.IsValid() {
		fail("unknown match kind %q", string(r.MatchKind))
	}
	errs = append(errs, policyErrors(r.Policy)...)
	errs = append(errs, expirationErrors(r.TTLOverride, "ttlOverride", domain.ErrInvalidRoute)...)

	if c := r.Conditions; c != nil {
		for _, m := range c.Methods {
			if !httpMethods[strings.ToUpper(m)] {
				fail("unknown method %q", m)
			}
		}
		for _, o := range c.AllowedOrigins {
			if strings.TrimSpace(o) == "" {
				fail("allowed origin is empty")
			}
		}
	}

	for k := range r.ExtraPassthroughOptions {
		if k == "" {
			fail("option name is empty")
		}
	}
	return errs
}

func expirationErrors(e *domain.Expiration, field string, sentinel error) []error {
	if e == nil {
		return nil
	}
	var errs []error
	if e.MaxEntries != nil && *e.MaxEntries <= 0 {
		errs = append(errs, invalid(sentinel, "%s.maxEntries must be positive", field))
	}
	if e.MaxAgeSeconds != nil && *e.MaxAgeSeconds <= 0 {
		errs = append(errs, invalid(sentinel, "%s.maxAgeSeconds must be positive", field))
	}
	return errs
}
