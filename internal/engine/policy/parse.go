package policy

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.trai.ch/pwa/internal/core/domain"
)

// RouteSpec is an untyped route declaration as decoded from YAML or JSON.
//
//	pattern:      string (required)
//	match:        literal | glob | regex
//	priority:     integer
//	policy:       PolicySpec (required)
//	ttlOverride:  {maxEntries, maxAgeSeconds}
//	conditions:   {methods: [string], allowedOrigins: [string]}, methods are upper-cased
//	options:      map of extra passthrough options
type RouteSpec map[string]any

// PolicySpec is an untyped caching policy declaration.
//
//	handler:                CacheFirst | NetworkFirst | StaleWhileRevalidate | NetworkOnly | CacheOnly
//	cacheName:              string (required)
//	networkTimeoutSeconds:  integer
//	expiration:             {maxEntries, maxAgeSeconds}
//	headers:                map of string to string
//	options:                map of passthrough options
type PolicySpec map[string]any

var routeKeys = map[string]bool{
	"pattern": true, "match": true, "priority": true, "policy": true,
	"ttlOverride": true, "conditions": true, "options": true,
}

var policyKeys = map[string]bool{
	"handler": true, "strategy": true, "cacheName": true, "networkTimeoutSeconds": true,
	"expiration": true, "headers": true, "options": true,
}

// ParseRoute narrows spec into a typed route. The route is only meaningful when no errors are returned.
func ParseRoute(spec RouteSpec) (domain.Route, []error) {
	var (
		route domain.Route
		errs  []error
	)
	fail := func(format string, args ...any) {
		errs = append(errs, invalid(domain.ErrInvalidRoute, format, args...))
	}

	for _, key := range unknownKeys(spec, routeKeys) {
		fail("unknown field %q", key)
	}

	switch v := spec["pattern"].(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			fail("pattern is empty")
		}
		route.Pattern = domain.Pattern{Spec: v}
	case nil:
		fail("pattern is required")
	default:
		fail("pattern must be a string, got %T", v)
	}

	if raw, ok := spec["match"]; ok {
		s, isString := raw.(string)
		kind := domain.MatchKind(s)
		if !isString || kind == domain.MatchAuto || !kind.IsValid() {
			fail("match must be one of literal, glob, regex")
		} else {
			route.MatchKind = kind
		}
	}

	if raw, ok := spec["priority"]; ok {
		n, ok := asInt(raw)
		if !ok {
			fail("priority must be an integer")
		}
		route.Priority = n
	}

	switch v := spec["policy"].(type) {
	case nil:
		fail("policy is required")
	default:
		m, ok := asMap(v)
		if !ok {
			fail("policy must be a mapping")
			break
		}
		p, perrs := ParsePolicy(PolicySpec(m))
		errs = append(errs, perrs...)
		route.Policy = p
	}

	if raw, ok := spec["ttlOverride"]; ok {
		exp, eerrs := parseExpiration(raw, "ttlOverride", domain.ErrInvalidRoute)
		errs = append(errs, eerrs...)
		route.TTLOverride = exp
	}

	if raw, ok := spec["conditions"]; ok {
		c, cerrs := parseConditions(raw)
		errs = append(errs, cerrs...)
		route.Conditions = c
	}

	if raw, ok := spec["options"]; ok {
		m, ok := asMap(raw)
		if !ok {
			fail("options must be a mapping")
		}
		route.ExtraPassthroughOptions = m
	}

	if len(errs) == 0 {
		errs = routeErrors(route)
	}
	return route, errs
}

// ParsePolicy narrows spec into a typed caching policy.
func ParsePolicy(spec PolicySpec) (domain.CachingPolicy, []error) {
	var (
		p    domain.CachingPolicy
		errs []error
	)
	fail := func(format string, args ...any) {
		errs = append(errs, invalid(domain.ErrInvalidPolicy, format, args...))
	}

	for _, key := range unknownKeys(spec, policyKeys) {
		fail("unknown field %q", key)
	}

	handler, ok := spec["handler"]
	if !ok {
		handler = spec["strategy"]
	}
	switch v := handler.(type) {
	case string:
		p.Handler = domain.HandlerKind(v)
		if !p.Handler.IsValid() {
			fail("unknown handler %q", v)
		}
	case nil:
		fail("handler is required")
	default:
		fail("handler must be a string, got %T", v)
	}

	switch v := spec["cacheName"].(type) {
	case string:
		p.CacheName = v
	case nil:
		fail("cacheName is required")
	default:
		fail("cacheName must be a string, got %T", v)
	}

	if raw, ok := spec["networkTimeoutSeconds"]; ok {
		n, ok := asInt(raw)
		if !ok {
			fail("networkTimeoutSeconds must be an integer")
		} else {
			p.NetworkTimeoutSeconds = &n
		}
	}

	if raw, ok := spec["expiration"]; ok {
		exp, eerrs := parseExpiration(raw, "expiration", domain.ErrInvalidPolicy)
		errs = append(errs, eerrs...)
		p.Expiration = exp
	}

	if raw, ok := spec["headers"]; ok {
		m, ok := asMap(raw)
		if !ok {
			fail("headers must be a mapping")
		} else {
			p.ExtraHeaders = make(map[string]string, len(m))
			for k, v := range m {
				s, ok := v.(string)
				if !ok {
					fail("header %q must be a string", k)
					continue
				}
				p.ExtraHeaders[k] = s
			}
		}
	}

	if raw, ok := spec["options"]; ok {
		m, ok := asMap(raw)
		if !ok {
			fail("options must be a mapping")
		}
		p.PassthroughOptions = m
	}

	if len(errs) == 0 {
		errs = policyErrors(p)
	}
	return p, errs
}

func parseExpiration(raw any, field string, sentinel error) (*domain.Expiration, []error) {
	m, ok := asMap(raw)
	if !ok {
		return nil, []error{invalid(sentinel, "%s must be a mapping", field)}
	}

	var errs []error
	exp := &domain.Expiration{}
	for _, key := range sortedMapKeys(m) {
		n, isInt := asInt(m[key])
		switch {
		case key != "maxEntries" && key != "maxAgeSeconds":
			errs = append(errs, invalid(sentinel, "unknown field %s.%s", field, key))
		case !isInt:
			errs = append(errs, invalid(sentinel, "%s.%s must be an integer", field, key))
		case key == "maxEntries":
			exp.MaxEntries = &n
		default:
			exp.MaxAgeSeconds = &n
		}
	}
	return exp, errs
}

func parseConditions(raw any) (*domain.Conditions, []error) {
	m, ok := asMap(raw)
	if !ok {
		return nil, []error{invalid(domain.ErrInvalidRoute, "conditions must be a mapping")}
	}

	var errs []error
	c := &domain.Conditions{}
	for _, key := range sortedMapKeys(m) {
		list, isList := asStrings(m[key])
		switch {
		case key != "methods" && key != "allowedOrigins":
			errs = append(errs, invalid(domain.ErrInvalidRoute, "unknown field conditions.%s", key))
		case !isList:
			errs = append(errs, invalid(domain.ErrInvalidRoute, "conditions.%s must be a list of strings", key))
		case key == "methods":
			c.Methods = make([]string, len(list))
			for i, method := range list {
				c.Methods[i] = strings.ToUpper(method)
			}
		default:
			c.AllowedOrigins = list
		}
	}
	return c, errs
}

// asInt accepts the integer shapes produced by YAML and JSON decoders.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case RouteSpec:
		return m, true
	case PolicySpec:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func asStrings(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func unknownKeys(m map[string]any, known map[string]bool) []string {
	var out []string
	for k := range m {
		if !known[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func sortedMapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
