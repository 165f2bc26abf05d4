// Package proxy forwards non-auth API traffic to backend services by path
// pattern. The route table is built once at startup and read-only after,
// so concurrent lookups need no locking.
package proxy

import (
	"fmt"
	"sort"
	"strings"

	"auth-gateway/internal/config"
)

// Route is one table entry. Pattern is a glob ending in "/**", where "/**"
// matches the prefix itself and any remaining path segments.
type Route struct {
	Pattern       string
	TargetBase    string
	RewritePrefix string

	// prefix is Pattern without the trailing "/**".
	prefix string
}

// Table is an immutable, specificity-ordered route list. Longer literal
// prefixes are evaluated first so a more specific pattern can never be
// shadowed by a general one.
type Table struct {
	routes []Route
}

// NewTable validates and orders the configured routes. Two routes with the
// same literal prefix have no defined precedence and are rejected.
func NewTable(configs []config.RouteConfig) (*Table, error) {
	routes := make([]Route, 0, len(configs))
	seen := make(map[string]string)

	for _, rc := range configs {
		if !strings.HasSuffix(rc.Pattern, "/**") {
			return nil, fmt.Errorf("proxy: pattern %q must end with /**", rc.Pattern)
		}
		if rc.TargetBase == "" {
			return nil, fmt.Errorf("proxy: pattern %q has no target base", rc.Pattern)
		}

		prefix := strings.TrimSuffix(rc.Pattern, "/**")
		if prefix == "" || !strings.HasPrefix(prefix, "/") {
			return nil, fmt.Errorf("proxy: pattern %q has an invalid prefix", rc.Pattern)
		}
		if prev, ok := seen[prefix]; ok {
			return nil, fmt.Errorf("proxy: patterns %q and %q overlap with no defined precedence", prev, rc.Pattern)
		}
		seen[prefix] = rc.Pattern

		routes = append(routes, Route{
			Pattern:       rc.Pattern,
			TargetBase:    strings.TrimSuffix(rc.TargetBase, "/"),
			RewritePrefix: rc.RewritePrefix,
			prefix:        prefix,
		})
	}

	// Most specific first; equal lengths keep a stable lexical order so
	// matching stays deterministic.
	sort.SliceStable(routes, func(i, j int) bool {
		if len(routes[i].prefix) != len(routes[j].prefix) {
			return len(routes[i].prefix) > len(routes[j].prefix)
		}
		return routes[i].prefix < routes[j].prefix
	})

	return &Table{routes: routes}, nil
}

// Match returns the first route whose pattern covers path, or nil.
func (t *Table) Match(path string) *Route {
	for i := range t.routes {
		r := &t.routes[i]
		if path == r.prefix || strings.HasPrefix(path, r.prefix+"/") {
			return r
		}
	}
	return nil
}

// Rewrite maps the inbound path to the backend path. Without a rewrite
// prefix the path passes through unchanged. With one, the matched literal
// prefix is stripped and any remainder is appended to the rewrite prefix
// with a single separating slash.
func (t *Table) Rewrite(path string, r *Route) string {
	if r.RewritePrefix == "" {
		return path
	}

	remainder := strings.TrimPrefix(path, r.prefix)
	remainder = strings.Trim(remainder, "/")
	if remainder == "" {
		return r.RewritePrefix
	}
	return r.RewritePrefix + "/" + remainder
}

// Routes exposes the ordered table for logging at startup.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}
