package guard

import (
	"errors"
	"strings"

	"github.com/powertrading/portalauth/role"
)

// Route is the navigation-target metadata the guard consumes, declared once
// per route and read-only afterwards. A path segment of the form ":id"
// matches any single segment.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
	RequiresRole []role.Role
}

// ErrDuplicateRoute is returned when two routes declare the same path.
var ErrDuplicateRoute = errors.New("duplicate route path")

// RouteSet is a declarative route table with path lookup.
//
// RouteSet instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RouteSet struct {
	exact    map[string]Route
	patterns []Route
	fallback Route
}

// NewRouteSet builds a route table. fallback is returned by Lookup for paths
// matching no declared route (the portal's not-found route: public, no role
// requirement).
func NewRouteSet(routes []Route, fallback Route) (*RouteSet, error) {
	rs := &RouteSet{
		exact:    make(map[string]Route, len(routes)),
		fallback: fallback,
	}

	for _, r := range routes {
		if strings.Contains(r.Path, ":") {
			rs.patterns = append(rs.patterns, r)
			continue
		}
		if _, exists := rs.exact[r.Path]; exists {
			return nil, ErrDuplicateRoute
		}
		rs.exact[r.Path] = r
	}

	return rs, nil
}

// Lookup resolves a concrete path to its declared route, trying exact
// matches first and parameterized patterns second.
func (rs *RouteSet) Lookup(path string) Route {
	if r, ok := rs.exact[path]; ok {
		return r
	}

	segments := splitPath(path)
	for _, r := range rs.patterns {
		if matchSegments(splitPath(r.Path), segments) {
			return r
		}
	}

	return rs.fallback
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func matchSegments(pattern, actual []string) bool {
	if len(pattern) != len(actual) {
		return false
	}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			continue
		}
		if p != actual[i] {
			return false
		}
	}
	return true
}
