// Package pathutil maps request paths to a bounded set of metric labels.
package pathutil

import "strings"

// UnmatchedRoute labels every path the router does not serve, so that
// scanners probing random URLs cannot grow the label set.
const UnmatchedRoute = "/unmatched"

var knownRoutes = map[string]struct{}{
	"/":                {},
	"/api":             {},
	"/api/summarize":   {},
	"/health":          {},
	"/health/detailed": {},
	"/health/live":     {},
	"/health/ready":    {},
	"/metrics":         {},
}

// NormalizePath returns path without query string or trailing slash when it
// is a served route, and UnmatchedRoute otherwise.
//
//	NormalizePath("/api/summarize/")     // "/api/summarize"
//	NormalizePath("/health?verbose=1")   // "/health"
//	NormalizePath("/wp-admin/setup.php") // "/unmatched"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if path == "" {
		path = "/"
	}

	if _, ok := knownRoutes[path]; ok {
		return path
	}
	return UnmatchedRoute
}

// Cardinality is the number of distinct labels NormalizePath can return.
func Cardinality() int {
	return len(knownRoutes) + 1
}
