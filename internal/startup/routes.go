package startup

import (
	"sort"
	"strings"

	"video-library/internal/logging"

	"github.com/gorilla/mux"
)

// RouteInfo is one method and path registered on a router.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// GetRoutes lists the method and path template of every route on router.
// Routes without a method restriction are listed with method "*".
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return err
		}
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}
		for _, m := range methods {
			routes = append(routes, RouteInfo{Method: m, Path: path, Name: route.GetName()})
		}
		return nil
	})
	return routes, err
}

// LogHTTPRoutes logs the HTTP setup. Routes are listed at debug level,
// grouped by their first path segment.
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logSection("HTTP SERVER SETUP")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("walking routes: %v", err)
		}
		sort.SliceStable(routes, func(i, j int) bool {
			return getRouteGroup(routes[i].Path) < getRouteGroup(routes[j].Path)
		})

		logging.Debug("  %d routes", len(routes))
		current := "\x00"
		for _, r := range routes {
			if group := getRouteGroup(r.Path); group != current {
				current = group
				if group == "" {
					group = "root"
				}
				logging.Debug("  [%s]", group)
			}
			logging.Debug("    %-6s %s", r.Method, r.Path)
		}
	}

	if logHealthChecks {
		logging.Info("  Access log includes health checks")
	} else {
		logging.Info("  Access log skips health checks (LOG_HEALTH_CHECKS=false)")
	}
}

// getRouteGroup is the first path segment, or "api/<resource>" under /api.
func getRouteGroup(path string) string {
	first, rest, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if first == "api" && rest != "" {
		resource, _, _ := strings.Cut(rest, "/")
		return "api/" + resource
	}
	return first
}
