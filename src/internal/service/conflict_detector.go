package service

import (
	"fmt"
	"strings"

	"github.com/zyrohq/zyro/src/internal/config"
	"github.com/zyrohq/zyro/src/internal/utils"
)

// RouteKey identifies a route by its effective method and full path.
type RouteKey struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// String renders the key as "<METHOD> <path>".
func (k RouteKey) String() string {
	return k.Method + " " + k.Path
}

// EffectiveRouteKey returns the key a route is served under inside group.
func EffectiveRouteKey(group *config.EndpointGroup, route *config.RouteSpec) RouteKey {
	fullPath := utils.JoinURLPath(
		utils.NormalizeURLPath(group.BasePath),
		utils.NormalizeURLPath(route.Path),
	)
	return RouteKey{
		Method: strings.ToUpper(string(route.Method)),
		Path:   fullPath,
	}
}

// DetectConflicts walks groups and routes in declaration order and reports
// every repeated route key. A key declared n times yields n-1 entries.
func DetectConflicts(cfg *config.RootConfig) (warnings []string, duplicates []RouteKey) {
	seen := make(map[RouteKey]struct{})

	for _, group := range cfg.Endpoints {
		for _, route := range group.Routes {
			key := EffectiveRouteKey(group, route)

			if _, exists := seen[key]; !exists {
				seen[key] = struct{}{}
				continue
			}

			warnings = append(warnings, fmt.Sprintf("Duplicate route found: %s", key))
			duplicates = append(duplicates, key)
		}
	}

	return warnings, duplicates
}
