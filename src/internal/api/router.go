package api

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/zyrohq/zyro/src/internal/config"
	"github.com/zyrohq/zyro/src/internal/log"
	"github.com/zyrohq/zyro/src/internal/service"
)

var routerLog = log.Named("Router")

const (
	InfoPath    = "/_zyro/info"
	MetricsPath = "/_zyro/metrics"

	acknowledgement = "Successful"
)

// NewRouter creates a router serving every declared route of cfg.
//
// Each route answers with a canned acknowledgement. When a (method, path)
// key is declared more than once the first declaration is served. Routes on
// InfoPath or MetricsPath are skipped with a warning.
func NewRouter(cfg *config.RootConfig, metrics *Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(Recovery)
	r.Use(Logger)
	r.Use(metrics.Instrument)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteMethodNotAllowed(w, r.Method, r.URL.Path)
	})

	routes := mountRoutes(r, cfg)
	metrics.RoutesMounted.Set(float64(len(routes)))

	info := buildInfo(cfg, routes)
	r.Get(InfoPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, info)
	})
	r.Method(http.MethodGet, MetricsPath, metrics.Handler())

	return r
}

func mountRoutes(r chi.Router, cfg *config.RootConfig) []RouteInfo {
	seen := make(map[service.RouteKey]bool)
	var mounted []RouteInfo

	for _, group := range cfg.Endpoints {
		for _, route := range group.Routes {
			key := service.EffectiveRouteKey(group, route)
			if key.Path == InfoPath || key.Path == MetricsPath {
				routerLog.Warnf("Route %s uses a reserved path, skipping", key)
				continue
			}
			if seen[key] {
				routerLog.Debugf("Skipping repeated route %s", key)
				continue
			}

			if err := mountRoute(r, key); err != nil {
				routerLog.Warnf("Cannot serve route %s: %v", key, err)
				continue
			}
			seen[key] = true

			mounted = append(mounted, RouteInfo{
				Method:      key.Method,
				Path:        key.Path,
				Handler:     route.Handler,
				Group:       group.Group,
				Version:     group.Version,
				Description: route.Description,
				Responses:   responseCodes(route),
			})
		}
	}

	return mounted
}

// mountRoute registers key, turning a chi pattern panic into an error.
func mountRoute(r chi.Router, key service.RouteKey) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()

	r.Method(key.Method, key.Path, http.HandlerFunc(acknowledge))
	return nil
}

func acknowledge(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: acknowledgement})
}

func responseCodes(route *config.RouteSpec) []int {
	if len(route.Responses) == 0 {
		return nil
	}
	codes := make([]int, 0, len(route.Responses))
	for code := range route.Responses {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

func buildInfo(cfg *config.RootConfig, routes []RouteInfo) InfoResponse {
	if routes == nil {
		routes = []RouteInfo{}
	}
	return InfoResponse{
		Project: ProjectInfo{
			Name:        cfg.Project.Name,
			Version:     cfg.Project.Version,
			Description: cfg.Project.Description,
		},
		Server: ServerInfo{
			Host:      cfg.Server.Host,
			Port:      cfg.Server.Port,
			HotReload: cfg.Server.HotReload,
			LogLevel:  string(cfg.Server.LogLevel),
		},
		Routes: routes,
	}
}
