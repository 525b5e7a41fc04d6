package config

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/zyrohq/zyro/src/internal/utils"
)

// FromMap builds a RootConfig from an already deserialized document.
//
// Paths are normalized before any check runs. Every violation found in the
// document is reported; the returned error is always ValidationErrors.
func FromMap(raw map[string]interface{}) (*RootConfig, error) {
	b := &builder{failed: make(map[string]bool)}
	cfg := b.root(raw)

	if len(b.errs) > 0 {
		return nil, b.errs
	}
	return cfg, nil
}

// builder walks the untyped document, coercing values into typed fields and
// collecting one ValidationError per bad field.
type builder struct {
	errs   ValidationErrors
	failed map[string]bool
}

func (b *builder) fail(loc, format string, args ...interface{}) {
	b.failed[loc] = true
	b.errs = append(b.errs, ValidationError{
		FieldPath: loc,
		Message:   fmt.Sprintf(format, args...),
	})
}

// check runs struct-tag validation on v, skipping fields that already failed
// type coercion.
func (b *builder) check(v interface{}, prefix string) {
	if err := validate.Struct(v); err != nil {
		for _, ve := range convertValidatorErrors(err, prefix) {
			if b.failed[ve.FieldPath] {
				continue
			}
			b.failed[ve.FieldPath] = true
			b.errs = append(b.errs, ve)
		}
	}
}

func (b *builder) root(raw map[string]interface{}) *RootConfig {
	cfg := &RootConfig{
		Project: defaultProjectConfig(),
		Server:  defaultServerSettings(),
	}

	if v, ok := raw["project"]; ok && v != nil {
		if m, ok := b.mapping(v, "project"); ok {
			b.project(m, cfg.Project)
		}
	}

	if v, ok := raw["server"]; ok && v != nil {
		if m, ok := b.mapping(v, "server"); ok {
			b.server(m, cfg.Server)
		}
	}

	if v, ok := raw["endpoints"]; ok && v != nil {
		if items, ok := b.sequence(v, "endpoints"); ok {
			cfg.Endpoints = make([]*EndpointGroup, 0, len(items))
			for i, item := range items {
				loc := fmt.Sprintf("endpoints.%d", i)
				m, ok := b.mapping(item, loc)
				if !ok {
					continue
				}
				cfg.Endpoints = append(cfg.Endpoints, b.group(m, loc))
			}
		}
	}

	b.ensureRoutePaths(cfg)

	return cfg
}

func (b *builder) project(m map[string]interface{}, p *ProjectConfig) {
	b.optString(m, "project", "name", &p.Name)
	b.optString(m, "project", "version", &p.Version)
	b.optString(m, "project", "description", &p.Description)
	b.check(p, "project")
}

func (b *builder) server(m map[string]interface{}, s *ServerSettings) {
	b.optString(m, "server", "host", &s.Host)

	if v, ok := m["port"]; ok {
		if port, ok := b.integer(v, "server.port"); ok {
			s.Port = port
		}
	}

	if v, ok := m["hot_reload"]; ok {
		if hot, ok := b.boolean(v, "server.hot_reload"); ok {
			s.HotReload = hot
		}
	}

	var level string
	if b.optString(m, "server", "log_level", &level) {
		s.LogLevel = LogLevel(level)
	}

	b.check(s, "server")
}

func (b *builder) group(m map[string]interface{}, loc string) *EndpointGroup {
	g := &EndpointGroup{
		Version:  DefaultGroupVersion,
		BasePath: DefaultBasePath,
	}

	b.optString(m, loc, "group", &g.Group)
	b.optString(m, loc, "version", &g.Version)
	if b.optString(m, loc, "base_path", &g.BasePath) {
		g.BasePath = utils.NormalizeURLPath(g.BasePath)
	}

	if v, ok := m["routes"]; ok && v != nil {
		routesLoc := loc + ".routes"
		if items, ok := b.sequence(v, routesLoc); ok {
			g.Routes = make([]*RouteSpec, 0, len(items))
			for j, item := range items {
				routeLoc := fmt.Sprintf("%s.%d", routesLoc, j)
				rm, ok := b.mapping(item, routeLoc)
				if !ok {
					continue
				}
				g.Routes = append(g.Routes, b.route(rm, routeLoc))
			}
		}
	}

	return g
}

func (b *builder) route(m map[string]interface{}, loc string) *RouteSpec {
	r := &RouteSpec{Method: MethodGet}

	if v, ok := m["path"]; ok && v != nil {
		if path, ok := b.str(v, loc+".path"); ok {
			r.Path = utils.NormalizeURLPath(path)
		}
	}

	if v, ok := m["method"]; ok && v != nil {
		r.Method = HTTPMethod(strings.ToUpper(fmt.Sprint(v)))
	}

	b.optString(m, loc, "handler", &r.Handler)
	b.optString(m, loc, "description", &r.Description)

	key := "response"
	if _, ok := m[key]; !ok {
		if _, alias := m["responses"]; alias {
			key = "responses"
		}
	}
	if v, ok := m[key]; ok && v != nil {
		r.Responses = b.responses(v, loc+"."+key)
	}

	b.check(r, loc)

	return r
}

func (b *builder) responses(v interface{}, loc string) map[int]*RouteResponse {
	entries, ok := b.entries(v, loc)
	if !ok {
		return nil
	}

	result := make(map[int]*RouteResponse, len(entries))
	for _, entry := range entries {
		entryLoc := loc + "." + entry.key

		code, ok := statusCode(entry.rawKey)
		if !ok {
			b.fail(entryLoc, "Invalid HTTP status code in response mapping: %s", entry.key)
			continue
		}

		resp := &RouteResponse{}
		if entry.value != nil {
			m, ok := b.mapping(entry.value, entryLoc)
			if !ok {
				continue
			}
			b.optString(m, entryLoc, "response_model", &resp.ResponseModel)
		}
		result[code] = resp
	}

	return result
}

// ensureRoutePaths re-checks that every normalized route path is absolute.
func (b *builder) ensureRoutePaths(cfg *RootConfig) {
	for i, group := range cfg.Endpoints {
		for j, route := range group.Routes {
			if route.Path == "" || strings.HasPrefix(route.Path, "/") {
				continue
			}
			loc := fmt.Sprintf("endpoints.%d.routes.%d.path", i, j)
			if b.failed[loc] {
				continue
			}
			b.fail(loc, "Invalid route: path must start with '/': %s", route.Path)
		}
	}
}

func (b *builder) optString(m map[string]interface{}, prefix, key string, dst *string) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return false
	}
	s, ok := b.str(v, prefix+"."+key)
	if !ok {
		return false
	}
	*dst = s
	return true
}

func (b *builder) str(v interface{}, loc string) (string, bool) {
	s, ok := v.(string)
	if !ok {
		b.fail(loc, "must be a string")
		return "", false
	}
	return s, true
}

func (b *builder) integer(v interface{}, loc string) (int, bool) {
	if n, ok := toInt(v); ok {
		return n, true
	}
	b.fail(loc, "must be an integer")
	return 0, false
}

func (b *builder) boolean(v interface{}, loc string) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "on", "1":
			return true, true
		case "false", "no", "off", "0":
			return false, true
		}
	default:
		if n, ok := toInt(v); ok && (n == 0 || n == 1) {
			return n == 1, true
		}
	}
	b.fail(loc, "must be a boolean")
	return false, false
}

func (b *builder) sequence(v interface{}, loc string) ([]interface{}, bool) {
	items, ok := v.([]interface{})
	if !ok {
		b.fail(loc, "must be a list")
		return nil, false
	}
	return items, true
}

func (b *builder) mapping(v interface{}, loc string) (map[string]interface{}, bool) {
	entries, ok := b.entries(v, loc)
	if !ok {
		return nil, false
	}
	m := make(map[string]interface{}, len(entries))
	for _, entry := range entries {
		m[entry.key] = entry.value
	}
	return m, true
}

type mapEntry struct {
	key    string
	rawKey interface{}
	value  interface{}
}

// entries accepts the mapping shapes YAML and JSON decoders produce and
// returns them sorted by key so reported errors are stable.
func (b *builder) entries(v interface{}, loc string) ([]mapEntry, bool) {
	var entries []mapEntry
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			entries = append(entries, mapEntry{key: k, rawKey: k, value: val})
		}
	case map[interface{}]interface{}:
		for k, val := range t {
			entries = append(entries, mapEntry{key: fmt.Sprint(k), rawKey: k, value: val})
		}
	case map[int]interface{}:
		for k, val := range t {
			entries = append(entries, mapEntry{key: strconv.Itoa(k), rawKey: k, value: val})
		}
	default:
		b.fail(loc, "must be a mapping")
		return nil, false
	}

	sort.Slice(entries, func(i, j int) bool {
		ni, iok := toInt(entries[i].rawKey)
		nj, jok := toInt(entries[j].rawKey)
		if iok && jok {
			return ni < nj
		}
		return entries[i].key < entries[j].key
	})
	return entries, true
}

// statusCode parses a response-mapping key into a code in [100, 599].
func statusCode(key interface{}) (int, bool) {
	code, ok := toInt(key)
	if !ok {
		return 0, false
	}
	if code < 100 || code > 599 {
		return 0, false
	}
	return code, true
}

func toInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int8:
		return int(t), true
	case int16:
		return int(t), true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case uint:
		return int(t), true
	case uint8:
		return int(t), true
	case uint16:
		return int(t), true
	case uint32:
		return int(t), true
	case uint64:
		if t > math.MaxInt32 {
			return 0, false
		}
		return int(t), true
	case float32:
		return floatToInt(float64(t))
	case float64:
		return floatToInt(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
