package config

// HTTPMethod is one of the methods a route may declare.
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodDelete HTTPMethod = "DELETE"
	MethodPatch  HTTPMethod = "PATCH"
)

// LogLevel is the server log level as written in the config file.
type LogLevel string

const (
	LogLevelInfo     LogLevel = "INFO"
	LogLevelError    LogLevel = "ERROR"
	LogLevelDebug    LogLevel = "DEBUG"
	LogLevelCritical LogLevel = "CRITICAL"
	LogLevelWarning  LogLevel = "WARNING"
)

const (
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 8000
	DefaultGroupVersion = "v1"
	DefaultBasePath     = "/"

	DefaultProjectName    = "Zyro API"
	DefaultProjectVersion = "0.1.0"
)

// RootConfig is the validated form of a zyro.yaml document. It is built once
// per validation or start and is not modified afterwards.
type RootConfig struct {
	// Project holds descriptive metadata shown by the info endpoint.
	Project *ProjectConfig `yaml:"project" json:"project"`
	// Server holds bind and runtime settings.
	Server *ServerSettings `yaml:"server" json:"server"`
	// Endpoints are the declared endpoint groups, in file order.
	Endpoints []*EndpointGroup `yaml:"endpoints" json:"endpoints"`
}

type ProjectConfig struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description,omitempty"`
}

type ServerSettings struct {
	// Host is the interface to bind (default: 0.0.0.0).
	Host string `yaml:"host" json:"host" validate:"required"`
	// Port is the TCP port to bind (default: 8000).
	Port int `yaml:"port" json:"port" validate:"min=1,max=65535"`
	// HotReload re-reads the config file when it changes (default: true).
	HotReload bool `yaml:"hot_reload" json:"hot_reload"`
	// LogLevel is one of INFO, ERROR, DEBUG, CRITICAL, WARNING (default: INFO).
	LogLevel LogLevel `yaml:"log_level" json:"log_level" validate:"oneof=INFO ERROR DEBUG CRITICAL WARNING"`
}

// Address returns host:port.
func (s *ServerSettings) Address() string {
	return joinHostPort(s.Host, s.Port)
}

type EndpointGroup struct {
	// Group is an optional label.
	Group string `yaml:"group" json:"group,omitempty"`
	// Version is an API version label (default: v1).
	Version string `yaml:"version" json:"version"`
	// BasePath prefixes every route of the group (default: /).
	BasePath string `yaml:"base_path" json:"base_path"`
	// Routes keep their declaration order.
	Routes []*RouteSpec `yaml:"routes" json:"routes"`
}

type RouteSpec struct {
	// Path is normalized: leading slash, no trailing slash unless root.
	Path string `yaml:"path" json:"path" validate:"required"`
	// Method is stored upper-case.
	Method HTTPMethod `yaml:"method" json:"method" validate:"oneof=GET POST PUT DELETE PATCH"`
	// Handler is an opaque reference; it is never resolved.
	Handler string `yaml:"handler" json:"handler" validate:"required"`
	// Description is free text.
	Description string `yaml:"description" json:"description,omitempty"`
	// Responses maps HTTP status codes (100-599) to an optional response model.
	Responses map[int]*RouteResponse `yaml:"response" json:"response,omitempty"`
}

type RouteResponse struct {
	// ResponseModel is an optional reference to a response schema.
	ResponseModel string `yaml:"response_model" json:"response_model,omitempty"`
}

// RouteCount returns the number of declared routes across all groups.
func (c *RootConfig) RouteCount() int {
	n := 0
	for _, group := range c.Endpoints {
		n += len(group.Routes)
	}
	return n
}

func defaultServerSettings() *ServerSettings {
	return &ServerSettings{
		Host:      DefaultHost,
		Port:      DefaultPort,
		HotReload: true,
		LogLevel:  LogLevelInfo,
	}
}

func defaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Name:    DefaultProjectName,
		Version: DefaultProjectVersion,
	}
}
