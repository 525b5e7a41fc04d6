package api

// MessageResponse is the canned acknowledgement every declared route returns.
type MessageResponse struct {
	Message string `json:"message"`
}

// InfoResponse describes the running configuration.
type InfoResponse struct {
	Project ProjectInfo `json:"project"`
	Server  ServerInfo  `json:"server"`
	Routes  []RouteInfo `json:"routes"`
}

type ProjectInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

type ServerInfo struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	HotReload bool   `json:"hot_reload"`
	LogLevel  string `json:"log_level"`
}

// RouteInfo is one mounted route.
type RouteInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Handler     string `json:"handler"`
	Group       string `json:"group,omitempty"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Responses   []int  `json:"responses,omitempty"`
}
