// Package settings provides tool-level options such as where runtime state
// and log files live.
//
// Settings come from built-in defaults, an optional TOML file and ZYRO_*
// environment variables. Paths may reference {{config_dir}} (the directory
// of the project config) and {{home}}.
package settings
