package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/zyrohq/zyro/src/internal/errors"
	"github.com/zyrohq/zyro/src/internal/hashing"
)

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LoadFile reads a YAML configuration file into an untyped mapping.
//
// ${VAR} references are replaced with environment values before parsing;
// unset variables are left as written. Any failure is a CONFIG_LOAD_ERROR.
func LoadFile(path string) (map[string]interface{}, error) {
	data, _, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// readFile checks that path is a YAML file and returns its content and MD5.
func readFile(path string) ([]byte, string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, "", errors.NewConfigLoadError(fmt.Sprintf("Configuration file not found: %s", path), err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, "", errors.NewConfigLoadError(fmt.Sprintf("Configuration file %s is not a YAML file.", path), nil)
	}

	data, sum, err := hashing.ReadFile(path)
	if err != nil {
		return nil, "", errors.NewConfigLoadError(fmt.Sprintf("Configuration file not found: %s", path), err)
	}
	return data, sum, nil
}

// Parse decodes YAML content; path is only used in error messages.
func Parse(path string, data []byte) (map[string]interface{}, error) {
	expanded := expandEnvVars(string(data))

	var doc interface{}
	if err := yaml.Unmarshal([]byte(expanded), &doc); err != nil {
		return nil, errors.NewConfigLoadError(fmt.Sprintf("Failed to parse YAML in %s: %v", path, err), err)
	}

	raw, ok := doc.(map[string]interface{})
	if !ok || raw == nil {
		return nil, errors.NewConfigLoadError(
			fmt.Sprintf("Configuration file %s must contain a valid YAML dictionary.", path), nil)
	}

	return raw, nil
}

// LoadConfig loads and validates a configuration file.
// Schema failures are returned as SCHEMA_VALIDATION_ERROR with per-field details.
func LoadConfig(path string) (*RootConfig, error) {
	raw, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := FromMap(raw)
	if err != nil {
		if ve, ok := err.(ValidationErrors); ok {
			return nil, errors.NewSchemaError(ve.Details(), ve)
		}
		return nil, err
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} with environment variable values
func expandEnvVars(input string) string {
	return envPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if value, exists := os.LookupEnv(name); exists {
			return value
		}
		return match
	})
}
