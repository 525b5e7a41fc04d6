package settings

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/valyala/fasttemplate"

	"github.com/zyrohq/zyro/src/internal/log"
	"github.com/zyrohq/zyro/src/internal/utils"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "ZYRO_"

	TemplateConfigDir = "config_dir"
	TemplateHome      = "home"
)

// Settings holds tool-level options. It is built once at startup and passed
// down explicitly.
type Settings struct {
	// LogsDirectory receives zyro.log when LogToFile is set (default: ./logs).
	LogsDirectory string `toml:"logs_directory" validate:"required"`
	LogToFile     bool   `toml:"log_to_file"`
	LogMaxSizeMB  int    `toml:"log_max_size_mb" validate:"min=1"`
	LogMaxBackups int    `toml:"log_max_backups" validate:"min=0"`

	// StateFile and LockFile may use {{config_dir}} and {{home}}.
	// Relative values are resolved against the config directory.
	StateFile string `toml:"state_file" validate:"required"`
	LockFile  string `toml:"lock_file" validate:"required"`

	// LockWaitSeconds bounds how long start polls for the state lock.
	LockWaitSeconds int `toml:"lock_wait_seconds" validate:"min=0"`
	// StateVersion is the current state schema version.
	StateVersion int `toml:"state_version" validate:"min=1"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		LogsDirectory:   "./logs",
		LogToFile:       false,
		LogMaxSizeMB:    10,
		LogMaxBackups:   5,
		StateFile:       "{{config_dir}}/.zyro_state.json",
		LockFile:        "{{config_dir}}/.zyro_state.json.lock",
		LockWaitSeconds: 5,
		StateVersion:    1,
	}
}

// Load builds settings from defaults, the optional TOML file at path and
// ZYRO_* environment variables, in that order. File paths are expanded
// against configDir.
func Load(path, configDir string) (*Settings, error) {
	s := Default()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}

		if err := toml.Unmarshal(content, s); err != nil {
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				row, col := derr.Position()
				return nil, fmt.Errorf("failed to parse settings file at line %d, column %d: %w", row, col, err)
			}
			return nil, fmt.Errorf("failed to parse settings file: %w", err)
		}
		log.Debugf("Settings file path: %s", path)
	}

	if err := s.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	s.expandPaths(configDir)

	return s, nil
}

// Validate checks field ranges.
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return err
	}

	messages := make([]string, 0, len(validatorErrs))
	for _, e := range validatorErrs {
		messages = append(messages, fmt.Sprintf("%s: failed on '%s' (%s)", e.Field(), e.Tag(), e.Param()))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(messages, "; "))
}

// EnsureDirectories creates the logs directory when file logging is on.
func (s *Settings) EnsureDirectories() error {
	if !s.LogToFile {
		return nil
	}
	return os.MkdirAll(s.LogsDirectory, 0755)
}

func (s *Settings) expandPaths(configDir string) {
	vars := map[string]interface{}{
		TemplateConfigDir: configDir,
		TemplateHome:      homeDir(),
	}

	s.StateFile = utils.GetAbsolutePath(expandTemplate(s.StateFile, vars), configDir)
	s.LockFile = utils.GetAbsolutePath(expandTemplate(s.LockFile, vars), configDir)
	s.LogsDirectory = expandTemplate(s.LogsDirectory, vars)
}

func expandTemplate(value string, vars map[string]interface{}) string {
	if !strings.Contains(value, "{{") {
		return value
	}

	t := fasttemplate.New(value, "{{", "}}")
	return t.ExecuteString(vars)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// applyEnv overrides every field that has a ZYRO_<TOML_NAME> variable set.
func (s *Settings) applyEnv(lookup func(string) (string, bool)) error {
	v := reflect.ValueOf(s).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := strings.SplitN(field.Tag.Get("toml"), ",", 2)[0]
		if name == "" {
			continue
		}

		envName := EnvPrefix + strings.ToUpper(name)
		raw, ok := lookup(envName)
		if !ok {
			continue
		}

		target := v.Field(i)
		switch target.Kind() {
		case reflect.String:
			target.SetString(raw)
		case reflect.Int:
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("invalid value for %s: %q is not an integer", envName, raw)
			}
			target.SetInt(int64(n))
		case reflect.Bool:
			b, err := strconv.ParseBool(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("invalid value for %s: %q is not a boolean", envName, raw)
			}
			target.SetBool(b)
		}
	}

	return nil
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
	})
	return v
}()
