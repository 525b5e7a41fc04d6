package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/zyrohq/zyro/src/internal/errors"
	"github.com/zyrohq/zyro/src/internal/log"
)

const (
	// DefaultVersion is the schema version of freshly written state files.
	DefaultVersion = 1

	timestampLayout = "2006-01-02T15:04:05.000000Z"
)

// MigrationFunc upgrades data in place from the previous schema version.
type MigrationFunc func(data map[string]interface{})

// Meta is the envelope header written with every save.
type Meta struct {
	Version     int    `json:"version"`
	SchemaHash  string `json:"schema_hash"`
	LastUpdated string `json:"last_updated"`
}

type envelope struct {
	Meta Meta                   `json:"_meta"`
	Data map[string]interface{} `json:"data"`
}

// Config describes where a Store keeps its artifacts.
type Config struct {
	// Path of the JSON state file.
	Path string
	// LockPath of the lock artifact (default: Path + ".lock").
	LockPath string
	// Version is the current schema version (default: DefaultVersion).
	Version int
}

// Store is a write-through key/value store persisted as a versioned JSON
// envelope. Every mutation is flushed before it returns.
type Store struct {
	path     string
	lockPath string
	version  int
	logger   *log.Logger

	mu         sync.Mutex
	data       map[string]interface{}
	migrations map[int]MigrationFunc
}

// New creates a store. Nothing is read until Load.
func New(cfg Config) *Store {
	if cfg.LockPath == "" {
		cfg.LockPath = cfg.Path + ".lock"
	}
	if cfg.Version <= 0 {
		cfg.Version = DefaultVersion
	}

	return &Store{
		path:       cfg.Path,
		lockPath:   cfg.LockPath,
		version:    cfg.Version,
		logger:     log.Named("StateStore"),
		data:       make(map[string]interface{}),
		migrations: make(map[int]MigrationFunc),
	}
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// Version returns the current schema version.
func (s *Store) Version() int {
	return s.version
}

// RegisterMigration registers fn as the upgrade into version.
// Registering the same version twice replaces the earlier function.
func (s *Store) RegisterMigration(version int, fn MigrationFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.migrations[version] = fn
}

// Load reads the state file into memory.
//
// A missing file yields empty state. Unreadable or malformed content is
// logged and replaced by empty state. When the file version is older than
// the current one, migrations are applied and the result is saved; only
// that save can fail.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Infof("No state file found at %s. Starting fresh.", s.path)
		} else {
			s.logger.Errorf("Failed to read state file %s: %v. Resetting state.", s.path, err)
		}
		s.data = make(map[string]interface{})
		return nil
	}

	fileVersion, data, err := decodeEnvelope(content)
	if err != nil {
		s.logger.Errorf("Invalid state file %s: %v. Resetting state.", s.path, err)
		s.data = make(map[string]interface{})
		return nil
	}
	s.data = data

	if fileVersion >= s.version {
		s.logger.Infof("Loaded state (version %d, %d keys)", fileVersion, len(s.data))
		return nil
	}

	s.logger.Warnf("State version mismatch. Current=%d, File=%d. Running migrations.", s.version, fileVersion)
	s.runMigrations(fileVersion, s.version)

	return s.saveLocked()
}

// runMigrations applies every registered migration in (from, to] ascending.
// Versions without a migration are skipped.
func (s *Store) runMigrations(from, to int) {
	for version := from + 1; version <= to; version++ {
		migration, ok := s.migrations[version]
		if !ok {
			continue
		}
		s.logger.Infof("Running migration for version %d", version)
		migration(s.data)
	}
}

// Save writes the full envelope to disk.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	env := envelope{
		Meta: Meta{
			Version:     s.version,
			SchemaHash:  SchemaHash(s.version, s.data),
			LastUpdated: Timestamp(),
		},
		Data: s.data,
	}

	content, err := json.MarshalIndent(env, "", "    ")
	if err != nil {
		return errors.NewStatePersistenceError("failed to encode state", err)
	}

	if err := writeFileAtomic(s.path, content); err != nil {
		s.logger.Errorf("Failed to save state: %v", err)
		return errors.NewStatePersistenceError(fmt.Sprintf("failed to write state file %s", s.path), err)
	}

	s.logger.Debugf("Saved state to %s", s.path)
	return nil
}

// Set stores value under key and flushes. On a failed flush the previous
// value is restored so memory never runs ahead of the file.
func (s *Store) Set(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.data[key]
	s.data[key] = value

	if err := s.saveLocked(); err != nil {
		if existed {
			s.data[key] = previous
		} else {
			delete(s.data, key)
		}
		return err
	}

	s.logger.Debugf("Set state: %s=%v", key, value)
	return nil
}

// Get returns the value stored under key, or def when absent.
func (s *Store) Get(key string, def interface{}) interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value, ok := s.data[key]; ok {
		return value
	}
	return def
}

// Remove deletes key and flushes. An absent key is a no-op without I/O.
func (s *Store) Remove(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.data[key]
	if !ok {
		return false, nil
	}
	delete(s.data, key)

	if err := s.saveLocked(); err != nil {
		s.data[key] = previous
		return false, err
	}

	s.logger.Debugf("Removed state: %s", key)
	return true, nil
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a shallow copy of the stored data.
func (s *Store) Snapshot() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[string]interface{}, len(s.data))
	for k, v := range s.data {
		snapshot[k] = v
	}
	return snapshot
}

// decodeEnvelope parses content and returns the file version and data.
// A missing _meta or version means version 0.
func decodeEnvelope(content []byte) (int, map[string]interface{}, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		return 0, nil, err
	}

	version := 0
	if metaRaw, ok := raw["_meta"]; ok && string(metaRaw) != "null" {
		var meta map[string]interface{}
		if err := json.Unmarshal(metaRaw, &meta); err != nil {
			return 0, nil, fmt.Errorf("_meta: %w", err)
		}
		if v, ok := meta["version"]; ok && v != nil {
			n, ok := v.(float64)
			if !ok || n != float64(int(n)) {
				return 0, nil, fmt.Errorf("_meta.version: expected an integer, got %v", v)
			}
			version = int(n)
		}
	}

	data := make(map[string]interface{})
	if dataRaw, ok := raw["data"]; ok && string(dataRaw) != "null" {
		if err := json.Unmarshal(dataRaw, &data); err != nil {
			return 0, nil, fmt.Errorf("data: %w", err)
		}
		if data == nil {
			data = make(map[string]interface{})
		}
	}

	return version, data, nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	keepTemp := false
	defer func() {
		_ = tmp.Close()
		if !keepTemp {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	keepTemp = true
	return nil
}

// Timestamp returns the current UTC time in the format used by state files.
func Timestamp() string {
	return time.Now().UTC().Format(timestampLayout)
}
