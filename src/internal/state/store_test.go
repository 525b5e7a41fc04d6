package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"testing"

	"github.com/zyrohq/zyro/src/internal/errors"
)

func newTestStore(t *testing.T, version int) *Store {
	t.Helper()
	dir := t.TempDir()
	return New(Config{
		Path:    filepath.Join(dir, ".zyro_state.json"),
		Version: version,
	})
}

func readEnvelope(t *testing.T, path string) envelope {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read state file: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(content, &env); err != nil {
		t.Fatalf("Failed to parse state file: %v", err)
	}
	return env
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := newTestStore(t, 0)

	if err := store.Load(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(store.Keys()) != 0 {
		t.Errorf("Expected empty state, got keys %v", store.Keys())
	}

	if err := store.Save(); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	env := readEnvelope(t, store.Path())
	if env.Meta.Version != DefaultVersion {
		t.Errorf("Expected version %d, got %d", DefaultVersion, env.Meta.Version)
	}
	if !regexp.MustCompile(`^[0-9a-f]{16}$`).MatchString(env.Meta.SchemaHash) {
		t.Errorf("Unexpected schema hash %q", env.Meta.SchemaHash)
	}
	if !regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{6}Z$`).MatchString(env.Meta.LastUpdated) {
		t.Errorf("Unexpected timestamp %q", env.Meta.LastUpdated)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore(t, 0)
	if err := store.Load(); err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	values := map[string]interface{}{
		"pid":     float64(4242),
		"mode":    "detached",
		"host":    "0.0.0.0",
		"ratio":   0.5,
		"enabled": true,
		"tags":    []interface{}{"a", "b"},
		"nested":  map[string]interface{}{"k": "v"},
		"nothing": nil,
	}
	for k, v := range values {
		if err := store.Set(k, v); err != nil {
			t.Fatalf("Failed to set %s: %v", k, err)
		}
	}

	reloaded := New(Config{Path: store.Path()})
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Failed to reload: %v", err)
	}

	if !reflect.DeepEqual(reloaded.Snapshot(), values) {
		t.Errorf("Expected %v, got %v", values, reloaded.Snapshot())
	}

	env := readEnvelope(t, store.Path())
	if env.Meta.SchemaHash != SchemaHash(DefaultVersion, reloaded.Snapshot()) {
		t.Error("Expected schema hash to be stable across reload")
	}
}

func TestStore_SetWritesThrough(t *testing.T) {
	store := newTestStore(t, 0)
	if err := store.Load(); err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	if err := store.Set("port", 8000); err != nil {
		t.Fatalf("Failed to set: %v", err)
	}

	env := readEnvelope(t, store.Path())
	if env.Data["port"] != float64(8000) {
		t.Errorf("Expected port 8000 on disk, got %v", env.Data["port"])
	}
	if got := store.Get("port", nil); got != 8000 {
		t.Errorf("Expected 8000 in memory, got %v", got)
	}
	if got := store.Get("missing", "fallback"); got != "fallback" {
		t.Errorf("Expected default value, got %v", got)
	}
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore(t, 0)
	if err := store.Load(); err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	removed, err := store.Remove("pid")
	if err != nil || removed {
		t.Fatalf("Expected (false, nil) for absent key, got (%v, %v)", removed, err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("Expected no write for absent key")
	}

	if err := store.Set("pid", 1); err != nil {
		t.Fatalf("Failed to set: %v", err)
	}
	removed, err = store.Remove("pid")
	if err != nil || !removed {
		t.Fatalf("Expected (true, nil), got (%v, %v)", removed, err)
	}

	env := readEnvelope(t, store.Path())
	if _, ok := env.Data["pid"]; ok {
		t.Error("Expected pid to be absent from reloaded file")
	}
}

func TestStore_LoadMalformed(t *testing.T) {
	tests := map[string]string{
		"invalid json":    "{not json",
		"data not object": `{"_meta": {"version": 1}, "data": [1, 2]}`,
		"bad version":     `{"_meta": {"version": "one"}, "data": {}}`,
		"top level list":  `[]`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			store := newTestStore(t, 0)
			if err := os.WriteFile(store.Path(), []byte(content), 0644); err != nil {
				t.Fatalf("Failed to write state: %v", err)
			}

			if err := store.Load(); err != nil {
				t.Fatalf("Expected corruption to be recovered, got: %v", err)
			}
			if len(store.Keys()) != 0 {
				t.Errorf("Expected empty state, got %v", store.Keys())
			}

			if err := store.Set("mode", "foreground"); err != nil {
				t.Fatalf("Failed to set: %v", err)
			}
			env := readEnvelope(t, store.Path())
			if !reflect.DeepEqual(env.Data, map[string]interface{}{"mode": "foreground"}) {
				t.Errorf("Expected corrupted file to be overwritten, got %v", env.Data)
			}
		})
	}
}

func TestStore_Migrations(t *testing.T) {
	store := newTestStore(t, 2)
	store.RegisterMigration(2, func(data map[string]interface{}) {
		data["migrated"] = true
	})

	old := `{"_meta": {"version": 1, "schema_hash": "x", "last_updated": "y"}, "data": {"pid": 10}}`
	if err := os.WriteFile(store.Path(), []byte(old), 0644); err != nil {
		t.Fatalf("Failed to write state: %v", err)
	}

	if err := store.Load(); err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if store.Get("migrated", false) != true {
		t.Error("Expected migrated key after load")
	}

	env := readEnvelope(t, store.Path())
	if env.Meta.Version != 2 {
		t.Errorf("Expected version 2 on disk, got %d", env.Meta.Version)
	}
	if env.Data["migrated"] != true || env.Data["pid"] != float64(10) {
		t.Errorf("Unexpected migrated data: %v", env.Data)
	}
}

func TestStore_MigrationOrder(t *testing.T) {
	store := newTestStore(t, 4)

	var order []int
	for _, v := range []int{4, 1, 2} {
		version := v
		store.RegisterMigration(version, func(data map[string]interface{}) {
			order = append(order, version)
		})
	}

	// No _meta means version 0, so every migration up to 4 runs and the gap at 3 is skipped.
	if err := os.WriteFile(store.Path(), []byte(`{"data": {}}`), 0644); err != nil {
		t.Fatalf("Failed to write state: %v", err)
	}
	if err := store.Load(); err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	if !reflect.DeepEqual(order, []int{1, 2, 4}) {
		t.Errorf("Expected migrations [1 2 4], got %v", order)
	}
}

func TestStore_NoMigrationForCurrentVersion(t *testing.T) {
	store := newTestStore(t, 2)
	ran := false
	store.RegisterMigration(2, func(map[string]interface{}) { ran = true })

	current := `{"_meta": {"version": 2}, "data": {"a": "b"}}`
	if err := os.WriteFile(store.Path(), []byte(current), 0644); err != nil {
		t.Fatalf("Failed to write state: %v", err)
	}
	if err := store.Load(); err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if ran {
		t.Error("Expected no migration for an up-to-date file")
	}
}

func TestStore_SaveFailure(t *testing.T) {
	store := New(Config{Path: filepath.Join(t.TempDir(), "missing", "state.json")})
	if err := store.Load(); err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	err := store.Set("pid", 1)
	if !errors.HasCode(err, errors.ErrCodeStatePersistence) {
		t.Fatalf("Expected persistence error, got: %v", err)
	}
	if store.Get("pid", nil) != nil {
		t.Error("Expected failed set to leave memory unchanged")
	}
}

func TestSchemaHash(t *testing.T) {
	a := SchemaHash(1, map[string]interface{}{"pid": 1, "mode": "x"})
	b := SchemaHash(1, map[string]interface{}{"pid": float64(2), "mode": "y"})
	if a != b {
		t.Error("Expected hash to depend on kinds only")
	}

	if a == SchemaHash(2, map[string]interface{}{"pid": 1, "mode": "x"}) {
		t.Error("Expected hash to depend on version")
	}
	if a == SchemaHash(1, map[string]interface{}{"pid": "1", "mode": "x"}) {
		t.Error("Expected hash to depend on value kinds")
	}
	if len(a) != 16 {
		t.Errorf("Expected 16 characters, got %d", len(a))
	}
}

func TestSchemaHash_KnownDigests(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]interface{}
		expected string
	}{
		{
			name:     "empty",
			data:     map[string]interface{}{},
			expected: "5e37b2beae6cbdce",
		},
		{
			name:     "lifecycle facts",
			data:     map[string]interface{}{"pid": 4242, "mode": "detached"},
			expected: "9da97faf46273c59",
		},
		{
			name: "every kind with escaped key",
			data: map[string]interface{}{
				"h\u00e9llo": nil,
				"ok":          true,
				"r":           0.5,
				"l":           []interface{}{float64(1)},
				"m":           map[string]interface{}{},
			},
			expected: "263d137d38d1f63e",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SchemaHash(1, tt.data); got != tt.expected {
				t.Errorf("SchemaHash = %s, want %s", got, tt.expected)
			}
		})
	}
}
