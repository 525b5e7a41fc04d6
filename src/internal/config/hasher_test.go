package config

import (
	"os"
	"testing"
)

func TestCalculateHash_Deterministic(t *testing.T) {
	first, err := FromMap(validDocument())
	if err != nil {
		t.Fatalf("Failed to build config: %v", err)
	}
	second, err := FromMap(validDocument())
	if err != nil {
		t.Fatalf("Failed to build config: %v", err)
	}

	h1, err := CalculateHash(first)
	if err != nil {
		t.Fatalf("Failed to hash config: %v", err)
	}
	h2, err := CalculateHash(second)
	if err != nil {
		t.Fatalf("Failed to hash config: %v", err)
	}

	if h1 != h2 {
		t.Errorf("Expected equal hashes, got %s and %s", h1, h2)
	}
	if len(h1) != 32 {
		t.Errorf("Expected 32 hex characters, got %d", len(h1))
	}

	second.Server.Port = 9999
	h3, _ := CalculateHash(second)
	if h3 == h1 {
		t.Error("Expected hash to change when port changes")
	}
}

func TestConfigHasher_Cache(t *testing.T) {
	path := writeConfig(t, "zyro.yaml", "server:\n  port: 8001\n")
	hasher := NewConfigHasher(path)

	first, err := hasher.GetCurrentConfigHash()
	if err != nil {
		t.Fatalf("Failed to get hash: %v", err)
	}

	if err := os.WriteFile(path, []byte("server:\n  port: 8002\n"), 0644); err != nil {
		t.Fatalf("Failed to rewrite config: %v", err)
	}

	cached, err := hasher.GetCurrentConfigHash()
	if err != nil {
		t.Fatalf("Failed to get hash: %v", err)
	}
	if cached != first {
		t.Error("Expected cached hash to be returned within TTL")
	}

	updated, err := hasher.UpdateCurrentConfigHash()
	if err != nil {
		t.Fatalf("Failed to update hash: %v", err)
	}
	if updated == first {
		t.Error("Expected hash to change after update")
	}
}

func TestConfigHasher_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "zyro.yaml", "server:\n  port: 0\n")
	hasher := NewConfigHasher(path)

	if _, err := hasher.GetCurrentConfigHash(); err == nil {
		t.Error("Expected error for invalid config")
	}
}
