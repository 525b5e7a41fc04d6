package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "zyro.yaml", "server:\n  port: 8001\n")

	w := NewWatcher(path)
	w.SetDebounce(20 * time.Millisecond)

	changes := make(chan map[string]interface{}, 16)
	w.OnChange(func(raw map[string]interface{}) {
		changes <- raw
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	var raw map[string]interface{}
	for raw == nil {
		select {
		case raw = <-changes:
		case <-tick.C:
			if err := os.WriteFile(path, []byte("server:\n  port: 8002\n"), 0644); err != nil {
				t.Fatalf("Failed to rewrite config: %v", err)
			}
		case <-deadline:
			t.Fatal("Timed out waiting for config change")
		}
	}

	server, ok := raw["server"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected server mapping, got %T", raw["server"])
	}
	if port, _ := toInt(server["port"]); port != 8002 {
		t.Errorf("Expected port 8002, got %v", server["port"])
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Watcher did not stop after cancel")
	}
}

func TestWatcher_SkipsUnchangedContent(t *testing.T) {
	path := writeConfig(t, "zyro.yaml", "server:\n  port: 8001\n")

	w := NewWatcher(path)
	calls := 0
	w.OnChange(func(raw map[string]interface{}) { calls++ })

	w.reload()
	if calls != 0 {
		t.Fatalf("Expected no callback for content seen at startup, got %d", calls)
	}

	if err := os.WriteFile(path, []byte("server:\n  port: 8002\n"), 0644); err != nil {
		t.Fatalf("Failed to rewrite config: %v", err)
	}
	w.reload()
	w.reload()
	if calls != 1 {
		t.Errorf("Expected 1 callback after a single content change, got %d", calls)
	}
}
