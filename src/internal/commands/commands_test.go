package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/zyrohq/zyro/src/internal/settings"
)

const duplicateConfig = `
server:
  port: 8123
endpoints:
  - group: health
    routes:
      - path: /health
        handler: h.health
  - group: legacy
    routes:
      - path: health/
        method: get
        handler: h.legacy
`

// newTestContext returns a context whose config and state live in a temp dir.
func newTestContext(t *testing.T, content string) (*AppContext, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	configPath := filepath.Join(dir, "zyro.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	s, err := settings.Load("", dir)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	s.LockWaitSeconds = 0

	out := &bytes.Buffer{}
	return &AppContext{
		ConfigPath: configPath,
		Settings:   s,
		Stdout:     out,
	}, out
}

func runCommand(t *testing.T, cmd Runner, ctx *AppContext, args ...string) error {
	t.Helper()
	if err := cmd.Init(args, ctx); err != nil {
		t.Fatalf("Failed to initialize %s: %v", cmd.Name(), err)
	}
	return cmd.Run()
}
