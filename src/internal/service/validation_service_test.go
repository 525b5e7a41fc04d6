package service

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/zyrohq/zyro/src/internal/errors"
)

func healthGroup() map[string]interface{} {
	return map[string]interface{}{
		"base_path": "/",
		"routes": []interface{}{
			map[string]interface{}{"path": "/health", "method": "get", "handler": "h.health"},
		},
	}
}

func duplicateDocument() map[string]interface{} {
	return map[string]interface{}{
		"endpoints": []interface{}{healthGroup(), healthGroup()},
	}
}

func TestValidationService_Validate(t *testing.T) {
	svc := NewValidationService()

	t.Run("Valid configuration", func(t *testing.T) {
		raw := map[string]interface{}{
			"endpoints": []interface{}{healthGroup()},
		}

		outcome, err := svc.Validate(raw, true)
		if err != nil {
			t.Fatalf("Expected valid config, got error: %v", err)
		}
		if len(outcome.Warnings) != 0 || len(outcome.Duplicates) != 0 {
			t.Errorf("Expected no warnings, got %v", outcome.Warnings)
		}
		if outcome.Config == nil || outcome.Config.RouteCount() != 1 {
			t.Error("Expected validated config with one route")
		}
	})

	t.Run("Strict mode rejects duplicates", func(t *testing.T) {
		_, err := svc.Validate(duplicateDocument(), true)
		if !errors.HasCode(err, errors.ErrCodeDuplicateRoute) {
			t.Fatalf("Expected duplicate route error, got: %v", err)
		}

		ve, ok := errors.AsValidationError(err)
		if !ok {
			t.Fatal("Expected validation error")
		}
		if ve.Message != "Duplicate route detected" {
			t.Errorf("Unexpected message: %s", ve.Message)
		}
		if !reflect.DeepEqual(ve.Details, []string{"GET /health"}) {
			t.Errorf("Unexpected details: %q", ve.Details)
		}
	})

	t.Run("Lenient mode reports duplicates as warnings", func(t *testing.T) {
		outcome, err := svc.Validate(duplicateDocument(), false)
		if err != nil {
			t.Fatalf("Expected success, got: %v", err)
		}
		if len(outcome.Duplicates) == 0 || len(outcome.Warnings) == 0 {
			t.Fatal("Expected duplicates and warnings")
		}
		if len(outcome.Duplicates) != len(outcome.Warnings) {
			t.Errorf("Expected equal counts, got %d duplicates and %d warnings",
				len(outcome.Duplicates), len(outcome.Warnings))
		}
	})

	t.Run("Schema failure ignores strict flag", func(t *testing.T) {
		raw := map[string]interface{}{
			"server": map[string]interface{}{"port": 70000},
			"endpoints": []interface{}{
				map[string]interface{}{
					"routes": []interface{}{
						map[string]interface{}{
							"path":     "/health",
							"handler":  "h.health",
							"response": map[string]interface{}{"700": nil, "200": nil},
						},
					},
				},
			},
		}

		for _, strict := range []bool{true, false} {
			_, err := svc.Validate(raw, strict)
			ve, ok := errors.AsValidationError(err)
			if !ok || ve.Code != errors.ErrCodeSchema {
				t.Fatalf("Expected schema error, got: %v", err)
			}
			if ve.Message != "Schema Validation Failed" {
				t.Errorf("Unexpected message: %s", ve.Message)
			}
			want := []string{
				"server.port: must be <= 65535",
				"endpoints.0.routes.0.response.700: Invalid HTTP status code in response mapping: 700",
			}
			if !reflect.DeepEqual(ve.Details, want) {
				t.Errorf("Expected details %q, got %q", want, ve.Details)
			}
		}
	})
}

func TestValidationService_ValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zyro.yaml")
	content := `
endpoints:
  - routes:
      - path: /health
        handler: h.health
  - routes:
      - path: health/
        method: GET
        handler: h.health2
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	svc := NewValidationService()

	outcome, err := svc.ValidateFile(path, false)
	if err != nil {
		t.Fatalf("Expected success, got: %v", err)
	}
	if !reflect.DeepEqual(outcome.Warnings, []string{"Duplicate route found: GET /health"}) {
		t.Errorf("Unexpected warnings: %q", outcome.Warnings)
	}

	if _, err := svc.ValidateFile(filepath.Join(t.TempDir(), "missing.yaml"), false); !errors.HasCode(err, errors.ErrCodeConfigLoad) {
		t.Errorf("Expected config load error, got: %v", err)
	}
}
