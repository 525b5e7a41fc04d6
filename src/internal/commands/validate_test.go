package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	zerrors "github.com/zyrohq/zyro/src/internal/errors"
)

func TestValidateCommand_Text(t *testing.T) {
	t.Run("Strict rejects duplicates", func(t *testing.T) {
		ctx, out := newTestContext(t, duplicateConfig)

		err := runCommand(t, CreateValidateCommand(), ctx)
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || exitErr.Code != 1 {
			t.Fatalf("Expected exit code 1, got: %v", err)
		}

		for _, want := range []string{"Config Validation Failed", "Duplicate route detected", " - GET /health"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("Expected output to contain %q, got:\n%s", want, out.String())
			}
		}
	})

	t.Run("Lenient prints warnings", func(t *testing.T) {
		ctx, out := newTestContext(t, duplicateConfig)

		if err := runCommand(t, CreateValidateCommand(), ctx, "-strict=false"); err != nil {
			t.Fatalf("Expected success, got: %v", err)
		}

		want := "Config is valid\nWarnings:\n - Duplicate route found: GET /health\n"
		if out.String() != want {
			t.Errorf("Expected %q, got %q", want, out.String())
		}
	})

	t.Run("Schema errors list every field", func(t *testing.T) {
		ctx, out := newTestContext(t, "server:\n  port: 0\n  log_level: loud\n")

		if err := runCommand(t, CreateValidateCommand(), ctx); err == nil {
			t.Fatal("Expected failure")
		}
		for _, want := range []string{
			"Schema Validation Failed",
			" - server.port: must be >= 1",
			" - server.log_level: must be one of: INFO ERROR DEBUG CRITICAL WARNING",
		} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("Expected output to contain %q, got:\n%s", want, out.String())
			}
		}
	})
}

func TestValidateCommand_JSON(t *testing.T) {
	ctx, out := newTestContext(t, duplicateConfig)

	if err := runCommand(t, CreateValidateCommand(), ctx, "-strict=false", "-output", "json"); err != nil {
		t.Fatalf("Expected success, got: %v", err)
	}

	var report validationReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("Failed to parse output: %v", err)
	}
	if !report.Valid || len(report.Warnings) != 1 || len(report.Duplicates) != 1 {
		t.Errorf("Unexpected report: %+v", report)
	}

	ctx, out = newTestContext(t, duplicateConfig)
	if err := runCommand(t, CreateValidateCommand(), ctx, "-output", "json"); err == nil {
		t.Fatal("Expected strict failure")
	}

	report = validationReport{}
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("Failed to parse output: %v", err)
	}
	if report.Valid || report.Error != "Duplicate route detected" {
		t.Errorf("Unexpected report: %+v", report)
	}
}

func TestValidateCommand_InvalidOutput(t *testing.T) {
	ctx, _ := newTestContext(t, duplicateConfig)

	if err := CreateValidateCommand().Init([]string{"-output", "xml"}, ctx); err == nil {
		t.Error("Expected error for unsupported output format")
	}
}

func TestValidateCommand_MissingFile(t *testing.T) {
	ctx, out := newTestContext(t, "")
	ctx.ConfigPath = ctx.ConfigPath + ".missing.yaml"

	if err := runCommand(t, CreateValidateCommand(), ctx); err == nil {
		t.Fatal("Expected failure")
	}
	if !strings.Contains(out.String(), "Configuration file not found") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}
}

func TestDescribeFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
		details []string
	}{
		{
			name:    "schema failure lists details",
			err:     fmt.Errorf("validate: %w", zerrors.NewSchemaError([]string{"server.port: bad"}, nil)),
			message: "Schema Validation Failed",
			details: []string{"server.port: bad"},
		},
		{
			name:    "other domain errors print the message only",
			err:     &zerrors.Error{Code: zerrors.ErrCodeServer, Message: "bind failed", Details: []string{"ignored"}},
			message: "bind failed",
		},
		{
			name:    "plain error",
			err:     errors.New("boom"),
			message: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message, details := describeFailure(tt.err)
			if message != tt.message || !reflect.DeepEqual(details, tt.details) {
				t.Errorf("describeFailure() = %q %v, want %q %v", message, details, tt.message, tt.details)
			}
		})
	}
}
