package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	zerrors "github.com/zyrohq/zyro/src/internal/errors"
)

func TestRestartableRunner_RestartsOnFailure(t *testing.T) {
	calls := 0
	runner := NewRestartableRunner(RunnerConfig{
		Name:           "test",
		RestartBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}, func(ctx context.Context) error {
		calls++
		switch calls {
		case 1:
			return errors.New("boom")
		case 2:
			panic("crash")
		default:
			return nil
		}
	})

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Expected clean exit, got: %v", err)
	}
	if calls != 3 || runner.RestartCount() != 2 {
		t.Errorf("Expected 3 calls and 2 restarts, got %d and %d", calls, runner.RestartCount())
	}
	if runner.LastError() != nil {
		t.Errorf("Expected no last error, got: %v", runner.LastError())
	}
}

func TestRestartableRunner_MaxRestarts(t *testing.T) {
	runner := NewRestartableRunner(RunnerConfig{
		Name:           "test",
		MaxRestarts:    2,
		RestartBackoff: time.Millisecond,
	}, func(ctx context.Context) error {
		return errors.New("always")
	})

	if err := runner.Run(context.Background()); err == nil {
		t.Fatal("Expected error after max restarts")
	}
	if runner.RestartCount() != 2 {
		t.Errorf("Expected 2 restarts, got %d", runner.RestartCount())
	}
}

func TestRestartableRunner_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	runner := NewRestartableRunner(RunnerConfig{Name: "test"}, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil on cancel, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Runner did not stop")
	}
}

func TestRestartableRunner_PanicIsInternalError(t *testing.T) {
	runner := NewRestartableRunner(RunnerConfig{
		Name:           "watcher",
		MaxRestarts:    1,
		RestartBackoff: time.Millisecond,
	}, func(ctx context.Context) error {
		panic("crash")
	})

	err := runner.Run(context.Background())
	if !zerrors.HasCode(err, zerrors.ErrCodeInternal) {
		t.Fatalf("Expected INTERNAL_ERROR, got: %v", err)
	}
	if got := runner.LastError().Error(); got != "[INTERNAL_ERROR] watcher panicked: crash" {
		t.Errorf("Unexpected last error: %s", got)
	}
}
