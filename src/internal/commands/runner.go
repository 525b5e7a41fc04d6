package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/zyrohq/zyro/src/internal/errors"
	"github.com/zyrohq/zyro/src/internal/log"
)

// RestartableRunner runs a background component and restarts it with
// exponential backoff when it fails or panics.
type RestartableRunner struct {
	name    string
	runFunc func(ctx context.Context) error

	maxRestarts    int
	restartBackoff time.Duration
	maxBackoff     time.Duration

	restartCount int
	lastError    error
}

// RunnerConfig contains configuration for RestartableRunner.
type RunnerConfig struct {
	Name           string
	MaxRestarts    int           // 0 = unlimited restarts
	RestartBackoff time.Duration // Initial backoff (default: 1s)
	MaxBackoff     time.Duration // Max backoff (default: 30s)
}

// NewRestartableRunner creates a new restartable runner.
func NewRestartableRunner(cfg RunnerConfig, runFunc func(ctx context.Context) error) *RestartableRunner {
	if cfg.RestartBackoff == 0 {
		cfg.RestartBackoff = 1 * time.Second
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = 30 * time.Second
	}

	return &RestartableRunner{
		name:           cfg.Name,
		runFunc:        runFunc,
		maxRestarts:    cfg.MaxRestarts,
		restartBackoff: cfg.RestartBackoff,
		maxBackoff:     cfg.MaxBackoff,
	}
}

// Run blocks until the component exits cleanly, ctx is done or the restart
// limit is reached. Only the last case returns an error.
func (r *RestartableRunner) Run(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.restartBackoff
	b.MaxInterval = r.maxBackoff
	b.MaxElapsedTime = 0
	b.Reset()

	for {
		err := r.runWithRecovery(ctx)
		r.lastError = err

		if ctx.Err() != nil {
			log.Infof("%s: context cancelled, stopping", r.name)
			return nil
		}
		if err == nil {
			log.Infof("%s: exited cleanly", r.name)
			return nil
		}

		r.restartCount++
		if r.maxRestarts > 0 && r.restartCount >= r.maxRestarts {
			return fmt.Errorf("%s: max restarts (%d) reached: %w", r.name, r.maxRestarts, err)
		}

		delay := b.NextBackOff()
		log.Errorf("%s: crashed with error: %v. Restarting in %v (restart #%d)", r.name, err, delay, r.restartCount)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// RestartCount returns the number of restarts that have occurred.
func (r *RestartableRunner) RestartCount() int {
	return r.restartCount
}

// LastError returns the error of the most recent run.
func (r *RestartableRunner) LastError() error {
	return r.lastError
}

// runWithRecovery runs the function and recovers from panics.
func (r *RestartableRunner) runWithRecovery(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errors.NewInternalError(r.name+" panicked", fmt.Errorf("%v", recovered))
		}
	}()

	return r.runFunc(ctx)
}
