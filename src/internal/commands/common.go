package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/zyrohq/zyro/src/internal/errors"
	"github.com/zyrohq/zyro/src/internal/log"
	"github.com/zyrohq/zyro/src/internal/settings"
	"github.com/zyrohq/zyro/src/internal/state"
)

type Runner interface {
	Init(args []string, globalArgs *AppContext) error
	Run() error
	Name() string
}

type AppContext struct {
	ConfigPath   string
	SettingsPath string
	Verbose      bool
	Settings     *settings.Settings

	// Stdout receives command output (default: os.Stdout).
	Stdout io.Writer
}

func (c *AppContext) out() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

func (c *AppContext) settings() *settings.Settings {
	if c.Settings == nil {
		c.Settings = settings.Default()
	}
	return c.Settings
}

// ExitError asks main to exit with Code after the command already reported
// the failure.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Lifecycle facts recorded in the state file.
const (
	StatePID        = "pid"
	StateMode       = "mode"
	StateHost       = "host"
	StatePort       = "port"
	StateStartedAt  = "started_at"
	StateConfigPath = "config_path"
	StateConfigHash = "config_hash"

	ModeForeground = "foreground"
	ModeDetached   = "detached"
)

var errLocked = stderrors.New("state is locked")

// newStateStore creates the store described by s without touching the disk.
func newStateStore(s *settings.Settings) *state.Store {
	return state.New(state.Config{
		Path:     s.StateFile,
		LockPath: s.LockFile,
		Version:  s.StateVersion,
	})
}

// openStateStore creates and loads the store described by s. Loading an old
// file migrates and saves it, so writers must use withStateLock instead.
func openStateStore(s *settings.Settings) (*state.Store, error) {
	store := newStateStore(s)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

// acquireStateLock polls the state lock with exponential backoff until it is
// acquired or wait has elapsed. A non-positive wait makes a single attempt.
func acquireStateLock(ctx context.Context, store *state.Store, owner string, wait time.Duration) (bool, error) {
	attempt := func() error {
		acquired, err := store.AcquireLock(owner)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !acquired {
			return errLocked
		}
		return nil
	}

	if wait <= 0 {
		err := attempt()
		if err == nil {
			return true, nil
		}
		if stderrors.Is(err, errLocked) {
			return false, nil
		}
		var permanent *backoff.PermanentError
		if stderrors.As(err, &permanent) {
			return false, permanent.Err
		}
		return false, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = wait

	err := backoff.Retry(attempt, backoff.WithContext(b, ctx))
	switch {
	case err == nil:
		return true, nil
	case stderrors.Is(err, errLocked):
		return false, nil
	default:
		return false, err
	}
}

// withStateLock runs fn on the store while holding the state lock. The
// store is loaded only once the lock is held.
func withStateLock(ctx context.Context, s *settings.Settings, fn func(store *state.Store) error) error {
	store := newStateStore(s)

	owner := uuid.NewString()
	acquired, err := acquireStateLock(ctx, store, owner, time.Duration(s.LockWaitSeconds)*time.Second)
	if err != nil {
		return fmt.Errorf("failed to acquire state lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("state file %s is locked by another zyro process", store.Path())
	}
	defer func() {
		if _, err := store.ReleaseLock(); err != nil {
			log.Warnf("Failed to release state lock: %v", err)
		}
	}()

	if err := store.Load(); err != nil {
		return err
	}

	return fn(store)
}

// recordLifecycle stores facts under the state lock. Failures are logged and
// never stop the caller.
func recordLifecycle(ctx context.Context, s *settings.Settings, facts []fact) {
	err := withStateLock(ctx, s, func(store *state.Store) error {
		for _, f := range facts {
			if err := store.Set(f.key, f.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Warnf("Failed to record runtime state: %v", err)
	}
}

// clearLifecycle removes the process facts if they still belong to pid.
// A pid of 0 clears them unconditionally.
func clearLifecycle(ctx context.Context, s *settings.Settings, pid int) {
	err := withStateLock(ctx, s, func(store *state.Store) error {
		if pid != 0 {
			recorded, ok := toPID(store.Get(StatePID, nil))
			if !ok || recorded != pid {
				return nil
			}
		}
		for _, key := range []string{StatePID, StateMode} {
			if _, err := store.Remove(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Warnf("Failed to clear runtime state: %v", err)
	}
}

type fact struct {
	key   string
	value interface{}
}

// toPID converts a stored pid value into an int.
func toPID(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, t > 0
	case int64:
		return int(t), t > 0
	case float64:
		if t != float64(int(t)) {
			return 0, false
		}
		return int(t), t > 0
	default:
		return 0, false
	}
}

// processAlive reports whether a process with pid exists.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || stderrors.Is(err, unix.EPERM)
}

// describeFailure returns the message and details of a validation or load
// failure.
// describeFailure returns the message to print for err and, for schema or
// duplicate-route failures, the details to list under it.
func describeFailure(err error) (string, []string) {
	if ve, ok := errors.AsValidationError(err); ok {
		return ve.Message, ve.Details
	}
	var domainErr *errors.Error
	if stderrors.As(err, &domainErr) {
		return domainErr.Message, nil
	}
	return err.Error(), nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
