package commands

import (
	"context"
	"flag"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/zyrohq/zyro/src/internal/state"
)

func CreateStopCommand() *StopCommand {
	return &StopCommand{
		fs: flag.NewFlagSet("stop", flag.ContinueOnError),
	}
}

// StopCommand terminates the server recorded in the state file.
type StopCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
}

func (s *StopCommand) Name() string {
	return s.fs.Name()
}

func (s *StopCommand) Init(args []string, ctx *AppContext) error {
	s.ctx = ctx
	return s.fs.Parse(args)
}

func (s *StopCommand) Run() error {
	out := s.ctx.out()

	var (
		pid int
		ok  bool
	)
	err := withStateLock(context.Background(), s.ctx.settings(), func(store *state.Store) error {
		pid, ok = toPID(store.Get(StatePID, nil))
		return nil
	})
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "No running server recorded")
		return nil
	}

	if processAlive(pid) {
		if err := unix.Kill(pid, unix.SIGTERM); err != nil {
			return fmt.Errorf("failed to stop process %d: %w", pid, err)
		}
		fmt.Fprintf(out, "Sent SIGTERM to PID %d\n", pid)
	} else {
		fmt.Fprintf(out, "Process %d is not running\n", pid)
	}

	clearLifecycle(context.Background(), s.ctx.settings(), pid)
	return nil
}
