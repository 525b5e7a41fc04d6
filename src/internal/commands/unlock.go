package commands

import (
	"flag"
	"fmt"

	"github.com/zyrohq/zyro/src/internal/state"
)

func CreateUnlockCommand() *UnlockCommand {
	return &UnlockCommand{
		fs: flag.NewFlagSet("unlock", flag.ContinueOnError),
	}
}

// UnlockCommand removes a lock left behind by a crashed zyro process.
type UnlockCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
}

func (u *UnlockCommand) Name() string {
	return u.fs.Name()
}

func (u *UnlockCommand) Init(args []string, ctx *AppContext) error {
	u.ctx = ctx
	return u.fs.Parse(args)
}

func (u *UnlockCommand) Run() error {
	s := u.ctx.settings()
	store := state.New(state.Config{
		Path:     s.StateFile,
		LockPath: s.LockFile,
		Version:  s.StateVersion,
	})

	info, err := store.LockInfo()
	if err != nil {
		return fmt.Errorf("failed to read lock: %w", err)
	}

	released, err := store.ReleaseLock()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	out := u.ctx.out()
	if !released {
		fmt.Fprintln(out, "No lock held")
		return nil
	}

	if info != nil && info.LockID != "" {
		fmt.Fprintf(out, "Lock released (was held by %s)\n", info.LockID)
	} else {
		fmt.Fprintln(out, "Lock released")
	}
	return nil
}
