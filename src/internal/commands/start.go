package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/zyrohq/zyro/src/internal/config"
	"github.com/zyrohq/zyro/src/internal/errors"
	"github.com/zyrohq/zyro/src/internal/log"
	"github.com/zyrohq/zyro/src/internal/service"
	"github.com/zyrohq/zyro/src/internal/state"
)

func CreateStartCommand() *StartCommand {
	sc := &StartCommand{
		fs: flag.NewFlagSet("start", flag.ContinueOnError),
	}

	sc.fs.BoolVar(&sc.Detach, "detach", false, "Run the server in the background")
	sc.fs.BoolVar(&sc.Strict, "strict", true, "Refuse to start when duplicate routes are declared")

	return sc
}

type StartCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext

	Detach bool
	Strict bool
}

func (s *StartCommand) Name() string {
	return s.fs.Name()
}

func (s *StartCommand) Init(args []string, ctx *AppContext) error {
	s.ctx = ctx
	return s.fs.Parse(args)
}

func (s *StartCommand) Run() error {
	out := s.ctx.out()

	outcome, err := service.NewValidationService().ValidateFile(s.ctx.ConfigPath, s.Strict)
	if err != nil {
		printValidationFailure(out, err)
		return &ExitError{Code: 1}
	}
	printWarnings(out, outcome.Warnings)

	configPath, err := filepath.Abs(s.ctx.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	cfg := outcome.Config

	if !s.Detach {
		recordLifecycle(context.Background(), s.ctx.settings(), lifecycleFacts(os.Getpid(), ModeForeground, cfg, configPath))
		return runServer(s.ctx, configPath, cfg, s.Strict)
	}

	pid, err := s.spawnDetached(configPath)
	if err != nil {
		fmt.Fprintln(out, "Server Spin up Failed")
		fmt.Fprintln(out, err)
		return &ExitError{Code: 1}
	}

	fmt.Fprintf(out, "Server started in background with PID %d\n", pid)
	fmt.Fprintf(out, "Running on http://%s\n", cfg.Server.Address())

	recordLifecycle(context.Background(), s.ctx.settings(), lifecycleFacts(pid, ModeDetached, cfg, configPath))
	return nil
}

// spawnDetached re-executes the binary with the serve command in a new
// session and returns the child pid.
func (s *StartCommand) spawnDetached(configPath string) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, errors.NewServerError("failed to locate zyro executable", err)
	}

	args := []string{"-config", configPath}
	if s.ctx.SettingsPath != "" {
		settingsPath, err := filepath.Abs(s.ctx.SettingsPath)
		if err != nil {
			return 0, fmt.Errorf("failed to get absolute path: %w", err)
		}
		args = append(args, "-settings", settingsPath)
	}
	if log.IsVerbose() {
		args = append(args, "-verbose")
	}
	args = append(args, "serve", "-strict="+strconv.FormatBool(s.Strict))

	cmd := exec.Command(exe, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, errors.NewServerError("failed to start background server", err)
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		log.Warnf("Failed to release background process: %v", err)
	}

	return pid, nil
}

func lifecycleFacts(pid int, mode string, cfg *config.RootConfig, configPath string) []fact {
	facts := []fact{
		{StatePID, pid},
		{StateMode, mode},
		{StateHost, cfg.Server.Host},
		{StatePort, cfg.Server.Port},
		{StateStartedAt, state.Timestamp()},
		{StateConfigPath, configPath},
	}

	if hash, err := config.CalculateHash(cfg); err != nil {
		log.Warnf("Failed to hash configuration: %v", err)
	} else {
		facts = append(facts, fact{StateConfigHash, hash})
	}

	return facts
}
