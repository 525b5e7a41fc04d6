package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zyrohq/zyro/src/internal/commands"
	"github.com/zyrohq/zyro/src/internal/log"
	"github.com/zyrohq/zyro/src/internal/settings"
)

var (
	version = "dev"
	commit  = "n/a"
	date    = "n/a"
)

func main() {
	ctx := &commands.AppContext{}

	// Define flags
	flag.StringVar(&ctx.ConfigPath, "config", "zyro.yaml", "Path to configuration file")
	flag.StringVar(&ctx.SettingsPath, "settings", "", "Path to optional TOML settings file")
	flag.BoolVar(&ctx.Verbose, "verbose", false, "Enable debug logging")

	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Zyro: declarative API bootstrapper\n")
		fmt.Fprintf(os.Stderr, "Version: %s (Commit: %s, Date: %s)\n\n", version, commit, date)
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  validate                Validate the configuration file\n")
		fmt.Fprintf(os.Stderr, "  start                   Validate and start the server (-detach to run in background)\n")
		fmt.Fprintf(os.Stderr, "  stop                    Stop the running server\n")
		fmt.Fprintf(os.Stderr, "  status                  Show recorded runtime state\n")
		fmt.Fprintf(os.Stderr, "  unlock                  Remove a stale state lock\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if ctx.Verbose {
		log.SetVerbose(true)
	}

	configDir := filepath.Dir(ctx.ConfigPath)
	if abs, err := filepath.Abs(configDir); err == nil {
		configDir = abs
	}

	s, err := settings.Load(ctx.SettingsPath, configDir)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	ctx.Settings = s

	closeLog := func() {}
	if s.LogToFile {
		closeLog, err = log.EnableFileOutput(s.LogsDirectory, log.FileOptions{
			MaxSizeMB:  s.LogMaxSizeMB,
			MaxBackups: s.LogMaxBackups,
		})
		if err != nil {
			log.Fatalf("Failed to enable file logging: %v", err)
		}
	}

	cmds := []commands.Runner{
		commands.CreateValidateCommand(),
		commands.CreateStartCommand(),
		commands.CreateServeCommand(),
		commands.CreateStopCommand(),
		commands.CreateStatusCommand(),
		commands.CreateUnlockCommand(),
	}

	args := flag.Args()

	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	code := run(cmds, args, ctx)
	closeLog()
	os.Exit(code)
}

func run(cmds []commands.Runner, args []string, ctx *commands.AppContext) int {
	subcommand := args[0]
	for _, cmd := range cmds {
		if cmd.Name() != subcommand {
			continue
		}

		if err := cmd.Init(args[1:], ctx); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return 0
			}
			log.Errorf("Failed to initialize command: %v", err)
			return 1
		}

		if err := cmd.Run(); err != nil {
			var exitErr *commands.ExitError
			if errors.As(err, &exitErr) {
				return exitErr.Code
			}
			log.Errorf("Failed to run command: %v", err)
			return 1
		}

		return 0
	}

	log.Errorf("Unknown subcommand: %s", subcommand)
	return 1
}
