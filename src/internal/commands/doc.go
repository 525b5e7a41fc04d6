// Package commands implements CLI command handlers for zyro.
//
// Each command implements the Runner interface:
//   - Init(): Parse arguments
//   - Run(): Execute the command
//   - Name(): Return command name for routing
//
// # Available Commands
//
//   - validate: Validate the configuration and report duplicate routes
//   - start: Validate, then serve in the foreground or detached
//   - serve: Serve in the foreground (used by detached starts)
//   - stop: Terminate the server recorded in the state file
//   - status: Show recorded runtime state, lock holder and config drift
//   - unlock: Remove a stale state lock
//
// Lifecycle facts (pid, mode, host, port, started_at, config_path,
// config_hash) are written to the state file while holding the state lock.
// Failing to record them never prevents the server from starting.
//
// # Example Usage
//
//	cmd := commands.CreateValidateCommand()
//	ctx := &commands.AppContext{
//	    ConfigPath: "zyro.yaml",
//	    Settings:   settings.Default(),
//	}
//	if err := cmd.Init([]string{"-strict=false"}, ctx); err != nil {
//	    log.Fatalf("%v", err)
//	}
//	if err := cmd.Run(); err != nil {
//	    log.Fatalf("%v", err)
//	}
package commands
