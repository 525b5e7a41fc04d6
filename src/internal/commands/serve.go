package commands

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/zyrohq/zyro/src/internal/api"
	"github.com/zyrohq/zyro/src/internal/config"
	"github.com/zyrohq/zyro/src/internal/log"
	"github.com/zyrohq/zyro/src/internal/service"
)

func CreateServeCommand() *ServeCommand {
	sc := &ServeCommand{
		fs: flag.NewFlagSet("serve", flag.ContinueOnError),
	}

	sc.fs.BoolVar(&sc.Strict, "strict", true, "Treat duplicate routes as errors, also on reload")

	return sc
}

// ServeCommand runs the server in the foreground. start -detach launches it
// in a new session.
type ServeCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext

	Strict bool
}

func (s *ServeCommand) Name() string {
	return s.fs.Name()
}

func (s *ServeCommand) Init(args []string, ctx *AppContext) error {
	s.ctx = ctx
	return s.fs.Parse(args)
}

func (s *ServeCommand) Run() error {
	outcome, err := service.NewValidationService().ValidateFile(s.ctx.ConfigPath, s.Strict)
	if err != nil {
		printValidationFailure(s.ctx.out(), err)
		return &ExitError{Code: 1}
	}

	return runServer(s.ctx, s.ctx.ConfigPath, outcome.Config, s.Strict)
}

// runServer serves cfg until SIGINT or SIGTERM, reloading routes on config
// changes when hot reload is enabled. On exit the process facts recorded for
// this pid are cleared.
func runServer(appCtx *AppContext, configPath string, cfg *config.RootConfig, strict bool) error {
	if cfg.Server.LogLevel == config.LogLevelDebug {
		log.SetVerbose(true)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(cfg)
	validator := service.NewValidationService()

	log.Infof("Serving %d route(s) from %s on http://%s", cfg.RouteCount(), configPath, server.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})

	if cfg.Server.HotReload {
		watcher := config.NewWatcher(configPath)
		watcher.OnChange(func(raw map[string]interface{}) {
			outcome, err := validator.Validate(raw, strict)
			if err != nil {
				server.RejectReload(err)
				return
			}
			server.Reload(outcome.Config)
		})

		runner := NewRestartableRunner(RunnerConfig{Name: "Config watcher", MaxRestarts: 5}, watcher.Run)
		g.Go(func() error {
			if err := runner.Run(gctx); err != nil {
				log.Errorf("Hot reload disabled: %v", err)
			}
			return nil
		})
	}

	err := g.Wait()

	clearLifecycle(context.Background(), appCtx.settings(), os.Getpid())

	return err
}
