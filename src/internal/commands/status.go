package commands

import (
	"encoding/json"
	"flag"
	"fmt"

	"github.com/zyrohq/zyro/src/internal/config"
	"github.com/zyrohq/zyro/src/internal/log"
	"github.com/zyrohq/zyro/src/internal/state"
)

func CreateStatusCommand() *StatusCommand {
	sc := &StatusCommand{
		fs: flag.NewFlagSet("status", flag.ContinueOnError),
	}

	sc.fs.StringVar(&sc.Output, "output", outputText, "Output format: text or json")

	return sc
}

// StatusCommand reports the recorded runtime state.
type StatusCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext

	Output string
}

// StatusReport is the machine-readable form of the status command.
type StatusReport struct {
	StateFile     string                 `json:"state_file"`
	State         map[string]interface{} `json:"state"`
	Running       bool                   `json:"running"`
	Lock          *state.LockRecord      `json:"lock,omitempty"`
	ConfigChanged *bool                  `json:"config_changed,omitempty"`
}

func (s *StatusCommand) Name() string {
	return s.fs.Name()
}

func (s *StatusCommand) Init(args []string, ctx *AppContext) error {
	s.ctx = ctx

	if err := s.fs.Parse(args); err != nil {
		return err
	}
	if s.Output != outputText && s.Output != outputJSON {
		return fmt.Errorf("unsupported output format %q (use text or json)", s.Output)
	}
	if s.Output == outputJSON {
		log.SetForceStdErr(true)
	}
	return nil
}

func (s *StatusCommand) Run() error {
	report, err := s.collect()
	if err != nil {
		return err
	}

	out := s.ctx.out()
	if s.Output == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(out, "State file: %s\n", report.StateFile)

	keys := sortedKeys(report.State)
	if len(keys) == 0 {
		fmt.Fprintln(out, "No runtime state recorded")
	}
	for _, k := range keys {
		fmt.Fprintf(out, "  %s: %v\n", k, report.State[k])
	}

	if _, ok := report.State[StatePID]; ok {
		if report.Running {
			fmt.Fprintln(out, "Server: running")
		} else {
			fmt.Fprintln(out, "Server: not running")
		}
	}

	if report.Lock != nil {
		fmt.Fprintf(out, "Lock: held by %s since %s\n", report.Lock.LockID, report.Lock.Timestamp)
	} else {
		fmt.Fprintln(out, "Lock: free")
	}

	if report.ConfigChanged != nil {
		if *report.ConfigChanged {
			fmt.Fprintln(out, "Config: changed since start")
		} else {
			fmt.Fprintln(out, "Config: unchanged since start")
		}
	}

	return nil
}

func (s *StatusCommand) collect() (*StatusReport, error) {
	store, err := openStateStore(s.ctx.settings())
	if err != nil {
		return nil, err
	}

	report := &StatusReport{
		StateFile: store.Path(),
		State:     store.Snapshot(),
	}

	if pid, ok := toPID(store.Get(StatePID, nil)); ok {
		report.Running = processAlive(pid)
	}

	report.Lock, err = store.LockInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to read lock: %w", err)
	}

	recorded, _ := store.Get(StateConfigHash, "").(string)
	configPath, _ := store.Get(StateConfigPath, s.ctx.ConfigPath).(string)
	if recorded != "" && configPath != "" {
		current, err := config.NewConfigHasher(configPath).GetCurrentConfigHash()
		changed := err != nil || current != recorded
		report.ConfigChanged = &changed
	}

	return report, nil
}
