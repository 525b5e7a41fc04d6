package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/zyrohq/zyro/src/internal/log"
	"github.com/zyrohq/zyro/src/internal/service"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func CreateValidateCommand() *ValidateCommand {
	vc := &ValidateCommand{
		fs: flag.NewFlagSet("validate", flag.ContinueOnError),
	}

	vc.fs.BoolVar(&vc.Strict, "strict", true, "Treat duplicate routes as errors")
	vc.fs.StringVar(&vc.Output, "output", outputText, "Output format: text or json")

	return vc
}

type ValidateCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext

	Strict bool
	Output string
}

func (v *ValidateCommand) Name() string {
	return v.fs.Name()
}

func (v *ValidateCommand) Init(args []string, ctx *AppContext) error {
	v.ctx = ctx

	if err := v.fs.Parse(args); err != nil {
		return err
	}

	if v.Output != outputText && v.Output != outputJSON {
		return fmt.Errorf("unsupported output format %q (use text or json)", v.Output)
	}
	if v.Output == outputJSON {
		log.SetForceStdErr(true)
	}

	return nil
}

func (v *ValidateCommand) Run() error {
	svc := service.NewValidationService()
	outcome, err := svc.ValidateFile(v.ctx.ConfigPath, v.Strict)

	out := v.ctx.out()
	if v.Output == outputJSON {
		return writeValidationJSON(out, outcome, err)
	}

	if err != nil {
		printValidationFailure(out, err)
		return &ExitError{Code: 1}
	}

	fmt.Fprintln(out, "Config is valid")
	printWarnings(out, outcome.Warnings)
	return nil
}

type validationReport struct {
	Valid      bool               `json:"valid"`
	Warnings   []string           `json:"warnings,omitempty"`
	Duplicates []service.RouteKey `json:"duplicates,omitempty"`
	Error      string             `json:"error,omitempty"`
	Details    []string           `json:"details,omitempty"`
}

func writeValidationJSON(out io.Writer, outcome *service.ValidationOutcome, err error) error {
	report := validationReport{Valid: err == nil}
	if err != nil {
		report.Error, report.Details = describeFailure(err)
	} else {
		report.Warnings = outcome.Warnings
		report.Duplicates = outcome.Duplicates
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(report); encErr != nil {
		return encErr
	}

	if err != nil {
		return &ExitError{Code: 1}
	}
	return nil
}

func printValidationFailure(out io.Writer, err error) {
	message, details := describeFailure(err)

	fmt.Fprintln(out, "Config Validation Failed")
	fmt.Fprintln(out, message)
	if len(details) > 0 {
		fmt.Fprintln(out, "Details:")
		for _, d := range details {
			fmt.Fprintf(out, " - %s\n", d)
		}
	}
}

func printWarnings(out io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(out, "Warnings:")
	for _, w := range warnings {
		fmt.Fprintf(out, " - %s\n", w)
	}
}
