// Package cli parses the dazzle command line: a subcommand (validate or
// build), a project root, and shared flags.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dazzle-lang/dazzle/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

const usage = `dazzle - declarative application model compiler

Usage:
  dazzle validate [options] [PROJECT_ROOT]
  dazzle build    [options] [PROJECT_ROOT]

Commands:
  validate   Load and validate the project, printing diagnostics.
             Exits non-zero when any error diagnostic is reported.
  build      Validate, then run the configured generators against the
             assembled application model.

Arguments:
  PROJECT_ROOT
    Directory containing .dzl files (and optionally dazzle.yaml), or a
    single .dzl file. Defaults to the current directory.

Options:
`

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	if len(args) == 0 {
		fmt.Fprint(output, usage)
		return nil, true, nil
	}

	command := args[0]
	switch command {
	case "validate", "build":
	case "help", "-h", "--help":
		fmt.Fprint(output, usage)
		return nil, true, nil
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q; expected validate or build", command)}
	}

	flagSet := flag.NewFlagSet("dazzle "+command, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usage)
		flagSet.PrintDefaults()
	}

	outFlag := flagSet.String("out", "", "Output directory for generators. Overrides the manifest.")
	diagFormatFlag := flagSet.String("format", "text", "Diagnostic output format. Options: 'text' or 'json'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	root := "."
	if flagSet.NArg() > 0 {
		root = flagSet.Arg(0)
	}

	diagFormat := strings.ToLower(*diagFormatFlag)
	if diagFormat != "text" && diagFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid format: must be 'text' or 'json'"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		Command:    command,
		Root:       root,
		OutDir:     *outFlag,
		DiagFormat: diagFormat,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
