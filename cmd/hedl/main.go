// Command hedl is the reference CLI over the HEDL document engine:
// parse, validate, canonicalize, convert, and stats.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"charm.land/log/v2"
)

// Exit codes.
const (
	exitSuccess  = 0
	exitUser     = 1
	exitIO       = 2
	exitInternal = 3
)

var logger = log.New(os.Stderr)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "hedl",
		Short:         "Parse, validate, canonicalize, and convert HEDL documents",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newParseCommand(),
		newValidateCommand(),
		newCanonicalizeCommand(),
		newConvertCommand(),
		newStatsCommand(),
	)
	return root
}

// exitError carries the CLI exit code a failure should produce,
// distinguishing user/input errors from I/O and internal failures.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error     { return &exitError{code: exitUser, err: err} }
func ioError(err error) error       { return &exitError{code: exitIO, err: err} }
func internalError(err error) error { return &exitError{code: exitInternal, err: err} }

func exitCodeFor(err error) int {
	var ee *exitError
	if e, ok := err.(*exitError); ok {
		ee = e
	}
	if ee == nil {
		logger.Error("command failed", "error", err)
		return exitInternal
	}
	logger.Error("command failed", "error", ee.err, "exit_code", ee.code)
	return ee.code
}

// readInput reads path's contents, or stdin when path is "-" or
// omitted.
func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, ioError(fmt.Errorf("reading stdin: %w", err))
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, ioError(fmt.Errorf("reading %s: %w", args[0], err))
	}
	return data, nil
}

func writeOutput(flags *pflag.FlagSet, data []byte) error {
	out, _ := flags.GetString("output")
	if out == "" || out == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			return ioError(fmt.Errorf("writing stdout: %w", err))
		}
		return nil
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return ioError(fmt.Errorf("writing %s: %w", out, err))
	}
	return nil
}
