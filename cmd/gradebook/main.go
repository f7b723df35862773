// Command gradebook builds per-student grade reports from four CSV tables.
//
// Usage:
//
//	gradebook <courses> <students> <tests> <marks> <output>
//	gradebook report [--indent "  "] <courses> <students> <tests> <marks> <output>
//	gradebook check <courses> <students> <tests> <marks>
//	gradebook worker
//	gradebook submit <courses> <students> <tests> <marks> <output>
//
// Exit codes: 0 when a report (including the invalid weights report) was
// written, 1 on any other failure, 2 on usage or configuration errors.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.temporal.io/sdk/temporal"

	"github.com/ahrav/go-gradebook/internal/config"
	"github.com/ahrav/go-gradebook/internal/domain"
)

// Exit codes.
const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

var errUsage = errors.New("usage error")

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)
	err := app.Run(ctx, args)
	if err != nil {
		fmt.Fprintf(stderr, "gradebook: %v\n", err)
	}
	return exitCode(err)
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, errUsage) || errors.Is(err, config.ErrInvalidConfig) || errors.Is(err, domain.ErrInvalidRequest) {
		return exitUsage
	}
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		if appErr.Type() == string(domain.ErrorKindRequest) {
			return exitUsage
		}
	}
	return exitFatal
}

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	env := &cliEnv{out: printer{stdout: stdout, stderr: stderr}, stdout: stdout, stderr: stderr}

	return &cli.Command{
		Name:      "gradebook",
		Usage:     "build per-student grade reports from course, student, test and mark tables",
		ArgsUsage: "<courses> <students> <tests> <marks> <output>",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML configuration file",
				Sources: cli.EnvVars("GRADEBOOK_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override log.level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "override log.format (text, json)",
			},
		},
		Before:         env.before,
		Action:         env.reportAction,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		OnUsageError: func(_ context.Context, _ *cli.Command, err error, _ bool) error {
			return fmt.Errorf("%w: %w", errUsage, err)
		},
		Commands: []*cli.Command{
			{
				Name:      "report",
				Usage:     "generate a report and write it to <output> (- for stdout)",
				ArgsUsage: "<courses> <students> <tests> <marks> <output>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "indent",
						Usage: "pretty-print the report with this indent",
					},
				},
				Action: env.reportAction,
			},
			{
				Name:      "check",
				Usage:     "check course weights and validate the tables without writing a report",
				ArgsUsage: "<courses> <students> <tests> <marks>",
				Action:    env.checkAction,
			},
			{
				Name:   "worker",
				Usage:  "run a Temporal worker serving grade report workflows",
				Action: env.workerAction,
			},
			{
				Name:      "submit",
				Usage:     "run a grade report workflow on a Temporal cluster and wait for it",
				ArgsUsage: "<courses> <students> <tests> <marks> <output>",
				Action:    env.submitAction,
			},
		},
	}
}
