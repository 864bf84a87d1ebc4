package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bitmark-hq/compiler/pkg/cli"
	"bitmark-hq/compiler/pkg/config"
	"bitmark-hq/compiler/pkg/telemetry/logging"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitConfig  = 2
)

// rootOptions holds the persistent flags and the state set up from them
// before any subcommand runs.
type rootOptions struct {
	configFile string
	logLevel   string
	verbose    bool

	stdin  io.Reader
	logger *logging.Logger
}

func newRootCmd(stdin io.Reader) *cobra.Command {
	opts := &rootOptions{stdin: stdin}

	cmd := &cobra.Command{
		Use:   "bitmark",
		Short: "Bitmark compiler - turn bitmark markup into JSON documents",
		Long: `bitmark compiles bitmark, a markup language for learning content, into
JSON documents.

Each bit in a source is checked against the bit type registry: tags that are
not allowed where they appear are reported and dropped, and only a bit with an
unknown type is removed from the document.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file path (defaults and BITMARK_* variables when empty)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output (log level debug)")

	cmd.AddCommand(
		newParseCmd(opts),
		newLintCmd(opts),
		newWatchCmd(opts),
		newRegistryCmd(opts),
		newHistoryCmd(opts),
		newPruneCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// setup loads the configuration and installs the default logger.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	if err := config.ReloadConfig(o.configFile); err != nil {
		return cli.NewConfigError("config", err.Error())
	}
	cfg := config.MustGetConfig()

	if o.logLevel != "" {
		cfg.Telemetry.Logging.Level = o.logLevel
	}
	if o.verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, cmd.ErrOrStderr()))
	if err != nil {
		return cli.NewConfigError("log-level", err.Error())
	}
	logger.SetDefault()
	o.logger = logger
	return nil
}

// run executes the command line and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	cmd := newRootCmd(stdin)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var exit *cli.ExitError
	if errors.As(err, &exit) {
		if exit.Message != "" {
			fmt.Fprintln(stderr, exit.Message)
		}
		return exit.Code
	}

	fmt.Fprintln(stderr, "Error:", err)
	var cfgErr *cli.ConfigError
	if errors.As(err, &cfgErr) {
		return exitConfig
	}
	return exitFailure
}
