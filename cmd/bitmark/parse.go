package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bitmark-hq/compiler/pkg/cli"
	"bitmark-hq/compiler/pkg/config"
)

type parseOptions struct {
	output   string
	format   string
	pretty   bool
	workers  int
	progress bool
	quiet    bool
}

func newParseCmd(root *rootOptions) *cobra.Command {
	opts := &parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [file|dir|-]...",
		Short: "Compile bitmark sources",
		Long: `Compile bitmark sources and write the documents.

Directories are searched recursively for files with the configured watch
extensions. Without arguments the source is read from stdin. In json format
each document is written on its own line (or indented with --pretty) in
argument order, and diagnostics go to stderr.

Examples:
  # Compile a file
  bitmark parse lesson.bitmark

  # Compile from stdin into a file
  cat lesson.bitmark | bitmark parse -o lesson.json

  # Summaries and diagnostics for a directory
  bitmark parse --format text lessons/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the document to a file (single input only)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: json, text (default from config)")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "indent JSON output")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "files compiled concurrently (default from config)")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "draw a progress bar on stderr")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print diagnostics in json format")
	return cmd
}

func runParse(cmd *cobra.Command, args []string, root *rootOptions, opts *parseOptions) error {
	cfg := config.MustGetConfig()

	formatName := cfg.Compiler.OutputFormat
	if opts.format != "" {
		formatName = opts.format
	}
	format, err := cli.ParseOutputFormat(formatName)
	if err != nil {
		return err
	}
	workers := cfg.Compiler.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}

	inputs, err := expandInputs(args, cfg.Watch.Extensions)
	if err != nil {
		return cli.NewCommandError("parse", err)
	}
	if opts.output != "" && len(inputs) != 1 {
		return cli.NewConfigError("output", fmt.Sprintf("--output needs exactly one input, got %d", len(inputs)))
	}

	compiler, err := newCompiler(cfg, nil)
	if err != nil {
		return err
	}

	var progress *cli.Progress
	if opts.progress {
		progress = cli.NewProgress(cmd.ErrOrStderr(), len(inputs))
	}
	outcomes, err := compileAll(cmd.Context(), compiler, inputs, workers, root.stdin, progress)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return cli.NewCommandError("parse", err)
	}

	w, closeOutput, err := createOutput(opts.output, cmd.OutOrStdout())
	if err != nil {
		return cli.NewCommandError("parse", err)
	}
	defer closeOutput()

	formatter := cli.NewFormatter(format, opts.pretty || cfg.Compiler.Pretty)
	stderr := cmd.ErrOrStderr()
	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			fmt.Fprintf(stderr, "%s: %v\n", displayName(o.input), o.err)
			continue
		}
		root.logger.Debug("compiled",
			"file", displayName(o.input),
			"bits", len(o.res.Document.Bits),
			"duration", o.res.Duration,
		)
		if err := formatter.FormatTo(w, o.res); err != nil {
			return cli.NewCommandError("parse", err)
		}
		if format == cli.FormatJSON && !opts.quiet {
			if err := cli.WriteDiagnostics(stderr, o.res.Diagnostics); err != nil {
				return cli.NewCommandError("parse", err)
			}
		}
	}

	if err := closeOutput(); err != nil {
		return cli.NewCommandError("parse", err)
	}
	if failed > 0 {
		return &cli.ExitError{Code: exitFailure, Message: fmt.Sprintf("%d of %d inputs could not be compiled", failed, len(outcomes))}
	}
	return nil
}
