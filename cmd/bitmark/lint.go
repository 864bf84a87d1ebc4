package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bitmark-hq/compiler/pkg/bitmark/ast"
	bmErrors "bitmark-hq/compiler/pkg/bitmark/errors"
	"bitmark-hq/compiler/pkg/cli"
	"bitmark-hq/compiler/pkg/config"
)

type lintOptions struct {
	strict  bool
	format  string
	workers int
}

// lintReport is the JSON form of one linted source.
type lintReport struct {
	File     string           `json:"file"`
	Valid    bool             `json:"valid"`
	Bits     int              `json:"bits"`
	Dropped  int              `json:"dropped"`
	Errors   []ast.Diagnostic `json:"errors,omitempty"`
	Warnings []ast.Diagnostic `json:"warnings,omitempty"`
	Failure  string           `json:"failure,omitempty"`
}

func newLintCmd(root *rootOptions) *cobra.Command {
	opts := &lintOptions{}

	cmd := &cobra.Command{
		Use:   "lint [file|dir|-]...",
		Short: "Check bitmark sources for problems",
		Long: `Compile bitmark sources and report their diagnostics without writing the
documents. The command exits with status 1 when a source has errors, or
warnings with --strict.

Examples:
  # Lint a directory
  bitmark lint lessons/

  # Strict mode (warnings as errors)
  bitmark lint --strict lessons/

  # JSON output for CI
  bitmark lint --format json lessons/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args, root, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "treat warnings as errors")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text, json")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "files compiled concurrently (default from config)")
	return cmd
}

func runLint(cmd *cobra.Command, args []string, root *rootOptions, opts *lintOptions) error {
	cfg := config.MustGetConfig()

	format, err := cli.ParseOutputFormat(opts.format)
	if err != nil {
		return err
	}
	workers := cfg.Compiler.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}

	inputs, err := expandInputs(args, cfg.Watch.Extensions)
	if err != nil {
		return cli.NewCommandError("lint", err)
	}
	compiler, err := newCompiler(cfg, nil)
	if err != nil {
		return err
	}
	outcomes, err := compileAll(cmd.Context(), compiler, inputs, workers, root.stdin, nil)
	if err != nil {
		return cli.NewCommandError("lint", err)
	}

	reports := make([]lintReport, 0, len(outcomes))
	failed := 0
	for _, o := range outcomes {
		r := newLintReport(o, opts.strict)
		if !r.Valid {
			failed++
		}
		reports = append(reports, r)
	}

	out := cmd.OutOrStdout()
	if format == cli.FormatJSON {
		if err := cli.NewFormatter(cli.FormatJSON, true).FormatTo(out, reports); err != nil {
			return cli.NewCommandError("lint", err)
		}
	} else if err := writeLintText(out, outcomes); err != nil {
		return cli.NewCommandError("lint", err)
	}

	if failed > 0 {
		return &cli.ExitError{Code: exitFailure, Message: fmt.Sprintf("%d of %d files failed lint", failed, len(outcomes))}
	}
	return nil
}

func newLintReport(o outcome, strict bool) lintReport {
	r := lintReport{File: displayName(o.input)}
	if o.err != nil {
		r.Failure = o.err.Error()
		return r
	}
	r.Bits = len(o.res.Document.Bits)
	r.Dropped = o.res.Dropped()
	r.Errors = bmErrors.ToAST(o.res.Diagnostics.Errors())
	r.Warnings = bmErrors.ToAST(o.res.Diagnostics.Warnings())
	r.Valid = len(r.Errors) == 0 && (!strict || len(r.Warnings) == 0)
	return r
}

func writeLintText(w io.Writer, outcomes []outcome) error {
	for _, o := range outcomes {
		if o.err != nil {
			if _, err := fmt.Fprintf(w, "%s: %v\n", displayName(o.input), o.err); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintln(w, cli.Summary(o.res)); err != nil {
			return err
		}
		if err := cli.WriteDiagnostics(w, o.res.Diagnostics); err != nil {
			return err
		}
	}
	return nil
}
