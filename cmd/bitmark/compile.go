package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"bitmark-hq/compiler/pkg/bitmark"
	"bitmark-hq/compiler/pkg/bitmark/registry"
	"bitmark-hq/compiler/pkg/cli"
	"bitmark-hq/compiler/pkg/config"
	"bitmark-hq/compiler/pkg/watch"
)

// stdinName is the input argument that reads the source from stdin.
const stdinName = "-"

func loadRegistry(cfg *config.Config) (*registry.Registry, error) {
	if cfg.Compiler.Registry == "" {
		return registry.Default(), nil
	}
	reg, err := registry.LoadFile(cfg.Compiler.Registry)
	if err != nil {
		return nil, cli.NewConfigError("compiler.registry", err.Error())
	}
	return reg, nil
}

func newCompiler(cfg *config.Config, rec bitmark.Recorder) (*bitmark.Compiler, error) {
	reg, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}
	opts := []bitmark.Option{
		bitmark.WithRegistry(reg),
		bitmark.WithMaxDepth(cfg.Compiler.MaxDepth),
	}
	if rec != nil {
		opts = append(opts, bitmark.WithRecorder(rec))
	}
	return bitmark.NewCompiler(opts...), nil
}

// expandInputs replaces directory arguments with the sources below them.
// No arguments means stdin.
func expandInputs(args []string, exts []string) ([]string, error) {
	if len(args) == 0 {
		return []string{stdinName}, nil
	}
	var inputs []string
	for _, arg := range args {
		if arg == stdinName {
			inputs = append(inputs, arg)
			continue
		}
		files, err := watch.Files(arg, exts)
		if err != nil {
			return nil, fmt.Errorf("failed to list %q: %w", arg, err)
		}
		inputs = append(inputs, files...)
	}
	if len(inputs) == 0 {
		return nil, errors.New("no bitmark sources found")
	}
	return inputs, nil
}

// outcome is the compilation of one input.
type outcome struct {
	input string
	res   *bitmark.Result
	err   error
}

// compileAll compiles inputs with up to workers goroutines. Per-input
// failures are returned in the outcomes; the error is set only when ctx
// ends the run.
func compileAll(ctx context.Context, c *bitmark.Compiler, inputs []string, workers int, stdin io.Reader, progress *cli.Progress) ([]outcome, error) {
	out := make([]outcome, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, input := range inputs {
		g.Go(func() error {
			res, err := compileInput(ctx, c, input, stdin)
			out[i] = outcome{input: input, res: res, err: err}
			if progress != nil {
				progress.Done(err != nil)
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func compileInput(ctx context.Context, c *bitmark.Compiler, input string, stdin io.Reader) (*bitmark.Result, error) {
	if input != stdinName {
		return c.CompileFile(ctx, input)
	}
	src, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return c.Compile(ctx, "", src)
}

func displayName(input string) string {
	if input == stdinName {
		return "<stdin>"
	}
	return input
}

// createOutput opens path for writing, or returns w when path is empty.
func createOutput(path string, w io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return w, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
