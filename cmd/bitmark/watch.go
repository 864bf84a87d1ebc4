package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bitmark-hq/compiler/pkg/bitmark"
	"bitmark-hq/compiler/pkg/cli"
	"bitmark-hq/compiler/pkg/config"
	"bitmark-hq/compiler/pkg/store"
	"bitmark-hq/compiler/pkg/store/retention"
	"bitmark-hq/compiler/pkg/telemetry/health"
	"bitmark-hq/compiler/pkg/telemetry/logging"
	"bitmark-hq/compiler/pkg/telemetry/metrics"
	"bitmark-hq/compiler/pkg/telemetry/tracing"
	"bitmark-hq/compiler/pkg/watch"
)

const (
	shutdownTimeout = 5 * time.Second
	healthTimeout   = 2 * time.Second
)

type watchOptions struct {
	metricsAddr string
	debounce    time.Duration
	once        bool
}

func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Recompile sources when they change",
		Long: `Compile every source below a directory, then recompile each file when it
changes. Every compilation whose source differs from the last stored one is
recorded in the store.

While watching, metrics and health probes (/healthz, /readyz) are served on
the metrics address when metrics are enabled, and spans are exported when
tracing is enabled.

Examples:
  # Watch a directory
  bitmark watch lessons/

  # Serve metrics and health probes
  bitmark watch --metrics-addr 127.0.0.1:9464 lessons/

  # Compile and store once, then exit
  bitmark watch --once lessons/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve metrics and health probes on this address")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 0, "quiet period before recompiling (default from config)")
	cmd.Flags().BoolVar(&opts.once, "once", false, "compile and store every source once, then exit")
	return cmd
}

func runWatch(cmd *cobra.Command, root string, rootOpts *rootOptions, opts *watchOptions) error {
	cfg := config.MustGetConfig()
	if opts.metricsAddr != "" {
		cfg.Telemetry.Metrics.Enabled = true
		cfg.Telemetry.Metrics.Address = opts.metricsAddr
	}
	if opts.debounce > 0 {
		cfg.Watch.Debounce = opts.debounce
	}

	ctx := cmd.Context()
	logger := rootOpts.logger.Component("watch")

	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewCommandError("watch", fmt.Errorf("failed to initialize tracing: %w", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	st = store.Instrument(st, collector)
	defer st.Close()

	if cfg.Store.Retention.Enabled {
		pruner := retention.NewPruner(st, cfg.Store.Retention, collector)
		scheduler := retention.NewScheduler(pruner, cfg.Store.Retention.Schedule)
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("watch", err)
		}
		defer scheduler.Stop()
		if next := scheduler.NextRun(); next != nil {
			logger.Debug("retention scheduler started", "next_run", next)
		}
	}

	compiler, err := newCompiler(cfg, collector)
	if err != nil {
		return err
	}
	rc := &recompiler{
		compiler: compiler,
		store:    st,
		logger:   logger,
		out:      cmd.OutOrStdout(),
	}

	files, err := watch.Files(root, cfg.Watch.Extensions)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	if err := rc.compileAll(ctx, files, cfg.Compiler.Workers); err != nil {
		return cli.NewCommandError("watch", err)
	}
	if opts.once {
		return nil
	}

	w, err := watch.New(watch.FromConfig(root, cfg.Watch), logger.Slog())
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer w.Stop()

	if cfg.Telemetry.Metrics.Enabled {
		checker := health.New(healthTimeout)
		checker.Register("store", st.Ping)
		checker.Register("watcher", func(context.Context) error {
			if !w.Running() {
				return errors.New("watcher is not running")
			}
			return nil
		})

		srv := collector.NewServer(checker.Mount)
		go func() {
			logger.Info("serving metrics", "address", srv.Addr, "path", cfg.Telemetry.Metrics.Path)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", "error", err)
			}
		}()
	}

	logger.Info("watching for changes", "root", root, "files", len(files))
	if err := w.Watch(ctx, rc.onChange); err != nil {
		return cli.NewCommandError("watch", err)
	}
	return nil
}

// recompiler compiles changed sources and stores new results.
type recompiler struct {
	compiler *bitmark.Compiler
	store    store.Store
	logger   *logging.Logger

	mu  sync.Mutex
	out io.Writer
}

func (r *recompiler) compileAll(ctx context.Context, files []string, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range files {
		g.Go(func() error {
			r.compile(ctx, path)
			return ctx.Err()
		})
	}
	return g.Wait()
}

func (r *recompiler) onChange(ctx context.Context, ev watch.Event) {
	if ev.Removed {
		r.logger.InfoContext(logging.WithFile(ctx, ev.Path), "source removed")
		return
	}
	r.compile(ctx, ev.Path)
}

// compile compiles path and stores the result unless the newest stored
// record has the same source hash. Failures are logged.
func (r *recompiler) compile(ctx context.Context, path string) {
	ctx = logging.WithFile(ctx, path)

	src, err := os.ReadFile(path)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to read source", "error", err)
		return
	}

	hash := store.HashSource(src)
	if latest, err := r.store.Latest(ctx, path); err == nil && latest.Hash == hash {
		r.logger.Debug("source unchanged", "file", path, "record_id", latest.ID)
		return
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		r.logger.WarnContext(ctx, "failed to read latest record", "error", err)
	}

	res, err := r.compiler.Compile(ctx, path, src)
	if err != nil {
		r.logger.ErrorContext(ctx, "compilation failed", "error", err)
		return
	}

	rec, err := store.NewRecord(res, src)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to build record", "error", err)
		return
	}
	if err := r.store.Put(ctx, rec); err != nil {
		r.logger.ErrorContext(ctx, "failed to store record", "error", err)
		return
	}

	r.logger.InfoContext(logging.WithRecordID(ctx, rec.ID), "compiled",
		"bits", rec.Bits,
		"dropped", rec.Dropped,
		"warnings", rec.Warnings,
		"errors", rec.Errors,
		"duration", res.Duration,
	)

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, cli.Summary(res))
	if err := cli.WriteDiagnostics(r.out, res.Diagnostics); err != nil {
		r.logger.Warn("failed to write diagnostics", "error", err)
	}
}
