// Command reliefctl operates a reliefcore store: it loads seed data, runs
// allocation operations, prints and archives summaries, and hosts the
// background job scheduler.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reliefcore/internal/blob"
	"reliefcore/internal/config"
	"reliefcore/internal/core"
	"reliefcore/internal/jobs"
	"reliefcore/internal/logging"
	"reliefcore/internal/reporting"
	"reliefcore/pkg/domain"
)

// App holds the application dependencies.
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    domain.PersistentStore
	svc      *core.Service
	exporter *reporting.Exporter
	runner   *jobs.Runner
	registry *prometheus.Registry
	ctx      context.Context
}

type rootFlags struct {
	configPath  string
	env         string
	dumpMetrics bool
	trace       bool
}

func main() {
	app := &App{}
	err := newRootCmd(app).Execute()
	app.close()
	if err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree around app. The caller closes app once
// Execute returns, whether or not the command failed.
func newRootCmd(app *App) *cobra.Command {
	var flags rootFlags
	rootCmd := &cobra.Command{
		Use:          "reliefctl",
		Short:        "reliefctl - operate the disaster relief core",
		Long:         `Load relief data, staff assignments, apply donations and archive dashboard summaries.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd.Context(), flags, cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if flags.dumpMetrics {
				_ = app.writeMetrics(cmd.ErrOrStderr())
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to "+config.FileName+" (searched for when empty)")
	rootCmd.PersistentFlags().StringVarP(&flags.env, "env", "e", "", "Environment name, overrides the config file")
	rootCmd.PersistentFlags().BoolVar(&flags.dumpMetrics, "metrics", false, "Print operation metrics to stderr on exit")
	rootCmd.PersistentFlags().BoolVar(&flags.trace, "trace", false, "Write operation spans to stderr as JSON lines")

	rootCmd.AddCommand(
		summaryCmd(app),
		exportSummaryCmd(app),
		latestSummaryCmd(app),
		loadCmd(app),
		assignCmd(app),
		eligibleCmd(app),
		completeAssignmentCmd(app),
		cancelAssignmentCmd(app),
		applyDonationCmd(app),
		completeDonationCmd(app),
		failDonationCmd(app),
		acceptRequestCmd(app),
		fulfillRequestCmd(app),
		closeRequestCmd(app),
		distributeCmd(app),
		restockCmd(app),
		transitionCmd(app),
		sweepCampaignsCmd(app),
		jobsCmd(app),
	)
	return rootCmd
}

// setup loads config and wires the logger, storage, archive and service.
func (a *App) setup(ctx context.Context, flags rootFlags, logOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.ctx = ctx

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if flags.env != "" {
		cfg.Env = flags.env
	}
	a.cfg = cfg

	logOpts := cfg.Log
	logOpts.Env = cfg.Env
	a.logger, err = logging.NewWithConsole(logOpts, logOut)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger.Debug("configuration loaded",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("archive", string(cfg.Archive.Driver)))

	a.store, err = core.OpenPersistentStore(ctx, core.StorageOptions{
		Driver:      core.StorageDriver(cfg.Storage.Driver),
		SQLitePath:  cfg.Storage.SQLitePath,
		PostgresDSN: cfg.Storage.PostgresDSN,
	}, core.NewDefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	archive, err := blob.Open(ctx, cfg.Archive)
	if err != nil {
		return fmt.Errorf("failed to open summary archive: %w", err)
	}
	a.exporter = reporting.NewExporter(archive)

	a.registry = prometheus.NewRegistry()
	metrics, err := core.NewPrometheusMetricsRecorder(a.registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	opts := []core.Option{
		core.WithLogger(a.logger),
		core.WithMetrics(metrics),
		core.WithLimitedThreshold(cfg.Allocation.LimitedThreshold),
	}
	if flags.trace {
		opts = append(opts, core.WithTracer(core.NewJSONTracer(logOut)))
	}
	a.svc = core.NewService(a.store, opts...)
	a.runner = jobs.NewRunner(a.svc, a.exporter, a.logger)
	a.logger.Debug("service ready")
	return nil
}

func (a *App) close() {
	if a.store != nil {
		if closer, ok := a.store.(io.Closer); ok {
			if err := closer.Close(); err != nil && a.logger != nil {
				a.logger.Warn("close store", zap.Error(err))
			}
		}
		a.store = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// writeMetrics prints the registry in the Prometheus text format.
func (a *App) writeMetrics(w io.Writer) error {
	if a.registry == nil {
		return nil
	}
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
