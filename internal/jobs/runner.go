// Package jobs runs reliefcore's periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"reliefcore/internal/core"
	"reliefcore/internal/reporting"
)

// DefaultTimeout bounds a single job execution.
const DefaultTimeout = time.Minute

// Runner executes jobs against the service. Every job goes through the same
// service operations as interactive callers.
type Runner struct {
	svc      *core.Service
	exporter *reporting.Exporter
	logger   *zap.Logger
	timeout  time.Duration
}

// NewRunner wires a runner. A nil logger discards output.
func NewRunner(svc *core.Service, exporter *reporting.Exporter, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{svc: svc, exporter: exporter, logger: logger, timeout: DefaultTimeout}
}

// SweepCampaigns completes active campaigns whose end date has passed.
func (r *Runner) SweepCampaigns(ctx context.Context) (int, error) {
	closed, _, err := r.svc.CloseExpiredCampaigns(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweep campaigns: %w", err)
	}
	for _, c := range closed {
		r.logger.Info("campaign closed at end date", zap.String("campaign_id", c.ID), zap.String("title", c.Title))
	}
	return len(closed), nil
}

// ExportSummary computes the current summary and archives it.
func (r *Runner) ExportSummary(ctx context.Context) (string, error) {
	summary, err := r.svc.Summary(ctx)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	info, err := r.exporter.Export(ctx, summary)
	if err != nil {
		return "", err
	}
	r.logger.Info("summary exported", zap.String("key", info.Key), zap.Int64("size_bytes", info.Size))
	return info.Key, nil
}

// campaignSweepJob and summaryExportJob adapt the jobs to cron callbacks.
func (r *Runner) campaignSweepJob() {
	r.runWithRecovery("campaign_sweep", func(ctx context.Context) error {
		_, err := r.SweepCampaigns(ctx)
		return err
	})
}

func (r *Runner) summaryExportJob() {
	r.runWithRecovery("summary_export", func(ctx context.Context) error {
		_, err := r.ExportSummary(ctx)
		return err
	})
}

// runWithRecovery wraps job execution with a timeout and panic recovery.
func (r *Runner) runWithRecovery(job string, fn func(context.Context) error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("job panicked", zap.String("job", job), zap.Any("panic", rec))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	started := time.Now()
	r.logger.Debug("starting job", zap.String("job", job))
	if err := fn(ctx); err != nil {
		r.logger.Error("job failed", zap.String("job", job), zap.Error(err))
		return
	}
	r.logger.Info("job completed", zap.String("job", job), zap.Duration("elapsed", time.Since(started)))
}
