package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"reliefcore/internal/config"
)

// Scheduler manages cron job scheduling.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
}

// NewScheduler registers the runner's jobs using the configured specs.
// Specs use six fields with seconds first.
func NewScheduler(runner *Runner, cfg config.SchedulerConfig) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)
	s := &Scheduler{cron: c, runner: runner}

	if _, err := c.AddFunc(cfg.CampaignSweep, runner.campaignSweepJob); err != nil {
		return nil, fmt.Errorf("register campaign_sweep: %w", err)
	}
	if _, err := c.AddFunc(cfg.SummaryExport, runner.summaryExportJob); err != nil {
		return nil, fmt.Errorf("register summary_export: %w", err)
	}
	runner.logger.Info("cron jobs registered",
		zap.String("campaign_sweep", cfg.CampaignSweep),
		zap.String("summary_export", cfg.SummaryExport))
	return s, nil
}

// Start begins the cron scheduler.
func (s *Scheduler) Start() {
	s.runner.logger.Info("starting cron scheduler")
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.runner.logger.Info("stopping cron scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.runner.logger.Info("cron scheduler stopped")
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Next reports when each job fires next, keyed by job name order of registration.
func (s *Scheduler) Next() []time.Time {
	entries := s.cron.Entries()
	out := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Next)
	}
	return out
}
