package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"reliefcore/internal/blob"
	"reliefcore/internal/config"
	"reliefcore/internal/core"
	"reliefcore/internal/infra/persistence/memory"
	"reliefcore/internal/reporting"
	"reliefcore/pkg/domain"
)

var now = time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)

type fixture struct {
	runner   *Runner
	svc      *core.Service
	exporter *reporting.Exporter
	logs     *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := func() time.Time { return now }
	store := memory.NewStore(core.NewDefaultRulesEngine(), memory.WithClock(clock))
	svc := core.NewService(store, core.WithClock(core.ClockFunc(clock)))
	exporter := reporting.NewExporter(blob.NewMemory())
	obsCore, logs := observer.New(zapcore.DebugLevel)
	return &fixture{
		runner:   NewRunner(svc, exporter, zap.New(obsCore)),
		svc:      svc,
		exporter: exporter,
		logs:     logs,
	}
}

func TestSweepCampaigns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)
	expired, _, err := f.svc.CreateCampaign(ctx, domain.Campaign{Title: "Winter coats", TargetAmount: 500, EndDate: &past})
	require.NoError(t, err)
	_, _, err = f.svc.CreateCampaign(ctx, domain.Campaign{Title: "School kits", TargetAmount: 800, EndDate: &future})
	require.NoError(t, err)

	closed, err := f.runner.SweepCampaigns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	entries := f.logs.FilterMessage("campaign closed at end date").All()
	require.Len(t, entries, 1)
	assert.Equal(t, expired.ID, entries[0].ContextMap()["campaign_id"])

	closed, err = f.runner.SweepCampaigns(ctx)
	require.NoError(t, err)
	assert.Zero(t, closed)
}

func TestExportSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, err := f.svc.CreateReport(ctx, domain.DisasterReport{Type: "wildfire", Severity: domain.ReportSeverityHigh, Location: "Ridge Road"})
	require.NoError(t, err)

	key, err := f.runner.ExportSummary(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "summaries/2026/05/02/"), key)

	latest, info, err := f.exporter.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, key, info.Key)
	assert.True(t, now.Equal(latest.GeneratedAt))
	assert.Equal(t, 1, latest.ReportsBySeverity[domain.ReportSeverityHigh])
}

func TestRunWithRecovery(t *testing.T) {
	f := newFixture(t)

	f.runner.runWithRecovery("explodes", func(context.Context) error { panic("boom") })
	require.Equal(t, 1, f.logs.FilterMessage("job panicked").Len())

	f.runner.runWithRecovery("fails", func(context.Context) error { return errors.New("disk full") })
	failed := f.logs.FilterMessage("job failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "fails", failed[0].ContextMap()["job"])

	var deadline time.Time
	f.runner.runWithRecovery("ok", func(ctx context.Context) error {
		var ok bool
		deadline, ok = ctx.Deadline()
		assert.True(t, ok)
		return nil
	})
	assert.WithinDuration(t, time.Now().Add(DefaultTimeout), deadline, 5*time.Second)
	assert.Equal(t, 1, f.logs.FilterMessage("job completed").Len())
}

func TestCronWrappersLogOutcome(t *testing.T) {
	f := newFixture(t)
	f.runner.campaignSweepJob()
	f.runner.summaryExportJob()

	completed := f.logs.FilterMessage("job completed").All()
	require.Len(t, completed, 2)
	assert.Equal(t, "campaign_sweep", completed[0].ContextMap()["job"])
	assert.Equal(t, "summary_export", completed[1].ContextMap()["job"])
}

func TestScheduler(t *testing.T) {
	f := newFixture(t)
	s, err := NewScheduler(f.runner, config.SchedulerConfig{
		CampaignSweep: "0 */15 * * * *",
		SummaryExport: "@hourly",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Entries())

	s.Start()
	for _, next := range s.Next() {
		assert.False(t, next.IsZero())
	}
	s.Stop()
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	f := newFixture(t)
	_, err := NewScheduler(f.runner, config.SchedulerConfig{CampaignSweep: "every so often", SummaryExport: "@hourly"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "campaign_sweep")

	_, err = NewScheduler(f.runner, config.SchedulerConfig{CampaignSweep: "@hourly", SummaryExport: "* * *"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary_export")
}
