package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"reliefcore/internal/infra/persistence/memory"
	"reliefcore/pkg/domain"
)

var fixedNow = time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	mu    sync.Mutex
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type harness struct {
	svc     *Service
	store   *memory.Store
	metrics *captureMetricsRecorder
	tracer  *JSONTraceTracer
	logs    *observer.ObservedLogs
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.NewStore(NewDefaultRulesEngine(), memory.WithClock(func() time.Time { return fixedNow }))
	obsCore, logs := observer.New(zap.InfoLevel)
	h := &harness{
		store:   store,
		metrics: &captureMetricsRecorder{},
		tracer:  NewJSONTracer(nil),
		logs:    logs,
	}
	h.svc = NewService(store,
		WithLogger(zap.New(obsCore)),
		WithMetrics(h.metrics),
		WithTracer(h.tracer),
		WithClock(ClockFunc(func() time.Time { return fixedNow })),
	)
	return h
}

func (h *harness) assignment(t *testing.T, needed int) domain.Assignment {
	t.Helper()
	a, _, err := h.svc.CreateAssignment(context.Background(), domain.Assignment{Title: "Sandbagging", VolunteersNeeded: needed})
	require.NoError(t, err)
	return a
}

func (h *harness) volunteer(t *testing.T, name string) domain.Volunteer {
	t.Helper()
	v, _, err := h.svc.CreateVolunteer(context.Background(), domain.Volunteer{Name: name})
	require.NoError(t, err)
	return v
}

func (h *harness) campaign(t *testing.T, end *time.Time) domain.Campaign {
	t.Helper()
	c, _, err := h.svc.CreateCampaign(context.Background(), domain.Campaign{Title: "Flood fund", TargetAmount: 1000, EndDate: end})
	require.NoError(t, err)
	return c
}
