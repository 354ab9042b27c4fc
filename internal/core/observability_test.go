package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reliefcore/internal/infra/persistence/memory"
	"reliefcore/pkg/domain"
)

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	require.NoError(t, err)

	svc := NewService(memory.NewStore(NewDefaultRulesEngine()), WithMetrics(rec))
	ctx := context.Background()
	_, _, err = svc.CreateUser(ctx, domain.User{Name: "Priya", Role: domain.RoleDonor})
	require.NoError(t, err)
	_, _, err = svc.TransitionUser(ctx, "missing", domain.ActionApprove)
	require.Error(t, err)
	rec.Observe(ctx, "", true, time.Second)

	assert.InDelta(t, 1, testutil.ToFloat64(rec.operations.WithLabelValues("create_user", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.operations.WithLabelValues("transition_user", "error")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(rec.durations))

	_, err = NewPrometheusMetricsRecorder(reg)
	assert.Error(t, err, "collectors register once per registry")
}

func TestJSONTracerWritesLines(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tracer.now = func() time.Time {
		tick = tick.Add(2 * time.Millisecond)
		return tick
	}

	_, span := tracer.Start(context.Background(), "apply_donation")
	span.End(&domain.Error{Kind: domain.KindAlreadyApplied, Entity: domain.EntityDonation, ID: "D1"})
	_, span = tracer.Start(context.Background(), "summary")
	span.End(nil)

	entries := tracer.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "AlreadyApplied", entries[0].ErrorKind)
	assert.Equal(t, "error", entries[0].Status)
	assert.InDelta(t, 2.0, entries[0].DurationMS, 0.001)
	assert.Equal(t, "success", entries[1].Status)

	dec := json.NewDecoder(&buf)
	var first JSONTraceEntry
	require.NoError(t, dec.Decode(&first))
	assert.Equal(t, "apply_donation", first.Operation)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, domain.ErrorKind("RuleViolation"), errorKind(domain.RuleViolationError{}))
	assert.Equal(t, domain.KindNotOpen, errorKind(&domain.Error{Kind: domain.KindNotOpen}))
	assert.Equal(t, domain.ErrorKind(""), errorKind(errors.New("plain")))
}
