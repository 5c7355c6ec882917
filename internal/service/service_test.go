package service

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsim/internal/config"
	"opsim/internal/forecast"
	"opsim/internal/metrics"
	"opsim/internal/queue"
	"opsim/internal/session"
)

var testNow = time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, cfg *config.AppConfig) (*Service, *metrics.Metrics) {
	t.Helper()
	if cfg == nil {
		cfg = &config.AppConfig{DefaultForecastHours: 8}
	}
	m := metrics.New(prometheus.NewRegistry())
	return New(cfg, m, WithClock(func() time.Time { return testNow })), m
}

func seed(v int64) *int64 { return &v }

func horizon(v int) *int { return &v }

func TestService_SimulateDefaults(t *testing.T) {
	svc, m := newTestService(t, nil)

	resp, err := svc.Simulate(SimulateRequest{Seed: seed(1)})
	require.NoError(t, err)

	assert.Len(t, resp.Forecast, 8)
	assert.Equal(t, int64(1), resp.Metadata.Seed)
	assert.Equal(t, testNow, resp.Metadata.SimulationTimestamp)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SimulationsTotal.WithLabelValues("ok")))
	assert.Equal(t, resp.Metadata.PeakRiskValue, testutil.ToFloat64(m.PeakBreachRisk))
}

func TestService_SimulateIsReproducible(t *testing.T) {
	svc, _ := newTestService(t, nil)
	req := SimulateRequest{ForecastHours: horizon(12), Seed: seed(77)}

	a, err := svc.Simulate(req)
	require.NoError(t, err)
	b, err := svc.Simulate(req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestService_ConfiguredSeed(t *testing.T) {
	svc, _ := newTestService(t, &config.AppConfig{DefaultForecastHours: 4, Seed: 555})

	resp, err := svc.Simulate(SimulateRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(555), resp.Metadata.Seed)
	assert.Len(t, resp.Forecast, 4)
}

func TestService_WhatIfChanges(t *testing.T) {
	svc, _ := newTestService(t, nil)

	resp, err := svc.Simulate(SimulateRequest{
		Seed:            seed(3),
		ResourceChanges: []queue.ResourceChange{{QueueID: "review", EmployeeChange: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Metadata.ResourceChangesApplied)
	// 10 staff at 45 min per case
	assert.Equal(t, 11, resp.Forecast[0].Predictions["review"].Processed)

	_, err = svc.Simulate(SimulateRequest{ResourceChanges: []queue.ResourceChange{{QueueID: "ghost", EmployeeChange: 1}}})
	assert.ErrorIs(t, err, queue.ErrUnknownQueue)
}

func TestService_ValidationMetrics(t *testing.T) {
	svc, m := newTestService(t, nil)

	_, err := svc.Simulate(SimulateRequest{ForecastHours: horizon(25)})
	assert.ErrorIs(t, err, forecast.ErrInvalidHorizon)

	_, err = svc.Simulate(SimulateRequest{CurrentState: &queue.OperationalState{}, ForecastHours: horizon(4)})
	assert.ErrorIs(t, err, forecast.ErrEmptyQueueSet)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationErrors.WithLabelValues("InvalidHorizon")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationErrors.WithLabelValues("EmptyQueueSet")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SimulationsTotal.WithLabelValues("invalid")))
}

func TestService_SimulateErrors(t *testing.T) {
	ghost := []queue.ResourceChange{{QueueID: "ghost", EmployeeChange: 1}}
	tests := []struct {
		name string
		req  SimulateRequest
		want string
	}{
		{"explicit zero horizon", SimulateRequest{ForecastHours: horizon(0)}, "InvalidHorizon"},
		{"horizon checked before changes", SimulateRequest{ForecastHours: horizon(25), ResourceChanges: ghost}, "InvalidHorizon"},
		{"empty set checked before changes", SimulateRequest{CurrentState: &queue.OperationalState{}, ResourceChanges: ghost}, "EmptyQueueSet"},
		{"unknown queue", SimulateRequest{ResourceChanges: ghost}, "UnknownQueue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, nil)

			_, err := svc.Simulate(tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.want, ErrorKind(err))

			_, err = svc.Benchmark(context.Background(), tt.req)
			assert.Equal(t, tt.want, ErrorKind(err))
		})
	}

	svc, _ := newTestService(t, nil)
	sess, err := svc.NewSession()
	require.NoError(t, err)
	_, err = svc.SimulateSession(sess, horizon(0), nil)
	assert.ErrorIs(t, err, forecast.ErrInvalidHorizon)
}

func TestService_SnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	state := queue.SampleState(testNow)
	state.WorkQueues = state.WorkQueues[:2]
	require.NoError(t, queue.SaveSnapshot(path, state))

	svc, _ := newTestService(t, &config.AppConfig{DefaultForecastHours: 8, SnapshotPath: path})
	got, err := svc.CurrentState()
	require.NoError(t, err)
	assert.Len(t, got.WorkQueues, 2)
}

func TestService_SessionFlow(t *testing.T) {
	svc, m := newTestService(t, nil)

	sess, err := svc.NewSession()
	require.NoError(t, err)

	first, err := svc.SimulateSession(sess, horizon(8), seed(9))
	require.NoError(t, err)
	assert.Equal(t, 0, first.Metadata.ResourceChangesApplied)

	sug, err := svc.ApplySuggestion(sess, "review")
	require.NoError(t, err)
	assert.Equal(t, forecast.SeverityHigh, sug.Severity)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SuggestionsApplied))

	second, err := svc.SimulateSession(sess, horizon(8), seed(9))
	require.NoError(t, err)
	assert.Equal(t, 1, second.Metadata.ResourceChangesApplied)

	found, err := svc.Session(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, found)
}

func TestService_SimulateSessionDuringApply(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	engine := forecast.NewEngine(
		forecast.WithClock(func() time.Time { return testNow }),
		forecast.WithNoiseSource(func(seed int64) forecast.Noise {
			if calls.Add(1) == 2 {
				close(started)
				<-release
			}
			return forecast.NewNoise(seed)
		}),
	)
	cfg := &config.AppConfig{DefaultForecastHours: 8}
	svc := New(cfg, metrics.New(prometheus.NewRegistry()), WithClock(func() time.Time { return testNow }), WithEngine(engine))

	sess, err := svc.NewSession()
	require.NoError(t, err)
	_, err = svc.SimulateSession(sess, nil, seed(9))
	require.NoError(t, err)

	done := make(chan *forecast.Response)
	go func() {
		resp, err := svc.SimulateSession(sess, nil, seed(9))
		assert.NoError(t, err)
		done <- resp
	}()
	<-started

	sug, err := svc.ApplySuggestion(sess, "review")
	require.NoError(t, err)
	require.NotNil(t, sug.ResourceChange)

	close(release)
	late := <-done
	require.NotNil(t, late)
	assert.Equal(t, 0, late.Metadata.ResourceChangesApplied)

	_, err = svc.ApplySuggestion(sess, "review")
	assert.ErrorIs(t, err, session.ErrNoSimulationRuns)

	review, _ := sess.State().Queue("review")
	assert.Equal(t, 8+sug.ResourceChange.EmployeeChange, review.Employees)
	assert.Equal(t, 1, sess.ChangesApplied())
}

func TestService_OptimizeAndBenchmark(t *testing.T) {
	svc, _ := newTestService(t, nil)

	opt, err := svc.Optimize(nil, seed(5))
	require.NoError(t, err)
	assert.Equal(t, "4 hours", opt.ForecastHorizon)
	assert.NotEmpty(t, opt.Suggestions)

	bench, err := svc.Benchmark(context.Background(), SimulateRequest{ForecastHours: horizon(6), Seed: seed(5)})
	require.NoError(t, err)
	assert.Len(t, bench.Baseline.Forecast, 6)
	assert.NotEmpty(t, bench.Optimized.AppliedChanges)
}

func TestService_History(t *testing.T) {
	svc, _ := newTestService(t, nil)

	points, summary, err := svc.History(48, seed(2))
	require.NoError(t, err)
	assert.Len(t, points, 48)
	assert.Equal(t, 48, summary.Hours)

	_, _, err = svc.History(0, nil)
	assert.Equal(t, "InvalidWindow", ErrorKind(err))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", ErrorKind(context.Canceled))
	assert.Equal(t, "InvalidQueueState", ErrorKind(&queue.ValidationError{Err: queue.ErrInvalidQueueState}))
}
