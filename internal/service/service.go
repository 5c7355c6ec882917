package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"opsim/internal/config"
	"opsim/internal/forecast"
	"opsim/internal/history"
	"opsim/internal/metrics"
	"opsim/internal/queue"
	"opsim/internal/session"
)

// Service is the single entry point shared by the CLI, MCP and HTTP
// surfaces. It owns the session store; the engine itself stays stateless.
type Service struct {
	cfg      *config.AppConfig
	engine   *forecast.Engine
	metrics  *metrics.Metrics
	sessions *session.Store
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now for snapshots, seeds and history windows.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithEngine(e *forecast.Engine) Option { return func(s *Service) { s.engine = e } }

func New(cfg *config.AppConfig, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		metrics:  m,
		sessions: session.NewStore(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = forecast.NewEngine(forecast.WithClock(s.now))
	}
	return s
}

// SimulateRequest mirrors the dashboard's simulate call.
type SimulateRequest struct {
	CurrentState    *queue.OperationalState `json:"currentState,omitempty"`
	ForecastHours   *int                    `json:"forecastHours,omitempty"`
	ResourceChanges []queue.ResourceChange  `json:"resourceChanges,omitempty"`
	Seed            *int64                  `json:"seed,omitempty"`
}

// CurrentState returns the configured snapshot, or the sample pipeline when
// no snapshot file is set.
func (s *Service) CurrentState() (queue.OperationalState, error) {
	if s.cfg.SnapshotPath == "" {
		return queue.SampleState(s.now()), nil
	}
	return queue.LoadSnapshot(s.cfg.SnapshotPath, s.now())
}

// hours resolves the requested horizon. Only an omitted horizon falls back to
// the configured default; an explicit 0 is rejected like any other.
func (s *Service) hours(requested *int) (int, error) {
	hours := s.cfg.DefaultForecastHours
	if requested != nil {
		hours = *requested
	}
	if err := forecast.ValidateHorizon(hours); err != nil {
		return 0, err
	}
	return hours, nil
}

// resolve checks the horizon and the queue set before any what-if change is
// applied, so an unknown queue in the changes never masks those failures.
func (s *Service) resolve(req SimulateRequest) (queue.OperationalState, int, int64, error) {
	var state queue.OperationalState
	hours, err := s.hours(req.ForecastHours)
	if err != nil {
		return state, 0, 0, err
	}

	if req.CurrentState != nil {
		state = *req.CurrentState
		if state.Timestamp.IsZero() {
			state.Timestamp = s.now()
		}
	} else if state, err = s.CurrentState(); err != nil {
		return state, 0, 0, err
	}
	if len(state.WorkQueues) == 0 {
		return state, 0, 0, forecast.ErrEmptyQueueSet
	}

	if len(req.ResourceChanges) > 0 {
		next, err := queue.ApplyChanges(state, req.ResourceChanges)
		if err != nil {
			return state, 0, 0, err
		}
		state = next
	}
	return state, hours, s.seed(req.Seed), nil
}

func (s *Service) seed(requested *int64) int64 {
	switch {
	case requested != nil:
		return *requested
	case s.cfg.Seed != 0:
		return s.cfg.Seed
	default:
		return s.now().UnixNano()
	}
}

// Simulate runs one forecast. ResourceChangesApplied in the metadata counts
// the what-if changes carried by the request.
func (s *Service) Simulate(req SimulateRequest) (*forecast.Response, error) {
	state, hours, seed, err := s.resolve(req)
	if err != nil {
		s.observeError(err)
		return nil, err
	}
	return s.run(state, hours, forecast.RunOptions{Seed: seed, ResourceChangesApplied: len(req.ResourceChanges)})
}

func (s *Service) run(state queue.OperationalState, hours int, opts forecast.RunOptions) (*forecast.Response, error) {
	start := time.Now()
	resp, err := s.engine.Run(state, hours, opts)
	s.metrics.SimulationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.observeError(err)
		log.Warn().Err(err).Int("hours", hours).Int("queues", len(state.WorkQueues)).Msg("Simulation rejected")
		return nil, err
	}

	s.metrics.SimulationsTotal.WithLabelValues("ok").Inc()
	s.metrics.PeakBreachRisk.Set(resp.Metadata.PeakRiskValue)
	for _, sug := range resp.Suggestions {
		s.metrics.SuggestionsTotal.WithLabelValues(string(sug.Severity)).Inc()
	}

	log.Info().
		Int("hours", hours).
		Int("queues", len(state.WorkQueues)).
		Int64("seed", opts.Seed).
		Int("peakHour", resp.Metadata.PeakRiskHour).
		Float64("peakRisk", resp.Metadata.PeakRiskValue).
		Int("suggestions", len(resp.Suggestions)).
		Dur("took", time.Since(start)).
		Msg("Simulation complete")
	return resp, nil
}

// Optimize returns the suggestions of a short look-ahead.
func (s *Service) Optimize(state *queue.OperationalState, seed *int64) (*forecast.OptimizeResult, error) {
	st, _, sd, err := s.resolve(SimulateRequest{CurrentState: state, Seed: seed})
	if err != nil {
		s.observeError(err)
		return nil, err
	}
	res, err := s.engine.Optimize(st, forecast.RunOptions{Seed: sd})
	if err != nil {
		s.observeError(err)
		return nil, err
	}
	s.metrics.SimulationsTotal.WithLabelValues("ok").Inc()
	return res, nil
}

// Benchmark compares the request's state with its optimized variant.
func (s *Service) Benchmark(ctx context.Context, req SimulateRequest) (*forecast.BenchmarkResult, error) {
	state, hours, seed, err := s.resolve(req)
	if err != nil {
		s.observeError(err)
		return nil, err
	}
	res, err := s.engine.Benchmark(ctx, state, hours, forecast.RunOptions{Seed: seed})
	if err != nil {
		s.observeError(err)
		return nil, err
	}
	s.metrics.SimulationsTotal.WithLabelValues("ok").Inc()
	log.Info().
		Float64("baseline", res.Baseline.AverageBreachRisk).
		Float64("optimized", res.Optimized.AverageBreachRisk).
		Int("applied", res.Improvement.SuggestionsApplied).
		Msg("Benchmark complete")
	return res, nil
}

// History returns a synthetic history window and its summary.
func (s *Service) History(hours int, seed *int64) ([]history.Point, history.Summary, error) {
	now := s.now()
	points, err := history.Generate(hours, now, rand.New(rand.NewSource(s.seed(seed))))
	if err != nil {
		return nil, history.Summary{}, err
	}
	return points, history.Summarize(points), nil
}

// NewSession starts a session on the current state.
func (s *Service) NewSession() (*session.Session, error) {
	state, err := s.CurrentState()
	if err != nil {
		return nil, err
	}
	sess := s.sessions.Create(state)
	log.Debug().Str("session", sess.ID).Msg("Session created")
	return sess, nil
}

// Session looks up a session by id.
func (s *Service) Session(id string) (*session.Session, error) {
	return s.sessions.Get(id)
}

// SimulateSession forecasts the session's snapshot and records the result.
// A forecast whose snapshot was replaced while it ran is returned but not
// recorded, so its suggestions can never be applied to the newer snapshot.
func (s *Service) SimulateSession(sess *session.Session, hours *int, seed *int64) (*forecast.Response, error) {
	h, err := s.hours(hours)
	if err != nil {
		s.observeError(err)
		return nil, err
	}
	state, applied, version := sess.Snapshot()
	resp, err := s.run(state, h, forecast.RunOptions{
		Seed:                   s.seed(seed),
		ResourceChangesApplied: applied,
	})
	if err != nil {
		return nil, err
	}
	if !sess.Record(resp, version) {
		log.Warn().Str("session", sess.ID).Int("version", version).Msg("Discarded forecast of a replaced snapshot")
	}
	return resp, nil
}

// ApplySuggestion accepts the session's latest suggestion for queueID.
func (s *Service) ApplySuggestion(sess *session.Session, queueID string) (forecast.Suggestion, error) {
	sug, err := sess.Apply(queueID)
	if err != nil {
		return sug, err
	}
	s.metrics.SuggestionsApplied.Inc()
	log.Info().
		Str("session", sess.ID).
		Str("queue", queueID).
		Int("employeeChange", sug.ResourceChange.EmployeeChange).
		Int("applied", sess.ChangesApplied()).
		Msg("Suggestion applied")
	return sug, nil
}

func (s *Service) observeError(err error) {
	kind := ErrorKind(err)
	if kind == "" {
		s.metrics.SimulationsTotal.WithLabelValues("error").Inc()
		return
	}
	s.metrics.SimulationsTotal.WithLabelValues("invalid").Inc()
	s.metrics.ValidationErrors.WithLabelValues(kind).Inc()
}

// ErrorKind names the input-validation failure behind err, or "" if err is
// not a validation failure.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, queue.ErrInvalidQueueState):
		return "InvalidQueueState"
	case errors.Is(err, forecast.ErrEmptyQueueSet):
		return "EmptyQueueSet"
	case errors.Is(err, forecast.ErrInvalidHorizon):
		return "InvalidHorizon"
	case errors.Is(err, queue.ErrUnknownQueue):
		return "UnknownQueue"
	case errors.Is(err, history.ErrInvalidWindow):
		return "InvalidWindow"
	}
	return ""
}
