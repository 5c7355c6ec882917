package forecast

import (
	"errors"
	"fmt"
	"time"

	"opsim/internal/queue"
	"opsim/internal/stats"
)

const (
	MinHorizon = 1
	MaxHorizon = 24
)

var (
	ErrEmptyQueueSet  = errors.New("empty queue set")
	ErrInvalidHorizon = errors.New("invalid horizon")
)

// Engine is the simulation facade. It holds only strategy values and is safe
// for concurrent use.
type Engine struct {
	projector Projector
	estimator Estimator
	policy    SuggestionPolicy
	newNoise  func(seed int64) Noise
	clock     func() time.Time
}

// Option customises an Engine.
type Option func(*Engine)

func WithProjector(p Projector) Option { return func(e *Engine) { e.projector = p } }

func WithEstimator(est Estimator) Option { return func(e *Engine) { e.estimator = est } }

func WithPolicy(p SuggestionPolicy) Option { return func(e *Engine) { e.policy = p } }

// WithNoiseSource replaces the seeded jitter generator.
func WithNoiseSource(f func(seed int64) Noise) Option { return func(e *Engine) { e.newNoise = f } }

// WithClock sets the clock used for the simulation timestamp.
func WithClock(clock func() time.Time) Option { return func(e *Engine) { e.clock = clock } }

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		projector: DefaultProjector(),
		estimator: DefaultEstimator(),
		policy:    DefaultPolicy(),
		newNoise:  NewNoise,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOptions carries the per-call inputs that are not part of the snapshot.
type RunOptions struct {
	Seed int64
	// ResourceChangesApplied is the caller's session counter, echoed into
	// the metadata. The engine never modifies it.
	ResourceChangesApplied int
}

// ValidateHorizon reports ErrInvalidHorizon for horizons outside [1,24].
func ValidateHorizon(hours int) error {
	if hours < MinHorizon || hours > MaxHorizon {
		return fmt.Errorf("%w: %d hours (must be %d-%d)", ErrInvalidHorizon, hours, MinHorizon, MaxHorizon)
	}
	return nil
}

// Run forecasts state over horizon hours and derives suggestions. Inputs are
// validated before any projection work starts.
func (e *Engine) Run(state queue.OperationalState, horizon int, opts RunOptions) (*Response, error) {
	if err := ValidateHorizon(horizon); err != nil {
		return nil, err
	}
	if len(state.WorkQueues) == 0 {
		return nil, ErrEmptyQueueSet
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}

	forecast, err := Compose(state, horizon, e.projector, e.estimator, e.newNoise(opts.Seed))
	if err != nil {
		return nil, err
	}

	suggestions := GenerateSuggestions(forecast, state, e.policy)

	hourly := make([]float64, len(forecast))
	all := make([]float64, 0, len(forecast)*len(state.WorkQueues))
	for i, hf := range forecast {
		hourly[i] = hf.TotalBreachRisk
		for _, q := range state.WorkQueues {
			all = append(all, hf.Predictions[q.ID].SLABreachProbability)
		}
	}
	peakIdx, peakValue := stats.ArgMax(hourly)

	return &Response{
		Forecast:    forecast,
		Suggestions: suggestions,
		Metadata: Metadata{
			ForecastHours:          horizon,
			AverageBreachRisk:      stats.Mean(all),
			PeakRiskHour:           forecast[peakIdx].Hour,
			PeakRiskValue:          peakValue,
			ResourceChangesApplied: opts.ResourceChangesApplied,
			SuggestionsGenerated:   len(suggestions),
			SimulationTimestamp:    e.clock(),
			Seed:                   opts.Seed,
		},
	}, nil
}
