package forecast

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"opsim/internal/queue"
)

const (
	// OptimizeHorizon is the short look-ahead used for quick suggestions.
	OptimizeHorizon = 4
	// benchmarkTopN is how many actionable suggestions the optimized run applies.
	benchmarkTopN = 3
)

// OptimizeResult is the suggestion-only view of a short forecast.
type OptimizeResult struct {
	Suggestions     []Suggestion `json:"suggestions"`
	Timestamp       time.Time    `json:"timestamp"`
	ForecastHorizon string       `json:"forecastHorizon"`
}

// Optimize runs a 4-hour forecast and returns its suggestions.
func (e *Engine) Optimize(state queue.OperationalState, opts RunOptions) (*OptimizeResult, error) {
	resp, err := e.Run(state, OptimizeHorizon, opts)
	if err != nil {
		return nil, err
	}
	return &OptimizeResult{
		Suggestions:     resp.Suggestions,
		Timestamp:       resp.Metadata.SimulationTimestamp,
		ForecastHorizon: fmt.Sprintf("%d hours", OptimizeHorizon),
	}, nil
}

type BenchmarkRun struct {
	AverageBreachRisk float64                `json:"averageBreachRisk"`
	HourlyThroughput  int                    `json:"hourlyThroughput"`
	Forecast          []HourlyForecast       `json:"forecast"`
	AppliedChanges    []queue.ResourceChange `json:"appliedChanges,omitempty"`
}

type Improvement struct {
	PercentageReduction float64 `json:"percentageReduction"`
	ThroughputGain      int     `json:"throughputGain"`
	SuggestionsApplied  int     `json:"suggestionsApplied"`
}

// WhatIf is the outcome of applying a single suggestion on its own.
type WhatIf struct {
	Change            queue.ResourceChange `json:"change"`
	Severity          Severity             `json:"severity"`
	AverageBreachRisk float64              `json:"averageBreachRisk"`
	BreachRiskDelta   float64              `json:"breachRiskDelta"`
	ThroughputDelta   int                  `json:"throughputDelta"`
}

type BenchmarkResult struct {
	Baseline    BenchmarkRun `json:"baseline"`
	Optimized   BenchmarkRun `json:"optimized"`
	Improvement Improvement  `json:"improvement"`
	WhatIf      []WhatIf     `json:"whatIf"`
}

// Benchmark compares the current configuration against one where the top
// actionable suggestions are applied together, and evaluates each actionable
// suggestion alone. All runs share the caller's seed.
func (e *Engine) Benchmark(ctx context.Context, state queue.OperationalState, horizon int, opts RunOptions) (*BenchmarkResult, error) {
	baseline, err := e.Run(state, horizon, opts)
	if err != nil {
		return nil, err
	}

	var actionable []Suggestion
	for _, s := range baseline.Suggestions {
		if s.ResourceChange != nil {
			actionable = append(actionable, s)
		}
	}

	var changes []queue.ResourceChange
	for _, s := range actionable[:min(benchmarkTopN, len(actionable))] {
		changes = append(changes, *s.ResourceChange)
	}

	optimized := baseline
	if len(changes) > 0 {
		next, err := queue.ApplyChanges(state, changes)
		if err != nil {
			return nil, err
		}
		if optimized, err = e.Run(next, horizon, opts); err != nil {
			return nil, err
		}
	}

	whatIf, err := e.evaluateEach(ctx, state, horizon, opts, baseline, actionable)
	if err != nil {
		return nil, err
	}

	baseAvg := baseline.Metadata.AverageBreachRisk
	optAvg := optimized.Metadata.AverageBreachRisk
	reduction := 0.0
	if baseAvg > 0 {
		reduction = (baseAvg - optAvg) / baseAvg * 100
	}

	baseThroughput := hourlyThroughput(baseline)
	optThroughput := hourlyThroughput(optimized)

	return &BenchmarkResult{
		Baseline: BenchmarkRun{
			AverageBreachRisk: round2(baseAvg),
			HourlyThroughput:  baseThroughput,
			Forecast:          baseline.Forecast,
		},
		Optimized: BenchmarkRun{
			AverageBreachRisk: round2(optAvg),
			HourlyThroughput:  optThroughput,
			Forecast:          optimized.Forecast,
			AppliedChanges:    changes,
		},
		Improvement: Improvement{
			PercentageReduction: round2(reduction),
			ThroughputGain:      optThroughput - baseThroughput,
			SuggestionsApplied:  len(changes),
		},
		WhatIf: whatIf,
	}, nil
}

func (e *Engine) evaluateEach(ctx context.Context, state queue.OperationalState, horizon int, opts RunOptions, baseline *Response, actionable []Suggestion) ([]WhatIf, error) {
	results := make([]WhatIf, len(actionable))
	baseThroughput := hourlyThroughput(baseline)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, s := range actionable {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			next, err := queue.ApplyChanges(state, []queue.ResourceChange{*s.ResourceChange})
			if err != nil {
				return err
			}
			resp, err := e.Run(next, horizon, opts)
			if err != nil {
				return fmt.Errorf("what-if %s: %w", s.QueueID, err)
			}
			results[i] = WhatIf{
				Change:            *s.ResourceChange,
				Severity:          s.Severity,
				AverageBreachRisk: round2(resp.Metadata.AverageBreachRisk),
				BreachRiskDelta:   round2(resp.Metadata.AverageBreachRisk - baseline.Metadata.AverageBreachRisk),
				ThroughputDelta:   hourlyThroughput(resp) - baseThroughput,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b WhatIf) int {
		return cmp.Compare(a.Change.QueueID, b.Change.QueueID)
	})
	return results, nil
}

// hourlyThroughput is the expected cases processed per hour across all
// queues, taken from the first forecast hour.
func hourlyThroughput(resp *Response) int {
	if len(resp.Forecast) == 0 {
		return 0
	}
	total := 0
	for _, p := range resp.Forecast[0].Predictions {
		total += p.Processed
	}
	return total
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
