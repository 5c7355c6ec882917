package forecast

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"opsim/internal/queue"
)

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(WithClock(func() time.Time { return fixedNow }))
}

func sampleState() queue.OperationalState {
	return queue.SampleState(time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC))
}

func TestEngine_InvalidHorizon(t *testing.T) {
	e := newTestEngine()
	states := map[string]queue.OperationalState{
		"Sample": sampleState(),
		"Empty":  {},
		"Broken": {WorkQueues: []queue.WorkQueue{{ID: "x", Capacity: 0, AvgProcessTime: 1}}},
	}

	for name, state := range states {
		for _, h := range []int{-1, 0, 25, 100} {
			if _, err := e.Run(state, h, RunOptions{}); !errors.Is(err, ErrInvalidHorizon) {
				t.Errorf("%s: horizon %d: expected ErrInvalidHorizon, got %v", name, h, err)
			}
		}
	}

	for _, h := range []int{1, 24} {
		if _, err := e.Run(sampleState(), h, RunOptions{}); err != nil {
			t.Errorf("horizon %d should be accepted, got %v", h, err)
		}
	}
}

func TestEngine_ValidationErrors(t *testing.T) {
	e := newTestEngine()

	if _, err := e.Run(queue.OperationalState{Timestamp: fixedNow}, 8, RunOptions{}); !errors.Is(err, ErrEmptyQueueSet) {
		t.Errorf("expected ErrEmptyQueueSet, got %v", err)
	}

	broken := sampleState()
	broken.WorkQueues[1].AvgProcessTime = 0
	if _, err := e.Run(broken, 8, RunOptions{}); !errors.Is(err, queue.ErrInvalidQueueState) {
		t.Errorf("expected ErrInvalidQueueState, got %v", err)
	}

	dup := sampleState()
	dup.WorkQueues[3].ID = dup.WorkQueues[0].ID
	if _, err := e.Run(dup, 8, RunOptions{}); !errors.Is(err, queue.ErrInvalidQueueState) {
		t.Errorf("expected ErrInvalidQueueState for duplicate ids, got %v", err)
	}
}

func TestEngine_OutputsStayInBounds(t *testing.T) {
	e := newTestEngine()

	for seed := int64(0); seed < 50; seed++ {
		resp, err := e.Run(sampleState(), 24, RunOptions{Seed: seed})
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		for _, hf := range resp.Forecast {
			for id, p := range hf.Predictions {
				if p.Utilization < 0 || p.Utilization > 100 {
					t.Fatalf("seed %d hour %d %s: utilization %v", seed, hf.Hour, id, p.Utilization)
				}
				if p.SLABreachProbability < 0 || p.SLABreachProbability > 100 {
					t.Fatalf("seed %d hour %d %s: breach %v", seed, hf.Hour, id, p.SLABreachProbability)
				}
				if p.BottleneckProbability < 0 || p.BottleneckProbability > 100 {
					t.Fatalf("seed %d hour %d %s: bottleneck %v", seed, hf.Hour, id, p.BottleneckProbability)
				}
				if p.AvgWaitTime < 0 || p.Processed < 0 || p.WorkInProgress < 0 {
					t.Fatalf("seed %d hour %d %s: negative output %+v", seed, hf.Hour, id, p)
				}
			}
		}
	}
}

func TestEngine_ForecastShape(t *testing.T) {
	e := newTestEngine()

	for h := MinHorizon; h <= MaxHorizon; h++ {
		resp, err := e.Run(sampleState(), h, RunOptions{Seed: 11})
		if err != nil {
			t.Fatalf("horizon %d: %v", h, err)
		}
		if len(resp.Forecast) != h {
			t.Fatalf("horizon %d: got %d entries", h, len(resp.Forecast))
		}
		for i := 1; i < len(resp.Forecast); i++ {
			prev, cur := resp.Forecast[i-1], resp.Forecast[i]
			if cur.Hour != prev.Hour+1 || !cur.Timestamp.After(prev.Timestamp) {
				t.Fatalf("horizon %d: entries %d/%d out of order", h, i-1, i)
			}
		}
	}
}

func TestEngine_Deterministic(t *testing.T) {
	e := newTestEngine()

	a, err := e.Run(sampleState(), 12, RunOptions{Seed: 99, ResourceChangesApplied: 2})
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Run(sampleState(), 12, RunOptions{Seed: 99, ResourceChangesApplied: 2})
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical inputs produced different responses")
	}

	c, err := e.Run(sampleState(), 12, RunOptions{Seed: 100})
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(a.Forecast, c.Forecast) {
		t.Errorf("different seeds produced identical forecasts")
	}
}

func TestEngine_WorkInProgressMonotonicity(t *testing.T) {
	e := newTestEngine()

	for seed := int64(0); seed < 10; seed++ {
		var prev *Response
		for wip := 0; wip <= 120; wip += 5 {
			state := sampleState()
			state.WorkQueues[2].WorkInProgress = wip

			resp, err := e.Run(state, 12, RunOptions{Seed: seed})
			if err != nil {
				t.Fatal(err)
			}
			if prev != nil {
				for i := range resp.Forecast {
					before := prev.Forecast[i].Predictions["approval"].SLABreachProbability
					after := resp.Forecast[i].Predictions["approval"].SLABreachProbability
					if after < before {
						t.Fatalf("seed %d hour %d: breach fell from %v to %v when WIP rose to %d", seed, i+1, before, after, wip)
					}
				}
			}
			prev = resp
		}
	}
}

func TestEngine_SuggestionOrdering(t *testing.T) {
	e := newTestEngine()

	for seed := int64(0); seed < 20; seed++ {
		resp, err := e.Run(sampleState(), 8, RunOptions{Seed: seed})
		if err != nil {
			t.Fatal(err)
		}
		for i := 1; i < len(resp.Suggestions); i++ {
			a, b := resp.Suggestions[i-1], resp.Suggestions[i]
			if a.Severity.Rank() < b.Severity.Rank() {
				t.Fatalf("seed %d: %s before %s", seed, a.Severity, b.Severity)
			}
			if a.Severity == b.Severity && a.QueueID > b.QueueID {
				t.Fatalf("seed %d: %s before %s within %s", seed, a.QueueID, b.QueueID, a.Severity)
			}
		}
		if resp.Metadata.SuggestionsGenerated != len(resp.Suggestions) {
			t.Fatalf("seed %d: suggestionsGenerated %d != %d", seed, resp.Metadata.SuggestionsGenerated, len(resp.Suggestions))
		}
	}
}

func TestEngine_PeakRiskMetadata(t *testing.T) {
	e := newTestEngine()

	resp, err := e.Run(sampleState(), 16, RunOptions{Seed: 5})
	if err != nil {
		t.Fatal(err)
	}

	peak, peakHour := -1.0, 0
	sum, n := 0.0, 0
	for _, hf := range resp.Forecast {
		if hf.TotalBreachRisk > peak {
			peak, peakHour = hf.TotalBreachRisk, hf.Hour
		}
		for _, q := range sampleState().WorkQueues {
			sum += hf.Predictions[q.ID].SLABreachProbability
			n++
		}
	}

	if resp.Metadata.PeakRiskValue != peak || resp.Metadata.PeakRiskHour != peakHour {
		t.Errorf("peak = (%d, %v), want (%d, %v)", resp.Metadata.PeakRiskHour, resp.Metadata.PeakRiskValue, peakHour, peak)
	}
	if got := resp.Metadata.AverageBreachRisk; got != sum/float64(n) {
		t.Errorf("averageBreachRisk = %v, want %v", got, sum/float64(n))
	}
	if !resp.Metadata.SimulationTimestamp.Equal(fixedNow) {
		t.Errorf("simulationTimestamp = %v", resp.Metadata.SimulationTimestamp)
	}
}

func TestEngine_PeakRiskHourTieKeepsFirst(t *testing.T) {
	e := NewEngine(WithNoiseSource(func(int64) Noise { return NoNoise{} }))
	// Saturated at every hour, so every hour carries the same total risk.
	state := queue.OperationalState{
		Timestamp:    fixedNow,
		SLAThreshold: 120,
		WorkQueues:   []queue.WorkQueue{{ID: "q", WorkInProgress: 200, Capacity: 50, AvgProcessTime: 10, Employees: 2, Complexity: 1}},
	}

	resp, err := e.Run(state, 6, RunOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Metadata.PeakRiskHour != 1 || resp.Metadata.PeakRiskValue != 80 {
		t.Errorf("expected first hour peak of 80, got hour %d value %v", resp.Metadata.PeakRiskHour, resp.Metadata.PeakRiskValue)
	}
}

func TestEngine_ReferenceScenario(t *testing.T) {
	e := newTestEngine()

	resp, err := e.Run(sampleState(), 8, RunOptions{Seed: 2026})
	if err != nil {
		t.Fatal(err)
	}

	if len(resp.Forecast) != 8 || resp.Metadata.ForecastHours != 8 {
		t.Fatalf("expected 8 forecast hours, got %d (metadata %d)", len(resp.Forecast), resp.Metadata.ForecastHours)
	}
	if len(resp.Suggestions) == 0 {
		t.Fatal("expected suggestions for an overloaded pipeline")
	}

	found := false
	for _, s := range resp.Suggestions {
		if s.QueueID == "review" && s.Severity == SeverityHigh {
			found = true
			if s.ResourceChange == nil || s.ResourceChange.EmployeeChange < 1 {
				t.Errorf("review suggestion lacks a staffing increase: %+v", s)
			}
		}
	}
	if !found {
		t.Errorf("expected a high severity suggestion for review, got %+v", resp.Suggestions)
	}
}

func TestEngine_UnderusedQueueScenario(t *testing.T) {
	e := newTestEngine()
	state := queue.OperationalState{
		Timestamp:    fixedNow,
		SLAThreshold: 120,
		WorkQueues: []queue.WorkQueue{
			{ID: "quiet", Name: "Quiet", WorkInProgress: 10, Capacity: 50, AvgProcessTime: 20, Employees: 3, Complexity: 1},
		},
	}

	for seed := int64(0); seed < 20; seed++ {
		resp, err := e.Run(state, 24, RunOptions{Seed: seed})
		if err != nil {
			t.Fatal(err)
		}
		if len(resp.Suggestions) != 1 {
			t.Fatalf("seed %d: expected one suggestion, got %+v", seed, resp.Suggestions)
		}
		s := resp.Suggestions[0]
		if s.Severity != SeverityLow || s.ResourceChange == nil || s.ResourceChange.EmployeeChange != -1 {
			t.Fatalf("seed %d: expected low -1 reallocation, got %+v", seed, s)
		}
	}
}

func TestEngine_CustomStrategies(t *testing.T) {
	flatProjector := projectorFunc(func(q queue.WorkQueue, _, _ int, _ Noise) Load {
		return Load{WorkInProgress: q.WorkInProgress, Utilization: 95}
	})
	e := NewEngine(WithProjector(flatProjector), WithClock(func() time.Time { return fixedNow }))

	resp, err := e.Run(sampleState(), 3, RunOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range resp.Suggestions {
		if s.Severity != SeverityHigh {
			t.Errorf("expected every queue to be high at 95%% utilization, got %s for %s", s.Severity, s.QueueID)
		}
	}
	if len(resp.Suggestions) != 4 {
		t.Errorf("expected 4 suggestions, got %d", len(resp.Suggestions))
	}
}

type projectorFunc func(q queue.WorkQueue, hour, hourOfDay int, noise Noise) Load

func (f projectorFunc) Project(q queue.WorkQueue, hour, hourOfDay int, noise Noise) Load {
	return f(q, hour, hourOfDay, noise)
}
