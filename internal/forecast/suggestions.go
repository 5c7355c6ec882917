package forecast

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"opsim/internal/queue"
)

// SuggestionPolicy holds the thresholds of the staffing heuristic. All
// values are percentages.
type SuggestionPolicy struct {
	HighBreach        float64
	HighUtilization   float64
	TargetUtilization float64
	MediumBreach      float64
	BottleneckTrend   float64
	LowUtilization    float64
}

// DefaultPolicy returns the standard thresholds.
func DefaultPolicy() SuggestionPolicy {
	return SuggestionPolicy{
		HighBreach:        60,
		HighUtilization:   85,
		TargetUtilization: 70,
		MediumBreach:      35,
		BottleneckTrend:   10,
		LowUtilization:    30,
	}
}

// queuePeaks is the worst state of one queue across the horizon.
type queuePeaks struct {
	utilization     float64
	utilizationHour int
	breach          float64
	breachHour      int
	wip             int
	wait            float64
	bottleneckFirst float64
	bottleneckLast  float64
}

func peaksFor(forecast []HourlyForecast, id string) queuePeaks {
	var pk queuePeaks
	for i, hf := range forecast {
		p := hf.Predictions[id]
		if i == 0 {
			pk.bottleneckFirst = p.BottleneckProbability
		}
		pk.bottleneckLast = p.BottleneckProbability

		if i == 0 || p.Utilization > pk.utilization {
			pk.utilization, pk.utilizationHour = p.Utilization, hf.Hour
		}
		if i == 0 || p.SLABreachProbability > pk.breach {
			pk.breach, pk.breachHour = p.SLABreachProbability, hf.Hour
		}
		pk.wip = max(pk.wip, p.WorkInProgress)
		pk.wait = math.Max(pk.wait, p.AvgWaitTime)
	}
	return pk
}

// GenerateSuggestions classifies each queue by its worst observed state and
// returns recommendations sorted by severity, then queue id.
func GenerateSuggestions(forecast []HourlyForecast, state queue.OperationalState, policy SuggestionPolicy) []Suggestion {
	suggestions := make([]Suggestion, 0)
	if len(forecast) == 0 {
		return suggestions
	}

	for _, q := range state.WorkQueues {
		pk := peaksFor(forecast, q.ID)
		if s, ok := policy.classify(q, pk, len(forecast), state.SLAThreshold); ok {
			suggestions = append(suggestions, s)
		}
	}

	slices.SortStableFunc(suggestions, func(a, b Suggestion) int {
		if c := cmp.Compare(b.Severity.Rank(), a.Severity.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(a.QueueID, b.QueueID)
	})
	return suggestions
}

func (p SuggestionPolicy) classify(q queue.WorkQueue, pk queuePeaks, hours, slaThreshold int) (Suggestion, bool) {
	base := Suggestion{Queue: q.Name, QueueID: q.ID}

	switch {
	case pk.breach >= p.HighBreach || pk.utilization >= p.HighUtilization:
		n := p.StaffingIncrease(q.Employees, pk.utilization)
		base.Severity = SeverityHigh
		base.Action = fmt.Sprintf("Add %d employee(s)", n)
		base.Impact = fmt.Sprintf("Reduce breach risk by ~%d%%", int(math.Round(pk.breach*0.6)))
		base.ResourceChange = &queue.ResourceChange{QueueID: q.ID, EmployeeChange: n}
		base.Reasoning = fmt.Sprintf(
			"Current workload of %d cases against capacity %d peaks at %.1f%% utilization (hour %d) with %.1f%% breach probability (hour %d); expected wait reaches %.0f min against a %d min SLA. Staffing %d -> %d targets utilization below %.0f%%",
			pk.wip, q.Capacity, pk.utilization, pk.utilizationHour, pk.breach, pk.breachHour,
			pk.wait, slaThreshold, q.Employees, q.Employees+n, p.TargetUtilization,
		)
		return base, true

	case pk.breach >= p.MediumBreach || pk.bottleneckLast-pk.bottleneckFirst > p.BottleneckTrend:
		base.Severity = SeverityMedium
		base.Action = "Monitor closely and prepare to add resources"
		base.Impact = "Prevent bottleneck formation"
		if pk.breach >= p.MediumBreach {
			base.Reasoning = fmt.Sprintf(
				"Breach probability peaks at %.1f%% (hour %d), above the %.0f%% watch level, with utilization up to %.1f%%",
				pk.breach, pk.breachHour, p.MediumBreach, pk.utilization,
			)
		} else {
			base.Reasoning = fmt.Sprintf(
				"Bottleneck probability rises from %.1f%% to %.1f%% across the horizon, more than %.0f points",
				pk.bottleneckFirst, pk.bottleneckLast, p.BottleneckTrend,
			)
		}
		return base, true

	case pk.utilization <= p.LowUtilization && q.Employees > queue.MinStaffing:
		base.Severity = SeverityLow
		base.Action = "Reallocate 1-2 employee(s)"
		base.Impact = "Free resources without risk increase"
		base.ResourceChange = &queue.ResourceChange{QueueID: q.ID, EmployeeChange: -1}
		base.Reasoning = fmt.Sprintf(
			"Low utilization: peak of %.1f%% across %d hour(s) stays at or below %.0f%% with %d employees",
			pk.utilization, hours, p.LowUtilization, q.Employees,
		)
		return base, true
	}

	return Suggestion{}, false
}

// StaffingIncrease is the smallest head-count increase that scales the
// observed utilization below the target, assuming utilization falls in
// proportion to added staff. It is at least 1. A queue with no staff is
// treated as having one employee for the ratio.
func (p SuggestionPolicy) StaffingIncrease(employees int, utilization float64) int {
	current := max(employees, 1)
	required := int(math.Ceil(float64(current) * utilization / p.TargetUtilization))
	return max(required-employees, 1)
}
