package stats

import (
	"fmt"
	"math"
)

// XmRResult is an Individuals and Moving Range (process behaviour) chart.
type XmRResult struct {
	Average float64  `json:"average"`
	AmR     float64  `json:"averageMovingRange"`
	UNPL    float64  `json:"upperNaturalProcessLimit"`
	LNPL    float64  `json:"lowerNaturalProcessLimit"`
	Signals []Signal `json:"signals,omitempty"`
}

// Signal is a detected special cause variation.
type Signal struct {
	Index       int    `json:"index"`
	Label       string `json:"label,omitempty"`
	Type        string `json:"type"` // "outlier", "shift"
	Description string `json:"description"`
}

// Stable reports whether no special cause was detected.
func (r XmRResult) Stable() bool { return len(r.Signals) == 0 }

// CalculateXmR computes the natural process limits of values and flags
// signals. labels, when given, name each point in the signals.
func CalculateXmR(values []float64, labels []string) XmRResult {
	if len(values) == 0 {
		return XmRResult{}
	}

	var result XmRResult
	result.Average = Mean(values)

	if len(values) > 1 {
		mrSum := 0.0
		for i := 1; i < len(values); i++ {
			mrSum += math.Abs(values[i] - values[i-1])
		}
		result.AmR = mrSum / float64(len(values)-1)
	}

	// Wheeler's scaling constant for individuals
	result.UNPL = result.Average + 2.66*result.AmR
	result.LNPL = math.Max(0, result.Average-2.66*result.AmR)

	result.Signals = detectSignals(values, result.Average, result.UNPL, result.LNPL, labels)
	return result
}

const shiftRun = 8

func detectSignals(values []float64, avg, unpl, lnpl float64, labels []string) []Signal {
	label := func(i int) string {
		if i < len(labels) {
			return labels[i]
		}
		return ""
	}

	var signals []Signal
	for i, v := range values {
		switch {
		case v > unpl:
			signals = append(signals, Signal{
				Index:       i,
				Label:       label(i),
				Type:        "outlier",
				Description: fmt.Sprintf("%.1f above upper natural process limit %.1f", v, unpl),
			})
		case v < lnpl:
			signals = append(signals, Signal{
				Index:       i,
				Label:       label(i),
				Type:        "outlier",
				Description: fmt.Sprintf("%.1f below lower natural process limit %.1f", v, lnpl),
			})
		}
	}

	side, count := 0, 0
	for i, v := range values {
		current := 0
		if v > avg {
			current = 1
		} else if v < avg {
			current = -1
		}

		if current == side && current != 0 {
			count++
		} else {
			side = current
			count = 1
		}

		if count == shiftRun {
			signals = append(signals, Signal{
				Index:       i,
				Label:       label(i),
				Type:        "shift",
				Description: fmt.Sprintf("%d consecutive points on one side of the average", shiftRun),
			})
		}
	}
	return signals
}
