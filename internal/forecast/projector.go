package forecast

import (
	"math"

	"opsim/internal/queue"
)

// Load is the projected occupancy of a queue at one hour offset.
type Load struct {
	WorkInProgress int
	Utilization    float64
}

// Projector turns a queue snapshot into a projected load for hour offset
// hour (1-based). hourOfDay is the wall-clock hour of the snapshot.
type Projector interface {
	Project(q queue.WorkQueue, hour, hourOfDay int, noise Noise) Load
}

// PeriodicProjector models a 24h demand cycle oscillating around the
// snapshot load, plus bounded arrival jitter.
type PeriodicProjector struct {
	Amplitude       float64 // relative swing of the daily cycle
	MaxWIPJitter    float64 // cases
	MaxUtilJitter   float64 // percentage points
	UtilizationCeil float64
}

// DefaultProjector returns the ±30% diurnal projector.
func DefaultProjector() PeriodicProjector {
	return PeriodicProjector{
		Amplitude:       0.3,
		MaxWIPJitter:    10,
		MaxUtilJitter:   3,
		UtilizationCeil: 100,
	}
}

// IntensityFactor is the demand multiplier for hour offset h.
func (p PeriodicProjector) IntensityFactor(hour, hourOfDay int) float64 {
	return 1 + p.Amplitude*math.Sin(math.Pi*float64(hour+hourOfDay)/12)
}

func (p PeriodicProjector) Project(q queue.WorkQueue, hour, hourOfDay int, noise Noise) Load {
	factor := p.IntensityFactor(hour, hourOfDay)

	wip := math.Round(float64(q.WorkInProgress)*factor + noise.Jitter(p.MaxWIPJitter))
	utilization := math.Min(p.UtilizationCeil, q.BaseUtilization()*factor+noise.Jitter(p.MaxUtilJitter))

	return Load{
		WorkInProgress: int(math.Max(0, wip)),
		Utilization:    math.Max(0, utilization),
	}
}
