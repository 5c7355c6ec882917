package forecast

import (
	"math"

	"opsim/internal/queue"
	"opsim/internal/stats"
)

// Risk is the estimated service risk of a queue at a given load.
type Risk struct {
	SLABreachProbability  float64
	BottleneckProbability float64
	AvgWaitTime           float64
	Processed             int
}

// Estimator converts a projected load into risk figures.
type Estimator interface {
	Estimate(q queue.WorkQueue, load Load, noise Noise) Risk
}

// KneeEstimator uses linear curves that stay at zero until utilization
// crosses a knee and then rise at a fixed slope, clamped to [0,100].
type KneeEstimator struct {
	BreachKnee      float64
	BreachSlope     float64
	BottleneckKnee  float64
	BottleneckSlope float64
	MaxJitter       float64
	WaitBaseline    float64 // utilization at which wait equals process time
	Efficiency      float64
}

// DefaultEstimator returns the 60%/50% knee estimator.
func DefaultEstimator() KneeEstimator {
	return KneeEstimator{
		BreachKnee:      60,
		BreachSlope:     2,
		BottleneckKnee:  50,
		BottleneckSlope: 1.5,
		MaxJitter:       5,
		WaitBaseline:    50,
		Efficiency:      0.85,
	}
}

func (e KneeEstimator) Estimate(q queue.WorkQueue, load Load, noise Noise) Risk {
	u := load.Utilization

	breach := stats.Clamp((u-e.BreachKnee)*e.BreachSlope+noise.Jitter(e.MaxJitter), 0, 100)
	bottleneck := stats.Clamp((u-e.BottleneckKnee)*e.BottleneckSlope+noise.Jitter(e.MaxJitter), 0, 100)

	return Risk{
		SLABreachProbability:  breach,
		BottleneckProbability: bottleneck,
		AvgWaitTime:           q.AvgProcessTime * (u / e.WaitBaseline),
		Processed:             int(math.Round(float64(q.Employees) * (60 / q.AvgProcessTime) * e.Efficiency)),
	}
}
