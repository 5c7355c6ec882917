package forecast

import (
	"time"

	"opsim/internal/queue"
	"opsim/internal/stats"
)

// Compose projects every queue for hours 1..horizon. Noise is drawn in a
// fixed order (hour, then queue in state order) so a given seed always
// produces the same table.
func Compose(state queue.OperationalState, horizon int, p Projector, e Estimator, noise Noise) ([]HourlyForecast, error) {
	if len(state.WorkQueues) == 0 {
		return nil, ErrEmptyQueueSet
	}

	hourOfDay := state.Timestamp.Hour()
	forecast := make([]HourlyForecast, 0, horizon)

	for h := 1; h <= horizon; h++ {
		predictions := make(map[string]QueuePrediction, len(state.WorkQueues))
		breaches := make([]float64, 0, len(state.WorkQueues))

		for _, q := range state.WorkQueues {
			load := p.Project(q, h, hourOfDay, noise)
			risk := e.Estimate(q, load, noise)

			predictions[q.ID] = QueuePrediction{
				WorkInProgress:        load.WorkInProgress,
				Utilization:           load.Utilization,
				BottleneckProbability: risk.BottleneckProbability,
				SLABreachProbability:  risk.SLABreachProbability,
				AvgWaitTime:           risk.AvgWaitTime,
				Processed:             risk.Processed,
			}
			breaches = append(breaches, risk.SLABreachProbability)
		}

		forecast = append(forecast, HourlyForecast{
			Hour:            h,
			Timestamp:       state.Timestamp.Add(time.Duration(h) * time.Hour),
			Predictions:     predictions,
			TotalBreachRisk: stats.Mean(breaches),
		})
	}

	return forecast, nil
}
