package forecast

import (
	"time"

	"opsim/internal/queue"
)

// QueuePrediction is the projected state of one queue in one hour.
type QueuePrediction struct {
	WorkInProgress        int     `json:"workInProgress"`
	Utilization           float64 `json:"utilization"`
	BottleneckProbability float64 `json:"bottleneckProbability"`
	SLABreachProbability  float64 `json:"slaBreachProbability"`
	AvgWaitTime           float64 `json:"avgWaitTime"` // minutes
	Processed             int     `json:"processed"`
}

// HourlyForecast holds every queue's prediction for one hour of the horizon.
type HourlyForecast struct {
	Hour            int                        `json:"hour"`
	Timestamp       time.Time                  `json:"timestamp"`
	Predictions     map[string]QueuePrediction `json:"predictions"`
	TotalBreachRisk float64                    `json:"totalBreachRisk"`
}

// Severity ranks suggestions. The zero value is not a valid severity.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Rank orders severities so that high > medium > low.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Suggestion is one staffing recommendation. ResourceChange is nil for
// advisory suggestions.
type Suggestion struct {
	Severity       Severity              `json:"severity"`
	Queue          string                `json:"queue"`
	QueueID        string                `json:"queueId"`
	Action         string                `json:"action"`
	Impact         string                `json:"impact"`
	ResourceChange *queue.ResourceChange `json:"resourceChange"`
	Reasoning      string                `json:"reasoning"`
}

// Metadata summarises a simulation run.
type Metadata struct {
	ForecastHours          int       `json:"forecastHours"`
	AverageBreachRisk      float64   `json:"averageBreachRisk"`
	PeakRiskHour           int       `json:"peakRiskHour"`
	PeakRiskValue          float64   `json:"peakRiskValue"`
	ResourceChangesApplied int       `json:"resourceChangesApplied"`
	SuggestionsGenerated   int       `json:"suggestionsGenerated"`
	SimulationTimestamp    time.Time `json:"simulationTimestamp"`
	Seed                   int64     `json:"seed"`
}

// Response is the complete result of one simulation run. Callers treat it as
// an immutable value.
type Response struct {
	Forecast    []HourlyForecast `json:"forecast"`
	Suggestions []Suggestion     `json:"suggestions"`
	Metadata    Metadata         `json:"metadata"`
}
