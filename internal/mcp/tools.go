package mcp

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"opsim/internal/forecast"
	"opsim/internal/history"
	"opsim/internal/queue"
)

type CurrentStateArgs struct{}

type SimulationArgs struct {
	ForecastHours   *int                   `json:"forecast_hours,omitempty" jsonschema:"Number of hours to forecast (1-24). Defaults to the configured horizon."`
	Seed            *int64                 `json:"seed,omitempty" jsonschema:"Optional seed for reproducible noise."`
	ResourceChanges []queue.ResourceChange `json:"resource_changes,omitempty" jsonschema:"Optional what-if staffing changes applied before forecasting. Not recorded in the session."`
}

type OptimizeArgs struct {
	Seed *int64 `json:"seed,omitempty" jsonschema:"Optional seed for reproducible noise."`
}

type BenchmarkArgs struct {
	ForecastHours *int   `json:"forecast_hours,omitempty" jsonschema:"Number of hours to forecast (1-24). Defaults to the configured horizon."`
	Seed          *int64 `json:"seed,omitempty" jsonschema:"Optional seed for reproducible noise."`
}

type ApplyArgs struct {
	QueueID string `json:"queue_id" jsonschema:"ID of the queue whose latest suggestion should be accepted."`
}

type HistoryArgs struct {
	Hours  int    `json:"hours,omitempty" jsonschema:"Length of the history window in hours (1-720). Default: 24."`
	Seed   *int64 `json:"seed,omitempty" jsonschema:"Optional seed for reproducible noise."`
	Bucket string `json:"bucket,omitempty" jsonschema:"Optional rollup of the points: hour, day or week."`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_current_state",
		Description: "Return the operational snapshot the session is working on: every work queue with WIP, capacity, average process time, staffing and base utilization.",
		InputSchema: schemaFor[CurrentStateArgs](nil),
	}, s.handleGetCurrentState)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "run_simulation",
		Description: "Forecast hourly SLA breach risk, utilization and bottleneck probability for every queue and generate staffing suggestions. \n\n" +
			"Without resource_changes the forecast runs on the session snapshot and its suggestions become available to 'apply_suggestion'. " +
			"With resource_changes it is a what-if run and the session is left untouched.",
		InputSchema: schemaFor[SimulationArgs](map[string][2]float64{
			"forecast_hours": {forecast.MinHorizon, forecast.MaxHorizon},
		}),
	}, s.handleRunSimulation)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_optimization_suggestions",
		Description: "Return the staffing suggestions of a short 4 hour look-ahead on the session snapshot.",
		InputSchema: schemaFor[OptimizeArgs](nil),
	}, s.handleGetOptimizationSuggestions)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "run_benchmark",
		Description: "Compare the session snapshot against a variant with the top three actionable suggestions applied, using the same seed for both runs. Also reports the effect of each suggestion on its own.",
		InputSchema: schemaFor[BenchmarkArgs](map[string][2]float64{
			"forecast_hours": {forecast.MinHorizon, forecast.MaxHorizon},
		}),
	}, s.handleRunBenchmark)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "apply_suggestion",
		Description: "Accept the latest suggestion for a queue from the last 'run_simulation'. Advisory suggestions without a staffing change cannot be applied. The session snapshot is replaced and the applied-changes counter increments.",
		InputSchema: schemaFor[ApplyArgs](nil),
	}, s.handleApplySuggestion)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_historical_data",
		Description: "Generate an hourly history of volume, SLA breaches, process time and active staff with a summary.",
		InputSchema: schemaFor[HistoryArgs](map[string][2]float64{
			"hours": {1, history.MaxHours},
		}),
	}, s.handleGetHistoricalData)
}

// schemaFor infers the input schema of T and adds inclusive numeric bounds.
func schemaFor[T any](bounds map[string][2]float64) *jsonschema.Schema {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic(err)
	}
	for name, b := range bounds {
		prop, ok := schema.Properties[name]
		if !ok {
			continue
		}
		lo, hi := b[0], b[1]
		prop.Minimum = &lo
		prop.Maximum = &hi
	}
	return schema
}
