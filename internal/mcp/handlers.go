package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"opsim/internal/forecast"
	"opsim/internal/history"
	"opsim/internal/service"
	"opsim/internal/visuals"
)

type queueView struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	WorkInProgress  int     `json:"workInProgress"`
	Capacity        int     `json:"capacity"`
	AvgProcessTime  float64 `json:"avgProcessTime"`
	Employees       int     `json:"employees"`
	Complexity      float64 `json:"complexity"`
	BaseUtilization float64 `json:"baseUtilization"`
}

func (s *Server) handleGetCurrentState(ctx context.Context, req *mcp.CallToolRequest, args CurrentStateArgs) (*mcp.CallToolResult, any, error) {
	sess, err := s.session()
	if err != nil {
		return errorResult("get_current_state", err), nil, nil
	}
	state := sess.State()

	queues := make([]queueView, 0, len(state.WorkQueues))
	for _, q := range state.WorkQueues {
		queues = append(queues, queueView{
			ID:              q.ID,
			Name:            q.Name,
			WorkInProgress:  q.WorkInProgress,
			Capacity:        q.Capacity,
			AvgProcessTime:  q.AvgProcessTime,
			Employees:       q.Employees,
			Complexity:      q.Complexity,
			BaseUtilization: q.BaseUtilization(),
		})
	}

	res := map[string]any{
		"workQueues":             queues,
		"incomingRate":           state.IncomingRate,
		"timestamp":              state.Timestamp,
		"slaThreshold":           state.SLAThreshold,
		"resourceChangesApplied": sess.ChangesApplied(),
	}
	return textResult(WrapResponse(res)), nil, nil
}

func (s *Server) handleRunSimulation(ctx context.Context, req *mcp.CallToolRequest, args SimulationArgs) (*mcp.CallToolResult, any, error) {
	sess, err := s.session()
	if err != nil {
		return errorResult("run_simulation", err), nil, nil
	}

	var resp *forecast.Response
	guidance := []string{
		"Breach, utilization and bottleneck values are percentages in [0, 100]. Suggestions are ordered high, medium, low.",
	}
	state := sess.State()
	if len(args.ResourceChanges) > 0 {
		resp, err = s.svc.Simulate(service.SimulateRequest{
			CurrentState:    &state,
			ForecastHours:   args.ForecastHours,
			ResourceChanges: args.ResourceChanges,
			Seed:            args.Seed,
		})
		guidance = append(guidance, "This was a what-if run; the session snapshot is unchanged and its suggestions cannot be applied.")
	} else {
		resp, err = s.svc.SimulateSession(sess, args.ForecastHours, args.Seed)
		if err == nil && len(resp.Suggestions) > 0 {
			guidance = append(guidance, "Use 'apply_suggestion' with a queue_id to accept a suggestion that carries a resourceChange.")
		}
	}
	if err != nil {
		return errorResult("run_simulation", err), nil, nil
	}

	var charts []string
	if s.cfg.EnableMermaidCharts {
		charts = append(charts,
			visuals.GenerateBreachRiskChart(resp),
			visuals.GenerateUtilizationChart(resp, resp.Metadata.PeakRiskHour),
		)
		for _, sug := range resp.Suggestions {
			if sug.Severity != forecast.SeverityHigh {
				continue
			}
			if q, ok := state.Queue(sug.QueueID); ok {
				charts = append(charts, visuals.GenerateQueueWIPChart(resp, q.ID, q.Capacity))
			}
		}
	}
	return textResult(WrapResponse(resp, guidance...), charts...), nil, nil
}

func (s *Server) handleGetOptimizationSuggestions(ctx context.Context, req *mcp.CallToolRequest, args OptimizeArgs) (*mcp.CallToolResult, any, error) {
	sess, err := s.session()
	if err != nil {
		return errorResult("get_optimization_suggestions", err), nil, nil
	}
	state := sess.State()
	res, err := s.svc.Optimize(&state, args.Seed)
	if err != nil {
		return errorResult("get_optimization_suggestions", err), nil, nil
	}
	return textResult(WrapResponse(res)), nil, nil
}

func (s *Server) handleRunBenchmark(ctx context.Context, req *mcp.CallToolRequest, args BenchmarkArgs) (*mcp.CallToolResult, any, error) {
	sess, err := s.session()
	if err != nil {
		return errorResult("run_benchmark", err), nil, nil
	}
	state := sess.State()
	res, err := s.svc.Benchmark(ctx, service.SimulateRequest{
		CurrentState:  &state,
		ForecastHours: args.ForecastHours,
		Seed:          args.Seed,
	})
	if err != nil {
		return errorResult("run_benchmark", err), nil, nil
	}
	return textResult(WrapResponse(res,
		"Staffing does not change projected utilization, so breach risk improvements are often zero; throughputGain shows the capacity effect.",
	)), nil, nil
}

func (s *Server) handleApplySuggestion(ctx context.Context, req *mcp.CallToolRequest, args ApplyArgs) (*mcp.CallToolResult, any, error) {
	sess, err := s.session()
	if err != nil {
		return errorResult("apply_suggestion", err), nil, nil
	}
	sug, err := s.svc.ApplySuggestion(sess, args.QueueID)
	if err != nil {
		return errorResult("apply_suggestion", fmt.Errorf("apply suggestion for %q: %w", args.QueueID, err)), nil, nil
	}

	state := sess.State()
	q, _ := state.Queue(args.QueueID)
	res := map[string]any{
		"applied":                sug,
		"queue":                  q,
		"resourceChangesApplied": sess.ChangesApplied(),
	}
	return textResult(WrapResponse(res, "Run 'run_simulation' again to see the effect and get fresh suggestions.")), nil, nil
}

func (s *Server) handleGetHistoricalData(ctx context.Context, req *mcp.CallToolRequest, args HistoryArgs) (*mcp.CallToolResult, any, error) {
	hours := args.Hours
	if hours == 0 {
		hours = 24
	}
	points, summary, err := s.svc.History(hours, args.Seed)
	if err != nil {
		return errorResult("get_historical_data", err), nil, nil
	}
	res := map[string]any{
		"summary": summary,
		"points":  points,
	}
	if args.Bucket != "" {
		buckets, err := history.Rollup(points, args.Bucket)
		if err != nil {
			return errorResult("get_historical_data", err), nil, nil
		}
		res["buckets"] = buckets
	}
	var guidance []string
	if !summary.BreachBehavior.Stable() {
		guidance = append(guidance, "Hourly breaches show special cause variation; see summary.breachBehavior.signals before trusting averages.")
	}
	return textResult(WrapResponse(res, guidance...)), nil, nil
}
