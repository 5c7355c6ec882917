package visuals

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"opsim/internal/forecast"
)

// GenerateBreachRiskChart creates a Mermaid xychart-beta of the total breach
// risk per forecast hour.
func GenerateBreachRiskChart(resp *forecast.Response) string {
	if resp == nil || len(resp.Forecast) == 0 {
		return ""
	}

	var labels []string
	var values []string
	for _, hf := range resp.Forecast {
		labels = append(labels, fmt.Sprintf("\"+%dh\"", hf.Hour))
		values = append(values, fmt.Sprintf("%.1f", hf.TotalBreachRisk))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Total SLA Breach Risk\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString("    y-axis \"Breach Risk (%)\" 0 --> 100\n")
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateUtilizationChart creates a Mermaid bar chart of each queue's
// utilization at the given forecast hour.
func GenerateUtilizationChart(resp *forecast.Response, hour int) string {
	if resp == nil || hour < 1 || hour > len(resp.Forecast) {
		return ""
	}
	hf := resp.Forecast[hour-1]

	ids := make([]string, 0, len(hf.Predictions))
	for id := range hf.Predictions {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var labels []string
	var values []string
	for _, id := range ids {
		labels = append(labels, fmt.Sprintf("\"%s\"", id))
		values = append(values, fmt.Sprintf("%.1f", hf.Predictions[id].Utilization))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Queue Utilization at +%dh\"\n", hour))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString("    y-axis \"Utilization (%)\" 0 --> 100\n")
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateQueueWIPChart plots projected work-in-progress of one queue.
func GenerateQueueWIPChart(resp *forecast.Response, queueID string, capacity int) string {
	if resp == nil || len(resp.Forecast) == 0 {
		return ""
	}

	var labels []string
	var wips []string
	var caps []string
	maxVal := float64(capacity)
	for _, hf := range resp.Forecast {
		p, ok := hf.Predictions[queueID]
		if !ok {
			return ""
		}
		labels = append(labels, fmt.Sprintf("\"+%dh\"", hf.Hour))
		wips = append(wips, fmt.Sprintf("%d", p.WorkInProgress))
		caps = append(caps, fmt.Sprintf("%d", capacity))
		maxVal = math.Max(maxVal, float64(p.WorkInProgress))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Projected WIP: %s\"\n", queueID))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Cases\" 0 --> %d\n", int(math.Ceil(maxVal*1.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(wips, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(caps, ", ")))
	sb.WriteString("```")
	return sb.String()
}
