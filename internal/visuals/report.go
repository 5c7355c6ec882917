package visuals

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"opsim/internal/forecast"
)

// Markdown renders the charts, headline metadata and suggestion table.
func Markdown(resp *forecast.Response) string {
	if resp == nil {
		return ""
	}
	md := resp.Metadata

	var sb strings.Builder
	sb.WriteString("# Operations Forecast\n\n")
	sb.WriteString(fmt.Sprintf("- Horizon: %d hours\n", md.ForecastHours))
	sb.WriteString(fmt.Sprintf("- Average breach risk: %.2f%%\n", md.AverageBreachRisk))
	sb.WriteString(fmt.Sprintf("- Peak risk: %.2f%% at +%dh\n", md.PeakRiskValue, md.PeakRiskHour))
	sb.WriteString(fmt.Sprintf("- Generated: %s (seed %d)\n\n", md.SimulationTimestamp.Format("2006-01-02 15:04:05 MST"), md.Seed))

	sb.WriteString(GenerateBreachRiskChart(resp))
	sb.WriteString("\n\n")
	sb.WriteString(GenerateUtilizationChart(resp, md.PeakRiskHour))
	sb.WriteString("\n\n")

	sb.WriteString("## Suggestions\n\n")
	if len(resp.Suggestions) == 0 {
		sb.WriteString("No action needed.\n")
		return sb.String()
	}
	sb.WriteString("| Severity | Queue | Action | Impact | Reasoning |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, s := range resp.Suggestions {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			s.Severity, s.Queue, s.Action, s.Impact, strings.ReplaceAll(s.Reasoning, "|", "/")))
	}
	return sb.String()
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"chart": func(s string) string {
		s = strings.TrimPrefix(s, "```mermaid\n")
		return strings.TrimSuffix(s, "```")
	},
	"breach": GenerateBreachRiskChart,
	"utilization": func(r *forecast.Response) string {
		return GenerateUtilizationChart(r, r.Metadata.PeakRiskHour)
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Operations Forecast</title>
<script type="module">
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs";
mermaid.initialize({ startOnLoad: true });
</script>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 4px 8px; vertical-align: top; }
.high { color: #b00020; } .medium { color: #b26a00; } .low { color: #2e7d32; }
</style>
</head>
<body>
<h1>Operations Forecast</h1>
<p>{{.Metadata.ForecastHours}} hour horizon, average breach risk {{printf "%.2f" .Metadata.AverageBreachRisk}}%,
peak {{printf "%.2f" .Metadata.PeakRiskValue}}% at +{{.Metadata.PeakRiskHour}}h (seed {{.Metadata.Seed}}).</p>
<pre class="mermaid">{{chart (breach .)}}</pre>
<pre class="mermaid">{{chart (utilization .)}}</pre>
<h2>Suggestions</h2>
{{if .Suggestions}}<table>
<tr><th>Severity</th><th>Queue</th><th>Action</th><th>Impact</th><th>Reasoning</th></tr>
{{range .Suggestions}}<tr><td class="{{.Severity}}">{{.Severity}}</td><td>{{.Queue}}</td><td>{{.Action}}</td><td>{{.Impact}}</td><td>{{.Reasoning}}</td></tr>
{{end}}</table>{{else}}<p>No action needed.</p>{{end}}
</body>
</html>
`))

// HTML writes a standalone report page.
func HTML(w io.Writer, resp *forecast.Response) error {
	return htmlTemplate.Execute(w, resp)
}
