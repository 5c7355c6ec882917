package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"opsim/internal/forecast"
	"opsim/internal/queue"
	"opsim/internal/service"
	"opsim/internal/visuals"
)

type simulateFlags struct {
	hours    int
	seed     int64
	snapshot string
	format   string
	open     bool
}

func newSimulateCmd() *cobra.Command {
	var f simulateFlags
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one forecast and print it",
		Example: `  opsim simulate --hours 12 --seed 42
  opsim simulate --snapshot state.json --format markdown
  opsim simulate --format html --open`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req service.SimulateRequest
			if cmd.Flags().Changed("hours") {
				req.ForecastHours = &f.hours
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &f.seed
			}
			if f.snapshot != "" {
				state, err := queue.LoadSnapshot(f.snapshot, time.Now())
				if err != nil {
					return err
				}
				req.CurrentState = &state
			}

			resp, err := svc.Simulate(req)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), resp, f)
		},
	}
	cmd.Flags().IntVar(&f.hours, "hours", 0, "forecast horizon in hours, 1-24 (default from DEFAULT_FORECAST_HOURS)")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "seed for reproducible noise")
	cmd.Flags().StringVar(&f.snapshot, "snapshot", "", "operational state JSON file (default: SNAPSHOT_PATH or built-in sample)")
	cmd.Flags().StringVar(&f.format, "format", "json", "output format: json, markdown or html")
	cmd.Flags().BoolVar(&f.open, "open", false, "with --format html, write the report to a file and open it in the browser")
	return cmd
}

func render(w io.Writer, resp *forecast.Response, f simulateFlags) error {
	switch f.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "markdown", "md":
		_, err := fmt.Fprintln(w, visuals.Markdown(resp))
		return err
	case "html":
		if !f.open {
			return visuals.HTML(w, resp)
		}
		path := filepath.Join(cfg.DataPath, "opsim-report.html")
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		if err := visuals.HTML(file, resp); err != nil {
			file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("Report written")
		return browser.OpenFile(path)
	default:
		return fmt.Errorf("unknown format %q (want json, markdown or html)", f.format)
	}
}
