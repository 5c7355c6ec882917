package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"opsim/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var (
		hours  int
		seed   int64
		bucket string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print a synthetic hourly history with its summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			var sp *int64
			if cmd.Flags().Changed("seed") {
				sp = &seed
			}
			points, summary, err := svc.History(hours, sp)
			if err != nil {
				return err
			}
			res := map[string]any{
				"summary": summary,
				"points":  points,
			}
			if bucket != "" {
				buckets, err := history.Rollup(points, bucket)
				if err != nil {
					return err
				}
				res["buckets"] = buckets
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().IntVar(&hours, "hours", 24, "window length in hours, 1-720")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for reproducible noise")
	cmd.Flags().StringVar(&bucket, "bucket", "", "also roll points up by hour, day or week")
	return cmd
}
