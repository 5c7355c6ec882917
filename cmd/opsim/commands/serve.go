package commands

import (
	"github.com/spf13/cobra"

	"opsim/internal/httpapi"
	"opsim/internal/metrics"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and Prometheus metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.HTTPAddr
			}
			return httpapi.Run(cmd.Context(), addr, httpapi.NewServer(svc, metrics.Registry))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from HTTP_ADDR)")
	return cmd
}
