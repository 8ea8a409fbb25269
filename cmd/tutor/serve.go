package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/adaptive-tutor/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server exposing feedback, progress, motivation and essay endpoints plus /metrics.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address, overrides server.addr")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	srv := server.New(cfg, a.engine, server.WithMetrics(a.metrics), server.OnShutdown(a.Close))
	return srv.Start()
}
