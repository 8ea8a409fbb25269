// Package main provides the tutor CLI: the HTTP server and one-shot engine commands.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/adaptive-tutor/internal/config"
)

var (
	cfg          *config.Config
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Adaptive feedback engine for ENEM preparation",
	Long: "tutor explains wrong answers, analyzes learner progress, writes motivational messages, " +
		"generates essay themes and grades essays against the five ENEM competencies.",
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if outputFormat != formatJSON && outputFormat != formatText {
			return fmt.Errorf("invalid --format %q: use %s or %s", outputFormat, formatJSON, formatText)
		}
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", formatJSON, "Output format: json or text")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
