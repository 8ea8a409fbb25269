package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/adaptive-tutor/internal/observability"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "Generate essay themes with motivating texts",
	Long:  "Generates a fresh set of essay themes, served from the Redis cache when one is configured.",
	RunE:  runThemes,
}

func init() {
	rootCmd.AddCommand(themesCmd)
}

func runThemes(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	themes, err := a.engine.GenerateEssayThemes(cmd.Context())
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), themes, func(p *observability.Printer) { p.PrintThemes(themes) })
}
