package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/adaptive-tutor/internal/observability"
)

var (
	motivateLearner string
	motivateContext string
)

var motivateCmd = &cobra.Command{
	Use:   "motivate",
	Short: "Write a short motivational message for a learner",
	RunE:  runMotivate,
}

func init() {
	motivateCmd.Flags().StringVarP(&motivateLearner, "learner", "l", "", "Learner UUID (required)")
	motivateCmd.Flags().StringVarP(&motivateContext, "context", "c", "", "Situation the message is for, e.g. simulado")
	if err := motivateCmd.MarkFlagRequired("learner"); err != nil {
		panic(fmt.Sprintf("failed to mark learner flag as required: %v", err))
	}
	rootCmd.AddCommand(motivateCmd)
}

func runMotivate(cmd *cobra.Command, _ []string) error {
	learnerID, err := uuid.Parse(motivateLearner)
	if err != nil {
		return fmt.Errorf("invalid --learner: %w", err)
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	msg := a.engine.GenerateMotivationalMessage(cmd.Context(), learnerID, motivateContext)
	return render(cmd.OutOrStdout(), msg, func(p *observability.Printer) { p.PrintMotivation(msg) })
}
