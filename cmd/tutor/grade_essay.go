package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/adaptive-tutor/internal/observability"
)

var (
	gradeLearner  string
	gradeTheme    string
	gradeTextPath string
)

var gradeEssayCmd = &cobra.Command{
	Use:   "grade-essay",
	Short: "Grade an essay against the five competencies",
	Long:  "Grades the essay text against the theme and prints one score per competency (0-200, steps of 20) and the total.",
	RunE:  runGradeEssay,
}

func init() {
	gradeEssayCmd.Flags().StringVarP(&gradeLearner, "learner", "l", "", "Learner UUID (required)")
	gradeEssayCmd.Flags().StringVarP(&gradeTheme, "theme", "t", "", "Essay theme (required)")
	gradeEssayCmd.Flags().StringVarP(&gradeTextPath, "text", "f", "", "Path to the essay text, or - for stdin (required)")
	for _, name := range []string{"learner", "theme", "text"} {
		if err := gradeEssayCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
	rootCmd.AddCommand(gradeEssayCmd)
}

func runGradeEssay(cmd *cobra.Command, _ []string) error {
	learnerID, err := uuid.Parse(gradeLearner)
	if err != nil {
		return fmt.Errorf("invalid --learner: %w", err)
	}
	text, err := readInput(cmd.InOrStdin(), gradeTextPath)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	eval, err := a.engine.GradeEssay(cmd.Context(), learnerID, gradeTheme, string(text))
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), eval, func(p *observability.Printer) { p.PrintEssayEvaluation(eval) })
}
