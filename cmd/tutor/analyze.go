package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/adaptive-tutor/internal/observability"
	"github.com/jonathan/adaptive-tutor/internal/taxonomy"
	"github.com/jonathan/adaptive-tutor/internal/types"
)

var (
	analyzeLearner  string
	analyzeSubjects []string
	analyzeParallel int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a learner's progress per subject",
	Long:  "Runs the progress analysis for each --subject (every catalog subject when omitted), up to --parallel at a time, and prints the results in subject order.",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeLearner, "learner", "l", "", "Learner UUID (required)")
	analyzeCmd.Flags().StringSliceVarP(&analyzeSubjects, "subject", "s", nil, "Subject code, repeatable (MT, LC, CH, CN)")
	analyzeCmd.Flags().IntVar(&analyzeParallel, "parallel", 2, "Maximum concurrent analyses")
	if err := analyzeCmd.MarkFlagRequired("learner"); err != nil {
		panic(fmt.Sprintf("failed to mark learner flag as required: %v", err))
	}
	rootCmd.AddCommand(analyzeCmd)
}

// SubjectProgress pairs a subject with its analysis
type SubjectProgress struct {
	Subject  string                  `json:"subject"`
	Analysis *types.ProgressAnalysis `json:"analysis"`
}

// progressAnalyzer is the slice of the engine analyze needs
type progressAnalyzer interface {
	AnalyzeProgress(ctx context.Context, learnerID uuid.UUID, subject string) *types.ProgressAnalysis
}

// analyzeSubjectsConcurrently keeps results in the order of subjects
func analyzeSubjectsConcurrently(ctx context.Context, engine progressAnalyzer, learnerID uuid.UUID, subjects []string, parallel int) ([]SubjectProgress, error) {
	results := make([]SubjectProgress, len(subjects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallel, 1))
	for i, subject := range subjects {
		g.Go(func() error {
			results[i] = SubjectProgress{Subject: subject, Analysis: engine.AnalyzeProgress(gctx, learnerID, subject)}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func normalizeSubjects(subjects []string) []string {
	if len(subjects) == 0 {
		return taxonomy.MustDefault().Subjects()
	}
	seen := make(map[string]bool, len(subjects))
	out := make([]string, 0, len(subjects))
	for _, s := range subjects {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	learnerID, err := uuid.Parse(analyzeLearner)
	if err != nil {
		return fmt.Errorf("invalid --learner: %w", err)
	}
	subjects := normalizeSubjects(analyzeSubjects)

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := analyzeSubjectsConcurrently(cmd.Context(), a.engine, learnerID, subjects, analyzeParallel)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), results, func(p *observability.Printer) {
		for _, r := range results {
			p.PrintProgress(r.Subject, r.Analysis)
		}
	})
}
