package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/adaptive-tutor/internal/observability"
	"github.com/jonathan/adaptive-tutor/internal/tutor"
)

var feedbackRequestPath string

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Explain an incorrect answer",
	Long:  "Reads a feedback request (learner_id, question, chosen_answer) as JSON and prints the generated feedback. The fallback feedback is printed when generation fails.",
	RunE:  runFeedback,
}

func init() {
	feedbackCmd.Flags().StringVarP(&feedbackRequestPath, "request", "r", "", "Path to the request JSON file, or - for stdin (required)")
	if err := feedbackCmd.MarkFlagRequired("request"); err != nil {
		panic(fmt.Sprintf("failed to mark request flag as required: %v", err))
	}
	rootCmd.AddCommand(feedbackCmd)
}

func loadFeedbackRequest(cmd *cobra.Command, path string) (tutor.FeedbackRequest, error) {
	var req tutor.FeedbackRequest
	data, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("failed to parse feedback request: %w", err)
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

func runFeedback(cmd *cobra.Command, _ []string) error {
	req, err := loadFeedbackRequest(cmd, feedbackRequestPath)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	result := a.engine.GenerateAnswerFeedback(cmd.Context(), req)
	return render(cmd.OutOrStdout(), result, func(p *observability.Printer) { p.PrintFeedback(result) })
}
