package types

import "github.com/google/uuid"

// FeedbackResult is the normalized feedback for an incorrect answer.
// List fields are never nil.
type FeedbackResult struct {
	ID                       *uuid.UUID `json:"id,omitempty"`
	FeedbackText             string     `json:"feedback"`
	CorrectAnswerExplanation string     `json:"correct_answer_explanation"`
	ErrorRootCause           string     `json:"error_root_cause"`
	MisconceptionPoint       string     `json:"misconception_point"`
	ReviewSteps              []string   `json:"review_steps"`
	ConceptsToReview         []string   `json:"concepts_to_review"`
	StudyStrategy            string     `json:"study_strategy"`
	SuggestedDifficulty      float64    `json:"suggested_difficulty"`
	ImprovementAreas         string     `json:"improvement_areas"`
	Fallback                 bool       `json:"fallback"` // true when produced by the fallback policy
}

// FeedbackRecord is a feedback result together with the answer it explains
type FeedbackRecord struct {
	LearnerID  uuid.UUID
	QuestionID uuid.UUID
	AnswerID   *uuid.UUID // nil when the answer row is not known to the caller
	Subject    string
	Result     FeedbackResult
}
