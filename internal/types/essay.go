package types

import (
	"time"

	"github.com/google/uuid"
)

// EssayCriterion is the evaluation of one rubric criterion
type EssayCriterion struct {
	Number        int      `json:"number"`
	Title         string   `json:"title"`
	Score         int      `json:"score"` // 0-200, multiple of 20
	Justification string   `json:"justification"`
	Errors        []string `json:"errors"`
	Remarks       string   `json:"remarks"`
	CitedPassages []string `json:"cited_passages"`
}

// EssayEvaluation is a graded essay. Criteria always holds five entries numbered 1-5.
type EssayEvaluation struct {
	ID              *uuid.UUID       `json:"id,omitempty"`
	RestatedTheme   string           `json:"theme"`
	WordCount       int              `json:"word_count"`
	Criteria        []EssayCriterion `json:"criteria"`
	TotalScore      int              `json:"total_score"`
	GeneralComments string           `json:"general_comments"`
	Suggestions     []string         `json:"suggestions"`
	CreatedAt       time.Time        `json:"created_at"`
}

// SupportText is a short reference text attached to an essay theme
type SupportText struct {
	Title   string `json:"title"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

// EssayTheme is a generated essay prompt
type EssayTheme struct {
	ID                     string        `json:"id"`
	Title                  string        `json:"title"`
	Description            string        `json:"description"`
	Problem                string        `json:"problem"`
	InterventionGuidelines string        `json:"intervention_guidelines"`
	SupportTexts           []SupportText `json:"support_texts"`
}

// EssayRecord is a graded essay ready to be stored
type EssayRecord struct {
	LearnerID  uuid.UUID
	Theme      string
	Text       string
	Evaluation EssayEvaluation
}
