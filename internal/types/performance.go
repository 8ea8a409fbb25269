// Package types provides the value types shared by the adaptive tutor engine and its collaborators.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// AnswerEvent is a single recorded answer as returned by the storage reader
type AnswerEvent struct {
	Correct         bool       `json:"correct"`
	ResponseTimeSec *float64   `json:"response_time_sec,omitempty"` // nil when the client did not report a time
	AnsweredAt      time.Time  `json:"answered_at"`
	SkillID         *uuid.UUID `json:"skill_id,omitempty"`
}

// PerformanceSnapshot summarizes a learner's answers in one subject.
// It is recomputed per request and never persisted by the engine.
type PerformanceSnapshot struct {
	TotalAnswered          int     `json:"total_answered"`
	CorrectCount           int     `json:"correct_count"`
	AccuracyPct            float64 `json:"accuracy_pct"`
	RecentAccuracyPct      float64 `json:"recent_accuracy_pct"`
	AvgResponseTimeSeconds float64 `json:"avg_response_time_seconds"`
}

// SkillAccuracy is the skill-scoped accuracy tuple
type SkillAccuracy struct {
	TotalAnswered int     `json:"total_answered"`
	CorrectCount  int     `json:"correct_count"`
	AccuracyPct   float64 `json:"accuracy_pct"`
}

// SkillProgress is a learner's accumulated result on one taxonomy skill
type SkillProgress struct {
	SkillID               uuid.UUID `json:"skill_id"`
	SkillCode             string    `json:"skill_code"`      // e.g. "H7"
	CompetencyCode        string    `json:"competency_code"` // e.g. "C2"
	Description           string    `json:"description"`
	CompetencyDescription string    `json:"competency_description,omitempty"`
	TotalAnswered         int       `json:"total_answered"`
	CorrectCount          int       `json:"correct_count"`
	AccuracyPct           float64   `json:"accuracy_pct"`
}

// CompetencyProgress is the rollup of every SkillProgress row sharing a competency
type CompetencyProgress struct {
	Code          string  `json:"code"`
	Description   string  `json:"description"`
	TotalAnswered int     `json:"total_answered"`
	CorrectCount  int     `json:"correct_count"`
	AccuracyPct   float64 `json:"accuracy_pct"`
}

// StudySession is a completed practice session
type StudySession struct {
	StartedAt      time.Time `json:"started_at"`
	TotalQuestions int       `json:"total_questions"`
	CorrectCount   int       `json:"correct_count"`
}

// LearningProfile is the per-subject profile refreshed after each progress analysis
type LearningProfile struct {
	LearnerID     uuid.UUID `json:"learner_id"`
	Subject       string    `json:"subject"`
	CurrentLevel  float64   `json:"current_level"`
	Strengths     string    `json:"strengths"`
	Weaknesses    string    `json:"weaknesses"`
	LearningStyle string    `json:"learning_style"`
}
