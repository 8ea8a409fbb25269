package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/adaptive-tutor/internal/types"
)

// PersistFeedback stores a feedback result and returns its ID
func (db *DB) PersistFeedback(ctx context.Context, record types.FeedbackRecord) (uuid.UUID, error) {
	content, err := json.Marshal(record.Result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal feedback: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO feedback (learner_id, question_id, answer_id, subject, content, suggested_difficulty, improvement_areas)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		record.LearnerID, record.QuestionID, record.AnswerID, record.Subject, content,
		record.Result.SuggestedDifficulty, record.Result.ImprovementAreas,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert feedback: %w", err)
	}
	return id, nil
}

// PersistRecommendation stores one study recommendation
func (db *DB) PersistRecommendation(ctx context.Context, learnerID uuid.UUID, subject string, rec types.Recommendation) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO recommendations (learner_id, subject, type, content, priority, focus_skills)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		learnerID, subject, string(rec.Type), rec.Content, rec.Priority, nonNilStrings(rec.FocusSkills),
	)
	if err != nil {
		return fmt.Errorf("failed to insert recommendation: %w", err)
	}
	return nil
}

// PersistLearningProfile creates or replaces the learner's profile for one subject
func (db *DB) PersistLearningProfile(ctx context.Context, profile types.LearningProfile) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO learning_profiles (learner_id, subject, current_level, strengths, weaknesses, learning_style)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (learner_id, subject) DO UPDATE SET
		     current_level = EXCLUDED.current_level,
		     strengths = EXCLUDED.strengths,
		     weaknesses = EXCLUDED.weaknesses,
		     learning_style = EXCLUDED.learning_style,
		     updated_at = NOW()`,
		profile.LearnerID, profile.Subject, profile.CurrentLevel,
		profile.Strengths, profile.Weaknesses, profile.LearningStyle,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert learning profile: %w", err)
	}
	return nil
}

// PersistEssayEvaluation stores a graded essay and returns its ID
func (db *DB) PersistEssayEvaluation(ctx context.Context, record types.EssayRecord) (uuid.UUID, error) {
	cols, err := encodeEssay(record.Evaluation)
	if err != nil {
		return uuid.Nil, err
	}

	eval := record.Evaluation
	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO essays (learner_id, theme, text, word_count, total_score, criteria, general_comments, suggestions, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		record.LearnerID, record.Theme, record.Text, eval.WordCount, eval.TotalScore,
		cols.criteria, eval.GeneralComments, cols.suggestions, eval.CreatedAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert essay: %w", err)
	}
	return id, nil
}
