package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/adaptive-tutor/internal/types"
)

// FetchAnswerHistory returns the learner's answers in subject, oldest first.
// An empty subject returns answers in every subject.
func (db *DB) FetchAnswerHistory(ctx context.Context, learnerID uuid.UUID, subject string) ([]types.AnswerEvent, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT a.correct, a.response_time_sec, a.answered_at, q.skill_id
		 FROM answers a
		 JOIN questions q ON q.id = a.question_id
		 WHERE a.learner_id = $1 AND ($2::text = '' OR q.subject = $2::text)
		 ORDER BY a.answered_at`,
		learnerID, subject,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query answer history: %w", err)
	}
	defer rows.Close()

	events := make([]types.AnswerEvent, 0)
	for rows.Next() {
		var ev types.AnswerEvent
		if err := rows.Scan(&ev.Correct, &ev.ResponseTimeSec, &ev.AnsweredAt, &ev.SkillID); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read answer history: %w", err)
	}
	return events, nil
}

// FetchSkillProgress returns every skill of the subject, with the learner's
// counts where they exist, ordered by competency and skill number
func (db *DB) FetchSkillProgress(ctx context.Context, learnerID uuid.UUID, subject string) ([]types.SkillProgress, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT s.id, s.number, c.number, s.description, c.description,
		        COALESCE(p.total_answered, 0), COALESCE(p.correct_count, 0)
		 FROM skills s
		 JOIN competencies c ON c.id = s.competency_id
		 LEFT JOIN skill_progress p ON p.skill_id = s.id AND p.learner_id = $1
		 WHERE c.subject = $2
		 ORDER BY c.number, s.number`,
		learnerID, subject,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query skill progress: %w", err)
	}
	defer rows.Close()

	progress := make([]types.SkillProgress, 0)
	for rows.Next() {
		var r skillRow
		if err := rows.Scan(&r.SkillID, &r.SkillNumber, &r.CompetencyNumber, &r.Description,
			&r.CompetencyDescription, &r.TotalAnswered, &r.CorrectCount); err != nil {
			return nil, fmt.Errorf("failed to scan skill progress: %w", err)
		}
		progress = append(progress, r.toSkillProgress())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read skill progress: %w", err)
	}
	return progress, nil
}

// FetchTaxonomyEntry returns the skill and its competency, or nil when the skill does not exist
func (db *DB) FetchTaxonomyEntry(ctx context.Context, skillID uuid.UUID) (*types.TaxonomyEntry, error) {
	var r skillRow
	err := db.pool.QueryRow(ctx,
		`SELECT s.number, s.description, c.number, c.description
		 FROM skills s
		 JOIN competencies c ON c.id = s.competency_id
		 WHERE s.id = $1`,
		skillID,
	).Scan(&r.SkillNumber, &r.Description, &r.CompetencyNumber, &r.CompetencyDescription)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get taxonomy entry: %w", err)
	}
	entry := r.toTaxonomyEntry()
	return &entry, nil
}

// FetchRecentSessions returns up to limit completed sessions, newest first
func (db *DB) FetchRecentSessions(ctx context.Context, learnerID uuid.UUID, subject string, limit int) ([]types.StudySession, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT started_at, total_questions, correct_count
		 FROM study_sessions
		 WHERE learner_id = $1 AND subject = $2 AND completed
		 ORDER BY started_at DESC
		 LIMIT $3`,
		learnerID, subject, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query study sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]types.StudySession, 0, limit)
	for rows.Next() {
		var s types.StudySession
		if err := rows.Scan(&s.StartedAt, &s.TotalQuestions, &s.CorrectCount); err != nil {
			return nil, fmt.Errorf("failed to scan study session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read study sessions: %w", err)
	}
	return sessions, nil
}

// FetchLearnerName returns the learner's display name, "" when unknown
func (db *DB) FetchLearnerName(ctx context.Context, learnerID uuid.UUID) (string, error) {
	var name string
	err := db.pool.QueryRow(ctx, `SELECT name FROM learners WHERE id = $1`, learnerID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get learner name: %w", err)
	}
	return name, nil
}
