// Package performance turns raw answer history into the accuracy figures used
// to personalize prompts.
package performance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/adaptive-tutor/internal/types"
)

// RecentWindow is the trailing window used for RecentAccuracyPct
const RecentWindow = 7 * 24 * time.Hour

// HistorySource supplies a learner's answer events.
// An empty subject selects every subject.
type HistorySource interface {
	FetchAnswerHistory(ctx context.Context, learnerID uuid.UUID, subject string) ([]types.AnswerEvent, error)
}

// Aggregator computes performance snapshots from a HistorySource
type Aggregator struct {
	source HistorySource
	now    func() time.Time
}

// NewAggregator creates an aggregator using the wall clock
func NewAggregator(source HistorySource) *Aggregator {
	return &Aggregator{source: source, now: time.Now}
}

// WithClock returns a copy of the aggregator reading time from now
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	clone := *a
	clone.now = now
	return &clone
}

// Snapshot summarizes the learner's history in subject
func (a *Aggregator) Snapshot(ctx context.Context, learnerID uuid.UUID, subject string) (types.PerformanceSnapshot, error) {
	snapshot, _, err := a.SkillSnapshot(ctx, learnerID, subject, nil)
	return snapshot, err
}

// SkillSnapshot summarizes the learner's history in subject and, when skillID
// is set, the accuracy on that skill alone. A nil skillID yields a zero tuple.
func (a *Aggregator) SkillSnapshot(ctx context.Context, learnerID uuid.UUID, subject string, skillID *uuid.UUID) (types.PerformanceSnapshot, types.SkillAccuracy, error) {
	events, err := a.source.FetchAnswerHistory(ctx, learnerID, subject)
	if err != nil {
		return types.PerformanceSnapshot{}, types.SkillAccuracy{}, fmt.Errorf("failed to fetch answer history: %w", err)
	}
	return Summarize(events, a.now()), SkillAccuracy(events, skillID), nil
}

// Summarize computes a snapshot from events as of now
func Summarize(events []types.AnswerEvent, now time.Time) types.PerformanceSnapshot {
	cutoff := now.Add(-RecentWindow)

	var (
		correct, recent, recentCorrect, timed int
		totalTime                             float64
	)
	for _, e := range events {
		if e.Correct {
			correct++
		}
		if !e.AnsweredAt.Before(cutoff) {
			recent++
			if e.Correct {
				recentCorrect++
			}
		}
		if e.ResponseTimeSec != nil && *e.ResponseTimeSec >= 0 {
			timed++
			totalTime += *e.ResponseTimeSec
		}
	}

	snapshot := types.PerformanceSnapshot{
		TotalAnswered:     len(events),
		CorrectCount:      correct,
		AccuracyPct:       Percent(correct, len(events)),
		RecentAccuracyPct: Percent(recentCorrect, recent),
	}
	if timed > 0 {
		snapshot.AvgResponseTimeSeconds = round1(totalTime / float64(timed))
	}
	return snapshot
}

// SkillAccuracy computes the accuracy tuple for one skill
func SkillAccuracy(events []types.AnswerEvent, skillID *uuid.UUID) types.SkillAccuracy {
	if skillID == nil {
		return types.SkillAccuracy{}
	}
	var acc types.SkillAccuracy
	for _, e := range events {
		if e.SkillID == nil || *e.SkillID != *skillID {
			continue
		}
		acc.TotalAnswered++
		if e.Correct {
			acc.CorrectCount++
		}
	}
	acc.AccuracyPct = Percent(acc.CorrectCount, acc.TotalAnswered)
	return acc
}

// Percent returns num/den as a percentage with one decimal, 0 when den is 0
func Percent(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return round1(float64(num) * 100 / float64(den))
}

// Stars awards one star per ten correct answers
func Stars(correct int) int {
	if correct <= 0 {
		return 0
	}
	return correct / 10
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
