package tutor

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/adaptive-tutor/internal/performance"
	"github.com/jonathan/adaptive-tutor/internal/types"
)

// HistoryReader reads the learner history the engine needs to build its prompts
type HistoryReader interface {
	performance.HistorySource

	// FetchSkillProgress returns every skill of the subject with the learner's counts, including skills never attempted
	FetchSkillProgress(ctx context.Context, learnerID uuid.UUID, subject string) ([]types.SkillProgress, error)
	// FetchTaxonomyEntry returns nil, nil when the skill is unknown
	FetchTaxonomyEntry(ctx context.Context, skillID uuid.UUID) (*types.TaxonomyEntry, error)
	FetchRecentSessions(ctx context.Context, learnerID uuid.UUID, subject string, limit int) ([]types.StudySession, error)
	// FetchLearnerName returns "" when the learner has no display name
	FetchLearnerName(ctx context.Context, learnerID uuid.UUID) (string, error)
}

// Writer stores normalized results
type Writer interface {
	PersistFeedback(ctx context.Context, record types.FeedbackRecord) (uuid.UUID, error)
	PersistRecommendation(ctx context.Context, learnerID uuid.UUID, subject string, rec types.Recommendation) error
	PersistLearningProfile(ctx context.Context, profile types.LearningProfile) error
	PersistEssayEvaluation(ctx context.Context, record types.EssayRecord) (uuid.UUID, error)
}

// ThemeCache stores generated essay themes between requests.
// GetThemes returns nil, nil on a miss.
type ThemeCache interface {
	GetThemes(ctx context.Context) ([]types.EssayTheme, error)
	SetThemes(ctx context.Context, themes []types.EssayTheme) error
}

// Catalog is the read-only taxonomy the engine resolves concepts against
type Catalog interface {
	ListConcepts(subject string) []types.ConceptReference
	SubjectName(subject string) string
}
