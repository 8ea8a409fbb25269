package tutor

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/adaptive-tutor/internal/llm"
	"github.com/jonathan/adaptive-tutor/internal/types"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateFunc func(ctx context.Context, system, user string, params llm.Params) (string, error)

	mu    sync.Mutex
	calls []generateCall
}

type generateCall struct {
	System string
	User   string
	Params llm.Params
}

func (m *MockLLMClient) Generate(ctx context.Context, system, user string, params llm.Params) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, generateCall{System: system, User: user, Params: params})
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, system, user, params)
	}
	return "{}", nil
}

func (m *MockLLMClient) Model() string { return "mock-model" }

func (m *MockLLMClient) Close() error { return nil }

func (m *MockLLMClient) Calls() []generateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generateCall(nil), m.calls...)
}

func respondWith(body string) func(context.Context, string, string, llm.Params) (string, error) {
	return func(context.Context, string, string, llm.Params) (string, error) {
		return body, nil
	}
}

func failWith(err error) func(context.Context, string, string, llm.Params) (string, error) {
	return func(context.Context, string, string, llm.Params) (string, error) {
		return "", err
	}
}

// fakeStore implements HistoryReader and Writer in memory
type fakeStore struct {
	events   []types.AnswerEvent
	skills   []types.SkillProgress
	sessions []types.StudySession
	entries  map[uuid.UUID]*types.TaxonomyEntry
	name     string

	historyErr        error
	recommendationErr func(rec types.Recommendation) error
	persistErr        error

	feedback        []types.FeedbackRecord
	recommendations []types.Recommendation
	profiles        []types.LearningProfile
	essays          []types.EssayRecord
}

func (f *fakeStore) FetchAnswerHistory(_ context.Context, _ uuid.UUID, _ string) ([]types.AnswerEvent, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.events, nil
}

func (f *fakeStore) FetchSkillProgress(_ context.Context, _ uuid.UUID, _ string) ([]types.SkillProgress, error) {
	return f.skills, nil
}

func (f *fakeStore) FetchTaxonomyEntry(_ context.Context, skillID uuid.UUID) (*types.TaxonomyEntry, error) {
	return f.entries[skillID], nil
}

func (f *fakeStore) FetchRecentSessions(_ context.Context, _ uuid.UUID, _ string, limit int) ([]types.StudySession, error) {
	if len(f.sessions) > limit {
		return f.sessions[:limit], nil
	}
	return f.sessions, nil
}

func (f *fakeStore) FetchLearnerName(_ context.Context, _ uuid.UUID) (string, error) {
	return f.name, nil
}

func (f *fakeStore) PersistFeedback(_ context.Context, record types.FeedbackRecord) (uuid.UUID, error) {
	if f.persistErr != nil {
		return uuid.Nil, f.persistErr
	}
	f.feedback = append(f.feedback, record)
	return uuid.New(), nil
}

func (f *fakeStore) PersistRecommendation(_ context.Context, _ uuid.UUID, _ string, rec types.Recommendation) error {
	if f.recommendationErr != nil {
		if err := f.recommendationErr(rec); err != nil {
			return err
		}
	}
	f.recommendations = append(f.recommendations, rec)
	return nil
}

func (f *fakeStore) PersistLearningProfile(_ context.Context, profile types.LearningProfile) error {
	if f.persistErr != nil {
		return f.persistErr
	}
	f.profiles = append(f.profiles, profile)
	return nil
}

func (f *fakeStore) PersistEssayEvaluation(_ context.Context, record types.EssayRecord) (uuid.UUID, error) {
	if f.persistErr != nil {
		return uuid.Nil, f.persistErr
	}
	f.essays = append(f.essays, record)
	return uuid.New(), nil
}

// fakeThemeCache is an in-memory ThemeCache
type fakeThemeCache struct {
	themes  []types.EssayTheme
	getErr  error
	setErr  error
	setCall int
}

func (c *fakeThemeCache) GetThemes(context.Context) ([]types.EssayTheme, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.themes, nil
}

func (c *fakeThemeCache) SetThemes(_ context.Context, themes []types.EssayTheme) error {
	c.setCall++
	if c.setErr != nil {
		return c.setErr
	}
	c.themes = themes
	return nil
}

var errBackend = errors.New("backend unavailable")
