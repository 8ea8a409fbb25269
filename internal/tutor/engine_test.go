package tutor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/adaptive-tutor/internal/essay"
	"github.com/jonathan/adaptive-tutor/internal/llm"
	"github.com/jonathan/adaptive-tutor/internal/metrics"
	"github.com/jonathan/adaptive-tutor/internal/taxonomy"
	"github.com/jonathan/adaptive-tutor/internal/types"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

var mtConcepts = []types.ConceptReference{
	{Code: "MT01", Description: "Conhecimentos numéricos: operações em conjuntos numéricos"},
	{Code: "MT02", Description: "Conhecimentos geométricos: características das figuras planas"},
	{Code: "MT03", Description: "Conhecimentos de estatística e probabilidade"},
	{Code: "MT04", Description: "Conhecimentos algébricos: gráficos e funções"},
}

var (
	skillH7 = uuid.MustParse("7f0e6a3c-1111-4d7a-9a1e-000000000007")
	skillH8 = uuid.MustParse("7f0e6a3c-1111-4d7a-9a1e-000000000008")
	skillH1 = uuid.MustParse("7f0e6a3c-1111-4d7a-9a1e-000000000001")
)

func testCatalog() *taxonomy.Catalog {
	return taxonomy.New(taxonomy.Subject{Code: "MT", Name: "Matemática", Concepts: mtConcepts})
}

func newTestEngine(client llm.Client, store *fakeStore, opts ...Option) *Engine {
	base := []Option{
		WithCatalog(testCatalog()),
		WithClock(func() time.Time { return testNow }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return New(client, store, store, append(base, opts...)...)
}

// tenAnswers returns ten answers from yesterday, six of them correct.
// The last five are on skill H7 and only the first of those is correct.
func tenAnswers() []types.AnswerEvent {
	events := make([]types.AnswerEvent, 0, 10)
	for i := 0; i < 10; i++ {
		rt := float64(30 + i)
		ev := types.AnswerEvent{
			Correct:         i < 6,
			ResponseTimeSec: &rt,
			AnsweredAt:      testNow.Add(-24 * time.Hour),
		}
		if i >= 5 {
			id := skillH7
			ev.SkillID = &id
		}
		events = append(events, ev)
	}
	return events
}

func mtQuestion() types.Question {
	id := skillH7
	return types.Question{
		ID:            uuid.MustParse("0c4b1d8e-2222-4f00-8000-000000000042"),
		Subject:       "MT",
		SkillCode:     "H7",
		SkillID:       &id,
		Difficulty:    0.6,
		Statement:     "Um reservatório cilíndrico tem raio 2 m e altura 5 m. Qual o seu volume?",
		Alternatives:  [5]string{"10π m³", "20π m³", "25π m³", "40π m³", "50π m³"},
		CorrectAnswer: "B",
	}
}

func feedbackRequest() FeedbackRequest {
	return FeedbackRequest{
		LearnerID:    uuid.MustParse("5a1c7b2e-3333-4e11-9000-0000000000aa"),
		Question:     mtQuestion(),
		ChosenAnswer: "D",
	}
}

func TestGenerateAnswerFeedback_FallbackOnGenerationError(t *testing.T) {
	client := &MockLLMClient{GenerateFunc: failWith(&llm.GenerationError{Op: "generate", Timeout: true})}
	store := &fakeStore{events: tenAnswers()}
	engine := newTestEngine(client, store)

	result := engine.GenerateAnswerFeedback(context.Background(), feedbackRequest())

	require.NotNil(t, result)
	assert.True(t, result.Fallback)
	assert.InDelta(t, 0.6, result.SuggestedDifficulty, 1e-9)
	assert.Equal(t, []string{
		"MT01 - Conhecimentos numéricos: operações em conjuntos numéricos",
		"MT02 - Conhecimentos geométricos: características das figuras planas",
		"MT03 - Conhecimentos de estatística e probabilidade",
	}, result.ConceptsToReview)
	assert.Len(t, result.ReviewSteps, 3)
	assert.Equal(t, "A resposta correta é B. Continue praticando!", result.CorrectAnswerExplanation)
	assert.NotEmpty(t, result.FeedbackText)
	assert.Nil(t, result.ID)
	assert.Empty(t, store.feedback, "fallback feedback is not stored")

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].User, "Taxa de acerto geral: 60%")
	assert.Contains(t, calls[0].User, "Total de questões respondidas: 10")
	assert.Contains(t, calls[0].User, "Habilidade: H7")
	assert.Contains(t, calls[0].User, "Matéria: Matemática (MT)")
}

func TestGenerateAnswerFeedback_Normalized(t *testing.T) {
	client := &MockLLMClient{GenerateFunc: respondWith("```json\n" + `{
		"feedback": "Você confundiu raio com diâmetro.",
		"correct_answer_explanation": "V = πr²h = π·4·5 = 20π m³.",
		"error_root_cause": "Uso do diâmetro no lugar do raio.",
		"misconception_point": "O enunciado fala em raio.",
		"review_steps": ["Releia o enunciado", "Anote os dados", "Aplique a fórmula", "Confira as unidades"],
		"concepts_to_review": ["MT02 - qualquer coisa", "ZZ99 - inventado"],
		"study_strategy": "Resolva cinco questões de volume.",
		"suggested_difficulty": 1.7,
		"improvement_areas": "Geometria espacial"
	}` + "\n```")}
	store := &fakeStore{
		events:  tenAnswers(),
		entries: map[uuid.UUID]*types.TaxonomyEntry{skillH7: {Code: "H7", Description: "Resolver situação-problema que envolva conhecimentos geométricos de espaço e forma.", CompetencyCode: "C2", CompetencyDescription: "Utilizar o conhecimento geométrico"}},
	}
	engine := newTestEngine(client, store)

	result := engine.GenerateAnswerFeedback(context.Background(), feedbackRequest())

	require.NotNil(t, result)
	assert.False(t, result.Fallback)
	assert.Equal(t, "Você confundiu raio com diâmetro.", result.FeedbackText)
	assert.Equal(t, []string{"MT02 - Conhecimentos geométricos: características das figuras planas"}, result.ConceptsToReview)
	assert.Len(t, result.ReviewSteps, 3)
	assert.InDelta(t, 1.0, result.SuggestedDifficulty, 1e-9)
	require.NotNil(t, result.ID)

	require.Len(t, store.feedback, 1)
	assert.Equal(t, "MT", store.feedback[0].Subject)
	assert.Equal(t, result.FeedbackText, store.feedback[0].Result.FeedbackText)

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, llm.Params{Temperature: 0.7, MaxTokens: 2000}, calls[0].Params)
	assert.Contains(t, calls[0].User, "Descrição da Habilidade: Resolver situação-problema")
	assert.Contains(t, calls[0].User, "Competência: C2 - Utilizar o conhecimento geométrico")
	assert.Contains(t, calls[0].User, "OBJETOS DE CONHECIMENTO (BNCC/ENEM) PARA MATEMÁTICA")
	assert.Contains(t, calls[0].User, `8. Utilize somente os objetos listados acima`)
	assert.Contains(t, calls[0].User, "FORMATO DE RESPOSTA:")
	assert.NotEmpty(t, calls[0].System)
}

func TestGenerateAnswerFeedback_FillsMissingFields(t *testing.T) {
	client := &MockLLMClient{GenerateFunc: respondWith(`{"feedback": "Quase lá!", "review_steps": "", "concepts_to_review": 7}`)}
	store := &fakeStore{events: tenAnswers()}
	engine := newTestEngine(client, store)

	result := engine.GenerateAnswerFeedback(context.Background(), feedbackRequest())

	assert.False(t, result.Fallback)
	assert.Equal(t, "Quase lá!", result.FeedbackText)
	assert.Equal(t, "A resposta correta é B. Continue praticando!", result.CorrectAnswerExplanation)
	assert.Equal(t, fallbackReviewSteps, result.ReviewSteps)
	assert.Len(t, result.ConceptsToReview, 3)
	assert.NotEmpty(t, result.ErrorRootCause)
	assert.NotEmpty(t, result.MisconceptionPoint)
	assert.NotEmpty(t, result.StudyStrategy)
	assert.InDelta(t, 0.6, result.SuggestedDifficulty, 1e-9)
}

func TestGenerateAnswerFeedback_FallbackWithoutGeneration(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*FeedbackRequest)
		store  *fakeStore
	}{
		{
			name:   "invalid chosen answer",
			modify: func(r *FeedbackRequest) { r.ChosenAnswer = "F" },
			store:  &fakeStore{},
		},
		{
			name:   "missing learner",
			modify: func(r *FeedbackRequest) { r.LearnerID = uuid.Nil },
			store:  &fakeStore{},
		},
		{
			name:   "history read fails",
			modify: func(*FeedbackRequest) {},
			store:  &fakeStore{historyErr: errBackend},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &MockLLMClient{}
			engine := newTestEngine(client, tt.store)
			req := feedbackRequest()
			tt.modify(&req)

			result := engine.GenerateAnswerFeedback(context.Background(), req)

			require.NotNil(t, result)
			assert.True(t, result.Fallback)
			assert.InDelta(t, 0.6, result.SuggestedDifficulty, 1e-9)
			assert.Empty(t, client.Calls())
		})
	}
}

func TestGenerateAnswerFeedback_MalformedResponse(t *testing.T) {
	client := &MockLLMClient{GenerateFunc: respondWith("Desculpe, não consigo ajudar.")}
	engine := newTestEngine(client, &fakeStore{events: tenAnswers()})

	result := engine.GenerateAnswerFeedback(context.Background(), feedbackRequest())

	assert.True(t, result.Fallback)
}

func TestGenerateAnswerFeedback_PersistFailureIsNotFatal(t *testing.T) {
	client := &MockLLMClient{GenerateFunc: respondWith(`{"feedback": "Ok"}`)}
	store := &fakeStore{events: tenAnswers(), persistErr: errBackend}
	m := metrics.NewManager()
	engine := newTestEngine(client, store, WithMetrics(m))

	result := engine.GenerateAnswerFeedback(context.Background(), feedbackRequest())

	assert.False(t, result.Fallback)
	assert.Nil(t, result.ID)
	expected := `
# HELP tutor_persist_failures_total Storage writes that failed after an operation completed
# TYPE tutor_persist_failures_total counter
tutor_persist_failures_total{operation="feedback"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "tutor_persist_failures_total"))
}

func TestGenerateAnswerFeedback_Concurrent(t *testing.T) {
	client := &MockLLMClient{GenerateFunc: respondWith(`{"feedback": "Ok"}`)}
	engine := newTestEngine(client, &fakeStore{events: tenAnswers()}, WithMetrics(metrics.NewManager()))
	engine.writer = nil

	done := make(chan *types.FeedbackResult, 8)
	for i := 0; i < 8; i++ {
		go func() { done <- engine.GenerateAnswerFeedback(context.Background(), feedbackRequest()) }()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, "Ok", (<-done).FeedbackText)
	}
	assert.Len(t, client.Calls(), 8)
}

func progressSkills() []types.SkillProgress {
	return []types.SkillProgress{
		{SkillID: skillH1, SkillCode: "H1", CompetencyCode: "C1", Description: "Reconhecer, no contexto social, diferentes significados e representações dos números.", CompetencyDescription: "Construir significados para os números naturais, inteiros, racionais e reais.", TotalAnswered: 10, CorrectCount: 9},
		{SkillID: skillH7, SkillCode: "H7", CompetencyCode: "C2", Description: "Identificar características de figuras planas ou espaciais.", CompetencyDescription: "Utilizar o conhecimento geométrico para realizar a leitura e a representação da realidade.", TotalAnswered: 4, CorrectCount: 1},
		{SkillID: skillH8, SkillCode: "H8", CompetencyCode: "C2", Description: "Resolver situação-problema que envolva conhecimentos geométricos de espaço e forma."},
	}
}

func TestAnalyzeProgress_NormalizesAndPersists(t *testing.T) {
	client := &MockLLMClient{GenerateFunc: respondWith(`{
		"progress_summary": "Bom domínio de números, dificuldade em geometria.",
		"recommendations": [
			{"type": "revisão", "content": "Revise figuras espaciais", "priority": "7", "focus_skills": ["h7", "H99"]},
			{"type": "study", "content": "", "priority": 2},
			{"tipo": "pratica", "conteudo": "Faça 10 questões de H8", "prioridade": 0.4}
		],
		"ideal_difficulty": 0.35,
		"focus_areas": "Geometria espacial; Volumes",
		"priority_skills": ["H7", "H42"],
		"motivational_message": "Siga firme!",
		"weekly_goal": "Resolver 15 questões de geometria"
	}`)}
	store := &fakeStore{
		events:   tenAnswers(),
		skills:   progressSkills(),
		sessions: []types.StudySession{{StartedAt: time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC), TotalQuestions: 8, CorrectCount: 5}},
	}
	engine := newTestEngine(client, store)

	analysis := engine.AnalyzeProgress(context.Background(), uuid.New(), "mt")

	require.NotNil(t, analysis)
	assert.False(t, analysis.Fallback)
	require.Len(t, analysis.Recommendations, 2)
	assert.Equal(t, types.RecommendationReview, analysis.Recommendations[0].Type)
	assert.Equal(t, 5, analysis.Recommendations[0].Priority)
	assert.Equal(t, []string{"H7"}, analysis.Recommendations[0].FocusSkills)
	assert.Equal(t, types.RecommendationPractice, analysis.Recommendations[1].Type)
	assert.Equal(t, 1, analysis.Recommendations[1].Priority)
	assert.Equal(t, []string{"H7"}, analysis.PrioritySkills)
	assert.Equal(t, []string{"Geometria espacial", "Volumes"}, analysis.FocusAreas)
	assert.InDelta(t, 0.35, analysis.IdealDifficulty, 1e-9)

	assert.Len(t, store.recommendations, 2)
	require.Len(t, store.profiles, 1)
	profile := store.profiles[0]
	assert.Equal(t, "MT", profile.Subject)
	assert.InDelta(t, 0.35, profile.CurrentLevel, 1e-9)
	assert.Equal(t, "H1", profile.Strengths)
	assert.Equal(t, "Geometria espacial, Volumes", profile.Weaknesses)
	assert.Equal(t, "adaptativo", profile.LearningStyle)

	calls := client.Calls()
	require.Len(t, calls, 1)
	user := calls[0].User
	assert.Equal(t, llm.Params{Temperature: 0.7, MaxTokens: 1200}, calls[0].Params)
	assert.Contains(t, user, "em Matemática (código MT)")
	assert.Contains(t, user, "- C2/H7: 25% (1/4) – Identificar características")
	assert.Contains(t, user, "- C1/H1: 90% (9/10)")
	assert.Contains(t, user, "- C2: 25% (1/4)")
	assert.Contains(t, user, "- 08/03/2026: 62.5% de acerto em 8 questões")
	assert.NotContains(t, user, "C2/H8", "skills without answers are not listed")
	assert.NotContains(t, user, "Como não há histórico registrado")
}

func TestAnalyzeProgress_NoHistory(t *testing.T) {
	client := &MockLLMClient{GenerateFunc: respondWith(`{"progress_summary": "Comece pelo básico."}`)}
	store := &fakeStore{}
	engine := newTestEngine(client, store)

	analysis := engine.AnalyzeProgress(context.Background(), uuid.New(), "MT")

	assert.False(t, analysis.Fallback)
	assert.Equal(t, "Comece pelo básico.", analysis.ProgressSummary)
	require.Len(t, analysis.Recommendations, 1, "an empty plan gets the default recommendation")
	assert.Equal(t, fallbackWeeklyGoal, analysis.WeeklyGoal)

	user := client.Calls()[0].User
	assert.Contains(t, user, "- Nenhuma habilidade da BNCC respondida até agora.")
	assert.Contains(t, user, "- Nenhuma sessão concluída recentemente.")
	assert.Contains(t, user, "- Sem competências com respostas registradas nesta matéria.")
	assert.Contains(t, user, "7. Como não há histórico registrado")
}

func TestAnalyzeProgress_Fallback(t *testing.T) {
	client := &MockLLMClient{GenerateFunc: failWith(errBackend)}
	store := &fakeStore{events: tenAnswers(), skills: progressSkills()}
	engine := newTestEngine(client, store)

	analysis := engine.AnalyzeProgress(context.Background(), uuid.New(), "MT")

	assert.True(t, analysis.Fallback)
	assert.InDelta(t, 0.5, analysis.IdealDifficulty, 1e-9)
	require.Len(t, analysis.Recommendations, 1)
	assert.Equal(t, types.RecommendationPractice, analysis.Recommendations[0].Type)
	assert.Equal(t, 3, analysis.Recommendations[0].Priority)
	assert.NotNil(t, analysis.FocusAreas)
	assert.NotNil(t, analysis.PrioritySkills)
	assert.Empty(t, store.recommendations)
	assert.Empty(t, store.profiles)
}

func TestAnalyzeProgress_RecommendationWriteFailureContinues(t *testing.T) {
	client := &MockLLMClient{GenerateFunc: respondWith(`{
		"recommendations": [
			{"type": "study", "content": "primeira", "priority": 1},
			{"type": "study", "content": "segunda", "priority": 2}
		]
	}`)}
	store := &fakeStore{
		recommendationErr: func(rec types.Recommendation) error {
			if rec.Content == "primeira" {
				return errBackend
			}
			return nil
		},
	}
	engine := newTestEngine(client, store)

	analysis := engine.AnalyzeProgress(context.Background(), uuid.New(), "MT")

	assert.Len(t, analysis.Recommendations, 2)
	require.Len(t, store.recommendations, 1)
	assert.Equal(t, "segunda", store.recommendations[0].Content)
	assert.Len(t, store.profiles, 1)
}

func TestGenerateMotivationalMessage(t *testing.T) {
	client := &MockLLMClient{GenerateFunc: respondWith(`{"mensagem": "Parabéns pelo foco!", "tipo": "parabéns"}`)}
	engine := newTestEngine(client, &fakeStore{events: tenAnswers()})

	msg := engine.GenerateMotivationalMessage(context.Background(), uuid.New(), "")

	assert.False(t, msg.Fallback)
	assert.Equal(t, "Parabéns pelo foco!", msg.Message)
	assert.Equal(t, types.MessageCongratulations, msg.Kind)
	assert.Equal(t, "🌟", msg.Icon)

	call := client.Calls()[0]
	assert.Equal(t, llm.Params{Temperature: 0.8, MaxTokens: 200}, call.Params)
	assert.Contains(t, call.User, "CONTEXTO: geral")
	assert.Contains(t, call.User, "NOME: Estudante")
	assert.Contains(t, call.User, "PROGRESSO GERAL: 60% de acerto")
	assert.Contains(t, call.User, "7. Limite a 100 palavras")
}

func TestGenerateMotivationalMessage_Fallback(t *testing.T) {
	tests := []struct {
		name string
		gen  func(context.Context, string, string, llm.Params) (string, error)
	}{
		{name: "generation error", gen: failWith(errBackend)},
		{name: "not json", gen: respondWith("[1, 2, 3]")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(&MockLLMClient{GenerateFunc: tt.gen}, &fakeStore{name: "Ana"})

			msg := engine.GenerateMotivationalMessage(context.Background(), uuid.New(), "sessao_concluida")

			assert.True(t, msg.Fallback)
			assert.Equal(t, types.MessageEncouragement, msg.Kind)
			assert.Equal(t, fallbackMotivationText, msg.Message)
		})
	}
}

func TestGenerateMotivationalMessage_EmptyMessage(t *testing.T) {
	engine := newTestEngine(&MockLLMClient{GenerateFunc: respondWith(`{"kind": "tip"}`)}, &fakeStore{})

	msg := engine.GenerateMotivationalMessage(context.Background(), uuid.New(), "")

	assert.False(t, msg.Fallback)
	assert.Equal(t, types.MessageTip, msg.Kind)
	assert.Equal(t, fallbackMotivationText, msg.Message)
}

const themesResponse = `{"themes": [
	{"id": "tema-01", "title": "Desafios da mobilidade urbana", "description": "d", "problem": "p", "intervention_guidelines": "g",
	 "support_texts": [{"title": "IBGE", "kind": "dado", "content": "c", "source": "IBGE, 2024"}]},
	{"title": "Saúde mental de jovens"}
]}`

func TestGenerateEssayThemes_CacheAside(t *testing.T) {
	client := &MockLLMClient{GenerateFunc: respondWith(themesResponse)}
	cache := &fakeThemeCache{}
	m := metrics.NewManager()
	engine := newTestEngine(client, &fakeStore{}, WithThemeCache(cache), WithMetrics(m))

	themes, err := engine.GenerateEssayThemes(context.Background())
	require.NoError(t, err)
	require.Len(t, themes, 2)
	assert.Equal(t, "tema-2", themes[1].ID)
	assert.Equal(t, "Saúde mental de jovens", themes[1].Title)
	assert.NotNil(t, themes[1].SupportTexts)
	assert.Equal(t, 1, cache.setCall)

	again, err := engine.GenerateEssayThemes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, themes, again)

	calls := client.Calls()
	require.Len(t, calls, 1, "second call is served from cache")
	assert.Equal(t, llm.Params{Temperature: 0.45, MaxTokens: 4000}, calls[0].Params)
	assert.Contains(t, calls[0].User, "Gere exatamente 6 temas inéditos.")
	expected := `
# HELP tutor_theme_cache_total Essay theme cache lookups by result (hit, miss, error)
# TYPE tutor_theme_cache_total counter
tutor_theme_cache_total{result="hit"} 1
tutor_theme_cache_total{result="miss"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "tutor_theme_cache_total"))
}

func TestGenerateEssayThemes_CacheErrorsAreNotFatal(t *testing.T) {
	client := &MockLLMClient{GenerateFunc: respondWith(themesResponse)}
	cache := &fakeThemeCache{getErr: errBackend, setErr: errBackend}
	engine := newTestEngine(client, &fakeStore{}, WithThemeCache(cache))

	themes, err := engine.GenerateEssayThemes(context.Background())

	require.NoError(t, err)
	assert.Len(t, themes, 2)
}

func TestGenerateEssayThemes_Unavailable(t *testing.T) {
	tests := []struct {
		name string
		gen  func(context.Context, string, string, llm.Params) (string, error)
	}{
		{name: "generation error", gen: failWith(&llm.GenerationError{Op: "generate", StatusCode: 503})},
		{name: "missing themes", gen: respondWith(`{"temas_sugeridos": []}`)},
		{name: "themes not a list", gen: respondWith(`{"themes": "tema único"}`)},
		{name: "empty list", gen: respondWith(`{"themes": []}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &fakeThemeCache{}
			engine := newTestEngine(&MockLLMClient{GenerateFunc: tt.gen}, &fakeStore{}, WithThemeCache(cache))

			themes, err := engine.GenerateEssayThemes(context.Background())

			require.Error(t, err)
			assert.Nil(t, themes)
			assert.True(t, errors.Is(err, ErrServiceUnavailable))
			var unavailable *UnavailableError
			require.ErrorAs(t, err, &unavailable)
			assert.Equal(t, OpThemes, unavailable.Operation)
			assert.Zero(t, cache.setCall)
		})
	}
}

func essayText() string {
	return strings.TrimSpace(strings.Repeat("A mobilidade urbana exige planejamento integrado entre poder público e sociedade. ", 12))
}

func TestGradeEssay(t *testing.T) {
	client := &MockLLMClient{GenerateFunc: respondWith(`{
		"theme": "Mobilidade urbana no Brasil",
		"criteria": [
			{"number": 2, "score": 187, "justification": "Boa compreensão."},
			{"number": 1, "score": 150},
			{"number": 5, "score": "240"},
			{"number": 3, "score": -10, "errors": "repetição; argumento fraco"}
		],
		"total_score": 999,
		"general_comments": "Texto coeso.",
		"suggestions": ["Amplie o repertório"]
	}`)}
	store := &fakeStore{}
	engine := newTestEngine(client, store)
	learner := uuid.New()

	eval, err := engine.GradeEssay(context.Background(), learner, " Mobilidade urbana ", essayText())

	require.NoError(t, err)
	require.Len(t, eval.Criteria, 5)
	scores := make([]int, 0, 5)
	for i, c := range eval.Criteria {
		assert.Equal(t, i+1, c.Number)
		scores = append(scores, c.Score)
	}
	assert.Equal(t, []int{160, 180, 0, 0, 200}, scores)
	assert.Equal(t, 540, eval.TotalScore)
	assert.Equal(t, essay.MissingJustification, eval.Criteria[3].Justification)
	assert.Equal(t, []string{"repetição", "argumento fraco"}, eval.Criteria[2].Errors)
	assert.Equal(t, 132, eval.WordCount)
	assert.Equal(t, testNow, eval.CreatedAt)
	require.NotNil(t, eval.ID)

	require.Len(t, store.essays, 1)
	assert.Equal(t, learner, store.essays[0].LearnerID)
	assert.Equal(t, "Mobilidade urbana", store.essays[0].Theme)

	call := client.Calls()[0]
	assert.Equal(t, llm.Params{Temperature: 0.2, MaxTokens: 2200}, call.Params)
	assert.Contains(t, call.User, "Tema oficial proposto: Mobilidade urbana")
}

func TestGradeEssay_InputErrors(t *testing.T) {
	tests := []struct {
		name  string
		theme string
		text  string
		field string
	}{
		{name: "missing theme", theme: "  ", text: essayText(), field: "theme"},
		{name: "missing text", theme: "Tema", text: "", field: "text"},
		{name: "too short", theme: "Tema", text: "Texto curto demais.", field: "text"},
		{name: "too long", theme: "Tema", text: strings.Repeat("palavra ", essay.MaxWords+1), field: "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &MockLLMClient{}
			engine := newTestEngine(client, &fakeStore{})

			eval, err := engine.GradeEssay(context.Background(), uuid.New(), tt.theme, tt.text)

			assert.Nil(t, eval)
			var inputErr *essay.InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Equal(t, tt.field, inputErr.Field)
			assert.False(t, errors.Is(err, ErrServiceUnavailable))
			assert.Empty(t, client.Calls())
		})
	}
}

func TestGradeEssay_Unavailable(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(&MockLLMClient{GenerateFunc: respondWith("sem json")}, store)

	eval, err := engine.GradeEssay(context.Background(), uuid.New(), "Tema", essayText())

	assert.Nil(t, eval)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Empty(t, store.essays)
}

func TestGradeEssay_PersistFailureStillReturnsEvaluation(t *testing.T) {
	store := &fakeStore{persistErr: errBackend}
	engine := newTestEngine(&MockLLMClient{GenerateFunc: respondWith(`{"criteria": []}`)}, store)

	eval, err := engine.GradeEssay(context.Background(), uuid.New(), "Tema", essayText())

	require.NoError(t, err)
	assert.Nil(t, eval.ID)
	assert.Equal(t, 0, eval.TotalScore)
	assert.Len(t, eval.Criteria, 5)
}
