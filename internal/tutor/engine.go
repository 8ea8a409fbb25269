// Package tutor implements the adaptive feedback engine: it aggregates a
// learner's history, asks the generation backend for feedback, progress
// plans, motivation, essay themes and essay grades, and normalizes every
// answer into domain-valid results.
package tutor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/adaptive-tutor/internal/essay"
	"github.com/jonathan/adaptive-tutor/internal/llm"
	"github.com/jonathan/adaptive-tutor/internal/metrics"
	"github.com/jonathan/adaptive-tutor/internal/normalize"
	"github.com/jonathan/adaptive-tutor/internal/performance"
	"github.com/jonathan/adaptive-tutor/internal/prompts"
	"github.com/jonathan/adaptive-tutor/internal/schemas"
	"github.com/jonathan/adaptive-tutor/internal/taxonomy"
	"github.com/jonathan/adaptive-tutor/internal/types"
)

// Operation names used in logs and metrics
const (
	OpFeedback   = "feedback"
	OpProgress   = "progress"
	OpMotivation = "motivation"
	OpThemes     = "themes"
	OpEssay      = "essay"
)

const learningStyle = "adaptativo"

var (
	feedbackParams   = llm.Params{Temperature: 0.7, MaxTokens: 2000}
	progressParams   = llm.Params{Temperature: 0.7, MaxTokens: 1200}
	motivationParams = llm.Params{Temperature: 0.8, MaxTokens: 200}
	themesParams     = llm.Params{Temperature: 0.45, MaxTokens: 4000}
	essayParams      = llm.Params{Temperature: 0.2, MaxTokens: 2200}
)

// FeedbackRequest asks for feedback on one incorrect answer
type FeedbackRequest struct {
	LearnerID    uuid.UUID      `json:"learner_id" validate:"required"`
	AnswerID     *uuid.UUID     `json:"answer_id,omitempty"`
	Question     types.Question `json:"question"`
	ChosenAnswer string         `json:"chosen_answer" validate:"required,oneof=A B C D E"`
}

var validate = validator.New()

// Validate normalizes the answer letters and checks the request fields
func (r *FeedbackRequest) Validate() error {
	r.ChosenAnswer = strings.ToUpper(strings.TrimSpace(r.ChosenAnswer))
	r.Question.CorrectAnswer = strings.ToUpper(strings.TrimSpace(r.Question.CorrectAnswer))
	r.Question.Subject = strings.ToUpper(strings.TrimSpace(r.Question.Subject))

	if err := validate.Struct(r); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &RequestError{Field: strings.ToLower(fe.Namespace()), Message: "failed " + fe.Tag()}
		}
		return &RequestError{Field: "request", Message: err.Error()}
	}
	return nil
}

// Engine runs the tutor operations. It holds no per-request state and is safe for concurrent use.
type Engine struct {
	client     llm.Client
	reader     HistoryReader
	writer     Writer
	themes     ThemeCache
	catalog    Catalog
	aggregator *performance.Aggregator
	metrics    *metrics.Manager
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithThemeCache enables cache-aside theme generation
func WithThemeCache(cache ThemeCache) Option {
	return func(e *Engine) { e.themes = cache }
}

// WithCatalog replaces the embedded taxonomy catalog
func WithCatalog(catalog Catalog) Option {
	return func(e *Engine) { e.catalog = catalog }
}

// WithMetrics records operation metrics on m
func WithMetrics(m *metrics.Manager) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithClock sets the time source used for recency windows and timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine. writer may be nil, in which case results are not stored.
func New(client llm.Client, reader HistoryReader, writer Writer, opts ...Option) *Engine {
	e := &Engine{
		client: client,
		reader: reader,
		writer: writer,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		e.catalog = taxonomy.MustDefault()
	}
	e.aggregator = performance.NewAggregator(reader).WithClock(e.now)
	return e
}

// GenerateAnswerFeedback explains an incorrect answer. It never fails: any
// error along the pipeline yields the fallback feedback.
func (e *Engine) GenerateAnswerFeedback(ctx context.Context, req FeedbackRequest) *types.FeedbackResult {
	concepts := e.catalog.ListConcepts(strings.ToUpper(strings.TrimSpace(req.Question.Subject)))
	log := e.logger.With(
		slog.String("operation", OpFeedback),
		slog.String("learner_id", req.LearnerID.String()),
		slog.String("subject", req.Question.Subject),
	)

	if err := req.Validate(); err != nil {
		log.Warn("invalid feedback request, using fallback", slog.Any("error", err))
		e.metrics.OperationCompleted(OpFeedback, metrics.OutcomeFallback)
		return fallbackFeedback(req.Question, concepts)
	}

	result, err := e.feedback(ctx, req, concepts, log)
	if err != nil {
		log.Warn("feedback generation failed, using fallback", slog.Any("error", err))
		e.metrics.OperationCompleted(OpFeedback, metrics.OutcomeFallback)
		return fallbackFeedback(req.Question, concepts)
	}

	if e.writer != nil {
		id, err := e.writer.PersistFeedback(ctx, types.FeedbackRecord{
			LearnerID:  req.LearnerID,
			QuestionID: req.Question.ID,
			AnswerID:   req.AnswerID,
			Subject:    req.Question.Subject,
			Result:     *result,
		})
		if err != nil {
			log.Error("failed to persist feedback", slog.Any("error", err))
			e.metrics.PersistFailed(OpFeedback)
		} else {
			result.ID = &id
		}
	}

	e.metrics.OperationCompleted(OpFeedback, metrics.OutcomeOK)
	return result
}

func (e *Engine) feedback(ctx context.Context, req FeedbackRequest, concepts []types.ConceptReference, log *slog.Logger) (*types.FeedbackResult, error) {
	q := req.Question
	snapshot, skill, err := e.aggregator.SkillSnapshot(ctx, req.LearnerID, q.Subject, q.SkillID)
	if err != nil {
		return nil, err
	}

	var entry *types.TaxonomyEntry
	if q.SkillID != nil {
		if entry, err = e.reader.FetchTaxonomyEntry(ctx, *q.SkillID); err != nil {
			return nil, err
		}
	}

	prompt, err := buildFeedbackPrompt(feedbackContext{
		question:    q,
		chosen:      req.ChosenAnswer,
		subjectName: e.catalog.SubjectName(q.Subject),
		entry:       entry,
		concepts:    concepts,
		snapshot:    snapshot,
		skill:       skill,
	})
	if err != nil {
		return nil, err
	}

	doc, err := e.generate(ctx, OpFeedback, schemas.KindFeedback, prompt, feedbackParams, log)
	if err != nil {
		return nil, err
	}

	result := normalize.Feedback(doc, concepts, q.Difficulty)
	filled := fillFeedbackGaps(&result, fallbackFeedback(q, concepts))
	e.reportDefaults(OpFeedback, doc, filled, log)
	return &result, nil
}

// AnalyzeProgress reviews a learner's progress in one subject and stores the
// resulting recommendations and learning profile. It never fails.
func (e *Engine) AnalyzeProgress(ctx context.Context, learnerID uuid.UUID, subject string) *types.ProgressAnalysis {
	subject = strings.ToUpper(strings.TrimSpace(subject))
	log := e.logger.With(
		slog.String("operation", OpProgress),
		slog.String("learner_id", learnerID.String()),
		slog.String("subject", subject),
	)

	analysis, strong, err := e.progress(ctx, learnerID, subject, log)
	if err != nil {
		log.Warn("progress analysis failed, using fallback", slog.Any("error", err))
		e.metrics.OperationCompleted(OpProgress, metrics.OutcomeFallback)
		return fallbackProgress()
	}

	if e.writer != nil {
		e.persistProgress(ctx, learnerID, subject, analysis, strong, log)
	}

	e.metrics.OperationCompleted(OpProgress, metrics.OutcomeOK)
	return analysis
}

func (e *Engine) progress(ctx context.Context, learnerID uuid.UUID, subject string, log *slog.Logger) (*types.ProgressAnalysis, []types.SkillProgress, error) {
	snapshot, err := e.aggregator.Snapshot(ctx, learnerID, subject)
	if err != nil {
		return nil, nil, err
	}
	sessions, err := e.reader.FetchRecentSessions(ctx, learnerID, subject, recentSessionLimit)
	if err != nil {
		return nil, nil, err
	}
	allSkills, err := e.reader.FetchSkillProgress(ctx, learnerID, subject)
	if err != nil {
		return nil, nil, err
	}
	answered := performance.Rollup(allSkills)

	prompt, err := buildProgressPrompt(progressContext{
		subject:     subject,
		subjectName: e.catalog.SubjectName(subject),
		snapshot:    snapshot,
		sessions:    sessions,
		skills:      answered,
	})
	if err != nil {
		return nil, nil, err
	}

	doc, err := e.generate(ctx, OpProgress, schemas.KindProgress, prompt, progressParams, log)
	if err != nil {
		return nil, nil, err
	}

	analysis := normalize.Progress(doc, performance.SkillCodes(allSkills))
	filled := fillProgressGaps(&analysis)
	e.reportDefaults(OpProgress, doc, filled, log)
	return &analysis, performance.StrongSkills(answered, performance.DefaultSkillLimit), nil
}

func (e *Engine) persistProgress(ctx context.Context, learnerID uuid.UUID, subject string, analysis *types.ProgressAnalysis, strong []types.SkillProgress, log *slog.Logger) {
	for i, rec := range analysis.Recommendations {
		if err := e.writer.PersistRecommendation(ctx, learnerID, subject, rec); err != nil {
			log.Error("failed to persist recommendation", slog.Int("index", i), slog.Any("error", err))
			e.metrics.PersistFailed(OpProgress)
		}
	}

	weaknesses := analysis.FocusAreas
	if len(weaknesses) == 0 {
		weaknesses = analysis.PrioritySkills
	}
	profile := types.LearningProfile{
		LearnerID:     learnerID,
		Subject:       subject,
		CurrentLevel:  analysis.IdealDifficulty,
		Strengths:     strings.Join(performance.SkillCodes(strong), ", "),
		Weaknesses:    strings.Join(weaknesses, ", "),
		LearningStyle: learningStyle,
	}
	if err := e.writer.PersistLearningProfile(ctx, profile); err != nil {
		log.Error("failed to persist learning profile", slog.Any("error", err))
		e.metrics.PersistFailed(OpProgress)
	}
}

// GenerateMotivationalMessage writes a short encouragement for the learner.
// msgContext names the occasion ("geral" when empty). It never fails.
func (e *Engine) GenerateMotivationalMessage(ctx context.Context, learnerID uuid.UUID, msgContext string) *types.MotivationalMessage {
	log := e.logger.With(
		slog.String("operation", OpMotivation),
		slog.String("learner_id", learnerID.String()),
	)

	msg, err := e.motivation(ctx, learnerID, msgContext, log)
	if err != nil {
		log.Warn("motivational message failed, using fallback", slog.Any("error", err))
		e.metrics.OperationCompleted(OpMotivation, metrics.OutcomeFallback)
		return fallbackMotivation()
	}

	e.metrics.OperationCompleted(OpMotivation, metrics.OutcomeOK)
	return msg
}

func (e *Engine) motivation(ctx context.Context, learnerID uuid.UUID, msgContext string, log *slog.Logger) (*types.MotivationalMessage, error) {
	name, err := e.reader.FetchLearnerName(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	snapshot, err := e.aggregator.Snapshot(ctx, learnerID, "")
	if err != nil {
		return nil, err
	}

	prompt, err := buildMotivationPrompt(motivationContext{
		context:     msgContext,
		learnerName: name,
		snapshot:    snapshot,
	})
	if err != nil {
		return nil, err
	}

	doc, err := e.generate(ctx, OpMotivation, schemas.KindMotivation, prompt, motivationParams, log)
	if err != nil {
		return nil, err
	}

	msg := normalize.Motivation(doc)
	filled := 0
	if msg.Message == "" {
		msg.Message = fallbackMotivationText
		filled++
	}
	e.reportDefaults(OpMotivation, doc, filled, log)
	return &msg, nil
}

// GenerateEssayThemes returns a list of essay themes, served from the theme
// cache when one is configured. A failed generation is reported as an
// *UnavailableError.
func (e *Engine) GenerateEssayThemes(ctx context.Context) ([]types.EssayTheme, error) {
	log := e.logger.With(slog.String("operation", OpThemes))

	if e.themes != nil {
		cached, err := e.themes.GetThemes(ctx)
		switch {
		case err != nil:
			log.Warn("theme cache read failed", slog.Any("error", err))
			e.metrics.ThemeCacheLookup("error")
		case len(cached) > 0:
			e.metrics.ThemeCacheLookup("hit")
			e.metrics.OperationCompleted(OpThemes, metrics.OutcomeOK)
			return cached, nil
		default:
			e.metrics.ThemeCacheLookup("miss")
		}
	}

	themes, err := e.essayThemes(ctx, log)
	if err != nil {
		log.Error("theme generation failed", slog.Any("error", err))
		e.metrics.OperationCompleted(OpThemes, metrics.OutcomeError)
		return nil, &UnavailableError{Operation: OpThemes, Cause: err}
	}

	if e.themes != nil {
		if err := e.themes.SetThemes(ctx, themes); err != nil {
			log.Warn("theme cache write failed", slog.Any("error", err))
		}
	}

	e.metrics.OperationCompleted(OpThemes, metrics.OutcomeOK)
	return themes, nil
}

func (e *Engine) essayThemes(ctx context.Context, log *slog.Logger) ([]types.EssayTheme, error) {
	prompt, err := buildThemesPrompt()
	if err != nil {
		return nil, err
	}
	doc, err := e.generate(ctx, OpThemes, schemas.KindThemes, prompt, themesParams, log)
	if err != nil {
		return nil, err
	}
	themes, err := normalize.Themes(doc)
	if err != nil {
		return nil, err
	}
	if len(themes) == 0 {
		return nil, &normalize.MalformedResponseError{Reason: "no themes in response"}
	}
	e.reportDefaults(OpThemes, doc, 0, log)
	return themes, nil
}

// GradeEssay scores an essay against the five-criterion rubric and stores the
// evaluation. Invalid input returns *essay.InputError before any generation
// call; a failed generation returns *UnavailableError.
func (e *Engine) GradeEssay(ctx context.Context, learnerID uuid.UUID, theme, text string) (*types.EssayEvaluation, error) {
	log := e.logger.With(
		slog.String("operation", OpEssay),
		slog.String("learner_id", learnerID.String()),
	)

	theme = strings.TrimSpace(theme)
	text = strings.TrimSpace(text)
	if err := (essay.Submission{Theme: theme, Text: text}).Validate(); err != nil {
		return nil, err
	}

	prompt, err := essay.BuildPrompt(theme, text)
	if err != nil {
		e.metrics.OperationCompleted(OpEssay, metrics.OutcomeError)
		return nil, &UnavailableError{Operation: OpEssay, Cause: err}
	}
	doc, err := e.generate(ctx, OpEssay, schemas.KindEssay, prompt, essayParams, log)
	if err != nil {
		log.Error("essay grading failed", slog.Any("error", err))
		e.metrics.OperationCompleted(OpEssay, metrics.OutcomeError)
		return nil, &UnavailableError{Operation: OpEssay, Cause: err}
	}

	evaluation := essay.Evaluate(doc, theme, text, e.now())
	e.reportDefaults(OpEssay, doc, 0, log)

	if e.writer != nil {
		id, err := e.writer.PersistEssayEvaluation(ctx, types.EssayRecord{
			LearnerID:  learnerID,
			Theme:      theme,
			Text:       text,
			Evaluation: evaluation,
		})
		if err != nil {
			log.Error("failed to persist essay evaluation", slog.Any("error", err))
			e.metrics.PersistFailed(OpEssay)
		} else {
			evaluation.ID = &id
		}
	}

	e.metrics.OperationCompleted(OpEssay, metrics.OutcomeOK)
	return &evaluation, nil
}

// generate runs one generation call and parses the answer into a Document.
// Schema violations are reported but do not fail the call.
func (e *Engine) generate(ctx context.Context, op string, kind schemas.Kind, prompt prompts.Prompt, params llm.Params, log *slog.Logger) (*normalize.Document, error) {
	start := time.Now()
	raw, err := e.client.Generate(ctx, prompt.System, prompt.User, params)
	e.metrics.ObserveGeneration(op, time.Since(start))
	if err != nil {
		e.metrics.GenerationFailed(op, errorKind(err))
		return nil, err
	}

	doc, err := normalize.Parse(raw)
	if err != nil {
		e.metrics.GenerationFailed(op, errorKind(err))
		return nil, err
	}

	if err := schemas.Check(kind, llm.CleanJSONBlock(raw)); err != nil {
		log.Debug("response does not match schema", slog.Any("error", err))
		e.metrics.SchemaViolation(op)
	}
	return doc, nil
}

func (e *Engine) reportDefaults(op string, doc *normalize.Document, filled int, log *slog.Logger) {
	defaults := doc.Defaults()
	for _, d := range defaults {
		log.Debug("field defaulted", slog.String("field", d.Field), slog.String("reason", d.Reason))
	}
	if n := len(defaults) + filled; n > 0 {
		log.Info("response normalized with defaults", slog.Int("defaulted", n))
		e.metrics.FieldsDefaulted(op, n)
	}
}
